package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docscan/internal/errors"
	"docscan/internal/events"
	"docscan/internal/model"
)

func TestCreditRequestService_ApproveOnce(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, 20, NewCalendar(time.UTC))
	publisher := &recordingPublisher{}
	svc := NewCreditRequestService(store, ledger, publisher, 20)
	ctx := context.Background()

	user := seedUser(t, store, "alice", 0, time.Now())

	req, err := svc.Create(ctx, user.ID, "  need more scans for thesis  ")
	require.NoError(t, err)
	assert.Equal(t, model.CreditRequestPending, req.Status)
	assert.Equal(t, 20, req.RequestedCredits)
	assert.Equal(t, "need more scans for thesis", req.Reason)

	pending, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "alice", pending[0].Username)
	assert.Equal(t, 0, pending[0].CurrentCredits)

	resolved, err := svc.Resolve(ctx, req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.CreditRequestApproved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	balance, err := ledger.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, balance)

	_, err = svc.Resolve(ctx, req.ID, true)
	assert.ErrorIs(t, err, errors.ErrCreditRequestResolved)
	_, err = svc.Resolve(ctx, req.ID, false)
	assert.ErrorIs(t, err, errors.ErrCreditRequestResolved)

	balance, _ = ledger.GetBalance(ctx, user.ID)
	assert.Equal(t, 20, balance, "re-approval must not credit again")

	approved, err := svc.List(ctx, model.CreditRequestApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	assert.Equal(t, []string{events.TypeCreditRequestCreated, events.TypeCreditRequestResolved}, publisher.types())
}

func TestCreditRequestService_Deny(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, 20, NewCalendar(time.UTC))
	svc := NewCreditRequestService(store, ledger, nil, 20)
	ctx := context.Background()

	user := seedUser(t, store, "bob", 5, time.Now())
	req, err := svc.Create(ctx, user.ID, "please")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.CreditRequestDenied, resolved.Status)

	balance, _ := ledger.GetBalance(ctx, user.ID)
	assert.Equal(t, 5, balance)
}

func TestCreditRequestService_Errors(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, 20, NewCalendar(time.UTC))
	svc := NewCreditRequestService(store, ledger, nil, 20)
	ctx := context.Background()
	user := seedUser(t, store, "carol", 0, time.Now())

	_, err := svc.Create(ctx, user.ID, "   ")
	assert.ErrorIs(t, err, errors.ErrMissingReason)

	var validationErr *errors.ValidationError
	_, err = svc.Create(ctx, user.ID, strings.Repeat("x", maxReasonLength+1))
	assert.ErrorAs(t, err, &validationErr)

	_, err = svc.Create(ctx, 999, "who am i")
	assert.ErrorIs(t, err, errors.ErrUserNotFound)

	_, err = svc.Resolve(ctx, 12345, true)
	assert.ErrorIs(t, err, errors.ErrCreditRequestNotFound)

	_, err = svc.List(ctx, "archived")
	assert.ErrorAs(t, err, &validationErr)
}
