package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docscan/internal/errors"
)

func TestLedgerService_TryDebit(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	ledger := NewLedgerService(store, 20, fixedCalendar(now))
	ctx := context.Background()

	user := seedUser(t, store, "alice", 2, now)

	require.NoError(t, ledger.TryDebit(ctx, user.ID))
	require.NoError(t, ledger.TryDebit(ctx, user.ID))
	assert.ErrorIs(t, ledger.TryDebit(ctx, user.ID), errors.ErrInsufficientCredits)

	balance, err := ledger.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	assert.ErrorIs(t, ledger.TryDebit(ctx, 999), errors.ErrUserNotFound)
}

func TestLedgerService_TryDebit_ConcurrentSingleCredit(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	ledger := NewLedgerService(store, 20, fixedCalendar(now))
	user := seedUser(t, store, "alice", 1, now)

	const workers = 8
	var wins, denied int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := ledger.TryDebit(context.Background(), user.ID); {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case assert.ErrorIs(t, err, errors.ErrInsufficientCredits):
				atomic.AddInt32(&denied, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(workers-1), denied)
	balance, err := ledger.GetBalance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestLedgerService_Credit(t *testing.T) {
	store := newTestStore(t)
	ledger := NewLedgerService(store, 20, NewCalendar(time.UTC))
	ctx := context.Background()
	user := seedUser(t, store, "bob", 3, time.Now())

	require.NoError(t, ledger.Credit(ctx, user.ID, 20))
	balance, _ := ledger.GetBalance(ctx, user.ID)
	assert.Equal(t, 23, balance)

	assert.ErrorIs(t, ledger.Credit(ctx, 999, 20), errors.ErrUserNotFound)

	var validationErr *errors.ValidationError
	assert.ErrorAs(t, ledger.Credit(ctx, user.ID, 0), &validationErr)
}

func TestLedgerService_ResetIfStale(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 10, 14, 8, 30, 0, 0, time.UTC)
	ledger := NewLedgerService(store, 20, fixedCalendar(now))
	ctx := context.Background()

	user := seedUser(t, store, "carol", 4, now.Add(-24*time.Hour))

	reset, err := ledger.ResetIfStale(ctx, user.ID, ledger.Today())
	require.NoError(t, err)
	assert.True(t, reset)
	balance, _ := ledger.GetBalance(ctx, user.ID)
	assert.Equal(t, 20, balance)

	require.NoError(t, ledger.TryDebit(ctx, user.ID))
	reset, err = ledger.ResetIfStale(ctx, user.ID, ledger.Today())
	require.NoError(t, err)
	assert.False(t, reset)
	balance, _ = ledger.GetBalance(ctx, user.ID)
	assert.Equal(t, 19, balance)
}

func TestLedgerService_ResetAll_TwiceSameDay(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2026, 10, 14, 8, 30, 0, 0, time.UTC)
	ledger := NewLedgerService(store, 20, fixedCalendar(now))
	ctx := context.Background()

	user := seedUser(t, store, "dave", 0, now.Add(-24*time.Hour))

	n, err := ledger.ResetAll(ctx, ledger.Today())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, ledger.TryDebit(ctx, user.ID))

	n, err = ledger.ResetAll(ctx, ledger.Today())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	balance, _ := ledger.GetBalance(ctx, user.ID)
	assert.Equal(t, 19, balance)
}

func TestCalendar_TodayInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	cal := Calendar{Location: loc, Now: func() time.Time {
		return time.Date(2026, 10, 14, 22, 0, 0, 0, time.UTC)
	}}

	today := cal.Today()
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, loc), today)
	assert.True(t, today.Equal(time.Date(2026, 10, 14, 21, 0, 0, 0, time.UTC)))
}
