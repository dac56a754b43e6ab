package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"docscan/internal/errors"
	"docscan/internal/events"
	"docscan/internal/logger"
	"docscan/internal/model"
	"docscan/internal/repository"
)

const maxReasonLength = 500

// CreditRequestService runs the pending -> approved|denied workflow.
type CreditRequestService interface {
	Create(ctx context.Context, userID uint, reason string) (*model.CreditRequest, error)
	// List returns requests in status, pending when status is empty.
	List(ctx context.Context, status model.CreditRequestStatus) ([]model.CreditRequestView, error)
	// Resolve approves or denies a pending request. Approval credits the
	// requester in the same transaction.
	Resolve(ctx context.Context, id uint, approved bool) (*model.CreditRequest, error)
}

type creditRequestService struct {
	store     repository.Store
	ledger    LedgerService
	publisher events.Publisher
	amount    int
	now       func() time.Time
}

// NewCreditRequestService creates the workflow. Every request asks for amount credits.
func NewCreditRequestService(store repository.Store, ledger LedgerService, publisher events.Publisher, amount int) CreditRequestService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &creditRequestService{
		store:     store,
		ledger:    ledger,
		publisher: publisher,
		amount:    amount,
		now:       time.Now,
	}
}

func (s *creditRequestService) Create(ctx context.Context, userID uint, reason string) (*model.CreditRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.ErrMissingReason
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return nil, errors.Validation(fmt.Sprintf("reason must be at most %d characters", maxReasonLength))
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.Storage("find requester", err)
	}

	req := &model.CreditRequest{
		UserID:           user.ID,
		RequestedCredits: s.amount,
		Reason:           reason,
		Status:           model.CreditRequestPending,
	}
	if err := s.store.CreditRequests().Create(ctx, req); err != nil {
		return nil, errors.Storage("create credit request", err)
	}

	s.publisher.Publish(events.TypeCreditRequestCreated, model.CreditRequestView{
		ID:               req.ID,
		UserID:           user.ID,
		Username:         user.Username,
		CurrentCredits:   user.Credits,
		RequestedCredits: req.RequestedCredits,
		Reason:           req.Reason,
		Status:           req.Status,
		CreatedAt:        req.CreatedAt,
	})
	return req, nil
}

func (s *creditRequestService) List(ctx context.Context, status model.CreditRequestStatus) ([]model.CreditRequestView, error) {
	if status == "" {
		status = model.CreditRequestPending
	}
	if !status.Valid() {
		return nil, errors.Validation(fmt.Sprintf("unknown status %q", status))
	}
	views, err := s.store.CreditRequests().ListByStatus(ctx, status)
	if err != nil {
		return nil, errors.Storage("list credit requests", err)
	}
	return views, nil
}

func (s *creditRequestService) Resolve(ctx context.Context, id uint, approved bool) (*model.CreditRequest, error) {
	status := model.CreditRequestDenied
	if approved {
		status = model.CreditRequestApproved
	}
	resolvedAt := s.now().UTC()

	var req *model.CreditRequest
	err := s.store.WithTransaction(ctx, func(tx repository.Store) error {
		var err error
		req, err = tx.CreditRequests().FindByID(ctx, id)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrCreditRequestNotFound
			}
			return errors.Storage("find credit request", err)
		}

		ok, err := tx.CreditRequests().Resolve(ctx, id, status, resolvedAt)
		if err != nil {
			return errors.Storage("resolve credit request", err)
		}
		if !ok {
			return errors.ErrCreditRequestResolved
		}

		if approved {
			if err := s.ledger.Tx(tx).Credit(ctx, req.UserID, req.RequestedCredits); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Status = status
	req.ResolvedAt = &resolvedAt

	logger.Info("credit request resolved",
		zap.Uint("request_id", req.ID),
		zap.Uint("user_id", req.UserID),
		zap.String("status", string(status)),
		zap.Int("credits", req.RequestedCredits))
	s.publisher.Publish(events.TypeCreditRequestResolved, req)
	return req, nil
}
