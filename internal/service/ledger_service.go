package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"docscan/internal/errors"
	"docscan/internal/metrics"
	"docscan/internal/repository"
)

// LedgerService tracks per-user credit balances.
type LedgerService interface {
	GetBalance(ctx context.Context, userID uint) (int, error)
	// TryDebit takes one credit, failing with ErrInsufficientCredits when
	// the balance is not positive. The check and the decrement are one statement.
	TryDebit(ctx context.Context, userID uint) error
	Credit(ctx context.Context, userID uint, amount int) error
	// ResetIfStale restores the default balance if the user was last reset
	// before today.
	ResetIfStale(ctx context.Context, userID uint, today time.Time) (bool, error)
	// ResetAll runs the daily sweep and returns how many users were reset.
	ResetAll(ctx context.Context, today time.Time) (int64, error)
	Today() time.Time
	// Tx binds the ledger to a transaction store.
	Tx(tx repository.Store) LedgerService
}

type ledgerService struct {
	store        repository.Store
	resetCredits int
	calendar     Calendar
}

// NewLedgerService creates a ledger that resets balances to resetCredits.
func NewLedgerService(store repository.Store, resetCredits int, calendar Calendar) LedgerService {
	return &ledgerService{
		store:        store,
		resetCredits: resetCredits,
		calendar:     calendar,
	}
}

func (s *ledgerService) Tx(tx repository.Store) LedgerService {
	return &ledgerService{store: tx, resetCredits: s.resetCredits, calendar: s.calendar}
}

func (s *ledgerService) Today() time.Time {
	return s.calendar.Today()
}

func (s *ledgerService) GetBalance(ctx context.Context, userID uint) (int, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.ErrUserNotFound
		}
		return 0, errors.Storage("get balance", err)
	}
	return user.Credits, nil
}

func (s *ledgerService) TryDebit(ctx context.Context, userID uint) error {
	ok, err := s.store.Users().DebitCredit(ctx, userID)
	if err != nil {
		return errors.Storage("debit credit", err)
	}
	if ok {
		return nil
	}
	// Nothing qualified: either the user is gone or the balance is spent.
	if _, err := s.GetBalance(ctx, userID); err != nil {
		return err
	}
	return errors.ErrInsufficientCredits
}

func (s *ledgerService) Credit(ctx context.Context, userID uint, amount int) error {
	if amount <= 0 {
		return errors.Validation(fmt.Sprintf("credit amount must be positive, got %d", amount))
	}
	ok, err := s.store.Users().AddCredits(ctx, userID, amount)
	if err != nil {
		return errors.Storage("add credits", err)
	}
	if !ok {
		return errors.ErrUserNotFound
	}
	return nil
}

func (s *ledgerService) ResetIfStale(ctx context.Context, userID uint, today time.Time) (bool, error) {
	ok, err := s.store.Users().ResetIfStale(ctx, userID, s.resetCredits, today, s.calendar.Now())
	if err != nil {
		return false, errors.Storage("reset credits", err)
	}
	if ok {
		metrics.AddCreditResets(1)
	}
	return ok, nil
}

func (s *ledgerService) ResetAll(ctx context.Context, today time.Time) (int64, error) {
	n, err := s.store.Users().ResetAllStale(ctx, s.resetCredits, today, s.calendar.Now())
	if err != nil {
		return 0, errors.Storage("reset all credits", err)
	}
	metrics.AddCreditResets(n)
	return n, nil
}
