package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories so multi-step mutations can share one transaction.
type Store interface {
	Users() UserRepository
	CreditRequests() CreditRequestRepository
	ScanRecords() ScanRecordRepository
	// WithTransaction runs fn in a database transaction. The tx store must be
	// used for every statement inside fn; returning an error rolls back.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *store) CreditRequests() CreditRequestRepository {
	return NewCreditRequestRepository(s.db)
}

func (s *store) ScanRecords() ScanRecordRepository {
	return NewScanRecordRepository(s.db)
}

// WithTransaction executes a function within a database transaction.
func (s *store) WithTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
