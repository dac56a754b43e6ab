package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"docscan/internal/model"
)

// CreditRequestRepository defines credit request persistence operations.
type CreditRequestRepository interface {
	Create(ctx context.Context, req *model.CreditRequest) error
	FindByID(ctx context.Context, id uint) (*model.CreditRequest, error)
	ListByStatus(ctx context.Context, status model.CreditRequestStatus) ([]model.CreditRequestView, error)
	// Resolve moves a pending request to status. It reports false when the
	// request is unknown or no longer pending.
	Resolve(ctx context.Context, id uint, status model.CreditRequestStatus, resolvedAt time.Time) (bool, error)
}

type creditRequestRepository struct {
	db *gorm.DB
}

// NewCreditRequestRepository creates a new credit request repository.
func NewCreditRequestRepository(db *gorm.DB) CreditRequestRepository {
	return &creditRequestRepository{db: db}
}

func (r *creditRequestRepository) Create(ctx context.Context, req *model.CreditRequest) error {
	return r.db.WithContext(ctx).Omit("User").Create(req).Error
}

func (r *creditRequestRepository) FindByID(ctx context.Context, id uint) (*model.CreditRequest, error) {
	var req model.CreditRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByStatus returns requests joined with the requester, oldest first.
func (r *creditRequestRepository) ListByStatus(ctx context.Context, status model.CreditRequestStatus) ([]model.CreditRequestView, error) {
	views := make([]model.CreditRequestView, 0)
	err := r.db.WithContext(ctx).
		Table("credit_requests AS cr").
		Select("cr.id, cr.user_id, u.username, u.credits AS current_credits, cr.requested_credits, cr.reason, cr.status, cr.created_at, cr.resolved_at").
		Joins("JOIN users u ON u.id = cr.user_id").
		Where("cr.status = ?", status).
		Order("cr.created_at ASC, cr.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (r *creditRequestRepository) Resolve(ctx context.Context, id uint, status model.CreditRequestStatus, resolvedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.CreditRequest{}).
		Where("id = ? AND status = ?", id, model.CreditRequestPending).
		Updates(map[string]interface{}{"status": status, "resolved_at": resolvedAt.UTC()})
	return res.RowsAffected == 1, res.Error
}
