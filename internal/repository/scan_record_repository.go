package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"docscan/internal/model"
)

// ScanRecordRepository persists scan outcomes and aggregates them.
type ScanRecordRepository interface {
	Create(ctx context.Context, record *model.ScanRecord) error
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountUsersSince(ctx context.Context, since time.Time) (int64, error)
	AverageSimilarity(ctx context.Context) (float64, error)
	// TopUsers ranks users by scan count, ties broken by user id.
	TopUsers(ctx context.Context, limit int) ([]model.UserScanCount, error)
}

type scanRecordRepository struct {
	db *gorm.DB
}

// NewScanRecordRepository creates a new scan record repository.
func NewScanRecordRepository(db *gorm.DB) ScanRecordRepository {
	return &scanRecordRepository{db: db}
}

func (r *scanRecordRepository) Create(ctx context.Context, record *model.ScanRecord) error {
	return r.db.WithContext(ctx).Omit("User").Create(record).Error
}

func (r *scanRecordRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ScanRecord{}).
		Where("created_at >= ?", since.UTC()).
		Count(&n).Error
	return n, err
}

func (r *scanRecordRepository) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ScanRecord{}).
		Where("created_at >= ?", since.UTC()).
		Distinct("user_id").
		Count(&n).Error
	return n, err
}

func (r *scanRecordRepository) AverageSimilarity(ctx context.Context) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).Model(&model.ScanRecord{}).
		Select("COALESCE(AVG(similarity), 0)").
		Row().Scan(&avg)
	return avg, err
}

func (r *scanRecordRepository) TopUsers(ctx context.Context, limit int) ([]model.UserScanCount, error) {
	rows := make([]model.UserScanCount, 0, limit)
	err := r.db.WithContext(ctx).
		Table("scans").
		Select("scans.user_id AS user_id, users.username AS username, COUNT(scans.id) AS scan_count").
		Joins("JOIN users ON users.id = scans.user_id").
		Group("scans.user_id, users.username").
		Order("scan_count DESC, scans.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
