package service

import (
	"context"

	"github.com/shopspring/decimal"

	"docscan/internal/errors"
	"docscan/internal/model"
	"docscan/internal/repository"
)

const topUsersLimit = 5

// AnalyticsService computes the admin dashboard summary. Nothing is cached.
type AnalyticsService interface {
	Summary(ctx context.Context) (*model.Analytics, error)
}

type analyticsService struct {
	store    repository.Store
	calendar Calendar
}

// NewAnalyticsService creates an analytics service; "today" follows calendar.
func NewAnalyticsService(store repository.Store, calendar Calendar) AnalyticsService {
	return &analyticsService{store: store, calendar: calendar}
}

func (s *analyticsService) Summary(ctx context.Context) (*model.Analytics, error) {
	today := s.calendar.Today()
	scans := s.store.ScanRecords()

	totalUsers, err := s.store.Users().Count(ctx)
	if err != nil {
		return nil, errors.Storage("count users", err)
	}
	scansToday, err := scans.CountSince(ctx, today)
	if err != nil {
		return nil, errors.Storage("count scans today", err)
	}
	activeToday, err := scans.CountUsersSince(ctx, today)
	if err != nil {
		return nil, errors.Storage("count active users", err)
	}
	avg, err := scans.AverageSimilarity(ctx)
	if err != nil {
		return nil, errors.Storage("average similarity", err)
	}
	top, err := scans.TopUsers(ctx, topUsersLimit)
	if err != nil {
		return nil, errors.Storage("top users", err)
	}

	return &model.Analytics{
		TotalUsers:       totalUsers,
		ScansToday:       scansToday,
		ActiveUsersToday: activeToday,
		AvgSimilarity:    decimal.NewFromFloat(avg).Round(2).InexactFloat64(),
		TopUsers:         top,
	}, nil
}
