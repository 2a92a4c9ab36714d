package service

import (
	"context"
	"time"

	"acervo/internal/repository"
	"acervo/pkg/model"
)

// StatsService aggregates the counters for the administration panel.
type StatsService interface {
	Admin(ctx context.Context) (*model.AdminStats, error)
}

type statsService struct {
	docs  repository.DocumentRepository
	users repository.UserRepository
	now   func() time.Time
}

// NewStatsService constructs a new StatsService.
func NewStatsService(docs repository.DocumentRepository, users repository.UserRepository) StatsService {
	return &statsService{docs: docs, users: users, now: time.Now}
}

// Admin composes document and account counters. "This month" means the
// calendar month of the current UTC instant, not a rolling window.
func (s *statsService) Admin(ctx context.Context) (*model.AdminStats, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	ds, err := s.docs.Stats(ctx, monthStart)
	if err != nil {
		return nil, err
	}
	us, err := s.users.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &model.AdminStats{
		TotalDocuments:     ds.Total,
		TotalUsers:         us.Total,
		TotalAdmins:        us.Admins,
		ActiveUsers:        us.Active,
		TotalDownloads:     ds.TotalDownloads,
		DocumentsThisMonth: ds.CreatedSince,
	}, nil
}
