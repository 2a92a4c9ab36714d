package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"acervo/internal/repository"
	repoMocks "acervo/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatsService_Admin(t *testing.T) {
	ctx := context.Background()

	t.Run("composes both sides and anchors to the calendar month", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		mUsers := new(repoMocks.MockUserRepository)

		svc := NewStatsService(mDocs, mUsers).(*statsService)
		svc.now = func() time.Time {
			return time.Date(2023, 6, 18, 15, 4, 5, 0, time.UTC)
		}
		monthStart := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

		mDocs.On("Stats", ctx, monthStart).
			Return(&repository.DocumentStats{Total: 6, TotalDownloads: 447, CreatedSince: 1}, nil)
		mUsers.On("Stats", ctx).
			Return(&repository.UserStats{Total: 6, Admins: 1, Active: 6}, nil)

		stats, err := svc.Admin(ctx)
		require.NoError(t, err)
		assert.Equal(t, 6, stats.TotalDocuments)
		assert.Equal(t, 6, stats.TotalUsers)
		assert.Equal(t, 1, stats.TotalAdmins)
		assert.Equal(t, 6, stats.ActiveUsers)
		assert.Equal(t, 447, stats.TotalDownloads)
		assert.Equal(t, 1, stats.DocumentsThisMonth)

		mDocs.AssertExpectations(t)
		mUsers.AssertExpectations(t)
	})

	t.Run("document side error", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewStatsService(mDocs, mUsers)

		mDocs.On("Stats", ctx, mock.Anything).Return(nil, errors.New("db fail"))

		_, err := svc.Admin(ctx)
		assert.Error(t, err)
	})

	t.Run("user side error", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		mUsers := new(repoMocks.MockUserRepository)
		svc := NewStatsService(mDocs, mUsers)

		mDocs.On("Stats", ctx, mock.Anything).
			Return(&repository.DocumentStats{}, nil)
		mUsers.On("Stats", ctx).Return(nil, errors.New("db fail"))

		_, err := svc.Admin(ctx)
		assert.Error(t, err)
	})
}
