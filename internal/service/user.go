package service

import (
	"context"
	"database/sql"
	"errors"

	"acervo/internal/repository"
	"acervo/pkg/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfDemotion = errors.New("admins cannot remove their own privileges")
	ErrInvalidRole  = errors.New("invalid role")
)

// UserListResult is the service-level DTO for paginated accounts.
type UserListResult struct {
	Items     []model.User `json:"data"`
	Total     int          `json:"total"`
	PageCount int          `json:"pageCount"`
}

// UserService defines the administration use cases for accounts.
type UserService interface {
	// List returns accounts whose name or email contains the search term.
	List(ctx context.Context, search string, limit, offset int) (*UserListResult, error)

	// UpdateRole changes an account's role. An admin changing their own role
	// to anything below admin is rejected.
	UpdateRole(ctx context.Context, actor model.User, id string, role model.Role) (*model.User, error)
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService constructs a new UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) List(ctx context.Context, search string, limit, offset int) (*UserListResult, error) {
	if limit <= 0 {
		limit = 9
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, search, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total, PageCount: res.Pages(limit)}, nil
}

func (s *userService) UpdateRole(ctx context.Context, actor model.User, id string, role model.Role) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, ErrInvalidRole
	}
	if actor.ID == id && role != model.RoleAdmin {
		return nil, ErrSelfDemotion
	}
	updated, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return updated, nil
}
