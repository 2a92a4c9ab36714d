package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"acervo/internal/repository"
	"acervo/pkg/model"
)

type users struct{ s *Store }

var _ repository.UserRepository = (*users)(nil)

// Create inserts an account with its password material.
func (r *users) Create(_ context.Context, cred *repository.Credential) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *cred
	cp.PasswordHash = append([]byte(nil), cred.PasswordHash...)
	cp.Salt = append([]byte(nil), cred.Salt...)
	r.s.users[cp.User.ID] = &cp
	u := cp.User
	return &u, nil
}

// FindByID returns a user or sql.ErrNoRows.
func (r *users) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	u := r.withDocCount(c.User)
	return &u, nil
}

// FindCredential returns the credential for the given email.
func (r *users) FindCredential(_ context.Context, email string) (*repository.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.users {
		if strings.EqualFold(c.User.Email, email) {
			cp := *c
			cp.User = r.withDocCount(c.User)
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

// List filters users by name or email substring, newest first.
func (r *users) List(_ context.Context, search string, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q := strings.ToLower(search)
	matched := make([]model.User, 0, len(r.s.users))
	for _, c := range r.s.users {
		if q == "" ||
			strings.Contains(strings.ToLower(c.User.Name), q) ||
			strings.Contains(strings.ToLower(c.User.Email), q) {
			matched = append(matched, r.withDocCount(c.User))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	start, end := pageBounds(total, pq)
	return &repository.PageResult[model.User]{
		Items: append([]model.User(nil), matched[start:end]...),
		Total: total,
	}, nil
}

// UpdateRole sets the user's role.
func (r *users) UpdateRole(_ context.Context, id string, role model.Role) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	c.User.Role = role
	u := r.withDocCount(c.User)
	return &u, nil
}

// Stats returns aggregate account counters.
func (r *users) Stats(_ context.Context) (*repository.UserStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := repository.UserStats{Total: len(r.s.users)}
	for _, c := range r.s.users {
		if c.User.Role == model.RoleAdmin {
			st.Admins++
		}
		if r.docCount(c.User.ID) > 0 {
			st.Active++
		}
	}
	return &st, nil
}

// withDocCount refreshes the derived documentCount. Callers must hold the lock.
func (r *users) withDocCount(u model.User) model.User {
	u.DocumentCount = r.docCount(u.ID)
	return u
}

func (r *users) docCount(userID string) int {
	n := 0
	for _, d := range r.s.docs {
		if d.CreatedBy.ID == userID {
			n++
		}
	}
	return n
}
