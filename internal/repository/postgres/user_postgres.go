package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"acervo/internal/repository"
	"acervo/pkg/model"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// The documentCount column is derived with a correlated subquery so it never
// drifts from the documents table.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `
	u.id, u.name, u.email, u.role,
	(SELECT COUNT(*) FROM documents d WHERE d.created_by = u.id),
	u.created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.DocumentCount, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account with its password material.
func (r *UserPostgres) Create(ctx context.Context, cred *repository.Credential) (*model.User, error) {
	const q = `
		INSERT INTO users (id, name, email, role, password_hash, salt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, email, role, 0, created_at
	`
	u := cred.User
	return scanUser(r.db.QueryRowContext(ctx, q,
		u.ID, u.Name, u.Email, u.Role, cred.PasswordHash, cred.Salt, u.CreatedAt,
	))
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT` + userColumns + ` FROM users u WHERE u.id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindCredential fetches a user together with its password material by email.
func (r *UserPostgres) FindCredential(ctx context.Context, email string) (*repository.Credential, error) {
	q := `
		SELECT` + userColumns + `, u.password_hash, u.salt
		FROM users u WHERE u.email = $1
	`
	var c repository.Credential
	if err := r.db.QueryRowContext(ctx, q, email).Scan(
		&c.User.ID, &c.User.Name, &c.User.Email, &c.User.Role,
		&c.User.DocumentCount, &c.User.CreatedAt,
		&c.PasswordHash, &c.Salt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns users matching the search term with LIMIT/OFFSET pagination.
func (r *UserPostgres) List(ctx context.Context, search string, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	where := ""
	args := []any{}
	if search != "" {
		where = " WHERE u.name ILIKE $1 OR u.email ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	qCount := `SELECT COUNT(*) FROM users u` + where
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	qList := `SELECT` + userColumns + ` FROM users u` + where + fmt.Sprintf(`
		ORDER BY u.created_at DESC, u.id ASC
		LIMIT $%d OFFSET $%d
	`, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

// UpdateRole sets the user's role and returns the updated row.
func (r *UserPostgres) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	const q = `
		UPDATE users u SET role = $1 WHERE u.id = $2
		RETURNING u.id, u.name, u.email, u.role,
		          (SELECT COUNT(*) FROM documents d WHERE d.created_by = u.id),
		          u.created_at
	`
	return scanUser(r.db.QueryRowContext(ctx, q, role, id))
}

// Stats returns aggregate account counters.
func (r *UserPostgres) Stats(ctx context.Context) (*repository.UserStats, error) {
	const q = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE role = 'ADMIN'),
		       COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM documents d WHERE d.created_by = users.id))
		FROM users
	`
	var s repository.UserStats
	if err := r.db.QueryRowContext(ctx, q).Scan(&s.Total, &s.Admins, &s.Active); err != nil {
		return nil, err
	}
	return &s, nil
}
