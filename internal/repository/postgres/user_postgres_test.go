package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"acervo/internal/repository"
	"acervo/pkg/model"
)

var userCols = []string{"id", "name", "email", "role", "document_count", "created_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	now := time.Now().UTC()

	cred := &repository.Credential{
		User: model.User{
			ID: "u7", Name: "Maria Souza", Email: "maria@uenf.br",
			Role: model.RoleUser, CreatedAt: now,
		},
		PasswordHash: []byte("hash"),
		Salt:         []byte("salt"),
	}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("u7", "Maria Souza", "maria@uenf.br", model.RoleUser, []byte("hash"), []byte("salt"), now).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u7", "Maria Souza", "maria@uenf.br", "USER", 0, now))

	user, err := repo.Create(context.Background(), cred)

	assert.NoError(t, err)
	assert.Equal(t, "u7", user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Zero(t, user.DocumentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users u WHERE u.id = ?").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u1", "Dr. João Silva", "joao@uenf.br", "ADMIN", 3, time.Now()))

		user, err := repo.FindByID(ctx, "u1")

		assert.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, user.Role)
		assert.Equal(t, 3, user.DocumentCount)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users u WHERE u.id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, user)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindCredential(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)

	cols := append(append([]string{}, userCols...), "password_hash", "salt")
	mock.ExpectQuery("SELECT (.+) FROM users u WHERE u.email = ?").
		WithArgs("joao@uenf.br").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "Dr. João Silva", "joao@uenf.br", "ADMIN", 3, time.Now(), []byte("hash"), []byte("salt")))

	cred, err := repo.FindCredential(context.Background(), "joao@uenf.br")

	assert.NoError(t, err)
	assert.Equal(t, "u1", cred.User.ID)
	assert.Equal(t, []byte("hash"), cred.PasswordHash)
	assert.Equal(t, []byte("salt"), cred.Salt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()

	t.Run("unfiltered", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users u").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		mock.ExpectQuery("SELECT (.+) FROM users u").
			WithArgs(9, 0).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u1", "Dr. João Silva", "joao@uenf.br", "ADMIN", 3, time.Now()).
				AddRow("u2", "Maria Souza", "maria@uenf.br", "USER", 0, time.Now()))

		page, err := repo.List(ctx, "", repository.PageQuery{Limit: 9})

		assert.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, 2, page.Total)
	})

	t.Run("search by name or email", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users u").
			WithArgs("%maria%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("SELECT (.+) FROM users u").
			WithArgs("%maria%", 9, 0).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u2", "Maria Souza", "maria@uenf.br", "USER", 0, time.Now()))

		page, err := repo.List(ctx, "maria", repository.PageQuery{Limit: 9})

		assert.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, "Maria Souza", page.Items[0].Name)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdateRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)

	t.Run("promoted", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users u SET role = ?").
			WithArgs(model.RoleAdmin, "u2").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("u2", "Maria Souza", "maria@uenf.br", "ADMIN", 0, time.Now()))

		user, err := repo.UpdateRole(context.Background(), "u2", model.RoleAdmin)

		assert.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, user.Role)
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users u SET role = ?").
			WithArgs(model.RoleUser, "missing").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.UpdateRole(context.Background(), "missing", model.RoleUser)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, user)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WillReturnRows(sqlmock.NewRows([]string{"total", "admins", "active"}).AddRow(6, 1, 4))

	stats, err := repo.Stats(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, repository.UserStats{Total: 6, Admins: 1, Active: 4}, *stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}
