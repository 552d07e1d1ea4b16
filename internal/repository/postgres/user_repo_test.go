package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/domain"
)

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO users \(name, email, password_hash, created_at, updated_at\)`).
			WithArgs("Ada", "ada@example.com", "hashed", now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-1"))

		repo := NewUserRepository(db)
		u := domain.NewUser("Ada", "ada@example.com", "hashed", now, now)
		require.NoError(t, repo.Create(ctx, u))
		require.Equal(t, "user-1", u.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation returns ErrDuplicateEmail", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505"})

		repo := NewUserRepository(db)
		u := domain.NewUser("Ada", "ada@example.com", "hashed", now, now)
		require.ErrorIs(t, repo.Create(ctx, u), domain.ErrDuplicateEmail)
	})
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
				AddRow("user-1", "Ada", "ada@example.com", "hashed", now, now))

		repo := NewUserRepository(db)
		u, err := repo.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Equal(t, "user-1", u.ID)
		require.Equal(t, "hashed", u.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at, updated_at`).
			WithArgs("ghost@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}))

		repo := NewUserRepository(db)
		_, err = repo.GetByEmail(ctx, "ghost@example.com")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
