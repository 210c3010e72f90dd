package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stokwise/stokwise/pkg/domain"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUsersRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUsersRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "email", "name", "avatar_url", "created_at", "updated_at", "deleted_at"}).
		AddRow("u1", "owner@example.com", "Owner", nil, now, now, nil)
	mock.ExpectQuery(`SELECT id, email, name, avatar_url`).
		WithArgs("u1").
		WillReturnRows(rows)

	acct, err := repo.GetByID(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", acct.Email)
	require.NotNil(t, acct.Name)
	assert.Equal(t, "Owner", *acct.Name)
	assert.Nil(t, acct.AvatarURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepository_GetByEmail_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUsersRepository(db)

	mock.ExpectQuery(`FROM users`).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersRepository_CreateTx_Duplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUsersRepository(db)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	err := repo.CreateTx(context.Background(), db, &domain.Account{
		ID: "u1", Email: "owner@example.com", CreatedAt: now, UpdatedAt: now,
	})

	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_RollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := Tx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(context.Background(), `INSERT INTO users (id) VALUES ($1)`, "u1")
		return err
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "stokwise", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=stokwise sslmode=disable", cfg.DSN())
}
