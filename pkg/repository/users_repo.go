package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stokwise/stokwise/pkg/domain"
)

// UsersRepository handles account persistence.
type UsersRepository struct {
	db *sql.DB
}

// NewUsersRepository creates a new users repository.
func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// CreateTx creates a new account within a transaction.
func (r *UsersRepository) CreateTx(ctx context.Context, q Querier, acct *domain.Account) error {
	query := `
		INSERT INTO users (id, email, name, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query,
		acct.ID, acct.Email, acct.Name, acct.AvatarURL, acct.CreatedAt, acct.UpdatedAt,
	)
	if pqCode(err) == pqUniqueViolation {
		return domain.ErrUserAlreadyExists
	}
	return err
}

// GetByID retrieves an account by ID.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT id, email, name, avatar_url, created_at, updated_at, deleted_at
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves an account by email.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, email, name, avatar_url, created_at, updated_at, deleted_at
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// ExistsByEmail checks if an account with the given email exists.
func (r *UsersRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	return exists, err
}

func (r *UsersRepository) scanOne(row *sql.Row) (*domain.Account, error) {
	acct := &domain.Account{}
	err := row.Scan(
		&acct.ID, &acct.Email, &acct.Name, &acct.AvatarURL,
		&acct.CreatedAt, &acct.UpdatedAt, &acct.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return acct, nil
}
