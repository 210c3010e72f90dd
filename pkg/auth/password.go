package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stokwise/stokwise/pkg/domain"
	"github.com/stokwise/stokwise/pkg/repository"
)

// DefaultMinPasswordLength applies when no minimum is configured.
const DefaultMinPasswordLength = 8

// PasswordService handles password registration and authentication.
type PasswordService struct {
	db        *sql.DB
	users     *repository.UsersRepository
	creds     *repository.CredentialsRepository
	minLength int
}

// NewPasswordService creates a new password service.
func NewPasswordService(db *sql.DB, users *repository.UsersRepository, creds *repository.CredentialsRepository, minLength int) *PasswordService {
	if minLength <= 0 {
		minLength = DefaultMinPasswordLength
	}
	return &PasswordService{
		db:        db,
		users:     users,
		creds:     creds,
		minLength: minLength,
	}
}

// ValidatePassword checks the configured minimum length.
func (s *PasswordService) ValidatePassword(password string) error {
	if len(password) < s.minLength {
		return fmt.Errorf("%w: must be at least %d characters long", domain.ErrWeakPassword, s.minLength)
	}
	return nil
}

// Register creates a new account with password credentials.
func (s *PasswordService) Register(ctx context.Context, email, password, name string) (*domain.Account, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)

	if err := s.ValidatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	acct := &domain.Account{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if name = SanitizeName(name); name != "" {
		acct.Name = &name
	}

	err = repository.Tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.users.CreateTx(ctx, tx, acct); err != nil {
			return err
		}
		return s.creds.CreateTx(ctx, tx, &domain.UserPassword{
			UserID:            acct.ID,
			PasswordHash:      hash,
			PasswordUpdatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	return acct, nil
}

// Authenticate verifies email and password and returns the account on success.
func (s *PasswordService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	acct, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	cred, err := s.creds.GetByUserID(ctx, acct.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, cred.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return acct, nil
}
