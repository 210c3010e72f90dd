package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Tenant errors
var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrSlugTaken        = errors.New("a business with this slug already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryInUse    = errors.New("category still has linked products")
	ErrStoreNotFound    = errors.New("store not found")
)

// Validation errors
var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password does not meet requirements")
	ErrInvalidSlug  = errors.New("slug must be lower-case letters, digits and single hyphens")
)
