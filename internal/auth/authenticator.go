// Package auth registers and signs in the people who own transactions and
// take part in splits.
package auth

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("email is required")
)

// Authenticator creates accounts and checks credentials. Participant IDs in
// splits are the IDs of the users it returns.
type Authenticator interface {
	// Register creates an account. Emails are unique after normalization.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user for a valid email and credential, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	ValidateCredential(credential string) error
}

// UserStorage is the subset of storage.UserStore the authenticator needs.
// GetUserByEmail and GetUserByID return nil, nil when no user matches.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
