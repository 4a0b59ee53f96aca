// Package auth signs dashboard users in with email and password and issues
// the session tokens that guard the dashboard routes.
package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
	"github.com/Raymond9734/acme-dashboard-backend/internal/repository"
	"github.com/Raymond9734/acme-dashboard-backend/internal/validation"
)

// CredentialsProvider checks an email/password pair against the users table
type CredentialsProvider struct {
	users repository.UserRepository
}

// NewCredentialsProvider creates a new credentials provider
func NewCredentialsProvider(users repository.UserRepository) *CredentialsProvider {
	return &CredentialsProvider{users: users}
}

// Authorize returns the user for valid credentials. Every rejection is an
// *AuthError; lookup failures carry CallbackRouteError.
func (p *CredentialsProvider) Authorize(ctx context.Context, form validation.Form) (*models.User, error) {
	creds, errs := validation.ParseCredentials(form)
	if errs != nil {
		return nil, credentialsSignin()
	}

	user, err := p.users.GetByEmail(ctx, creds.Email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, credentialsSignin()
	}
	if err != nil {
		return nil, &AuthError{Type: CallbackRouteError, Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, credentialsSignin()
	}

	return user, nil
}

// HashPassword hashes a password for storage in users.password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
