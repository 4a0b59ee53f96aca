package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Raymond9734/acme-dashboard-backend/internal/auth"
	"github.com/Raymond9734/acme-dashboard-backend/internal/models"
	"github.com/Raymond9734/acme-dashboard-backend/internal/validation"
)

// Authorizer checks submitted credentials
type Authorizer interface {
	Authorize(ctx context.Context, form validation.Form) (*models.User, error)
}

// SessionIssuer issues a session for a signed-in user
type SessionIssuer interface {
	Issue(user *models.User) (*auth.Session, error)
}

// AuthService handles sign-in
type AuthService interface {
	Authenticate(ctx context.Context, prev FormState, form validation.Form) (*AuthResult, error)
}

type authService struct {
	provider Authorizer
	sessions SessionIssuer
	logger   *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(provider Authorizer, sessions SessionIssuer, logger *slog.Logger) AuthService {
	return &authService{
		provider: provider,
		sessions: sessions,
		logger:   logger,
	}
}

// Authenticate signs the user in. Recognized auth failures become a
// message; any other error is returned.
func (s *authService) Authenticate(ctx context.Context, prev FormState, form validation.Form) (*AuthResult, error) {
	user, err := s.provider.Authorize(ctx, form)
	if err != nil {
		var authErr *auth.AuthError
		if !errors.As(err, &authErr) {
			return nil, err
		}

		switch authErr.Type {
		case auth.CredentialsSignin:
			return &AuthResult{Message: MsgInvalidCredentials}, nil
		default:
			s.logger.Error("sign-in failed",
				slog.String("type", string(authErr.Type)),
				slog.String("error", authErr.Error()),
			)
			return &AuthResult{Message: MsgSomethingWentWrong}, nil
		}
	}

	session, err := s.sessions.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	s.logger.Info("user signed in", slog.String("user_id", user.ID))

	return &AuthResult{
		Session:    session,
		RedirectTo: redirectTarget(form.Value("redirectTo")),
	}, nil
}

// redirectTarget keeps only same-site paths
func redirectTarget(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return RouteDashboard
	}
	return raw
}
