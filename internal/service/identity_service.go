package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

type identityStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetOrCreate(ctx context.Context, user *models.User) (*models.User, error)
}

// IdentityService turns validated token claims into the acting user.
type IdentityService struct {
	users  identityStore
	logger *zap.Logger
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(users identityStore, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{users: users, logger: logger}
}

// Resolve returns the user behind the claims. Tokens issued by this service carry the user id
// and must still match the stored account. HR identities asserted without an id are created on
// first sight; concurrent first requests converge on one row through the unique email constraint.
// Intern accounts only come from provisioning and are never recreated here.
func (s *IdentityService) Resolve(ctx context.Context, claims *models.JWTClaims) (*models.User, error) {
	if claims == nil || strings.TrimSpace(claims.Email) == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing identity")
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve user")
	}

	switch {
	case user != nil:
		if claims.UserID != "" && claims.UserID != user.ID {
			s.logger.Warn("token subject does not match stored account", zap.String("email", email), zap.String("token_user_id", claims.UserID))
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token was issued for a different account")
		}
	case claims.UserID != "":
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
	case claims.Role == models.RoleIntern:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "intern account not found")
	case claims.Role != models.RoleHR:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "unknown role")
	default:
		user, err = s.users.GetOrCreate(ctx, &models.User{
			Email:     email,
			FirstName: claims.FirstName,
			LastName:  claims.LastName,
			Role:      models.RoleHR,
			Active:    true,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to provision user")
		}
		s.logger.Info("user provisioned from token", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	return user, nil
}

// EnsureHR makes sure an HR account exists for the given email. An existing account is left untouched.
func (s *IdentityService) EnsureHR(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "bootstrap HR email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user, err := s.users.GetOrCreate(ctx, &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.RoleHR,
		Active:       true,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to ensure HR user")
	}
	if user.Role != models.RoleHR {
		s.logger.Warn("bootstrap email belongs to a non-HR account", zap.String("email", email))
	}
	return user, nil
}
