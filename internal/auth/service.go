package auth

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	apperrors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	userDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/core/events"
)

type RepositoryAPI interface {
	GetUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetUserByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	InvalidateResetTokens(ctx context.Context, userID int64) error
	CreateResetToken(ctx context.Context, token *userDatamodel.PasswordResetToken) error
	GetResetTokenForUpdate(ctx context.Context, token string) (*userDatamodel.PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, id int64) error
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ResolvePrincipal(ctx context.Context, accessToken string) (access.Principal, error)
	RequestPasswordReset(ctx context.Context, dto PasswordResetRequestDTO) error
	ConfirmPasswordReset(ctx context.Context, dto PasswordResetConfirmDTO) error
}

type Service struct {
	repo     RepositoryAPI
	tokens   TokenGenerator
	hasher   *PasswordHasher
	tx       Transactor
	events   events.Publisher
	logger   *slog.Logger
	resetTTL time.Duration
	now      func() time.Time
}

func NewService(repo RepositoryAPI, tokens TokenGenerator, hasher *PasswordHasher, tx Transactor, publisher events.Publisher, resetTTL time.Duration, logger *slog.Logger) *Service {
	if resetTTL <= 0 {
		resetTTL = 24 * time.Hour
	}
	return &Service{
		repo:     repo,
		tokens:   tokens,
		hasher:   hasher,
		tx:       tx,
		events:   publisher,
		logger:   logger,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

// Authenticate validates credentials and returns tokens. Unknown emails pay the same bcrypt cost as wrong passwords.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	user, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to load user for login", "error", err)
		return AuthTokens{}, apperrors.NewInternalError("failed to authenticate", err)
	}
	if user == nil {
		s.hasher.VerifyDummy(dto.Password)
		return AuthTokens{}, apperrors.ErrInvalidCredentials
	}
	if !s.hasher.Verify(user.PasswordHash, dto.Password) {
		s.logger.Warn("login failed: wrong password", "user_id", user.ID)
		return AuthTokens{}, apperrors.ErrInvalidCredentials
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	return s.issue(user)
}

func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}
	id, _ := claims.ID()

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return AuthTokens{}, apperrors.NewInternalError("failed to refresh tokens", err)
	}
	if user == nil {
		return AuthTokens{}, apperrors.ErrInvalidToken
	}
	return s.issue(user)
}

func (s *Service) issue(user *userDatamodel.User) (AuthTokens, error) {
	uid := strconv.FormatInt(user.ID, 10)
	accessToken, err := s.tokens.GenerateAccessToken(uid, user.Email)
	if err != nil {
		return AuthTokens{}, apperrors.NewInternalError("failed to issue token", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(uid, user.Email)
	if err != nil {
		return AuthTokens{}, apperrors.NewInternalError("failed to issue token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// ResolvePrincipal turns a bearer token into the caller's Principal using the role stored on the user row.
func (s *Service) ResolvePrincipal(ctx context.Context, accessToken string) (access.Principal, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return access.Principal{}, err
	}
	id, _ := claims.ID()

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return access.Principal{}, apperrors.NewInternalError("failed to load principal", err)
	}
	if user == nil {
		return access.Principal{}, apperrors.ErrUnauthenticated
	}

	p := access.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     access.Role(user.Role),
	}
	if !p.Authenticated() {
		s.logger.Warn("user has unknown role", "user_id", user.ID, "role", user.Role)
		return access.Principal{}, apperrors.ErrUnauthenticated
	}
	return p, nil
}

// RequestPasswordReset issues a fresh token and retires every earlier unused one. It reports success for unknown
// addresses so the endpoint cannot be used to probe accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, dto PasswordResetRequestDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetUserByEmail(ctx, dto.Email)
	if err != nil {
		return apperrors.NewInternalError("failed to request password reset", err)
	}
	if user == nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}

	raw, err := GenerateRandomToken()
	if err != nil {
		return apperrors.NewInternalError("failed to generate reset token", err)
	}

	expiresAt := s.now().Add(s.resetTTL)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.InvalidateResetTokens(ctx, user.ID); err != nil {
			return err
		}
		if err := s.repo.CreateResetToken(ctx, &userDatamodel.PasswordResetToken{
			Token:     raw,
			UserID:    user.ID,
			ExpiresAt: expiresAt,
		}); err != nil {
			return err
		}

		event := events.NewPasswordResetRequestedEvent(user.ID, user.Email, user.FullName, raw, expiresAt)
		database.AfterCommit(ctx, func() {
			if err := s.events.Publish(ctx, event); err != nil {
				s.logger.Error("failed to publish password reset event", "user_id", user.ID, "error", err)
			}
		})
		return nil
	})
	if err != nil {
		s.logger.Error("failed to store password reset token", "user_id", user.ID, "error", err)
		return apperrors.NewInternalError("failed to request password reset", err)
	}

	s.logger.Info("password reset token issued", "user_id", user.ID, "expires_at", expiresAt)
	return nil
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, dto PasswordResetConfirmDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(dto.NewPassword)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password", err)
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		token, err := s.repo.GetResetTokenForUpdate(ctx, dto.Token)
		if err != nil {
			return apperrors.NewInternalError("failed to load reset token", err)
		}
		if token == nil || !token.Active(s.now()) {
			return apperrors.ErrInvalidResetToken
		}

		if err := s.repo.UpdatePassword(ctx, token.UserID, hash); err != nil {
			return apperrors.NewInternalError("failed to update password", err)
		}
		if err := s.repo.MarkResetTokenUsed(ctx, token.ID); err != nil {
			return apperrors.NewInternalError("failed to consume reset token", err)
		}

		s.logger.Info("password reset completed", "user_id", token.UserID)
		return nil
	})
}
