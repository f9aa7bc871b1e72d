package auth_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	apperrors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/auth"
	authPostgres "github.com/frahmantamala/fuel-station-management/internal/auth/postgres"
	userDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/core/database/databasetest"
	"github.com/frahmantamala/fuel-station-management/internal/core/events"
	"github.com/frahmantamala/fuel-station-management/internal/core/events/eventstest"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		service  *auth.Service
		tokenGen *auth.JWTTokenGenerator
		hasher   *auth.PasswordHasher
		recorder *eventstest.Recorder
		manager  *userDatamodel.User
		slogger  *slog.Logger
	)

	const (
		accessSecret  = "test-access-secret-test-access-secret"
		refreshSecret = "test-refresh-secret-test-refresh-secret"
	)

	ginkgo.BeforeEach(func() {
		var err error
		ctx = context.Background()
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = databasetest.Open()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		hasher, err = auth.NewPasswordHasher(bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		hash, err := hasher.Hash("correct_password")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		manager = &userDatamodel.User{
			Username:     "m1",
			FullName:     "Manager One",
			Email:        "manager@example.com",
			PasswordHash: hash,
			Role:         "manager",
		}
		gomega.Expect(db.Create(manager).Error).To(gomega.Succeed())

		tokenGen = auth.NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 24*time.Hour)
		recorder = eventstest.NewRecorder()
		service = auth.NewService(
			authPostgres.NewRepository(db),
			tokenGen,
			hasher,
			database.NewTransactor(db, slogger),
			recorder,
			24*time.Hour,
			slogger,
		)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("should return access and refresh tokens for valid credentials", func() {
			tokens, err := service.Authenticate(ctx, auth.LoginDTO{Email: "Manager@Example.com ", Password: "correct_password"})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).NotTo(gomega.Equal(tokens.AccessToken))
			gomega.Expect(tokens.TokenType).To(gomega.Equal("Bearer"))

			var stored userDatamodel.User
			gomega.Expect(db.First(&stored, manager.ID).Error).To(gomega.Succeed())
			gomega.Expect(stored.LastLogin).NotTo(gomega.BeNil())
		})

		ginkgo.It("should reject a wrong password and an unknown email the same way", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "manager@example.com", Password: "nope"})
			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidCredentials))

			_, err = service.Authenticate(ctx, auth.LoginDTO{Email: "ghost@example.com", Password: "nope"})
			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidCredentials))
		})

		ginkgo.It("should require both fields", func() {
			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "manager@example.com"})
			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeValidation))
		})
	})

	ginkgo.Describe("tokens", func() {
		ginkgo.It("should not accept a refresh token as an access token", func() {
			tokens, err := service.Authenticate(ctx, auth.LoginDTO{Email: "manager@example.com", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ResolvePrincipal(ctx, tokens.RefreshToken)
			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidToken))

			refreshed, err := service.RefreshTokens(ctx, tokens.RefreshToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(refreshed.AccessToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("should report expired tokens distinctly", func() {
			expired := auth.NewJWTTokenGenerator(accessSecret, refreshSecret, -time.Minute, time.Hour)
			token, err := expired.GenerateAccessToken("1", "manager@example.com")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = tokenGen.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrTokenExpired))
		})
	})

	ginkgo.Describe("ResolvePrincipal", func() {
		ginkgo.It("should take the role from the stored user, not the token", func() {
			token, err := tokenGen.GenerateAccessToken(itoa(manager.ID), manager.Email)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			p, err := service.ResolvePrincipal(ctx, token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(p.Role).To(gomega.Equal(access.RoleManager))

			gomega.Expect(db.Model(manager).Update("role", "owner").Error).To(gomega.Succeed())
			p, err = service.ResolvePrincipal(ctx, token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(p.Role).To(gomega.Equal(access.RoleOwner))
		})

		ginkgo.It("should treat a token for a deleted user as unauthenticated", func() {
			token, err := tokenGen.GenerateAccessToken(itoa(manager.ID), manager.Email)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(db.Delete(manager).Error).To(gomega.Succeed())

			_, err = service.ResolvePrincipal(ctx, token)
			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrUnauthenticated))
		})
	})

	ginkgo.Describe("password reset", func() {
		activeTokens := func() []userDatamodel.PasswordResetToken {
			var tokens []userDatamodel.PasswordResetToken
			gomega.Expect(db.Where("user_id = ? AND used = ?", manager.ID, false).Find(&tokens).Error).To(gomega.Succeed())
			return tokens
		}

		ginkgo.It("should keep a single active token per user", func() {
			dto := auth.PasswordResetRequestDTO{Email: "manager@example.com"}
			gomega.Expect(service.RequestPasswordReset(ctx, dto)).To(gomega.Succeed())
			first := activeTokens()
			gomega.Expect(first).To(gomega.HaveLen(1))

			gomega.Expect(service.RequestPasswordReset(ctx, dto)).To(gomega.Succeed())
			second := activeTokens()
			gomega.Expect(second).To(gomega.HaveLen(1))
			gomega.Expect(second[0].Token).NotTo(gomega.Equal(first[0].Token))
			gomega.Expect(second[0].ExpiresAt).To(gomega.BeTemporally("~", time.Now().Add(24*time.Hour), time.Minute))

			gomega.Expect(recorder.Types()).To(gomega.Equal([]string{
				events.EventTypePasswordResetRequested,
				events.EventTypePasswordResetRequested,
			}))
		})

		ginkgo.It("should succeed silently for unknown addresses", func() {
			gomega.Expect(service.RequestPasswordReset(ctx, auth.PasswordResetRequestDTO{Email: "ghost@example.com"})).To(gomega.Succeed())
			gomega.Expect(recorder.Events()).To(gomega.BeEmpty())
		})

		ginkgo.It("should change the password once per token", func() {
			gomega.Expect(service.RequestPasswordReset(ctx, auth.PasswordResetRequestDTO{Email: "manager@example.com"})).To(gomega.Succeed())
			token := activeTokens()[0].Token

			confirm := auth.PasswordResetConfirmDTO{Token: token, NewPassword: "brand-new-password"}
			gomega.Expect(service.ConfirmPasswordReset(ctx, confirm)).To(gomega.Succeed())
			gomega.Expect(service.ConfirmPasswordReset(ctx, confirm)).To(gomega.MatchError(apperrors.ErrInvalidResetToken))

			_, err := service.Authenticate(ctx, auth.LoginDTO{Email: "manager@example.com", Password: "brand-new-password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("should reject superseded and expired tokens", func() {
			dto := auth.PasswordResetRequestDTO{Email: "manager@example.com"}
			gomega.Expect(service.RequestPasswordReset(ctx, dto)).To(gomega.Succeed())
			old := activeTokens()[0].Token
			gomega.Expect(service.RequestPasswordReset(ctx, dto)).To(gomega.Succeed())

			err := service.ConfirmPasswordReset(ctx, auth.PasswordResetConfirmDTO{Token: old, NewPassword: "brand-new-password"})
			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidResetToken))

			gomega.Expect(db.Model(&userDatamodel.PasswordResetToken{}).
				Where("used = ?", false).
				Update("expires_at", time.Now().Add(-time.Minute)).Error).To(gomega.Succeed())
			current := activeTokens()[0].Token
			err = service.ConfirmPasswordReset(ctx, auth.PasswordResetConfirmDTO{Token: current, NewPassword: "brand-new-password"})
			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrInvalidResetToken))
		})
	})

	ginkgo.Describe("Handler", func() {
		var handler *auth.Handler

		ginkgo.BeforeEach(func() {
			handler = auth.NewHandler(transport.NewBaseHandler(slogger), service)
		})

		ginkgo.It("should put the principal on the request context", func() {
			token, err := tokenGen.GenerateAccessToken(itoa(manager.ID), manager.Email)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			var seen access.Principal
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = access.PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(seen.UserID).To(gomega.Equal(manager.ID))
		})

		ginkgo.It("should answer 401 without a bearer token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
			w := httptest.NewRecorder()
			handler.AuthMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should answer 202 for any well-formed reset request", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/password-reset", strings.NewReader(`{"email":"ghost@example.com"}`))
			w := httptest.NewRecorder()
			handler.RequestPasswordReset(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusAccepted))
		})

		ginkgo.It("should reject roles outside the allowed set", func() {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/prices/diesel", nil)
			req = req.WithContext(access.WithPrincipal(req.Context(), access.Principal{UserID: manager.ID, Role: access.RoleManager}))
			w := httptest.NewRecorder()
			handler.RequireRole(access.RoleAdmin, access.RoleOwner)(http.NotFoundHandler()).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
		})
	})
})

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
