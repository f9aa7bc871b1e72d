package user

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/core/events"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	List(ctx context.Context, scope access.Scope, role string) ([]*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
	OwnsCompanies(ctx context.Context, id int64) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   RepositoryAPI
	gate   *access.Gate
	hasher PasswordHasher
	tx     Transactor
	events events.Publisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, gate *access.Gate, hasher PasswordHasher, tx Transactor, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		hasher: hasher,
		tx:     tx,
		events: publisher,
		logger: logger,
	}
}

// List returns the users inside the caller's user scope, optionally filtered by role.
func (s *Service) List(ctx context.Context, p access.Principal, role string) ([]*User, error) {
	scope, err := s.gate.Resolver().Users(ctx, p)
	if err != nil {
		return nil, errors.NewInternalError("failed to resolve user scope", err)
	}
	if scope.Empty() {
		return []*User{}, nil
	}
	return s.repo.List(ctx, scope, role)
}

func (s *Service) Get(ctx context.Context, p access.Principal, id int64) (*User, error) {
	u, err := s.load(ctx, p, id, access.ActionRead)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) load(ctx context.Context, p access.Principal, id int64, action access.Action) (*User, error) {
	if !p.Authenticated() {
		return nil, errors.ErrUnauthenticated
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, errors.ErrAccessDenied
	}
	if err := s.gate.Authorize(ctx, p, action, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, p access.Principal, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	role := access.Role(dto.Role)
	if err := s.gate.AuthorizeCreate(ctx, p, access.KindUser, access.Ownership{UserRole: role}); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Username:     dto.Username,
		FullName:     dto.FullName,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         role,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, u); err != nil {
			return err
		}
		event := events.NewUserCreatedEvent(u.ID, u.Username, u.FullName, u.Email, u.Role.String())
		database.AfterCommit(ctx, func() {
			if err := s.events.Publish(ctx, event); err != nil {
				s.logger.Error("failed to publish user created event", "user_id", u.ID, "error", err)
			}
		})
		return nil
	})
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role, "created_by", p.UserID)
	return u, nil
}

// Update applies a partial update. Only admins may change roles; nobody but an admin may touch an admin.
func (s *Service) Update(ctx context.Context, p access.Principal, id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.load(ctx, p, id, access.ActionWrite)
	if err != nil {
		return nil, err
	}

	if dto.Role != nil && access.Role(*dto.Role) != u.Role {
		if !p.IsAdmin() {
			s.logger.Warn("role change denied", "user_id", p.UserID, "target_id", u.ID, "requested_role", *dto.Role)
			return nil, errors.ErrRoleNotAllowed
		}
		u.Role = access.Role(*dto.Role)
	}
	if dto.Username != nil {
		u.Username = *dto.Username
	}
	if dto.FullName != nil {
		u.FullName = *dto.FullName
	}
	if dto.Email != nil {
		u.Email = *dto.Email
	}
	if dto.Password != nil {
		hash, err := s.hasher.Hash(*dto.Password)
		if err != nil {
			return nil, errors.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, s.mapWriteError(err)
	}

	s.logger.Info("user updated", "user_id", u.ID, "updated_by", p.UserID)
	return u, nil
}

// Delete removes a user. Stations they managed keep running without a manager.
func (s *Service) Delete(ctx context.Context, p access.Principal, id int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		u, err := s.load(ctx, p, id, access.ActionDelete)
		if err != nil {
			return err
		}

		owns, err := s.repo.OwnsCompanies(ctx, u.ID)
		if err != nil {
			return errors.NewInternalError("failed to check company ownership", err)
		}
		if owns {
			return errors.ErrUserInUse
		}
		return s.repo.Delete(ctx, u.ID)
	})
	if err != nil {
		return s.mapWriteError(err)
	}

	s.logger.Info("user deleted", "user_id", id, "deleted_by", p.UserID)
	return nil
}

func (s *Service) mapWriteError(err error) error {
	if _, ok := errors.IsAppError(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return errors.ErrDuplicateUser
	case stderrors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.ErrUserInUse
	}
	s.logger.Error("user write failed", "error", err)
	return errors.NewInternalError("failed to save user", err)
}
