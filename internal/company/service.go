package company

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	List(ctx context.Context, scope access.Scope) ([]*Company, error)
	GetByID(ctx context.Context, id int64) (*Company, error)
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	Delete(ctx context.Context, id int64) error
	UserRole(ctx context.Context, userID int64) (string, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   RepositoryAPI
	gate   *access.Gate
	tx     Transactor
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, gate *access.Gate, tx Transactor, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		tx:     tx,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, p access.Principal) ([]*Company, error) {
	scope, err := s.gate.Resolver().Companies(ctx, p)
	if err != nil {
		return nil, errors.NewInternalError("failed to resolve company scope", err)
	}
	if scope.Empty() {
		return []*Company{}, nil
	}
	return s.repo.List(ctx, scope)
}

func (s *Service) Get(ctx context.Context, p access.Principal, id int64) (*Company, error) {
	return s.load(ctx, p, id, access.ActionRead)
}

func (s *Service) load(ctx context.Context, p access.Principal, id int64, action access.Action) (*Company, error) {
	if !p.Authenticated() {
		return nil, errors.ErrUnauthenticated
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load company", err)
	}
	if c == nil {
		return nil, errors.ErrAccessDenied
	}
	if err := s.gate.Authorize(ctx, p, action, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Create registers a company. Owners always own what they create; admins must name an owner.
func (s *Service) Create(ctx context.Context, p access.Principal, dto CreateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.gate.AuthorizeCreate(ctx, p, access.KindCompany, access.Ownership{}); err != nil {
		return nil, err
	}

	c := &Company{Name: dto.Name, OwnerID: p.UserID}
	if p.IsAdmin() {
		if dto.OwnerID == nil {
			return nil, errors.NewValidationFieldError("owner_id", "owner_id is required", errors.ErrCodeValidationFailed)
		}
		if err := s.checkOwner(ctx, *dto.OwnerID); err != nil {
			return nil, err
		}
		c.OwnerID = *dto.OwnerID
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, s.mapWriteError(err)
	}

	s.logger.Info("company created", "company_id", c.ID, "owner_id", c.OwnerID, "created_by", p.UserID)
	return c, nil
}

func (s *Service) Update(ctx context.Context, p access.Principal, id int64, dto UpdateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	c, err := s.load(ctx, p, id, access.ActionWrite)
	if err != nil {
		return nil, err
	}

	if dto.OwnerID != nil && *dto.OwnerID != c.OwnerID {
		if !p.IsAdmin() {
			return nil, errors.ErrRoleNotAllowed
		}
		if err := s.checkOwner(ctx, *dto.OwnerID); err != nil {
			return nil, err
		}
		c.OwnerID = *dto.OwnerID
	}
	if dto.Name != nil {
		c.Name = *dto.Name
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, s.mapWriteError(err)
	}
	return c, nil
}

// Delete removes the company together with its stations and everything under them.
func (s *Service) Delete(ctx context.Context, p access.Principal, id int64) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.load(ctx, p, id, access.ActionDelete); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return s.mapWriteError(err)
	}
	s.logger.Info("company deleted", "company_id", id, "deleted_by", p.UserID)
	return nil
}

func (s *Service) checkOwner(ctx context.Context, ownerID int64) error {
	role, err := s.repo.UserRole(ctx, ownerID)
	if err != nil {
		return errors.NewInternalError("failed to load owner", err)
	}
	if role != access.RoleOwner.String() {
		return errors.NewValidationFieldError("owner_id", "owner_id must reference a user with role owner", errors.ErrCodeInvalidRole)
	}
	return nil
}

func (s *Service) mapWriteError(err error) error {
	if _, ok := errors.IsAppError(err); ok {
		return err
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.ErrDuplicateCompany
	}
	s.logger.Error("company write failed", "error", err)
	return errors.NewInternalError("failed to save company", err)
}
