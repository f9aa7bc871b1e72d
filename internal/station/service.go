package station

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	List(ctx context.Context, scope access.Scope, companyID int64) ([]*Station, error)
	GetByID(ctx context.Context, id int64) (*Station, error)
	NameTaken(ctx context.Context, name string, excludingID int64) (bool, error)
	Create(ctx context.Context, s *Station) error
	Update(ctx context.Context, s *Station) error
	Delete(ctx context.Context, id int64) error
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo      RepositoryAPI
	validator *AssignmentValidator
	gate      *access.Gate
	tx        Transactor
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, validator *AssignmentValidator, gate *access.Gate, tx Transactor, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		gate:      gate,
		tx:        tx,
		logger:    logger,
	}
}

// List returns the stations in scope; companyID narrows further when non-zero.
func (s *Service) List(ctx context.Context, p access.Principal, companyID int64) ([]*Station, error) {
	scope, err := s.gate.Resolver().Stations(ctx, p)
	if err != nil {
		return nil, errors.NewInternalError("failed to resolve station scope", err)
	}
	if scope.Empty() {
		return []*Station{}, nil
	}
	return s.repo.List(ctx, scope, companyID)
}

func (s *Service) Get(ctx context.Context, p access.Principal, id int64) (*Station, error) {
	return s.load(ctx, p, id, access.ActionRead)
}

func (s *Service) load(ctx context.Context, p access.Principal, id int64, action access.Action) (*Station, error) {
	if !p.Authenticated() {
		return nil, errors.ErrUnauthenticated
	}
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load station", err)
	}
	if st == nil {
		return nil, errors.ErrAccessDenied
	}
	if err := s.gate.Authorize(ctx, p, action, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) Create(ctx context.Context, p access.Principal, dto CreateStationDTO) (*Station, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.gate.AuthorizeCreate(ctx, p, access.KindStation, access.CompanyOwned(dto.CompanyID)); err != nil {
		return nil, err
	}

	st := &Station{
		CompanyID: dto.CompanyID,
		ManagerID: dto.ManagerID,
		Name:      dto.Name,
		Location:  dto.Location,
		Status:    dto.Status,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkInvariants(ctx, st); err != nil {
			return err
		}
		return s.repo.Create(ctx, st)
	})
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	s.logger.Info("station created", "station_id", st.ID, "company_id", st.CompanyID, "manager_id", st.ManagerID, "created_by", p.UserID)
	return st, nil
}

func (s *Service) Update(ctx context.Context, p access.Principal, id int64, dto UpdateStationDTO) (*Station, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var st *Station
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		st, err = s.load(ctx, p, id, access.ActionWrite)
		if err != nil {
			return err
		}

		companyChanged := dto.CompanyID != nil && *dto.CompanyID != st.CompanyID
		managerChanged := dto.ManagerID.Set && !sameID(dto.ManagerID.Value, st.ManagerID)
		if (companyChanged || managerChanged) && p.IsManager() {
			return errors.ErrRoleNotAllowed
		}
		if companyChanged {
			// moving a station is creating it under the new company as far as ownership goes
			if err := s.gate.AuthorizeCreate(ctx, p, access.KindStation, access.CompanyOwned(*dto.CompanyID)); err != nil {
				return err
			}
			st.CompanyID = *dto.CompanyID
		}
		if managerChanged {
			st.ManagerID = dto.ManagerID.Value
		}
		if dto.Name != nil {
			st.Name = *dto.Name
		}
		if dto.Location != nil {
			st.Location = *dto.Location
		}
		if dto.Status != nil {
			st.Status = *dto.Status
		}

		if err := s.checkInvariants(ctx, st); err != nil {
			return err
		}
		return s.repo.Update(ctx, st)
	})
	if err != nil {
		return nil, s.mapWriteError(err)
	}

	s.logger.Info("station updated", "station_id", st.ID, "updated_by", p.UserID)
	return st, nil
}

// checkInvariants enforces global name uniqueness and the manager assignment rule. st.ID is 0 on create.
func (s *Service) checkInvariants(ctx context.Context, st *Station) error {
	taken, err := s.repo.NameTaken(ctx, st.Name, st.ID)
	if err != nil {
		return errors.NewInternalError("failed to check station name", err)
	}
	if taken {
		return errors.ErrStationNameTaken
	}

	if st.ManagerID != nil {
		return s.validator.Validate(ctx, *st.ManagerID, st.CompanyID, st.ID)
	}
	return nil
}

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
	s.logger.Info("station deleted", "station_id", id, "deleted_by", p.UserID)
	return nil
}

func (s *Service) mapWriteError(err error) error {
	if _, ok := errors.IsAppError(err); ok {
		return err
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.ErrStationNameTaken
	}
	s.logger.Error("station write failed", "error", err)
	return errors.NewInternalError("failed to save station", err)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
