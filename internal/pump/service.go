package pump

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	List(ctx context.Context, scope access.Scope) ([]*Pump, error)
	GetByID(ctx context.Context, id int64) (*Pump, error)
	Create(ctx context.Context, p *Pump) error
	Update(ctx context.Context, p *Pump) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	gate   *access.Gate
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, gate *access.Gate, logger *slog.Logger) *Service {
	return &Service{repo: repo, gate: gate, logger: logger}
}

// List returns pumps in scope, narrowed to stationID when it is non-zero.
func (s *Service) List(ctx context.Context, p access.Principal, stationID int64) ([]*Pump, error) {
	scope, err := s.gate.Resolver().Stations(ctx, p)
	if err != nil {
		return nil, errors.NewInternalError("failed to resolve station scope", err)
	}
	if stationID > 0 {
		scope = scope.Narrow(stationID)
	}
	if scope.Empty() {
		return []*Pump{}, nil
	}
	return s.repo.List(ctx, scope)
}

func (s *Service) Get(ctx context.Context, p access.Principal, id int64) (*Pump, error) {
	return s.load(ctx, p, id, access.ActionRead)
}

func (s *Service) load(ctx context.Context, p access.Principal, id int64, action access.Action) (*Pump, error) {
	if !p.Authenticated() {
		return nil, errors.ErrUnauthenticated
	}
	pump, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load pump", err)
	}
	if pump == nil {
		return nil, errors.ErrAccessDenied
	}
	if err := s.gate.Authorize(ctx, p, action, pump); err != nil {
		return nil, err
	}
	return pump, nil
}

func (s *Service) Create(ctx context.Context, p access.Principal, dto CreatePumpDTO) (*Pump, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.gate.AuthorizeCreate(ctx, p, access.KindPump, access.StationBound(access.KindPump, dto.StationID)); err != nil {
		return nil, err
	}

	pump := &Pump{
		StationID:  dto.StationID,
		PumpNumber: int(dto.PumpNumber),
		FuelType:   dto.FuelType,
		Status:     dto.Status,
		FlowRate:   dto.FlowRate,
	}
	if err := s.repo.Create(ctx, pump); err != nil {
		return nil, s.mapWriteError(err)
	}

	s.logger.Info("pump created", "pump_id", pump.ID, "station_id", pump.StationID, "pump_number", pump.PumpNumber)
	return pump, nil
}

// Update edits the pump's configuration. Station managers may edit the pumps of their own station.
func (s *Service) Update(ctx context.Context, p access.Principal, id int64, dto UpdatePumpDTO) (*Pump, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	pump, err := s.load(ctx, p, id, access.ActionWrite)
	if err != nil {
		return nil, err
	}

	if dto.PumpNumber != nil {
		pump.PumpNumber = int(*dto.PumpNumber)
	}
	if dto.FuelType != nil {
		pump.FuelType = *dto.FuelType
	}
	if dto.Status != nil {
		pump.Status = *dto.Status
	}
	if dto.FlowRate != nil {
		pump.FlowRate = dto.FlowRate
	}

	if err := s.repo.Update(ctx, pump); err != nil {
		return nil, s.mapWriteError(err)
	}
	return pump, nil
}

func (s *Service) UpdateStatus(ctx context.Context, p access.Principal, id int64, dto UpdatePumpStatusDTO) (*Pump, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	pump, err := s.load(ctx, p, id, access.ActionWrite)
	if err != nil {
		return nil, err
	}
	if pump.Status == dto.Status {
		return pump, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, dto.Status); err != nil {
		return nil, s.mapWriteError(err)
	}
	s.logger.Info("pump status changed",
		"pump_id", id,
		"station_id", pump.StationID,
		"from", pump.Status,
		"to", dto.Status,
		"changed_by", p.UserID)
	pump.Status = dto.Status
	return pump, nil
}

func (s *Service) Delete(ctx context.Context, p access.Principal, id int64) error {
	if _, err := s.load(ctx, p, id, access.ActionDelete); err != nil {
		return err
	}
	if p.IsManager() {
		return errors.ErrRoleNotAllowed
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapWriteError(err)
	}
	s.logger.Info("pump deleted", "pump_id", id, "deleted_by", p.UserID)
	return nil
}

func (s *Service) mapWriteError(err error) error {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.ErrDuplicatePump
	}
	s.logger.Error("pump write failed", "error", err)
	return errors.NewInternalError("failed to save pump", err)
}
