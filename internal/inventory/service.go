package inventory

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	List(ctx context.Context, scope access.Scope) ([]*Inventory, error)
	GetByID(ctx context.Context, id int64) (*Inventory, error)
	LockByID(ctx context.Context, id int64) (*Inventory, error)
	LockByStationFuel(ctx context.Context, stationID int64, fuelType string) (*Inventory, error)
	Create(ctx context.Context, inv *Inventory) error
	Update(ctx context.Context, inv *Inventory) error
	// Deduct lowers quantity only while it stays non-negative and reports whether a row changed.
	Deduct(ctx context.Context, id int64, quantity float64) (bool, error)
}

type AlertEvaluator interface {
	Evaluate(ctx context.Context, inventoryID int64) (bool, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   RepositoryAPI
	gate   *access.Gate
	alerts AlertEvaluator
	tx     Transactor
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, gate *access.Gate, alerts AlertEvaluator, tx Transactor, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		alerts: alerts,
		tx:     tx,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, p access.Principal, stationID int64) ([]*Inventory, error) {
	scope, err := s.gate.Resolver().Stations(ctx, p)
	if err != nil {
		return nil, errors.NewInternalError("failed to resolve station scope", err)
	}
	if stationID > 0 {
		scope = scope.Narrow(stationID)
	}
	if scope.Empty() {
		return []*Inventory{}, nil
	}
	return s.repo.List(ctx, scope)
}

func (s *Service) Get(ctx context.Context, p access.Principal, id int64) (*Inventory, error) {
	return s.load(ctx, p, id, access.ActionRead, s.repo.GetByID)
}

func (s *Service) load(ctx context.Context, p access.Principal, id int64, action access.Action, fetch func(context.Context, int64) (*Inventory, error)) (*Inventory, error) {
	if !p.Authenticated() {
		return nil, errors.ErrUnauthenticated
	}
	inv, err := fetch(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load inventory", err)
	}
	if inv == nil {
		return nil, errors.ErrAccessDenied
	}
	if err := s.gate.Authorize(ctx, p, action, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Update changes stock level, price or threshold and re-evaluates the low-stock alert in the same transaction.
// Managers are read-only here; their stock moves only through sales.
func (s *Service) Update(ctx context.Context, p access.Principal, id int64, dto UpdateInventoryDTO) (*Inventory, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var inv *Inventory
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.load(ctx, p, id, access.ActionWrite, s.repo.LockByID)
		if err != nil {
			return err
		}

		if dto.Quantity != nil {
			inv.Quantity = *dto.Quantity
		}
		if dto.UnitPrice != nil {
			inv.UnitPrice = *dto.UnitPrice
		}
		if dto.MinThreshold != nil {
			inv.MinThreshold = *dto.MinThreshold
		}
		if inv.Quantity > inv.Capacity {
			return errors.ErrCapacityExceeded.WithDetails(map[string]float64{
				"quantity": inv.Quantity,
				"capacity": inv.Capacity,
			})
		}

		if err := s.repo.Update(ctx, inv); err != nil {
			return errors.NewInternalError("failed to update inventory", err)
		}
		_, err = s.alerts.Evaluate(ctx, inv.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory updated",
		"inventory_id", inv.ID,
		"station_id", inv.StationID,
		"quantity", inv.Quantity,
		"unit_price", inv.UnitPrice,
		"min_threshold", inv.MinThreshold,
		"updated_by", p.UserID)
	return inv, nil
}

// Initialize creates the inventory row of a fuel type at a station. It is not exposed over HTTP.
func (s *Service) Initialize(ctx context.Context, p access.Principal, dto InitializeInventoryDTO) (*Inventory, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.gate.AuthorizeCreate(ctx, p, access.KindInventory, access.StationBound(access.KindInventory, dto.StationID)); err != nil {
		return nil, err
	}
	if dto.Quantity > dto.Capacity {
		return nil, errors.ErrCapacityExceeded
	}

	inv := &Inventory{
		StationID:    dto.StationID,
		FuelType:     dto.FuelType,
		Quantity:     dto.Quantity,
		Capacity:     dto.Capacity,
		MinThreshold: dto.MinThreshold,
		UnitPrice:    dto.UnitPrice,
	}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, inv); err != nil {
			return err
		}
		_, err := s.alerts.Evaluate(ctx, inv.ID)
		return err
	})
	if err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrDuplicateInventory
		}
		if _, ok := errors.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("inventory initialisation failed", "station_id", dto.StationID, "fuel_type", dto.FuelType, "error", err)
		return nil, errors.NewInternalError("failed to create inventory", err)
	}
	return inv, nil
}

// Deduct takes quantity litres of fuelType out of the station's stock. It must run inside the caller's
// transaction; the row stays locked until that transaction ends.
func (s *Service) Deduct(ctx context.Context, stationID int64, fuelType string, quantity float64) (*Inventory, error) {
	inv, err := s.repo.LockByStationFuel(ctx, stationID, fuelType)
	if err != nil {
		return nil, errors.NewInternalError("failed to lock inventory", err)
	}
	if inv == nil {
		return nil, errors.ErrInventoryNotFound
	}

	ok, err := s.repo.Deduct(ctx, inv.ID, quantity)
	if err != nil {
		return nil, errors.NewInternalError("failed to deduct inventory", err)
	}
	if !ok {
		s.logger.Warn("insufficient inventory",
			"inventory_id", inv.ID,
			"station_id", stationID,
			"fuel_type", fuelType,
			"available", inv.Quantity,
			"requested", quantity)
		return nil, errors.ErrInsufficientInventory.WithDetails(map[string]float64{
			"available": inv.Quantity,
			"requested": quantity,
		})
	}

	inv.Quantity -= quantity
	return inv, nil
}
