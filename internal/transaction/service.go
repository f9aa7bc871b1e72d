package transaction

import (
	"context"
	"log/slog"
	"math"
	"time"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/core/events"
	"github.com/frahmantamala/fuel-station-management/internal/inventory"
	"github.com/frahmantamala/fuel-station-management/internal/metrics"
	"github.com/frahmantamala/fuel-station-management/internal/pump"
)

type RepositoryAPI interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	List(ctx context.Context, scope access.Scope, filter ListFilter) ([]*Transaction, int64, error)
}

type PumpReader interface {
	GetByID(ctx context.Context, id int64) (*pump.Pump, error)
}

type PriceResolver interface {
	CurrentPrice(ctx context.Context, fuelType string) (float64, error)
}

type InventoryLedger interface {
	Deduct(ctx context.Context, stationID int64, fuelType string, quantity float64) (*inventory.Inventory, error)
}

type AlertEvaluator interface {
	Evaluate(ctx context.Context, inventoryID int64) (bool, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Dependencies struct {
	Repo      RepositoryAPI
	Pumps     PumpReader
	Prices    PriceResolver
	Inventory InventoryLedger
	Alerts    AlertEvaluator
	Gate      *access.Gate
	Tx        Transactor
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

type Service struct {
	repo      RepositoryAPI
	pumps     PumpReader
	prices    PriceResolver
	inventory InventoryLedger
	alerts    AlertEvaluator
	gate      *access.Gate
	tx        Transactor
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(deps Dependencies) *Service {
	return &Service{
		repo:      deps.Repo,
		pumps:     deps.Pumps,
		prices:    deps.Prices,
		inventory: deps.Inventory,
		alerts:    deps.Alerts,
		gate:      deps.Gate,
		tx:        deps.Tx,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// Post records a sale. Pricing, the sale row, the stock deduction and the alert evaluation commit together
// or not at all; the event and metrics are emitted only after commit.
func (s *Service) Post(ctx context.Context, p access.Principal, dto PostTransactionDTO) (*Transaction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.gate.AuthorizeCreate(ctx, p, access.KindTransaction, access.StationBound(access.KindTransaction, dto.StationID)); err != nil {
		return nil, err
	}

	var t *Transaction
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkPump(ctx, dto); err != nil {
			return err
		}

		unitPrice, err := s.prices.CurrentPrice(ctx, dto.FuelType)
		if err != nil {
			return err
		}

		t = &Transaction{
			StationID:       dto.StationID,
			UserID:          p.UserID,
			PumpID:          dto.PumpID,
			FuelType:        dto.FuelType,
			Quantity:        dto.Quantity,
			UnitPrice:       unitPrice,
			TotalPrice:      round2(dto.Quantity * unitPrice),
			PaymentMethod:   dto.PaymentMethod,
			CarPlate:        dto.CarPlate,
			TransactionTime: s.now().UTC(),
		}
		if err := s.repo.Create(ctx, t); err != nil {
			return errors.NewInternalError("failed to record transaction", err)
		}

		inv, err := s.inventory.Deduct(ctx, dto.StationID, dto.FuelType, dto.Quantity)
		if err != nil {
			return err
		}
		if _, err := s.alerts.Evaluate(ctx, inv.ID); err != nil {
			return err
		}

		event := events.NewTransactionPostedEvent(t.ID, t.StationID, t.FuelType, t.Quantity, t.TotalPrice, t.PaymentMethod)
		database.AfterCommit(ctx, func() {
			s.metrics.TransactionPosted(event.FuelType, event.PaymentMethod, event.Quantity)
			if s.publisher == nil {
				return
			}
			if err := s.publisher.Publish(ctx, event); err != nil {
				s.logger.Error("failed to publish transaction event", "transaction_id", event.TransactionID, "error", err)
			}
		})
		return nil
	})
	if err != nil {
		if _, ok := errors.IsAppError(err); !ok {
			s.logger.Error("transaction post failed", "station_id", dto.StationID, "error", err)
			err = errors.NewInternalError("failed to record transaction", err)
		}
		return nil, err
	}

	s.logger.Info("transaction posted",
		"transaction_id", t.ID,
		"station_id", t.StationID,
		"pump_id", t.PumpID,
		"fuel_type", t.FuelType,
		"quantity", t.Quantity,
		"total_price", t.TotalPrice,
		"user_id", p.UserID)
	return t, nil
}

func (s *Service) checkPump(ctx context.Context, dto PostTransactionDTO) error {
	pmp, err := s.pumps.GetByID(ctx, dto.PumpID)
	if err != nil {
		return errors.NewInternalError("failed to load pump", err)
	}
	if pmp == nil || pmp.StationID != dto.StationID {
		return errors.NewValidationFieldError("pump_id", "pump does not belong to the station", errors.ErrCodeInvalidPump)
	}
	if pmp.Status != pump.StatusActive {
		return errors.NewValidationFieldError("pump_id", "pump is offline", errors.ErrCodeInvalidPump)
	}
	if !pmp.Dispensable(dto.FuelType) {
		return errors.NewValidationFieldError("fuel_type", "pump does not dispense "+dto.FuelType, errors.ErrCodeInvalidFuelType)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, p access.Principal, id int64) (*Transaction, error) {
	if !p.Authenticated() {
		return nil, errors.ErrUnauthenticated
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load transaction", err)
	}
	if t == nil {
		return nil, errors.ErrAccessDenied
	}
	if err := s.gate.Authorize(ctx, p, access.ActionRead, t); err != nil {
		return nil, err
	}
	return t, nil
}

// List returns the page of transactions matching filter inside the caller's station scope, newest first,
// together with the total number of matches.
func (s *Service) List(ctx context.Context, p access.Principal, filter ListFilter) ([]*Transaction, int64, error) {
	if err := filter.Normalize(s.now().UTC()); err != nil {
		return nil, 0, err
	}

	scope, err := s.gate.Resolver().Stations(ctx, p)
	if err != nil {
		return nil, 0, errors.NewInternalError("failed to resolve station scope", err)
	}
	if filter.StationID > 0 {
		scope = scope.Narrow(filter.StationID)
	}
	if scope.Empty() {
		return []*Transaction{}, 0, nil
	}

	txs, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, 0, errors.NewInternalError("failed to list transactions", err)
	}
	return txs, total, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
