package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/core/events"
	"github.com/frahmantamala/fuel-station-management/internal/metrics"
)

// Snapshot is the state of one inventory row the engine decides on.
type Snapshot struct {
	InventoryID     int64
	StationID       int64
	FuelType        string
	Quantity        float64
	MinThreshold    float64
	StationName     string
	StationLocation string
}

func (s *Snapshot) Low() bool {
	return s.Quantity <= s.MinThreshold
}

func (s *Snapshot) Describe() string {
	return fmt.Sprintf("Low %s inventory at %s (%s): %.2f L remaining, minimum threshold %.2f L.",
		s.FuelType, s.StationName, s.StationLocation, s.Quantity, s.MinThreshold)
}

type EngineRepository interface {
	InventorySnapshot(ctx context.Context, inventoryID int64) (*Snapshot, error)
	// LockPendingInventoryAlert returns the open inventory alert of the row, locked, or nil.
	LockPendingInventoryAlert(ctx context.Context, inventoryID int64) (*Alert, error)
	Create(ctx context.Context, a *Alert) error
	UpdateDescription(ctx context.Context, id int64, description string) error
	Resolve(ctx context.Context, id int64, at time.Time) error
}

// Engine keeps at most one pending inventory alert per inventory row. Callers hold the inventory row lock
// for the duration of the surrounding transaction, which serialises evaluations of the same row.
type Engine struct {
	repo      EngineRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewEngine(repo EngineRepository, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Evaluate opens, refreshes or resolves the inventory alert of inventoryID. It reports whether anything was
// written; repeating it on unchanged state writes nothing.
func (e *Engine) Evaluate(ctx context.Context, inventoryID int64) (bool, error) {
	snap, err := e.repo.InventorySnapshot(ctx, inventoryID)
	if err != nil {
		return false, errors.NewInternalError("failed to load inventory for alert evaluation", err)
	}
	if snap == nil {
		return false, errors.ErrInventoryNotFound
	}

	pending, err := e.repo.LockPendingInventoryAlert(ctx, inventoryID)
	if err != nil {
		return false, errors.NewInternalError("failed to load pending alert", err)
	}

	if snap.Low() {
		return e.open(ctx, snap, pending)
	}
	if pending == nil {
		return false, nil
	}
	return e.resolve(ctx, snap, pending)
}

func (e *Engine) open(ctx context.Context, snap *Snapshot, pending *Alert) (bool, error) {
	description := snap.Describe()

	if pending != nil {
		if pending.Description == description {
			return false, nil
		}
		if err := e.repo.UpdateDescription(ctx, pending.ID, description); err != nil {
			return false, errors.NewInternalError("failed to refresh alert", err)
		}
		return true, nil
	}

	inventoryID := snap.InventoryID
	a := &Alert{
		StationID:   snap.StationID,
		Type:        TypeInventory,
		Description: description,
		InventoryID: &inventoryID,
		Status:      StatusPending,
	}
	if err := e.repo.Create(ctx, a); err != nil {
		return false, errors.NewInternalError("failed to open alert", err)
	}

	e.logger.Info("inventory alert opened",
		"alert_id", a.ID,
		"inventory_id", snap.InventoryID,
		"station_id", snap.StationID,
		"quantity", snap.Quantity,
		"min_threshold", snap.MinThreshold)
	e.afterCommit(ctx, events.EventTypeInventoryLow, a.ID, snap, description)
	return true, nil
}

func (e *Engine) resolve(ctx context.Context, snap *Snapshot, pending *Alert) (bool, error) {
	if err := e.repo.Resolve(ctx, pending.ID, e.now()); err != nil {
		return false, errors.NewInternalError("failed to resolve alert", err)
	}

	e.logger.Info("inventory alert resolved", "alert_id", pending.ID, "inventory_id", snap.InventoryID, "quantity", snap.Quantity)
	e.afterCommit(ctx, events.EventTypeInventoryRestored, pending.ID, snap, pending.Description)
	return true, nil
}

func (e *Engine) afterCommit(ctx context.Context, eventType string, alertID int64, snap *Snapshot, description string) {
	event := events.NewInventoryAlertEvent(eventType, alertID, snap.InventoryID, snap.StationID,
		snap.FuelType, snap.Quantity, snap.MinThreshold, description)

	database.AfterCommit(ctx, func() {
		if eventType == events.EventTypeInventoryLow {
			e.metrics.AlertOpened()
		} else {
			e.metrics.AlertResolved()
		}
		if e.publisher == nil {
			return
		}
		if err := e.publisher.Publish(ctx, event); err != nil {
			e.logger.Error("failed to publish inventory alert event", "alert_id", alertID, "type", eventType, "error", err)
		}
	})
}
