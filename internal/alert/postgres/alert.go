package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/alert"
	alertDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/alert"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

var (
	_ alert.RepositoryAPI    = (*AlertRepository)(nil)
	_ alert.EngineRepository = (*AlertRepository)(nil)
)

func (r *AlertRepository) List(ctx context.Context, scope access.Scope, status string) ([]*alert.Alert, error) {
	query := database.Conn(ctx, r.db).Scopes(database.InScope("station_id", scope))
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []*alertDatamodel.Alert
	if err := query.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	alerts := make([]*alert.Alert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, alert.FromDataModel(row))
	}
	return alerts, nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*alert.Alert, error) {
	var row alertDatamodel.Alert
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return alert.FromDataModel(&row), nil
}

func (r *AlertRepository) UpdateStatus(ctx context.Context, id int64, status string, resolvedAt *time.Time) error {
	return database.Conn(ctx, r.db).
		Model(&alertDatamodel.Alert{ID: id}).
		Updates(map[string]interface{}{
			"status":      status,
			"resolved_at": resolvedAt,
		}).Error
}

func (r *AlertRepository) InventorySnapshot(ctx context.Context, inventoryID int64) (*alert.Snapshot, error) {
	var snaps []alert.Snapshot
	err := database.Conn(ctx, r.db).
		Table("inventories").
		Select(`inventories.id AS inventory_id,
			inventories.station_id,
			inventories.fuel_type,
			inventories.quantity,
			inventories.min_threshold,
			stations.name AS station_name,
			stations.location AS station_location`).
		Joins("JOIN stations ON stations.id = inventories.station_id").
		Where("inventories.id = ?", inventoryID).
		Limit(1).
		Scan(&snaps).Error
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[0], nil
}

func (r *AlertRepository) LockPendingInventoryAlert(ctx context.Context, inventoryID int64) (*alert.Alert, error) {
	var row alertDatamodel.Alert
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("inventory_id = ? AND type = ? AND status = ?", inventoryID, alert.TypeInventory, alert.StatusPending).
		Order("id").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return alert.FromDataModel(&row), nil
}

func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	row := alert.ToDataModel(a)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	a.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *AlertRepository) UpdateDescription(ctx context.Context, id int64, description string) error {
	return database.Conn(ctx, r.db).
		Model(&alertDatamodel.Alert{ID: id}).
		Update("description", description).Error
}

func (r *AlertRepository) Resolve(ctx context.Context, id int64, at time.Time) error {
	return database.Conn(ctx, r.db).
		Model(&alertDatamodel.Alert{ID: id}).
		Updates(map[string]interface{}{
			"status":      alert.StatusResolved,
			"resolved_at": at,
		}).Error
}
