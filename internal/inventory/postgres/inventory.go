package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	inventoryDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/inventory"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/inventory"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

var _ inventory.RepositoryAPI = (*InventoryRepository)(nil)

func (r *InventoryRepository) List(ctx context.Context, scope access.Scope) ([]*inventory.Inventory, error) {
	var rows []*inventoryDatamodel.Inventory
	err := database.Conn(ctx, r.db).
		Scopes(database.InScope("station_id", scope)).
		Order("station_id ASC, fuel_type ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*inventory.Inventory, 0, len(rows))
	for _, row := range rows {
		out = append(out, inventory.FromDataModel(row))
	}
	return out, nil
}

func (r *InventoryRepository) GetByID(ctx context.Context, id int64) (*inventory.Inventory, error) {
	return r.first(database.Conn(ctx, r.db).Where("id = ?", id))
}

func (r *InventoryRepository) LockByID(ctx context.Context, id int64) (*inventory.Inventory, error) {
	return r.first(database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *InventoryRepository) LockByStationFuel(ctx context.Context, stationID int64, fuelType string) (*inventory.Inventory, error) {
	return r.first(database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("station_id = ? AND fuel_type = ?", stationID, fuelType))
}

func (r *InventoryRepository) first(query *gorm.DB) (*inventory.Inventory, error) {
	var row inventoryDatamodel.Inventory
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return inventory.FromDataModel(&row), nil
}

func (r *InventoryRepository) Create(ctx context.Context, inv *inventory.Inventory) error {
	row := inventory.ToDataModel(inv)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	inv.ID = row.ID
	inv.CreatedAt = row.CreatedAt
	inv.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *InventoryRepository) Update(ctx context.Context, inv *inventory.Inventory) error {
	return database.Conn(ctx, r.db).
		Model(&inventoryDatamodel.Inventory{ID: inv.ID}).
		Updates(map[string]interface{}{
			"quantity":      inv.Quantity,
			"unit_price":    inv.UnitPrice,
			"min_threshold": inv.MinThreshold,
		}).Error
}

func (r *InventoryRepository) Deduct(ctx context.Context, id int64, quantity float64) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&inventoryDatamodel.Inventory{}).
		Where("id = ? AND quantity >= ?", id, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
