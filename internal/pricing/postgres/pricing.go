package postgres

import (
	"context"
	"errors"
	"time"

	inventoryDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/inventory"
	settingDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/setting"
	stationDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/station"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/pricing"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PricingRepository struct {
	db *gorm.DB
}

func NewPricingRepository(db *gorm.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

var _ pricing.RepositoryAPI = (*PricingRepository)(nil)

func (r *PricingRepository) List(ctx context.Context) ([]*pricing.Setting, error) {
	var rows []*settingDatamodel.SystemSetting
	if err := database.Conn(ctx, r.db).Order("fuel_type ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	settings := make([]*pricing.Setting, 0, len(rows))
	for _, row := range rows {
		settings = append(settings, pricing.FromDataModel(row))
	}
	return settings, nil
}

func (r *PricingRepository) Get(ctx context.Context, fuelType string) (*pricing.Setting, error) {
	var row settingDatamodel.SystemSetting
	err := database.Conn(ctx, r.db).Where("fuel_type = ?", fuelType).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return pricing.FromDataModel(&row), nil
}

func (r *PricingRepository) Upsert(ctx context.Context, fuelType string, price float64) error {
	row := &settingDatamodel.SystemSetting{
		FuelType:      fuelType,
		PricePerLiter: price,
		UpdatedAt:     time.Now(),
	}
	return database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "fuel_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"price_per_liter", "updated_at"}),
		}).
		Create(row).Error
}

func (r *PricingRepository) UpdateInventoryPrices(ctx context.Context, fuelType string, price float64, companyID int64) (int64, error) {
	conn := database.Conn(ctx, r.db)
	query := conn.Model(&inventoryDatamodel.Inventory{}).Where("fuel_type = ?", fuelType)
	if companyID > 0 {
		stations := conn.Session(&gorm.Session{NewDB: true}).
			Model(&stationDatamodel.Station{}).
			Select("id").
			Where("company_id = ?", companyID)
		query = query.Where("station_id IN (?)", stations)
	}

	res := query.Update("unit_price", price)
	return res.RowsAffected, res.Error
}
