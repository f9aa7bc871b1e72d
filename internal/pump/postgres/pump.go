package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	alertDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/alert"
	pumpDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/pump"
	transactionDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/transaction"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/pump"
	"gorm.io/gorm"
)

type PumpRepository struct {
	db *gorm.DB
}

func NewPumpRepository(db *gorm.DB) *PumpRepository {
	return &PumpRepository{db: db}
}

var _ pump.RepositoryAPI = (*PumpRepository)(nil)

type pumpRow struct {
	pumpDatamodel.Pump
	StationName string `gorm:"column:station_name"`
}

func (r *PumpRepository) List(ctx context.Context, scope access.Scope) ([]*pump.Pump, error) {
	var rows []pumpRow
	err := database.Conn(ctx, r.db).
		Table("pumps").
		Select("pumps.*, stations.name AS station_name").
		Joins("JOIN stations ON stations.id = pumps.station_id").
		Scopes(database.InScope("pumps.station_id", scope)).
		Order("stations.name ASC, pumps.pump_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	pumps := make([]*pump.Pump, 0, len(rows))
	for i := range rows {
		p := pump.FromDataModel(&rows[i].Pump)
		p.StationName = rows[i].StationName
		pumps = append(pumps, p)
	}
	return pumps, nil
}

func (r *PumpRepository) GetByID(ctx context.Context, id int64) (*pump.Pump, error) {
	var row pumpDatamodel.Pump
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return pump.FromDataModel(&row), nil
}

func (r *PumpRepository) Create(ctx context.Context, p *pump.Pump) error {
	row := pump.ToDataModel(p)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *PumpRepository) Update(ctx context.Context, p *pump.Pump) error {
	return database.Conn(ctx, r.db).
		Model(&pumpDatamodel.Pump{ID: p.ID}).
		Updates(map[string]interface{}{
			"pump_number": p.PumpNumber,
			"fuel_type":   p.FuelType,
			"status":      p.Status,
			"flow_rate":   p.FlowRate,
		}).Error
}

func (r *PumpRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return database.Conn(ctx, r.db).
		Model(&pumpDatamodel.Pump{ID: id}).
		Update("status", status).Error
}

// Delete detaches alerts raised against the pump and removes its sales, as the foreign keys do in PostgreSQL.
func (r *PumpRepository) Delete(ctx context.Context, id int64) error {
	return database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&alertDatamodel.Alert{}).Where("pump_id = ?", id).Update("pump_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("pump_id = ?", id).Delete(&transactionDatamodel.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&pumpDatamodel.Pump{}, id).Error
	})
}
