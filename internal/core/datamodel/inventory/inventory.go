package inventory

import "time"

type Inventory struct {
	ID           int64     `gorm:"primaryKey"`
	StationID    int64     `gorm:"column:station_id;not null;uniqueIndex:idx_inventories_station_fuel"`
	FuelType     string    `gorm:"column:fuel_type;size:50;not null;uniqueIndex:idx_inventories_station_fuel"`
	Quantity     float64   `gorm:"column:quantity;not null"`
	Capacity     float64   `gorm:"column:capacity;not null"`
	MinThreshold float64   `gorm:"column:min_threshold;not null"`
	UnitPrice    float64   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Inventory) TableName() string {
	return "inventories"
}

// BelowThreshold is the alert condition: at or under the minimum level.
func (i *Inventory) BelowThreshold() bool {
	return i.Quantity <= i.MinThreshold
}
