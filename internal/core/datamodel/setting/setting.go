package setting

import "time"

type SystemSetting struct {
	ID            int64     `gorm:"primaryKey"`
	FuelType      string    `gorm:"column:fuel_type;size:50;uniqueIndex;not null"`
	PricePerLiter float64   `gorm:"column:price_per_liter;type:numeric(10,2);not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
