package pump

import "time"

const (
	StatusActive  = "active"
	StatusOffline = "offline"
)

type Pump struct {
	ID         int64     `gorm:"primaryKey"`
	StationID  int64     `gorm:"column:station_id;not null;uniqueIndex:idx_pumps_station_number"`
	PumpNumber int       `gorm:"column:pump_number;not null;uniqueIndex:idx_pumps_station_number"`
	FuelType   string    `gorm:"column:fuel_type;size:50;not null"`
	Status     string    `gorm:"column:status;size:20;not null;default:active"`
	FlowRate   *float64  `gorm:"column:flow_rate"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Pump) TableName() string {
	return "pumps"
}
