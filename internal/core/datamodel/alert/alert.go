package alert

import "time"

const (
	TypeSecurity    = "security"
	TypeMaintenance = "maintenance"
	TypeInventory   = "inventory"
	TypeSystem      = "system"

	StatusPending  = "pending"
	StatusResolved = "resolved"
	StatusIgnored  = "ignored"
)

type Alert struct {
	ID          int64      `gorm:"primaryKey"`
	StationID   int64      `gorm:"column:station_id;not null;index"`
	Type        string     `gorm:"column:type;size:20;not null"`
	Description string     `gorm:"column:description;not null"`
	PumpID      *int64     `gorm:"column:pump_id"`
	InventoryID *int64     `gorm:"column:inventory_id;index"`
	Status      string     `gorm:"column:status;size:20;not null;default:pending;index"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Alert) TableName() string {
	return "alerts"
}
