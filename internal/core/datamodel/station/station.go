package station

import "time"

type Station struct {
	ID        int64     `gorm:"primaryKey"`
	CompanyID int64     `gorm:"column:company_id;not null;index"`
	ManagerID *int64    `gorm:"column:manager_id;index"`
	Name      string    `gorm:"column:name;size:100;uniqueIndex;not null"`
	Location  string    `gorm:"column:location;size:255;not null"`
	Status    string    `gorm:"column:status;size:20"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Station) TableName() string {
	return "stations"
}
