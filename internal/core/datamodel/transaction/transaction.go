package transaction

import "time"

type Transaction struct {
	ID              int64     `gorm:"primaryKey"`
	StationID       int64     `gorm:"column:station_id;not null;index"`
	UserID          int64     `gorm:"column:user_id;not null;index"`
	PumpID          int64     `gorm:"column:pump_id;not null;index"`
	FuelType        string    `gorm:"column:fuel_type;size:50;not null"`
	Quantity        float64   `gorm:"column:quantity;not null"`
	UnitPrice       float64   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalPrice      float64   `gorm:"column:total_price;type:numeric(12,2);not null"`
	PaymentMethod   string    `gorm:"column:payment_method;size:10;not null"`
	CarPlate        *string   `gorm:"column:car_plate;size:20"`
	TransactionTime time.Time `gorm:"column:transaction_time;not null;index"`
}

func (Transaction) TableName() string {
	return "transactions"
}
