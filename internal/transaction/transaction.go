package transaction

import (
	"strings"
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	transactionDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/transaction"
)

const (
	PaymentCash = "cash"
	PaymentMomo = "momo"
	PaymentCard = "card"

	paymentMobileMoney = "mobile-money"
)

// NormalizePaymentMethod lowercases a payment method and folds "mobile-money" into the stored "momo".
func NormalizePaymentMethod(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == paymentMobileMoney {
		return PaymentMomo
	}
	return method
}

// Transaction is a recorded sale. TransactionTime is set when it is posted and never changes.
type Transaction struct {
	ID              int64
	StationID       int64
	UserID          int64
	PumpID          int64
	FuelType        string
	Quantity        float64
	UnitPrice       float64
	TotalPrice      float64
	PaymentMethod   string
	CarPlate        *string
	TransactionTime time.Time
}

type TransactionResponse struct {
	ID              int64     `json:"id"`
	StationID       int64     `json:"station_id"`
	UserID          int64     `json:"user_id"`
	PumpID          int64     `json:"pump_id"`
	FuelType        string    `json:"fuel_type"`
	Quantity        float64   `json:"quantity"`
	UnitPrice       float64   `json:"unit_price"`
	TotalPrice      float64   `json:"total_price"`
	PaymentMethod   string    `json:"payment_method"`
	CarPlate        *string   `json:"car_plate"`
	TransactionTime time.Time `json:"transaction_time"`
}

func (t *Transaction) Ownership() access.Ownership {
	return access.StationBound(access.KindTransaction, t.StationID)
}

func (t *Transaction) ToResponse() TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		StationID:       t.StationID,
		UserID:          t.UserID,
		PumpID:          t.PumpID,
		FuelType:        t.FuelType,
		Quantity:        t.Quantity,
		UnitPrice:       t.UnitPrice,
		TotalPrice:      t.TotalPrice,
		PaymentMethod:   t.PaymentMethod,
		CarPlate:        t.CarPlate,
		TransactionTime: t.TransactionTime,
	}
}

func ToDataModel(t *Transaction) *transactionDatamodel.Transaction {
	return &transactionDatamodel.Transaction{
		ID:              t.ID,
		StationID:       t.StationID,
		UserID:          t.UserID,
		PumpID:          t.PumpID,
		FuelType:        t.FuelType,
		Quantity:        t.Quantity,
		UnitPrice:       t.UnitPrice,
		TotalPrice:      t.TotalPrice,
		PaymentMethod:   t.PaymentMethod,
		CarPlate:        t.CarPlate,
		TransactionTime: t.TransactionTime,
	}
}

func FromDataModel(t *transactionDatamodel.Transaction) *Transaction {
	return &Transaction{
		ID:              t.ID,
		StationID:       t.StationID,
		UserID:          t.UserID,
		PumpID:          t.PumpID,
		FuelType:        t.FuelType,
		Quantity:        t.Quantity,
		UnitPrice:       t.UnitPrice,
		TotalPrice:      t.TotalPrice,
		PaymentMethod:   t.PaymentMethod,
		CarPlate:        t.CarPlate,
		TransactionTime: t.TransactionTime,
	}
}
