package transaction

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/core/common/validation"
)

// PostTransactionDTO has no price field; whatever price a client sends is dropped on decode.
type PostTransactionDTO struct {
	StationID     int64   `json:"station_id"`
	PumpID        int64   `json:"pump_id"`
	FuelType      string  `json:"fuel_type"`
	Quantity      float64 `json:"quantity"`
	PaymentMethod string  `json:"payment_method"`
	CarPlate      *string `json:"car_plate"`
}

func (d *PostTransactionDTO) Validate() error {
	d.FuelType = strings.TrimSpace(d.FuelType)
	d.PaymentMethod = NormalizePaymentMethod(d.PaymentMethod)
	if d.CarPlate != nil {
		plate := strings.ToUpper(strings.TrimSpace(*d.CarPlate))
		if plate == "" {
			d.CarPlate = nil
		} else {
			d.CarPlate = &plate
		}
	}

	v := validation.NewValidator()
	v.Field("station_id", d.StationID).Required()
	v.Field("pump_id", d.PumpID).Required()
	v.Field("fuel_type", d.FuelType).Required().MaxLength(50)
	v.Field("quantity", d.Quantity).Positive(errors.ErrCodeInvalidQuantity)
	v.Field("payment_method", d.PaymentMethod).Required().OneOf(errors.ErrCodeInvalidPayment, PaymentCash, PaymentMomo, PaymentCard)
	v.Field("car_plate", d.CarPlate).MaxLength(20)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

const (
	DurationAll   = "all"
	Duration24h   = "24hrs"
	DurationWeek  = "week"
	DurationMonth = "month"

	DefaultLimit = 20
	MaxLimit     = 100
)

// ListFilter narrows a transaction listing. It is applied on top of the caller's scope and can only shrink it.
type ListFilter struct {
	Search        string
	Duration      string
	PaymentMethod string
	StationID     int64
	Limit         int
	Offset        int

	// Since is derived from Duration by Normalize.
	Since *time.Time
}

func (f *ListFilter) Normalize(now time.Time) error {
	f.Search = strings.TrimSpace(f.Search)
	f.PaymentMethod = NormalizePaymentMethod(f.PaymentMethod)
	if f.Duration == "" {
		f.Duration = DurationAll
	}
	if f.PaymentMethod == DurationAll {
		f.PaymentMethod = ""
	}

	v := validation.NewValidator()
	v.Field("duration", f.Duration).OneOf(errors.ErrCodeValidationFailed, DurationAll, Duration24h, DurationWeek, DurationMonth)
	if f.PaymentMethod != "" {
		v.Field("payment_method", f.PaymentMethod).OneOf(errors.ErrCodeInvalidPayment, PaymentCash, PaymentMomo, PaymentCard)
	}
	if err := v.Validate(); err != nil {
		return err
	}

	var since time.Time
	switch f.Duration {
	case Duration24h:
		since = now.Add(-24 * time.Hour)
	case DurationWeek:
		since = now.AddDate(0, 0, -7)
	case DurationMonth:
		since = now.AddDate(0, 0, -30)
	}
	if !since.IsZero() {
		f.Since = &since
	}

	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return nil
}

type TransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}
