package pricing

import (
	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/core/common/validation"
)

type ApplyPriceDTO struct {
	PricePerLiter float64 `json:"price_per_liter"`
	CompanyID     *int64  `json:"company_id"`
}

func (d *ApplyPriceDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("price_per_liter", d.PricePerLiter).Positive(errors.ErrCodeInvalidPrice)
	v.Field("company_id", d.CompanyID).Positive(errors.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ApplyPriceResponse struct {
	FuelType            string  `json:"fuel_type"`
	PricePerLiter       float64 `json:"price_per_liter"`
	CompanyID           *int64  `json:"company_id,omitempty"`
	AffectedInventories int64   `json:"affected_inventories"`
}

type PricesResponse struct {
	Prices []SettingResponse `json:"prices"`
}
