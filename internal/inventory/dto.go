package inventory

import (
	"strings"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/core/common/validation"
)

// UpdateInventoryDTO carries the only fields an inventory update may touch.
type UpdateInventoryDTO struct {
	Quantity     *float64 `json:"quantity"`
	UnitPrice    *float64 `json:"unit_price"`
	MinThreshold *float64 `json:"min_threshold"`
}

func (d *UpdateInventoryDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("quantity", d.Quantity).NonNegative(errors.ErrCodeInvalidQuantity)
	v.Field("unit_price", d.UnitPrice).NonNegative(errors.ErrCodeInvalidPrice)
	v.Field("min_threshold", d.MinThreshold).NonNegative(errors.ErrCodeInvalidQuantity)
	if d.Quantity == nil && d.UnitPrice == nil && d.MinThreshold == nil {
		v.Field("quantity", d.Quantity).Required()
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type InitializeInventoryDTO struct {
	StationID    int64   `json:"station_id"`
	FuelType     string  `json:"fuel_type"`
	Quantity     float64 `json:"quantity"`
	Capacity     float64 `json:"capacity"`
	MinThreshold float64 `json:"min_threshold"`
	UnitPrice    float64 `json:"unit_price"`
}

func (d *InitializeInventoryDTO) Validate() error {
	d.FuelType = strings.TrimSpace(d.FuelType)
	v := validation.NewValidator()
	v.Field("station_id", d.StationID).Required()
	v.Field("fuel_type", d.FuelType).Required().MaxLength(50)
	v.Field("quantity", d.Quantity).NonNegative(errors.ErrCodeInvalidQuantity)
	v.Field("capacity", d.Capacity).Positive(errors.ErrCodeInvalidQuantity)
	v.Field("min_threshold", d.MinThreshold).NonNegative(errors.ErrCodeInvalidQuantity)
	v.Field("unit_price", d.UnitPrice).NonNegative(errors.ErrCodeInvalidPrice)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type InventoriesResponse struct {
	Inventories []InventoryResponse `json:"inventories"`
}
