package pump

import (
	"strings"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/core/common/validation"
)

type CreatePumpDTO struct {
	StationID  int64    `json:"station_id"`
	PumpNumber int64    `json:"pump_number"`
	FuelType   string   `json:"fuel_type"`
	Status     string   `json:"status"`
	FlowRate   *float64 `json:"flow_rate"`
}

func (d *CreatePumpDTO) Validate() error {
	d.FuelType = strings.TrimSpace(d.FuelType)
	if d.Status == "" {
		d.Status = StatusActive
	}
	v := validation.NewValidator()
	v.Field("station_id", d.StationID).Required()
	v.Field("pump_number", d.PumpNumber).MinInt(1, errors.ErrCodeInvalidPump)
	v.Field("fuel_type", d.FuelType).Required().MaxLength(50)
	v.Field("status", d.Status).OneOf(errors.ErrCodeInvalidStatus, StatusActive, StatusOffline)
	v.Field("flow_rate", d.FlowRate).NonNegative(errors.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdatePumpDTO struct {
	PumpNumber *int64   `json:"pump_number"`
	FuelType   *string  `json:"fuel_type"`
	Status     *string  `json:"status"`
	FlowRate   *float64 `json:"flow_rate"`
}

func (d *UpdatePumpDTO) Validate() error {
	v := validation.NewValidator()
	if d.PumpNumber != nil {
		v.Field("pump_number", *d.PumpNumber).MinInt(1, errors.ErrCodeInvalidPump)
	}
	if d.FuelType != nil {
		fuelType := strings.TrimSpace(*d.FuelType)
		d.FuelType = &fuelType
		v.Field("fuel_type", d.FuelType).Required().MaxLength(50)
	}
	if d.Status != nil {
		v.Field("status", d.Status).OneOf(errors.ErrCodeInvalidStatus, StatusActive, StatusOffline)
	}
	v.Field("flow_rate", d.FlowRate).NonNegative(errors.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdatePumpStatusDTO struct {
	Status string `json:"status"`
}

func (d *UpdatePumpStatusDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(errors.ErrCodeInvalidStatus, StatusActive, StatusOffline)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type PumpsResponse struct {
	Pumps []PumpResponse `json:"pumps"`
}
