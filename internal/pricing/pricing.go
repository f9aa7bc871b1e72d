package pricing

import (
	"time"

	settingDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/setting"
)

// Setting is the system-wide price of one fuel type.
type Setting struct {
	ID            int64
	FuelType      string
	PricePerLiter float64
	UpdatedAt     time.Time
}

type SettingResponse struct {
	FuelType      string    `json:"fuel_type"`
	PricePerLiter float64   `json:"price_per_liter"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *Setting) ToResponse() SettingResponse {
	return SettingResponse{
		FuelType:      s.FuelType,
		PricePerLiter: s.PricePerLiter,
		UpdatedAt:     s.UpdatedAt,
	}
}

func FromDataModel(s *settingDatamodel.SystemSetting) *Setting {
	return &Setting{
		ID:            s.ID,
		FuelType:      s.FuelType,
		PricePerLiter: s.PricePerLiter,
		UpdatedAt:     s.UpdatedAt,
	}
}
