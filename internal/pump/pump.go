package pump

import (
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	pumpDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/pump"
)

const (
	StatusActive  = pumpDatamodel.StatusActive
	StatusOffline = pumpDatamodel.StatusOffline
)

type Pump struct {
	ID          int64
	StationID   int64
	StationName string
	PumpNumber  int
	FuelType    string
	Status      string
	FlowRate    *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PumpResponse struct {
	ID          int64     `json:"id"`
	StationID   int64     `json:"station_id"`
	StationName string    `json:"station_name,omitempty"`
	PumpNumber  int       `json:"pump_number"`
	FuelType    string    `json:"fuel_type"`
	Status      string    `json:"status"`
	FlowRate    *float64  `json:"flow_rate"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Pump) Ownership() access.Ownership {
	return access.StationBound(access.KindPump, p.StationID)
}

// Dispensable reports whether the pump can serve a sale of fuelType.
func (p *Pump) Dispensable(fuelType string) bool {
	return p.Status == StatusActive && p.FuelType == fuelType
}

func (p *Pump) ToResponse() PumpResponse {
	return PumpResponse{
		ID:          p.ID,
		StationID:   p.StationID,
		StationName: p.StationName,
		PumpNumber:  p.PumpNumber,
		FuelType:    p.FuelType,
		Status:      p.Status,
		FlowRate:    p.FlowRate,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToDataModel(p *Pump) *pumpDatamodel.Pump {
	return &pumpDatamodel.Pump{
		ID:         p.ID,
		StationID:  p.StationID,
		PumpNumber: p.PumpNumber,
		FuelType:   p.FuelType,
		Status:     p.Status,
		FlowRate:   p.FlowRate,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func FromDataModel(p *pumpDatamodel.Pump) *Pump {
	return &Pump{
		ID:         p.ID,
		StationID:  p.StationID,
		PumpNumber: p.PumpNumber,
		FuelType:   p.FuelType,
		Status:     p.Status,
		FlowRate:   p.FlowRate,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
