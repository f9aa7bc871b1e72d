package inventory

import (
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	inventoryDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/inventory"
)

type Inventory struct {
	ID           int64
	StationID    int64
	FuelType     string
	Quantity     float64
	Capacity     float64
	MinThreshold float64
	UnitPrice    float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type InventoryResponse struct {
	ID           int64     `json:"id"`
	StationID    int64     `json:"station_id"`
	FuelType     string    `json:"fuel_type"`
	Quantity     float64   `json:"quantity"`
	Capacity     float64   `json:"capacity"`
	MinThreshold float64   `json:"min_threshold"`
	UnitPrice    float64   `json:"unit_price"`
	Low          bool      `json:"low"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (i *Inventory) Ownership() access.Ownership {
	return access.StationBound(access.KindInventory, i.StationID)
}

func (i *Inventory) Low() bool {
	return i.Quantity <= i.MinThreshold
}

func (i *Inventory) ToResponse() InventoryResponse {
	return InventoryResponse{
		ID:           i.ID,
		StationID:    i.StationID,
		FuelType:     i.FuelType,
		Quantity:     i.Quantity,
		Capacity:     i.Capacity,
		MinThreshold: i.MinThreshold,
		UnitPrice:    i.UnitPrice,
		Low:          i.Low(),
		UpdatedAt:    i.UpdatedAt,
	}
}

func ToDataModel(i *Inventory) *inventoryDatamodel.Inventory {
	return &inventoryDatamodel.Inventory{
		ID:           i.ID,
		StationID:    i.StationID,
		FuelType:     i.FuelType,
		Quantity:     i.Quantity,
		Capacity:     i.Capacity,
		MinThreshold: i.MinThreshold,
		UnitPrice:    i.UnitPrice,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func FromDataModel(i *inventoryDatamodel.Inventory) *Inventory {
	return &Inventory{
		ID:           i.ID,
		StationID:    i.StationID,
		FuelType:     i.FuelType,
		Quantity:     i.Quantity,
		Capacity:     i.Capacity,
		MinThreshold: i.MinThreshold,
		UnitPrice:    i.UnitPrice,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
