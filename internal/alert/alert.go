package alert

import (
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	alertDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/alert"
)

const (
	TypeSecurity    = alertDatamodel.TypeSecurity
	TypeMaintenance = alertDatamodel.TypeMaintenance
	TypeInventory   = alertDatamodel.TypeInventory
	TypeSystem      = alertDatamodel.TypeSystem

	StatusPending  = alertDatamodel.StatusPending
	StatusResolved = alertDatamodel.StatusResolved
	StatusIgnored  = alertDatamodel.StatusIgnored
)

type Alert struct {
	ID          int64
	StationID   int64
	Type        string
	Description string
	PumpID      *int64
	InventoryID *int64
	Status      string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type AlertResponse struct {
	ID          int64      `json:"id"`
	StationID   int64      `json:"station_id"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	PumpID      *int64     `json:"pump_id"`
	InventoryID *int64     `json:"inventory_id"`
	Status      string     `json:"status"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (a *Alert) Ownership() access.Ownership {
	return access.StationBound(access.KindAlert, a.StationID)
}

func (a *Alert) ToResponse() AlertResponse {
	return AlertResponse{
		ID:          a.ID,
		StationID:   a.StationID,
		Type:        a.Type,
		Description: a.Description,
		PumpID:      a.PumpID,
		InventoryID: a.InventoryID,
		Status:      a.Status,
		ResolvedAt:  a.ResolvedAt,
		CreatedAt:   a.CreatedAt,
	}
}

func ToDataModel(a *Alert) *alertDatamodel.Alert {
	return &alertDatamodel.Alert{
		ID:          a.ID,
		StationID:   a.StationID,
		Type:        a.Type,
		Description: a.Description,
		PumpID:      a.PumpID,
		InventoryID: a.InventoryID,
		Status:      a.Status,
		ResolvedAt:  a.ResolvedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromDataModel(a *alertDatamodel.Alert) *Alert {
	return &Alert{
		ID:          a.ID,
		StationID:   a.StationID,
		Type:        a.Type,
		Description: a.Description,
		PumpID:      a.PumpID,
		InventoryID: a.InventoryID,
		Status:      a.Status,
		ResolvedAt:  a.ResolvedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
