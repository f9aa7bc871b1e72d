package station

import (
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	stationDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/station"
)

type Station struct {
	ID        int64
	CompanyID int64
	ManagerID *int64
	Name      string
	Location  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type StationResponse struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	ManagerID *int64    `json:"manager_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Station) Ownership() access.Ownership {
	return access.StationOwned(s.ID, s.CompanyID)
}

func (s *Station) ToResponse() StationResponse {
	return StationResponse{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		ManagerID: s.ManagerID,
		Name:      s.Name,
		Location:  s.Location,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
	}
}

func ToDataModel(s *Station) *stationDatamodel.Station {
	return &stationDatamodel.Station{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		ManagerID: s.ManagerID,
		Name:      s.Name,
		Location:  s.Location,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func FromDataModel(s *stationDatamodel.Station) *Station {
	return &Station{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		ManagerID: s.ManagerID,
		Name:      s.Name,
		Location:  s.Location,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
