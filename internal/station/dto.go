package station

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/frahmantamala/fuel-station-management/internal/core/common/validation"
)

type CreateStationDTO struct {
	CompanyID int64  `json:"company_id"`
	ManagerID *int64 `json:"manager_id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Status    string `json:"status"`
}

func (d *CreateStationDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	v := validation.NewValidator()
	v.Field("company_id", d.CompanyID).Required()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("location", d.Location).Required().MaxLength(255)
	v.Field("status", d.Status).MaxLength(20)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// OptionalID distinguishes an absent field from an explicit null.
type OptionalID struct {
	Set   bool
	Value *int64
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

type UpdateStationDTO struct {
	CompanyID *int64     `json:"company_id"`
	ManagerID OptionalID `json:"manager_id"`
	Name      *string    `json:"name"`
	Location  *string    `json:"location"`
	Status    *string    `json:"status"`
}

func (d *UpdateStationDTO) Validate() error {
	if d.Name != nil {
		trimmed := strings.TrimSpace(*d.Name)
		d.Name = &trimmed
	}
	v := validation.NewValidator()
	if d.CompanyID != nil {
		v.Field("company_id", *d.CompanyID).Required()
	}
	if d.Name != nil {
		v.Field("name", d.Name).Required().MaxLength(100)
	}
	if d.Location != nil {
		v.Field("location", d.Location).Required().MaxLength(255)
	}
	if d.Status != nil {
		v.Field("status", d.Status).MaxLength(20)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type StationsResponse struct {
	Stations []StationResponse `json:"stations"`
}
