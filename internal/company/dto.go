package company

import (
	"strings"

	"github.com/frahmantamala/fuel-station-management/internal/core/common/validation"
)

type CreateCompanyDTO struct {
	Name    string `json:"name"`
	OwnerID *int64 `json:"owner_id"`
}

func (d *CreateCompanyDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateCompanyDTO struct {
	Name    *string `json:"name"`
	OwnerID *int64  `json:"owner_id"`
}

func (d *UpdateCompanyDTO) Validate() error {
	if d.Name != nil {
		trimmed := strings.TrimSpace(*d.Name)
		d.Name = &trimmed
	}
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", d.Name).Required().MaxLength(100)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type CompaniesResponse struct {
	Companies []CompanyResponse `json:"companies"`
}
