package user

import (
	"strings"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/auth"
	"github.com/frahmantamala/fuel-station-management/internal/core/common/validation"
)

var roles = []string{"admin", "owner", "manager"}

type CreateUserDTO struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (d *CreateUserDTO) Validate() error {
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))

	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MaxLength(50)
	v.Field("full_name", d.FullName).Required().MaxLength(100)
	v.Field("email", d.Email).Required().Email().MaxLength(254)
	v.Field("password", d.Password).Required().MinLength(auth.MinPasswordLength)
	v.Field("role", d.Role).Required().OneOf(errors.ErrCodeInvalidRole, roles...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateUserDTO is a partial update; nil fields are left untouched.
type UpdateUserDTO struct {
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (d *UpdateUserDTO) Validate() error {
	if d.Username != nil {
		trimmed := strings.TrimSpace(*d.Username)
		d.Username = &trimmed
	}
	if d.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*d.Email))
		d.Email = &normalized
	}

	v := validation.NewValidator()
	if d.Username != nil {
		v.Field("username", d.Username).Required().MaxLength(50)
	}
	if d.FullName != nil {
		v.Field("full_name", d.FullName).Required().MaxLength(100)
	}
	if d.Email != nil {
		v.Field("email", d.Email).Required().Email().MaxLength(254)
	}
	if d.Password != nil {
		v.Field("password", d.Password).MinLength(auth.MinPasswordLength)
	}
	if d.Role != nil {
		v.Field("role", d.Role).OneOf(errors.ErrCodeInvalidRole, roles...)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}
