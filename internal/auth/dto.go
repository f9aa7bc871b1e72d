package auth

import (
	"strings"

	"github.com/frahmantamala/fuel-station-management/internal/core/common/validation"
)

const MinPasswordLength = 8

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d *LoginDTO) Validate() error {
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	v := validation.NewValidator()
	v.Field("email", d.Email).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (d *RefreshTokenDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("refresh_token", d.RefreshToken).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type PasswordResetRequestDTO struct {
	Email string `json:"email"`
}

func (d *PasswordResetRequestDTO) Validate() error {
	d.Email = strings.TrimSpace(strings.ToLower(d.Email))
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type PasswordResetConfirmDTO struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (d *PasswordResetConfirmDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	v.Field("new_password", d.NewPassword).Required().MinLength(MinPasswordLength)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
