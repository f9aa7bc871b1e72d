package alert

import (
	"encoding/json"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/core/common/validation"
)

// UpdateAlertDTO is the only writable surface of an alert. The body must carry status and nothing else.
type UpdateAlertDTO struct {
	Status string `json:"status"`
}

func (d *UpdateAlertDTO) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	raw, ok := fields["status"]
	if len(fields) != 1 || !ok {
		return errors.NewValidationFieldError("status", `only the "status" field can be updated`, errors.ErrCodeValidationFailed)
	}
	return json.Unmarshal(raw, &d.Status)
}

func (d *UpdateAlertDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("status", d.Status).Required().OneOf(errors.ErrCodeInvalidStatus, StatusPending, StatusResolved, StatusIgnored)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type AlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}
