package alert

import (
	"context"
	"net/http"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, p access.Principal, status string) ([]*Alert, error)
	Get(ctx context.Context, p access.Principal, id int64) (*Alert, error)
	UpdateStatus(ctx context.Context, p access.Principal, id int64, dto UpdateAlertDTO) (*Alert, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: svc}
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	alerts, err := h.Service.List(r.Context(), p, r.URL.Query().Get("status"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := AlertsResponse{Alerts: make([]AlertResponse, 0, len(alerts))}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, a.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	a, err := h.Service.Get(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a.ToResponse())
}

func (h *Handler) UpdateAlert(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateAlertDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	a, err := h.Service.UpdateStatus(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a.ToResponse())
}
