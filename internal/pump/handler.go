package pump

import (
	"context"
	"net/http"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, p access.Principal, stationID int64) ([]*Pump, error)
	Get(ctx context.Context, p access.Principal, id int64) (*Pump, error)
	Create(ctx context.Context, p access.Principal, dto CreatePumpDTO) (*Pump, error)
	Update(ctx context.Context, p access.Principal, id int64, dto UpdatePumpDTO) (*Pump, error)
	UpdateStatus(ctx context.Context, p access.Principal, id int64, dto UpdatePumpStatusDTO) (*Pump, error)
	Delete(ctx context.Context, p access.Principal, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: svc}
}

func (h *Handler) ListPumps(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	stationID := int64(transport.QueryInt(r, "station_id", 0))
	pumps, err := h.Service.List(r.Context(), p, stationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := PumpsResponse{Pumps: make([]PumpResponse, 0, len(pumps))}
	for _, pump := range pumps {
		resp.Pumps = append(resp.Pumps, pump.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetPump(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	pump, err := h.Service.Get(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, pump.ToResponse())
}

func (h *Handler) CreatePump(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CreatePumpDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	pump, err := h.Service.Create(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, pump.ToResponse())
}

func (h *Handler) UpdatePump(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdatePumpDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	pump, err := h.Service.Update(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, pump.ToResponse())
}

func (h *Handler) UpdatePumpStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdatePumpStatusDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	pump, err := h.Service.UpdateStatus(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, pump.ToResponse())
}

func (h *Handler) DeletePump(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), p, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
