package station

import (
	"context"
	"net/http"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, p access.Principal, companyID int64) ([]*Station, error)
	Get(ctx context.Context, p access.Principal, id int64) (*Station, error)
	Create(ctx context.Context, p access.Principal, dto CreateStationDTO) (*Station, error)
	Update(ctx context.Context, p access.Principal, id int64, dto UpdateStationDTO) (*Station, error)
	Delete(ctx context.Context, p access.Principal, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: svc}
}

func (h *Handler) ListStations(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	companyID := int64(transport.QueryInt(r, "company_id", 0))
	stations, err := h.Service.List(r.Context(), p, companyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := StationsResponse{Stations: make([]StationResponse, 0, len(stations))}
	for _, s := range stations {
		resp.Stations = append(resp.Stations, s.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetStation(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	s, err := h.Service.Get(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, s.ToResponse())
}

func (h *Handler) CreateStation(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CreateStationDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	s, err := h.Service.Create(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, s.ToResponse())
}

func (h *Handler) UpdateStation(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateStationDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	s, err := h.Service.Update(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, s.ToResponse())
}

func (h *Handler) DeleteStation(w http.ResponseWriter, r *http.Request) {
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
