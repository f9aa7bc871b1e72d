package inventory

import (
	"context"
	"net/http"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, p access.Principal, stationID int64) ([]*Inventory, error)
	Get(ctx context.Context, p access.Principal, id int64) (*Inventory, error)
	Update(ctx context.Context, p access.Principal, id int64, dto UpdateInventoryDTO) (*Inventory, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: svc}
}

func (h *Handler) ListInventories(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	stationID := int64(transport.QueryInt(r, "station_id", 0))
	inventories, err := h.Service.List(r.Context(), p, stationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := InventoriesResponse{Inventories: make([]InventoryResponse, 0, len(inventories))}
	for _, inv := range inventories {
		resp.Inventories = append(resp.Inventories, inv.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	inv, err := h.Service.Get(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, inv.ToResponse())
}

func (h *Handler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateInventoryDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	inv, err := h.Service.Update(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, inv.ToResponse())
}

// MethodNotAllowed answers POST and DELETE. Inventory rows are created by seeding and removed with their station.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, PATCH")
	h.WriteError(w, http.StatusMethodNotAllowed, "inventory cannot be created or deleted through the API")
}
