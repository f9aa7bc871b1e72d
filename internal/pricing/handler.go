package pricing

import (
	"context"
	"net/http"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, p access.Principal) ([]*Setting, error)
	ApplyPrice(ctx context.Context, p access.Principal, fuelType string, newPrice float64, companyID *int64) (int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: svc}
}

func (h *Handler) ListPrices(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	settings, err := h.Service.List(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := PricesResponse{Prices: make([]SettingResponse, 0, len(settings))}
	for _, s := range settings {
		resp.Prices = append(resp.Prices, s.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ApplyPrice(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto ApplyPriceDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	fuelType := chi.URLParam(r, "fuel_type")
	affected, err := h.Service.ApplyPrice(r.Context(), p, fuelType, dto.PricePerLiter, dto.CompanyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ApplyPriceResponse{
		FuelType:            fuelType,
		PricePerLiter:       dto.PricePerLiter,
		CompanyID:           dto.CompanyID,
		AffectedInventories: affected,
	})
}
