package company

import (
	"context"
	"net/http"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, p access.Principal) ([]*Company, error)
	Get(ctx context.Context, p access.Principal, id int64) (*Company, error)
	Create(ctx context.Context, p access.Principal, dto CreateCompanyDTO) (*Company, error)
	Update(ctx context.Context, p access.Principal, id int64, dto UpdateCompanyDTO) (*Company, error)
	Delete(ctx context.Context, p access.Principal, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: svc}
}

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	companies, err := h.Service.List(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := CompaniesResponse{Companies: make([]CompanyResponse, 0, len(companies))}
	for _, c := range companies {
		resp.Companies = append(resp.Companies, c.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.Service.Get(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto CreateCompanyDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.Create(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c.ToResponse())
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateCompanyDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	c, err := h.Service.Update(r.Context(), p, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
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
