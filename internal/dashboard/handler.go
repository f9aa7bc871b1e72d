package dashboard

import (
	"context"
	"net/http"
	"time"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
)

type ServiceAPI interface {
	Summary(ctx context.Context, p access.Principal) (*Summary, error)
	Sales(ctx context.Context, p access.Principal, from, to time.Time) (*SalesReport, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: svc}
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	summary, err := h.Service.Summary(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetSalesReport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	from, err := parseDate(r.URL.Query().Get("from"), "from")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"), "to")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	report, err := h.Service.Sales(r.Context(), p, from, to)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// parseDate accepts RFC 3339 timestamps or plain dates, which mean midnight UTC.
func parseDate(raw, field string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, errors.NewValidationFieldError(field, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp", errors.ErrCodeValidationFailed)
}
