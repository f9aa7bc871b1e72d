package transaction

import (
	"context"
	"net/http"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
)

type ServiceAPI interface {
	Post(ctx context.Context, p access.Principal, dto PostTransactionDTO) (*Transaction, error)
	Get(ctx context.Context, p access.Principal, id int64) (*Transaction, error)
	List(ctx context.Context, p access.Principal, filter ListFilter) ([]*Transaction, int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: svc}
}

func (h *Handler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	var dto PostTransactionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	t, err := h.Service.Post(r.Context(), p, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t.ToResponse())
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}
	id, ok := h.PathID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.Service.Get(r.Context(), p, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t.ToResponse())
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := ListFilter{
		Search:        q.Get("search"),
		Duration:      q.Get("duration"),
		PaymentMethod: q.Get("payment_method"),
		StationID:     int64(transport.QueryInt(r, "station_id", 0)),
		Limit:         transport.QueryInt(r, "limit", DefaultLimit),
		Offset:        transport.QueryInt(r, "offset", 0),
	}

	txs, total, err := h.Service.List(r.Context(), p, filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// List normalised its own copy; mirror the bounds it applied.
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	resp := TransactionsResponse{
		Transactions: make([]TransactionResponse, 0, len(txs)),
		Total:        total,
		Limit:        limit,
		Offset:       max(filter.Offset, 0),
	}
	for _, t := range txs {
		resp.Transactions = append(resp.Transactions, t.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
