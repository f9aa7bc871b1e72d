// Package transporttest builds requests the way the chi router hands them to handlers.
package transporttest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/go-chi/chi"
)

// NewRequest returns a request carrying the principal and chi URL params given as name/value pairs.
func NewRequest(method, target string, body io.Reader, p access.Principal, params ...string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if p.Authenticated() {
		ctx = access.WithPrincipal(ctx, p)
	}
	return req.WithContext(ctx)
}
