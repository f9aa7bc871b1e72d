// Package openapi validates incoming requests against the published API contract before they reach a handler.
package openapi

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// Load reads and validates the document at path.
func Load(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document %s: %w", path, err)
	}
	return doc, nil
}

type Validator struct {
	router   routers.Router
	basePath string
	base     *transport.BaseHandler
}

// NewValidator matches operations by path below basePath. The document's servers are dropped so matching
// does not depend on the host the API is deployed under.
func NewValidator(doc *openapi3.T, basePath string, base *transport.BaseHandler) (*Validator, error) {
	doc.Servers = nil
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &Validator{router: router, basePath: strings.TrimSuffix(basePath, "/"), base: base}, nil
}

// Middleware rejects requests that break the contract with a 400. Paths the document does not describe
// pass through untouched; authentication is left to the auth middleware.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, v.basePath)
		if path == r.URL.Path && v.basePath != "" {
			next.ServeHTTP(w, r)
			return
		}

		var body []byte
		if r.Body != nil && r.Body != http.NoBody {
			var err error
			if body, err = io.ReadAll(r.Body); err != nil {
				v.base.HandleServiceError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		probe := r.Clone(r.Context())
		probe.URL.Path = path
		probe.URL.RawPath = ""
		probe.Body = io.NopCloser(bytes.NewReader(body))

		route, params, err := v.router.FindRoute(probe)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    probe,
			PathParams: params,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				MultiError:         true,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.base.Logger.Warn("request violates api contract", "path", r.URL.Path, "method", r.Method, "error", err)
			v.base.HandleServiceError(w, contractError(err))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func contractError(err error) *errors.AppError {
	var details []errors.ValidationError
	var multi openapi3.MultiError
	if stderrors.As(err, &multi) {
		for _, e := range multi {
			details = append(details, fieldError(e))
		}
	} else {
		details = append(details, fieldError(err))
	}

	return errors.NewValidationError("request does not match the API contract", errors.ErrCodeValidationFailed).
		WithDetails(errors.ValidationErrors{Errors: details})
}

func fieldError(err error) errors.ValidationError {
	field := "request"
	var reqErr *openapi3filter.RequestError
	if stderrors.As(err, &reqErr) {
		switch {
		case reqErr.Parameter != nil:
			field = reqErr.Parameter.Name
		case reqErr.RequestBody != nil:
			field = "body"
		}
		var schemaErr *openapi3.SchemaError
		if stderrors.As(reqErr.Err, &schemaErr) && len(schemaErr.JSONPointer()) > 0 {
			field = strings.Join(schemaErr.JSONPointer(), ".")
		}
	}
	return errors.ValidationError{
		Field:   field,
		Message: err.Error(),
		Code:    string(errors.ErrCodeValidationFailed),
	}
}
