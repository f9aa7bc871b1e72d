package openapi_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/frahmantamala/fuel-station-management/internal/transport/openapi"
	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOpenAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OpenAPI Suite")
}

const contract = `
openapi: 3.0.3
info:
  title: test
  version: "1"
servers:
  - url: /api/v1
paths:
  /alerts/{id}:
    patch:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
            minimum: 1
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              additionalProperties: false
              required: [status]
              properties:
                status:
                  type: string
                  enum: [pending, resolved, ignored]
      responses:
        "200":
          description: ok
`

var _ = Describe("Validator", func() {
	var (
		handler http.Handler
		reached bool
	)

	BeforeEach(func() {
		doc, err := openapi3.NewLoader().LoadFromData([]byte(contract))
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Validate(context.Background())).To(Succeed())

		base := transport.NewBaseHandler(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
		v, err := openapi.NewValidator(doc, "/api/v1", base)
		Expect(err).NotTo(HaveOccurred())

		reached = false
		handler = v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		}))
	})

	patch := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	It("lets a conforming request through", func() {
		rec := patch("/api/v1/alerts/3", `{"status":"resolved"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(reached).To(BeTrue())
	})

	It("rejects extra fields", func() {
		rec := patch("/api/v1/alerts/3", `{"status":"resolved","description":"x"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(reached).To(BeFalse())
		Expect(rec.Body.String()).To(ContainSubstring("VALIDATION_FAILED"))
	})

	It("rejects values outside the enum", func() {
		rec := patch("/api/v1/alerts/3", `{"status":"closed"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects malformed path parameters", func() {
		rec := patch("/api/v1/alerts/abc", `{"status":"resolved"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("leaves undocumented paths to the router", func() {
		rec := patch("/api/v1/unknown", `{}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(reached).To(BeTrue())

		reached = false
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
		Expect(reached).To(BeTrue())
	})
})
