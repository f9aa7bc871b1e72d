package ratelimit_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/frahmantamala/fuel-station-management/internal/metrics"
	"github.com/frahmantamala/fuel-station-management/internal/ratelimit"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
)

func TestRateLimit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "RateLimit Suite")
}

var _ = Describe("Limiter", func() {
	var (
		mr      *miniredis.Miniredis
		rdb     *redis.Client
		limiter *ratelimit.Limiter
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		ctx = context.Background()
		limiter = ratelimit.NewLimiter(rdb, ratelimit.Config{
			Capacity:       2,
			RefillTokens:   1,
			RefillInterval: 200 * time.Millisecond,
			TTL:            time.Minute,
			Prefix:         "test",
		})
	})

	AfterEach(func() {
		_ = rdb.Close()
		mr.Close()
	})

	It("allows up to capacity and then blocks", func() {
		for i := 0; i < 2; i++ {
			res, err := limiter.Allow(ctx, "login", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Allowed).To(BeTrue())
		}

		res, err := limiter.Allow(ctx, "login", "10.0.0.1")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeFalse())
		Expect(res.Remaining).To(BeZero())
		Expect(res.RetryAfter).To(BeNumerically(">", 0))
		Expect(res.RetryAfter).To(BeNumerically("<=", 200*time.Millisecond))
	})

	It("keeps separate buckets per client", func() {
		for i := 0; i < 2; i++ {
			_, err := limiter.Allow(ctx, "login", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
		}
		res, err := limiter.Allow(ctx, "login", "10.0.0.2")
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Allowed).To(BeTrue())
	})

	It("refills after the interval", func() {
		for i := 0; i < 3; i++ {
			_, err := limiter.Allow(ctx, "login", "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
		}
		Eventually(func() bool {
			res, err := limiter.Allow(ctx, "login", "10.0.0.1")
			return err == nil && res.Allowed
		}, time.Second, 50*time.Millisecond).Should(BeTrue())
	})

	It("expires idle buckets", func() {
		_, err := limiter.Allow(ctx, "login", "10.0.0.1")
		Expect(err).NotTo(HaveOccurred())
		Expect(mr.TTL("test:login:10.0.0.1")).To(Equal(time.Minute))
	})

	Describe("Middleware", func() {
		var (
			reg     *prometheus.Registry
			m       *metrics.Metrics
			handler http.Handler
		)

		BeforeEach(func() {
			reg = prometheus.NewRegistry()
			m = metrics.New(reg)
			base := transport.NewBaseHandler(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
			ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
			handler = limiter.Middleware("login", base, m)(ok)
		})

		call := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
			req.RemoteAddr = "192.0.2.10:5555"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec
		}

		It("answers 429 with Retry-After once the bucket is empty", func() {
			Expect(call().Code).To(Equal(http.StatusNoContent))
			Expect(call().Code).To(Equal(http.StatusNoContent))

			rec := call()
			Expect(rec.Code).To(Equal(http.StatusTooManyRequests))
			Expect(rec.Header().Get("Retry-After")).To(Equal("1"))
			Expect(rec.Header().Get("X-RateLimit-Limit")).To(Equal("2"))
			Expect(rec.Body.String()).To(ContainSubstring("TOO_MANY_REQUESTS"))
			Expect(testutil.ToFloat64(m.RateLimited.WithLabelValues("login"))).To(Equal(1.0))
		})

		It("fails open when redis is unreachable", func() {
			dead := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
			defer dead.Close()
			base := transport.NewBaseHandler(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
			ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
			handler = ratelimit.NewLimiter(dead, ratelimit.Config{Capacity: 1, RefillTokens: 1, RefillInterval: time.Second}).
				Middleware("login", base, m)(ok)

			Expect(call().Code).To(Equal(http.StatusNoContent))
		})
	})
})
