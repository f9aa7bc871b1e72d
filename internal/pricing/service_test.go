package pricing_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	errs "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	accessPostgres "github.com/frahmantamala/fuel-station-management/internal/access/postgres"
	inventoryDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/inventory"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/core/database/databasetest"
	"github.com/frahmantamala/fuel-station-management/internal/pricing"
	pricingPostgres "github.com/frahmantamala/fuel-station-management/internal/pricing/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/frahmantamala/fuel-station-management/internal/transport/transporttest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestPricing(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pricing Suite")
}

var _ = Describe("Pricing Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		slogger *slog.Logger
		repo    *pricingPostgres.PricingRepository
		gate    *access.Gate
		tx      *database.Transactor
		service *pricing.Service

		admin, ownerA, manager1              access.Principal
		companyX, companyY                   int64
		petrolX1, petrolX2, petrolY, dieselX int64
	)

	priceOf := func(id int64) float64 {
		var inv inventoryDatamodel.Inventory
		Expect(db.First(&inv, id).Error).To(Succeed())
		return inv.UnitPrice
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db, err = databasetest.Open()
		Expect(err).NotTo(HaveOccurred())

		fx := databasetest.NewFixtures(db)
		a := fx.User("root", "admin")
		oa := fx.User("owner_a", "owner")
		ob := fx.User("owner_b", "owner")
		m1 := fx.User("manager_1", "manager")
		companyX = fx.Company("X", oa.ID).ID
		companyY = fx.Company("Y", ob.ID).ID
		s1 := fx.Station("S1", companyX, &m1.ID)
		s2 := fx.Station("S2", companyX, nil)
		s3 := fx.Station("S3", companyY, nil)
		petrolX1 = fx.Inventory(s1.ID, "Petrol", 100, 200, 20, 1400).ID
		petrolX2 = fx.Inventory(s2.ID, "Petrol", 100, 200, 20, 1400).ID
		dieselX = fx.Inventory(s1.ID, "Diesel", 100, 200, 20, 1200).ID
		petrolY = fx.Inventory(s3.ID, "Petrol", 100, 200, 20, 1400).ID
		fx.Price("Petrol", 1400)

		admin = access.Principal{UserID: a.ID, Role: access.RoleAdmin}
		ownerA = access.Principal{UserID: oa.ID, Role: access.RoleOwner}
		manager1 = access.Principal{UserID: m1.ID, Role: access.RoleManager}

		repo = pricingPostgres.NewPricingRepository(db)
		gate = access.NewGate(access.NewResolver(accessPostgres.NewScopeRepository(db)), slogger)
		tx = database.NewTransactor(db, slogger)
		service = pricing.NewService(repo, gate, tx, errs.MissingPriceReject, slogger)
	})

	Describe("ApplyPrice", func() {
		It("fans an admin price out to every inventory of the fuel type", func() {
			affected, err := service.ApplyPrice(ctx, admin, "Petrol", 1500, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(Equal(int64(3)))

			Expect(priceOf(petrolX1)).To(Equal(1500.0))
			Expect(priceOf(petrolX2)).To(Equal(1500.0))
			Expect(priceOf(petrolY)).To(Equal(1500.0))
			Expect(priceOf(dieselX)).To(Equal(1200.0))

			price, err := service.CurrentPrice(ctx, "Petrol")
			Expect(err).NotTo(HaveOccurred())
			Expect(price).To(Equal(1500.0))
		})

		It("limits an owner's fan-out to the named company", func() {
			affected, err := service.ApplyPrice(ctx, ownerA, "Petrol", 1500, &companyX)
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(Equal(int64(2)))

			Expect(priceOf(petrolX1)).To(Equal(1500.0))
			Expect(priceOf(petrolX2)).To(Equal(1500.0))
			Expect(priceOf(petrolY)).To(Equal(1400.0))
		})

		It("still writes the shared setting for owners", func() {
			_, err := service.ApplyPrice(ctx, ownerA, "Premium", 1800, &companyX)
			Expect(err).NotTo(HaveOccurred())

			price, err := service.CurrentPrice(ctx, "Premium")
			Expect(err).NotTo(HaveOccurred())
			Expect(price).To(Equal(1800.0))
		})

		It("rejects owners naming another owner's company or none", func() {
			_, err := service.ApplyPrice(ctx, ownerA, "Petrol", 1500, &companyY)
			Expect(err).To(MatchError(errs.ErrAccessDenied))
			Expect(priceOf(petrolY)).To(Equal(1400.0))

			_, err = service.ApplyPrice(ctx, ownerA, "Petrol", 1500, nil)
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errs.ErrorTypeValidation))
		})

		It("denies managers", func() {
			_, err := service.ApplyPrice(ctx, manager1, "Petrol", 1500, &companyX)
			Expect(err).To(MatchError(errs.ErrRoleNotAllowed))
		})

		It("rejects non-positive prices", func() {
			_, err := service.ApplyPrice(ctx, admin, "Petrol", 0, nil)
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errs.ErrorTypeValidation))
		})
	})

	Describe("CurrentPrice", func() {
		It("rejects unpriced fuel under the reject policy", func() {
			_, err := service.CurrentPrice(ctx, "Kerosene")
			Expect(err).To(MatchError(errs.ErrPriceNotConfigured))
		})

		It("returns zero under the zero policy", func() {
			lenient := pricing.NewService(repo, gate, tx, errs.MissingPriceZero, slogger)
			price, err := lenient.CurrentPrice(ctx, "Kerosene")
			Expect(err).NotTo(HaveOccurred())
			Expect(price).To(BeZero())
		})
	})

	Describe("Handler", func() {
		It("returns the number of inventories changed", func() {
			handler := pricing.NewHandler(transport.NewBaseHandler(slogger), service)
			body := `{"price_per_liter": 1500, "company_id": ` + strconv.FormatInt(companyX, 10) + `}`
			req := transporttest.NewRequest(http.MethodPut, "/api/v1/settings/prices/Petrol",
				bytes.NewBufferString(body), ownerA, "fuel_type", "Petrol")
			w := httptest.NewRecorder()
			handler.ApplyPrice(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"affected_inventories":2`))
		})
	})
})
