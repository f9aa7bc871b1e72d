package dashboard_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	errs "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	accessPostgres "github.com/frahmantamala/fuel-station-management/internal/access/postgres"
	alertDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/alert"
	pumpDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/pump"
	transactionDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/transaction"
	"github.com/frahmantamala/fuel-station-management/internal/core/database/databasetest"
	"github.com/frahmantamala/fuel-station-management/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/fuel-station-management/internal/dashboard/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/frahmantamala/fuel-station-management/internal/transport/transporttest"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestDashboard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Suite")
}

var _ = Describe("Dashboard Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		service *dashboard.Service
		slogger *slog.Logger

		admin, ownerA, ownerB, manager1 access.Principal
		stationS1, stationS2, stationS3 int64
	)

	sale := func(stationID, pumpID int64, quantity, total float64, at time.Time) {
		Expect(db.Create(&transactionDatamodel.Transaction{
			StationID:       stationID,
			UserID:          admin.UserID,
			PumpID:          pumpID,
			FuelType:        "diesel",
			Quantity:        quantity,
			UnitPrice:       total / quantity,
			TotalPrice:      total,
			PaymentMethod:   "cash",
			TransactionTime: at.UTC(),
		}).Error).To(Succeed())
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
		x := fx.Company("X", oa.ID)
		y := fx.Company("Y", ob.ID)
		stationS1 = fx.Station("Main Station", x.ID, &m1.ID).ID
		stationS2 = fx.Station("North Station", x.ID, nil).ID
		stationS3 = fx.Station("Harbour Station", y.ID, nil).ID

		admin = access.Principal{UserID: a.ID, Role: access.RoleAdmin}
		ownerA = access.Principal{UserID: oa.ID, Role: access.RoleOwner}
		ownerB = access.Principal{UserID: ob.ID, Role: access.RoleOwner}
		manager1 = access.Principal{UserID: m1.ID, Role: access.RoleManager}

		p1 := fx.Pump(stationS1, 1, "diesel").ID
		p2 := fx.Pump(stationS2, 1, "diesel").ID
		offline := fx.Pump(stationS2, 2, "petrol")
		Expect(db.Model(offline).Update("status", pumpDatamodel.StatusOffline).Error).To(Succeed())
		p3 := fx.Pump(stationS3, 1, "diesel").ID

		fx.Inventory(stationS1, "diesel", 40, 200, 50, 1200)
		fx.Inventory(stationS2, "diesel", 150, 200, 50, 1200)
		fx.Inventory(stationS3, "diesel", 10, 200, 50, 1200)

		Expect(db.Create(&alertDatamodel.Alert{
			StationID:   stationS1,
			Type:        alertDatamodel.TypeInventory,
			Description: "low",
			Status:      alertDatamodel.StatusPending,
		}).Error).To(Succeed())

		now := time.Now()
		sale(stationS1, p1, 10, 12000, now)
		sale(stationS1, p1, 5, 6000, now.Add(-time.Minute))
		sale(stationS2, p2, 20, 24000, now.Add(-48*time.Hour))
		sale(stationS3, p3, 7, 8400, now)

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		repo := dashboardPostgres.NewDashboardRepository(sqlx.NewDb(sqlDB, "sqlite3"))
		service = dashboard.NewService(repo, access.NewResolver(accessPostgres.NewScopeRepository(db)), slogger)
	})

	Describe("Summary", func() {
		It("aggregates only the owner's stations", func() {
			s, err := service.Summary(ctx, ownerA)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Stations).To(Equal(int64(2)))
			Expect(s.ActivePumps).To(Equal(int64(2)))
			Expect(s.OfflinePumps).To(Equal(int64(1)))
			Expect(s.TodayRevenue).To(Equal(18000.0))
			Expect(s.TodayLitres).To(Equal(15.0))
			Expect(s.PendingAlerts).To(Equal(int64(1)))
			Expect(s.LowStock).To(Equal(int64(1)))
			Expect(s.RecentTransactions).To(HaveLen(3))
			Expect(s.RecentTransactions[0].StationName).To(Equal("Main Station"))
			Expect(s.RecentTransactions[0].TotalPrice).To(Equal(12000.0))
		})

		It("sees everything as admin", func() {
			s, err := service.Summary(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Stations).To(Equal(int64(3)))
			Expect(s.LowStock).To(Equal(int64(2)))
			Expect(s.RecentTransactions).To(HaveLen(4))
		})

		It("limits a manager to their station", func() {
			s, err := service.Summary(ctx, manager1)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Stations).To(Equal(int64(1)))
			Expect(s.OfflinePumps).To(BeZero())
			Expect(s.RecentTransactions).To(HaveLen(2))
		})

		It("returns zeros for an owner without stations", func() {
			lonely := databasetest.NewFixtures(db).User("owner_c", "owner")
			s, err := service.Summary(ctx, access.Principal{UserID: lonely.ID, Role: access.RoleOwner})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Stations).To(BeZero())
			Expect(s.RecentTransactions).To(BeEmpty())
		})

		It("requires a principal", func() {
			_, err := service.Summary(ctx, access.Principal{})
			Expect(err).To(MatchError(errs.ErrUnauthenticated))
		})
	})

	Describe("Sales", func() {
		It("groups revenue by station inside the window", func() {
			now := time.Now()
			report, err := service.Sales(ctx, ownerA, now.Add(-7*24*time.Hour), now.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Stations).To(HaveLen(2))
			Expect(report.Stations[0].StationName).To(Equal("North Station"))
			Expect(report.Stations[0].Revenue).To(Equal(24000.0))
			Expect(report.Stations[1].Transactions).To(Equal(int64(2)))
			Expect(report.Revenue).To(Equal(42000.0))
			Expect(report.Litres).To(Equal(35.0))
		})

		It("excludes sales outside the window", func() {
			now := time.Now()
			report, err := service.Sales(ctx, ownerB, now.Add(-time.Hour), now.Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Stations).To(HaveLen(1))
			Expect(report.Stations[0].StationID).To(Equal(stationS3))

			report, err = service.Sales(ctx, ownerA, now.Add(-72*time.Hour), now.Add(-24*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Stations).To(HaveLen(1))
			Expect(report.Revenue).To(Equal(24000.0))
		})

		It("rejects an inverted window", func() {
			now := time.Now()
			_, err := service.Sales(ctx, admin, now, now.Add(-time.Hour))
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errs.ErrorTypeValidation))
		})
	})

	Describe("Handler", func() {
		It("serves the summary", func() {
			handler := dashboard.NewHandler(transport.NewBaseHandler(slogger), service)
			rec := httptest.NewRecorder()
			handler.GetDashboard(rec, transporttest.NewRequest(http.MethodGet, "/dashboard", nil, manager1))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("stations", 1.0))
		})

		It("answers 400 for an unparseable date", func() {
			handler := dashboard.NewHandler(transport.NewBaseHandler(slogger), service)
			rec := httptest.NewRecorder()
			handler.GetSalesReport(rec, transporttest.NewRequest(http.MethodGet, "/reports/sales?from=yesterday", nil, admin))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
