package company_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	errs "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	accessPostgres "github.com/frahmantamala/fuel-station-management/internal/access/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/company"
	companyPostgres "github.com/frahmantamala/fuel-station-management/internal/company/postgres"
	pumpDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/pump"
	stationDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/station"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/core/database/databasetest"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/frahmantamala/fuel-station-management/internal/transport/transporttest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestCompany(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Company Suite")
}

var _ = Describe("Company Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		service *company.Service
		slogger *slog.Logger

		admin, ownerA, ownerB, manager access.Principal
		companyX, companyY             int64
	)

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
		m := fx.User("manager_1", "manager")
		companyX = fx.Company("X", oa.ID).ID
		companyY = fx.Company("Y", ob.ID).ID
		st := fx.Station("S1", companyX, &m.ID)
		fx.Pump(st.ID, 1, "diesel")

		admin = access.Principal{UserID: a.ID, Role: access.RoleAdmin}
		ownerA = access.Principal{UserID: oa.ID, Role: access.RoleOwner}
		ownerB = access.Principal{UserID: ob.ID, Role: access.RoleOwner}
		manager = access.Principal{UserID: m.ID, Role: access.RoleManager}

		gate := access.NewGate(access.NewResolver(accessPostgres.NewScopeRepository(db)), slogger)
		service = company.NewService(companyPostgres.NewCompanyRepository(db), gate, database.NewTransactor(db, slogger), slogger)
	})

	Describe("List", func() {
		It("shows owners only their own companies", func() {
			companies, err := service.List(ctx, ownerA)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(HaveLen(1))
			Expect(companies[0].ID).To(Equal(companyX))
		})

		It("gives managers an empty list", func() {
			companies, err := service.List(ctx, manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(BeEmpty())
		})
	})

	Describe("Get", func() {
		It("denies other owners and hides missing ids the same way", func() {
			_, err := service.Get(ctx, ownerA, companyY)
			Expect(err).To(MatchError(errs.ErrAccessDenied))
			_, err = service.Get(ctx, ownerA, 4242)
			Expect(err).To(MatchError(errs.ErrAccessDenied))
		})
	})

	Describe("Create", func() {
		It("makes the owner the owner regardless of the payload", func() {
			c, err := service.Create(ctx, ownerA, company.CreateCompanyDTO{Name: "Z", OwnerID: &ownerB.UserID})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.OwnerID).To(Equal(ownerA.UserID))
		})

		It("requires admins to name a user with role owner", func() {
			_, err := service.Create(ctx, admin, company.CreateCompanyDTO{Name: "Z"})
			Expect(err).To(HaveOccurred())

			_, err = service.Create(ctx, admin, company.CreateCompanyDTO{Name: "Z", OwnerID: &manager.UserID})
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errs.ErrorTypeValidation))

			c, err := service.Create(ctx, admin, company.CreateCompanyDTO{Name: "Z", OwnerID: &ownerB.UserID})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.OwnerID).To(Equal(ownerB.UserID))
		})

		It("rejects duplicate names", func() {
			_, err := service.Create(ctx, ownerA, company.CreateCompanyDTO{Name: "Y"})
			Expect(err).To(MatchError(errs.ErrDuplicateCompany))
		})

		It("refuses managers", func() {
			_, err := service.Create(ctx, manager, company.CreateCompanyDTO{Name: "Z"})
			Expect(err).To(MatchError(errs.ErrRoleNotAllowed))
		})
	})

	Describe("Update", func() {
		It("lets only admins transfer ownership", func() {
			_, err := service.Update(ctx, ownerA, companyX, company.UpdateCompanyDTO{OwnerID: &ownerB.UserID})
			Expect(err).To(MatchError(errs.ErrRoleNotAllowed))

			c, err := service.Update(ctx, admin, companyX, company.UpdateCompanyDTO{OwnerID: &ownerB.UserID})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.OwnerID).To(Equal(ownerB.UserID))
		})
	})

	Describe("Delete", func() {
		It("removes stations and pumps with the company", func() {
			Expect(service.Delete(ctx, ownerA, companyX)).To(Succeed())

			var stations, pumps int64
			Expect(db.Model(&stationDatamodel.Station{}).Count(&stations).Error).To(Succeed())
			Expect(db.Model(&pumpDatamodel.Pump{}).Count(&pumps).Error).To(Succeed())
			Expect(stations).To(BeZero())
			Expect(pumps).To(BeZero())
		})

		It("refuses owners deleting someone else's company", func() {
			Expect(service.Delete(ctx, ownerA, companyY)).To(MatchError(errs.ErrAccessDenied))
		})
	})

	Describe("Handler", func() {
		var handler *company.Handler

		BeforeEach(func() {
			handler = company.NewHandler(transport.NewBaseHandler(slogger), service)
		})

		It("answers 403 for a manager asking for a company", func() {
			req := transporttest.NewRequest(http.MethodGet, "/api/v1/companies/x", nil, manager, "id", strconv.FormatInt(companyX, 10))
			w := httptest.NewRecorder()
			handler.GetCompany(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			var body map[string]map[string]interface{}
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body["error"]["code"]).To(Equal("ACCESS_DENIED"))
		})

		It("answers 401 without a principal", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil)
			w := httptest.NewRecorder()
			handler.ListCompanies(w, req)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
