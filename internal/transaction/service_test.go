package transaction_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	errs "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	accessPostgres "github.com/frahmantamala/fuel-station-management/internal/access/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/alert"
	alertPostgres "github.com/frahmantamala/fuel-station-management/internal/alert/postgres"
	alertDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/alert"
	inventoryDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/inventory"
	pumpDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/pump"
	transactionDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/transaction"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/core/database/databasetest"
	"github.com/frahmantamala/fuel-station-management/internal/core/events"
	"github.com/frahmantamala/fuel-station-management/internal/core/events/eventstest"
	"github.com/frahmantamala/fuel-station-management/internal/inventory"
	inventoryPostgres "github.com/frahmantamala/fuel-station-management/internal/inventory/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/pricing"
	pricingPostgres "github.com/frahmantamala/fuel-station-management/internal/pricing/postgres"
	pumpPostgres "github.com/frahmantamala/fuel-station-management/internal/pump/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/transaction"
	transactionPostgres "github.com/frahmantamala/fuel-station-management/internal/transaction/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/transport"
	"github.com/frahmantamala/fuel-station-management/internal/transport/transporttest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestTransaction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transaction Suite")
}

var _ = Describe("Transaction Service", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		slogger  *slog.Logger
		recorder *eventstest.Recorder
		fx       *databasetest.Fixtures

		admin, ownerA, ownerB, manager1, manager2 access.Principal
		stationS1, stationS2                      int64
		dieselPump, petrolPump                    int64
		dieselInv                                 int64
	)

	newService := func(policy string) *transaction.Service {
		gate := access.NewGate(access.NewResolver(accessPostgres.NewScopeRepository(db)), slogger)
		tx := database.NewTransactor(db, slogger)
		engine := alert.NewEngine(alertPostgres.NewAlertRepository(db), recorder, nil, slogger)
		return transaction.NewService(transaction.Dependencies{
			Repo:      transactionPostgres.NewTransactionRepository(db),
			Pumps:     pumpPostgres.NewPumpRepository(db),
			Prices:    pricing.NewService(pricingPostgres.NewPricingRepository(db), gate, tx, policy, slogger),
			Inventory: inventory.NewService(inventoryPostgres.NewInventoryRepository(db), gate, engine, tx, slogger),
			Alerts:    engine,
			Gate:      gate,
			Tx:        tx,
			Publisher: recorder,
			Logger:    slogger,
		})
	}

	sale := func(quantity float64, payment string) transaction.PostTransactionDTO {
		return transaction.PostTransactionDTO{
			StationID:     stationS1,
			PumpID:        dieselPump,
			FuelType:      "diesel",
			Quantity:      quantity,
			PaymentMethod: payment,
		}
	}

	stock := func(id int64) float64 {
		var inv inventoryDatamodel.Inventory
		Expect(db.First(&inv, id).Error).To(Succeed())
		return inv.Quantity
	}

	count := func(model interface{}) int64 {
		var n int64
		Expect(db.Model(model).Count(&n).Error).To(Succeed())
		return n
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db, err = databasetest.Open()
		Expect(err).NotTo(HaveOccurred())
		recorder = eventstest.NewRecorder()

		fx = databasetest.NewFixtures(db)
		a := fx.User("root", "admin")
		oa := fx.User("owner_a", "owner")
		ob := fx.User("owner_b", "owner")
		m1 := fx.User("manager_1", "manager")
		m2 := fx.User("manager_2", "manager")
		x := fx.Company("X", oa.ID)
		y := fx.Company("Y", ob.ID)
		stationS1 = fx.Station("Main Station", x.ID, &m1.ID).ID
		stationS2 = fx.Station("Harbour Station", y.ID, &m2.ID).ID
		dieselPump = fx.Pump(stationS1, 1, "diesel").ID
		petrolPump = fx.Pump(stationS1, 2, "petrol").ID
		dieselInv = fx.Inventory(stationS1, "diesel", 100, 200, 50, 1200).ID
		fx.Inventory(stationS1, "petrol", 80, 200, 20, 1300)
		fx.Price("diesel", 1200)

		admin = access.Principal{UserID: a.ID, Role: access.RoleAdmin}
		ownerA = access.Principal{UserID: oa.ID, Role: access.RoleOwner}
		ownerB = access.Principal{UserID: ob.ID, Role: access.RoleOwner}
		manager1 = access.Principal{UserID: m1.ID, Role: access.RoleManager}
		manager2 = access.Principal{UserID: m2.ID, Role: access.RoleManager}
	})

	Describe("Post", func() {
		It("prices the sale, deducts stock and opens one alert", func() {
			service := newService(errs.MissingPriceReject)

			t, err := service.Post(ctx, manager1, sale(60, "cash"))
			Expect(err).NotTo(HaveOccurred())
			Expect(t.ID).To(BeNumerically(">", 0))
			Expect(t.UnitPrice).To(Equal(1200.0))
			Expect(t.TotalPrice).To(Equal(72000.0))
			Expect(t.UserID).To(Equal(manager1.UserID))
			Expect(t.TransactionTime).NotTo(BeZero())

			Expect(stock(dieselInv)).To(Equal(40.0))

			var alerts []alertDatamodel.Alert
			Expect(db.Where("status = ?", alert.StatusPending).Find(&alerts).Error).To(Succeed())
			Expect(alerts).To(HaveLen(1))
			Expect(*alerts[0].InventoryID).To(Equal(dieselInv))
		})

		It("does not open a second alert on a further sale", func() {
			service := newService(errs.MissingPriceReject)
			_, err := service.Post(ctx, manager1, sale(60, "cash"))
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Post(ctx, manager1, sale(5, "card"))
			Expect(err).NotTo(HaveOccurred())

			Expect(stock(dieselInv)).To(Equal(35.0))
			Expect(count(&alertDatamodel.Alert{})).To(Equal(int64(1)))
		})

		It("rolls everything back when stock is insufficient", func() {
			service := newService(errs.MissingPriceReject)

			_, err := service.Post(ctx, ownerA, sale(150, "cash"))
			Expect(err).To(MatchError(errs.ErrInsufficientInventory))

			Expect(stock(dieselInv)).To(Equal(100.0))
			Expect(count(&transactionDatamodel.Transaction{})).To(BeZero())
			Expect(count(&alertDatamodel.Alert{})).To(BeZero())
			Expect(recorder.Events()).To(BeEmpty())
		})

		It("accepts a sale that empties the tank exactly", func() {
			service := newService(errs.MissingPriceReject)
			_, err := service.Post(ctx, ownerA, sale(100, "momo"))
			Expect(err).NotTo(HaveOccurred())
			Expect(stock(dieselInv)).To(Equal(0.0))
		})

		It("publishes the posted event after commit", func() {
			service := newService(errs.MissingPriceReject)
			t, err := service.Post(ctx, manager1, sale(10, "cash"))
			Expect(err).NotTo(HaveOccurred())

			Expect(recorder.Types()).To(Equal([]string{events.EventTypeTransactionPosted}))
			posted, ok := recorder.Events()[0].(*events.TransactionPostedEvent)
			Expect(ok).To(BeTrue())
			Expect(posted.TransactionID).To(Equal(t.ID))
			Expect(posted.TotalPrice).To(Equal(12000.0))
		})

		It("emits the low-stock event alongside the sale", func() {
			service := newService(errs.MissingPriceReject)
			_, err := service.Post(ctx, manager1, sale(60, "cash"))
			Expect(err).NotTo(HaveOccurred())
			Expect(recorder.Types()).To(ConsistOf(events.EventTypeInventoryLow, events.EventTypeTransactionPosted))
		})

		It("normalises payment method and plate", func() {
			service := newService(errs.MissingPriceReject)
			dto := sale(1, " CASH ")
			dto.CarPlate = databasetest.Ptr(" abc-123 ")

			t, err := service.Post(ctx, manager1, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.PaymentMethod).To(Equal("cash"))
			Expect(*t.CarPlate).To(Equal("ABC-123"))
		})

		It("stores mobile-money as momo", func() {
			service := newService(errs.MissingPriceReject)
			t, err := service.Post(ctx, manager1, sale(1, "Mobile-Money"))
			Expect(err).NotTo(HaveOccurred())
			Expect(t.PaymentMethod).To(Equal(transaction.PaymentMomo))
		})

		It("rejects an unknown payment method", func() {
			service := newService(errs.MissingPriceReject)
			_, err := service.Post(ctx, manager1, sale(1, "cheque"))
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errs.ErrCodeInvalidPayment))
		})

		It("rejects a non-positive quantity", func() {
			service := newService(errs.MissingPriceReject)
			_, err := service.Post(ctx, manager1, sale(0, "cash"))
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errs.ErrCodeInvalidQuantity))
		})

		It("rejects a pump from another station", func() {
			other := fx.Pump(stationS2, 1, "diesel").ID
			service := newService(errs.MissingPriceReject)
			dto := sale(10, "cash")
			dto.PumpID = other

			_, err := service.Post(ctx, admin, dto)
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errs.ErrCodeInvalidPump))
			Expect(stock(dieselInv)).To(Equal(100.0))
		})

		It("rejects an offline pump", func() {
			Expect(db.Model(&pumpDatamodel.Pump{}).Where("id = ?", dieselPump).
				Update("status", pumpDatamodel.StatusOffline).Error).To(Succeed())
			service := newService(errs.MissingPriceReject)

			_, err := service.Post(ctx, manager1, sale(10, "cash"))
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errs.ErrCodeInvalidPump))
		})

		It("rejects a fuel the pump does not dispense", func() {
			service := newService(errs.MissingPriceReject)
			dto := sale(10, "cash")
			dto.PumpID = petrolPump

			_, err := service.Post(ctx, manager1, dto)
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errs.ErrCodeInvalidFuelType))
		})

		Context("when the fuel has no system price", func() {
			var dto transaction.PostTransactionDTO

			BeforeEach(func() {
				dto = sale(10, "cash")
				dto.PumpID = petrolPump
				dto.FuelType = "petrol"
			})

			It("refuses the sale under the reject policy", func() {
				service := newService(errs.MissingPriceReject)
				_, err := service.Post(ctx, manager1, dto)
				Expect(err).To(MatchError(errs.ErrPriceNotConfigured))
				Expect(count(&transactionDatamodel.Transaction{})).To(BeZero())
			})

			It("records a zero-priced sale under the zero policy", func() {
				service := newService(errs.MissingPriceZero)
				t, err := service.Post(ctx, manager1, dto)
				Expect(err).NotTo(HaveOccurred())
				Expect(t.UnitPrice).To(BeZero())
				Expect(t.TotalPrice).To(BeZero())
			})
		})

		It("denies a manager of another station", func() {
			service := newService(errs.MissingPriceReject)
			_, err := service.Post(ctx, manager2, sale(10, "cash"))
			Expect(err).To(MatchError(errs.ErrAccessDenied))
			Expect(stock(dieselInv)).To(Equal(100.0))
		})

		It("denies an owner of another company", func() {
			service := newService(errs.MissingPriceReject)
			_, err := service.Post(ctx, ownerB, sale(10, "cash"))
			Expect(err).To(MatchError(errs.ErrAccessDenied))
		})
	})

	Describe("Get and List", func() {
		var service *transaction.Service

		BeforeEach(func() {
			service = newService(errs.MissingPriceReject)
			for _, pm := range []string{"cash", "momo", "card"} {
				_, err := service.Post(ctx, manager1, sale(5, pm))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns newest first with the total", func() {
			txs, total, err := service.List(ctx, ownerA, transaction.ListFilter{Limit: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
			Expect(txs).To(HaveLen(2))
			Expect(txs[0].ID).To(BeNumerically(">", txs[1].ID))
		})

		It("filters by payment method", func() {
			txs, total, err := service.List(ctx, admin, transaction.ListFilter{PaymentMethod: "momo"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(txs[0].PaymentMethod).To(Equal("momo"))
		})

		It("filters mobile-money sales under the momo method", func() {
			txs, total, err := service.List(ctx, admin, transaction.ListFilter{PaymentMethod: "mobile-money"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(txs[0].PaymentMethod).To(Equal("momo"))
		})

		It("treats payment method all as no filter", func() {
			_, total, err := service.List(ctx, admin, transaction.ListFilter{PaymentMethod: "all", Duration: "24hrs"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(3)))
		})

		It("searches across fuel type and payment method", func() {
			_, total, err := service.List(ctx, admin, transaction.ListFilter{Search: "CARD"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
		})

		It("rejects an unknown duration", func() {
			_, _, err := service.List(ctx, admin, transaction.ListFilter{Duration: "year"})
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errs.ErrorTypeValidation))
		})

		It("never widens the caller's scope through station_id", func() {
			txs, total, err := service.List(ctx, ownerB, transaction.ListFilter{StationID: stationS1})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
			Expect(txs).To(BeEmpty())

			_, total, err = service.List(ctx, manager2, transaction.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
		})

		It("guards single reads by station", func() {
			txs, _, err := service.List(ctx, manager1, transaction.ListFilter{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Get(ctx, manager1, txs[0].ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Get(ctx, manager2, txs[0].ID)
			Expect(err).To(MatchError(errs.ErrAccessDenied))
			_, err = service.Get(ctx, admin, 9999)
			Expect(err).To(MatchError(errs.ErrAccessDenied))
		})
	})

	Describe("Handler", func() {
		It("ignores a client supplied price", func() {
			handler := transaction.NewHandler(transport.NewBaseHandler(slogger), newService(errs.MissingPriceReject))
			body := `{"station_id":` + jsonInt(stationS1) + `,"pump_id":` + jsonInt(dieselPump) +
				`,"fuel_type":"diesel","quantity":10,"payment_method":"cash","unit_price":1,"total_price":1}`
			req := transporttest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body), manager1)
			rec := httptest.NewRecorder()

			handler.PostTransaction(rec, req)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var resp transaction.TransactionResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.UnitPrice).To(Equal(1200.0))
			Expect(resp.TotalPrice).To(Equal(12000.0))
		})

		It("answers 401 without a principal", func() {
			handler := transaction.NewHandler(transport.NewBaseHandler(slogger), newService(errs.MissingPriceReject))
			req := transporttest.NewRequest(http.MethodGet, "/transactions", nil, access.Principal{})
			rec := httptest.NewRecorder()

			handler.ListTransactions(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("answers 409 for an oversold tank", func() {
			handler := transaction.NewHandler(transport.NewBaseHandler(slogger), newService(errs.MissingPriceReject))
			body := `{"station_id":` + jsonInt(stationS1) + `,"pump_id":` + jsonInt(dieselPump) +
				`,"fuel_type":"diesel","quantity":500,"payment_method":"cash"}`
			req := transporttest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body), manager1)
			rec := httptest.NewRecorder()

			handler.PostTransaction(rec, req)
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})
	})
})

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
