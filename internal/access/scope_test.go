package access_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	accessPostgres "github.com/frahmantamala/fuel-station-management/internal/access/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/core/database/databasetest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

// tree is the ownership layout shared by the resolver and gate suites:
// ownerA owns X (S1 managed by m1, S2 unmanaged); ownerB owns Y (S3 managed by m2).
type tree struct {
	admin, ownerA, ownerB, m1, m2, idle access.Principal
	companyX, companyY                  int64
	s1, s2, s3                          int64
}

func principal(id int64, role access.Role) access.Principal {
	return access.Principal{UserID: id, Role: role}
}

func buildTree(db *gorm.DB) tree {
	fx := databasetest.NewFixtures(db)
	admin := fx.User("root", "admin")
	ownerA := fx.User("owner_a", "owner")
	ownerB := fx.User("owner_b", "owner")
	m1 := fx.User("manager_1", "manager")
	m2 := fx.User("manager_2", "manager")
	idle := fx.User("manager_idle", "manager")

	x := fx.Company("X", ownerA.ID)
	y := fx.Company("Y", ownerB.ID)
	s1 := fx.Station("S1", x.ID, &m1.ID)
	s2 := fx.Station("S2", x.ID, nil)
	s3 := fx.Station("S3", y.ID, &m2.ID)

	return tree{
		admin:    principal(admin.ID, access.RoleAdmin),
		ownerA:   principal(ownerA.ID, access.RoleOwner),
		ownerB:   principal(ownerB.ID, access.RoleOwner),
		m1:       principal(m1.ID, access.RoleManager),
		m2:       principal(m2.ID, access.RoleManager),
		idle:     principal(idle.ID, access.RoleManager),
		companyX: x.ID,
		companyY: y.ID,
		s1:       s1.ID,
		s2:       s2.ID,
		s3:       s3.ID,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("Scope", func() {
	It("deduplicates and drops non-positive ids", func() {
		s := access.Only(3, 1, 3, 0, -2)
		Expect(s.IDs).To(Equal([]int64{3, 1}))
		Expect(s.Empty()).To(BeFalse())
	})

	It("never widens when narrowed", func() {
		Expect(access.Only(1, 2).Narrow(2).IDs).To(Equal([]int64{2}))
		Expect(access.Only(1, 2).Narrow(5).Empty()).To(BeTrue())
		Expect(access.Everything().Narrow(5).IDs).To(Equal([]int64{5}))
		Expect(access.Nothing().Contains(1)).To(BeFalse())
	})
})

var _ = Describe("Resolver", func() {
	var (
		ctx      context.Context
		resolver *access.Resolver
		t        tree
	)

	BeforeEach(func() {
		db, err := databasetest.Open()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
		resolver = access.NewResolver(accessPostgres.NewScopeRepository(db))
		t = buildTree(db)
	})

	Describe("Stations", func() {
		It("gives admins every station", func() {
			scope, err := resolver.Stations(ctx, t.admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.All).To(BeTrue())
		})

		It("gives owners the stations of their companies", func() {
			scope, err := resolver.Stations(ctx, t.ownerA)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.IDs).To(ConsistOf(t.s1, t.s2))
		})

		It("gives managers only the station they manage", func() {
			scope, err := resolver.Stations(ctx, t.m1)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.IDs).To(ConsistOf(t.s1))
		})

		It("gives an unassigned manager nothing", func() {
			scope, err := resolver.Stations(ctx, t.idle)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.Empty()).To(BeTrue())
		})

		It("gives unknown roles and anonymous callers nothing", func() {
			scope, err := resolver.Stations(ctx, access.Principal{UserID: 99, Role: "cashier"})
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.Empty()).To(BeTrue())

			scope, err = resolver.Stations(ctx, access.Principal{})
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.Empty()).To(BeTrue())
		})
	})

	Describe("Companies", func() {
		It("scopes owners to their own companies and managers to none", func() {
			scope, err := resolver.Companies(ctx, t.ownerB)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.IDs).To(ConsistOf(t.companyY))

			scope, err = resolver.Companies(ctx, t.m1)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.Empty()).To(BeTrue())
		})
	})

	Describe("Users", func() {
		It("gives owners themselves and the managers of their stations", func() {
			scope, err := resolver.Users(ctx, t.ownerA)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.IDs).To(ConsistOf(t.ownerA.UserID, t.m1.UserID))
		})

		It("gives managers only themselves", func() {
			scope, err := resolver.Users(ctx, t.m2)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope.IDs).To(ConsistOf(t.m2.UserID))
		})
	})
})
