package access_test

import (
	"context"
	"errors"

	errs "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	accessPostgres "github.com/frahmantamala/fuel-station-management/internal/access/postgres"
	"github.com/frahmantamala/fuel-station-management/internal/core/database/databasetest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type failingRepository struct{}

func (failingRepository) StationIDsOwnedBy(context.Context, int64) ([]int64, error) {
	return nil, errors.New("connection reset")
}
func (failingRepository) StationIDsManagedBy(context.Context, int64) ([]int64, error) {
	return nil, errors.New("connection reset")
}
func (failingRepository) CompanyIDsOwnedBy(context.Context, int64) ([]int64, error) {
	return nil, errors.New("connection reset")
}
func (failingRepository) ManagerIDsForOwner(context.Context, int64) ([]int64, error) {
	return nil, errors.New("connection reset")
}

var _ = Describe("Gate", func() {
	var (
		ctx  context.Context
		gate *access.Gate
		t    tree
	)

	BeforeEach(func() {
		db, err := databasetest.Open()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
		gate = access.NewGate(access.NewResolver(accessPostgres.NewScopeRepository(db)), quietLogger())
		t = buildTree(db)
	})

	can := func(p access.Principal, action access.Action, res access.Resource) bool {
		ok, err := gate.CanAccess(ctx, p, action, res)
		Expect(err).NotTo(HaveOccurred())
		return ok
	}

	Describe("station-bound objects", func() {
		DescribeTable("pump access",
			func(who func() access.Principal, station func() int64, action access.Action, expected bool) {
				res := access.StationBound(access.KindPump, station())
				Expect(can(who(), action, res)).To(Equal(expected))
			},
			Entry("admin writes any pump", func() access.Principal { return t.admin }, func() int64 { return t.s3 }, access.ActionWrite, true),
			Entry("owner writes a pump in its tree", func() access.Principal { return t.ownerA }, func() int64 { return t.s2 }, access.ActionWrite, true),
			Entry("owner cannot read another owner's pump", func() access.Principal { return t.ownerA }, func() int64 { return t.s3 }, access.ActionRead, false),
			Entry("manager updates its own station's pump", func() access.Principal { return t.m1 }, func() int64 { return t.s1 }, access.ActionWrite, true),
			Entry("manager cannot read a pump at another manager's station", func() access.Principal { return t.m1 }, func() int64 { return t.s3 }, access.ActionRead, false),
			Entry("manager cannot read an unmanaged sibling station", func() access.Principal { return t.m1 }, func() int64 { return t.s2 }, access.ActionRead, false),
		)

		It("keeps inventory read-only for managers", func() {
			inv := access.StationBound(access.KindInventory, t.s1)
			Expect(can(t.m1, access.ActionRead, inv)).To(BeTrue())
			Expect(can(t.m1, access.ActionWrite, inv)).To(BeFalse())
			Expect(gate.Authorize(ctx, t.m1, access.ActionWrite, inv)).To(MatchError(errs.ErrInventoryReadOnly))
			Expect(can(t.ownerA, access.ActionWrite, inv)).To(BeTrue())
		})

		It("does not let managers delete their station", func() {
			st := access.StationOwned(t.s1, t.companyX)
			Expect(can(t.m1, access.ActionWrite, st)).To(BeTrue())
			Expect(can(t.m1, access.ActionDelete, st)).To(BeFalse())
			Expect(can(t.ownerA, access.ActionDelete, st)).To(BeTrue())
		})
	})

	Describe("companies", func() {
		It("allows owners their own companies only", func() {
			Expect(can(t.ownerA, access.ActionWrite, access.CompanyOwned(t.companyX))).To(BeTrue())
			Expect(can(t.ownerA, access.ActionRead, access.CompanyOwned(t.companyY))).To(BeFalse())
		})

		It("denies managers every company", func() {
			Expect(can(t.m1, access.ActionRead, access.CompanyOwned(t.companyX))).To(BeFalse())
		})
	})

	Describe("users", func() {
		It("lets owners manage linked managers and themselves", func() {
			Expect(can(t.ownerA, access.ActionWrite, access.UserOwned(t.m1.UserID, access.RoleManager))).To(BeTrue())
			Expect(can(t.ownerA, access.ActionDelete, access.UserOwned(t.m1.UserID, access.RoleManager))).To(BeTrue())
			Expect(can(t.ownerA, access.ActionWrite, access.UserOwned(t.ownerA.UserID, access.RoleOwner))).To(BeTrue())
		})

		It("denies owners unlinked managers, other owners and admins", func() {
			Expect(can(t.ownerA, access.ActionWrite, access.UserOwned(t.m2.UserID, access.RoleManager))).To(BeFalse())
			Expect(can(t.ownerA, access.ActionWrite, access.UserOwned(t.idle.UserID, access.RoleManager))).To(BeFalse())
			Expect(can(t.ownerA, access.ActionRead, access.UserOwned(t.ownerB.UserID, access.RoleOwner))).To(BeFalse())
			Expect(can(t.ownerA, access.ActionDelete, access.UserOwned(t.admin.UserID, access.RoleAdmin))).To(BeFalse())
		})

		It("limits managers to their own profile", func() {
			Expect(can(t.m1, access.ActionWrite, access.UserOwned(t.m1.UserID, access.RoleManager))).To(BeTrue())
			Expect(can(t.m1, access.ActionRead, access.UserOwned(t.m2.UserID, access.RoleManager))).To(BeFalse())
		})

		It("never lets anyone delete themselves", func() {
			Expect(can(t.m1, access.ActionDelete, access.UserOwned(t.m1.UserID, access.RoleManager))).To(BeFalse())
			Expect(can(t.ownerA, access.ActionDelete, access.UserOwned(t.ownerA.UserID, access.RoleOwner))).To(BeFalse())
		})
	})

	Describe("Authorize", func() {
		It("separates unauthenticated from forbidden", func() {
			res := access.StationBound(access.KindTransaction, t.s1)
			Expect(gate.Authorize(ctx, access.Principal{}, access.ActionRead, res)).To(MatchError(errs.ErrUnauthenticated))
			Expect(gate.Authorize(ctx, t.m2, access.ActionRead, res)).To(MatchError(errs.ErrAccessDenied))
			Expect(gate.Authorize(ctx, t.m1, access.ActionRead, res)).To(Succeed())
		})

		It("reports resolver failures as internal errors", func() {
			broken := access.NewGate(access.NewResolver(failingRepository{}), quietLogger())
			err := broken.Authorize(ctx, t.ownerA, access.ActionRead, access.StationBound(access.KindPump, t.s1))
			appErr, ok := errs.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errs.ErrorTypeInternal))
		})
	})

	Describe("AuthorizeCreate", func() {
		It("lets owners create managers but not owners or admins", func() {
			Expect(gate.AuthorizeCreate(ctx, t.ownerA, access.KindUser, access.Ownership{UserRole: access.RoleManager})).To(Succeed())
			Expect(gate.AuthorizeCreate(ctx, t.ownerA, access.KindUser, access.Ownership{UserRole: access.RoleAdmin})).To(MatchError(errs.ErrRoleNotAllowed))
			Expect(gate.AuthorizeCreate(ctx, t.ownerA, access.KindUser, access.Ownership{UserRole: access.RoleOwner})).To(MatchError(errs.ErrRoleNotAllowed))
		})

		It("refuses managers any user, company or station", func() {
			Expect(gate.AuthorizeCreate(ctx, t.m1, access.KindUser, access.Ownership{UserRole: access.RoleManager})).To(MatchError(errs.ErrRoleNotAllowed))
			Expect(gate.AuthorizeCreate(ctx, t.m1, access.KindCompany, access.Ownership{})).To(MatchError(errs.ErrRoleNotAllowed))
			Expect(gate.AuthorizeCreate(ctx, t.m1, access.KindStation, access.CompanyOwned(t.companyX))).To(MatchError(errs.ErrRoleNotAllowed))
		})

		It("scopes station creation to owned companies", func() {
			Expect(gate.AuthorizeCreate(ctx, t.ownerA, access.KindStation, access.CompanyOwned(t.companyX))).To(Succeed())
			Expect(gate.AuthorizeCreate(ctx, t.ownerA, access.KindStation, access.CompanyOwned(t.companyY))).To(MatchError(errs.ErrAccessDenied))
		})

		It("lets managers record transactions at their own station only", func() {
			Expect(gate.AuthorizeCreate(ctx, t.m1, access.KindTransaction, access.StationBound(access.KindTransaction, t.s1))).To(Succeed())
			Expect(gate.AuthorizeCreate(ctx, t.m1, access.KindTransaction, access.StationBound(access.KindTransaction, t.s3))).To(MatchError(errs.ErrAccessDenied))
		})

		It("lets admins create anything", func() {
			Expect(gate.AuthorizeCreate(ctx, t.admin, access.KindUser, access.Ownership{UserRole: access.RoleAdmin})).To(Succeed())
		})
	})
})
