package access

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/fuel-station-management/internal"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

type Kind string

const (
	KindCompany     Kind = "company"
	KindStation     Kind = "station"
	KindPump        Kind = "pump"
	KindInventory   Kind = "inventory"
	KindTransaction Kind = "transaction"
	KindAlert       Kind = "alert"
	KindUser        Kind = "user"
)

// Ownership names where a protected object hangs in the company → station tree.
// Station-bound kinds carry StationID, companies carry CompanyID, users carry UserID and UserRole.
type Ownership struct {
	Kind      Kind
	StationID int64
	CompanyID int64
	UserID    int64
	UserRole  Role
}

// Resource is implemented by every protected domain object.
type Resource interface {
	Ownership() Ownership
}

func (o Ownership) Ownership() Ownership { return o }

func CompanyOwned(companyID int64) Ownership {
	return Ownership{Kind: KindCompany, CompanyID: companyID}
}

func StationOwned(stationID, companyID int64) Ownership {
	return Ownership{Kind: KindStation, StationID: stationID, CompanyID: companyID}
}

func StationBound(kind Kind, stationID int64) Ownership {
	return Ownership{Kind: kind, StationID: stationID}
}

func UserOwned(userID int64, role Role) Ownership {
	return Ownership{Kind: KindUser, UserID: userID, UserRole: role}
}

type Gate struct {
	resolver *Resolver
	logger   *slog.Logger
}

func NewGate(resolver *Resolver, logger *slog.Logger) *Gate {
	return &Gate{resolver: resolver, logger: logger}
}

func (g *Gate) Resolver() *Resolver {
	return g.resolver
}

// CanAccess decides role first, then walks the ownership chain of the object.
func (g *Gate) CanAccess(ctx context.Context, p Principal, action Action, res Resource) (bool, error) {
	if !p.Authenticated() || res == nil {
		return false, nil
	}
	if p.IsAdmin() {
		return true, nil
	}

	own := res.Ownership()
	switch own.Kind {
	case KindCompany:
		if !p.IsOwner() {
			return false, nil
		}
		scope, err := g.resolver.Companies(ctx, p)
		if err != nil {
			return false, err
		}
		return scope.Contains(own.CompanyID), nil

	case KindUser:
		return g.canAccessUser(ctx, p, action, own)

	case KindStation, KindPump, KindInventory, KindTransaction, KindAlert:
		if p.IsManager() {
			if own.Kind == KindStation && action == ActionDelete {
				return false, nil
			}
			if own.Kind == KindInventory && action != ActionRead {
				return false, nil
			}
		}
		scope, err := g.resolver.Stations(ctx, p)
		if err != nil {
			return false, err
		}
		return scope.Contains(own.StationID), nil
	}

	return false, nil
}

func (g *Gate) canAccessUser(ctx context.Context, p Principal, action Action, own Ownership) (bool, error) {
	if action != ActionRead && own.UserRole == RoleAdmin {
		return false, nil
	}
	if action == ActionDelete && own.UserID == p.UserID {
		return false, nil
	}
	if own.UserID == p.UserID {
		return true, nil
	}
	if !p.IsOwner() || own.UserRole != RoleManager {
		return false, nil
	}
	scope, err := g.resolver.Users(ctx, p)
	if err != nil {
		return false, err
	}
	return scope.Contains(own.UserID), nil
}

// Authorize turns CanAccess into the error taxonomy: 401 without a principal, 403 otherwise.
func (g *Gate) Authorize(ctx context.Context, p Principal, action Action, res Resource) error {
	if !p.Authenticated() {
		return errors.ErrUnauthenticated
	}
	ok, err := g.CanAccess(ctx, p, action, res)
	if err != nil {
		g.logger.Error("authorization check failed", "error", err, "user_id", p.UserID)
		return errors.NewInternalError("authorization check failed", err)
	}
	if ok {
		return nil
	}

	own := res.Ownership()
	g.logger.Warn("access denied",
		"user_id", p.UserID,
		"role", p.Role,
		"action", action,
		"kind", own.Kind,
		"station_id", own.StationID,
		"company_id", own.CompanyID)
	if p.IsManager() && own.Kind == KindInventory && action != ActionRead {
		return errors.ErrInventoryReadOnly
	}
	return errors.ErrAccessDenied
}

// AuthorizeCreate checks creation of a new object of kind under parent. For users, parent.UserRole is the
// role being created. A role that may never create kind gets ErrRoleNotAllowed; a parent outside scope ErrAccessDenied.
func (g *Gate) AuthorizeCreate(ctx context.Context, p Principal, kind Kind, parent Ownership) error {
	if !p.Authenticated() {
		return errors.ErrUnauthenticated
	}
	if p.IsAdmin() {
		return nil
	}

	if !roleMayCreate(p, kind, parent) {
		g.logger.Warn("create denied by role", "user_id", p.UserID, "role", p.Role, "kind", kind)
		return errors.ErrRoleNotAllowed
	}

	allowed, err := g.parentInScope(ctx, p, kind, parent)
	if err != nil {
		g.logger.Error("authorization check failed", "error", err, "user_id", p.UserID)
		return errors.NewInternalError("authorization check failed", err)
	}
	if !allowed {
		g.logger.Warn("create denied by scope",
			"user_id", p.UserID,
			"role", p.Role,
			"kind", kind,
			"station_id", parent.StationID,
			"company_id", parent.CompanyID)
		return errors.ErrAccessDenied
	}
	return nil
}

func roleMayCreate(p Principal, kind Kind, parent Ownership) bool {
	switch kind {
	case KindUser:
		return p.IsOwner() && parent.UserRole == RoleManager
	case KindCompany, KindStation, KindPump, KindInventory:
		return p.IsOwner()
	case KindTransaction, KindAlert:
		return p.IsOwner() || p.IsManager()
	}
	return false
}

func (g *Gate) parentInScope(ctx context.Context, p Principal, kind Kind, parent Ownership) (bool, error) {
	switch kind {
	case KindUser, KindCompany:
		return true, nil
	case KindStation:
		scope, err := g.resolver.Companies(ctx, p)
		if err != nil {
			return false, err
		}
		return scope.Contains(parent.CompanyID), nil
	default:
		scope, err := g.resolver.Stations(ctx, p)
		if err != nil {
			return false, err
		}
		return scope.Contains(parent.StationID), nil
	}
}
