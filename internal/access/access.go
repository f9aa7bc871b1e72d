package access

import (
	"context"
	"slices"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleManager:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Principal is the authenticated actor of a request. Role is read from the stored user on every request.
type Principal struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (p Principal) Authenticated() bool {
	return p.UserID > 0 && p.Role.Valid()
}

func (p Principal) IsAdmin() bool   { return p.Role == RoleAdmin }
func (p Principal) IsOwner() bool   { return p.Role == RoleOwner }
func (p Principal) IsManager() bool { return p.Role == RoleManager }

type ctxKey string

const principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || !p.Authenticated() {
		return Principal{}, false
	}
	return p, true
}

// Scope is a resolved set of ids a principal may act on. All means unrestricted.
type Scope struct {
	All bool
	IDs []int64
}

func Everything() Scope {
	return Scope{All: true}
}

func Nothing() Scope {
	return Scope{}
}

func Only(ids ...int64) Scope {
	return Scope{IDs: dedupe(ids)}
}

func (s Scope) Contains(id int64) bool {
	if s.All {
		return true
	}
	return slices.Contains(s.IDs, id)
}

func (s Scope) Empty() bool {
	return !s.All && len(s.IDs) == 0
}

// Narrow intersects the scope with a single requested id. The result never widens s.
func (s Scope) Narrow(id int64) Scope {
	if s.Contains(id) {
		return Only(id)
	}
	return Nothing()
}

func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id > 0 && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
