package access

import (
	"context"
	"fmt"
)

type Repository interface {
	StationIDsOwnedBy(ctx context.Context, ownerID int64) ([]int64, error)
	StationIDsManagedBy(ctx context.Context, managerID int64) ([]int64, error)
	CompanyIDsOwnedBy(ctx context.Context, ownerID int64) ([]int64, error)
	ManagerIDsForOwner(ctx context.Context, ownerID int64) ([]int64, error)
}

// Resolver computes what a principal may see. It holds no state between calls; ownership is re-read every time.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

func (r *Resolver) Stations(ctx context.Context, p Principal) (Scope, error) {
	if !p.Authenticated() {
		return Nothing(), nil
	}

	switch p.Role {
	case RoleAdmin:
		return Everything(), nil
	case RoleOwner:
		ids, err := r.repo.StationIDsOwnedBy(ctx, p.UserID)
		if err != nil {
			return Nothing(), fmt.Errorf("resolve owner stations: %w", err)
		}
		return Only(ids...), nil
	case RoleManager:
		ids, err := r.repo.StationIDsManagedBy(ctx, p.UserID)
		if err != nil {
			return Nothing(), fmt.Errorf("resolve managed stations: %w", err)
		}
		return Only(ids...), nil
	}
	return Nothing(), nil
}

// Companies: admin sees all, owners their own companies, managers none.
func (r *Resolver) Companies(ctx context.Context, p Principal) (Scope, error) {
	if !p.Authenticated() {
		return Nothing(), nil
	}

	switch p.Role {
	case RoleAdmin:
		return Everything(), nil
	case RoleOwner:
		ids, err := r.repo.CompanyIDsOwnedBy(ctx, p.UserID)
		if err != nil {
			return Nothing(), fmt.Errorf("resolve owner companies: %w", err)
		}
		return Only(ids...), nil
	}
	return Nothing(), nil
}

// Users: admin sees all, owners themselves plus the managers of their stations, managers only themselves.
func (r *Resolver) Users(ctx context.Context, p Principal) (Scope, error) {
	if !p.Authenticated() {
		return Nothing(), nil
	}

	switch p.Role {
	case RoleAdmin:
		return Everything(), nil
	case RoleOwner:
		ids, err := r.repo.ManagerIDsForOwner(ctx, p.UserID)
		if err != nil {
			return Nothing(), fmt.Errorf("resolve owner managers: %w", err)
		}
		return Only(append(ids, p.UserID)...), nil
	case RoleManager:
		return Only(p.UserID), nil
	}
	return Nothing(), nil
}
