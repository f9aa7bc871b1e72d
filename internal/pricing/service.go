package pricing

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
)

type RepositoryAPI interface {
	List(ctx context.Context) ([]*Setting, error)
	Get(ctx context.Context, fuelType string) (*Setting, error)
	Upsert(ctx context.Context, fuelType string, price float64) error
	// UpdateInventoryPrices sets unit_price on every inventory of fuelType, or only those of companyID when it
	// is non-zero, and returns the number of rows touched.
	UpdateInventoryPrices(ctx context.Context, fuelType string, price float64, companyID int64) (int64, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   RepositoryAPI
	gate   *access.Gate
	tx     Transactor
	policy string
	logger *slog.Logger
}

// NewService takes the missing-price policy by name: errors.MissingPriceReject or errors.MissingPriceZero.
func NewService(repo RepositoryAPI, gate *access.Gate, tx Transactor, missingPricePolicy string, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		gate:   gate,
		tx:     tx,
		policy: missingPricePolicy,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, p access.Principal) ([]*Setting, error) {
	if !p.Authenticated() {
		return nil, errors.ErrUnauthenticated
	}
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError("failed to list prices", err)
	}
	return settings, nil
}

// ApplyPrice writes the system price of fuelType and fans it out to inventories in one transaction.
// Admins reach every station; owners must name a company they own and only its stations change.
// The setting row itself is shared, so the last writer wins.
func (s *Service) ApplyPrice(ctx context.Context, p access.Principal, fuelType string, newPrice float64, companyID *int64) (int64, error) {
	if !p.Authenticated() {
		return 0, errors.ErrUnauthenticated
	}
	if !p.IsAdmin() && !p.IsOwner() {
		return 0, errors.ErrRoleNotAllowed
	}

	fuelType = strings.TrimSpace(fuelType)
	if fuelType == "" {
		return 0, errors.NewValidationFieldError("fuel_type", "fuel_type is required", errors.ErrCodeInvalidFuelType)
	}
	dto := ApplyPriceDTO{PricePerLiter: newPrice, CompanyID: companyID}
	if err := dto.Validate(); err != nil {
		return 0, err
	}

	var target int64
	if p.IsOwner() {
		if companyID == nil {
			return 0, errors.NewValidationFieldError("company_id", "company_id is required for owners", errors.ErrCodeValidationFailed)
		}
		scope, err := s.gate.Resolver().Companies(ctx, p)
		if err != nil {
			return 0, errors.NewInternalError("failed to resolve company scope", err)
		}
		if !scope.Contains(*companyID) {
			s.logger.Warn("price fan-out denied", "user_id", p.UserID, "company_id", *companyID)
			return 0, errors.ErrAccessDenied
		}
		target = *companyID
	}

	var affected int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Upsert(ctx, fuelType, newPrice); err != nil {
			return err
		}
		var err error
		affected, err = s.repo.UpdateInventoryPrices(ctx, fuelType, newPrice, target)
		return err
	})
	if err != nil {
		s.logger.Error("price fan-out failed", "fuel_type", fuelType, "error", err)
		return 0, errors.NewInternalError("failed to apply price", err)
	}

	s.logger.Info("price applied",
		"fuel_type", fuelType,
		"price_per_liter", newPrice,
		"company_id", target,
		"affected_inventories", affected,
		"applied_by", p.UserID)
	return affected, nil
}

// CurrentPrice is the canonical price of fuelType at posting time. A missing price follows the configured
// policy: reject fails with ErrPriceNotConfigured, zero logs and returns 0.
func (s *Service) CurrentPrice(ctx context.Context, fuelType string) (float64, error) {
	setting, err := s.repo.Get(ctx, fuelType)
	if err != nil {
		return 0, errors.NewInternalError("failed to load price", err)
	}
	if setting != nil {
		return setting.PricePerLiter, nil
	}

	if s.policy == errors.MissingPriceZero {
		s.logger.Warn("no price configured, recording sale at zero", "fuel_type", fuelType)
		return 0, nil
	}
	s.logger.Warn("no price configured, rejecting sale", "fuel_type", fuelType)
	return 0, errors.ErrPriceNotConfigured
}
