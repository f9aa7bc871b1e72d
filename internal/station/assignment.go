package station

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
)

type Candidate struct {
	ID       int64
	Username string
	Role     access.Role
}

type CompanyRef struct {
	ID      int64
	Name    string
	OwnerID int64
}

type AssignmentRepository interface {
	// LockCandidate reads the user row FOR UPDATE so concurrent assignments of one manager serialise.
	LockCandidate(ctx context.Context, userID int64) (*Candidate, error)
	ManagedCompanies(ctx context.Context, managerID, excludingStationID int64) ([]CompanyRef, error)
	GetCompany(ctx context.Context, companyID int64) (*CompanyRef, error)
}

// AssignmentValidator enforces that a manager runs stations of one company at a time.
// It must run inside the transaction that writes the station.
type AssignmentValidator struct {
	repo   AssignmentRepository
	logger *slog.Logger
}

func NewAssignmentValidator(repo AssignmentRepository, logger *slog.Logger) *AssignmentValidator {
	return &AssignmentValidator{repo: repo, logger: logger}
}

// Validate checks candidateID as manager of a station under targetCompanyID. excludingStationID is the station
// being updated, or 0 on create.
func (v *AssignmentValidator) Validate(ctx context.Context, candidateID, targetCompanyID, excludingStationID int64) error {
	candidate, err := v.repo.LockCandidate(ctx, candidateID)
	if err != nil {
		return errors.NewInternalError("failed to load manager candidate", err)
	}
	if candidate == nil {
		return errors.NewValidationFieldError("manager_id", "manager_id does not reference an existing user", errors.ErrCodeInvalidManager)
	}

	target, err := v.repo.GetCompany(ctx, targetCompanyID)
	if err != nil {
		return errors.NewInternalError("failed to load company", err)
	}
	if target == nil {
		return errors.NewValidationFieldError("company_id", "company_id does not reference an existing company", errors.ErrCodeValidationFailed)
	}

	switch candidate.Role {
	case access.RoleManager:
		return v.validateManager(ctx, candidate, target, excludingStationID)
	case access.RoleOwner:
		// owners may stand in as manager of their own stations only
		if target.OwnerID != candidate.ID {
			return errors.NewValidationFieldError("manager_id", "an owner can only manage stations of a company they own", errors.ErrCodeInvalidManager)
		}
		return nil
	default:
		return errors.NewValidationFieldError("manager_id", "manager_id must reference a manager", errors.ErrCodeInvalidManager)
	}
}

func (v *AssignmentValidator) validateManager(ctx context.Context, candidate *Candidate, target *CompanyRef, excludingStationID int64) error {
	current, err := v.repo.ManagedCompanies(ctx, candidate.ID, excludingStationID)
	if err != nil {
		return errors.NewInternalError("failed to load manager assignments", err)
	}

	for _, existing := range current {
		if existing.ID != target.ID {
			v.logger.Warn("manager assignment conflict",
				"manager_id", candidate.ID,
				"existing_company_id", existing.ID,
				"target_company_id", target.ID)
			return errors.NewManagerAssignmentConflict(candidate.Username, existing.Name, target.Name)
		}
	}
	return nil
}
