package alert

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	List(ctx context.Context, scope access.Scope, status string) ([]*Alert, error)
	GetByID(ctx context.Context, id int64) (*Alert, error)
	UpdateStatus(ctx context.Context, id int64, status string, resolvedAt *time.Time) error
}

type Service struct {
	repo   RepositoryAPI
	gate   *access.Gate
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, gate *access.Gate, logger *slog.Logger) *Service {
	return &Service{repo: repo, gate: gate, logger: logger}
}

// List returns alerts of the visible stations, newest first. An unknown status filter is ignored.
func (s *Service) List(ctx context.Context, p access.Principal, status string) ([]*Alert, error) {
	scope, err := s.gate.Resolver().Stations(ctx, p)
	if err != nil {
		return nil, errors.NewInternalError("failed to resolve station scope", err)
	}
	if scope.Empty() {
		return []*Alert{}, nil
	}
	switch status {
	case StatusPending, StatusResolved, StatusIgnored:
	default:
		status = ""
	}
	return s.repo.List(ctx, scope, status)
}

func (s *Service) Get(ctx context.Context, p access.Principal, id int64) (*Alert, error) {
	return s.load(ctx, p, id, access.ActionRead)
}

func (s *Service) load(ctx context.Context, p access.Principal, id int64, action access.Action) (*Alert, error) {
	if !p.Authenticated() {
		return nil, errors.ErrUnauthenticated
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load alert", err)
	}
	if a == nil {
		return nil, errors.ErrAccessDenied
	}
	if err := s.gate.Authorize(ctx, p, action, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) UpdateStatus(ctx context.Context, p access.Principal, id int64, dto UpdateAlertDTO) (*Alert, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	a, err := s.load(ctx, p, id, access.ActionWrite)
	if err != nil {
		return nil, err
	}
	if a.Status == dto.Status {
		return a, nil
	}

	var resolvedAt *time.Time
	if dto.Status == StatusResolved {
		now := time.Now()
		resolvedAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, id, dto.Status, resolvedAt); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			// reopening collides with the pending alert the engine has since opened for the same row
			return nil, errors.NewConflictError("inventory already has a pending alert", errors.ErrCodeValidationFailed)
		}
		s.logger.Error("alert update failed", "alert_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update alert", err)
	}

	s.logger.Info("alert status changed", "alert_id", id, "from", a.Status, "to", dto.Status, "changed_by", p.UserID)
	a.Status = dto.Status
	a.ResolvedAt = resolvedAt
	return a, nil
}
