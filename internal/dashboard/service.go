package dashboard

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/fuel-station-management/internal"
	"github.com/frahmantamala/fuel-station-management/internal/access"
)

const (
	recentLimit   = 5
	defaultWindow = 30 * 24 * time.Hour
	maxWindow     = 366 * 24 * time.Hour
)

type RepositoryAPI interface {
	CountStations(ctx context.Context, scope access.Scope) (int64, error)
	CountPumps(ctx context.Context, scope access.Scope) (PumpCounts, error)
	SalesSince(ctx context.Context, scope access.Scope, since time.Time) (Totals, error)
	CountPendingAlerts(ctx context.Context, scope access.Scope) (int64, error)
	CountLowStock(ctx context.Context, scope access.Scope) (int64, error)
	RecentTransactions(ctx context.Context, scope access.Scope, limit int) ([]RecentTransaction, error)
	SalesByStation(ctx context.Context, scope access.Scope, from, to time.Time) ([]StationSales, error)
}

type Service struct {
	repo     RepositoryAPI
	resolver *access.Resolver
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, resolver *access.Resolver, logger *slog.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, logger: logger, now: time.Now}
}

func (s *Service) scope(ctx context.Context, p access.Principal) (access.Scope, error) {
	if !p.Authenticated() {
		return access.Nothing(), errors.ErrUnauthenticated
	}
	scope, err := s.resolver.Stations(ctx, p)
	if err != nil {
		s.logger.Error("failed to resolve station scope", "error", err, "user_id", p.UserID)
		return access.Nothing(), errors.NewInternalError("failed to resolve station scope", err)
	}
	return scope, nil
}

// Summary aggregates the principal's stations. "Today" starts at midnight UTC.
func (s *Service) Summary(ctx context.Context, p access.Principal) (*Summary, error) {
	scope, err := s.scope(ctx, p)
	if err != nil {
		return nil, err
	}
	out := &Summary{RecentTransactions: []RecentTransaction{}}
	if scope.Empty() {
		return out, nil
	}

	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if out.Stations, err = s.repo.CountStations(ctx, scope); err != nil {
		return nil, s.failed("stations", err)
	}
	pumps, err := s.repo.CountPumps(ctx, scope)
	if err != nil {
		return nil, s.failed("pumps", err)
	}
	out.ActivePumps, out.OfflinePumps = pumps.Active, pumps.Offline

	today, err := s.repo.SalesSince(ctx, scope, midnight)
	if err != nil {
		return nil, s.failed("sales", err)
	}
	out.TodayRevenue, out.TodayLitres = today.Revenue, today.Litres

	if out.PendingAlerts, err = s.repo.CountPendingAlerts(ctx, scope); err != nil {
		return nil, s.failed("alerts", err)
	}
	if out.LowStock, err = s.repo.CountLowStock(ctx, scope); err != nil {
		return nil, s.failed("inventory", err)
	}
	recent, err := s.repo.RecentTransactions(ctx, scope, recentLimit)
	if err != nil {
		return nil, s.failed("recent transactions", err)
	}
	if recent != nil {
		out.RecentTransactions = recent
	}
	return out, nil
}

// Sales reports revenue and litres per station for transactions in [from, to). A zero to means now and a zero
// from means thirty days before to.
func (s *Service) Sales(ctx context.Context, p access.Principal, from, to time.Time) (*SalesReport, error) {
	scope, err := s.scope(ctx, p)
	if err != nil {
		return nil, err
	}

	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-defaultWindow)
	}
	from, to = from.UTC(), to.UTC()
	if !from.Before(to) {
		return nil, errors.NewValidationFieldError("from", "must be before to", errors.ErrCodeValidationFailed)
	}
	if to.Sub(from) > maxWindow {
		return nil, errors.NewValidationFieldError("from", "report window may not exceed one year", errors.ErrCodeValidationFailed)
	}

	report := &SalesReport{From: from, To: to, Stations: []StationSales{}}
	if scope.Empty() {
		return report, nil
	}

	rows, err := s.repo.SalesByStation(ctx, scope, from, to)
	if err != nil {
		return nil, s.failed("sales report", err)
	}
	for _, row := range rows {
		report.Revenue += row.Revenue
		report.Litres += row.Litres
		report.Stations = append(report.Stations, row)
	}
	return report, nil
}

func (s *Service) failed(what string, err error) error {
	s.logger.Error("dashboard query failed", "query", what, "error", err)
	return errors.NewInternalError("failed to load "+what, err)
}
