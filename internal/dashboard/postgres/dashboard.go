package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/dashboard"
	"github.com/jmoiron/sqlx"
)

// DashboardRepository runs read-only aggregates with sqlx. Queries are written with '?' and rebound
// for the driver, so the same SQL serves PostgreSQL and the SQLite test store.
type DashboardRepository struct {
	db *sqlx.DB
}

func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// scoped appends the scope predicate on column to query and expands the id list.
func (r *DashboardRepository) scoped(query, column string, scope access.Scope, args ...interface{}) (string, []interface{}, error) {
	if scope.All {
		return r.db.Rebind(fmt.Sprintf(query, "1 = 1")), args, nil
	}
	q, expanded, err := sqlx.In(fmt.Sprintf(query, column+" IN (?)"), append(args, scope.IDs)...)
	if err != nil {
		return "", nil, err
	}
	return r.db.Rebind(q), expanded, nil
}

func (r *DashboardRepository) CountStations(ctx context.Context, scope access.Scope) (int64, error) {
	q, args, err := r.scoped(`SELECT COUNT(*) FROM stations s WHERE %s`, "s.id", scope)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, fmt.Errorf("count stations: %w", err)
	}
	return n, nil
}

func (r *DashboardRepository) CountPumps(ctx context.Context, scope access.Scope) (dashboard.PumpCounts, error) {
	q, args, err := r.scoped(`
SELECT
  COALESCE(SUM(CASE WHEN p.status = 'active' THEN 1 ELSE 0 END), 0) AS active,
  COALESCE(SUM(CASE WHEN p.status = 'offline' THEN 1 ELSE 0 END), 0) AS offline
FROM pumps p
WHERE %s`, "p.station_id", scope)
	if err != nil {
		return dashboard.PumpCounts{}, err
	}
	var counts dashboard.PumpCounts
	if err := r.db.GetContext(ctx, &counts, q, args...); err != nil {
		return dashboard.PumpCounts{}, fmt.Errorf("count pumps: %w", err)
	}
	return counts, nil
}

func (r *DashboardRepository) SalesSince(ctx context.Context, scope access.Scope, since time.Time) (dashboard.Totals, error) {
	q, args, err := r.scoped(`
SELECT
  COALESCE(SUM(t.total_price), 0) AS revenue,
  COALESCE(SUM(t.quantity), 0) AS litres
FROM transactions t
WHERE t.transaction_time >= ? AND %s`, "t.station_id", scope, since)
	if err != nil {
		return dashboard.Totals{}, err
	}
	var totals dashboard.Totals
	if err := r.db.GetContext(ctx, &totals, q, args...); err != nil {
		return dashboard.Totals{}, fmt.Errorf("sum sales: %w", err)
	}
	return totals, nil
}

func (r *DashboardRepository) CountPendingAlerts(ctx context.Context, scope access.Scope) (int64, error) {
	q, args, err := r.scoped(`SELECT COUNT(*) FROM alerts a WHERE a.status = 'pending' AND %s`, "a.station_id", scope)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, fmt.Errorf("count pending alerts: %w", err)
	}
	return n, nil
}

func (r *DashboardRepository) CountLowStock(ctx context.Context, scope access.Scope) (int64, error) {
	q, args, err := r.scoped(`SELECT COUNT(*) FROM inventories i WHERE i.quantity <= i.min_threshold AND %s`, "i.station_id", scope)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}

func (r *DashboardRepository) RecentTransactions(ctx context.Context, scope access.Scope, limit int) ([]dashboard.RecentTransaction, error) {
	q, args, err := r.scoped(`
SELECT t.id, t.station_id, s.name AS station_name, t.fuel_type, t.quantity, t.total_price,
       t.payment_method, t.transaction_time
FROM transactions t
JOIN stations s ON s.id = t.station_id
WHERE %s
ORDER BY t.transaction_time DESC, t.id DESC
LIMIT `+strconv.Itoa(limit), "t.station_id", scope)
	if err != nil {
		return nil, err
	}
	var rows []dashboard.RecentTransaction
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	return rows, nil
}

func (r *DashboardRepository) SalesByStation(ctx context.Context, scope access.Scope, from, to time.Time) ([]dashboard.StationSales, error) {
	q, args, err := r.scoped(`
SELECT s.id AS station_id, s.name AS station_name,
       COUNT(t.id) AS transactions,
       COALESCE(SUM(t.total_price), 0) AS revenue,
       COALESCE(SUM(t.quantity), 0) AS litres
FROM stations s
JOIN transactions t ON t.station_id = s.id
WHERE t.transaction_time >= ? AND t.transaction_time < ? AND %s
GROUP BY s.id, s.name
ORDER BY revenue DESC, s.name`, "s.id", scope, from, to)
	if err != nil {
		return nil, err
	}
	var rows []dashboard.StationSales
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("sales by station: %w", err)
	}
	return rows, nil
}
