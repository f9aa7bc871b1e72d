package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/fuel-station-management/internal/notification"
	"github.com/jmoiron/sqlx"
)

type RecipientRepository struct {
	db *sqlx.DB
}

func NewRecipientRepository(db *sqlx.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

// StationRecipients returns the owner of the station's company and, when assigned, its manager.
func (r *RecipientRepository) StationRecipients(ctx context.Context, stationID int64) ([]notification.Recipient, error) {
	query := r.db.Rebind(`
SELECT u.full_name AS name, u.email
FROM stations s
JOIN companies c ON c.id = s.company_id
JOIN users u ON u.id = c.owner_id
WHERE s.id = ?
UNION
SELECT u.full_name AS name, u.email
FROM stations s
JOIN users u ON u.id = s.manager_id
WHERE s.id = ?`)

	var out []notification.Recipient
	if err := r.db.SelectContext(ctx, &out, query, stationID, stationID); err != nil {
		return nil, fmt.Errorf("station recipients: %w", err)
	}
	return out, nil
}
