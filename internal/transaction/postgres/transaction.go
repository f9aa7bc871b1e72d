package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	transactionDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/transaction"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/transaction"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

var _ transaction.RepositoryAPI = (*TransactionRepository)(nil)

func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	row := transaction.ToDataModel(t)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	t.ID = row.ID
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*transaction.Transaction, error) {
	var row transactionDatamodel.Transaction
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return transaction.FromDataModel(&row), nil
}

func (r *TransactionRepository) List(ctx context.Context, scope access.Scope, filter transaction.ListFilter) ([]*transaction.Transaction, int64, error) {
	base := func() *gorm.DB {
		return database.Conn(ctx, r.db).
			Model(&transactionDatamodel.Transaction{}).
			Scopes(database.InScope("station_id", scope), matching(filter))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*transactionDatamodel.Transaction
	err := base().
		Order("transaction_time DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]*transaction.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, transaction.FromDataModel(row))
	}
	return out, total, nil
}

func matching(filter transaction.ListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			like := "%" + strings.ToLower(filter.Search) + "%"
			db = db.Where(
				"LOWER(fuel_type) LIKE ? OR LOWER(payment_method) LIKE ? OR LOWER(COALESCE(car_plate, '')) LIKE ? OR CAST(id AS TEXT) LIKE ?",
				like, like, like, like)
		}
		if filter.Since != nil {
			db = db.Where("transaction_time >= ?", *filter.Since)
		}
		if filter.PaymentMethod != "" {
			db = db.Where("payment_method = ?", filter.PaymentMethod)
		}
		if filter.StationID > 0 {
			db = db.Where("station_id = ?", filter.StationID)
		}
		return db
	}
}
