package postgres

import (
	"context"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	companyDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/company"
	stationDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/station"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"gorm.io/gorm"
)

type ScopeRepository struct {
	db *gorm.DB
}

func NewScopeRepository(db *gorm.DB) access.Repository {
	return &ScopeRepository{db: db}
}

func (r *ScopeRepository) StationIDsOwnedBy(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	err := database.Conn(ctx, r.db).
		Model(&stationDatamodel.Station{}).
		Joins("JOIN companies ON companies.id = stations.company_id").
		Where("companies.owner_id = ?", ownerID).
		Order("stations.id").
		Pluck("stations.id", &ids).Error
	return ids, err
}

func (r *ScopeRepository) StationIDsManagedBy(ctx context.Context, managerID int64) ([]int64, error) {
	var ids []int64
	err := database.Conn(ctx, r.db).
		Model(&stationDatamodel.Station{}).
		Where("manager_id = ?", managerID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ScopeRepository) CompanyIDsOwnedBy(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	err := database.Conn(ctx, r.db).
		Model(&companyDatamodel.Company{}).
		Where("owner_id = ?", ownerID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ScopeRepository) ManagerIDsForOwner(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	err := database.Conn(ctx, r.db).
		Model(&stationDatamodel.Station{}).
		Joins("JOIN companies ON companies.id = stations.company_id").
		Where("companies.owner_id = ? AND stations.manager_id IS NOT NULL", ownerID).
		Distinct().
		Pluck("stations.manager_id", &ids).Error
	return ids, err
}
