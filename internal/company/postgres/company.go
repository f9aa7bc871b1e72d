package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	"github.com/frahmantamala/fuel-station-management/internal/company"
	companyDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/company"
	stationDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/station"
	userDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.RepositoryAPI {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) List(ctx context.Context, scope access.Scope) ([]*company.Company, error) {
	var rows []*companyDatamodel.Company
	err := database.Conn(ctx, r.db).
		Scopes(database.InScope("id", scope)).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	companies := make([]*company.Company, 0, len(rows))
	for _, row := range rows {
		companies = append(companies, company.FromDataModel(row))
	}
	return companies, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*company.Company, error) {
	var row companyDatamodel.Company
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return company.FromDataModel(&row), nil
}

func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) error {
	row := company.ToDataModel(c)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	c.ID = row.ID
	c.CreatedAt = row.CreatedAt
	c.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) error {
	return database.Conn(ctx, r.db).
		Model(&companyDatamodel.Company{ID: c.ID}).
		Updates(map[string]interface{}{"name": c.Name, "owner_id": c.OwnerID}).Error
}

func (r *CompanyRepository) Delete(ctx context.Context, id int64) error {
	conn := database.Conn(ctx, r.db)

	var stationIDs []int64
	if err := conn.Model(&stationDatamodel.Station{}).Where("company_id = ?", id).Pluck("id", &stationIDs).Error; err != nil {
		return err
	}
	if err := database.DeleteStationTree(ctx, r.db, stationIDs); err != nil {
		return err
	}
	return conn.Delete(&companyDatamodel.Company{}, id).Error
}

func (r *CompanyRepository) UserRole(ctx context.Context, userID int64) (string, error) {
	var roles []string
	err := database.Conn(ctx, r.db).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Limit(1).
		Pluck("role", &roles).Error
	if err != nil || len(roles) == 0 {
		return "", err
	}
	return roles[0], nil
}
