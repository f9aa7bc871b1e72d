package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	companyDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/company"
	stationDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/station"
	userDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/station"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StationRepository struct {
	db *gorm.DB
}

func NewStationRepository(db *gorm.DB) *StationRepository {
	return &StationRepository{db: db}
}

var (
	_ station.RepositoryAPI        = (*StationRepository)(nil)
	_ station.AssignmentRepository = (*StationRepository)(nil)
)

func (r *StationRepository) List(ctx context.Context, scope access.Scope, companyID int64) ([]*station.Station, error) {
	query := database.Conn(ctx, r.db).Scopes(database.InScope("id", scope))
	if companyID > 0 {
		query = query.Where("company_id = ?", companyID)
	}

	var rows []*stationDatamodel.Station
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	stations := make([]*station.Station, 0, len(rows))
	for _, row := range rows {
		stations = append(stations, station.FromDataModel(row))
	}
	return stations, nil
}

func (r *StationRepository) GetByID(ctx context.Context, id int64) (*station.Station, error) {
	var row stationDatamodel.Station
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return station.FromDataModel(&row), nil
}

// NameTaken compares case-insensitively, matching the unique index on LOWER(name).
func (r *StationRepository) NameTaken(ctx context.Context, name string, excludingID int64) (bool, error) {
	var count int64
	query := database.Conn(ctx, r.db).
		Model(&stationDatamodel.Station{}).
		Where("LOWER(name) = ?", strings.ToLower(name))
	if excludingID > 0 {
		query = query.Where("id <> ?", excludingID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *StationRepository) Create(ctx context.Context, s *station.Station) error {
	row := station.ToDataModel(s)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	s.ID = row.ID
	s.CreatedAt = row.CreatedAt
	s.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *StationRepository) Update(ctx context.Context, s *station.Station) error {
	return database.Conn(ctx, r.db).
		Model(&stationDatamodel.Station{ID: s.ID}).
		Updates(map[string]interface{}{
			"company_id": s.CompanyID,
			"manager_id": s.ManagerID,
			"name":       s.Name,
			"location":   s.Location,
			"status":     s.Status,
		}).Error
}

func (r *StationRepository) Delete(ctx context.Context, id int64) error {
	return database.DeleteStationTree(ctx, r.db, []int64{id})
}

func (r *StationRepository) LockCandidate(ctx context.Context, userID int64) (*station.Candidate, error) {
	var row userDatamodel.User
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &station.Candidate{ID: row.ID, Username: row.Username, Role: access.Role(row.Role)}, nil
}

func (r *StationRepository) ManagedCompanies(ctx context.Context, managerID, excludingStationID int64) ([]station.CompanyRef, error) {
	query := database.Conn(ctx, r.db).
		Model(&companyDatamodel.Company{}).
		Select("DISTINCT companies.id, companies.name, companies.owner_id").
		Joins("JOIN stations ON stations.company_id = companies.id").
		Where("stations.manager_id = ?", managerID)
	if excludingStationID > 0 {
		query = query.Where("stations.id <> ?", excludingStationID)
	}

	var refs []station.CompanyRef
	err := query.Order("companies.id").Scan(&refs).Error
	return refs, err
}

func (r *StationRepository) GetCompany(ctx context.Context, companyID int64) (*station.CompanyRef, error) {
	var row companyDatamodel.Company
	err := database.Conn(ctx, r.db).Where("id = ?", companyID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &station.CompanyRef{ID: row.ID, Name: row.Name, OwnerID: row.OwnerID}, nil
}
