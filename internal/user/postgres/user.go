package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/fuel-station-management/internal/access"
	companyDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/company"
	stationDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/station"
	userDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/frahmantamala/fuel-station-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context, scope access.Scope, role string) ([]*user.User, error) {
	query := database.Conn(ctx, r.db).Scopes(database.InScope("id", scope))
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var rows []*userDatamodel.User
	if err := query.Order("username ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	users := make([]*user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, user.FromDataModel(row))
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var row userDatamodel.User
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	row := user.ToDataModel(u)
	if err := database.Conn(ctx, r.db).Create(row).Error; err != nil {
		return err
	}
	u.ID = row.ID
	u.CreatedAt = row.CreatedAt
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	return database.Conn(ctx, r.db).
		Model(&userDatamodel.User{ID: u.ID}).
		Updates(map[string]interface{}{
			"username":      u.Username,
			"full_name":     u.FullName,
			"email":         u.Email,
			"password_hash": u.PasswordHash,
			"role":          u.Role.String(),
		}).Error
}

// Delete releases every station the user managed before removing the row.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	conn := database.Conn(ctx, r.db)
	if err := conn.Model(&stationDatamodel.Station{}).
		Where("manager_id = ?", id).
		Update("manager_id", nil).Error; err != nil {
		return err
	}
	if err := conn.Where("user_id = ?", id).Delete(&userDatamodel.PasswordResetToken{}).Error; err != nil {
		return err
	}
	return conn.Delete(&userDatamodel.User{}, id).Error
}

func (r *UserRepository) OwnsCompanies(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).
		Model(&companyDatamodel.Company{}).
		Where("owner_id = ?", id).
		Count(&count).Error
	return count > 0, err
}
