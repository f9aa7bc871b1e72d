package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/fuel-station-management/internal/auth"
	userDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := database.Conn(ctx, r.db).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := database.Conn(ctx, r.db).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return database.Conn(ctx, r.db).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_login", at).Error
}

func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return database.Conn(ctx, r.db).
		Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).Error
}

func (r *Repository) InvalidateResetTokens(ctx context.Context, userID int64) error {
	return database.Conn(ctx, r.db).
		Model(&userDatamodel.PasswordResetToken{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error
}

func (r *Repository) CreateResetToken(ctx context.Context, token *userDatamodel.PasswordResetToken) error {
	return database.Conn(ctx, r.db).Create(token).Error
}

func (r *Repository) GetResetTokenForUpdate(ctx context.Context, token string) (*userDatamodel.PasswordResetToken, error) {
	var t userDatamodel.PasswordResetToken
	err := database.Conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token = ?", token).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) MarkResetTokenUsed(ctx context.Context, id int64) error {
	return database.Conn(ctx, r.db).
		Model(&userDatamodel.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used", true).Error
}
