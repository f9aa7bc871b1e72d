// Package databasetest opens throwaway SQLite databases carrying the full schema for repository and service suites.
package databasetest

import (
	"fmt"

	alertDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/alert"
	companyDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/company"
	inventoryDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/inventory"
	pumpDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/pump"
	settingDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/setting"
	stationDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/station"
	transactionDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/transaction"
	userDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/user"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Models() []interface{} {
	return []interface{}{
		&userDatamodel.User{},
		&userDatamodel.PasswordResetToken{},
		&companyDatamodel.Company{},
		&stationDatamodel.Station{},
		&pumpDatamodel.Pump{},
		&inventoryDatamodel.Inventory{},
		&transactionDatamodel.Transaction{},
		&alertDatamodel.Alert{},
		&settingDatamodel.SystemSetting{},
	}
}

// expressionIndexes mirrors the migration indexes that gorm tags cannot declare.
var expressionIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_stations_name_lower ON stations (LOWER(name))",
}

// Open returns an isolated in-memory database. A single connection keeps every statement on the same schema.
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	for _, stmt := range expressionIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, err
		}
	}
	return db, nil
}
