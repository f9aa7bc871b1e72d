package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/frahmantamala/fuel-station-management/internal/auth"
	alertDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/alert"
	companyDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/company"
	inventoryDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/inventory"
	pumpDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/pump"
	settingDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/setting"
	stationDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/station"
	transactionDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/transaction"
	userDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/user"
	"github.com/frahmantamala/fuel-station-management/internal/core/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := database.OpenGorm(db.DB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		hasher, err := auth.NewPasswordHasher(cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to create hasher: %v", err)
		}

		if err := seed(context.Background(), gormDB, hasher, clearData, os.Stdout); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

const seedPassword = "password123"

type seedUser struct {
	Username string
	FullName string
	Email    string
	Role     string
}

var seedUsers = []seedUser{
	{"admin", "System Admin", "admin@fuelstation.local", "admin"},
	{"owner", "Ama Owusu", "owner@fuelstation.local", "owner"},
	{"manager", "Kofi Mensah", "manager@fuelstation.local", "manager"},
}

var seedPrices = map[string]float64{
	"petrol": 1350,
	"diesel": 1200,
}

// seed is idempotent: rows are matched on their natural keys and only missing ones are inserted.
func seed(ctx context.Context, db *gorm.DB, hasher *auth.PasswordHasher, clear bool, out io.Writer) error {
	db = db.WithContext(ctx)

	if clear {
		if err := clearAll(db); err != nil {
			return err
		}
		fmt.Fprintln(out, "Cleared existing data")
	}

	hash, err := hasher.Hash(seedPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	users := map[string]*userDatamodel.User{}
	for _, u := range seedUsers {
		row := userDatamodel.User{
			Username:     u.Username,
			FullName:     u.FullName,
			Email:        u.Email,
			PasswordHash: hash,
			Role:         u.Role,
		}
		if err := db.Where(userDatamodel.User{Username: u.Username}).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		users[u.Role] = &row
		fmt.Fprintf(out, "Seeded %s user: %s\n", u.Role, u.Email)
	}

	company := companyDatamodel.Company{Name: "Prime Fuels", OwnerID: users["owner"].ID}
	if err := db.Where(companyDatamodel.Company{Name: company.Name}).FirstOrCreate(&company).Error; err != nil {
		return fmt.Errorf("seed company: %w", err)
	}

	managerID := users["manager"].ID
	stations := []stationDatamodel.Station{
		{CompanyID: company.ID, ManagerID: &managerID, Name: "Prime Central", Location: "12 Independence Ave", Status: "open"},
		{CompanyID: company.ID, Name: "Prime Airport", Location: "Airport Road", Status: "open"},
	}

	for i := range stations {
		st := &stations[i]
		if err := db.Where(stationDatamodel.Station{Name: st.Name}).FirstOrCreate(st).Error; err != nil {
			return fmt.Errorf("seed station %s: %w", st.Name, err)
		}

		for n, fuel := range []string{"petrol", "diesel", "diesel"} {
			p := pumpDatamodel.Pump{StationID: st.ID, PumpNumber: n + 1, FuelType: fuel, Status: pumpDatamodel.StatusActive}
			if err := db.Where(pumpDatamodel.Pump{StationID: st.ID, PumpNumber: n + 1}).FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("seed pump %d at %s: %w", n+1, st.Name, err)
			}
		}

		for fuel, price := range seedPrices {
			inv := inventoryDatamodel.Inventory{
				StationID:    st.ID,
				FuelType:     fuel,
				Quantity:     6000,
				Capacity:     10000,
				MinThreshold: 1000,
				UnitPrice:    price,
			}
			if err := db.Where(inventoryDatamodel.Inventory{StationID: st.ID, FuelType: fuel}).FirstOrCreate(&inv).Error; err != nil {
				return fmt.Errorf("seed %s inventory at %s: %w", fuel, st.Name, err)
			}
		}
		fmt.Fprintf(out, "Seeded station: %s\n", st.Name)
	}

	for fuel, price := range seedPrices {
		s := settingDatamodel.SystemSetting{FuelType: fuel, PricePerLiter: price}
		if err := db.Where(settingDatamodel.SystemSetting{FuelType: fuel}).FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("seed %s price: %w", fuel, err)
		}
	}

	fmt.Fprintf(out, "Seed complete. All users log in with password %q\n", seedPassword)
	return nil
}

// clearAll deletes children before parents so it works with or without foreign key cascades.
func clearAll(db *gorm.DB) error {
	models := []interface{}{
		&alertDatamodel.Alert{},
		&transactionDatamodel.Transaction{},
		&inventoryDatamodel.Inventory{},
		&pumpDatamodel.Pump{},
		&stationDatamodel.Station{},
		&companyDatamodel.Company{},
		&userDatamodel.PasswordResetToken{},
		&settingDatamodel.SystemSetting{},
		&userDatamodel.User{},
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range models {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		return nil
	})
}
