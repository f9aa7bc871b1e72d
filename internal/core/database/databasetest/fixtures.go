package databasetest

import (
	"fmt"

	companyDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/company"
	inventoryDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/inventory"
	pumpDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/pump"
	settingDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/setting"
	stationDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/station"
	userDatamodel "github.com/frahmantamala/fuel-station-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// Fixtures inserts rows for suites that only care about the shape of the ownership tree.
// Every helper panics on failure; a broken fixture is a broken test.
type Fixtures struct {
	DB *gorm.DB
}

func NewFixtures(db *gorm.DB) *Fixtures {
	return &Fixtures{DB: db}
}

func (f *Fixtures) must(err error) {
	if err != nil {
		panic(fmt.Sprintf("fixture: %v", err))
	}
}

func (f *Fixtures) User(username, role string) *userDatamodel.User {
	u := &userDatamodel.User{
		Username:     username,
		FullName:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	f.must(f.DB.Create(u).Error)
	return u
}

func (f *Fixtures) Company(name string, ownerID int64) *companyDatamodel.Company {
	c := &companyDatamodel.Company{Name: name, OwnerID: ownerID}
	f.must(f.DB.Create(c).Error)
	return c
}

func (f *Fixtures) Station(name string, companyID int64, managerID *int64) *stationDatamodel.Station {
	s := &stationDatamodel.Station{Name: name, CompanyID: companyID, ManagerID: managerID, Location: name + " Road", Status: "open"}
	f.must(f.DB.Create(s).Error)
	return s
}

func (f *Fixtures) Pump(stationID int64, number int, fuelType string) *pumpDatamodel.Pump {
	p := &pumpDatamodel.Pump{StationID: stationID, PumpNumber: number, FuelType: fuelType, Status: pumpDatamodel.StatusActive}
	f.must(f.DB.Create(p).Error)
	return p
}

func (f *Fixtures) Inventory(stationID int64, fuelType string, quantity, capacity, threshold, price float64) *inventoryDatamodel.Inventory {
	inv := &inventoryDatamodel.Inventory{
		StationID:    stationID,
		FuelType:     fuelType,
		Quantity:     quantity,
		Capacity:     capacity,
		MinThreshold: threshold,
		UnitPrice:    price,
	}
	f.must(f.DB.Create(inv).Error)
	return inv
}

func (f *Fixtures) Price(fuelType string, price float64) *settingDatamodel.SystemSetting {
	s := &settingDatamodel.SystemSetting{FuelType: fuelType, PricePerLiter: price}
	f.must(f.DB.Create(s).Error)
	return s
}

func Ptr[T any](v T) *T {
	return &v
}
