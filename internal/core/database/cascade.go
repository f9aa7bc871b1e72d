package database

import (
	"context"

	"gorm.io/gorm"
)

// stationChildren lists the tables hanging off a station, leaves first.
var stationChildren = []string{"alerts", "transactions", "pumps", "inventories"}

// DeleteStationTree removes the stations and every row owned by them. PostgreSQL cascades do the same through
// foreign keys; doing it explicitly keeps behaviour identical on stores without them.
func DeleteStationTree(ctx context.Context, db *gorm.DB, stationIDs []int64) error {
	if len(stationIDs) == 0 {
		return nil
	}
	conn := Conn(ctx, db)
	for _, table := range stationChildren {
		if err := conn.Exec("DELETE FROM "+table+" WHERE station_id IN ?", stationIDs).Error; err != nil {
			return err
		}
	}
	return conn.Exec("DELETE FROM stations WHERE id IN ?", stationIDs).Error
}
