package dashboard

import "time"

// Summary is the dashboard headline for everything inside a principal's station scope.
type Summary struct {
	Stations           int64               `json:"stations"`
	ActivePumps        int64               `json:"active_pumps"`
	OfflinePumps       int64               `json:"offline_pumps"`
	TodayRevenue       float64             `json:"today_revenue"`
	TodayLitres        float64             `json:"today_litres"`
	PendingAlerts      int64               `json:"pending_alerts"`
	LowStock           int64               `json:"low_stock"`
	RecentTransactions []RecentTransaction `json:"recent_transactions"`
}

type PumpCounts struct {
	Active  int64 `db:"active"`
	Offline int64 `db:"offline"`
}

type Totals struct {
	Revenue float64 `db:"revenue"`
	Litres  float64 `db:"litres"`
}

type RecentTransaction struct {
	ID              int64     `db:"id" json:"id"`
	StationID       int64     `db:"station_id" json:"station_id"`
	StationName     string    `db:"station_name" json:"station_name"`
	FuelType        string    `db:"fuel_type" json:"fuel_type"`
	Quantity        float64   `db:"quantity" json:"quantity"`
	TotalPrice      float64   `db:"total_price" json:"total_price"`
	PaymentMethod   string    `db:"payment_method" json:"payment_method"`
	TransactionTime time.Time `db:"transaction_time" json:"transaction_time"`
}

type StationSales struct {
	StationID    int64   `db:"station_id" json:"station_id"`
	StationName  string  `db:"station_name" json:"station_name"`
	Transactions int64   `db:"transactions" json:"transactions"`
	Revenue      float64 `db:"revenue" json:"revenue"`
	Litres       float64 `db:"litres" json:"litres"`
}

type SalesReport struct {
	From     time.Time      `json:"from"`
	To       time.Time      `json:"to"`
	Revenue  float64        `json:"revenue"`
	Litres   float64        `json:"litres"`
	Stations []StationSales `json:"stations"`
}
