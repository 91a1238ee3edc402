package rental

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation represents one booking of a vehicle for a date range.
// It is created by the booking flow on the backend and only ever mutated
// here through status transitions; cancellation is a status, never a delete.
type Reservation struct {
	ID             int64           `json:"id"`
	CarPlate       string          `json:"licensePlate"`
	ClientUsername string          `json:"clientUsername"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Page is one page of a paginated backend result.
type Page[T any] struct {
	Items         []T   `json:"items"`
	PageIndex     int   `json:"pageIndex"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

// Branch is a rental branch as listed on the public branches endpoint.
type Branch struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Phone   string `json:"phone"`
}

// Car is a fleet vehicle summary.
type Car struct {
	ID           int64           `json:"id"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	LicensePlate string          `json:"licensePlate"`
	Year         int             `json:"year"`
	Mileage      int             `json:"mileage"`
	PricePerDay  decimal.Decimal `json:"pricePerDay"`
	Category     string          `json:"category"`
	Available    bool            `json:"available"`
}

// Revenue is one revenue line attributed to a car.
type Revenue struct {
	ID       int64           `json:"id"`
	CarPlate string          `json:"licensePlate"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
}

// Expense is one expense line attributed to a branch.
type Expense struct {
	ID          int64           `json:"id"`
	BranchName  string          `json:"branchName"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}
