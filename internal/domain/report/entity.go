package report

import "time"

const (
	StatusRequested = "requested"
	StatusGenerated = "generated"
	StatusSent      = "sent"
)

// AnnualReport is unique per (customer, year); re-requesting the same year
// overwrites the prior request.
type AnnualReport struct {
	ID          int64     `json:"id" db:"id"`
	CustomerID  int64     `json:"customer_id" db:"customer_id"`
	Year        int       `json:"year" db:"year"`
	Status      string    `json:"status" db:"status"`
	RequestedAt time.Time `json:"requested_at" db:"requested_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
