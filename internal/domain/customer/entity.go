package customer

import (
	"database/sql"
	"time"
)

// Customer is identified by its phone number; at most one row per phone.
// Rows are never hard-deleted, only deactivated via IsActive.
type Customer struct {
	ID          int64          `json:"id" db:"id"`
	PhoneNumber string         `json:"phone_number" db:"phone_number"`
	Name        sql.NullString `json:"name,omitempty" db:"name"`
	Email       sql.NullString `json:"email,omitempty" db:"email"`

	// Business profile
	BusinessName sql.NullString `json:"business_name,omitempty" db:"business_name"`
	TzID         sql.NullString `json:"tz_id,omitempty" db:"tz_id"`
	OwnerAge     sql.NullInt64  `json:"owner_age,omitempty" db:"owner_age"`
	Gender       sql.NullString `json:"gender,omitempty" db:"gender"`

	// Subscription window. Stored as text; two historical date formats
	// exist in the data, see SubscriptionActive.
	SubscriptionStartDate sql.NullString `json:"subscription_start_date,omitempty" db:"subscription_start_date"`
	SubscriptionEndDate   sql.NullString `json:"subscription_end_date,omitempty" db:"subscription_end_date"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerDetails holds the family/workplace data collected by the details
// wizard. 1:1 with Customer, created empty at registration.
type CustomerDetails struct {
	ID         int64 `json:"id" db:"id"`
	CustomerID int64 `json:"customer_id" db:"customer_id"`

	NumChildren        sql.NullInt64  `json:"num_children,omitempty" db:"num_children"`
	ChildrenBirthYears sql.NullString `json:"children_birth_years,omitempty" db:"children_birth_years"` // JSON array
	Spouse1Workplaces  sql.NullInt64  `json:"spouse1_workplaces,omitempty" db:"spouse1_workplaces"`
	Spouse2Workplaces  sql.NullInt64  `json:"spouse2_workplaces,omitempty" db:"spouse2_workplaces"`
	Notes              sql.NullString `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Contact is a remembered receipt recipient, unique per (customer, phone).
type Contact struct {
	ID          int64  `json:"id" db:"id"`
	CustomerID  int64  `json:"customer_id" db:"customer_id"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`

	Name         sql.NullString `json:"name,omitempty" db:"name"`
	BusinessName sql.NullString `json:"business_name,omitempty" db:"business_name"`
	Email        sql.NullString `json:"email,omitempty" db:"email"`
	TzID         sql.NullString `json:"tz_id,omitempty" db:"tz_id"`
	Notes        sql.NullString `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Accepted subscription end date layouts. Old rows carry DD/MM/YYYY.
var subscriptionDateLayouts = []string{"2006-01-02", "02/01/2006"}

// SubscriptionActive reports whether the subscription end date is today or
// later. A missing or unparsable date means inactive, never an error.
func (c *Customer) SubscriptionActive(now time.Time) bool {
	if !c.SubscriptionEndDate.Valid || c.SubscriptionEndDate.String == "" {
		return false
	}
	for _, layout := range subscriptionDateLayouts {
		end, err := time.Parse(layout, c.SubscriptionEndDate.String)
		if err != nil {
			continue
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return !end.Before(today)
	}
	return false
}

// ProfileComplete reports whether every wizard field has been collected.
// OwnerAge zero is a present value; NULL is not.
func (c *Customer) ProfileComplete(details *CustomerDetails) bool {
	if !c.TzID.Valid || c.TzID.String == "" {
		return false
	}
	if !c.OwnerAge.Valid {
		return false
	}
	if !c.Gender.Valid || c.Gender.String == "" {
		return false
	}
	return details != nil && details.NumChildren.Valid
}
