package receipt

import (
	"database/sql"
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Receipt records one issuance attempt. The row is created in pending state
// before the provider is called and finalized afterwards; failed rows are
// kept for audit.
type Receipt struct {
	ID         int64          `json:"id" db:"id"`
	CustomerID int64          `json:"customer_id" db:"customer_id"`
	CallID     sql.NullString `json:"call_id,omitempty" db:"call_id"`
	ContactID  sql.NullInt64  `json:"contact_id,omitempty" db:"contact_id"`

	Amount      int64  `json:"amount" db:"amount"`
	Description string `json:"description" db:"description"`

	// RequestPayload is the serialized provider request, captured before
	// the provider call so failed attempts stay reproducible.
	RequestPayload string `json:"request_payload" db:"request_payload"`

	ProviderDocID    sql.NullString `json:"provider_doc_id,omitempty" db:"provider_doc_id"`
	ProviderDocNum   sql.NullString `json:"provider_doc_num,omitempty" db:"provider_doc_num"`
	ProviderResponse sql.NullString `json:"provider_response,omitempty" db:"provider_response"`

	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
