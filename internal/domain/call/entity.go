package call

import (
	"database/sql"
	"time"
)

// Call is keyed by the external PBX call identifier. The Data bag collects
// every value entered during the call and is merged, never replaced, across
// repeated writes; the metadata columns reflect the most recent hit.
type Call struct {
	ID     int64  `json:"id" db:"id"`
	CallID string `json:"call_id" db:"call_id"`

	PhoneNumber sql.NullString `json:"phone_number,omitempty" db:"phone_number"`
	CustomerID  sql.NullInt64  `json:"customer_id,omitempty" db:"customer_id"`

	// PBX line metadata
	Num           sql.NullString `json:"num,omitempty" db:"num"`
	DID           sql.NullString `json:"did,omitempty" db:"did"`
	ExtensionID   sql.NullString `json:"extension_id,omitempty" db:"extension_id"`
	ExtensionPath sql.NullString `json:"extension_path,omitempty" db:"extension_path"`
	CallType      sql.NullString `json:"call_type,omitempty" db:"call_type"`
	CallStatus    sql.NullString `json:"call_status,omitempty" db:"call_status"`

	Data map[string]string `json:"data" db:"data"`

	StartedAt time.Time `json:"started_at" db:"started_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Metadata is the parameter set carried by a single PBX hit.
type Metadata struct {
	CallID        string
	PhoneNumber   string
	Num           string
	DID           string
	ExtensionID   string
	ExtensionPath string
	CallType      string
	CallStatus    string
	Extra         map[string]string
}

// Bag flattens the metadata into the JSON form stored on the call row,
// using the original PBX parameter names.
func (m Metadata) Bag() map[string]string {
	bag := make(map[string]string, len(m.Extra)+8)
	for k, v := range m.Extra {
		bag[k] = v
	}
	set := func(k, v string) {
		if v != "" {
			bag[k] = v
		}
	}
	set("PBXcallId", m.CallID)
	set("PBXphone", m.PhoneNumber)
	set("PBXnum", m.Num)
	set("PBXdid", m.DID)
	set("PBXextensionId", m.ExtensionID)
	set("PBXextensionPath", m.ExtensionPath)
	set("PBXcallType", m.CallType)
	set("PBXcallStatus", m.CallStatus)
	return bag
}

const (
	MessageStatusNew     = "new"
	MessageStatusHandled = "handled"
)

// Message is a voice message left by a customer during a call.
type Message struct {
	ID          int64          `json:"id" db:"id"`
	CustomerID  int64          `json:"customer_id" db:"customer_id"`
	CallID      sql.NullString `json:"call_id,omitempty" db:"call_id"`
	MessageFile string         `json:"message_file" db:"message_file"`
	Duration    sql.NullInt64  `json:"duration,omitempty" db:"duration"`
	Status      string         `json:"status" db:"status"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}
