package session

// Session is the ephemeral per-call state: every input seen so far plus the
// flow cursors that cannot be reconstructed from the durable store. It lives
// only as long as the call (bounded by the store TTL).
type Session struct {
	CallID string            `json:"call_id"`
	Fields map[string]string `json:"fields"`

	// Details wizard cursor
	ChildrenCount      int   `json:"children_count"`
	CurrentChild       int   `json:"current_child"`
	ChildrenBirthYears []int `json:"children_birth_years,omitempty"`

	// Receipt flow scratch data. An empty ClientTz means the caller
	// skipped the client id step.
	ClientPhone string `json:"client_phone,omitempty"`
	ClientTz    string `json:"client_tz,omitempty"`
}

// New returns an empty session for the given call id.
func New(callID string) *Session {
	return &Session{CallID: callID, Fields: map[string]string{}}
}

// Field returns the last-seen value for a named input, or "".
func (s *Session) Field(name string) string {
	if s.Fields == nil {
		return ""
	}
	return s.Fields[name]
}

// SetField sets or overwrites a single named field.
func (s *Session) SetField(name, value string) {
	if s.Fields == nil {
		s.Fields = map[string]string{}
	}
	s.Fields[name] = value
}
