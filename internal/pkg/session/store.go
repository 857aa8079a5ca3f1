package session

import "context"

// Store keeps in-flight call sessions keyed by call id. Creation for an
// unseen call id is implicit and idempotent; operations are total. Entries
// are evicted by TTL since last save, never explicitly torn down by the
// flow (the PBX hanging up simply stops the hits).
type Store interface {
	// GetOrCreate returns the session for callID, creating an empty one
	// if the id has not been seen.
	GetOrCreate(ctx context.Context, callID string) (*Session, error)

	// Read returns the session, or a fresh empty one without persisting it.
	Read(ctx context.Context, callID string) (*Session, error)

	// Save writes the session back and refreshes its TTL.
	Save(ctx context.Context, s *Session) error

	// MergeField sets or overwrites a single named field.
	MergeField(ctx context.Context, callID, name, value string) error
}
