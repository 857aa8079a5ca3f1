package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ivr-service/internal/domain/call"
	xerrors "ivr-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CallRepository struct {
	db *pgxpool.Pool
}

func NewCallRepository(db *pgxpool.Pool) *CallRepository {
	return &CallRepository{db: db}
}

// Log writes or updates the call row for meta.CallID. The metadata columns
// always reflect the most recent hit; the JSON bag is merged server-side
// (jsonb ||), never replaced, which keeps concurrent hits on the same call
// id from losing keys.
func (r *CallRepository) Log(ctx context.Context, meta call.Metadata, customerID sql.NullInt64) error {
	bag, err := json.Marshal(meta.Bag())
	if err != nil {
		return fmt.Errorf("failed to marshal call data: %w", err)
	}

	query := `
		INSERT INTO calls (call_id, phone_number, customer_id, num, did, extension_id, extension_path, call_type, call_status, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
		ON CONFLICT (call_id) DO UPDATE SET
			phone_number = EXCLUDED.phone_number,
			customer_id = EXCLUDED.customer_id,
			num = EXCLUDED.num,
			did = EXCLUDED.did,
			extension_id = EXCLUDED.extension_id,
			extension_path = EXCLUDED.extension_path,
			call_type = EXCLUDED.call_type,
			call_status = EXCLUDED.call_status,
			data = calls.data || EXCLUDED.data,
			updated_at = now()
	`

	_, err = r.db.Exec(ctx, query,
		meta.CallID,
		nullIfEmpty(meta.PhoneNumber),
		customerID,
		nullIfEmpty(meta.Num),
		nullIfEmpty(meta.DID),
		nullIfEmpty(meta.ExtensionID),
		nullIfEmpty(meta.ExtensionPath),
		nullIfEmpty(meta.CallType),
		nullIfEmpty(meta.CallStatus),
		bag,
	)
	if err != nil {
		return fmt.Errorf("failed to log call: %w", err)
	}
	return nil
}

// MergeData shallow-merges fields into the call's JSON bag; later values
// overwrite same-named earlier values. Unknown call ids are reported, not
// created.
func (r *CallRepository) MergeData(ctx context.Context, callID string, fields map[string]string) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal call data patch: %w", err)
	}

	result, err := r.db.Exec(ctx,
		`UPDATE calls SET data = data || $2::jsonb, updated_at = now() WHERE call_id = $1`,
		callID, patch,
	)
	if err != nil {
		return fmt.Errorf("failed to merge call data: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// GetByCallID retrieves a call row by the external PBX call identifier.
func (r *CallRepository) GetByCallID(ctx context.Context, callID string) (*call.Call, error) {
	query := `
		SELECT id, call_id, phone_number, customer_id, num, did, extension_id,
		       extension_path, call_type, call_status, data, started_at, updated_at
		FROM calls
		WHERE call_id = $1
	`

	var c call.Call
	var data []byte
	err := r.db.QueryRow(ctx, query, callID).Scan(
		&c.ID, &c.CallID, &c.PhoneNumber, &c.CustomerID, &c.Num, &c.DID,
		&c.ExtensionID, &c.ExtensionPath, &c.CallType, &c.CallStatus,
		&data, &c.StartedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find call: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &c.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal call data: %w", err)
		}
	}
	return &c, nil
}
