package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema evolution is additive-only: tables are created if absent and
// later columns are added through ensureColumn, never dropped or retyped,
// so existing stored data stays readable across deployments.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		phone_number TEXT UNIQUE NOT NULL,
		name TEXT,
		email TEXT,
		business_name TEXT,
		tz_id TEXT,
		owner_age INTEGER,
		gender TEXT,
		subscription_start_date TEXT,
		subscription_end_date TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS customer_details (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT UNIQUE NOT NULL REFERENCES customers(id),
		num_children INTEGER,
		children_birth_years TEXT,
		spouse1_workplaces INTEGER,
		spouse2_workplaces INTEGER,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		phone_number TEXT NOT NULL,
		name TEXT,
		business_name TEXT,
		email TEXT,
		tz_id TEXT,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (customer_id, phone_number)
	)`,
	`CREATE TABLE IF NOT EXISTS calls (
		id BIGSERIAL PRIMARY KEY,
		call_id TEXT UNIQUE NOT NULL,
		phone_number TEXT,
		customer_id BIGINT REFERENCES customers(id),
		num TEXT,
		did TEXT,
		extension_id TEXT,
		extension_path TEXT,
		call_type TEXT,
		call_status TEXT,
		data JSONB NOT NULL DEFAULT '{}'::jsonb,
		started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calls_phone_number ON calls (phone_number)`,
	`CREATE TABLE IF NOT EXISTS receipts (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		call_id TEXT,
		contact_id BIGINT REFERENCES contacts(id),
		amount BIGINT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		request_payload TEXT NOT NULL DEFAULT '',
		provider_doc_id TEXT,
		provider_doc_num TEXT,
		provider_response TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_receipts_customer_id ON receipts (customer_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		call_id TEXT,
		message_file TEXT NOT NULL,
		duration INTEGER,
		status TEXT NOT NULL DEFAULT 'new',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS annual_reports (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		year INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'requested',
		requested_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (customer_id, year)
	)`,
}

// Columns added after the first deployments; ensured on every start.
var ensuredColumns = []struct {
	table, column, coldef string
}{
	{"customers", "business_name", "TEXT"},
	{"customers", "owner_age", "INTEGER"},
	{"customers", "gender", "TEXT"},
	{"customer_details", "notes", "TEXT"},
	{"receipts", "contact_id", "BIGINT REFERENCES contacts(id)"},
}

// InitSchema creates missing tables and applies additive column migrations.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	for _, c := range ensuredColumns {
		if err := ensureColumn(ctx, pool, c.table, c.column, c.coldef); err != nil {
			return err
		}
	}
	return nil
}

func ensureColumn(ctx context.Context, pool *pgxpool.Pool, table, column, coldef string) error {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM information_schema.columns
			WHERE table_name = $1 AND column_name = $2
		)
	`, table, column).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to inspect column %s.%s: %w", table, column, err)
	}
	if exists {
		return nil
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, coldef)
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	return nil
}
