package postgres

import (
	"context"
	"errors"
	"fmt"

	"ivr-service/internal/domain/customer"
	xerrors "ivr-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contactColumns = `id, customer_id, phone_number, name, business_name, email, tz_id, notes, created_at, updated_at`

type ContactRepository struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: db}
}

// Upsert inserts or field-merges a contact keyed by (customer, phone).
// New non-null values override stored ones; null inputs preserve whatever
// is already there, so repeating an identical upsert is a no-op.
func (r *ContactRepository) Upsert(ctx context.Context, c *customer.Contact) (*customer.Contact, error) {
	query := `
		INSERT INTO contacts (customer_id, phone_number, name, business_name, email, tz_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (customer_id, phone_number) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, contacts.name),
			business_name = COALESCE(EXCLUDED.business_name, contacts.business_name),
			email = COALESCE(EXCLUDED.email, contacts.email),
			tz_id = COALESCE(EXCLUDED.tz_id, contacts.tz_id),
			notes = COALESCE(EXCLUDED.notes, contacts.notes),
			updated_at = now()
		RETURNING ` + contactColumns

	var out customer.Contact
	err := scanContact(r.db.QueryRow(ctx, query,
		c.CustomerID, c.PhoneNumber, c.Name, c.BusinessName, c.Email, c.TzID, c.Notes,
	), &out)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert contact: %w", err)
	}
	return &out, nil
}

// List returns the customer's contacts, most recently updated first.
func (r *ContactRepository) List(ctx context.Context, customerID int64, limit int) ([]customer.Contact, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE customer_id = $1 ORDER BY updated_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []customer.Contact{}
	for rows.Next() {
		var c customer.Contact
		if err := scanContact(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// GetByPhone retrieves one contact of a customer by the contact's phone.
func (r *ContactRepository) GetByPhone(ctx context.Context, customerID int64, phone string) (*customer.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE customer_id = $1 AND phone_number = $2`

	var c customer.Contact
	err := scanContact(r.db.QueryRow(ctx, query, customerID, phone), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return &c, nil
}

func scanContact(row pgx.Row, c *customer.Contact) error {
	return row.Scan(
		&c.ID, &c.CustomerID, &c.PhoneNumber, &c.Name, &c.BusinessName,
		&c.Email, &c.TzID, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
}
