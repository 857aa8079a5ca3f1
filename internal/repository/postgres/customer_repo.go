package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ivr-service/internal/domain/customer"
	xerrors "ivr-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerColumns = `id, phone_number, name, email, business_name, tz_id, owner_age, gender,
	       subscription_start_date, subscription_end_date, is_active, created_at, updated_at`

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// profileColumns is the allow-list for UpdateProfile. Unknown keys are
// silently dropped, not an error.
var profileColumns = map[string]bool{
	"name":                    true,
	"email":                   true,
	"business_name":           true,
	"tz_id":                   true,
	"owner_age":               true,
	"gender":                  true,
	"subscription_start_date": true,
	"subscription_end_date":   true,
	"is_active":               true,
}

// Create inserts a new customer keyed by phone number together with its
// empty details row, in one transaction. The subscription window starts
// today and runs for subscriptionMonths.
func (r *CustomerRepository) Create(ctx context.Context, phone, name, email string, subscriptionMonths int) (*customer.Customer, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	today := time.Now()
	start := today.Format("2006-01-02")
	end := today.AddDate(0, subscriptionMonths, 0).Format("2006-01-02")

	query := `
		INSERT INTO customers (phone_number, name, email, subscription_start_date, subscription_end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING ` + customerColumns

	var c customer.Customer
	err = scanCustomer(tx.QueryRow(ctx, query, phone, nullIfEmpty(name), nullIfEmpty(email), start, end), &c)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, xerrors.ErrConflict
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO customer_details (customer_id) VALUES ($1)`, c.ID); err != nil {
		return nil, fmt.Errorf("failed to create customer details: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit customer creation: %w", err)
	}
	return &c, nil
}

// GetByPhone retrieves a customer by phone number.
func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE phone_number = $1`

	var c customer.Customer
	err := scanCustomer(r.db.QueryRow(ctx, query, phone), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &c, nil
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	var c customer.Customer
	err := scanCustomer(r.db.QueryRow(ctx, query, id), &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &c, nil
}

// UpdateProfile applies a partial update restricted to the allow-listed
// column set and stamps updated_at. Returns whether a row was affected.
func (r *CustomerRepository) UpdateProfile(ctx context.Context, id int64, fields map[string]any) (bool, error) {
	sets := []string{}
	args := []any{}
	argPos := 1

	for col, val := range fields {
		if !profileColumns[col] {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, val)
		argPos++
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf("UPDATE customers SET %s WHERE id = $%d", strings.Join(sets, ", "), argPos)
	args = append(args, id)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update customer profile: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// GetDetails retrieves the details row for a customer.
func (r *CustomerRepository) GetDetails(ctx context.Context, customerID int64) (*customer.CustomerDetails, error) {
	query := `
		SELECT id, customer_id, num_children, children_birth_years,
		       spouse1_workplaces, spouse2_workplaces, notes, created_at, updated_at
		FROM customer_details
		WHERE customer_id = $1
	`

	var d customer.CustomerDetails
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&d.ID, &d.CustomerID, &d.NumChildren, &d.ChildrenBirthYears,
		&d.Spouse1Workplaces, &d.Spouse2Workplaces, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer details: %w", err)
	}
	return &d, nil
}

// UpdateDetails persists the accumulated details wizard data in one write.
// The details row normally exists from Create; pre-migration customers get
// one through the upsert.
func (r *CustomerRepository) UpdateDetails(ctx context.Context, customerID int64, numChildren int, birthYearsJSON string, spouse1, spouse2 int) error {
	query := `
		INSERT INTO customer_details (customer_id, num_children, children_birth_years, spouse1_workplaces, spouse2_workplaces)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (customer_id) DO UPDATE SET
			num_children = EXCLUDED.num_children,
			children_birth_years = EXCLUDED.children_birth_years,
			spouse1_workplaces = EXCLUDED.spouse1_workplaces,
			spouse2_workplaces = EXCLUDED.spouse2_workplaces,
			updated_at = now()
	`

	if _, err := r.db.Exec(ctx, query, customerID, numChildren, birthYearsJSON, spouse1, spouse2); err != nil {
		return fmt.Errorf("failed to update customer details: %w", err)
	}
	return nil
}

func scanCustomer(row pgx.Row, c *customer.Customer) error {
	return row.Scan(
		&c.ID, &c.PhoneNumber, &c.Name, &c.Email, &c.BusinessName, &c.TzID,
		&c.OwnerAge, &c.Gender, &c.SubscriptionStartDate, &c.SubscriptionEndDate,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
