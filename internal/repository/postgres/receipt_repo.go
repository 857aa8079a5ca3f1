package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ivr-service/internal/domain/receipt"
	xerrors "ivr-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const receiptColumns = `id, customer_id, call_id, contact_id, amount, description, request_payload,
	       provider_doc_id, provider_doc_num, provider_response, status, created_at, updated_at`

type ReceiptRepository struct {
	db *pgxpool.Pool
}

func NewReceiptRepository(db *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create persists a pending receipt, capturing the serialized provider
// request before the provider is ever called.
func (r *ReceiptRepository) Create(ctx context.Context, rec *receipt.Receipt) error {
	query := `
		INSERT INTO receipts (customer_id, call_id, contact_id, amount, description, request_payload, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	status := rec.Status
	if status == "" {
		status = receipt.StatusPending
	}
	err := r.db.QueryRow(ctx, query,
		rec.CustomerID, rec.CallID, rec.ContactID, rec.Amount, rec.Description, rec.RequestPayload, status,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}
	rec.Status = status
	return nil
}

// Finalize records the provider outcome and moves the receipt to its
// terminal status. Failed rows are kept, never deleted.
func (r *ReceiptRepository) Finalize(ctx context.Context, id int64, docID, docNum sql.NullString, rawResponse, status string) error {
	query := `
		UPDATE receipts
		SET provider_doc_id = $1, provider_doc_num = $2, provider_response = $3, status = $4, updated_at = now()
		WHERE id = $5
	`

	result, err := r.db.Exec(ctx, query, docID, docNum, rawResponse, status, id)
	if err != nil {
		return fmt.Errorf("failed to finalize receipt: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// GetByDocNum finds a customer's receipt by the provider document number.
func (r *ReceiptRepository) GetByDocNum(ctx context.Context, customerID int64, docNum string) (*receipt.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE customer_id = $1 AND provider_doc_num = $2`

	var rec receipt.Receipt
	err := r.db.QueryRow(ctx, query, customerID, docNum).Scan(
		&rec.ID, &rec.CustomerID, &rec.CallID, &rec.ContactID, &rec.Amount,
		&rec.Description, &rec.RequestPayload, &rec.ProviderDocID, &rec.ProviderDocNum,
		&rec.ProviderResponse, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find receipt: %w", err)
	}
	return &rec, nil
}

// UpdateStatus moves a receipt to a new lifecycle status.
func (r *ReceiptRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE receipts SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
