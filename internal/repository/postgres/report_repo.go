package postgres

import (
	"context"
	"fmt"

	"ivr-service/internal/domain/report"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AnnualReportRepository struct {
	db *pgxpool.Pool
}

func NewAnnualReportRepository(db *pgxpool.Pool) *AnnualReportRepository {
	return &AnnualReportRepository{db: db}
}

// Upsert requests a report for (customer, year). Re-requesting the same
// year resets the prior request instead of erroring.
func (r *AnnualReportRepository) Upsert(ctx context.Context, customerID int64, year int) (*report.AnnualReport, error) {
	query := `
		INSERT INTO annual_reports (customer_id, year, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, year) DO UPDATE SET
			status = EXCLUDED.status,
			requested_at = now(),
			updated_at = now()
		RETURNING id, customer_id, year, status, requested_at, updated_at
	`

	var rep report.AnnualReport
	err := r.db.QueryRow(ctx, query, customerID, year, report.StatusRequested).Scan(
		&rep.ID, &rep.CustomerID, &rep.Year, &rep.Status, &rep.RequestedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert annual report: %w", err)
	}
	return &rep, nil
}
