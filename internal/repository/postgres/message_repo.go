package postgres

import (
	"context"
	"fmt"

	"ivr-service/internal/domain/call"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Save stores a left voice message; status defaults to new.
func (r *MessageRepository) Save(ctx context.Context, m *call.Message) error {
	query := `
		INSERT INTO messages (customer_id, call_id, message_file, duration, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	status := m.Status
	if status == "" {
		status = call.MessageStatusNew
	}
	err := r.db.QueryRow(ctx, query, m.CustomerID, m.CallID, m.MessageFile, m.Duration, status).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	m.Status = status
	return nil
}
