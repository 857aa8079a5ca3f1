package calllog

import (
	"context"
	"database/sql"
	"errors"

	"ivr-service/internal/domain/call"
	"ivr-service/internal/domain/customer"
	xerrors "ivr-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// CustomerResolver looks up the customer owning a phone number.
type CustomerResolver interface {
	GetByPhone(ctx context.Context, phone string) (*customer.Customer, error)
}

// CallStore is the durable side of call logging.
type CallStore interface {
	Log(ctx context.Context, meta call.Metadata, customerID sql.NullInt64) error
	MergeData(ctx context.Context, callID string, fields map[string]string) error
}

// Logger records and merges PBX call metadata keyed by call id. Repeated
// and out-of-order arrival of fields is expected; the JSON bag only ever
// grows.
type Logger struct {
	customers CustomerResolver
	calls     CallStore
	logger    *zap.Logger
}

func NewLogger(customers CustomerResolver, calls CallStore, logger *zap.Logger) *Logger {
	return &Logger{
		customers: customers,
		calls:     calls,
		logger:    logger,
	}
}

// Log upserts the call row for this hit. The customer reference is
// resolved from the phone field once, at log time; a customer registered
// later in the same call does not retroactively attach to the row.
func (l *Logger) Log(ctx context.Context, meta call.Metadata) error {
	var customerID sql.NullInt64
	if meta.PhoneNumber != "" {
		c, err := l.customers.GetByPhone(ctx, meta.PhoneNumber)
		switch {
		case err == nil:
			customerID = sql.NullInt64{Int64: c.ID, Valid: true}
		case errors.Is(err, xerrors.ErrNotFound):
			// unknown caller, row keeps a null customer reference
		default:
			l.logger.Warn("customer lookup failed during call log",
				zap.String("call_id", meta.CallID),
				zap.Error(err),
			)
		}
	}

	if err := l.calls.Log(ctx, meta, customerID); err != nil {
		return err
	}

	l.logger.Info("call logged",
		zap.String("call_id", meta.CallID),
		zap.String("phone", meta.PhoneNumber),
		zap.Bool("known_customer", customerID.Valid),
	)
	return nil
}

// MergeUpdate shallow-merges partial fields into the call's JSON bag.
// Reports ErrNotFound for an unknown call id.
func (l *Logger) MergeUpdate(ctx context.Context, callID string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return l.calls.MergeData(ctx, callID, fields)
}
