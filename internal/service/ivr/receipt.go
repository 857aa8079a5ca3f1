package ivr

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"ivr-service/internal/domain/customer"
	"ivr-service/internal/domain/ivr"
	"ivr-service/internal/domain/receipt"
	xerrors "ivr-service/internal/pkg/errors"
	"ivr-service/internal/pkg/session"
	"ivr-service/internal/service/icount"

	"go.uber.org/zap"
)

// Sentinel values the telephony layer substitutes for skipped inputs.
const (
	skipAmountValue      = "SKIP"
	noDescriptionValue   = "NO_DESCRIPTION"
	defaultReceiptDesc   = "קבלה"
	contactAddedViaNotes = "added_via_ivr"
)

// processReceiptAmount validates the agorot amount. SKIP leaves the flow,
// a non-positive or unparsable amount goes through the retry menu.
func (e *Engine) processReceiptAmount(value string) ivr.Decision {
	if value == skipAmountValue {
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}
	amount, err := strconv.ParseInt(value, 10, 64)
	if err != nil || amount <= 0 {
		return ivr.Decision{Kind: ivr.DecideInvalidAmount}
	}
	return ivr.Decision{Kind: ivr.DecidePromptClientPhone}
}

func (e *Engine) processInvalidAmountChoice(choice string) ivr.Decision {
	if choice == "1" {
		return ivr.Decision{Kind: ivr.DecidePromptReceiptAmount}
	}
	return ivr.Decision{Kind: ivr.DecideMainMenu}
}

func (e *Engine) processClientPhone(ctx context.Context, s *session.Session, value string) ivr.Decision {
	s.ClientPhone = value
	if err := e.sessions.Save(ctx, s); err != nil {
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}
	return ivr.Decision{Kind: ivr.DecidePromptClientID}
}

// processClientID accepts the client's national id; the skip key arrives
// here as an empty value and is stored as such.
func (e *Engine) processClientID(ctx context.Context, s *session.Session, value string) ivr.Decision {
	s.ClientTz = value
	if err := e.sessions.Save(ctx, s); err != nil {
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}
	return ivr.Decision{Kind: ivr.DecidePromptSaveContact}
}

// processSaveContactChoice optionally upserts the receipt client into the
// issuer's contact list. A failed upsert does not block the receipt flow.
func (e *Engine) processSaveContactChoice(ctx context.Context, s *session.Session, choice string) ivr.Decision {
	if choice == "1" && s.ClientPhone != "" {
		if cust, err := e.callerByPhone(ctx, s); err == nil {
			contact := &customer.Contact{
				CustomerID:  cust.ID,
				PhoneNumber: s.ClientPhone,
				TzID:        nullIfEmptyString(s.ClientTz),
				Notes:       sql.NullString{String: contactAddedViaNotes, Valid: true},
			}
			if _, err := e.contacts.Upsert(ctx, contact); err != nil {
				e.logger.Warn("failed to save receipt client as contact",
					zap.Int64("customer_id", cust.ID),
					zap.Error(err),
				)
			}
		}
	}
	return ivr.Decision{Kind: ivr.DecidePromptDescription}
}

// processReceiptDescription is the terminal receipt step: it creates the
// pending row, calls the provider and finalizes the row either way.
func (e *Engine) processReceiptDescription(ctx context.Context, s *session.Session, value string) ivr.Decision {
	description := value
	if description == noDescriptionValue || description == "" {
		description = defaultReceiptDesc
	}

	amount, err := strconv.ParseInt(s.Field("receiptAmount"), 10, 64)
	if err != nil || amount <= 0 {
		e.logger.Error("receipt description reached without a valid amount",
			zap.String("call_id", s.CallID),
			zap.String("amount", s.Field("receiptAmount")),
		)
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	cust, err := e.callerByPhone(ctx, s)
	if err != nil {
		e.logger.Error("receipt issuer lookup failed", zap.String("call_id", s.CallID), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	var contactID sql.NullInt64
	if s.ClientPhone != "" {
		if contact, err := e.contacts.GetByPhone(ctx, cust.ID, s.ClientPhone); err == nil {
			contactID = sql.NullInt64{Int64: contact.ID, Valid: true}
		}
	}

	provReq := icount.Request{
		Amount:      amount,
		Description: description,
		ClientPhone: s.ClientPhone,
		ClientTz:    s.ClientTz,
	}
	payload, err := json.Marshal(provReq)
	if err != nil {
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	rec := &receipt.Receipt{
		CustomerID:     cust.ID,
		CallID:         nullIfEmptyString(s.CallID),
		ContactID:      contactID,
		Amount:         amount,
		Description:    description,
		RequestPayload: string(payload),
		Status:         receipt.StatusPending,
	}
	if err := e.receipts.Create(ctx, rec); err != nil {
		e.logger.Error("failed to create receipt row", zap.Int64("customer_id", cust.ID), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	result, err := e.provider.CreateReceipt(ctx, provReq)
	if err != nil {
		e.logger.Error("receipt provider call failed",
			zap.Int64("receipt_id", rec.ID),
			zap.Error(err),
		)
		result = icount.Result{Status: false, Message: err.Error()}
	}

	raw, _ := json.Marshal(result)
	if result.Status {
		if err := e.receipts.Finalize(ctx, rec.ID,
			nullIfEmptyString(result.DocID),
			nullIfEmptyString(result.DocNum),
			string(raw), receipt.StatusCompleted,
		); err != nil {
			e.logger.Error("failed to finalize receipt row", zap.Int64("receipt_id", rec.ID), zap.Error(err))
		}
		e.logger.Info("receipt issued",
			zap.Int64("receipt_id", rec.ID),
			zap.String("doc_num", result.DocNum),
		)
		return ivr.Decision{Kind: ivr.DecideReceiptSuccess, DocNum: result.DocNum}
	}

	if err := e.receipts.Finalize(ctx, rec.ID,
		sql.NullString{}, sql.NullString{},
		string(raw), receipt.StatusFailed,
	); err != nil {
		e.logger.Error("failed to finalize receipt row", zap.Int64("receipt_id", rec.ID), zap.Error(err))
	}
	return ivr.Decision{Kind: ivr.DecideReceiptFailed}
}

func (e *Engine) processReceiptFailedChoice(choice string) ivr.Decision {
	if choice == "1" {
		return ivr.Decision{Kind: ivr.DecidePromptReceiptAmount}
	}
	return ivr.Decision{Kind: ivr.DecideMainMenu}
}

// processCancelReceipt marks a completed receipt cancelled by its provider
// document number. Cancelling an already cancelled receipt succeeds again;
// any other state reads as not found to the caller.
func (e *Engine) processCancelReceipt(ctx context.Context, s *session.Session, docNum string) ivr.Decision {
	cust, err := e.callerByPhone(ctx, s)
	if err != nil {
		return ivr.Decision{Kind: ivr.DecideReceiptNotFound}
	}

	rec, err := e.receipts.GetByDocNum(ctx, cust.ID, docNum)
	if errors.Is(err, xerrors.ErrNotFound) {
		return ivr.Decision{Kind: ivr.DecideReceiptNotFound}
	}
	if err != nil {
		e.logger.Error("receipt lookup failed", zap.Int64("customer_id", cust.ID), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	switch rec.Status {
	case receipt.StatusCancelled:
		return ivr.Decision{Kind: ivr.DecideReceiptCancelled, DocNum: docNum}
	case receipt.StatusCompleted:
		if err := e.receipts.UpdateStatus(ctx, rec.ID, receipt.StatusCancelled); err != nil {
			e.logger.Error("receipt cancellation failed", zap.Int64("receipt_id", rec.ID), zap.Error(err))
			return ivr.Decision{Kind: ivr.DecideSystemError}
		}
		e.logger.Info("receipt cancelled",
			zap.Int64("receipt_id", rec.ID),
			zap.String("doc_num", docNum),
		)
		return ivr.Decision{Kind: ivr.DecideReceiptCancelled, DocNum: docNum}
	default:
		return ivr.Decision{Kind: ivr.DecideReceiptNotFound}
	}
}

func nullIfEmptyString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
