package ivr

import (
	"context"

	"ivr-service/internal/domain/call"
	"ivr-service/internal/domain/ivr"
	"ivr-service/internal/pkg/session"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// processMainMenuChoice routes the top-level menu.
func (e *Engine) processMainMenuChoice(choice string) ivr.Decision {
	switch choice {
	case "1":
		return ivr.Decision{Kind: ivr.DecidePromptReceiptAmount}
	case "2":
		return ivr.Decision{Kind: ivr.DecidePromptCancelReceiptID}
	case "3":
		return ivr.Decision{Kind: ivr.DecidePromptChildCount}
	case "4":
		return ivr.Decision{Kind: ivr.DecideBenefits}
	case "5":
		return ivr.Decision{Kind: ivr.DecidePromptMessage, FileName: "message_" + ulid.Make().String()}
	case "6":
		return ivr.Decision{Kind: ivr.DecideAnnualReportOffer}
	default:
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}
}

// processCustomerMessage registers the recording left by the caller. The
// value is the file name the PBX stored the recording under.
func (e *Engine) processCustomerMessage(ctx context.Context, s *session.Session, fileName string) ivr.Decision {
	if fileName == "" {
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}

	cust, err := e.callerByPhone(ctx, s)
	if err != nil {
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}

	msg := &call.Message{
		CustomerID:  cust.ID,
		CallID:      nullIfEmptyString(s.CallID),
		MessageFile: fileName,
		Status:      call.MessageStatusNew,
	}
	if err := e.messages.Save(ctx, msg); err != nil {
		e.logger.Error("failed to save voice message", zap.Int64("customer_id", cust.ID), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}
	return ivr.Decision{Kind: ivr.DecideMessageReceived}
}

// processAnnualReportChoice queues an annual report request for the current
// calendar year. Re-requesting the same year resets the existing request.
func (e *Engine) processAnnualReportChoice(ctx context.Context, s *session.Session, choice string) ivr.Decision {
	if choice != "1" {
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}

	cust, err := e.callerByPhone(ctx, s)
	if err != nil {
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}

	if _, err := e.reports.Upsert(ctx, cust.ID, e.now().Year()); err != nil {
		e.logger.Error("failed to queue annual report", zap.Int64("customer_id", cust.ID), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}
	return ivr.Decision{Kind: ivr.DecideReportRequested}
}
