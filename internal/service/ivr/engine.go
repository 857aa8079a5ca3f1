package ivr

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ivr-service/internal/domain/call"
	"ivr-service/internal/domain/customer"
	"ivr-service/internal/domain/ivr"
	"ivr-service/internal/domain/receipt"
	"ivr-service/internal/domain/report"
	xerrors "ivr-service/internal/pkg/errors"
	"ivr-service/internal/pkg/session"
	"ivr-service/internal/service/icount"

	"go.uber.org/zap"
)

// CustomerStore is the slice of the customer repository the engine needs.
type CustomerStore interface {
	GetByPhone(ctx context.Context, phone string) (*customer.Customer, error)
	Create(ctx context.Context, phone, name, email string, subscriptionMonths int) (*customer.Customer, error)
	UpdateProfile(ctx context.Context, id int64, fields map[string]any) (bool, error)
	GetDetails(ctx context.Context, customerID int64) (*customer.CustomerDetails, error)
	UpdateDetails(ctx context.Context, customerID int64, numChildren int, birthYearsJSON string, spouse1, spouse2 int) error
}

type ContactStore interface {
	Upsert(ctx context.Context, c *customer.Contact) (*customer.Contact, error)
	GetByPhone(ctx context.Context, customerID int64, phone string) (*customer.Contact, error)
}

type ReceiptStore interface {
	Create(ctx context.Context, rec *receipt.Receipt) error
	Finalize(ctx context.Context, id int64, docID, docNum sql.NullString, rawResponse, status string) error
	GetByDocNum(ctx context.Context, customerID int64, docNum string) (*receipt.Receipt, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type MessageStore interface {
	Save(ctx context.Context, m *call.Message) error
}

type ReportStore interface {
	Upsert(ctx context.Context, customerID int64, year int) (*report.AnnualReport, error)
}

// CallLog mirrors the call logger's merge entry point; every accepted
// input is also persisted into the call's JSON bag.
type CallLog interface {
	MergeUpdate(ctx context.Context, callID string, fields map[string]string) error
}

// Config carries the business knobs the engine needs at decision time.
type Config struct {
	SubscriptionMonths int
}

// Engine turns "current call state + persisted customer record" into the
// next menu decision. All continuity across the PBX's stateless hits lives
// in the session store; per-call-id locking linearizes concurrent hits
// (PBX retries included) for the same call.
type Engine struct {
	customers CustomerStore
	contacts  ContactStore
	receipts  ReceiptStore
	messages  MessageStore
	reports   ReportStore
	calls     CallLog
	sessions  session.Store
	locks     *session.KeyedMutex
	provider  icount.Provider
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

func NewEngine(
	customers CustomerStore,
	contacts ContactStore,
	receipts ReceiptStore,
	messages MessageStore,
	reports ReportStore,
	calls CallLog,
	sessions session.Store,
	provider icount.Provider,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		customers: customers,
		contacts:  contacts,
		receipts:  receipts,
		messages:  messages,
		reports:   reports,
		calls:     calls,
		sessions:  sessions,
		locks:     session.NewKeyedMutex(),
		provider:  provider,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleEntry serves the initial /call hit: remembers the core PBX
// parameters in the session and decides between registration offer,
// subscription renewal and the profile chain.
func (e *Engine) HandleEntry(ctx context.Context, meta call.Metadata) ivr.Decision {
	unlock := e.locks.Lock(meta.CallID)
	defer unlock()

	if err := e.rememberCoreParams(ctx, meta); err != nil {
		e.logger.Error("failed to store call session", zap.String("call_id", meta.CallID), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	cust, err := e.customers.GetByPhone(ctx, meta.PhoneNumber)
	if errors.Is(err, xerrors.ErrNotFound) {
		return ivr.Decision{Kind: ivr.DecideOfferRegistration}
	}
	if err != nil {
		e.logger.Error("customer lookup failed", zap.String("phone", meta.PhoneNumber), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	if !cust.SubscriptionActive(e.now()) {
		return ivr.Decision{Kind: ivr.DecideRenewSubscription}
	}

	return e.profileNext(ctx, cust)
}

// HandleInput serves one /menu/{step} hit: records the input in the
// session and the call's JSON bag, then dispatches on the step kind.
// Unknown steps fall through to the main menu.
func (e *Engine) HandleInput(ctx context.Context, meta call.Metadata, step ivr.Step, value string) ivr.Decision {
	unlock := e.locks.Lock(meta.CallID)
	defer unlock()

	if err := e.rememberCoreParams(ctx, meta); err != nil {
		e.logger.Error("failed to store call session", zap.String("call_id", meta.CallID), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	s, err := e.sessions.GetOrCreate(ctx, meta.CallID)
	if err != nil {
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}
	s.SetField(step.Name, value)
	if err := e.sessions.Save(ctx, s); err != nil {
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	if err := e.calls.MergeUpdate(ctx, meta.CallID, map[string]string{step.Name: value}); err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		e.logger.Warn("failed to persist input into call row",
			zap.String("call_id", meta.CallID),
			zap.String("step", step.Name),
			zap.Error(err),
		)
	}

	switch step.Kind {
	case ivr.StepNewCustomer:
		return e.processNewCustomerChoice(value)
	case ivr.StepNewCustomerID:
		return e.processNewCustomerID(ctx, s, value)
	case ivr.StepRenewSubscription:
		return e.processRenewalChoice(ctx, s, value)
	case ivr.StepMainMenu:
		return e.processMainMenuChoice(value)
	case ivr.StepOwnerAge:
		return e.processOwnerAge(ctx, s, value)
	case ivr.StepGender:
		return e.processGender(ctx, s, value)
	case ivr.StepNumChildren:
		return e.processChildrenCount(ctx, s, value)
	case ivr.StepChildBirthYear:
		return e.processChildBirthYear(ctx, s, value)
	case ivr.StepSpouse1Workplaces:
		return e.processSpouseWorkplaces(ctx, s, 1, value)
	case ivr.StepSpouse2Workplaces:
		return e.processSpouseWorkplaces(ctx, s, 2, value)
	case ivr.StepCustomerMessage:
		return e.processCustomerMessage(ctx, s, value)
	case ivr.StepAnnualReport:
		return e.processAnnualReportChoice(ctx, s, value)
	case ivr.StepReceiptAmount:
		return e.processReceiptAmount(value)
	case ivr.StepInvalidAmount:
		return e.processInvalidAmountChoice(value)
	case ivr.StepClientPhone:
		return e.processClientPhone(ctx, s, value)
	case ivr.StepClientID:
		return e.processClientID(ctx, s, value)
	case ivr.StepSaveContactChoice:
		return e.processSaveContactChoice(ctx, s, value)
	case ivr.StepReceiptDescription:
		return e.processReceiptDescription(ctx, s, value)
	case ivr.StepReceiptFailed:
		return e.processReceiptFailedChoice(value)
	case ivr.StepCancelReceiptID:
		return e.processCancelReceipt(ctx, s, value)
	default:
		e.logger.Warn("unrecognized input step",
			zap.String("call_id", meta.CallID),
			zap.String("step", step.Name),
		)
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}
}

// rememberCoreParams keeps the PBX identification parameters in the
// session so later steps can resolve the caller without re-receiving them.
func (e *Engine) rememberCoreParams(ctx context.Context, meta call.Metadata) error {
	s, err := e.sessions.GetOrCreate(ctx, meta.CallID)
	if err != nil {
		return err
	}
	for k, v := range meta.Bag() {
		if v != "" {
			s.SetField(k, v)
		}
	}
	return e.sessions.Save(ctx, s)
}

// profileNext walks the fixed priority order of missing profile fields and
// stops at the first unmet one.
func (e *Engine) profileNext(ctx context.Context, cust *customer.Customer) ivr.Decision {
	if !cust.TzID.Valid || cust.TzID.String == "" {
		return ivr.Decision{Kind: ivr.DecidePromptNationalID}
	}
	if !cust.OwnerAge.Valid {
		return ivr.Decision{Kind: ivr.DecidePromptOwnerAge}
	}
	if !cust.Gender.Valid || cust.Gender.String == "" {
		return ivr.Decision{Kind: ivr.DecidePromptGender}
	}

	details, err := e.customers.GetDetails(ctx, cust.ID)
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		e.logger.Error("details lookup failed", zap.Int64("customer_id", cust.ID), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}
	if details == nil || !details.NumChildren.Valid {
		return ivr.Decision{Kind: ivr.DecidePromptChildCount}
	}

	return ivr.Decision{Kind: ivr.DecideMainMenu}
}

// requireProfileOrMain re-resolves the caller and re-enters the profile
// chain; used after every profile mutation so the next missing field is
// asked for naturally.
func (e *Engine) requireProfileOrMain(ctx context.Context, phone string) ivr.Decision {
	if phone == "" {
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}
	cust, err := e.customers.GetByPhone(ctx, phone)
	if errors.Is(err, xerrors.ErrNotFound) {
		return ivr.Decision{Kind: ivr.DecideOfferRegistration}
	}
	if err != nil {
		e.logger.Error("customer lookup failed", zap.String("phone", phone), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}
	return e.profileNext(ctx, cust)
}

// callerByPhone resolves the customer owning the session's caller phone.
func (e *Engine) callerByPhone(ctx context.Context, s *session.Session) (*customer.Customer, error) {
	phone := s.Field("PBXphone")
	if phone == "" {
		return nil, xerrors.ErrNotFound
	}
	return e.customers.GetByPhone(ctx, phone)
}
