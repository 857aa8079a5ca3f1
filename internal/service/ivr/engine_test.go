package ivr

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
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

// fixedNow keeps date-dependent assertions stable.
var fixedNow = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

type stubCustomers struct {
	byPhone map[string]*customer.Customer
	details map[int64]*customer.CustomerDetails
	nextID  int64

	savedDetails []savedDetails
}

type savedDetails struct {
	customerID  int64
	numChildren int
	birthYears  string
	spouse1     int
	spouse2     int
}

func newStubCustomers() *stubCustomers {
	return &stubCustomers{
		byPhone: map[string]*customer.Customer{},
		details: map[int64]*customer.CustomerDetails{},
		nextID:  1,
	}
}

func (s *stubCustomers) GetByPhone(_ context.Context, phone string) (*customer.Customer, error) {
	if c, ok := s.byPhone[phone]; ok {
		return c, nil
	}
	return nil, xerrors.ErrNotFound
}

func (s *stubCustomers) Create(_ context.Context, phone, _, _ string, months int) (*customer.Customer, error) {
	c := &customer.Customer{
		ID:          s.nextID,
		PhoneNumber: phone,
		IsActive:    true,
		SubscriptionEndDate: sql.NullString{
			String: fixedNow.AddDate(0, months, 0).Format("2006-01-02"),
			Valid:  true,
		},
	}
	s.nextID++
	s.byPhone[phone] = c
	return c, nil
}

func (s *stubCustomers) UpdateProfile(_ context.Context, id int64, fields map[string]any) (bool, error) {
	for _, c := range s.byPhone {
		if c.ID != id {
			continue
		}
		for k, v := range fields {
			switch k {
			case "tz_id":
				c.TzID = sql.NullString{String: v.(string), Valid: true}
			case "owner_age":
				c.OwnerAge = sql.NullInt64{Int64: int64(v.(int)), Valid: true}
			case "gender":
				c.Gender = sql.NullString{String: v.(string), Valid: true}
			case "subscription_start_date":
				c.SubscriptionStartDate = sql.NullString{String: v.(string), Valid: true}
			case "subscription_end_date":
				c.SubscriptionEndDate = sql.NullString{String: v.(string), Valid: true}
			}
		}
		return true, nil
	}
	return false, nil
}

func (s *stubCustomers) GetDetails(_ context.Context, customerID int64) (*customer.CustomerDetails, error) {
	if d, ok := s.details[customerID]; ok {
		return d, nil
	}
	return nil, xerrors.ErrNotFound
}

func (s *stubCustomers) UpdateDetails(_ context.Context, customerID int64, numChildren int, birthYearsJSON string, spouse1, spouse2 int) error {
	s.savedDetails = append(s.savedDetails, savedDetails{customerID, numChildren, birthYearsJSON, spouse1, spouse2})
	s.details[customerID] = &customer.CustomerDetails{
		CustomerID:  customerID,
		NumChildren: sql.NullInt64{Int64: int64(numChildren), Valid: true},
	}
	return nil
}

type stubContacts struct {
	byPhone  map[string]*customer.Contact
	upserted []*customer.Contact
}

func newStubContacts() *stubContacts {
	return &stubContacts{byPhone: map[string]*customer.Contact{}}
}

func (s *stubContacts) Upsert(_ context.Context, c *customer.Contact) (*customer.Contact, error) {
	c.ID = int64(len(s.upserted) + 1)
	s.upserted = append(s.upserted, c)
	s.byPhone[c.PhoneNumber] = c
	return c, nil
}

func (s *stubContacts) GetByPhone(_ context.Context, _ int64, phone string) (*customer.Contact, error) {
	if c, ok := s.byPhone[phone]; ok {
		return c, nil
	}
	return nil, xerrors.ErrNotFound
}

type stubReceipts struct {
	rows   map[int64]*receipt.Receipt
	nextID int64
}

func newStubReceipts() *stubReceipts {
	return &stubReceipts{rows: map[int64]*receipt.Receipt{}, nextID: 1}
}

func (s *stubReceipts) Create(_ context.Context, rec *receipt.Receipt) error {
	rec.ID = s.nextID
	s.nextID++
	clone := *rec
	s.rows[rec.ID] = &clone
	return nil
}

func (s *stubReceipts) Finalize(_ context.Context, id int64, docID, docNum sql.NullString, rawResponse, status string) error {
	rec, ok := s.rows[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	rec.ProviderDocID = docID
	rec.ProviderDocNum = docNum
	rec.ProviderResponse = sql.NullString{String: rawResponse, Valid: true}
	rec.Status = status
	return nil
}

func (s *stubReceipts) GetByDocNum(_ context.Context, customerID int64, docNum string) (*receipt.Receipt, error) {
	for _, rec := range s.rows {
		if rec.CustomerID == customerID && rec.ProviderDocNum.Valid && rec.ProviderDocNum.String == docNum {
			return rec, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (s *stubReceipts) UpdateStatus(_ context.Context, id int64, status string) error {
	rec, ok := s.rows[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	rec.Status = status
	return nil
}

type stubMessages struct {
	saved []*call.Message
}

func (s *stubMessages) Save(_ context.Context, m *call.Message) error {
	s.saved = append(s.saved, m)
	return nil
}

type stubReports struct {
	upserts []struct {
		customerID int64
		year       int
	}
}

func (s *stubReports) Upsert(_ context.Context, customerID int64, year int) (*report.AnnualReport, error) {
	s.upserts = append(s.upserts, struct {
		customerID int64
		year       int
	}{customerID, year})
	return &report.AnnualReport{CustomerID: customerID, Year: year}, nil
}

type stubCallLog struct {
	merged []map[string]string
}

func (s *stubCallLog) MergeUpdate(_ context.Context, _ string, fields map[string]string) error {
	s.merged = append(s.merged, fields)
	return nil
}

type stubProvider struct {
	result icount.Result
	err    error
	calls  []icount.Request
}

func (s *stubProvider) CreateReceipt(_ context.Context, req icount.Request) (icount.Result, error) {
	s.calls = append(s.calls, req)
	return s.result, s.err
}

type fixture struct {
	engine    *Engine
	customers *stubCustomers
	contacts  *stubContacts
	receipts  *stubReceipts
	messages  *stubMessages
	reports   *stubReports
	provider  *stubProvider
}

func newFixture() *fixture {
	customers := newStubCustomers()
	contacts := newStubContacts()
	receipts := newStubReceipts()
	messages := &stubMessages{}
	reports := &stubReports{}
	provider := &stubProvider{result: icount.Result{Status: true, DocID: "D1", DocNum: "R-100"}}

	engine := NewEngine(
		customers,
		contacts,
		receipts,
		messages,
		reports,
		&stubCallLog{},
		session.NewMemoryStore(time.Minute),
		provider,
		Config{SubscriptionMonths: 12},
		zap.NewNop(),
	)
	engine.now = func() time.Time { return fixedNow }

	return &fixture{
		engine:    engine,
		customers: customers,
		contacts:  contacts,
		receipts:  receipts,
		messages:  messages,
		reports:   reports,
		provider:  provider,
	}
}

func (f *fixture) addCustomer(phone string, complete bool) *customer.Customer {
	c, _ := f.customers.Create(context.Background(), phone, "", "", 12)
	if complete {
		c.TzID = sql.NullString{String: "123456789", Valid: true}
		c.OwnerAge = sql.NullInt64{Int64: 40, Valid: true}
		c.Gender = sql.NullString{String: "male", Valid: true}
		f.customers.details[c.ID] = &customer.CustomerDetails{
			CustomerID:  c.ID,
			NumChildren: sql.NullInt64{Int64: 2, Valid: true},
		}
	}
	return c
}

func meta(callID, phone string) call.Metadata {
	return call.Metadata{CallID: callID, PhoneNumber: phone}
}

func input(f *fixture, callID, phone, step, value string) ivr.Decision {
	return f.engine.HandleInput(context.Background(), meta(callID, phone), ivr.ParseStep(step), value)
}

func TestHandleEntryUnknownCallerOffersRegistration(t *testing.T) {
	f := newFixture()
	d := f.engine.HandleEntry(context.Background(), meta("c1", "0501111111"))
	if d.Kind != ivr.DecideOfferRegistration {
		t.Fatalf("expected registration offer, got %v", d.Kind)
	}
}

func TestHandleEntryExpiredSubscriptionOffersRenewal(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("0501111111", true)
	c.SubscriptionEndDate = sql.NullString{String: "2020-01-01", Valid: true}

	d := f.engine.HandleEntry(context.Background(), meta("c1", "0501111111"))
	if d.Kind != ivr.DecideRenewSubscription {
		t.Fatalf("expected renewal offer, got %v", d.Kind)
	}
}

func TestHandleEntryProfilePriority(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("0501111111", false)

	cases := []struct {
		name  string
		setup func()
		want  ivr.DecisionKind
	}{
		{"missing tz", func() {}, ivr.DecidePromptNationalID},
		{"missing age", func() {
			c.TzID = sql.NullString{String: "123456789", Valid: true}
		}, ivr.DecidePromptOwnerAge},
		{"missing gender", func() {
			c.OwnerAge = sql.NullInt64{Int64: 40, Valid: true}
		}, ivr.DecidePromptGender},
		{"missing details", func() {
			c.Gender = sql.NullString{String: "male", Valid: true}
		}, ivr.DecidePromptChildCount},
		{"complete", func() {
			f.customers.details[c.ID] = &customer.CustomerDetails{
				CustomerID:  c.ID,
				NumChildren: sql.NullInt64{Int64: 0, Valid: true},
			}
		}, ivr.DecideMainMenu},
	}

	for _, tc := range cases {
		tc.setup()
		d := f.engine.HandleEntry(context.Background(), meta("c1", "0501111111"))
		if d.Kind != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, d.Kind)
		}
	}
}

func TestHandleEntryAgeZeroCountsAsPresent(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("0501111111", true)
	c.OwnerAge = sql.NullInt64{Int64: 0, Valid: true}

	d := f.engine.HandleEntry(context.Background(), meta("c1", "0501111111"))
	if d.Kind != ivr.DecideMainMenu {
		t.Fatalf("expected main menu with a stored zero age, got %v", d.Kind)
	}
}

func TestRegistrationFlow(t *testing.T) {
	f := newFixture()

	d := input(f, "c1", "0501111111", "newCustomer", "1")
	if d.Kind != ivr.DecidePromptNationalID {
		t.Fatalf("expected national id prompt, got %v", d.Kind)
	}

	d = input(f, "c1", "0501111111", "newCustomerID", "123456789")
	if d.Kind != ivr.DecidePromptOwnerAge {
		t.Fatalf("expected owner age prompt after registration, got %v", d.Kind)
	}

	c, ok := f.customers.byPhone["0501111111"]
	if !ok {
		t.Fatal("customer was not created")
	}
	if !c.TzID.Valid || c.TzID.String != "123456789" {
		t.Fatalf("expected stored tz id 123456789, got %+v", c.TzID)
	}
}

func TestRegistrationDecline(t *testing.T) {
	f := newFixture()
	d := input(f, "c1", "0501111111", "newCustomer", "2")
	if d.Kind != ivr.DecideMainMenu {
		t.Fatalf("expected main menu, got %v", d.Kind)
	}
	if _, ok := f.customers.byPhone["0501111111"]; ok {
		t.Fatal("declining registration must not create a customer")
	}
}

func TestOwnerAgeValidation(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("0501111111", false)
	c.TzID = sql.NullString{String: "123456789", Valid: true}

	for _, bad := range []string{"13", "100", "abc", ""} {
		d := input(f, "c1", "0501111111", "ownerAge", bad)
		if d.Kind != ivr.DecidePromptOwnerAge {
			t.Fatalf("age %q: expected re-prompt, got %v", bad, d.Kind)
		}
		if c.OwnerAge.Valid {
			t.Fatalf("age %q must not be stored", bad)
		}
	}

	d := input(f, "c1", "0501111111", "ownerAge", "45")
	if d.Kind != ivr.DecidePromptGender {
		t.Fatalf("expected gender prompt after valid age, got %v", d.Kind)
	}
	if !c.OwnerAge.Valid || c.OwnerAge.Int64 != 45 {
		t.Fatalf("expected stored age 45, got %+v", c.OwnerAge)
	}
}

func TestDetailsWizard(t *testing.T) {
	f := newFixture()
	f.addCustomer("0501111111", true)

	d := input(f, "c1", "0501111111", "numChildren", "2")
	if d.Kind != ivr.DecidePromptChildBirthYear || d.ChildIndex != 1 {
		t.Fatalf("expected first birth year prompt, got %+v", d)
	}

	d = input(f, "c1", "0501111111", "child_birth_year_1", "2015")
	if d.Kind != ivr.DecidePromptChildBirthYear || d.ChildIndex != 2 {
		t.Fatalf("expected second birth year prompt, got %+v", d)
	}

	d = input(f, "c1", "0501111111", "child_birth_year_2", "2018")
	if d.Kind != ivr.DecidePromptSpouseWorkplaces || d.SpouseNum != 1 {
		t.Fatalf("expected first spouse prompt, got %+v", d)
	}

	d = input(f, "c1", "0501111111", "spouse1_workplaces", "2")
	if d.Kind != ivr.DecidePromptSpouseWorkplaces || d.SpouseNum != 2 {
		t.Fatalf("expected second spouse prompt, got %+v", d)
	}

	d = input(f, "c1", "0501111111", "spouse2_workplaces", "1")
	if d.Kind != ivr.DecideDetailsUpdated {
		t.Fatalf("expected details updated, got %v", d.Kind)
	}

	if len(f.customers.savedDetails) != 1 {
		t.Fatalf("expected one details write, got %d", len(f.customers.savedDetails))
	}
	saved := f.customers.savedDetails[0]
	if saved.numChildren != 2 || saved.birthYears != "[2015,2018]" || saved.spouse1 != 2 || saved.spouse2 != 1 {
		t.Fatalf("unexpected details write: %+v", saved)
	}
}

func TestDetailsWizardZeroChildren(t *testing.T) {
	f := newFixture()
	f.addCustomer("0501111111", true)

	d := input(f, "c1", "0501111111", "numChildren", "0")
	if d.Kind != ivr.DecidePromptSpouseWorkplaces || d.SpouseNum != 1 {
		t.Fatalf("expected spouse prompt straight away, got %+v", d)
	}

	input(f, "c1", "0501111111", "spouse1_workplaces", "1")
	d = input(f, "c1", "0501111111", "spouse2_workplaces", "0")
	if d.Kind != ivr.DecideDetailsUpdated {
		t.Fatalf("expected details updated, got %v", d.Kind)
	}
	if saved := f.customers.savedDetails[0]; saved.birthYears != "[]" {
		t.Fatalf("expected empty birth years array, got %q", saved.birthYears)
	}
}

func TestDetailsWizardRejectsBadValues(t *testing.T) {
	f := newFixture()
	f.addCustomer("0501111111", true)

	cases := []struct {
		step, value string
	}{
		{"numChildren", "21"},
		{"numChildren", "-1"},
		{"numChildren", "x"},
		{"child_birth_year_1", fmt.Sprint(fixedNow.Year() + 1)},
		{"child_birth_year_1", fmt.Sprint(fixedNow.Year() - 51)},
		{"spouse1_workplaces", "11"},
	}
	for _, tc := range cases {
		d := input(f, "c1", "0501111111", tc.step, tc.value)
		if d.Kind != ivr.DecideSystemError {
			t.Fatalf("%s=%s: expected system error, got %v", tc.step, tc.value, d.Kind)
		}
	}
}

func TestReceiptFlowSuccess(t *testing.T) {
	f := newFixture()
	f.addCustomer("0501111111", true)

	d := input(f, "c1", "0501111111", "mainMenu", "1")
	if d.Kind != ivr.DecidePromptReceiptAmount {
		t.Fatalf("expected amount prompt, got %v", d.Kind)
	}

	d = input(f, "c1", "0501111111", "receiptAmount", "150")
	if d.Kind != ivr.DecidePromptClientPhone {
		t.Fatalf("expected client phone prompt, got %v", d.Kind)
	}

	d = input(f, "c1", "0501111111", "clientPhone", "0502222222")
	if d.Kind != ivr.DecidePromptClientID {
		t.Fatalf("expected client id prompt, got %v", d.Kind)
	}

	d = input(f, "c1", "0501111111", "clientIdNumber", "987654321")
	if d.Kind != ivr.DecidePromptSaveContact {
		t.Fatalf("expected save contact prompt, got %v", d.Kind)
	}

	d = input(f, "c1", "0501111111", "saveContactChoice", "1")
	if d.Kind != ivr.DecidePromptDescription {
		t.Fatalf("expected description prompt, got %v", d.Kind)
	}
	if len(f.contacts.upserted) != 1 {
		t.Fatalf("expected one contact upsert, got %d", len(f.contacts.upserted))
	}
	if got := f.contacts.upserted[0].PhoneNumber; got != "0502222222" {
		t.Fatalf("contact saved with wrong phone %q", got)
	}

	d = input(f, "c1", "0501111111", "receiptDescription", "42")
	if d.Kind != ivr.DecideReceiptSuccess {
		t.Fatalf("expected receipt success, got %v", d.Kind)
	}
	if d.DocNum != "R-100" {
		t.Fatalf("expected provider doc num on the decision, got %q", d.DocNum)
	}

	if len(f.provider.calls) != 1 {
		t.Fatalf("expected one provider call, got %d", len(f.provider.calls))
	}
	req := f.provider.calls[0]
	if req.Amount != 150 || req.Description != "42" || req.ClientPhone != "0502222222" || req.ClientTz != "987654321" {
		t.Fatalf("unexpected provider request: %+v", req)
	}

	rec := f.receipts.rows[1]
	if rec.Status != receipt.StatusCompleted {
		t.Fatalf("expected completed receipt, got %q", rec.Status)
	}
	if !rec.ContactID.Valid {
		t.Fatal("expected the saved contact to be linked on the receipt")
	}
}

func TestReceiptDefaultDescription(t *testing.T) {
	f := newFixture()
	f.addCustomer("0501111111", true)

	input(f, "c1", "0501111111", "receiptAmount", "80")
	input(f, "c1", "0501111111", "clientPhone", "0502222222")
	input(f, "c1", "0501111111", "clientIdNumber", "")
	input(f, "c1", "0501111111", "saveContactChoice", "2")

	d := input(f, "c1", "0501111111", "receiptDescription", "NO_DESCRIPTION")
	if d.Kind != ivr.DecideReceiptSuccess {
		t.Fatalf("expected receipt success, got %v", d.Kind)
	}
	if got := f.provider.calls[0].Description; got != "קבלה" {
		t.Fatalf("expected default description, got %q", got)
	}
	if len(f.contacts.upserted) != 0 {
		t.Fatal("declining save-contact must not write a contact")
	}
}

func TestReceiptAmountSkip(t *testing.T) {
	f := newFixture()
	f.addCustomer("0501111111", true)

	d := input(f, "c1", "0501111111", "receiptAmount", "SKIP")
	if d.Kind != ivr.DecideMainMenu {
		t.Fatalf("expected main menu on skip, got %v", d.Kind)
	}
}

func TestReceiptInvalidAmount(t *testing.T) {
	f := newFixture()
	f.addCustomer("0501111111", true)

	for _, bad := range []string{"0", "-5", "abc"} {
		d := input(f, "c1", "0501111111", "receiptAmount", bad)
		if d.Kind != ivr.DecideInvalidAmount {
			t.Fatalf("amount %q: expected invalid amount menu, got %v", bad, d.Kind)
		}
	}

	d := input(f, "c1", "0501111111", "invalidAmount", "1")
	if d.Kind != ivr.DecidePromptReceiptAmount {
		t.Fatalf("expected amount re-prompt, got %v", d.Kind)
	}
	d = input(f, "c1", "0501111111", "invalidAmount", "0")
	if d.Kind != ivr.DecideMainMenu {
		t.Fatalf("expected main menu, got %v", d.Kind)
	}
}

func TestReceiptProviderBusinessFailure(t *testing.T) {
	f := newFixture()
	f.addCustomer("0501111111", true)
	f.provider.result = icount.Result{Status: false, Message: "invalid credentials"}

	input(f, "c1", "0501111111", "receiptAmount", "150")
	input(f, "c1", "0501111111", "clientPhone", "0502222222")
	input(f, "c1", "0501111111", "clientIdNumber", "")
	input(f, "c1", "0501111111", "saveContactChoice", "2")

	d := input(f, "c1", "0501111111", "receiptDescription", "7")
	if d.Kind != ivr.DecideReceiptFailed {
		t.Fatalf("expected receipt failed, got %v", d.Kind)
	}
	if rec := f.receipts.rows[1]; rec.Status != receipt.StatusFailed {
		t.Fatalf("expected failed receipt row, got %q", rec.Status)
	}

	d = input(f, "c1", "0501111111", "receiptFailed", "1")
	if d.Kind != ivr.DecidePromptReceiptAmount {
		t.Fatalf("expected retry prompt, got %v", d.Kind)
	}
}

func TestReceiptProviderTransportErrorRecordsFailure(t *testing.T) {
	f := newFixture()
	f.addCustomer("0501111111", true)
	f.provider.err = fmt.Errorf("connection refused")

	input(f, "c1", "0501111111", "receiptAmount", "150")
	input(f, "c1", "0501111111", "clientPhone", "0502222222")
	input(f, "c1", "0501111111", "clientIdNumber", "")
	input(f, "c1", "0501111111", "saveContactChoice", "2")

	d := input(f, "c1", "0501111111", "receiptDescription", "7")
	if d.Kind != ivr.DecideReceiptFailed {
		t.Fatalf("expected receipt failed, got %v", d.Kind)
	}
	if rec := f.receipts.rows[1]; rec.Status != receipt.StatusFailed {
		t.Fatalf("expected failed receipt row, got %q", rec.Status)
	}
}

func TestCancelReceipt(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("0501111111", true)

	rec := &receipt.Receipt{CustomerID: c.ID, Amount: 100, Status: receipt.StatusPending}
	f.receipts.Create(context.Background(), rec)
	f.receipts.Finalize(context.Background(), rec.ID,
		sql.NullString{String: "D1", Valid: true},
		sql.NullString{String: "R-100", Valid: true},
		"{}", receipt.StatusCompleted,
	)

	d := input(f, "c1", "0501111111", "cancelReceiptId", "R-100")
	if d.Kind != ivr.DecideReceiptCancelled || d.DocNum != "R-100" {
		t.Fatalf("expected cancellation, got %+v", d)
	}
	if got := f.receipts.rows[rec.ID].Status; got != receipt.StatusCancelled {
		t.Fatalf("expected cancelled row, got %q", got)
	}

	// cancelling again succeeds without another state change
	d = input(f, "c1", "0501111111", "cancelReceiptId", "R-100")
	if d.Kind != ivr.DecideReceiptCancelled {
		t.Fatalf("expected idempotent cancellation, got %v", d.Kind)
	}

	d = input(f, "c1", "0501111111", "cancelReceiptId", "R-999")
	if d.Kind != ivr.DecideReceiptNotFound {
		t.Fatalf("expected not found, got %v", d.Kind)
	}
}

func TestRenewalChoiceExtendsSubscription(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("0501111111", true)
	c.SubscriptionEndDate = sql.NullString{String: "2020-01-01", Valid: true}

	d := input(f, "c1", "0501111111", "renewSubscription", "1")
	if d.Kind != ivr.DecideSubscriptionRenewed {
		t.Fatalf("expected renewal confirmation, got %v", d.Kind)
	}
	want := fixedNow.AddDate(0, 12, 0).Format("2006-01-02")
	if c.SubscriptionEndDate.String != want {
		t.Fatalf("expected end date %s, got %s", want, c.SubscriptionEndDate.String)
	}
	if !c.SubscriptionActive(fixedNow) {
		t.Fatal("subscription must be active after renewal")
	}
}

func TestCustomerMessageSaved(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("0501111111", true)

	d := input(f, "c1", "0501111111", "customerMessage", "message_20260828.wav")
	if d.Kind != ivr.DecideMessageReceived {
		t.Fatalf("expected message received, got %v", d.Kind)
	}
	if len(f.messages.saved) != 1 {
		t.Fatalf("expected one saved message, got %d", len(f.messages.saved))
	}
	msg := f.messages.saved[0]
	if msg.CustomerID != c.ID || msg.MessageFile != "message_20260828.wav" || msg.Status != call.MessageStatusNew {
		t.Fatalf("unexpected message row: %+v", msg)
	}
}

func TestAnnualReportRequest(t *testing.T) {
	f := newFixture()
	c := f.addCustomer("0501111111", true)

	d := input(f, "c1", "0501111111", "mainMenu", "6")
	if d.Kind != ivr.DecideAnnualReportOffer {
		t.Fatalf("expected report offer, got %v", d.Kind)
	}

	d = input(f, "c1", "0501111111", "annualReport", "1")
	if d.Kind != ivr.DecideReportRequested {
		t.Fatalf("expected report requested, got %v", d.Kind)
	}
	if len(f.reports.upserts) != 1 || f.reports.upserts[0].customerID != c.ID || f.reports.upserts[0].year != fixedNow.Year() {
		t.Fatalf("unexpected report upserts: %+v", f.reports.upserts)
	}

	d = input(f, "c1", "0501111111", "annualReport", "0")
	if d.Kind != ivr.DecideMainMenu {
		t.Fatalf("expected main menu on decline, got %v", d.Kind)
	}
}

func TestMainMenuRouting(t *testing.T) {
	f := newFixture()
	f.addCustomer("0501111111", true)

	cases := map[string]ivr.DecisionKind{
		"1": ivr.DecidePromptReceiptAmount,
		"2": ivr.DecidePromptCancelReceiptID,
		"3": ivr.DecidePromptChildCount,
		"4": ivr.DecideBenefits,
		"6": ivr.DecideAnnualReportOffer,
		"0": ivr.DecideMainMenu,
		"9": ivr.DecideMainMenu,
	}
	for choice, want := range cases {
		d := input(f, "c1", "0501111111", "mainMenu", choice)
		if d.Kind != want {
			t.Fatalf("choice %q: expected %v, got %v", choice, want, d.Kind)
		}
	}

	d := input(f, "c1", "0501111111", "mainMenu", "5")
	if d.Kind != ivr.DecidePromptMessage {
		t.Fatalf("choice 5: expected message prompt, got %v", d.Kind)
	}
	if d.FileName == "" {
		t.Fatal("message prompt must carry a recording file name")
	}
}

func TestUnknownStepFallsBackToMainMenu(t *testing.T) {
	f := newFixture()
	d := input(f, "c1", "0501111111", "bogusStep", "1")
	if d.Kind != ivr.DecideMainMenu {
		t.Fatalf("expected main menu fallback, got %v", d.Kind)
	}
}
