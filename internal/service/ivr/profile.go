package ivr

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"ivr-service/internal/domain/ivr"
	xerrors "ivr-service/internal/pkg/errors"
	"ivr-service/internal/pkg/session"

	"go.uber.org/zap"
)

// processNewCustomerChoice handles the registration offer: 1 starts digit
// collection, anything else returns to the main menu.
func (e *Engine) processNewCustomerChoice(choice string) ivr.Decision {
	if choice == "1" {
		return ivr.Decision{Kind: ivr.DecidePromptNationalID}
	}
	return ivr.Decision{Kind: ivr.DecideMainMenu}
}

// processNewCustomerID registers the caller (if unknown) and stores the
// entered national id, then re-enters the profile chain.
func (e *Engine) processNewCustomerID(ctx context.Context, s *session.Session, tz string) ivr.Decision {
	phone := s.Field("PBXphone")
	if phone == "" {
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}

	cust, err := e.customers.GetByPhone(ctx, phone)
	if errors.Is(err, xerrors.ErrNotFound) {
		cust, err = e.customers.Create(ctx, phone, "", "", e.cfg.SubscriptionMonths)
	}
	if err != nil {
		e.logger.Error("registration failed", zap.String("phone", phone), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideRegistrationFailed}
	}

	if _, err := e.customers.UpdateProfile(ctx, cust.ID, map[string]any{"tz_id": tz}); err != nil {
		e.logger.Error("registration failed", zap.Int64("customer_id", cust.ID), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideRegistrationFailed}
	}

	return e.requireProfileOrMain(ctx, phone)
}

// processOwnerAge stores a valid age. An out-of-range or unparsable value
// writes nothing; re-entering the profile chain then re-asks for age.
func (e *Engine) processOwnerAge(ctx context.Context, s *session.Session, value string) ivr.Decision {
	phone := s.Field("PBXphone")

	age, err := strconv.Atoi(value)
	if err != nil || age < 14 || age > 99 {
		e.logger.Warn("invalid owner age input", zap.String("value", value))
		return e.requireProfileOrMain(ctx, phone)
	}

	cust, err := e.customers.GetByPhone(ctx, phone)
	if err == nil {
		if _, err := e.customers.UpdateProfile(ctx, cust.ID, map[string]any{"owner_age": age}); err != nil {
			e.logger.Error("failed to store owner age", zap.Int64("customer_id", cust.ID), zap.Error(err))
		}
	}
	return e.requireProfileOrMain(ctx, phone)
}

// processGender stores the binary gender choice; anything but 1 or 2 is
// ignored and the profile chain re-asks.
func (e *Engine) processGender(ctx context.Context, s *session.Session, choice string) ivr.Decision {
	phone := s.Field("PBXphone")

	var gender string
	switch choice {
	case "1":
		gender = "male"
	case "2":
		gender = "female"
	}

	if gender != "" {
		if cust, err := e.customers.GetByPhone(ctx, phone); err == nil {
			if _, err := e.customers.UpdateProfile(ctx, cust.ID, map[string]any{"gender": gender}); err != nil {
				e.logger.Error("failed to store gender", zap.Int64("customer_id", cust.ID), zap.Error(err))
			}
		}
	}
	return e.requireProfileOrMain(ctx, phone)
}

// processRenewalChoice extends the subscription window from today when the
// caller confirms renewal.
func (e *Engine) processRenewalChoice(ctx context.Context, s *session.Session, choice string) ivr.Decision {
	if choice != "1" {
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}

	cust, err := e.callerByPhone(ctx, s)
	if err != nil {
		return ivr.Decision{Kind: ivr.DecideMainMenu}
	}

	start := e.now().Format("2006-01-02")
	end := e.now().AddDate(0, e.cfg.SubscriptionMonths, 0).Format("2006-01-02")
	if _, err := e.customers.UpdateProfile(ctx, cust.ID, map[string]any{
		"subscription_start_date": start,
		"subscription_end_date":   end,
	}); err != nil {
		e.logger.Error("subscription renewal failed", zap.Int64("customer_id", cust.ID), zap.Error(err))
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}
	return ivr.Decision{Kind: ivr.DecideSubscriptionRenewed}
}

// --- details wizard ---

// processChildrenCount starts the details wizard. Validation failures here
// and below abort to the main menu via the system-error decision; there is
// deliberately no retry loop in this sub-flow.
func (e *Engine) processChildrenCount(ctx context.Context, s *session.Session, value string) ivr.Decision {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || n > 20 {
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	s.ChildrenCount = n
	s.CurrentChild = 1
	s.ChildrenBirthYears = nil
	if err := e.sessions.Save(ctx, s); err != nil {
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	if n == 0 {
		return ivr.Decision{Kind: ivr.DecidePromptSpouseWorkplaces, SpouseNum: 1}
	}
	return ivr.Decision{Kind: ivr.DecidePromptChildBirthYear, ChildIndex: 1}
}

// processChildBirthYear accepts one birth year per step, advancing the
// cursor until exactly ChildrenCount years are collected.
func (e *Engine) processChildBirthYear(ctx context.Context, s *session.Session, value string) ivr.Decision {
	year, err := strconv.Atoi(value)
	currentYear := e.now().Year()
	if err != nil || year < currentYear-50 || year > currentYear {
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	s.ChildrenBirthYears = append(s.ChildrenBirthYears, year)
	if s.CurrentChild < s.ChildrenCount {
		s.CurrentChild++
		if err := e.sessions.Save(ctx, s); err != nil {
			return ivr.Decision{Kind: ivr.DecideSystemError}
		}
		return ivr.Decision{Kind: ivr.DecidePromptChildBirthYear, ChildIndex: s.CurrentChild}
	}

	if err := e.sessions.Save(ctx, s); err != nil {
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}
	return ivr.Decision{Kind: ivr.DecidePromptSpouseWorkplaces, SpouseNum: 1}
}

// processSpouseWorkplaces collects the workplace count for one spouse.
// After spouse 2 the accumulated wizard data is persisted in one write.
func (e *Engine) processSpouseWorkplaces(ctx context.Context, s *session.Session, spouseNum int, value string) ivr.Decision {
	count, err := strconv.Atoi(value)
	if err != nil || count < 0 || count > 10 {
		return ivr.Decision{Kind: ivr.DecideSystemError}
	}

	if spouseNum == 1 {
		return ivr.Decision{Kind: ivr.DecidePromptSpouseWorkplaces, SpouseNum: 2}
	}

	if cust, err := e.callerByPhone(ctx, s); err == nil {
		years := s.ChildrenBirthYears
		if years == nil {
			years = []int{}
		}
		yearsJSON, err := json.Marshal(years)
		if err != nil {
			return ivr.Decision{Kind: ivr.DecideSystemError}
		}
		spouse1, _ := strconv.Atoi(s.Field("spouse1_workplaces"))
		if err := e.customers.UpdateDetails(ctx, cust.ID, s.ChildrenCount, string(yearsJSON), spouse1, count); err != nil {
			e.logger.Error("failed to persist customer details", zap.Int64("customer_id", cust.ID), zap.Error(err))
			return ivr.Decision{Kind: ivr.DecideSystemError}
		}
	}
	return ivr.Decision{Kind: ivr.DecideDetailsUpdated}
}
