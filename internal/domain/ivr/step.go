package ivr

import (
	"strconv"
	"strings"
)

// StepKind is the closed set of input steps the PBX can report. String
// step names arriving on the wire are mapped through ParseStep; anything
// outside the set becomes StepUnknown and routes to the main menu.
type StepKind int

const (
	StepUnknown StepKind = iota
	StepNewCustomer
	StepNewCustomerID
	StepRenewSubscription
	StepMainMenu
	StepOwnerAge
	StepGender
	StepNumChildren
	StepChildBirthYear
	StepSpouse1Workplaces
	StepSpouse2Workplaces
	StepCustomerMessage
	StepAnnualReport
	StepReceiptAmount
	StepInvalidAmount
	StepClientPhone
	StepClientID
	StepSaveContactChoice
	StepReceiptDescription
	StepReceiptFailed
	StepCancelReceiptID
)

// Step is a parsed input step. ChildIndex is only meaningful for
// StepChildBirthYear (1-based).
type Step struct {
	Kind       StepKind
	Name       string
	ChildIndex int
}

const childBirthYearPrefix = "child_birth_year_"

var stepNames = map[string]StepKind{
	"newCustomer":        StepNewCustomer,
	"newCustomerID":      StepNewCustomerID,
	"renewSubscription":  StepRenewSubscription,
	"mainMenu":           StepMainMenu,
	"ownerAge":           StepOwnerAge,
	"gender":             StepGender,
	"numChildren":        StepNumChildren,
	"spouse1_workplaces": StepSpouse1Workplaces,
	"spouse2_workplaces": StepSpouse2Workplaces,
	"customerMessage":    StepCustomerMessage,
	"annualReport":       StepAnnualReport,
	"receiptAmount":      StepReceiptAmount,
	"invalidAmount":      StepInvalidAmount,
	"clientPhone":        StepClientPhone,
	"clientIdNumber":     StepClientID,
	"saveContactChoice":  StepSaveContactChoice,
	"receiptDescription": StepReceiptDescription,
	"receiptFailed":      StepReceiptFailed,
	"cancelReceiptId":    StepCancelReceiptID,
}

// KnownStepNames lists every recognized wire name, used when the PBX sends
// the value under a field name instead of the menu name.
func KnownStepNames() []string {
	names := make([]string, 0, len(stepNames))
	for name := range stepNames {
		names = append(names, name)
	}
	return names
}

// ParseStep maps a wire step name to its Step.
func ParseStep(name string) Step {
	if kind, ok := stepNames[name]; ok {
		return Step{Kind: kind, Name: name}
	}
	if idx, ok := strings.CutPrefix(name, childBirthYearPrefix); ok {
		if n, err := strconv.Atoi(idx); err == nil && n > 0 {
			return Step{Kind: StepChildBirthYear, Name: name, ChildIndex: n}
		}
	}
	return Step{Kind: StepUnknown, Name: name}
}

// ChildBirthYearStep builds the wire name for the n-th child prompt.
func ChildBirthYearStep(n int) string {
	return childBirthYearPrefix + strconv.Itoa(n)
}
