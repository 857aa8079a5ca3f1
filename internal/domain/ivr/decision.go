package ivr

// DecisionKind enumerates every next-menu decision the engine can emit.
type DecisionKind int

const (
	// Profile flow
	DecideOfferRegistration DecisionKind = iota
	DecidePromptNationalID
	DecidePromptOwnerAge
	DecidePromptGender
	DecideRegistrationFailed

	// Details sub-flow
	DecidePromptChildCount
	DecidePromptChildBirthYear // ChildIndex set
	DecidePromptSpouseWorkplaces // SpouseNum set
	DecideDetailsUpdated

	// Receipt flow
	DecidePromptReceiptAmount
	DecideInvalidAmount
	DecidePromptClientPhone
	DecidePromptClientID
	DecidePromptSaveContact
	DecidePromptDescription
	DecideReceiptSuccess // DocNum set
	DecideReceiptFailed
	DecidePromptCancelReceiptID
	DecideReceiptCancelled // DocNum set
	DecideReceiptNotFound

	// Top-level menus
	DecideAnnualReportOffer
	DecideMainMenu
	DecideRenewSubscription
	DecideSubscriptionRenewed
	DecideBenefits
	DecidePromptMessage // FileName set
	DecideMessageReceived
	DecideReportRequested
	DecideInvalidChoice
	DecideSystemError
)

// Decision is what the engine hands to the menu builder. It carries no
// menu wording, only the outcome and its parameters.
type Decision struct {
	Kind       DecisionKind
	ChildIndex int    // 1-based child cursor for birth-year prompts
	SpouseNum  int    // 1 or 2 for workplace prompts
	DocNum     string // provider document number for receipt menus
	FileName   string // recording file name for the message prompt
}
