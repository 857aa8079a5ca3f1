package icount

import "context"

// Request is the create-receipt payload sent to the provider.
type Request struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	ClientPhone string `json:"client_phone,omitempty"`
	ClientTz    string `json:"client_tz,omitempty"`
}

// Result is the provider's answer. Status false means the document was not
// issued; Message carries the provider's explanation either way.
type Result struct {
	Status  bool   `json:"status"`
	DocID   string `json:"doc_id,omitempty"`
	DocNum  string `json:"doc_num,omitempty"`
	Message string `json:"message"`
}

// Provider is the narrow contract to the external receipt issuer. The
// engine owns the receipt-row lifecycle; a failed call must leave no
// engine-visible side effects beyond the recorded failure.
type Provider interface {
	CreateReceipt(ctx context.Context, req Request) (Result, error)
}
