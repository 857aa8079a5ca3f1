package icount

import (
	"context"
	"fmt"
	"time"
)

// MockProvider issues fake documents for debug deployments, selected by
// the ICOUNT_MOCK flag.
type MockProvider struct {
	prefix string
}

func NewMockProvider(prefix string) *MockProvider {
	if prefix == "" {
		prefix = "DBG"
	}
	return &MockProvider{prefix: prefix}
}

func (m *MockProvider) CreateReceipt(_ context.Context, _ Request) (Result, error) {
	now := time.Now().Format("20060102150405")
	return Result{
		Status:  true,
		DocID:   fmt.Sprintf("%s_DOC_%s", m.prefix, now),
		DocNum:  fmt.Sprintf("%s-R%s", m.prefix, now[len(now)-8:]),
		Message: "Mock receipt created (debug mode)",
	}, nil
}
