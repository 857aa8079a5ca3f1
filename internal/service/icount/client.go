package icount

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ivr-service/internal/config"
)

// Client talks to the real iCount invoicing API. Non-2xx answers and
// transport failures surface as errors; a well-formed answer with
// status=false is a business failure, not an error.
type Client struct {
	cfg  config.ICountConfig
	http *http.Client
}

func NewClient(cfg config.ICountConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type createReceiptRequest struct {
	CompanyID   string `json:"cid"`
	Username    string `json:"user"`
	Password    string `json:"pass"`
	DocType     string `json:"doctype"`
	ClientName  string `json:"client_name,omitempty"`
	ClientPhone string `json:"client_phone,omitempty"`
	ClientTz    string `json:"client_id,omitempty"`
	Description string `json:"description"`
	Sum         int64  `json:"sum"`
}

type createReceiptResponse struct {
	Status bool   `json:"status"`
	DocID  string `json:"docnum_id"`
	DocNum string `json:"docnum"`
	Reason string `json:"reason"`
}

func (c *Client) CreateReceipt(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(createReceiptRequest{
		CompanyID:   c.cfg.CompanyID,
		Username:    c.cfg.Username,
		Password:    c.cfg.Password,
		DocType:     "receipt",
		ClientPhone: req.ClientPhone,
		ClientTz:    req.ClientTz,
		Description: req.Description,
		Sum:         req.Amount,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal receipt request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/doc/create", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build receipt request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("receipt provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("receipt provider returned HTTP %d", resp.StatusCode)
	}

	var out createReceiptResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("failed to decode provider response: %w", err)
	}

	result := Result{
		Status:  out.Status,
		DocID:   out.DocID,
		DocNum:  out.DocNum,
		Message: out.Reason,
	}
	if result.Status && result.Message == "" {
		result.Message = "receipt created"
	}
	return result, nil
}
