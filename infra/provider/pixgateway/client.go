// Package pixgateway initiates pix transfers through an HTTP payout gateway
// and verifies its HMAC-signed callbacks.
package pixgateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/provider/payment"
)

// Client implements payment.PayoutProvider.
type Client struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	httpClient    *http.Client
	logger        *slog.Logger
}

// New creates a Client from cfg.
func New(cfg *config.PixGateway, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.ApiKey,
		webhookSecret: cfg.WebhookSecret,
		httpClient:    &http.Client{Timeout: cfg.HTTPTimeout},
		logger:        logger,
	}
}

type transferRequest struct {
	ExternalID  string `json:"external_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	PixKey      string `json:"pix_key"`
	PixKeyType  string `json:"pix_key_type"`
	Description string `json:"description,omitempty"`
}

type transferResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// InitiatePayout posts a transfer. The withdrawal id is sent as both the
// external id and the Idempotency-Key header, so a retried call never pays twice.
func (c *Client) InitiatePayout(
	ctx context.Context,
	params *payment.InitiatePayoutParams,
) (*payment.InitiatePayoutResponse, error) {
	log := c.logger.With("handler", "pixgateway.InitiatePayout", "withdrawal_id", params.WithdrawalID)
	if c.baseURL == "" {
		return nil, domain.ErrServiceUnavailable
	}
	currency := params.Currency
	if currency == "" {
		currency = "BRL"
	}
	body, err := json.Marshal(transferRequest{
		ExternalID:  params.WithdrawalID.String(),
		Amount:      params.Amount,
		Currency:    currency,
		PixKey:      params.PixKey,
		PixKeyType:  params.PixKeyType,
		Description: params.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", params.WithdrawalID.String())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("transfer request failed", "error", err)
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error("gateway rejected transfer", "status", resp.StatusCode, "body", string(msg))
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(msg))
	}

	var out transferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.ID == "" {
		return nil, fmt.Errorf("gateway response missing transfer id")
	}
	log.Info("✅ transfer accepted", "transfer_id", out.ID, "raw_status", out.Status)
	return &payment.InitiatePayoutResponse{
		TransferID: out.ID,
		Status:     payment.MapStatus(out.Status),
		RawStatus:  out.Status,
	}, nil
}

type callback struct {
	EventID    string `json:"event_id"`
	TransferID string `json:"transfer_id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
	Reason     string `json:"reason"`
}

// Sign returns the hex HMAC-SHA256 of payload under secret, as sent in the
// X-Signature header.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// HandleWebhook verifies signature and decodes a transfer status callback.
func (c *Client) HandleWebhook(
	_ context.Context,
	payload []byte,
	signature string,
) (*payment.PaymentEvent, error) {
	if c.webhookSecret == "" {
		return nil, domain.ErrServiceUnavailable
	}
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed signature", domain.ErrUnauthorized)
	}
	want, _ := hex.DecodeString(Sign(c.webhookSecret, payload))
	if !hmac.Equal(got, want) {
		c.logger.Warn("pix callback signature mismatch")
		return nil, domain.ErrUnauthorized
	}

	var cb callback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if cb.EventID == "" || cb.TransferID == "" {
		return nil, domain.ErrValidation
	}
	meta := map[string]string{"withdrawal_id": cb.ExternalID}
	if cb.Reason != "" {
		meta["reason"] = cb.Reason
	}
	return &payment.PaymentEvent{
		ID:        cb.EventID,
		Reference: cb.TransferID,
		Status:    payment.MapStatus(cb.Status),
		RawStatus: cb.Status,
		Amount:    cb.Amount,
		Metadata:  meta,
	}, nil
}

var _ payment.PayoutProvider = (*Client)(nil)
