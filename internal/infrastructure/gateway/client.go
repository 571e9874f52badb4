// Package gateway holds the charging backends: an HTTP client for a real
// provider and a simulated one for local runs.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/application"
	"github.com/DanielPopoola/ficmart-payment-pipeline/internal/config"
)

type HTTPGatewayClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(cfg config.GatewayConfig) *HTTPGatewayClient {
	return &HTTPGatewayClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

type chargeBody struct {
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

type chargeResponse struct {
	Status string `json:"status"`
}

func (c *HTTPGatewayClient) Charge(ctx context.Context, req application.ChargeRequest) error {
	url := fmt.Sprintf("%s/api/v1/charges", c.baseURL)

	jsonData, err := json.Marshal(chargeBody{
		PaymentID: req.PaymentID.String(),
		Amount:    req.AmountCents,
		Currency:  req.Currency,
	})
	if err != nil {
		return fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var gwErr GatewayErrorResponse
		if err := json.Unmarshal(body, &gwErr); err != nil {
			return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
		}
		return &GatewayError{
			Code:       gwErr.Err,
			Message:    gwErr.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var chargeResp chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&chargeResp); err != nil {
		return fmt.Errorf("error decoding json response: %w", err)
	}

	if chargeResp.Status != "succeeded" {
		return &GatewayError{
			Code:       "CHARGE_DECLINED",
			Message:    fmt.Sprintf("charge ended in status %q", chargeResp.Status),
			StatusCode: resp.StatusCode,
		}
	}

	return nil
}
