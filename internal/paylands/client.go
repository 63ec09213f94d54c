package paylands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"paylands-gateway/internal/logger"
	"paylands-gateway/internal/payment"

	"go.uber.org/zap"
)

type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a client for one gateway configuration. A nil httpClient
// gets a client bounded by the configured timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.timeout(),
		}
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

func (c *Client) Config() Config {
	return c.cfg
}

// ----------------- CreatePayment -----------------

// CreatePayment signs the request with the gateway credentials and opens a
// payment session. The returned response has already been validated.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*InitiationResponse, error) {
	if err := RequireCredentials(c.cfg); err != nil {
		return nil, err
	}

	req.Service = c.cfg.Service
	req.Signature = c.cfg.Signature
	if req.Operative == "" {
		req.Operative = c.cfg.operative()
	}
	if req.TemplateUUID == "" {
		req.TemplateUUID = c.cfg.TemplateUUID
	}

	log := logger.FromCtx(ctx).With(
		zap.String("customer_ext_id", req.CustomerExtID),
		zap.Int64("amount", req.Amount),
		zap.String("mode", string(c.cfg.Mode)),
	)

	jsonBody, err := json.Marshal(req)
	if err != nil {
		log.Error("Failed to marshal payment request", zap.Error(err))
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint()+"/payment", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}
	c.authorize(httpReq)

	log.Info("Sending payment request to Paylands")

	status, body, err := c.do(httpReq)
	if err != nil {
		log.Error("Paylands request failed", zap.Error(err))
		return nil, err
	}

	var res InitiationResponse
	if err := json.Unmarshal(body, &res); err != nil {
		log.Error("Failed decoding Paylands response",
			zap.Int("http_status", status),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidResponse, err)
	}

	if err := res.Validate(); err != nil {
		log.Warn("Paylands rejected payment request",
			zap.Int("http_status", status),
			zap.ByteString("response", body),
			zap.Error(err),
		)
		return nil, err
	}

	log.Info("Paylands payment created", zap.String("remote_id", res.RemoteID()))
	return &res, nil
}

// ----------------- GetOrder -----------------

// GetOrder fetches the remote order with its transactions. The raw body is
// returned so it can be reconciled like a notification.
func (c *Client) GetOrder(ctx context.Context, remoteID string) ([]byte, error) {
	if err := RequireCredentials(c.cfg); err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(zap.String("remote_id", remoteID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint()+"/order/"+url.PathEscape(remoteID), nil)
	if err != nil {
		log.Error("Failed building request", zap.Error(err))
		return nil, err
	}
	c.authorize(httpReq)

	status, body, err := c.do(httpReq)
	if err != nil {
		log.Error("Request to Paylands failed", zap.Error(err))
		return nil, err
	}

	if status >= http.StatusBadRequest {
		log.Error("Paylands returned error",
			zap.Int("http_status", status),
			zap.ByteString("response", body),
		)
		return nil, fmt.Errorf("%w: order lookup returned HTTP %d", payment.ErrInvalidResponse, status)
	}

	return body, nil
}

// RedirectURL is where the buyer is sent for a v1 payment token.
func (c *Client) RedirectURL(token, locale string) string {
	u := c.cfg.Endpoint() + "/payment/process/" + url.PathEscape(token)
	if locale != "" {
		u += "?" + url.Values{"lang": {locale}}.Encode()
	}
	return u
}

func (c *Client) authorize(req *http.Request) {
	req.SetBasicAuth(c.cfg.APIKey, "")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("paylands request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read paylands response: %w", err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return resp.StatusCode, nil, fmt.Errorf("%w: no response returned", payment.ErrInvalidResponse)
	}
	return resp.StatusCode, body, nil
}
