package paylands

import (
	"encoding/json"
	"fmt"

	"paylands-gateway/internal/payment"
)

// PaymentRequest is the body of POST {endpoint}/payment.
type PaymentRequest struct {
	Operative     string `json:"operative"`
	Service       string `json:"service"`
	Signature     string `json:"signature"`
	Amount        int64  `json:"amount"`
	CustomerExtID string `json:"customer_ext_id"`
	Additional    string `json:"additional,omitempty"`
	Description   string `json:"description"`
	Secure        bool   `json:"secure"`
	URLPost       string `json:"url_post"`
	URLOk         string `json:"url_ok"`
	URLKo         string `json:"url_ko"`
	TemplateUUID  string `json:"template_uuid,omitempty"`
}

type Version string

const (
	// VersionV1 answers with {code, message, order:{uuid, token}}.
	VersionV1 Version = "v1"
	// VersionLegacy answers with {response_code, response_msg, payment_url, transaction_id}.
	VersionLegacy Version = "legacy"
)

type initiatedOrder struct {
	UUID  string `json:"uuid"`
	Token string `json:"token"`
}

// InitiationResponse holds both protocol versions of the payment creation
// answer. Which one the server spoke is decided by the status code field
// present in the body.
type InitiationResponse struct {
	Code    *json.Number    `json:"code"`
	Message string          `json:"message"`
	Order   *initiatedOrder `json:"order"`

	ResponseCode  *json.Number `json:"response_code"`
	ResponseMsg   string       `json:"response_msg"`
	PaymentURL    string       `json:"payment_url"`
	TransactionID string       `json:"transaction_id"`
}

func (r *InitiationResponse) Version() (Version, error) {
	switch {
	case r.Code != nil:
		return VersionV1, nil
	case r.ResponseCode != nil:
		return VersionLegacy, nil
	}
	return "", fmt.Errorf("%w: no response code", payment.ErrInvalidResponse)
}

// Validate applies the success predicate of the detected protocol version
// and checks that the fields needed for the redirect are present.
func (r *InitiationResponse) Validate() error {
	version, err := r.Version()
	if err != nil {
		return err
	}

	switch version {
	case VersionV1:
		if code, err := r.Code.Int64(); err != nil || code != 200 {
			return fmt.Errorf("%w: invalid request: %s", payment.ErrInvalidResponse, r.Message)
		}
		if r.Order == nil || r.Order.UUID == "" {
			return fmt.Errorf("%w: no order uuid", payment.ErrInvalidResponse)
		}
		if r.Order.Token == "" {
			return fmt.Errorf("%w: no payment token", payment.ErrInvalidResponse)
		}
	case VersionLegacy:
		if code, err := r.ResponseCode.Int64(); err != nil || code != 0 {
			return fmt.Errorf("%w: invalid request: %s", payment.ErrInvalidResponse, r.ResponseMsg)
		}
		if r.PaymentURL == "" {
			return fmt.Errorf("%w: no payment_url", payment.ErrInvalidResponse)
		}
		if r.TransactionID == "" {
			return fmt.Errorf("%w: no transaction_id", payment.ErrInvalidResponse)
		}
	}
	return nil
}

// RemoteID is the server issued identifier later used to correlate callbacks.
func (r *InitiationResponse) RemoteID() string {
	if r.Order != nil && r.Code != nil {
		return r.Order.UUID
	}
	return r.TransactionID
}

func (r *InitiationResponse) Token() string {
	if r.Order == nil {
		return ""
	}
	return r.Order.Token
}
