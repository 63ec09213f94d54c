package checkout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"paylands-gateway/internal/payment"
)

// Shape tells which protocol version a callback payload was written in.
type Shape string

const (
	// ShapeFlat: {"order_id", "transaction_id", "response_code", "response_msg"}.
	ShapeFlat Shape = "flat"
	// ShapeNested: {"order": {"customer", "uuid", "transactions": [{"status", "error"}]}}.
	ShapeNested Shape = "nested"
)

const successStatus = "SUCCESS"

// ReconciliationInput is a callback payload normalized from either shape.
// Empty strings mean the field was absent; nothing here is trusted until the
// reconciler has matched it against local records.
type ReconciliationInput struct {
	Shape         Shape
	OrderRef      string
	TransactionID string
	HasStatus     bool
	Success       bool
	Code          string
	Message       string
}

// ParsePayload decodes raw callback JSON and resolves its shape. It only fails
// when the body is empty or not a JSON object; missing fields are reported by
// the reconciler in the order it checks them.
func ParsePayload(raw []byte) (*ReconciliationInput, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: no response returned", payment.ErrInvalidResponse)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidResponse, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: no response returned", payment.ErrInvalidResponse)
	}

	if order, ok := body["order"].(map[string]any); ok {
		return parseNested(order), nil
	}
	return parseFlat(body), nil
}

func parseFlat(body map[string]any) *ReconciliationInput {
	in := &ReconciliationInput{
		Shape:         ShapeFlat,
		OrderRef:      scalar(body["order_id"]),
		TransactionID: scalar(body["transaction_id"]),
		Message:       scalar(body["response_msg"]),
	}

	code := scalar(body["response_code"])
	if code == "" {
		return in
	}
	in.HasStatus = true
	in.Code = code

	n, err := strconv.ParseInt(code, 10, 64)
	in.Success = err == nil && n == 0
	return in
}

func parseNested(order map[string]any) *ReconciliationInput {
	in := &ReconciliationInput{
		Shape:         ShapeNested,
		OrderRef:      scalar(order["customer"]),
		TransactionID: scalar(order["uuid"]),
	}

	transactions, _ := order["transactions"].([]any)
	if len(transactions) == 0 {
		return in
	}

	// The last transaction carries the current outcome.
	last, _ := transactions[len(transactions)-1].(map[string]any)
	status := scalar(last["status"])
	if status == "" {
		return in
	}

	// The nested shape has no message field; the decline is reported by its
	// error code, falling back to the status.
	in.HasStatus = true
	in.Success = status == successStatus
	in.Code = scalar(last["error"])
	if in.Code == "" {
		in.Code = status
	}
	return in
}

// scalar renders a JSON string or number as a string; anything else is absent.
func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	}
	return ""
}
