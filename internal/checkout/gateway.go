package checkout

import (
	"context"

	"paylands-gateway/internal/paylands"
	"paylands-gateway/internal/payment"
)

const (
	CheckoutPath = "/payment/paylands/checkout"
	NotifyPath   = "/payment/paylands/notify"
	ReturnPath   = "/payment/paylands/return"
	CancelPath   = "/payment/paylands/cancel"
)

// Gateway is the remote payment client. *paylands.Client implements it.
type Gateway interface {
	Config() paylands.Config
	CreatePayment(ctx context.Context, req paylands.PaymentRequest) (*paylands.InitiationResponse, error)
	GetOrder(ctx context.Context, remoteID string) ([]byte, error)
	RedirectURL(token, locale string) string
}

// RemoteSession is the outcome of opening a payment at Paylands.
type RemoteSession struct {
	TransactionUUID string
	RedirectToken   string
	RedirectURL     string
}

type CallbackURLs struct {
	Notify string
	Return string
	Cancel string
}

// URLGenerator produces the public callback endpoints for an order.
type URLGenerator interface {
	CallbackURLs(ctx context.Context, order *payment.Order) (CallbackURLs, error)
}
