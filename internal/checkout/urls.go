package checkout

import (
	"context"
	"net/url"
	"strings"

	"paylands-gateway/internal/payment"
)

type StateIssuer interface {
	Issue(orderID string) (string, error)
}

// PublicURLs builds callback URLs under the public base URL of the service.
// Buyer facing URLs carry a signed state token naming the order.
type PublicURLs struct {
	baseURL string
	states  StateIssuer
}

func NewPublicURLs(baseURL string, states StateIssuer) *PublicURLs {
	return &PublicURLs{
		baseURL: strings.TrimRight(baseURL, "/"),
		states:  states,
	}
}

func (u *PublicURLs) CallbackURLs(ctx context.Context, order *payment.Order) (CallbackURLs, error) {
	state, err := u.states.Issue(order.ID)
	if err != nil {
		return CallbackURLs{}, err
	}
	q := "?" + url.Values{"state": {state}}.Encode()

	return CallbackURLs{
		Notify: u.baseURL + NotifyPath,
		Return: u.baseURL + ReturnPath + q,
		Cancel: u.baseURL + CancelPath + q,
	}, nil
}
