package checkout

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"paylands-gateway/internal/auth"
	"paylands-gateway/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingIssuer struct{}

func (failingIssuer) Issue(string) (string, error) { return "", errors.New("no key") }

func TestPublicURLs_CallbackURLs(t *testing.T) {
	tokens, err := auth.NewStateTokens("testsecret", time.Hour)
	require.NoError(t, err)

	urls := NewPublicURLs("https://shop.test/", tokens)
	got, err := urls.CallbackURLs(context.Background(), &payment.Order{ID: "42"})
	require.NoError(t, err)

	assert.Equal(t, "https://shop.test/payment/paylands/notify", got.Notify)

	for _, raw := range []string{got.Return, got.Cancel} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "shop.test", u.Host)

		orderID, err := tokens.Parse(u.Query().Get("state"))
		require.NoError(t, err)
		assert.Equal(t, "42", orderID)
	}
	assert.Contains(t, got.Return, ReturnPath)
	assert.Contains(t, got.Cancel, CancelPath)
}

func TestPublicURLs_IssuerError(t *testing.T) {
	urls := NewPublicURLs("https://shop.test", failingIssuer{})

	_, err := urls.CallbackURLs(context.Background(), &payment.Order{ID: "42"})
	assert.Error(t, err)
}
