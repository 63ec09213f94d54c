package paylands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"paylands-gateway/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func testConfig() Config {
	return Config{
		APIKey:       "api-key",
		Signature:    "sig",
		Service:      "svc-1",
		Mode:         ModeTest,
		TemplateUUID: "tpl-1",
	}
}

func newTestClient(cfg Config, rt http.RoundTripper) *Client {
	return NewClient(cfg, &http.Client{Transport: rt})
}

func TestClient_CreatePayment(t *testing.T) {
	req := PaymentRequest{
		Amount:        1250,
		CustomerExtID: "42",
		Description:   "Ana Garcia - Order #42",
		Secure:        true,
		URLPost:       "https://shop.test/notify",
		URLOk:         "https://shop.test/return",
		URLKo:         "https://shop.test/cancel",
	}

	t.Run("SuccessV1", func(t *testing.T) {
		client := newTestClient(testConfig(), MockRoundTripper(func(r *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "https://api.paylands.com/v1/sandbox/payment", r.URL.String())

			user, _, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "api-key", user)

			var sent map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			assert.Equal(t, "AUTHORIZATION", sent["operative"])
			assert.Equal(t, "svc-1", sent["service"])
			assert.Equal(t, "sig", sent["signature"])
			assert.Equal(t, float64(1250), sent["amount"])
			assert.Equal(t, "42", sent["customer_ext_id"])
			assert.Equal(t, "tpl-1", sent["template_uuid"])
			assert.Equal(t, true, sent["secure"])
			assert.Equal(t, "https://shop.test/notify", sent["url_post"])

			return jsonResponse(http.StatusOK, `{"code":200,"message":"OK","order":{"uuid":"tx-1","token":"tok-1"}}`)
		}))

		res, err := client.CreatePayment(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "tx-1", res.RemoteID())
		assert.Equal(t, "tok-1", res.Token())
		v, _ := res.Version()
		assert.Equal(t, VersionV1, v)
	})

	t.Run("SuccessLegacy", func(t *testing.T) {
		client := newTestClient(testConfig(), MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{"response_code":0,"response_msg":"OK","payment_url":"https://pay.test/p/1","transaction_id":"tx-legacy"}`)
		}))

		res, err := client.CreatePayment(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "tx-legacy", res.RemoteID())
		assert.Equal(t, "https://pay.test/p/1", res.PaymentURL)
	})

	t.Run("MissingCredentials", func(t *testing.T) {
		cfg := testConfig()
		cfg.APIKey = ""
		called := false
		client := newTestClient(cfg, MockRoundTripper(func(r *http.Request) *http.Response {
			called = true
			return jsonResponse(http.StatusOK, `{}`)
		}))

		_, err := client.CreatePayment(context.Background(), req)
		assert.ErrorIs(t, err, payment.ErrConfiguration)
		assert.False(t, called)
	})

	t.Run("RejectedV1", func(t *testing.T) {
		client := newTestClient(testConfig(), MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusBadRequest, `{"code":400,"message":"Invalid signature"}`)
		}))

		_, err := client.CreatePayment(context.Background(), req)
		assert.ErrorIs(t, err, payment.ErrInvalidResponse)
		assert.Contains(t, err.Error(), "Invalid signature")
	})

	t.Run("NoResponseCode", func(t *testing.T) {
		client := newTestClient(testConfig(), MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{"message":"?"}`)
		}))

		_, err := client.CreatePayment(context.Background(), req)
		assert.ErrorIs(t, err, payment.ErrInvalidResponse)
		assert.Contains(t, err.Error(), "no response code")
	})

	t.Run("EmptyBody", func(t *testing.T) {
		client := newTestClient(testConfig(), MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusBadGateway, "")
		}))

		_, err := client.CreatePayment(context.Background(), req)
		assert.ErrorIs(t, err, payment.ErrInvalidResponse)
	})

	t.Run("InvalidJSONResponse", func(t *testing.T) {
		client := newTestClient(testConfig(), MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{invalid-json`)
		}))

		_, err := client.CreatePayment(context.Background(), req)
		assert.ErrorIs(t, err, payment.ErrInvalidResponse)
	})

	t.Run("NetworkError", func(t *testing.T) {
		client := newTestClient(testConfig(), MockRoundTripperWithError(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}))

		_, err := client.CreatePayment(context.Background(), req)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.NotErrorIs(t, err, payment.ErrInvalidResponse)
	})
}

func TestClient_GetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		body := `{"order":{"customer":"42","uuid":"tx-1","transactions":[{"status":"SUCCESS"}]}}`
		client := newTestClient(testConfig(), MockRoundTripper(func(r *http.Request) *http.Response {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "https://api.paylands.com/v1/sandbox/order/tx-1", r.URL.String())
			user, _, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "api-key", user)
			return jsonResponse(http.StatusOK, body)
		}))

		got, err := client.GetOrder(context.Background(), "tx-1")
		require.NoError(t, err)
		assert.JSONEq(t, body, string(got))
	})

	t.Run("LiveEndpoint", func(t *testing.T) {
		cfg := testConfig()
		cfg.Mode = ModeLive
		client := newTestClient(cfg, MockRoundTripper(func(r *http.Request) *http.Response {
			assert.Equal(t, "https://api.paylands.com/v1/order/tx-1", r.URL.String())
			return jsonResponse(http.StatusOK, `{"order":{}}`)
		}))

		_, err := client.GetOrder(context.Background(), "tx-1")
		assert.NoError(t, err)
	})

	t.Run("HTTPError", func(t *testing.T) {
		client := newTestClient(testConfig(), MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusNotFound, `{"code":404,"message":"Not found"}`)
		}))

		_, err := client.GetOrder(context.Background(), "tx-1")
		assert.ErrorIs(t, err, payment.ErrInvalidResponse)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		client := newTestClient(testConfig(), MockRoundTripper(func(r *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, "  ")
		}))

		_, err := client.GetOrder(context.Background(), "tx-1")
		assert.ErrorIs(t, err, payment.ErrInvalidResponse)
		assert.Contains(t, err.Error(), "no response returned")
	})

	t.Run("MissingSignature", func(t *testing.T) {
		cfg := testConfig()
		cfg.Signature = ""
		client := newTestClient(cfg, nil)

		_, err := client.GetOrder(context.Background(), "tx-1")
		assert.ErrorIs(t, err, payment.ErrConfiguration)
	})
}

func TestClient_RedirectURL(t *testing.T) {
	client := NewClient(testConfig(), nil)

	assert.Equal(t,
		"https://api.paylands.com/v1/sandbox/payment/process/tok-1?lang=es",
		client.RedirectURL("tok-1", "es"),
	)
	assert.Equal(t,
		"https://api.paylands.com/v1/sandbox/payment/process/tok-1",
		client.RedirectURL("tok-1", ""),
	)
}

func TestInitiationResponse_Validate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"V1WrongCode", `{"code":201,"order":{"uuid":"u","token":"t"}}`, "invalid request"},
		{"V1NoUUID", `{"code":200,"order":{"token":"t"}}`, "no order uuid"},
		{"V1NoToken", `{"code":200,"order":{"uuid":"u"}}`, "no payment token"},
		{"V1CodeAsString", `{"code":"200","order":{"uuid":"u","token":"t"}}`, ""},
		{"LegacyNonZero", `{"response_code":3,"response_msg":"Bad amount"}`, "Bad amount"},
		{"LegacyNoURL", `{"response_code":0,"transaction_id":"t"}`, "no payment_url"},
		{"LegacyNoTransaction", `{"response_code":0,"payment_url":"https://x"}`, "no transaction_id"},
		{"Neither", `{}`, "no response code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res InitiationResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &res))

			err := res.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, payment.ErrInvalidResponse)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
