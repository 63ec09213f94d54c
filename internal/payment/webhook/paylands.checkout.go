package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"paylands-gateway/internal/checkout"
	"paylands-gateway/internal/logger"
	"paylands-gateway/internal/payment"
	"paylands-gateway/internal/utils"

	"go.uber.org/zap"
)

type Initiator interface {
	Initiate(ctx context.Context, order *payment.Order, p *payment.Payment) (*checkout.RemoteSession, error)
}

type CheckoutHandler struct {
	Initiator Initiator
	Repo      payment.Repository
}

func NewCheckoutHandler(initiator Initiator, repo payment.Repository) *CheckoutHandler {
	return &CheckoutHandler{Initiator: initiator, Repo: repo}
}

type checkoutRequest struct {
	OrderID string `json:"order_id"`
}

type checkoutResponse struct {
	OrderID         string `json:"order_id"`
	TransactionUUID string `json:"transaction_uuid"`
	RedirectURL     string `json:"redirect_url"`
}

// ServeHTTP starts a payment session for the latest pending payment of an
// order and answers with the URL the buyer must be sent to.
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		utils.WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes)).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	if req.OrderID == "" {
		utils.WriteJSONError(w, "order_id is required", http.StatusBadRequest)
		return
	}

	ctx = logger.WithFields(ctx, zap.String("order_id", req.OrderID))
	log := logger.FromCtx(ctx)

	order, err := h.Repo.FindOrder(ctx, req.OrderID)
	if errors.Is(err, payment.ErrOrderNotFound) {
		utils.WriteJSONError(w, "order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error("Failed to load order", zap.Error(err))
		utils.WriteJSONError(w, "failed to load order", http.StatusInternalServerError)
		return
	}

	payments, err := h.Repo.FindPaymentsByOrder(ctx, order.ID)
	if err != nil {
		log.Error("Failed to load payments", zap.Error(err))
		utils.WriteJSONError(w, "failed to load payments", http.StatusInternalServerError)
		return
	}
	if len(payments) == 0 {
		utils.WriteJSONError(w, "order has no payment", http.StatusConflict)
		return
	}
	p := payments[len(payments)-1]
	if p.IsCompleted() {
		utils.WriteJSONError(w, "payment already completed", http.StatusConflict)
		return
	}

	session, err := h.Initiator.Initiate(ctx, order, p)
	if err != nil {
		log.Warn("Payment initiation failed", zap.Error(err))
		utils.WriteJSONError(w, err.Error(), statusFor(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, checkoutResponse{
		OrderID:         order.ID,
		TransactionUUID: session.TransactionUUID,
		RedirectURL:     session.RedirectURL,
	})
}
