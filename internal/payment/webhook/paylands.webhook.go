package webhook

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"net/http"

	"paylands-gateway/internal/auth"
	"paylands-gateway/internal/logger"
	"paylands-gateway/internal/payment"
	"paylands-gateway/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

const (
	providerPaylands = "PAYLANDS"
	maxPayloadBytes  = 1 << 20
)

// Reconciler is implemented by *checkout.Reconciler.
type Reconciler interface {
	Reconcile(ctx context.Context, raw []byte) error
	HandleReturn(ctx context.Context, orderID string) error
	HandleCancel(ctx context.Context, orderID string) error
}

type StateParser interface {
	Parse(token string) (string, error)
}

// Handler serves the notify, return and cancel callbacks
type Handler struct {
	Reconciler    Reconciler
	States        StateParser
	Notifications payment.NotificationLog
}

func NewWebhookHandler(reconciler Reconciler, states StateParser, notifications payment.NotificationLog) *Handler {
	return &Handler{
		Reconciler:    reconciler,
		States:        states,
		Notifications: notifications,
	}
}

// NotifyHandler receives the server-to-server notification.
func (h *Handler) NotifyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	if r.Method != http.MethodPost {
		utils.WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Step 1️⃣ – Read the raw body
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		utils.WriteJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Step 2️⃣ – Keep an audit record of what the provider sent
	sum := blake2b.Sum256(body)
	hash := hex.EncodeToString(sum[:])

	notificationID, err := h.Notifications.SaveNotification(ctx, providerPaylands, hash, body)
	if err != nil {
		log.Error("Failed to store notification", zap.Error(err))
		utils.WriteJSONError(w, "failed to store notification", http.StatusInternalServerError)
		return
	}

	log = log.With(zap.Int64("notification_id", notificationID), zap.String("payload_hash", hash))
	log.Info("Paylands notification received")

	// Step 3️⃣ – Reconcile against the local payment
	err = h.Reconciler.Reconcile(ctx, body)
	if err != nil {
		if markErr := h.Notifications.MarkNotificationFailed(ctx, notificationID, err.Error()); markErr != nil {
			log.Error("Failed to mark notification failed", zap.Error(markErr))
		}
	} else if markErr := h.Notifications.MarkNotificationProcessed(ctx, notificationID); markErr != nil {
		log.Error("Failed to mark notification processed", zap.Error(markErr))
	}

	// Step 4️⃣ – Answer the provider. A decline is a valid, final outcome.
	if de, ok := payment.IsDecline(err); ok {
		utils.WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "declined",
			"code":    de.Code,
			"message": de.Message,
		})
		return
	}
	if err != nil {
		utils.WriteJSONError(w, err.Error(), statusFor(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReturnHandler runs when the buyer's browser comes back from Paylands.
func (h *Handler) ReturnHandler(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderFromState(w, r)
	if !ok {
		return
	}

	err := h.Reconciler.HandleReturn(r.Context(), orderID)
	if de, ok := payment.IsDecline(err); ok {
		utils.WriteJSON(w, http.StatusPaymentRequired, map[string]string{
			"status":   "declined",
			"order_id": orderID,
			"code":     de.Code,
			"message":  de.Error(),
		})
		return
	}
	if err != nil {
		utils.WriteJSONError(w, err.Error(), statusFor(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "completed",
		"order_id": orderID,
	})
}

// CancelHandler reports a payment abandoned by the buyer.
func (h *Handler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	orderID, ok := h.orderFromState(w, r)
	if !ok {
		return
	}

	if err := h.Reconciler.HandleCancel(r.Context(), orderID); err != nil {
		utils.WriteJSONError(w, err.Error(), statusFor(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "cancelled",
		"order_id": orderID,
		"message":  "You have canceled checkout at Paylands but may resume the checkout process here when you are ready.",
	})
}

func (h *Handler) orderFromState(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		utils.WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}

	token := auth.ExtractStateToken(r)
	if token == "" {
		utils.WriteJSONError(w, "missing state", http.StatusBadRequest)
		return "", false
	}

	orderID, err := h.States.Parse(token)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("Rejected callback state", zap.Error(err))
		utils.WriteJSONError(w, "invalid state", http.StatusBadRequest)
		return "", false
	}
	return orderID, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, payment.ErrInvalidResponse):
		return http.StatusBadRequest
	case errors.Is(err, payment.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, payment.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, payment.ErrPaymentGateway):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
