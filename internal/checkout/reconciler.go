package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paylands-gateway/internal/logger"
	"paylands-gateway/internal/metrics"
	"paylands-gateway/internal/payment"

	"go.uber.org/zap"
)

// Reconciler applies notify and return callbacks to local payments. It holds
// no locks: a completed payment is terminal and completing twice is harmless.
type Reconciler struct {
	repo    payment.Repository
	gateway Gateway
	stats   *metrics.CallbackStats
	now     func() time.Time
}

func NewReconciler(repo payment.Repository, gateway Gateway, stats *metrics.CallbackStats) *Reconciler {
	if stats == nil {
		stats = &metrics.CallbackStats{}
	}
	return &Reconciler{
		repo:    repo,
		gateway: gateway,
		stats:   stats,
		now:     time.Now,
	}
}

// WithClock replaces the time source used for completion timestamps.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Reconcile validates a raw provider payload and completes the payment it
// refers to. A non-success outcome is returned as *payment.DeclineError and
// leaves the payment untouched.
func (r *Reconciler) Reconcile(ctx context.Context, raw []byte) error {
	timer := metrics.StartTimer()
	defer r.stats.Observe(timer)

	in, err := ParsePayload(raw)
	if err != nil {
		r.record(ctx, err)
		return err
	}

	ctx = logger.WithFields(ctx,
		zap.String("shape", string(in.Shape)),
		zap.String("order_id", in.OrderRef),
		zap.String("remote_id", in.TransactionID),
	)

	err = r.apply(ctx, in)
	r.record(ctx, err)
	return err
}

func (r *Reconciler) apply(ctx context.Context, in *ReconciliationInput) error {
	log := logger.FromCtx(ctx)

	if in.OrderRef == "" {
		return fmt.Errorf("%w: order id not provided in response", payment.ErrInvalidResponse)
	}

	order, err := r.findOrder(ctx, in.OrderRef)
	if err != nil {
		return err
	}

	payments, err := r.repo.FindPaymentsByOrder(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("load payments of order %s: %w", order.ID, err)
	}
	if len(payments) == 0 {
		return fmt.Errorf("%w: no payments for given order", payment.ErrInvalidResponse)
	}

	p := matchRemoteID(payments, in.TransactionID)
	if p == nil {
		return fmt.Errorf("%w: no payments matching returned transaction id", payment.ErrInvalidResponse)
	}

	if !in.HasStatus {
		return fmt.Errorf("%w: no transaction status information", payment.ErrInvalidResponse)
	}

	if p.IsCompleted() {
		log.Info("Payment already completed, nothing to do", zap.Int64("payment_id", p.ID))
		r.stats.AlreadyCompleted.Inc()
		return nil
	}

	if !in.Success {
		return &payment.DeclineError{Code: in.Code, Message: in.Message}
	}

	p.Complete(r.now())
	if err := r.repo.Save(ctx, p); err != nil {
		return fmt.Errorf("save payment %d: %w", p.ID, err)
	}

	r.stats.Completed.Inc()
	log.Info("Payment completed", zap.Int64("payment_id", p.ID))
	return nil
}

// HandleReturn runs when the buyer comes back from the payment page. The
// notification may already have completed the payment; otherwise the order
// status is fetched from Paylands and reconciled.
func (r *Reconciler) HandleReturn(ctx context.Context, orderID string) error {
	ctx = logger.WithFields(ctx, zap.String("order_id", orderID))
	log := logger.FromCtx(ctx)

	order, err := r.findOrder(ctx, orderID)
	if err != nil {
		r.record(ctx, err)
		return err
	}

	payments, err := r.repo.FindPaymentsByOrder(ctx, order.ID)
	if err != nil {
		err = fmt.Errorf("load payments of order %s: %w", order.ID, err)
		r.record(ctx, err)
		return err
	}
	if len(payments) == 0 {
		err := fmt.Errorf("%w: no payments for given order", payment.ErrInvalidResponse)
		r.record(ctx, err)
		return err
	}

	p := payments[len(payments)-1]
	if p.IsCompleted() {
		log.Info("Payment completed by notification before return", zap.Int64("payment_id", p.ID))
		r.stats.AlreadyCompleted.Inc()
		return nil
	}

	if p.RemoteID == "" {
		err := fmt.Errorf("%w: no remote id for given payment", payment.ErrInvalidResponse)
		r.record(ctx, err)
		return err
	}

	log.Info("Verifying payment status with Paylands", zap.String("remote_id", p.RemoteID))

	body, err := r.gateway.GetOrder(ctx, p.RemoteID)
	if err != nil {
		r.record(ctx, err)
		return err
	}

	return r.Reconcile(ctx, body)
}

// HandleCancel acknowledges a buyer abandoning the payment page. No payment
// state changes.
func (r *Reconciler) HandleCancel(ctx context.Context, orderID string) error {
	log := logger.FromCtx(ctx).With(zap.String("order_id", orderID))

	if _, err := r.findOrder(ctx, orderID); err != nil {
		return err
	}

	r.stats.Cancelled.Inc()
	log.Info("Buyer cancelled payment")
	return nil
}

func (r *Reconciler) findOrder(ctx context.Context, orderID string) (*payment.Order, error) {
	order, err := r.repo.FindOrder(ctx, orderID)
	if errors.Is(err, payment.ErrOrderNotFound) || (err == nil && order == nil) {
		return nil, fmt.Errorf("%w: %s", payment.ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}
	return order, nil
}

func (r *Reconciler) record(ctx context.Context, err error) {
	if err == nil {
		return
	}

	log := logger.FromCtx(ctx)
	if de, ok := payment.IsDecline(err); ok {
		r.stats.Declined.Inc()
		log.Warn("Payment declined by the gateway",
			zap.String("code", de.Code),
			zap.String("message", de.Message),
		)
		return
	}
	if errors.Is(err, payment.ErrInvalidResponse) {
		r.stats.Invalid.Inc()
		log.Warn("Rejected callback", zap.Error(err))
		return
	}
	r.stats.Failed.Inc()
	log.Error("Callback processing failed", zap.Error(err))
}

func matchRemoteID(payments []*payment.Payment, remoteID string) *payment.Payment {
	if remoteID == "" {
		return nil
	}
	for _, p := range payments {
		if p.RemoteID == remoteID {
			return p
		}
	}
	return nil
}
