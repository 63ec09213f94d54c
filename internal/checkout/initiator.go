package checkout

import (
	"context"
	"fmt"

	"paylands-gateway/internal/logger"
	"paylands-gateway/internal/metrics"
	"paylands-gateway/internal/paylands"
	"paylands-gateway/internal/payment"

	"go.uber.org/zap"
)

// Initiator opens a Paylands payment session for an order and binds the
// server issued id to the local payment.
type Initiator struct {
	gateway Gateway
	repo    payment.Repository
	urls    URLGenerator
	stats   *metrics.CallbackStats
}

func NewInitiator(gateway Gateway, repo payment.Repository, urls URLGenerator, stats *metrics.CallbackStats) *Initiator {
	if stats == nil {
		stats = &metrics.CallbackStats{}
	}
	return &Initiator{
		gateway: gateway,
		repo:    repo,
		urls:    urls,
		stats:   stats,
	}
}

func (i *Initiator) Initiate(ctx context.Context, order *payment.Order, p *payment.Payment) (*RemoteSession, error) {
	// Credentials are checked before anything about the order.
	if err := paylands.RequireCredentials(i.gateway.Config()); err != nil {
		return nil, err
	}

	if err := validateOrder(order, p); err != nil {
		return nil, err
	}

	ctx = logger.WithFields(ctx,
		zap.String("order_id", order.ID),
		zap.Int64("payment_id", p.ID),
	)
	log := logger.FromCtx(ctx)

	amount, err := paylands.MinorUnits(order.Total)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrPaymentGateway, err)
	}

	urls, err := i.urls.CallbackURLs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("build callback urls: %w", err)
	}

	res, err := i.gateway.CreatePayment(ctx, paylands.PaymentRequest{
		Amount:        amount,
		CustomerExtID: order.ID,
		Additional:    order.Email,
		Description:   fmt.Sprintf("%s - Order #%s", order.Billing.FullName(), order.ID),
		Secure:        true,
		URLPost:       urls.Notify,
		URLOk:         urls.Return,
		URLKo:         urls.Cancel,
	})
	if err != nil {
		return nil, err
	}

	version, err := res.Version()
	if err != nil {
		return nil, err
	}

	session := &RemoteSession{
		TransactionUUID: res.RemoteID(),
		RedirectToken:   res.Token(),
	}
	switch version {
	case paylands.VersionLegacy:
		session.RedirectURL = res.PaymentURL
	default:
		session.RedirectURL = i.gateway.RedirectURL(session.RedirectToken, order.Locale)
	}

	// The remote id is the only key callbacks are correlated with.
	p.RemoteID = session.TransactionUUID
	if p.State == "" {
		p.State = payment.StatePending
	}
	if err := i.repo.Save(ctx, p); err != nil {
		log.Error("Failed to persist remote id", zap.String("remote_id", p.RemoteID), zap.Error(err))
		return nil, fmt.Errorf("save payment %d: %w", p.ID, err)
	}

	i.stats.Initiated.Inc()
	log.Info("Payment session initiated",
		zap.String("remote_id", session.TransactionUUID),
		zap.String("protocol", string(version)),
	)
	return session, nil
}

func validateOrder(order *payment.Order, p *payment.Payment) error {
	if order == nil {
		return fmt.Errorf("%w: no order given", payment.ErrPaymentGateway)
	}
	if p == nil {
		return fmt.Errorf("%w: no payment given for order %s", payment.ErrPaymentGateway, order.ID)
	}
	if p.OrderID != order.ID {
		return fmt.Errorf("%w: payment %d does not belong to order %s", payment.ErrPaymentGateway, p.ID, order.ID)
	}
	if order.Billing == nil || order.Billing.Address == "" {
		return fmt.Errorf("%w: order %s has no billing address", payment.ErrPaymentGateway, order.ID)
	}
	return nil
}
