// Package paymenttest provides an in-memory payment.Repository for tests.
package paymenttest

import (
	"context"
	"sync"

	"paylands-gateway/internal/payment"
)

type Repository struct {
	mu       sync.Mutex
	orders   map[string]*payment.Order
	payments map[string][]*payment.Payment

	// SaveErr, when set, is returned by Save.
	SaveErr error
	Saves   int
}

func NewRepository() *Repository {
	return &Repository{
		orders:   make(map[string]*payment.Order),
		payments: make(map[string][]*payment.Payment),
	}
}

func (r *Repository) AddOrder(o *payment.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
}

func (r *Repository) AddPayment(p *payment.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.OrderID] = append(r.payments[p.OrderID], p)
}

// Payment returns a copy of the stored payment with the given id.
func (r *Repository) Payment(id int64) (payment.Payment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.payments {
		for _, p := range list {
			if p.ID == id {
				return *p, true
			}
		}
	}
	return payment.Payment{}, false
}

func (r *Repository) FindOrder(ctx context.Context, orderID string) (*payment.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, payment.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

// FindPaymentsByOrder hands out copies so that callers only change stored
// state through Save.
func (r *Repository) FindPaymentsByOrder(ctx context.Context, orderID string) ([]*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*payment.Payment
	for _, p := range r.payments[orderID] {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *Repository) Save(ctx context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Saves++
	if r.SaveErr != nil {
		return r.SaveErr
	}
	for _, stored := range r.payments[p.OrderID] {
		if stored.ID == p.ID {
			saveOver(stored, p)
			return nil
		}
	}
	return payment.ErrPaymentNotFound
}

// saveOver mirrors the Postgres UPDATE: a completed row keeps its state and
// remote id, and completion timestamps are only set once.
func saveOver(stored, p *payment.Payment) {
	next := *p
	if stored.IsCompleted() {
		next.State = stored.State
		next.RemoteID = stored.RemoteID
	}
	if stored.AuthorizedAt != nil {
		next.AuthorizedAt = stored.AuthorizedAt
	}
	if stored.CompletedAt != nil {
		next.CompletedAt = stored.CompletedAt
	}
	*stored = next
}
