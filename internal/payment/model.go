package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Amount is an exact decimal amount in major units, e.g. 12.50 EUR.
type Amount struct {
	Value    decimal.Decimal
	Currency string
}

type BillingProfile struct {
	GivenName  string
	FamilyName string
	Address    string
}

func (b *BillingProfile) FullName() string {
	if b == nil {
		return ""
	}
	switch {
	case b.GivenName == "":
		return b.FamilyName
	case b.FamilyName == "":
		return b.GivenName
	}
	return b.GivenName + " " + b.FamilyName
}

type Order struct {
	ID      string
	Total   Amount
	Billing *BillingProfile
	Email   string
	Locale  string
}

type Payment struct {
	ID           int64
	OrderID      string
	RemoteID     string
	State        State
	AuthorizedAt *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Payment) IsCompleted() bool {
	return p.State == StateCompleted
}

// Complete moves a pending payment to completed. Timestamps already set by an
// earlier completion are kept.
func (p *Payment) Complete(now time.Time) {
	if p.AuthorizedAt == nil {
		p.AuthorizedAt = &now
	}
	if p.CompletedAt == nil {
		p.CompletedAt = &now
	}
	p.State = StateCompleted
}

type NotificationStatus string

const (
	NotificationReceived  NotificationStatus = "RECEIVED"
	NotificationProcessed NotificationStatus = "PROCESSED"
	NotificationFailed    NotificationStatus = "FAILED"
)
