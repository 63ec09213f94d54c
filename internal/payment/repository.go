package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository is the narrow view of the order management store used by the
// gateway. Orders are read-only; payments are only ever updated.
type Repository interface {
	FindOrder(ctx context.Context, orderID string) (*Order, error)
	FindPaymentsByOrder(ctx context.Context, orderID string) ([]*Payment, error)
	Save(ctx context.Context, p *Payment) error
}

// NotificationLog records inbound provider notifications for auditing.
type NotificationLog interface {
	SaveNotification(
		ctx context.Context,
		provider string,
		payloadHash string,
		payload json.RawMessage,
	) (notificationID int64, err error)

	MarkNotificationProcessed(ctx context.Context, notificationID int64) error
	MarkNotificationFailed(ctx context.Context, notificationID int64, reason string) error
}

// Store is the Postgres backed implementation of both interfaces.
type Store interface {
	Repository
	NotificationLog
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Store {
	return &repository{db: db}
}

func (r *repository) FindOrder(ctx context.Context, orderID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, total_amount::text, currency, email, locale,
		       billing_given_name, billing_family_name, billing_address
		FROM orders WHERE id = $1
	`, orderID)

	var o Order
	var given, family, address sql.NullString
	err := row.Scan(
		&o.ID, &o.Total.Value, &o.Total.Currency, &o.Email, &o.Locale,
		&given, &family, &address,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if address.Valid && address.String != "" {
		o.Billing = &BillingProfile{
			GivenName:  given.String,
			FamilyName: family.String,
			Address:    address.String,
		}
	}
	return &o, nil
}

func (r *repository) FindPaymentsByOrder(ctx context.Context, orderID string) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, remote_id, state, authorized_at, completed_at, created_at, updated_at
		FROM payments WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		var p Payment
		var remoteID sql.NullString
		var authorizedAt, completedAt sql.NullTime
		if err := rows.Scan(
			&p.ID, &p.OrderID, &remoteID, &p.State,
			&authorizedAt, &completedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.RemoteID = remoteID.String
		p.AuthorizedAt = timePtr(authorizedAt)
		p.CompletedAt = timePtr(completedAt)
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

// Save writes the mutable payment fields. Completed is terminal in the row
// itself: a writer holding a stale pending copy cannot reset the state or the
// remote id, and completion timestamps keep their first values.
func (r *repository) Save(ctx context.Context, p *Payment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET remote_id = CASE WHEN state = 'completed' THEN remote_id ELSE $2 END,
		    state = CASE WHEN state = 'completed' THEN state ELSE $3 END,
		    authorized_at = COALESCE(authorized_at, $4),
		    completed_at = COALESCE(completed_at, $5),
		    updated_at = now()
		WHERE id = $1
	`,
		p.ID, nullString(p.RemoteID), string(p.State), p.AuthorizedAt, p.CompletedAt,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrPaymentNotFound, p.ID)
	}
	return nil
}

func (r *repository) SaveNotification(
	ctx context.Context,
	provider string,
	payloadHash string,
	payload json.RawMessage,
) (int64, error) {

	const q = `
	INSERT INTO payment_notifications (
		provider,
		payload_hash,
		payload,
		status
	)
	VALUES ($1, $2, $3, $4)
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		provider,
		payloadHash,
		[]byte(payload),
		string(NotificationReceived),
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) MarkNotificationProcessed(ctx context.Context, notificationID int64) error {
	const q = `
	UPDATE payment_notifications
	SET status = $2, processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, notificationID, string(NotificationProcessed))
	return err
}

func (r *repository) MarkNotificationFailed(ctx context.Context, notificationID int64, reason string) error {
	const q = `
	UPDATE payment_notifications
	SET status = $2, process_error = $3, processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, notificationID, string(NotificationFailed), reason)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
