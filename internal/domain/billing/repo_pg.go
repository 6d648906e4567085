package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentora/dentora/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type subscriptionRepoPG struct{ pool *pgxpool.Pool }

func NewSubscriptionRepoPG(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepoPG{pool: pool}
}

func (r *subscriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const subCols = `id, tenant_id, stripe_subscription_id, stripe_customer_id, status,
	price_id, current_period_start, current_period_end, created_at, updated_at`

func (r *subscriptionRepoPG) scan(row pgx.Row) (*Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.TenantID, &s.StripeSubscriptionID, &s.StripeCustomerID,
		&s.Status, &s.PriceID, &s.CurrentPeriodStart, &s.CurrentPeriodEnd,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	return &s, err
}

func (r *subscriptionRepoPG) Upsert(ctx context.Context, s *Subscription) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO subscriptions (id, tenant_id, stripe_subscription_id,
			stripe_customer_id, status, price_id, current_period_start, current_period_end)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (stripe_subscription_id)
		DO UPDATE SET status = EXCLUDED.status, price_id = EXCLUDED.price_id,
			current_period_start = EXCLUDED.current_period_start,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = NOW()`,
		s.ID, s.TenantID, s.StripeSubscriptionID, s.StripeCustomerID,
		s.Status, s.PriceID, s.CurrentPeriodStart, s.CurrentPeriodEnd)
	return err
}

func (r *subscriptionRepoPG) GetByTenant(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `
		SELECT `+subCols+` FROM subscriptions
		WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT 1`, tenantID))
}

func (r *subscriptionRepoPG) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*Subscription, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+subCols+` FROM subscriptions WHERE stripe_subscription_id = $1`, stripeSubscriptionID))
}

func (r *subscriptionRepoPG) UpdateStatusByStripeID(ctx context.Context, stripeSubscriptionID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE subscriptions SET status=$2, updated_at=NOW()
		WHERE stripe_subscription_id = $1`, stripeSubscriptionID, status)
	return err
}

func (r *subscriptionRepoPG) UpdateStatusByCustomer(ctx context.Context, stripeCustomerID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE subscriptions SET status=$2, updated_at=NOW()
		WHERE stripe_customer_id = $1`, stripeCustomerID, status)
	return err
}
