package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionRepository interface {
	// Upsert inserts or refreshes the mirror row keyed by the Stripe
	// subscription id.
	Upsert(ctx context.Context, s *Subscription) error
	GetByTenant(ctx context.Context, tenantID uuid.UUID) (*Subscription, error)
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*Subscription, error)
	UpdateStatusByStripeID(ctx context.Context, stripeSubscriptionID, status string) error
	UpdateStatusByCustomer(ctx context.Context, stripeCustomerID, status string) error
}
