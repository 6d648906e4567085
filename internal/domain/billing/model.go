package billing

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses mirrored from Stripe.
const (
	SubActive    = "active"
	SubPastDue   = "past_due"
	SubCancelled = "cancelled"
)

// Subscription is the local mirror of a Stripe subscription, kept current by
// webhook events. Stripe remains the source of truth; this row exists so the
// app can answer billing questions without calling out.
type Subscription struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	TenantID             uuid.UUID `db:"tenant_id" json:"tenant_id"`
	StripeSubscriptionID string    `db:"stripe_subscription_id" json:"-"`
	StripeCustomerID     string    `db:"stripe_customer_id" json:"-"`
	Status               string    `db:"status" json:"status"`
	PriceID              string    `db:"price_id" json:"-"`
	CurrentPeriodStart   time.Time `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd     time.Time `db:"current_period_end" json:"current_period_end"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// ResourceUsage reports one countable resource against its plan limit.
type ResourceUsage struct {
	Used       int64   `json:"used"`
	Limit      int64   `json:"limit"`
	Percentage float64 `json:"percentage"`
}

// StorageUsage reports document storage against the plan's GB cap.
type StorageUsage struct {
	UsedBytes  int64   `json:"used_bytes"`
	UsedGB     float64 `json:"used_gb"`
	LimitGB    int64   `json:"limit_gb"`
	Percentage float64 `json:"percentage"`
}

// Usage is the full plan-usage report for a clinic.
type Usage struct {
	Plan     string        `json:"plan"`
	Patients ResourceUsage `json:"patients"`
	Storage  StorageUsage  `json:"storage"`
	Staff    ResourceUsage `json:"staff"`
}
