package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"

	"github.com/dentora/dentora/internal/domain/tenancy"
)

// Counter interfaces are defined here rather than importing the owning
// packages: patient already depends on billing for the plan gate.

type PatientCounter interface {
	CountActive(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type StorageSummer interface {
	SumSizeBytes(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type StaffCounter interface {
	CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}

// StripeConfig carries the Stripe keys and the price-to-plan mapping.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	AppURL        string
	PriceIDs      map[tenancy.Plan]string
}

type Service struct {
	subs     SubscriptionRepository
	tenants  tenancy.TenantRepository
	patients PatientCounter
	storage  StorageSummer
	staff    StaffCounter
	cfg      StripeConfig
	logger   zerolog.Logger
}

func NewService(subs SubscriptionRepository, tenants tenancy.TenantRepository,
	patients PatientCounter, storage StorageSummer, staff StaffCounter,
	cfg StripeConfig, logger zerolog.Logger) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{
		subs: subs, tenants: tenants,
		patients: patients, storage: storage, staff: staff,
		cfg: cfg, logger: logger,
	}
}

const bytesPerGB = int64(1024 * 1024 * 1024)

// Usage computes the plan-usage report shown on the billing page.
func (s *Service) Usage(ctx context.Context, tenantID uuid.UUID) (*Usage, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	limits := LimitsFor(tenant.Plan)

	patientCount, err := s.patients.CountActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	storageBytes, err := s.storage.SumSizeBytes(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	staffCount, err := s.staff.CountActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var storagePct float64
	if limits.StorageGB != Unlimited {
		storagePct = UsagePercentage(storageBytes, limits.StorageGB*bytesPerGB)
	}

	return &Usage{
		Plan: string(tenant.Plan),
		Patients: ResourceUsage{
			Used:       patientCount,
			Limit:      limits.Patients,
			Percentage: UsagePercentage(patientCount, limits.Patients),
		},
		Storage: StorageUsage{
			UsedBytes:  storageBytes,
			UsedGB:     float64(storageBytes) / float64(bytesPerGB),
			LimitGB:    limits.StorageGB,
			Percentage: storagePct,
		},
		Staff: ResourceUsage{
			Used:       int64(staffCount),
			Limit:      limits.Staff,
			Percentage: UsagePercentage(int64(staffCount), limits.Staff),
		},
	}, nil
}

func (s *Service) Subscription(ctx context.Context, tenantID uuid.UUID) (*Subscription, error) {
	return s.subs.GetByTenant(ctx, tenantID)
}

// CreateCheckout creates a Stripe Checkout session for upgrading to the
// given plan, creating the Stripe customer on first use.
func (s *Service) CreateCheckout(ctx context.Context, tenantID uuid.UUID, plan tenancy.Plan) (string, error) {
	priceID, ok := s.cfg.PriceIDs[plan]
	if !ok || priceID == "" {
		return "", fmt.Errorf("plan %s cannot be purchased online", plan)
	}
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return "", err
	}

	customerID, err := s.ensureCustomer(ctx, tenant)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(s.cfg.AppURL + "/settings/billing?checkout=success"),
		CancelURL:  stripe.String(s.cfg.AppURL + "/settings/billing?checkout=cancelled"),
	}
	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortal opens the Stripe billing portal for the clinic's customer.
func (s *Service) CreatePortal(ctx context.Context, tenantID uuid.UUID) (string, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if tenant.StripeCustomerID == nil {
		return "", fmt.Errorf("no billing account for this clinic yet")
	}
	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*tenant.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.AppURL + "/settings/billing"),
	})
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

func (s *Service) ensureCustomer(ctx context.Context, tenant *tenancy.Tenant) (string, error) {
	if tenant.StripeCustomerID != nil && *tenant.StripeCustomerID != "" {
		return *tenant.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Name: stripe.String(tenant.Name),
	}
	if tenant.Email != nil {
		params.Email = stripe.String(*tenant.Email)
	}
	params.AddMetadata("tenant_id", tenant.ID.String())

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.tenants.SetStripeCustomerID(ctx, tenant.ID, cust.ID); err != nil {
		return "", err
	}
	return cust.ID, nil
}

// planForPrice reverses the configured price mapping.
func (s *Service) planForPrice(priceID string) (tenancy.Plan, bool) {
	for plan, id := range s.cfg.PriceIDs {
		if id == priceID && id != "" {
			return plan, true
		}
	}
	return "", false
}

func mirrorStatus(st stripe.SubscriptionStatus) string {
	switch st {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return SubActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return SubPastDue
	case stripe.SubscriptionStatusCanceled:
		return SubCancelled
	}
	return string(st)
}

// ApplyEvent folds one verified Stripe event into the local mirror. Unknown
// event types are ignored.
func (s *Service) ApplyEvent(ctx context.Context, event stripe.Event) error {
	switch string(event.Type) {
	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("parse subscription event: %w", err)
		}
		return s.applySubscription(ctx, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("parse subscription event: %w", err)
		}
		return s.applySubscriptionDeleted(ctx, &sub)

	case "invoice.payment_succeeded":
		return s.applyInvoiceStatus(ctx, event, SubActive)

	case "invoice.payment_failed":
		return s.applyInvoiceStatus(ctx, event, SubPastDue)
	}

	s.logger.Debug().Str("type", string(event.Type)).Msg("ignoring stripe event")
	return nil
}

func (s *Service) applySubscription(ctx context.Context, sub *stripe.Subscription) error {
	if sub.Customer == nil {
		return fmt.Errorf("subscription %s has no customer", sub.ID)
	}
	tenant, err := s.tenants.GetByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		return fmt.Errorf("no tenant for stripe customer %s: %w", sub.Customer.ID, err)
	}

	var priceID string
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}

	status := mirrorStatus(sub.Status)
	mirror := &Subscription{
		TenantID:             tenant.ID,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     sub.Customer.ID,
		Status:               status,
		PriceID:              priceID,
		CurrentPeriodStart:   time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
	}
	if err := s.subs.Upsert(ctx, mirror); err != nil {
		return err
	}

	if plan, ok := s.planForPrice(priceID); ok && status == SubActive {
		if err := s.tenants.SetPlan(ctx, tenant.ID, plan); err != nil {
			return err
		}
	}

	s.logger.Info().
		Str("tenant_id", tenant.ID.String()).
		Str("subscription_id", sub.ID).
		Str("status", status).
		Msg("subscription mirrored")
	return nil
}

func (s *Service) applySubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	if err := s.subs.UpdateStatusByStripeID(ctx, sub.ID, SubCancelled); err != nil {
		return err
	}
	if sub.Customer != nil {
		tenant, err := s.tenants.GetByStripeCustomerID(ctx, sub.Customer.ID)
		if err == nil {
			if err := s.tenants.SetPlan(ctx, tenant.ID, tenancy.PlanFree); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) applyInvoiceStatus(ctx context.Context, event stripe.Event, status string) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("parse invoice event: %w", err)
	}
	if inv.Subscription != nil && inv.Subscription.ID != "" {
		return s.subs.UpdateStatusByStripeID(ctx, inv.Subscription.ID, status)
	}
	if inv.Customer != nil && inv.Customer.ID != "" {
		return s.subs.UpdateStatusByCustomer(ctx, inv.Customer.ID, status)
	}
	return nil
}
