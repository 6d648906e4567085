package tenancy

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/platform/auth"
)

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrMembershipNotFound = errors.New("membership not found")
)

type TenantRepository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	GetByStripeCustomerID(ctx context.Context, customerID string) (*Tenant, error)
	SetPlan(ctx context.Context, id uuid.UUID, plan Plan) error
}

type MembershipRepository interface {
	Create(ctx context.Context, m *Membership) error
	GetByID(ctx context.Context, id uuid.UUID) (*Membership, error)
	GetActive(ctx context.Context, tenantID, userID uuid.UUID) (*Membership, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Membership, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Membership, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role) error
	Remove(ctx context.Context, id uuid.UUID) error
	CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int, error)
}
