package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentora/dentora/internal/platform/auth"
)

// ErrNoTenant signals that the user has no active clinic membership. Callers
// treat it as a redirect-to-onboarding condition, never as a server fault.
var ErrNoTenant = errors.New("no clinic found for user")

// TxRunner executes fn atomically. Production wiring backs it with a database
// transaction; tests pass a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	tenants TenantRepository
	members MembershipRepository
	tx      TxRunner
	logger  zerolog.Logger
}

func NewService(tenants TenantRepository, members MembershipRepository, tx TxRunner, logger zerolog.Logger) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{tenants: tenants, members: members, tx: tx, logger: logger}
}

// CreateTenantInput carries the onboarding form. OwnerName is the caller's
// display name for the owner membership row; it falls back to the email when
// the form leaves it blank.
type CreateTenantInput struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
	Plan      string  `json:"plan"`
	OwnerName string  `json:"owner_name"`
}

func validateClinicFields(name, address, phone string) error {
	if len(strings.TrimSpace(name)) < 2 {
		return fmt.Errorf("Clinic name must be at least 2 characters.")
	}
	if len(strings.TrimSpace(address)) < 5 {
		return fmt.Errorf("Address must be at least 5 characters.")
	}
	if len(strings.TrimSpace(phone)) < 8 {
		return fmt.Errorf("Phone number must be at least 8 characters.")
	}
	return nil
}

// CreateTenant onboards a new clinic: it inserts the tenant and the owner
// membership for the calling user in one transaction.
func (s *Service) CreateTenant(ctx context.Context, userID uuid.UUID, userEmail string, in CreateTenantInput) (*Tenant, error) {
	if err := validateClinicFields(in.Name, in.Address, in.Phone); err != nil {
		return nil, err
	}
	ownerName := strings.TrimSpace(in.OwnerName)
	if ownerName == "" {
		ownerName = userEmail
	}
	if in.Plan == "" {
		in.Plan = string(PlanFree)
	}
	if !ValidPlan(in.Plan) {
		return nil, fmt.Errorf("invalid plan: %s", in.Plan)
	}

	t := &Tenant{
		Name:             strings.TrimSpace(in.Name),
		Address:          strings.TrimSpace(in.Address),
		Phone:            strings.TrimSpace(in.Phone),
		Email:            in.Email,
		Plan:             Plan(in.Plan),
		Rooms:            []string{"Room 1"},
		AppointmentTypes: []string{"General", "Cleaning", "Consultation", "Emergency"},
		NotifyEmail:      true,
	}

	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.tenants.Create(ctx, t); err != nil {
			return err
		}
		m := &Membership{
			TenantID:  t.ID,
			UserID:    userID,
			UserName:  ownerName,
			UserEmail: userEmail,
			Role:      auth.RoleOwner,
			Status:    MemberActive,
		}
		return s.members.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) GetTenant(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.tenants.GetByID(ctx, id)
}

// ResolveTenant picks the active clinic for a user. A cookie-provided tenant
// id wins when the user still holds an active membership there; otherwise the
// earliest-joined active membership is used. No membership at all yields
// ErrNoTenant. Lookup failures are logged and also read as ErrNoTenant so a
// store hiccup sends the user to clinic selection instead of a server fault.
func (s *Service) ResolveTenant(ctx context.Context, userID uuid.UUID, cookieTenantID *uuid.UUID) (*Tenant, *Membership, error) {
	if cookieTenantID != nil {
		m, err := s.members.GetActive(ctx, *cookieTenantID, userID)
		switch {
		case err == nil:
			t, err := s.tenants.GetByID(ctx, m.TenantID)
			if err != nil {
				s.logger.Error().Err(err).Str("user_id", userID.String()).
					Str("tenant_id", m.TenantID.String()).Msg("tenant lookup failed during resolution")
				return nil, nil, ErrNoTenant
			}
			return t, m, nil
		case !errors.Is(err, ErrMembershipNotFound):
			s.logger.Error().Err(err).Str("user_id", userID.String()).
				Msg("membership lookup failed during resolution")
			return nil, nil, ErrNoTenant
		}
		// stale cookie, fall through to the default membership
	}

	memberships, err := s.members.ListActiveByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).
			Msg("membership listing failed during resolution")
		return nil, nil, ErrNoTenant
	}
	if len(memberships) == 0 {
		return nil, nil, ErrNoTenant
	}
	m := memberships[0]
	t, err := s.tenants.GetByID(ctx, m.TenantID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).
			Str("tenant_id", m.TenantID.String()).Msg("tenant lookup failed during resolution")
		return nil, nil, ErrNoTenant
	}
	return t, m, nil
}

// SwitchTenant verifies the user may act in the target clinic.
func (s *Service) SwitchTenant(ctx context.Context, userID, tenantID uuid.UUID) (*Membership, error) {
	m, err := s.members.GetActive(ctx, tenantID, userID)
	if errors.Is(err, ErrMembershipNotFound) {
		return nil, fmt.Errorf("You do not have access to this clinic")
	}
	return m, err
}

// ListUserTenants returns every clinic the user belongs to, newest first.
func (s *Service) ListUserTenants(ctx context.Context, userID uuid.UUID) ([]*UserTenant, error) {
	memberships, err := s.members.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]*UserTenant, 0, len(memberships))
	for i := len(memberships) - 1; i >= 0; i-- {
		m := memberships[i]
		t, err := s.tenants.GetByID(ctx, m.TenantID)
		if err != nil {
			return nil, err
		}
		items = append(items, &UserTenant{Tenant: t, Role: m.Role, JoinedAt: m.JoinedAt})
	}
	return items, nil
}

// SettingsInput carries the clinic settings form.
type SettingsInput struct {
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Phone            string   `json:"phone"`
	Email            *string  `json:"email"`
	Rooms            []string `json:"rooms"`
	AppointmentTypes []string `json:"appointment_types"`
	NotifyEmail      bool     `json:"notify_email"`
	NotifySMS        bool     `json:"notify_sms"`
}

// UpdateSettings persists clinic settings. Re-submitting identical values is
// harmless; only updated_at moves.
func (s *Service) UpdateSettings(ctx context.Context, tenantID uuid.UUID, in SettingsInput) (*Tenant, error) {
	if err := validateClinicFields(in.Name, in.Address, in.Phone); err != nil {
		return nil, err
	}
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	t.Name = strings.TrimSpace(in.Name)
	t.Address = strings.TrimSpace(in.Address)
	t.Phone = strings.TrimSpace(in.Phone)
	t.Email = in.Email
	if in.Rooms != nil {
		t.Rooms = in.Rooms
	}
	if in.AppointmentTypes != nil {
		t.AppointmentTypes = in.AppointmentTypes
	}
	t.NotifyEmail = in.NotifyEmail
	t.NotifySMS = in.NotifySMS
	if err := s.tenants.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]*Membership, error) {
	return s.members.ListByTenant(ctx, tenantID)
}

// UpdateMemberRole changes a staff member's role. The owner row is immutable.
func (s *Service) UpdateMemberRole(ctx context.Context, tenantID, membershipID uuid.UUID, role auth.Role) error {
	if !role.IsAssignable() {
		return fmt.Errorf("invalid role: %s", role)
	}
	m, err := s.members.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if m.TenantID != tenantID {
		return ErrMembershipNotFound
	}
	if m.Role == auth.RoleOwner {
		return fmt.Errorf("Cannot change the role of the clinic owner")
	}
	return s.members.UpdateRole(ctx, membershipID, role)
}

// RemoveMember deactivates a staff member's membership. The owner can never
// be removed.
func (s *Service) RemoveMember(ctx context.Context, tenantID, membershipID uuid.UUID) error {
	m, err := s.members.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if m.TenantID != tenantID {
		return ErrMembershipNotFound
	}
	if m.Role == auth.RoleOwner {
		return fmt.Errorf("Cannot remove the clinic owner")
	}
	return s.members.Remove(ctx, membershipID)
}

// CountStaff reports the active member count, used by the plan calculator.
func (s *Service) CountStaff(ctx context.Context, tenantID uuid.UUID) (int, error) {
	return s.members.CountActiveByTenant(ctx, tenantID)
}
