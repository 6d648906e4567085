package invitation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentora/dentora/internal/domain/tenancy"
	"github.com/dentora/dentora/internal/platform/auth"
)

type Service struct {
	invitations Repository
	members     tenancy.MembershipRepository
	tenants     tenancy.TenantRepository
	tx          tenancy.TxRunner
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(invitations Repository, members tenancy.MembershipRepository, tenants tenancy.TenantRepository, tx tenancy.TxRunner, logger zerolog.Logger) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{
		invitations: invitations,
		members:     members,
		tenants:     tenants,
		tx:          tx,
		logger:      logger,
		now:         time.Now,
	}
}

// SendInput carries the invite form.
type SendInput struct {
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Role    string  `json:"role"`
	Message *string `json:"message"`
}

// Send creates a pending invitation with a fresh token valid for seven days.
func (s *Service) Send(ctx context.Context, tenantID, invitedBy uuid.UUID, in SendInput) (*Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("A valid email address is required")
	}
	if len(strings.TrimSpace(in.Name)) < 2 {
		return nil, fmt.Errorf("Name must be at least 2 characters.")
	}
	role := auth.Role(in.Role)
	if !role.IsAssignable() {
		return nil, fmt.Errorf("invalid role: %s", in.Role)
	}

	existing, err := s.members.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, m := range existing {
		if strings.EqualFold(m.UserEmail, email) {
			return nil, fmt.Errorf("This person is already a member of your clinic")
		}
	}

	if _, err := s.invitations.GetPendingByEmail(ctx, tenantID, email); err == nil {
		return nil, fmt.Errorf("An invitation has already been sent to this email")
	} else if !errors.Is(err, ErrInvitationNotFound) {
		return nil, err
	}

	inv := &Invitation{
		TenantID:  tenantID,
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		Role:      role,
		Message:   in.Message,
		Token:     uuid.NewString(),
		InvitedBy: invitedBy,
		Status:    StatusPending,
		ExpiresAt: s.now().Add(TTL),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}

	// TODO: deliver the invitation email once a mail provider is wired up.
	s.logger.Info().
		Str("invitation_id", inv.ID.String()).
		Str("email", inv.Email).
		Str("role", string(inv.Role)).
		Msg("invitation created")

	return inv, nil
}

// Lookup resolves a token for the public accept page. It returns the
// invitation together with the inviting clinic.
func (s *Service) Lookup(ctx context.Context, token string) (*Invitation, *tenancy.Tenant, error) {
	inv, err := s.pendingByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.tenants.GetByID(ctx, inv.TenantID)
	if err != nil {
		return nil, nil, err
	}
	return inv, t, nil
}

func (s *Service) pendingByToken(ctx context.Context, token string) (*Invitation, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if errors.Is(err, ErrInvitationNotFound) {
		return nil, fmt.Errorf("Invalid or expired invitation")
	}
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusPending {
		return nil, fmt.Errorf("Invalid or expired invitation")
	}
	if s.now().After(inv.ExpiresAt) {
		return nil, fmt.Errorf("This invitation has expired")
	}
	return inv, nil
}

// Accept turns a pending, unexpired invitation into an active membership for
// the calling user. Membership creation and status flip are atomic.
func (s *Service) Accept(ctx context.Context, token string, userID uuid.UUID, userName string) (*tenancy.Membership, error) {
	inv, err := s.pendingByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if _, err := s.members.GetActive(ctx, inv.TenantID, userID); err == nil {
		return nil, fmt.Errorf("This person is already a member of your clinic")
	} else if !errors.Is(err, tenancy.ErrMembershipNotFound) {
		return nil, err
	}

	if userName == "" {
		userName = inv.Name
	}
	m := &tenancy.Membership{
		TenantID:  inv.TenantID,
		UserID:    userID,
		UserName:  userName,
		UserEmail: inv.Email,
		Role:      inv.Role,
		Status:    tenancy.MemberActive,
	}
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.members.Create(ctx, m); err != nil {
			return err
		}
		return s.invitations.UpdateStatus(ctx, inv.ID, StatusAccepted)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Decline marks a pending invitation declined.
func (s *Service) Decline(ctx context.Context, token string) error {
	inv, err := s.pendingByToken(ctx, token)
	if err != nil {
		return err
	}
	return s.invitations.UpdateStatus(ctx, inv.ID, StatusDeclined)
}

// Revoke withdraws a pending invitation.
func (s *Service) Revoke(ctx context.Context, tenantID, invitationID uuid.UUID) error {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.TenantID != tenantID {
		return ErrInvitationNotFound
	}
	if inv.Status != StatusPending {
		return fmt.Errorf("Only pending invitations can be revoked")
	}
	return s.invitations.UpdateStatus(ctx, invitationID, StatusRevoked)
}

// Resend issues a new token and a fresh seven-day expiry.
func (s *Service) Resend(ctx context.Context, tenantID, invitationID uuid.UUID) (*Invitation, error) {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.TenantID != tenantID {
		return nil, ErrInvitationNotFound
	}
	if inv.Status != StatusPending {
		return nil, fmt.Errorf("Only pending invitations can be resent")
	}
	inv.Token = uuid.NewString()
	inv.ExpiresAt = s.now().Add(TTL)
	if err := s.invitations.Refresh(ctx, inv.ID, inv.Token, inv.ExpiresAt); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("invitation_id", inv.ID.String()).
		Str("email", inv.Email).
		Msg("invitation resent")

	return inv, nil
}

// ListByTenant returns the tenant's invitations with the derived expired
// flag set on stale pending rows.
func (s *Service) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Invitation, error) {
	items, err := s.invitations.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, inv := range items {
		inv.Expired = inv.Status == StatusPending && now.After(inv.ExpiresAt)
	}
	return items, nil
}
