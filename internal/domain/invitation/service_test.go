package invitation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentora/dentora/internal/domain/tenancy"
	"github.com/dentora/dentora/internal/platform/auth"
)

type mockRepo struct {
	invitations map[uuid.UUID]*Invitation
}

func newMockRepo() *mockRepo {
	return &mockRepo{invitations: make(map[uuid.UUID]*Invitation)}
}

func (r *mockRepo) Create(_ context.Context, inv *Invitation) error {
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now()
	cp := *inv
	r.invitations[inv.ID] = &cp
	return nil
}

func (r *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Invitation, error) {
	inv, ok := r.invitations[id]
	if !ok {
		return nil, ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *mockRepo) GetByToken(_ context.Context, token string) (*Invitation, error) {
	for _, inv := range r.invitations {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, ErrInvitationNotFound
}

func (r *mockRepo) GetPendingByEmail(_ context.Context, tenantID uuid.UUID, email string) (*Invitation, error) {
	for _, inv := range r.invitations {
		if inv.TenantID == tenantID && strings.EqualFold(inv.Email, email) && inv.Status == StatusPending {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, ErrInvitationNotFound
}

func (r *mockRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*Invitation, error) {
	var items []*Invitation
	for _, inv := range r.invitations {
		if inv.TenantID == tenantID {
			cp := *inv
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (r *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	inv, ok := r.invitations[id]
	if !ok {
		return ErrInvitationNotFound
	}
	inv.Status = status
	return nil
}

func (r *mockRepo) Refresh(_ context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	inv, ok := r.invitations[id]
	if !ok {
		return ErrInvitationNotFound
	}
	inv.Token = token
	inv.ExpiresAt = expiresAt
	inv.Status = StatusPending
	return nil
}

// membership mock shared with the tenancy service contract

type mockMembers struct {
	members map[uuid.UUID]*tenancy.Membership
}

func newMockMembers() *mockMembers {
	return &mockMembers{members: make(map[uuid.UUID]*tenancy.Membership)}
}

func (r *mockMembers) Create(_ context.Context, m *tenancy.Membership) error {
	m.ID = uuid.New()
	if m.Status == "" {
		m.Status = tenancy.MemberActive
	}
	m.JoinedAt = time.Now()
	cp := *m
	r.members[m.ID] = &cp
	return nil
}

func (r *mockMembers) GetByID(_ context.Context, id uuid.UUID) (*tenancy.Membership, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, tenancy.ErrMembershipNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *mockMembers) GetActive(_ context.Context, tenantID, userID uuid.UUID) (*tenancy.Membership, error) {
	for _, m := range r.members {
		if m.TenantID == tenantID && m.UserID == userID && m.Status == tenancy.MemberActive {
			cp := *m
			return &cp, nil
		}
	}
	return nil, tenancy.ErrMembershipNotFound
}

func (r *mockMembers) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*tenancy.Membership, error) {
	var items []*tenancy.Membership
	for _, m := range r.members {
		if m.UserID == userID && m.Status == tenancy.MemberActive {
			cp := *m
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (r *mockMembers) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*tenancy.Membership, error) {
	var items []*tenancy.Membership
	for _, m := range r.members {
		if m.TenantID == tenantID && m.Status == tenancy.MemberActive {
			cp := *m
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (r *mockMembers) UpdateRole(_ context.Context, id uuid.UUID, role auth.Role) error {
	m, ok := r.members[id]
	if !ok {
		return tenancy.ErrMembershipNotFound
	}
	m.Role = role
	return nil
}

func (r *mockMembers) Remove(_ context.Context, id uuid.UUID) error {
	m, ok := r.members[id]
	if !ok {
		return tenancy.ErrMembershipNotFound
	}
	m.Status = tenancy.MemberRemoved
	return nil
}

func (r *mockMembers) CountActiveByTenant(_ context.Context, tenantID uuid.UUID) (int, error) {
	count := 0
	for _, m := range r.members {
		if m.TenantID == tenantID && m.Status == tenancy.MemberActive {
			count++
		}
	}
	return count, nil
}

type mockTenants struct {
	tenants map[uuid.UUID]*tenancy.Tenant
}

func (r *mockTenants) Create(_ context.Context, t *tenancy.Tenant) error {
	t.ID = uuid.New()
	r.tenants[t.ID] = t
	return nil
}

func (r *mockTenants) GetByID(_ context.Context, id uuid.UUID) (*tenancy.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, tenancy.ErrTenantNotFound
	}
	return t, nil
}

func (r *mockTenants) Update(_ context.Context, t *tenancy.Tenant) error { return nil }

func (r *mockTenants) SetStripeCustomerID(_ context.Context, id uuid.UUID, customerID string) error {
	return nil
}

func (r *mockTenants) GetByStripeCustomerID(_ context.Context, customerID string) (*tenancy.Tenant, error) {
	return nil, tenancy.ErrTenantNotFound
}

func (r *mockTenants) SetPlan(_ context.Context, id uuid.UUID, plan tenancy.Plan) error { return nil }

func newTestService(t *testing.T) (*Service, *mockRepo, *mockMembers, uuid.UUID) {
	t.Helper()
	repo := newMockRepo()
	members := newMockMembers()
	tenants := &mockTenants{tenants: make(map[uuid.UUID]*tenancy.Tenant)}
	clinic := &tenancy.Tenant{Name: "Bright Smile", Plan: tenancy.PlanFree}
	_ = tenants.Create(context.Background(), clinic)
	svc := NewService(repo, members, tenants, nil, zerolog.Nop())
	return svc, repo, members, clinic.ID
}

func TestSendValidation(t *testing.T) {
	svc, _, _, tenantID := newTestService(t)
	invitedBy := uuid.New()
	ctx := context.Background()

	if _, err := svc.Send(ctx, tenantID, invitedBy, SendInput{Email: "not-an-email", Name: "Bo", Role: "dentist"}); err == nil {
		t.Error("expected error for invalid email")
	}
	if _, err := svc.Send(ctx, tenantID, invitedBy, SendInput{Email: "bo@clinic.test", Name: "B", Role: "dentist"}); err == nil {
		t.Error("expected error for short name")
	}
	if _, err := svc.Send(ctx, tenantID, invitedBy, SendInput{Email: "bo@clinic.test", Name: "Bo Chen", Role: "owner"}); err == nil {
		t.Error("expected error for owner role")
	}
}

func TestSendDuplicates(t *testing.T) {
	svc, _, members, tenantID := newTestService(t)
	invitedBy := uuid.New()
	ctx := context.Background()

	_ = members.Create(ctx, &tenancy.Membership{
		TenantID: tenantID, UserID: uuid.New(), UserEmail: "existing@clinic.test", Role: auth.RoleDentist,
	})
	_, err := svc.Send(ctx, tenantID, invitedBy, SendInput{Email: "Existing@clinic.test", Name: "Ed", Role: "dentist"})
	if err == nil || err.Error() != "This person is already a member of your clinic" {
		t.Errorf("member duplicate: got %v", err)
	}

	if _, err := svc.Send(ctx, tenantID, invitedBy, SendInput{Email: "new@clinic.test", Name: "Nia", Role: "assistant"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	_, err = svc.Send(ctx, tenantID, invitedBy, SendInput{Email: "new@clinic.test", Name: "Nia", Role: "assistant"})
	if err == nil || err.Error() != "An invitation has already been sent to this email" {
		t.Errorf("pending duplicate: got %v", err)
	}
}

func TestAcceptCreatesMembership(t *testing.T) {
	svc, _, members, tenantID := newTestService(t)
	ctx := context.Background()

	inv, err := svc.Send(ctx, tenantID, uuid.New(), SendInput{Email: "nia@clinic.test", Name: "Nia", Role: "hygienist"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	userID := uuid.New()
	m, err := svc.Accept(ctx, inv.Token, userID, "Nia")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if m.Role != auth.RoleHygienist || m.TenantID != tenantID {
		t.Errorf("membership = %+v", m)
	}
	if _, err := members.GetActive(ctx, tenantID, userID); err != nil {
		t.Errorf("active membership missing: %v", err)
	}

	// token is single use
	if _, err := svc.Accept(ctx, inv.Token, uuid.New(), "X"); err == nil {
		t.Error("expected error re-using an accepted token")
	}
}

func TestAcceptExpiryWindow(t *testing.T) {
	svc, _, _, tenantID := newTestService(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	svc.now = func() time.Time { return t0 }
	inv, err := svc.Send(ctx, tenantID, uuid.New(), SendInput{Email: "nia@clinic.test", Name: "Nia", Role: "dentist"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	// six days in, still acceptable
	svc.now = func() time.Time { return t0.Add(6 * 24 * time.Hour) }
	if _, err := svc.Accept(ctx, inv.Token, uuid.New(), "Nia"); err != nil {
		t.Fatalf("accept at day 6: %v", err)
	}

	// a second invitation, checked eight days in
	svc.now = func() time.Time { return t0 }
	inv2, err := svc.Send(ctx, tenantID, uuid.New(), SendInput{Email: "late@clinic.test", Name: "Leo", Role: "dentist"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	svc.now = func() time.Time { return t0.Add(8 * 24 * time.Hour) }
	_, err = svc.Accept(ctx, inv2.Token, uuid.New(), "Leo")
	if err == nil || err.Error() != "This invitation has expired" {
		t.Errorf("accept at day 8: got %v", err)
	}
}

func TestAcceptUnknownToken(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Accept(context.Background(), "no-such-token", uuid.New(), "X")
	if err == nil || err.Error() != "Invalid or expired invitation" {
		t.Errorf("got %v", err)
	}
}

func TestResendRefreshesExpiry(t *testing.T) {
	svc, repo, _, tenantID := newTestService(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	svc.now = func() time.Time { return t0 }
	inv, _ := svc.Send(ctx, tenantID, uuid.New(), SendInput{Email: "nia@clinic.test", Name: "Nia", Role: "dentist"})
	oldToken := inv.Token

	svc.now = func() time.Time { return t0.Add(10 * 24 * time.Hour) }
	renewed, err := svc.Resend(ctx, tenantID, inv.ID)
	if err != nil {
		t.Fatalf("Resend: %v", err)
	}
	if renewed.Token == oldToken {
		t.Error("token not rotated")
	}
	stored, _ := repo.GetByID(ctx, inv.ID)
	if !stored.ExpiresAt.Equal(t0.Add(10*24*time.Hour + TTL)) {
		t.Errorf("expires_at = %v", stored.ExpiresAt)
	}

	// the new token works, the old one does not
	if _, err := svc.Accept(ctx, renewed.Token, uuid.New(), "Nia"); err != nil {
		t.Errorf("accept renewed token: %v", err)
	}
	if _, err := svc.Accept(ctx, oldToken, uuid.New(), "Nia"); err == nil {
		t.Error("expected old token to be rejected")
	}
}

func TestRevoke(t *testing.T) {
	svc, _, _, tenantID := newTestService(t)
	ctx := context.Background()

	inv, _ := svc.Send(ctx, tenantID, uuid.New(), SendInput{Email: "nia@clinic.test", Name: "Nia", Role: "dentist"})

	// another tenant cannot revoke it
	if err := svc.Revoke(ctx, uuid.New(), inv.ID); err != ErrInvitationNotFound {
		t.Errorf("cross-tenant revoke: got %v", err)
	}

	if err := svc.Revoke(ctx, tenantID, inv.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Accept(ctx, inv.Token, uuid.New(), "Nia"); err == nil {
		t.Error("expected revoked token to be rejected")
	}
}

func TestListDerivesExpiredFlag(t *testing.T) {
	svc, _, _, tenantID := newTestService(t)
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	svc.now = func() time.Time { return t0 }
	_, _ = svc.Send(ctx, tenantID, uuid.New(), SendInput{Email: "old@clinic.test", Name: "Old", Role: "dentist"})

	svc.now = func() time.Time { return t0.Add(8 * 24 * time.Hour) }
	_, _ = svc.Send(ctx, tenantID, uuid.New(), SendInput{Email: "fresh@clinic.test", Name: "Fresh", Role: "dentist"})

	items, err := svc.ListByTenant(ctx, tenantID)
	if err != nil {
		t.Fatalf("ListByTenant: %v", err)
	}
	byEmail := map[string]bool{}
	for _, inv := range items {
		byEmail[inv.Email] = inv.Expired
	}
	if !byEmail["old@clinic.test"] {
		t.Error("stale invitation not flagged expired")
	}
	if byEmail["fresh@clinic.test"] {
		t.Error("fresh invitation flagged expired")
	}
}
