package tenancy

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dentora/dentora/internal/platform/auth"
	"github.com/dentora/dentora/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Tenant Repository ===========

type tenantRepoPG struct{ pool *pgxpool.Pool }

func NewTenantRepoPG(pool *pgxpool.Pool) TenantRepository { return &tenantRepoPG{pool: pool} }

func (r *tenantRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const tenantCols = `id, name, address, phone, email, plan, rooms, appointment_types,
	notify_email, notify_sms, stripe_customer_id, created_at, updated_at`

func (r *tenantRepoPG) scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Address, &t.Phone, &t.Email, &t.Plan,
		&t.Rooms, &t.AppointmentTypes, &t.NotifyEmail, &t.NotifySMS,
		&t.StripeCustomerID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTenantNotFound
	}
	return &t, err
}

func (r *tenantRepoPG) Create(ctx context.Context, t *Tenant) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO tenants (id, name, address, phone, email, plan, rooms,
			appointment_types, notify_email, notify_sms)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		t.ID, t.Name, t.Address, t.Phone, t.Email, t.Plan, t.Rooms,
		t.AppointmentTypes, t.NotifyEmail, t.NotifySMS)
	return err
}

func (r *tenantRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return r.scanTenant(r.conn(ctx).QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE id = $1`, id))
}

func (r *tenantRepoPG) Update(ctx context.Context, t *Tenant) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE tenants SET name=$2, address=$3, phone=$4, email=$5, rooms=$6,
			appointment_types=$7, notify_email=$8, notify_sms=$9, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.Address, t.Phone, t.Email, t.Rooms,
		t.AppointmentTypes, t.NotifyEmail, t.NotifySMS)
	return err
}

func (r *tenantRepoPG) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE tenants SET stripe_customer_id=$2, updated_at=NOW() WHERE id = $1`, id, customerID)
	return err
}

func (r *tenantRepoPG) GetByStripeCustomerID(ctx context.Context, customerID string) (*Tenant, error) {
	return r.scanTenant(r.conn(ctx).QueryRow(ctx,
		`SELECT `+tenantCols+` FROM tenants WHERE stripe_customer_id = $1`, customerID))
}

func (r *tenantRepoPG) SetPlan(ctx context.Context, id uuid.UUID, plan Plan) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE tenants SET plan=$2, updated_at=NOW() WHERE id = $1`, id, plan)
	return err
}

// =========== Membership Repository ===========

type membershipRepoPG struct{ pool *pgxpool.Pool }

func NewMembershipRepoPG(pool *pgxpool.Pool) MembershipRepository {
	return &membershipRepoPG{pool: pool}
}

func (r *membershipRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const memberCols = `id, tenant_id, user_id, user_name, user_email, role, status, joined_at, updated_at`

func (r *membershipRepoPG) scanMember(row pgx.Row) (*Membership, error) {
	var m Membership
	err := row.Scan(&m.ID, &m.TenantID, &m.UserID, &m.UserName, &m.UserEmail,
		&m.Role, &m.Status, &m.JoinedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	return &m, err
}

func (r *membershipRepoPG) Create(ctx context.Context, m *Membership) error {
	m.ID = uuid.New()
	if m.Status == "" {
		m.Status = MemberActive
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO memberships (id, tenant_id, user_id, user_name, user_email, role, status, joined_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())`,
		m.ID, m.TenantID, m.UserID, m.UserName, m.UserEmail, m.Role, m.Status)
	return err
}

func (r *membershipRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Membership, error) {
	return r.scanMember(r.conn(ctx).QueryRow(ctx, `SELECT `+memberCols+` FROM memberships WHERE id = $1`, id))
}

func (r *membershipRepoPG) GetActive(ctx context.Context, tenantID, userID uuid.UUID) (*Membership, error) {
	return r.scanMember(r.conn(ctx).QueryRow(ctx, `
		SELECT `+memberCols+` FROM memberships
		WHERE tenant_id = $1 AND user_id = $2 AND status = 'active'`, tenantID, userID))
}

func (r *membershipRepoPG) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Membership, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+memberCols+` FROM memberships
		WHERE user_id = $1 AND status = 'active' ORDER BY joined_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Membership
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}

func (r *membershipRepoPG) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Membership, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+memberCols+` FROM memberships
		WHERE tenant_id = $1 AND status = 'active' ORDER BY joined_at ASC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Membership
	for rows.Next() {
		m, err := r.scanMember(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}

func (r *membershipRepoPG) UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE memberships SET role=$2, updated_at=NOW() WHERE id = $1`, id, role)
	return err
}

func (r *membershipRepoPG) Remove(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE memberships SET status='removed', updated_at=NOW() WHERE id = $1`, id)
	return err
}

func (r *membershipRepoPG) CountActiveByTenant(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM memberships WHERE tenant_id = $1 AND status = 'active'`, tenantID).Scan(&count)
	return count, err
}
