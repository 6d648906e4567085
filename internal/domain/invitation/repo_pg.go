package invitation

import (
	"context"
	"errors"
	"time"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const invCols = `id, tenant_id, email, name, role, message, token, invited_by,
	status, expires_at, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Invitation, error) {
	var inv Invitation
	err := row.Scan(&inv.ID, &inv.TenantID, &inv.Email, &inv.Name, &inv.Role,
		&inv.Message, &inv.Token, &inv.InvitedBy, &inv.Status, &inv.ExpiresAt,
		&inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvitationNotFound
	}
	return &inv, err
}

func (r *repoPG) Create(ctx context.Context, inv *Invitation) error {
	inv.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invitations (id, tenant_id, email, name, role, message, token,
			invited_by, status, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		inv.ID, inv.TenantID, inv.Email, inv.Name, inv.Role, inv.Message,
		inv.Token, inv.InvitedBy, inv.Status, inv.ExpiresAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+invCols+` FROM invitations WHERE id = $1`, id))
}

func (r *repoPG) GetByToken(ctx context.Context, token string) (*Invitation, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+invCols+` FROM invitations WHERE token = $1`, token))
}

func (r *repoPG) GetPendingByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Invitation, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `
		SELECT `+invCols+` FROM invitations
		WHERE tenant_id = $1 AND LOWER(email) = LOWER($2) AND status = 'pending'`, tenantID, email))
}

func (r *repoPG) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Invitation, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+invCols+` FROM invitations WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Invitation
	for rows.Next() {
		inv, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	return items, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE invitations SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) Refresh(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE invitations SET token=$2, expires_at=$3, status='pending', updated_at=NOW()
		WHERE id = $1`, id, token, expiresAt)
	return err
}
