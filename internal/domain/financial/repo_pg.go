package financial

import (
	"context"
	"errors"
	"fmt"

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

const txnCols = `id, tenant_id, patient_id, appointment_id, type, amount, currency,
	payment_method, status, transaction_date, description, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.TenantID, &t.PatientID, &t.AppointmentID, &t.Type,
		&t.Amount, &t.Currency, &t.PaymentMethod, &t.Status, &t.Date,
		&t.Description, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *Transaction) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO transactions (id, tenant_id, patient_id, appointment_id, type,
			amount, currency, payment_method, status, transaction_date, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		t.ID, t.TenantID, t.PatientID, t.AppointmentID, t.Type,
		t.Amount, t.Currency, t.PaymentMethod, t.Status, t.Date, t.Description)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+txnCols+` FROM transactions WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *repoPG) List(ctx context.Context, tenantID uuid.UUID, patientID *uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	query := `SELECT ` + txnCols + ` FROM transactions WHERE tenant_id = $1`
	countQuery := `SELECT COUNT(*) FROM transactions WHERE tenant_id = $1`
	args := []interface{}{tenantID}
	idx := 2

	if patientID != nil {
		cond := fmt.Sprintf(` AND patient_id = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, *patientID)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY transaction_date DESC, created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Transaction
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, nil
}

func (r *repoPG) MonthlyRevenue(ctx context.Context, tenantID uuid.UUID, month string) (float64, error) {
	var total float64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE tenant_id = $1 AND type = 'payment' AND status = 'completed'
			AND transaction_date LIKE $2 || '%'`, tenantID, month).Scan(&total)
	return total, err
}
