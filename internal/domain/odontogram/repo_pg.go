package odontogram

import (
	"context"
	"encoding/json"
	"errors"

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

func (r *repoPG) GetByPatient(ctx context.Context, tenantID, patientID uuid.UUID) (*Odontogram, error) {
	var o Odontogram
	var teethJSON []byte
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, tenant_id, patient_id, teeth, created_at, updated_at
		FROM odontograms WHERE tenant_id = $1 AND patient_id = $2`, tenantID, patientID).
		Scan(&o.ID, &o.TenantID, &o.PatientID, &teethJSON, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChartNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(teethJSON, &o.Teeth); err != nil {
		return nil, err
	}
	return &o, nil
}

// Upsert writes the whole chart, replacing any existing row for the patient.
func (r *repoPG) Upsert(ctx context.Context, o *Odontogram) error {
	teethJSON, err := json.Marshal(o.Teeth)
	if err != nil {
		return err
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO odontograms (id, tenant_id, patient_id, teeth)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (tenant_id, patient_id)
		DO UPDATE SET teeth = EXCLUDED.teeth, updated_at = NOW()`,
		o.ID, o.TenantID, o.PatientID, teethJSON)
	return err
}
