package document

import (
	"context"
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

const docCols = `id, tenant_id, patient_id, appointment_id, file_name, content_type,
	size_bytes, storage_path, url, document_type, description, created_at`

func (r *repoPG) scan(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.TenantID, &d.PatientID, &d.AppointmentID, &d.FileName,
		&d.ContentType, &d.Size, &d.StoragePath, &d.URL, &d.DocumentType,
		&d.Description, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	return &d, err
}

func (r *repoPG) Create(ctx context.Context, d *Document) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO documents (id, tenant_id, patient_id, appointment_id, file_name,
			content_type, size_bytes, storage_path, url, document_type, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		d.ID, d.TenantID, d.PatientID, d.AppointmentID, d.FileName,
		d.ContentType, d.Size, d.StoragePath, d.URL, d.DocumentType, d.Description)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Document, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+docCols+` FROM documents WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *repoPG) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM documents WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*Document, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+docCols+` FROM documents
		WHERE tenant_id = $1 AND patient_id = $2 ORDER BY created_at DESC`, tenantID, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Document
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, nil
}

func (r *repoPG) SumSizeBytes(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var total int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(size_bytes), 0) FROM documents WHERE tenant_id = $1`, tenantID).Scan(&total)
	return total, err
}
