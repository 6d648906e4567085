package dashboard

import (
	"context"
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

type statsRepoPG struct{ pool *pgxpool.Pool }

func NewStatsRepoPG(pool *pgxpool.Pool) StatsRepository {
	return &statsRepoPG{pool: pool}
}

func (r *statsRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *statsRepoPG) CountActivePatients(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE tenant_id = $1 AND status = 'active'`,
		tenantID).Scan(&n)
	return n, err
}

func (r *statsRepoPG) CountPatientsCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM patients
		WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3`,
		tenantID, from, to).Scan(&n)
	return n, err
}

func (r *statsRepoPG) CountUpcomingAppointments(ctx context.Context, tenantID uuid.UUID, fromDate, toDate string) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE tenant_id = $1
		  AND appointment_date >= $2 AND appointment_date <= $3
		  AND status IN ('scheduled', 'confirmed')`,
		tenantID, fromDate, toDate).Scan(&n)
	return n, err
}

func (r *statsRepoPG) MonthlyRevenue(ctx context.Context, tenantID uuid.UUID, month string) (float64, error) {
	var total float64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE tenant_id = $1 AND type = 'payment' AND status = 'completed'
		  AND transaction_date LIKE $2 || '%'`,
		tenantID, month).Scan(&total)
	return total, err
}

func (r *statsRepoPG) CountActiveTreatments(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM medical_records
		WHERE tenant_id = $1 AND record_type = 'treatment' AND status = 'active'`,
		tenantID).Scan(&n)
	return n, err
}

func (r *statsRepoPG) AppointmentsOn(ctx context.Context, tenantID uuid.UUID, date string) ([]*DayAppointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.patient_id, p.name, a.appointment_time, a.duration,
		       a.type, a.room, a.status
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.tenant_id = $1 AND a.appointment_date = $2
		  AND a.status <> 'cancelled'
		ORDER BY a.appointment_time ASC`, tenantID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*DayAppointment
	for rows.Next() {
		var a DayAppointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.Time,
			&a.Duration, &a.Type, &a.Room, &a.Status); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *statsRepoPG) RecentPatients(ctx context.Context, tenantID uuid.UUID, today string, limit int) ([]*RecentPatient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id, p.name, p.phone,
		       (SELECT MAX(appointment_date) FROM appointments
		        WHERE patient_id = p.id AND appointment_date < $2
		          AND status = 'completed') AS last_visit,
		       (SELECT MIN(appointment_date) FROM appointments
		        WHERE patient_id = p.id AND appointment_date >= $2
		          AND status IN ('scheduled', 'confirmed')) AS next_visit,
		       p.created_at
		FROM patients p
		WHERE p.tenant_id = $1 AND p.status = 'active'
		ORDER BY p.created_at DESC LIMIT $3`, tenantID, today, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*RecentPatient
	for rows.Next() {
		var p RecentPatient
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.LastVisit, &p.NextVisit, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}
