package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatsRepository runs the dashboard aggregates. Date strings are YYYY-MM-DD
// and month strings are YYYY-MM, matching how appointments and transactions
// store their dates.
type StatsRepository interface {
	CountActivePatients(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountPatientsCreatedBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (int64, error)
	CountUpcomingAppointments(ctx context.Context, tenantID uuid.UUID, fromDate, toDate string) (int64, error)
	MonthlyRevenue(ctx context.Context, tenantID uuid.UUID, month string) (float64, error)
	CountActiveTreatments(ctx context.Context, tenantID uuid.UUID) (int64, error)
	AppointmentsOn(ctx context.Context, tenantID uuid.UUID, date string) ([]*DayAppointment, error)
	RecentPatients(ctx context.Context, tenantID uuid.UUID, today string, limit int) ([]*RecentPatient, error)
}
