// Package dashboard aggregates cross-domain figures for the clinic home page.
// It reads through its own repository rather than fanning out to every
// domain service; the queries are aggregates the domains do not otherwise
// need.
package dashboard

import (
	"time"

	"github.com/google/uuid"
)

// Stats is the headline figure set for the current clinic.
type Stats struct {
	ActivePatients       int64   `json:"active_patients"`
	NewPatientsThisMonth int64   `json:"new_patients_this_month"`
	PatientGrowth        float64 `json:"patient_growth"`
	UpcomingAppointments int64   `json:"upcoming_appointments"`
	MonthlyRevenue       float64 `json:"monthly_revenue"`
	RevenueChange        float64 `json:"revenue_change"`
	ActiveTreatments     int64   `json:"active_treatments"`
}

// DayAppointment is one schedule entry with the patient name joined in.
type DayAppointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	Time        string    `db:"appointment_time" json:"time"`
	Duration    int       `db:"duration" json:"duration"`
	Type        string    `db:"type" json:"type"`
	Room        *string   `db:"room" json:"room,omitempty"`
	Status      string    `db:"status" json:"status"`
}

// RecentPatient is a registry entry trimmed for the dashboard list. LastVisit
// and NextVisit are YYYY-MM-DD dates derived from the schedule, nil when the
// patient has no completed or upcoming appointment.
type RecentPatient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	LastVisit *string   `db:"last_visit" json:"last_visit,omitempty"`
	NextVisit *string   `db:"next_visit" json:"next_visit,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
