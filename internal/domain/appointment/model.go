// Package appointment manages the clinic schedule. A clinic can hold at most
// one non-cancelled appointment per (date, time) slot.
package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// MinDuration is the shortest bookable appointment in minutes.
const MinDuration = 15

// Appointment holds a slot on the clinic schedule. Date is YYYY-MM-DD and
// Time is HH:MM; both are kept as strings end to end, matching the wire
// format, and compare correctly as ISO text.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Date      string    `db:"appointment_date" json:"date"`
	Time      string    `db:"appointment_time" json:"time"`
	Duration  int       `db:"duration" json:"duration"`
	Type      string    `db:"type" json:"type"`
	Room      *string   `db:"room" json:"room,omitempty"`
	Status    string    `db:"status" json:"status"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
