// Package medicalrecord manages clinical notes: consultations, treatments,
// procedures, and free-form notes attached to a patient.
package medicalrecord

import (
	"time"

	"github.com/google/uuid"
)

// Record types.
const (
	TypeConsultation = "consultation"
	TypeTreatment    = "treatment"
	TypeProcedure    = "procedure"
	TypeNote         = "note"
)

// Record statuses. Treatments stay active until marked completed.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

type Record struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	TenantID      uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	RecordType    string     `db:"record_type" json:"record_type"`
	Title         string     `db:"title" json:"title"`
	Diagnosis     *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Treatment     *string    `db:"treatment" json:"treatment,omitempty"`
	Medications   *string    `db:"medications" json:"medications,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
