// Package patient manages the clinic's patient registry.
package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient statuses. Patients are never hard-deleted; deactivation flips the
// status so history stays intact.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Patient struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	TenantID              uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Name                  string    `db:"name" json:"name"`
	Email                 *string   `db:"email" json:"email,omitempty"`
	Phone                 string    `db:"phone" json:"phone"`
	DateOfBirth           time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender                string    `db:"gender" json:"gender"`
	Address               *string   `db:"address" json:"address,omitempty"`
	EmergencyContactName  *string   `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string   `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	MedicalHistory        *string   `db:"medical_history" json:"medical_history,omitempty"`
	Allergies             *string   `db:"allergies" json:"allergies,omitempty"`
	InsuranceProvider     *string   `db:"insurance_provider" json:"insurance_provider,omitempty"`
	InsuranceNumber       *string   `db:"insurance_number" json:"insurance_number,omitempty"`
	Notes                 *string   `db:"notes" json:"notes,omitempty"`
	Status                string    `db:"status" json:"status"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}
