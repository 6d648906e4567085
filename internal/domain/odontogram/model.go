// Package odontogram manages the per-patient dental chart: 32 adult teeth,
// each with a condition and optional notes.
package odontogram

import (
	"time"

	"github.com/google/uuid"
)

// ToothCount is fixed to the adult dentition.
const ToothCount = 32

// Tooth statuses.
const (
	StatusHealthy   = "healthy"
	StatusCaries    = "caries"
	StatusFilled    = "filled"
	StatusCrown     = "crown"
	StatusMissing   = "missing"
	StatusImplant   = "implant"
	StatusRootCanal = "root-canal"
)

var ValidStatuses = map[string]bool{
	StatusHealthy:   true,
	StatusCaries:    true,
	StatusFilled:    true,
	StatusCrown:     true,
	StatusMissing:   true,
	StatusImplant:   true,
	StatusRootCanal: true,
}

// Tooth is one entry in the chart, numbered 1 through 32.
type Tooth struct {
	Number int    `json:"number"`
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// Odontogram holds one patient's chart. Teeth are stored as a JSONB column;
// there is exactly one row per (tenant, patient).
type Odontogram struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Teeth     []Tooth   `db:"teeth" json:"teeth"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultTeeth returns a fresh all-healthy chart.
func DefaultTeeth() []Tooth {
	teeth := make([]Tooth, ToothCount)
	for i := range teeth {
		teeth[i] = Tooth{Number: i + 1, Status: StatusHealthy}
	}
	return teeth
}
