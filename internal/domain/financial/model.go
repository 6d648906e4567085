// Package financial tracks patient payments, refunds, and adjustments, and
// feeds the revenue figures on the dashboard.
package financial

import (
	"time"

	"github.com/google/uuid"
)

// Transaction types.
const (
	TypePayment    = "payment"
	TypeRefund     = "refund"
	TypeAdjustment = "adjustment"
)

// Transaction statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

type Transaction struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	TenantID      uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Type          string     `db:"type" json:"type"`
	Amount        float64    `db:"amount" json:"amount"`
	Currency      string     `db:"currency" json:"currency"`
	PaymentMethod *string    `db:"payment_method" json:"payment_method,omitempty"`
	Status        string     `db:"status" json:"status"`
	Date          string     `db:"transaction_date" json:"date"`
	Description   *string    `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
