package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrTimeSlotTaken is returned when another non-cancelled appointment
	// already occupies the slot, whether caught by the pre-insert check or by
	// the partial unique index when two writers race.
	ErrTimeSlotTaken = errors.New("time slot already taken")
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	ExistsAt(ctx context.Context, tenantID uuid.UUID, date, timeOfDay string, excludeID uuid.UUID) (bool, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*Appointment, error)
	ListByDay(ctx context.Context, tenantID uuid.UUID, date string) ([]*Appointment, error)
}
