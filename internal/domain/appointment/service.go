package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/domain/patient"
	"github.com/dentora/dentora/internal/domain/tenancy"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCancelled: true,
	StatusCompleted: true,
}

// Statuses accepted at creation time; a new appointment cannot be born
// completed.
var validCreateStatuses = map[string]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCancelled: true,
}

type Service struct {
	appointments Repository
	patients     patient.Repository
	tx           tenancy.TxRunner
}

func NewService(appointments Repository, patients patient.Repository, tx tenancy.TxRunner) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{appointments: appointments, patients: patients, tx: tx}
}

// Input carries the appointment form, shared by create and update.
type Input struct {
	PatientID string  `json:"patient_id"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Duration  int     `json:"duration"`
	Type      string  `json:"type"`
	Room      *string `json:"room"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes"`
}

func (in Input) validate() (uuid.UUID, error) {
	patientID, err := uuid.Parse(in.PatientID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("Please select a patient.")
	}
	if in.Date == "" {
		return uuid.Nil, fmt.Errorf("Date is required.")
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return uuid.Nil, fmt.Errorf("Invalid date.")
	}
	if in.Time == "" {
		return uuid.Nil, fmt.Errorf("Time is required.")
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return uuid.Nil, fmt.Errorf("Invalid time.")
	}
	if in.Duration < MinDuration {
		return uuid.Nil, fmt.Errorf("Duration must be at least 15 minutes.")
	}
	return patientID, nil
}

// Create books an appointment. The slot check and the insert run inside one
// transaction; the partial unique index backstops concurrent writers, and the
// loser surfaces the same conflict message.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in Input) (*Appointment, error) {
	patientID, err := in.validate()
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = StatusScheduled
	}
	if !validCreateStatuses[in.Status] {
		return nil, fmt.Errorf("invalid appointment status: %s", in.Status)
	}
	if in.Type == "" {
		in.Type = "General"
	}

	if _, err := s.patients.GetByID(ctx, tenantID, patientID); err != nil {
		return nil, fmt.Errorf("Patient not found or access denied.")
	}

	a := &Appointment{
		TenantID:  tenantID,
		PatientID: patientID,
		Date:      in.Date,
		Time:      in.Time,
		Duration:  in.Duration,
		Type:      in.Type,
		Room:      in.Room,
		Status:    in.Status,
		Notes:     in.Notes,
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if a.Status != StatusCancelled {
			taken, err := s.appointments.ExistsAt(ctx, tenantID, a.Date, a.Time, uuid.Nil)
			if err != nil {
				return err
			}
			if taken {
				return ErrTimeSlotTaken
			}
		}
		return s.appointments.Create(ctx, a)
	})
	if errors.Is(err, ErrTimeSlotTaken) {
		return nil, fmt.Errorf("There is already an appointment scheduled at this time.")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, tenantID, id)
}

// Update rewrites an appointment. Any status transition within the enum is
// allowed; moving to an occupied slot is rejected the same way create is.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, in Input) (*Appointment, error) {
	patientID, err := in.validate()
	if err != nil {
		return nil, err
	}
	if !validStatuses[in.Status] {
		return nil, fmt.Errorf("invalid appointment status: %s", in.Status)
	}

	a, err := s.appointments.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if patientID != a.PatientID {
		if _, err := s.patients.GetByID(ctx, tenantID, patientID); err != nil {
			return nil, fmt.Errorf("Patient not found or access denied.")
		}
	}

	a.PatientID = patientID
	a.Date = in.Date
	a.Time = in.Time
	a.Duration = in.Duration
	if in.Type != "" {
		a.Type = in.Type
	}
	a.Room = in.Room
	a.Status = in.Status
	a.Notes = in.Notes

	err = s.tx(ctx, func(ctx context.Context) error {
		if a.Status != StatusCancelled {
			taken, err := s.appointments.ExistsAt(ctx, tenantID, a.Date, a.Time, a.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrTimeSlotTaken
			}
		}
		return s.appointments.Update(ctx, a)
	})
	if errors.Is(err, ErrTimeSlotTaken) {
		return nil, fmt.Errorf("There is already an appointment scheduled at this time.")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, tenantID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*Appointment, error) {
	return s.appointments.ListByPatient(ctx, tenantID, patientID)
}

func (s *Service) ListByDay(ctx context.Context, tenantID uuid.UUID, date string) ([]*Appointment, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("Invalid date.")
	}
	return s.appointments.ListByDay(ctx, tenantID, date)
}
