package financial

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/domain/patient"
)

var validTypes = map[string]bool{
	TypePayment:    true,
	TypeRefund:     true,
	TypeAdjustment: true,
}

var validStatuses = map[string]bool{
	StatusPending:   true,
	StatusCompleted: true,
	StatusFailed:    true,
	StatusCancelled: true,
}

type Service struct {
	transactions Repository
	patients     patient.Repository
}

func NewService(transactions Repository, patients patient.Repository) *Service {
	return &Service{transactions: transactions, patients: patients}
}

// Input carries the transaction form.
type Input struct {
	PatientID     string  `json:"patient_id"`
	AppointmentID *string `json:"appointment_id"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod *string `json:"payment_method"`
	Status        string  `json:"status"`
	Date          string  `json:"date"`
	Description   *string `json:"description"`
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in Input) (*Transaction, error) {
	patientID, err := uuid.Parse(in.PatientID)
	if err != nil {
		return nil, fmt.Errorf("Please select a patient.")
	}
	if _, err := s.patients.GetByID(ctx, tenantID, patientID); err != nil {
		return nil, fmt.Errorf("Patient not found or access denied.")
	}
	if !validTypes[in.Type] {
		return nil, fmt.Errorf("invalid transaction type: %s", in.Type)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("Amount must be greater than zero.")
	}
	if in.Status == "" {
		in.Status = StatusCompleted
	}
	if !validStatuses[in.Status] {
		return nil, fmt.Errorf("invalid transaction status: %s", in.Status)
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if in.Date == "" {
		in.Date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, fmt.Errorf("Invalid date.")
	}

	var appointmentID *uuid.UUID
	if in.AppointmentID != nil && *in.AppointmentID != "" {
		id, err := uuid.Parse(*in.AppointmentID)
		if err != nil {
			return nil, fmt.Errorf("invalid appointment_id")
		}
		appointmentID = &id
	}

	t := &Transaction{
		TenantID:      tenantID,
		PatientID:     patientID,
		AppointmentID: appointmentID,
		Type:          in.Type,
		Amount:        in.Amount,
		Currency:      in.Currency,
		PaymentMethod: in.PaymentMethod,
		Status:        in.Status,
		Date:          in.Date,
		Description:   in.Description,
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error) {
	return s.transactions.GetByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, patientID *uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	return s.transactions.List(ctx, tenantID, patientID, limit, offset)
}

// MonthlyRevenue sums completed payments for the month containing t.
func (s *Service) MonthlyRevenue(ctx context.Context, tenantID uuid.UUID, t time.Time) (float64, error) {
	return s.transactions.MonthlyRevenue(ctx, tenantID, t.Format("2006-01"))
}
