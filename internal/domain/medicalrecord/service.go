package medicalrecord

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/domain/patient"
)

var validTypes = map[string]bool{
	TypeConsultation: true,
	TypeTreatment:    true,
	TypeProcedure:    true,
	TypeNote:         true,
}

var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusCompleted: true,
}

type Service struct {
	records  Repository
	patients patient.Repository
}

func NewService(records Repository, patients patient.Repository) *Service {
	return &Service{records: records, patients: patients}
}

// Input carries the record form, shared by create and update.
type Input struct {
	PatientID     string  `json:"patient_id"`
	AppointmentID *string `json:"appointment_id"`
	RecordType    string  `json:"record_type"`
	Title         string  `json:"title"`
	Diagnosis     *string `json:"diagnosis"`
	Treatment     *string `json:"treatment"`
	Medications   *string `json:"medications"`
	Notes         *string `json:"notes"`
	Status        string  `json:"status"`
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("Title is required.")
	}
	if !validTypes[in.RecordType] {
		return fmt.Errorf("invalid record type: %s", in.RecordType)
	}
	if in.Status != "" && !validStatuses[in.Status] {
		return fmt.Errorf("invalid record status: %s", in.Status)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in Input) (*Record, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	patientID, err := uuid.Parse(in.PatientID)
	if err != nil {
		return nil, fmt.Errorf("Please select a patient.")
	}
	if _, err := s.patients.GetByID(ctx, tenantID, patientID); err != nil {
		return nil, fmt.Errorf("Patient not found or access denied.")
	}

	var appointmentID *uuid.UUID
	if in.AppointmentID != nil && *in.AppointmentID != "" {
		id, err := uuid.Parse(*in.AppointmentID)
		if err != nil {
			return nil, fmt.Errorf("invalid appointment_id")
		}
		appointmentID = &id
	}
	if in.Status == "" {
		in.Status = StatusActive
	}

	rec := &Record{
		TenantID:      tenantID,
		PatientID:     patientID,
		AppointmentID: appointmentID,
		RecordType:    in.RecordType,
		Title:         strings.TrimSpace(in.Title),
		Diagnosis:     in.Diagnosis,
		Treatment:     in.Treatment,
		Medications:   in.Medications,
		Notes:         in.Notes,
		Status:        in.Status,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Record, error) {
	return s.records.GetByID(ctx, tenantID, id)
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, in Input) (*Record, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	rec, err := s.records.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	rec.RecordType = in.RecordType
	rec.Title = strings.TrimSpace(in.Title)
	rec.Diagnosis = in.Diagnosis
	rec.Treatment = in.Treatment
	rec.Medications = in.Medications
	rec.Notes = in.Notes
	if in.Status != "" {
		rec.Status = in.Status
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.records.Delete(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, patientID *uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.records.List(ctx, tenantID, patientID, limit, offset)
}
