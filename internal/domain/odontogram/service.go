package odontogram

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/domain/patient"
)

type Service struct {
	charts   Repository
	patients patient.Repository
}

func NewService(charts Repository, patients patient.Repository) *Service {
	return &Service{charts: charts, patients: patients}
}

// Get returns the patient's chart, or a fresh all-healthy one if none has
// been saved yet.
func (s *Service) Get(ctx context.Context, tenantID, patientID uuid.UUID) (*Odontogram, error) {
	if _, err := s.patients.GetByID(ctx, tenantID, patientID); err != nil {
		return nil, fmt.Errorf("Patient not found or access denied.")
	}
	o, err := s.charts.GetByPatient(ctx, tenantID, patientID)
	if errors.Is(err, ErrChartNotFound) {
		return &Odontogram{
			TenantID:  tenantID,
			PatientID: patientID,
			Teeth:     DefaultTeeth(),
		}, nil
	}
	return o, err
}

// Save validates and stores the full 32-tooth chart, updating in place when
// one already exists.
func (s *Service) Save(ctx context.Context, tenantID, patientID uuid.UUID, teeth []Tooth) (*Odontogram, error) {
	if _, err := s.patients.GetByID(ctx, tenantID, patientID); err != nil {
		return nil, fmt.Errorf("Patient not found or access denied.")
	}
	if len(teeth) != ToothCount {
		return nil, fmt.Errorf("a chart must contain exactly %d teeth", ToothCount)
	}
	seen := make(map[int]bool, ToothCount)
	for _, tooth := range teeth {
		if tooth.Number < 1 || tooth.Number > ToothCount {
			return nil, fmt.Errorf("invalid tooth number: %d", tooth.Number)
		}
		if seen[tooth.Number] {
			return nil, fmt.Errorf("duplicate tooth number: %d", tooth.Number)
		}
		seen[tooth.Number] = true
		if !ValidStatuses[tooth.Status] {
			return nil, fmt.Errorf("invalid tooth status: %s", tooth.Status)
		}
	}

	o := &Odontogram{TenantID: tenantID, PatientID: patientID, Teeth: teeth}
	if existing, err := s.charts.GetByPatient(ctx, tenantID, patientID); err == nil {
		o.ID = existing.ID
	} else if !errors.Is(err, ErrChartNotFound) {
		return nil, err
	}
	if err := s.charts.Upsert(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
