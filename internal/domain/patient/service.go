package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/domain/billing"
	"github.com/dentora/dentora/internal/domain/tenancy"
)

var validGenders = map[string]bool{"male": true, "female": true, "other": true}

type Service struct {
	patients Repository
	tenants  tenancy.TenantRepository
}

func NewService(patients Repository, tenants tenancy.TenantRepository) *Service {
	return &Service{patients: patients, tenants: tenants}
}

// Input carries the patient form, shared by create and update.
type Input struct {
	Name                  string  `json:"name"`
	Email                 *string `json:"email"`
	Phone                 string  `json:"phone"`
	DateOfBirth           string  `json:"date_of_birth"`
	Gender                string  `json:"gender"`
	Address               *string `json:"address"`
	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`
	MedicalHistory        *string `json:"medical_history"`
	Allergies             *string `json:"allergies"`
	InsuranceProvider     *string `json:"insurance_provider"`
	InsuranceNumber       *string `json:"insurance_number"`
	Notes                 *string `json:"notes"`
}

func (in Input) validate() (time.Time, error) {
	if len(strings.TrimSpace(in.Name)) < 2 {
		return time.Time{}, fmt.Errorf("Name must be at least 2 characters.")
	}
	if len(strings.TrimSpace(in.Phone)) < 8 {
		return time.Time{}, fmt.Errorf("Phone number must be at least 8 characters.")
	}
	if in.DateOfBirth == "" {
		return time.Time{}, fmt.Errorf("Date of birth is required.")
	}
	dob, err := time.Parse("2006-01-02", in.DateOfBirth)
	if err != nil {
		return time.Time{}, fmt.Errorf("Invalid date of birth.")
	}
	if !validGenders[in.Gender] {
		return time.Time{}, fmt.Errorf("invalid gender: %s", in.Gender)
	}
	return dob, nil
}

// Create registers a patient. The plan gate runs server-side: the active
// patient count is checked against the clinic's tier before insert.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in Input) (*Patient, error) {
	dob, err := in.validate()
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	count, err := s.patients.CountActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !billing.CanAddResource(tenant.Plan, count, billing.ResourcePatients) {
		return nil, fmt.Errorf("Patient limit reached for your plan. Please upgrade to add more patients.")
	}

	p := &Patient{
		TenantID:              tenantID,
		Name:                  strings.TrimSpace(in.Name),
		Email:                 in.Email,
		Phone:                 strings.TrimSpace(in.Phone),
		DateOfBirth:           dob,
		Gender:                in.Gender,
		Address:               in.Address,
		EmergencyContactName:  in.EmergencyContactName,
		EmergencyContactPhone: in.EmergencyContactPhone,
		MedicalHistory:        in.MedicalHistory,
		Allergies:             in.Allergies,
		InsuranceProvider:     in.InsuranceProvider,
		InsuranceNumber:       in.InsuranceNumber,
		Notes:                 in.Notes,
		Status:                StatusActive,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, tenantID, id)
}

// Update replaces the patient's editable fields.
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, in Input) (*Patient, error) {
	dob, err := in.validate()
	if err != nil {
		return nil, err
	}
	p, err := s.patients.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Email = in.Email
	p.Phone = strings.TrimSpace(in.Phone)
	p.DateOfBirth = dob
	p.Gender = in.Gender
	p.Address = in.Address
	p.EmergencyContactName = in.EmergencyContactName
	p.EmergencyContactPhone = in.EmergencyContactPhone
	p.MedicalHistory = in.MedicalHistory
	p.Allergies = in.Allergies
	p.InsuranceProvider = in.InsuranceProvider
	p.InsuranceNumber = in.InsuranceNumber
	p.Notes = in.Notes
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Deactivate retires a patient without deleting the record.
func (s *Service) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.patients.SetStatus(ctx, tenantID, id, StatusInactive)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, tenantID, search, limit, offset)
}

func (s *Service) CountActive(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.patients.CountActive(ctx, tenantID)
}
