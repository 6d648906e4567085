package medicalrecord

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/domain/patient"
)

type mockRepo struct {
	records map[uuid.UUID]*Record
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*Record)}
}

func (r *mockRepo) Create(_ context.Context, rec *Record) error {
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now()
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *mockRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*Record, error) {
	rec, ok := r.records[id]
	if !ok || rec.TenantID != tenantID {
		return nil, ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *mockRepo) Update(_ context.Context, rec *Record) error {
	old, ok := r.records[rec.ID]
	if !ok || old.TenantID != rec.TenantID {
		return ErrRecordNotFound
	}
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *mockRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	rec, ok := r.records[id]
	if !ok || rec.TenantID != tenantID {
		return ErrRecordNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *mockRepo) List(_ context.Context, tenantID uuid.UUID, patientID *uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var items []*Record
	for _, rec := range r.records {
		if rec.TenantID != tenantID {
			continue
		}
		if patientID != nil && rec.PatientID != *patientID {
			continue
		}
		cp := *rec
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func (r *mockRepo) CountActiveTreatments(_ context.Context, tenantID uuid.UUID) (int, error) {
	count := 0
	for _, rec := range r.records {
		if rec.TenantID == tenantID && rec.RecordType == TypeTreatment && rec.Status != StatusCompleted {
			count++
		}
	}
	return count, nil
}

type mockPatients struct {
	patients map[uuid.UUID]*patient.Patient
}

func (r *mockPatients) Create(_ context.Context, p *patient.Patient) error {
	p.ID = uuid.New()
	r.patients[p.ID] = p
	return nil
}

func (r *mockPatients) GetByID(_ context.Context, tenantID, id uuid.UUID) (*patient.Patient, error) {
	p, ok := r.patients[id]
	if !ok || p.TenantID != tenantID {
		return nil, patient.ErrPatientNotFound
	}
	return p, nil
}

func (r *mockPatients) Update(_ context.Context, p *patient.Patient) error { return nil }

func (r *mockPatients) SetStatus(_ context.Context, tenantID, id uuid.UUID, status string) error {
	return nil
}

func (r *mockPatients) List(_ context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}

func (r *mockPatients) CountActive(_ context.Context, tenantID uuid.UUID) (int64, error) {
	return 0, nil
}

func newTestService() (*Service, *mockRepo, uuid.UUID, uuid.UUID) {
	repo := newMockRepo()
	patients := &mockPatients{patients: make(map[uuid.UUID]*patient.Patient)}
	tenantID := uuid.New()
	p := &patient.Patient{TenantID: tenantID, Name: "Pat Doe"}
	_ = patients.Create(context.Background(), p)
	return NewService(repo, patients), repo, tenantID, p.ID
}

func TestCreateValidation(t *testing.T) {
	svc, _, tenantID, patientID := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, tenantID, Input{PatientID: patientID.String(), RecordType: TypeNote}); err == nil {
		t.Error("expected error for missing title")
	}
	if _, err := svc.Create(ctx, tenantID, Input{PatientID: patientID.String(), RecordType: "x-ray", Title: "Scan"}); err == nil {
		t.Error("expected error for unknown record type")
	}
	_, err := svc.Create(ctx, tenantID, Input{PatientID: uuid.NewString(), RecordType: TypeNote, Title: "Note"})
	if err == nil || err.Error() != "Patient not found or access denied." {
		t.Errorf("foreign patient: got %v", err)
	}
}

func TestCreateDefaultsToActive(t *testing.T) {
	svc, _, tenantID, patientID := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, tenantID, Input{
		PatientID: patientID.String(), RecordType: TypeTreatment, Title: "Root canal",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Status != StatusActive {
		t.Errorf("status = %s, want active", rec.Status)
	}
}

func TestActiveTreatmentCount(t *testing.T) {
	svc, repo, tenantID, patientID := newTestService()
	ctx := context.Background()

	treatment, _ := svc.Create(ctx, tenantID, Input{
		PatientID: patientID.String(), RecordType: TypeTreatment, Title: "Root canal"})
	_, _ = svc.Create(ctx, tenantID, Input{
		PatientID: patientID.String(), RecordType: TypeConsultation, Title: "Checkup"})

	count, _ := repo.CountActiveTreatments(ctx, tenantID)
	if count != 1 {
		t.Fatalf("active treatments = %d, want 1", count)
	}

	in := Input{PatientID: patientID.String(), RecordType: TypeTreatment,
		Title: "Root canal", Status: StatusCompleted}
	if _, err := svc.Update(ctx, tenantID, treatment.ID, in); err != nil {
		t.Fatalf("Update: %v", err)
	}
	count, _ = repo.CountActiveTreatments(ctx, tenantID)
	if count != 0 {
		t.Errorf("active treatments after completion = %d, want 0", count)
	}
}

func TestTenantIsolation(t *testing.T) {
	svc, _, tenantID, patientID := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, tenantID, Input{
		PatientID: patientID.String(), RecordType: TypeNote, Title: "Note"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(ctx, uuid.New(), rec.ID); err != ErrRecordNotFound {
		t.Errorf("cross-tenant get: got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New(), rec.ID); err != ErrRecordNotFound {
		t.Errorf("cross-tenant delete: got %v", err)
	}
}
