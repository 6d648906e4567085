package odontogram

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/domain/patient"
)

type chartKey struct {
	tenantID  uuid.UUID
	patientID uuid.UUID
}

type mockRepo struct {
	charts map[chartKey]*Odontogram
}

func newMockRepo() *mockRepo {
	return &mockRepo{charts: make(map[chartKey]*Odontogram)}
}

func (r *mockRepo) GetByPatient(_ context.Context, tenantID, patientID uuid.UUID) (*Odontogram, error) {
	o, ok := r.charts[chartKey{tenantID, patientID}]
	if !ok {
		return nil, ErrChartNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *mockRepo) Upsert(_ context.Context, o *Odontogram) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := *o
	r.charts[chartKey{o.TenantID, o.PatientID}] = &cp
	return nil
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

func newTestService() (*Service, uuid.UUID, uuid.UUID) {
	repo := newMockRepo()
	patients := &mockPatients{patients: make(map[uuid.UUID]*patient.Patient)}
	tenantID := uuid.New()
	p := &patient.Patient{TenantID: tenantID, Name: "Pat Doe"}
	_ = patients.Create(context.Background(), p)
	return NewService(repo, patients), tenantID, p.ID
}

func TestGetReturnsDefaultChart(t *testing.T) {
	svc, tenantID, patientID := newTestService()

	o, err := svc.Get(context.Background(), tenantID, patientID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(o.Teeth) != ToothCount {
		t.Fatalf("teeth = %d, want %d", len(o.Teeth), ToothCount)
	}
	for i, tooth := range o.Teeth {
		if tooth.Number != i+1 || tooth.Status != StatusHealthy {
			t.Fatalf("tooth %d = %+v", i, tooth)
		}
	}
}

func TestSaveValidation(t *testing.T) {
	svc, tenantID, patientID := newTestService()
	ctx := context.Background()

	if _, err := svc.Save(ctx, tenantID, patientID, DefaultTeeth()[:31]); err == nil {
		t.Error("expected error for 31 teeth")
	}

	teeth := DefaultTeeth()
	teeth[4].Status = "gold"
	if _, err := svc.Save(ctx, tenantID, patientID, teeth); err == nil {
		t.Error("expected error for unknown status")
	}

	teeth = DefaultTeeth()
	teeth[4].Number = 6
	if _, err := svc.Save(ctx, tenantID, patientID, teeth); err == nil {
		t.Error("expected error for duplicate tooth number")
	}

	if _, err := svc.Save(ctx, tenantID, uuid.New(), DefaultTeeth()); err == nil {
		t.Error("expected error for foreign patient")
	}
}

func TestSaveUpdatesInPlace(t *testing.T) {
	svc, tenantID, patientID := newTestService()
	ctx := context.Background()

	teeth := DefaultTeeth()
	teeth[10].Status = StatusCaries
	teeth[10].Notes = "distal surface"
	first, err := svc.Save(ctx, tenantID, patientID, teeth)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	teeth[10].Status = StatusFilled
	second, err := svc.Save(ctx, tenantID, patientID, teeth)
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second save created a new row: %s vs %s", second.ID, first.ID)
	}

	got, err := svc.Get(ctx, tenantID, patientID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Teeth[10].Status != StatusFilled {
		t.Errorf("tooth 11 status = %s, want filled", got.Teeth[10].Status)
	}
	if got.Teeth[10].Notes != "distal surface" {
		t.Errorf("tooth 11 notes = %q", got.Teeth[10].Notes)
	}
}
