package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/domain/patient"
)

type mockRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (r *mockRepo) Create(_ context.Context, a *Appointment) error {
	// mirror the partial unique index
	for _, other := range r.appointments {
		if other.TenantID == a.TenantID && other.Date == a.Date && other.Time == a.Time &&
			other.Status != StatusCancelled && a.Status != StatusCancelled {
			return ErrTimeSlotTaken
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *mockRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*Appointment, error) {
	a, ok := r.appointments[id]
	if !ok || a.TenantID != tenantID {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *mockRepo) Update(_ context.Context, a *Appointment) error {
	old, ok := r.appointments[a.ID]
	if !ok || old.TenantID != a.TenantID {
		return ErrAppointmentNotFound
	}
	for _, other := range r.appointments {
		if other.ID != a.ID && other.TenantID == a.TenantID && other.Date == a.Date &&
			other.Time == a.Time && other.Status != StatusCancelled && a.Status != StatusCancelled {
			return ErrTimeSlotTaken
		}
	}
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *mockRepo) ExistsAt(_ context.Context, tenantID uuid.UUID, date, timeOfDay string, excludeID uuid.UUID) (bool, error) {
	for _, a := range r.appointments {
		if a.TenantID == tenantID && a.Date == date && a.Time == timeOfDay &&
			a.Status != StatusCancelled && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockRepo) List(_ context.Context, tenantID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range r.appointments {
		if a.TenantID == tenantID {
			cp := *a
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func (r *mockRepo) ListByPatient(_ context.Context, tenantID, patientID uuid.UUID) ([]*Appointment, error) {
	var items []*Appointment
	for _, a := range r.appointments {
		if a.TenantID == tenantID && a.PatientID == patientID {
			cp := *a
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (r *mockRepo) ListByDay(_ context.Context, tenantID uuid.UUID, date string) ([]*Appointment, error) {
	var items []*Appointment
	for _, a := range r.appointments {
		if a.TenantID == tenantID && a.Date == date {
			cp := *a
			items = append(items, &cp)
		}
	}
	return items, nil
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
	p := &patient.Patient{TenantID: tenantID, Name: "Pat Doe", Status: patient.StatusActive}
	_ = patients.Create(context.Background(), p)
	return NewService(repo, patients, nil), tenantID, p.ID
}

func validInput(patientID uuid.UUID) Input {
	return Input{
		PatientID: patientID.String(),
		Date:      "2026-09-10",
		Time:      "09:30",
		Duration:  30,
		Type:      "Cleaning",
		Status:    StatusScheduled,
	}
}

func TestCreateDurationBoundary(t *testing.T) {
	svc, tenantID, patientID := newTestService()
	ctx := context.Background()

	in := validInput(patientID)
	in.Duration = 14
	_, err := svc.Create(ctx, tenantID, in)
	if err == nil || err.Error() != "Duration must be at least 15 minutes." {
		t.Fatalf("duration 14: got %v", err)
	}

	in.Duration = 15
	if _, err := svc.Create(ctx, tenantID, in); err != nil {
		t.Fatalf("duration 15: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, tenantID, patientID := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"no patient", func(in *Input) { in.PatientID = "" }},
		{"no date", func(in *Input) { in.Date = "" }},
		{"bad date", func(in *Input) { in.Date = "10/09/2026" }},
		{"no time", func(in *Input) { in.Time = "" }},
		{"bad time", func(in *Input) { in.Time = "9am" }},
		{"completed on create", func(in *Input) { in.Status = StatusCompleted }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput(patientID)
			tc.mutate(&in)
			if _, err := svc.Create(ctx, tenantID, in); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateRejectsForeignPatient(t *testing.T) {
	svc, tenantID, _ := newTestService()
	ctx := context.Background()

	in := validInput(uuid.New())
	_, err := svc.Create(ctx, tenantID, in)
	if err == nil || err.Error() != "Patient not found or access denied." {
		t.Fatalf("got %v", err)
	}
}

func TestCreateSlotConflict(t *testing.T) {
	svc, tenantID, patientID := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, tenantID, validInput(patientID)); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := svc.Create(ctx, tenantID, validInput(patientID))
	if err == nil || err.Error() != "There is already an appointment scheduled at this time." {
		t.Fatalf("second booking: got %v", err)
	}

	// a different time is fine
	in := validInput(patientID)
	in.Time = "10:00"
	if _, err := svc.Create(ctx, tenantID, in); err != nil {
		t.Fatalf("different time: %v", err)
	}
}

func TestCancelledSlotIsReusable(t *testing.T) {
	svc, tenantID, patientID := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, tenantID, validInput(patientID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	in := validInput(patientID)
	in.Status = StatusCancelled
	if _, err := svc.Update(ctx, tenantID, first.ID, in); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.Create(ctx, tenantID, validInput(patientID)); err != nil {
		t.Fatalf("rebooking cancelled slot: %v", err)
	}
}

func TestConflictScopedToTenant(t *testing.T) {
	repo := newMockRepo()
	patients := &mockPatients{patients: make(map[uuid.UUID]*patient.Patient)}
	svc := NewService(repo, patients, nil)
	ctx := context.Background()

	tenantA, tenantB := uuid.New(), uuid.New()
	pa := &patient.Patient{TenantID: tenantA, Name: "Pat A"}
	pb := &patient.Patient{TenantID: tenantB, Name: "Pat B"}
	_ = patients.Create(ctx, pa)
	_ = patients.Create(ctx, pb)

	if _, err := svc.Create(ctx, tenantA, validInput(pa.ID)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// same slot in another clinic does not collide
	if _, err := svc.Create(ctx, tenantB, validInput(pb.ID)); err != nil {
		t.Fatalf("other tenant same slot: %v", err)
	}
}

func TestUpdateMovesIntoOccupiedSlot(t *testing.T) {
	svc, tenantID, patientID := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, tenantID, validInput(patientID)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	in := validInput(patientID)
	in.Time = "10:00"
	second, err := svc.Create(ctx, tenantID, in)
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	in.Time = "09:30"
	_, err = svc.Update(ctx, tenantID, second.ID, in)
	if err == nil || err.Error() != "There is already an appointment scheduled at this time." {
		t.Fatalf("move into occupied slot: got %v", err)
	}

	// updating without moving must not collide with itself
	in.Time = "10:00"
	in.Duration = 45
	if _, err := svc.Update(ctx, tenantID, second.ID, in); err != nil {
		t.Fatalf("self update: %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, tenantID, patientID := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, tenantID, validInput(patientID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// any transition within the enum is allowed, including completed→scheduled
	for _, status := range []string{StatusConfirmed, StatusCompleted, StatusScheduled} {
		in := validInput(patientID)
		in.Status = status
		if _, err := svc.Update(ctx, tenantID, a.ID, in); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	in := validInput(patientID)
	in.Status = "rescheduled"
	if _, err := svc.Update(ctx, tenantID, a.ID, in); err == nil {
		t.Error("expected error for unknown status")
	}
}
