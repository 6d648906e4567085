package document

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentora/dentora/internal/domain/patient"
	"github.com/dentora/dentora/internal/domain/tenancy"
	"github.com/dentora/dentora/internal/platform/blobstore"
)

type mockRepo struct {
	docs       map[uuid.UUID]*Document
	failCreate bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{docs: make(map[uuid.UUID]*Document)}
}

func (r *mockRepo) Create(_ context.Context, d *Document) error {
	if r.failCreate {
		return errors.New("insert failed")
	}
	d.CreatedAt = time.Now()
	cp := *d
	r.docs[d.ID] = &cp
	return nil
}

func (r *mockRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*Document, error) {
	d, ok := r.docs[id]
	if !ok || d.TenantID != tenantID {
		return nil, ErrDocumentNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *mockRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	d, ok := r.docs[id]
	if !ok || d.TenantID != tenantID {
		return ErrDocumentNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *mockRepo) ListByPatient(_ context.Context, tenantID, patientID uuid.UUID) ([]*Document, error) {
	var items []*Document
	for _, d := range r.docs {
		if d.TenantID == tenantID && d.PatientID == patientID {
			cp := *d
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (r *mockRepo) SumSizeBytes(_ context.Context, tenantID uuid.UUID) (int64, error) {
	var total int64
	for _, d := range r.docs {
		if d.TenantID == tenantID {
			total += d.Size
		}
	}
	return total, nil
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

type mockTenants struct {
	tenants map[uuid.UUID]*tenancy.Tenant
}

func (r *mockTenants) Create(_ context.Context, t *tenancy.Tenant) error {
	t.ID = uuid.New()
	r.tenants[t.ID] = t
	return nil
}

func (r *mockTenants) GetByID(_ context.Context, id uuid.UUID) (*tenancy.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, tenancy.ErrTenantNotFound
	}
	return t, nil
}

func (r *mockTenants) Update(_ context.Context, t *tenancy.Tenant) error { return nil }

func (r *mockTenants) SetStripeCustomerID(_ context.Context, id uuid.UUID, customerID string) error {
	return nil
}

func (r *mockTenants) GetByStripeCustomerID(_ context.Context, customerID string) (*tenancy.Tenant, error) {
	return nil, tenancy.ErrTenantNotFound
}

func (r *mockTenants) SetPlan(_ context.Context, id uuid.UUID, plan tenancy.Plan) error { return nil }

func newTestService(plan tenancy.Plan) (*Service, *mockRepo, *blobstore.InMemoryBlobStore, uuid.UUID, uuid.UUID) {
	repo := newMockRepo()
	patients := &mockPatients{patients: make(map[uuid.UUID]*patient.Patient)}
	tenants := &mockTenants{tenants: make(map[uuid.UUID]*tenancy.Tenant)}
	store := blobstore.NewInMemoryBlobStore("http://localhost:8080")

	clinic := &tenancy.Tenant{Name: "Bright Smile", Plan: plan}
	_ = tenants.Create(context.Background(), clinic)
	p := &patient.Patient{TenantID: clinic.ID, Name: "Pat Doe"}
	_ = patients.Create(context.Background(), p)

	svc := NewService(repo, patients, tenants, store, zerolog.Nop())
	return svc, repo, store, clinic.ID, p.ID
}

func uploadInput(patientID uuid.UUID, content string) UploadInput {
	return UploadInput{
		PatientID:    patientID.String(),
		DocumentType: "xray",
		FileName:     "scan.png",
		ContentType:  "image/png",
		Content:      strings.NewReader(content),
		Size:         int64(len(content)),
	}
}

func TestUploadRoundTrip(t *testing.T) {
	svc, _, store, tenantID, patientID := newTestService(tenancy.PlanFree)
	ctx := context.Background()

	d, err := svc.Upload(ctx, tenantID, uploadInput(patientID, "fake png bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if d.Size != int64(len("fake png bytes")) {
		t.Errorf("size = %d", d.Size)
	}
	if store.Len() != 1 {
		t.Errorf("blob count = %d, want 1", store.Len())
	}

	got, rc, err := svc.Download(ctx, tenantID, d.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()
	if got.FileName != "scan.png" {
		t.Errorf("file name = %s", got.FileName)
	}
}

func TestUploadRejectsBadContentType(t *testing.T) {
	svc, _, _, tenantID, patientID := newTestService(tenancy.PlanFree)

	in := uploadInput(patientID, "#!/bin/sh")
	in.FileName = "run.sh"
	in.ContentType = "application/x-sh"
	_, err := svc.Upload(context.Background(), tenantID, in)
	if !errors.Is(err, blobstore.ErrInvalidContentType) {
		t.Fatalf("got %v, want ErrInvalidContentType", err)
	}
}

func TestUploadRejectsForeignPatient(t *testing.T) {
	svc, _, store, tenantID, _ := newTestService(tenancy.PlanFree)

	_, err := svc.Upload(context.Background(), tenantID, uploadInput(uuid.New(), "data"))
	if err == nil || err.Error() != "Patient not found or access denied." {
		t.Fatalf("got %v", err)
	}
	if store.Len() != 0 {
		t.Error("blob stored despite rejected upload")
	}
}

func TestUploadCompensatesFailedInsert(t *testing.T) {
	svc, repo, store, tenantID, patientID := newTestService(tenancy.PlanFree)
	repo.failCreate = true

	_, err := svc.Upload(context.Background(), tenantID, uploadInput(patientID, "data"))
	if err == nil {
		t.Fatal("expected insert failure")
	}
	if store.Len() != 0 {
		t.Errorf("blob not compensated: %d left in store", store.Len())
	}
}

func TestUploadEnforcesStorageLimit(t *testing.T) {
	svc, repo, _, tenantID, patientID := newTestService(tenancy.PlanFree)
	ctx := context.Background()

	// free tier caps at 1 GB; pretend it is nearly full
	repo.docs[uuid.New()] = &Document{
		ID: uuid.New(), TenantID: tenantID, PatientID: patientID,
		Size: 1*bytesPerGB - 4,
	}

	_, err := svc.Upload(ctx, tenantID, uploadInput(patientID, "12345"))
	if err == nil || !strings.Contains(err.Error(), "Storage limit reached") {
		t.Fatalf("got %v", err)
	}
}

func TestDeleteRemovesBlobAndRow(t *testing.T) {
	svc, repo, store, tenantID, patientID := newTestService(tenancy.PlanFree)
	ctx := context.Background()

	d, err := svc.Upload(ctx, tenantID, uploadInput(patientID, "data"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	// wrong tenant cannot delete
	if err := svc.Delete(ctx, uuid.New(), d.ID); err != ErrDocumentNotFound {
		t.Errorf("cross-tenant delete: got %v", err)
	}

	if err := svc.Delete(ctx, tenantID, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Len() != 0 {
		t.Error("blob survived delete")
	}
	if len(repo.docs) != 0 {
		t.Error("row survived delete")
	}
}
