package document

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentora/dentora/internal/domain/billing"
	"github.com/dentora/dentora/internal/domain/patient"
	"github.com/dentora/dentora/internal/domain/tenancy"
	"github.com/dentora/dentora/internal/platform/blobstore"
)

type Service struct {
	docs     Repository
	patients patient.Repository
	tenants  tenancy.TenantRepository
	store    blobstore.BlobStore
	logger   zerolog.Logger
}

func NewService(docs Repository, patients patient.Repository, tenants tenancy.TenantRepository, store blobstore.BlobStore, logger zerolog.Logger) *Service {
	return &Service{docs: docs, patients: patients, tenants: tenants, store: store, logger: logger}
}

// UploadInput carries one multipart upload.
type UploadInput struct {
	PatientID     string
	AppointmentID *string
	DocumentType  string
	Description   *string
	FileName      string
	ContentType   string
	Content       io.Reader
	Size          int64
}

const bytesPerGB = int64(1024 * 1024 * 1024)

// Upload stores the blob first and the metadata row second. If the row
// insert fails the blob is deleted again so storage never holds orphans the
// usage calculator would bill for.
func (s *Service) Upload(ctx context.Context, tenantID uuid.UUID, in UploadInput) (*Document, error) {
	patientID, err := uuid.Parse(in.PatientID)
	if err != nil {
		return nil, fmt.Errorf("Please select a patient.")
	}
	if _, err := s.patients.GetByID(ctx, tenantID, patientID); err != nil {
		return nil, fmt.Errorf("Patient not found or access denied.")
	}
	if in.FileName == "" {
		return nil, blobstore.ErrMissingFileName
	}
	if in.Size > blobstore.MaxFileSize {
		return nil, blobstore.ErrFileTooLarge
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	limitGB := billing.LimitsFor(tenant.Plan).StorageGB
	if limitGB != billing.Unlimited {
		used, err := s.docs.SumSizeBytes(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if used+in.Size > limitGB*bytesPerGB {
			return nil, fmt.Errorf("Storage limit reached for your plan. Please upgrade to add more storage.")
		}
	}

	var appointmentID *uuid.UUID
	if in.AppointmentID != nil && *in.AppointmentID != "" {
		id, err := uuid.Parse(*in.AppointmentID)
		if err != nil {
			return nil, fmt.Errorf("invalid appointment_id")
		}
		appointmentID = &id
	}
	if in.DocumentType == "" {
		in.DocumentType = "other"
	}

	docID := uuid.New()
	path := fmt.Sprintf("%s/%s/%s-%s", tenantID, patientID, docID, in.FileName)

	meta, err := s.store.Upload(ctx, path, in.ContentType, in.Content)
	if err != nil {
		return nil, err
	}

	d := &Document{
		ID:            docID,
		TenantID:      tenantID,
		PatientID:     patientID,
		AppointmentID: appointmentID,
		FileName:      in.FileName,
		ContentType:   in.ContentType,
		Size:          meta.Size,
		StoragePath:   path,
		URL:           meta.URL,
		DocumentType:  in.DocumentType,
		Description:   in.Description,
	}
	if err := s.docs.Create(ctx, d); err != nil {
		if delErr := s.store.Delete(ctx, path); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", path).Msg("orphaned blob after failed metadata insert")
		}
		return nil, err
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Document, error) {
	return s.docs.GetByID(ctx, tenantID, id)
}

// Download streams a stored document.
func (s *Service) Download(ctx context.Context, tenantID, id uuid.UUID) (*Document, io.ReadCloser, error) {
	d, err := s.docs.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Download(ctx, d.StoragePath)
	if err != nil {
		return nil, nil, err
	}
	return d, rc, nil
}

// Delete removes the blob and then the metadata row. A blob that is already
// gone does not block the row delete.
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	d, err := s.docs.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, d.StoragePath); err != nil {
		s.logger.Warn().Err(err).Str("path", d.StoragePath).Msg("blob delete failed, removing row anyway")
	}
	return s.docs.Delete(ctx, tenantID, id)
}

func (s *Service) ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*Document, error) {
	return s.docs.ListByPatient(ctx, tenantID, patientID)
}

// StorageUsedBytes feeds the plan-usage calculator.
func (s *Service) StorageUsedBytes(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.docs.SumSizeBytes(ctx, tenantID)
}
