package document

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrDocumentNotFound = errors.New("document not found")

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListByPatient(ctx context.Context, tenantID, patientID uuid.UUID) ([]*Document, error)
	SumSizeBytes(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
