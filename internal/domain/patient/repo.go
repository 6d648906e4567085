package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrPatientNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SetStatus(ctx context.Context, tenantID, id uuid.UUID, status string) error
	List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*Patient, int, error)
	CountActive(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
