package odontogram

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrChartNotFound = errors.New("odontogram not found")

type Repository interface {
	GetByPatient(ctx context.Context, tenantID, patientID uuid.UUID) (*Odontogram, error)
	Upsert(ctx context.Context, o *Odontogram) error
}
