package financial

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, tenantID uuid.UUID, patientID *uuid.UUID, limit, offset int) ([]*Transaction, int, error)
	// MonthlyRevenue sums completed payments with a transaction date in the
	// given month. month is "YYYY-MM".
	MonthlyRevenue(ctx context.Context, tenantID uuid.UUID, month string) (float64, error)
}
