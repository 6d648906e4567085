package invitation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvitationNotFound = errors.New("invitation not found")

type Repository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error)
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	GetPendingByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Invitation, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*Invitation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Refresh(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
}
