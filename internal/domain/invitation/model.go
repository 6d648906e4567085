// Package invitation implements staff invitations: owners and admins invite
// colleagues by email, and invitees join through a tokenized link.
package invitation

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/platform/auth"
)

// Invitation statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
	StatusRevoked  = "revoked"
)

// TTL is how long an invitation stays acceptable. Expiry is derived at read
// time from expires_at; nothing sweeps expired rows.
const TTL = 7 * 24 * time.Hour

type Invitation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Role      auth.Role `db:"role" json:"role"`
	Message   *string   `db:"message" json:"message,omitempty"`
	Token     string    `db:"token" json:"-"`
	InvitedBy uuid.UUID `db:"invited_by" json:"invited_by"`
	Status    string    `db:"status" json:"status"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Expired is derived, never stored.
	Expired bool `db:"-" json:"expired"`
}
