// Package document manages patient file uploads. Blob content lives in the
// blobstore; this package owns the metadata rows and keeps the two in step.
package document

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	TenantID      uuid.UUID  `db:"tenant_id" json:"tenant_id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	FileName      string     `db:"file_name" json:"file_name"`
	ContentType   string     `db:"content_type" json:"content_type"`
	Size          int64      `db:"size_bytes" json:"size"`
	StoragePath   string     `db:"storage_path" json:"-"`
	URL           string     `db:"url" json:"url"`
	DocumentType  string     `db:"document_type" json:"document_type"`
	Description   *string    `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
