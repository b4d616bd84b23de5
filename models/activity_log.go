package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audited actions
const (
	ActionCaseCreate           = "case.create"
	ActionCaseUpdate           = "case.update"
	ActionCaseDelete           = "case.delete"
	ActionDocumentCreate       = "document.create"
	ActionDocumentStatusChange = "document.status_change"
	ActionVersionCreate        = "version.create"
	ActionVersionGenerate      = "version.generate"
	ActionAssertionCreate      = "assertion.create"
	ActionAssertionBulkCreate  = "assertion.bulk_create"
	ActionSourceCreate         = "source.create"
	ActionSourceLink           = "source.link"
	ActionSourceUnlink         = "source.unlink"
	ActionRenderDocument       = "render.document"
	ActionRenderDelete         = "render.delete"
	ActionRenderExport         = "render.export"
	ActionAttachmentUpload     = "attachment.upload"
)

// Audited entity types
const (
	EntityCase       = "case"
	EntityDocument   = "document"
	EntityVersion    = "version"
	EntityAssertion  = "assertion"
	EntitySource     = "source"
	EntityRendering  = "rendering"
	EntityAttachment = "attachment"
)

// EntityTypes lists the entity types accepted by history queries
var EntityTypes = []string{
	EntityCase,
	EntityDocument,
	EntityVersion,
	EntityAssertion,
	EntitySource,
	EntityRendering,
	EntityAttachment,
}

// ActivityDetails holds free-form action details stored as JSONB
type ActivityDetails map[string]interface{}

// Value implements driver.Valuer for JSONB
func (d ActivityDetails) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB
func (d *ActivityDetails) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		*d = make(ActivityDetails)
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*d = make(ActivityDetails)
		return nil
	}
	if len(bytes) == 0 {
		*d = make(ActivityDetails)
		return nil
	}
	return json.Unmarshal(bytes, d)
}

// ActivityLog is one audit trail entry
type ActivityLog struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Details    ActivityDetails `json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}
