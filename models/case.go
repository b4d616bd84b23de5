package models

import (
	"time"

	"github.com/google/uuid"
)

// Case is the legal matter owning documents and attachments.
// Every document is reachable from exactly one case, which belongs to one user.
type Case struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	LegalArea     string    `json:"legal_area"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	ProcessNumber *string   `json:"process_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
