package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a lawyer using the system
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Name         string    `json:"name"`
	OABNumber    *string   `json:"oab_number,omitempty"`
	OABState     *string   `json:"oab_state,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
