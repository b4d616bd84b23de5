package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus represents the lifecycle status of a legal document
type DocumentStatus string

const (
	DocumentDraft     DocumentStatus = "draft"
	DocumentGenerated DocumentStatus = "generated"
	DocumentRevised   DocumentStatus = "revised"
	DocumentFinalized DocumentStatus = "finalized"
)

// Valid reports whether s is a known document status
func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentDraft, DocumentGenerated, DocumentRevised, DocumentFinalized:
		return true
	}
	return false
}

// VersionCreator records who produced a version
type VersionCreator string

const (
	CreatorHuman VersionCreator = "human"
	CreatorAgent VersionCreator = "agent"
)

// Valid reports whether c is a known creator
func (c VersionCreator) Valid() bool {
	return c == CreatorHuman || c == CreatorAgent
}

// LegalDocument is a container of versions. It never stores text.
type LegalDocument struct {
	ID               uuid.UUID      `json:"id"`
	CaseID           uuid.UUID      `json:"case_id"`
	PieceType        string         `json:"piece_type"`
	Status           DocumentStatus `json:"status"`
	CurrentVersionID *uuid.UUID     `json:"current_version_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// DocumentVersion is an immutable, append-only snapshot of a document
type DocumentVersion struct {
	ID            uuid.UUID      `json:"id"`
	DocumentID    uuid.UUID      `json:"document_id"`
	VersionNumber int            `json:"version_number"`
	CreatedBy     VersionCreator `json:"created_by"`
	AgentName     *string        `json:"agent_name,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
