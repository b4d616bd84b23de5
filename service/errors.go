package service

import (
	"errors"

	"lexdraft-backend/repository"
)

var (
	ErrCaseNotFound       = errors.New("case not found")
	ErrCaseHasDocuments   = errors.New("case has documents and cannot be deleted")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrVersionNotFound    = errors.New("document version not found")
	ErrAssertionNotFound  = errors.New("assertion not found")
	ErrSourceNotFound     = errors.New("source not found")
	ErrLinkNotFound       = errors.New("assertion source link not found")
	ErrRenderingNotFound  = errors.New("rendering not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrStorageNotSet      = errors.New("storage not configured")
)

// translate maps a store not-found into the service sentinel
func translate(err, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return err
}
