package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"lexdraft-backend/constitution"
	"lexdraft-backend/models"
	"lexdraft-backend/service/servicetest"
	"lexdraft-backend/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseLifecycle(t *testing.T) {
	db := servicetest.New()
	stores := db.Stores()
	svc := NewCaseService(
		WithCaseRepository(stores.Cases),
		WithCaseAudit(NewAuditService(AuditWithActivityRepository(stores.Activity))),
	)
	ctx := context.Background()
	userID := uuid.New()

	c, err := svc.CreateCase(ctx, CreateCaseRequest{UserID: userID, Title: "Negativação indevida"})
	require.NoError(t, err)
	assert.Equal(t, "civil", c.LegalArea)

	title := "Negativação indevida - Serasa"
	updated, err := svc.UpdateCase(ctx, UpdateCaseRequest{ID: c.ID, UserID: userID, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	_, err = svc.GetCase(ctx, c.ID, uuid.New())
	assert.ErrorIs(t, err, ErrCaseNotFound)

	require.NoError(t, svc.DeleteCase(ctx, c.ID, userID))
	assert.ErrorIs(t, svc.DeleteCase(ctx, c.ID, userID), ErrCaseNotFound)

	var actions []string
	for _, e := range db.Activity() {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{models.ActionCaseCreate, models.ActionCaseUpdate, models.ActionCaseDelete}, actions)
}

func TestDeleteCaseWithDocuments(t *testing.T) {
	db := servicetest.New()
	svc := NewCaseService(WithCaseRepository(db.Stores().Cases))
	userID := uuid.New()
	c, _, _ := db.Seed(userID)

	assert.ErrorIs(t, svc.DeleteCase(context.Background(), c.ID, userID), ErrCaseHasDocuments)
}

func TestDocumentTrail(t *testing.T) {
	db := servicetest.New()
	stores := db.Stores()
	audit := NewAuditService(AuditWithActivityRepository(stores.Activity), AuditWithDocumentRepository(stores.Documents))
	docs := NewDocumentService(
		DocumentWithCaseRepository(stores.Cases),
		DocumentWithDocumentRepository(stores.Documents),
		DocumentWithAudit(audit),
	)
	ctx := context.Background()
	userID := uuid.New()
	_, doc, _ := db.Seed(userID)

	v, err := docs.CreateVersion(ctx, CreateVersionRequest{DocumentID: doc.ID, UserID: userID})
	require.NoError(t, err)
	_, err = docs.UpdateStatus(ctx, UpdateStatusRequest{DocumentID: doc.ID, UserID: userID, Status: models.DocumentRevised})
	require.NoError(t, err)

	trail, err := audit.DocumentTrail(ctx, doc.ID, userID)
	require.NoError(t, err)
	require.Equal(t, 2, trail.Total)
	assert.Equal(t, v.ID, trail.Trail[0].EntityID)
	assert.Equal(t, models.ActionDocumentStatusChange, trail.Trail[1].Action)

	_, err = audit.DocumentTrail(ctx, doc.ID, uuid.New())
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	mine, err := audit.UserActivity(ctx, userID, 7, 50, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestUploadAttachment(t *testing.T) {
	db := servicetest.New()
	stores := db.Stores()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewAttachmentService(
		AttachmentWithAttachmentRepository(stores.Attachments),
		AttachmentWithCaseRepository(stores.Cases),
		AttachmentWithStorage(store),
	)
	ctx := context.Background()
	userID := uuid.New()
	c, _, _ := db.Seed(userID)

	content := []byte("%PDF-1.4 contrato")
	att, err := svc.UploadAttachment(ctx, UploadAttachmentRequest{
		CaseID: c.ID, UserID: userID, FileName: "contrato.pdf", Size: int64(len(content)), Data: bytes.NewReader(content),
	})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", att.MimeType)

	got, rc, err := svc.OpenAttachment(ctx, att.ID, userID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, body)
	assert.Equal(t, att.ID, got.ID)

	_, _, err = svc.OpenAttachment(ctx, att.ID, uuid.New())
	assert.ErrorIs(t, err, ErrAttachmentNotFound)

	_, err = svc.UploadAttachment(ctx, UploadAttachmentRequest{
		CaseID: c.ID, UserID: userID, FileName: "virus.exe", Size: 10, Data: bytes.NewReader(nil),
	})
	assert.True(t, constitution.IsDomainViolation(err))

	_, err = svc.UploadAttachment(ctx, UploadAttachmentRequest{
		CaseID: c.ID, UserID: userID, FileName: "grande.pdf", Size: MaxAttachmentSize + 1, Data: bytes.NewReader(nil),
	})
	assert.True(t, constitution.IsDomainViolation(err))
}

func TestDetectMimeType(t *testing.T) {
	assert.Equal(t, "text/plain", DetectMimeType("notas.TXT", ""))
	assert.Equal(t, "image/png", DetectMimeType("x.png", "application/octet-stream"))
	assert.Equal(t, "application/pdf", DetectMimeType("x.bin", "application/pdf"))
	assert.Equal(t, "application/octet-stream", DetectMimeType("x.bin", ""))
}

func TestEntityHistoryOnlyListsOwnEntries(t *testing.T) {
	db := servicetest.New()
	stores := db.Stores()
	audit := NewAuditService(AuditWithActivityRepository(stores.Activity))
	svc := NewSourceService(WithSourceRepository(stores.Sources), WithSourceAudit(audit))
	ctx := context.Background()
	owner := uuid.New()

	res, err := svc.CreateSource(ctx, CreateSourceRequest{UserID: owner, Type: models.SourceStatute, Reference: "CC, art. 186"})
	require.NoError(t, err)

	history, err := audit.EntityHistory(ctx, EntityHistoryRequest{EntityType: models.EntitySource, EntityID: res.Source.ID, UserID: owner, Limit: 10})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.ActionSourceCreate, history[0].Action)

	history, err = audit.EntityHistory(ctx, EntityHistoryRequest{EntityType: models.EntitySource, EntityID: res.Source.ID, UserID: uuid.New(), Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = audit.EntityHistory(ctx, EntityHistoryRequest{EntityType: "petition", EntityID: res.Source.ID, UserID: owner})
	assert.True(t, constitution.IsDomainViolation(err))
}
