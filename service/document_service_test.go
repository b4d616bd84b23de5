package service

import (
	"context"
	"testing"

	"lexdraft-backend/constitution"
	"lexdraft-backend/models"
	"lexdraft-backend/service/servicetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentFixture() (*DocumentService, *servicetest.DB) {
	db := servicetest.New()
	stores := db.Stores()
	svc := NewDocumentService(
		DocumentWithCaseRepository(stores.Cases),
		DocumentWithDocumentRepository(stores.Documents),
		DocumentWithAssertionRepository(stores.Assertions),
		DocumentWithAudit(NewAuditService(AuditWithActivityRepository(stores.Activity))),
	)
	return svc, db
}

func TestDeleteVersionAlwaysFails(t *testing.T) {
	svc, db := newDocumentFixture()
	userID := uuid.New()
	_, _, version := db.Seed(userID)

	for _, id := range []uuid.UUID{version.ID, uuid.New()} {
		err := svc.DeleteVersion(context.Background(), id, userID)
		pv, ok := constitution.AsPolicyViolation(err)
		require.True(t, ok)
		assert.Equal(t, constitution.LawVersioning, pv.Law)
		assert.False(t, constitution.IsDomainViolation(err))
	}
}

func TestMutateVersionAlwaysFails(t *testing.T) {
	svc, db := newDocumentFixture()
	userID := uuid.New()
	_, _, version := db.Seed(userID)

	for _, op := range []string{"update", "PATCH", "replace_text", "annotate"} {
		err := svc.MutateVersion(context.Background(), version.ID, userID, op)
		assert.True(t, constitution.IsPolicyViolation(err), op)
	}
}

func TestCreateVersionIncrementsNumber(t *testing.T) {
	svc, db := newDocumentFixture()
	ctx := context.Background()
	userID := uuid.New()
	_, doc, _ := db.Seed(userID)

	agent := "civil-generic"
	v, err := svc.CreateVersion(ctx, CreateVersionRequest{DocumentID: doc.ID, UserID: userID, CreatedBy: models.CreatorAgent, AgentName: &agent})
	require.NoError(t, err)
	assert.Equal(t, 2, v.VersionNumber)
	assert.Equal(t, v.ID, *db.Document(doc.ID).CurrentVersionID)

	versions, err := svc.ListVersions(ctx, doc.ID, userID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].VersionNumber)

	_, err = svc.CreateVersion(ctx, CreateVersionRequest{DocumentID: doc.ID, UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestCreateDocumentRequiresOwnedCase(t *testing.T) {
	svc, db := newDocumentFixture()
	ctx := context.Background()
	userID := uuid.New()
	c, _, _ := db.Seed(userID)

	doc, err := svc.CreateDocument(ctx, CreateDocumentRequest{CaseID: c.ID, UserID: userID, PieceType: "Contestação"})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentDraft, doc.Status)
	assert.Nil(t, doc.CurrentVersionID)

	_, err = svc.CreateDocument(ctx, CreateDocumentRequest{CaseID: c.ID, UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestUpdateStatusRequiresVersion(t *testing.T) {
	svc, db := newDocumentFixture()
	ctx := context.Background()
	userID := uuid.New()
	c, _, _ := db.Seed(userID)

	doc, err := svc.CreateDocument(ctx, CreateDocumentRequest{CaseID: c.ID, UserID: userID, PieceType: "Petição Inicial"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, UpdateStatusRequest{DocumentID: doc.ID, UserID: userID, Status: models.DocumentRevised})
	dv, ok := constitution.AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, constitution.CodeEmptyVersion, dv.Code)

	_, err = svc.UpdateStatus(ctx, UpdateStatusRequest{DocumentID: doc.ID, UserID: userID, Status: "archived"})
	dv, ok = constitution.AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, constitution.CodeInvalidStatus, dv.Code)
}

func TestFinalizeRequiresValidVersion(t *testing.T) {
	svc, db := newDocumentFixture()
	ctx := context.Background()
	userID := uuid.New()
	_, doc, version := db.Seed(userID)
	stores := db.Stores()

	_, err := svc.UpdateStatus(ctx, UpdateStatusRequest{DocumentID: doc.ID, UserID: userID, Status: models.DocumentFinalized})
	dv, ok := constitution.AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, constitution.CodeEmptyVersion, dv.Code)

	_, err = stores.Assertions.CreateBatch(ctx, version.ID, userID, []models.NewAssertion{
		{Text: "tese", Kind: models.KindThesis, Confidence: models.ConfidenceHigh},
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, UpdateStatusRequest{DocumentID: doc.ID, UserID: userID, Status: models.DocumentFinalized})
	dv, ok = constitution.AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, constitution.CodeRenderingBlocked, dv.Code)

	src := db.AddSource(models.SourceStatute, "CPC, art. 373", "...")
	assertions := db.Assertions(version.ID)
	_, _, err = stores.Assertions.Link(ctx, assertions[0].ID, src.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, UpdateStatusRequest{DocumentID: doc.ID, UserID: userID, Status: models.DocumentFinalized})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentFinalized, updated.Status)
	assert.Equal(t, models.DocumentFinalized, db.Document(doc.ID).Status)
}
