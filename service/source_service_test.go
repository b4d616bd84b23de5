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

func newSourceFixture() (*SourceService, *servicetest.DB) {
	db := servicetest.New()
	stores := db.Stores()
	return NewSourceService(
		WithSourceRepository(stores.Sources),
		WithSourceAudit(NewAuditService(AuditWithActivityRepository(stores.Activity))),
	), db
}

func TestCreateSourceDedupes(t *testing.T) {
	svc, db := newSourceFixture()
	ctx := context.Background()
	req := CreateSourceRequest{
		UserID:    uuid.New(),
		Type:      models.SourceCaseLaw,
		Reference: "Súmula 385 STJ",
		Excerpt:   "Da anotação irregular em cadastro de proteção ao crédito...",
	}

	first, err := svc.CreateSource(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := svc.CreateSource(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Source.ID, second.Source.ID)

	req.Excerpt = "outro trecho"
	third, err := svc.CreateSource(ctx, req)
	require.NoError(t, err)
	assert.True(t, third.Created)
	assert.NotEqual(t, first.Source.ID, third.Source.ID)

	creates := 0
	for _, e := range db.Activity() {
		if e.Action == models.ActionSourceCreate {
			creates++
		}
	}
	assert.Equal(t, 2, creates)
}

func TestCreateSourceValidates(t *testing.T) {
	svc, _ := newSourceFixture()

	_, err := svc.CreateSource(context.Background(), CreateSourceRequest{Type: "parecer", Reference: "x"})
	dv, ok := constitution.AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, constitution.CodeInvalidSourceType, dv.Code)

	_, err = svc.CreateSource(context.Background(), CreateSourceRequest{Type: models.SourceStatute, Reference: "  "})
	dv, ok = constitution.AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, constitution.CodeInvalidInput, dv.Code)
}

func TestBulkCreateSources(t *testing.T) {
	svc, _ := newSourceFixture()
	reqs := []CreateSourceRequest{
		{Type: models.SourceStatute, Reference: "CC, art. 186", Excerpt: "a"},
		{Type: models.SourceStatute, Reference: "CC, art. 927", Excerpt: "b"},
		{Type: models.SourceStatute, Reference: "CC, art. 186", Excerpt: "a"},
	}

	res, err := svc.BulkCreateSources(context.Background(), reqs)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Existing)
	assert.Equal(t, res.Sources[0].ID, res.Sources[2].ID)
}

func TestResolveReference(t *testing.T) {
	svc, db := newSourceFixture()
	ctx := context.Background()
	db.AddSource(models.SourceDoctrine, "CDC, art. 43 comentado", "...")
	exact := db.AddSource(models.SourceStatute, "CDC, art. 43", "A abertura de cadastro...")
	db.AddSource(models.SourceStatute, "CPC, art. 319, II", "os nomes...")

	got, err := svc.ResolveReference(ctx, "CDC, art. 43")
	require.NoError(t, err)
	assert.Equal(t, exact.ID, got.ID)

	got, err = svc.ResolveReference(ctx, "CPC, art. 319")
	require.NoError(t, err)
	assert.Equal(t, "CPC, art. 319, II", got.Reference)

	_, err = svc.ResolveReference(ctx, "CLT, art. 7")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestSearchOrdersByHierarchy(t *testing.T) {
	svc, db := newSourceFixture()
	db.AddSource(models.SourceDoctrine, "Dano moral - doutrina", "dano moral")
	db.AddSource(models.SourceConstitution, "CF, art. 5º, X", "indenização pelo dano material ou moral")
	db.AddSource(models.SourceCaseLaw, "Súmula 385 STJ", "não cabe indenização por dano moral")

	res, err := svc.Search(context.Background(), "moral", nil, 0)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, models.SourceConstitution, res[0].Type)
	assert.Equal(t, models.SourceCaseLaw, res[1].Type)
	assert.Equal(t, models.SourceDoctrine, res[2].Type)

	caseLaw := models.SourceCaseLaw
	res, err = svc.Search(context.Background(), "moral", &caseLaw, 10)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestSourceTypesAndStats(t *testing.T) {
	svc, db := newSourceFixture()
	db.AddSource(models.SourceStatute, "CC, art. 186", "")
	db.AddSource(models.SourceStatute, "CC, art. 927", "")
	db.AddSource(models.SourceCaseLaw, "Súmula 385 STJ", "")

	types := svc.SourceTypes()
	require.Len(t, types, 5)
	assert.Equal(t, models.SourceConstitution, types[0].Type)
	assert.Equal(t, 1, types[0].HierarchyRank)
	assert.Equal(t, "Argumentação", types[4].DisplayName)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByType[models.SourceStatute])
	assert.Equal(t, 0, stats.ByType[models.SourceDoctrine])
	assert.Len(t, stats.ByType, 5)
}
