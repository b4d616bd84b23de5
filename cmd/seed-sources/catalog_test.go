package main

import (
	"bytes"
	"context"
	"testing"

	"lexdraft-backend/logger"
	"lexdraft-backend/models"
	"lexdraft-backend/service"
	"lexdraft-backend/service/servicetest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogParses(t *testing.T) {
	reqs, err := parseCatalog(defaultCatalog)
	require.NoError(t, err)
	require.NotEmpty(t, reqs)

	refs := make(map[string]models.SourceType, len(reqs))
	for _, r := range reqs {
		refs[r.Reference] = r.Type
	}
	assert.Equal(t, models.SourceStatute, refs["CPC, art. 319"])
	assert.Equal(t, models.SourceConstitution, refs["CF, art. 5º, XXXV"])
	assert.Equal(t, models.SourceCaseLaw, refs["Súmula 385 STJ"])
}

func TestParseCatalogRejectsBadEntries(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "sources: []"},
		{"unknown type", "sources:\n  - type: parecer\n    reference: X"},
		{"missing reference", "sources:\n  - type: lei\n    reference: '  '"},
		{"malformed", "sources: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseCatalogTrimsFields(t *testing.T) {
	reqs, err := parseCatalog([]byte("sources:\n  - type: lei\n    reference: ' CC, art. 186 '\n    excerpt: ' texto '\n"))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "CC, art. 186", reqs[0].Reference)
	assert.Equal(t, "texto", reqs[0].Excerpt)
	assert.Nil(t, reqs[0].URL)
}

func TestSeedIsIdempotent(t *testing.T) {
	db := servicetest.New()
	stores := db.Stores()
	sources := service.NewSourceService(service.WithSourceRepository(stores.Sources))
	reqs, err := parseCatalog(defaultCatalog)
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	ctx := context.Background()

	require.NoError(t, seed(ctx, cmd, sources, reqs, logger.Nop()))
	assert.Contains(t, out.String(), "Already present: 0")

	out.Reset()
	require.NoError(t, seed(ctx, cmd, sources, reqs, logger.Nop()))
	assert.Contains(t, out.String(), "Created: 0")

	src, err := sources.GetByReference(ctx, nil, "CDC, art. 43")
	require.NoError(t, err)
	assert.Contains(t, src.Excerpt, "cadastros")
}
