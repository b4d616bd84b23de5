package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"lexdraft-backend/agents"
	"lexdraft-backend/models"
	"lexdraft-backend/service"
	"lexdraft-backend/service/servicetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	pipeline *Pipeline
	db       *servicetest.DB
	userID   uuid.UUID
	doc      *models.LegalDocument
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := servicetest.New()
	st := db.Stores()
	audit := service.NewAuditService(service.AuditWithActivityRepository(st.Activity))

	p := New(
		WithDocumentService(service.NewDocumentService(
			service.DocumentWithCaseRepository(st.Cases),
			service.DocumentWithDocumentRepository(st.Documents),
			service.DocumentWithAssertionRepository(st.Assertions),
			service.DocumentWithAudit(audit),
		)),
		WithAssertionService(service.NewAssertionService(
			service.AssertionWithAssertionRepository(st.Assertions),
			service.AssertionWithDocumentRepository(st.Documents),
			service.AssertionWithSourceRepository(st.Sources),
			service.AssertionWithAudit(audit),
		)),
		WithSourceService(service.NewSourceService(service.WithSourceRepository(st.Sources))),
		WithRegistry(agents.NewRegistry(agents.NewCivilGeneric(), agents.NewPeticaoInicialCivil(), agents.NewContestacaoCivil())),
	)

	userID := uuid.New()
	_, doc, _ := db.Seed(userID)
	return &fixture{pipeline: p, db: db, userID: userID, doc: doc}
}

func (f *fixture) seedNegativacaoSources() {
	f.db.AddSource(models.SourceStatute, "CPC, art. 319", "A petição inicial indicará: I - o juízo a que é dirigida...")
	f.db.AddSource(models.SourceStatute, "CDC, art. 43", "O consumidor, sem prejuízo do disposto no art. 86, terá acesso às informações existentes em cadastros...")
	f.db.AddSource(models.SourceCaseLaw, "Súmula 385 STJ", "Da anotação irregular em cadastro de proteção ao crédito, não cabe indenização por dano moral, quando preexistente legítima inscrição...")
}

func negativacaoInput(docID uuid.UUID) Input {
	return Input{
		DocumentID: docID,
		AgentType:  "peticao-inicial-indenizacao",
		Facts:      []string{"Houve negativação indevida no Serasa."},
		Requests: []string{
			"declarada a inexistência do débito",
			"condenado o réu ao pagamento de indenização por danos morais",
		},
	}
}

func collect(events *[]Event) func(Event) {
	return func(e Event) { *events = append(*events, e) }
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestRunNegativacaoThroughGenericTemplate(t *testing.T) {
	f := newFixture(t)
	f.seedNegativacaoSources()

	var events []Event
	res, err := f.pipeline.Run(context.Background(), negativacaoInput(f.doc.ID), f.userID, collect(&events))
	require.NoError(t, err)

	assert.Equal(t, agents.CivilGenericID, res.AgentID)
	assert.Equal(t, 2, res.VersionNumber)
	assert.Equal(t, 6, res.AssertionsCreated)
	assert.Equal(t, 3, res.ValidAssertions)

	want := []EventType{
		EventStarted, EventVersionCreated, EventNormalizationComplete, EventResearchStarted,
		EventSourceFound, EventSourceFound, EventSourceFound, EventResearchComplete,
		EventGenerationStarted,
	}
	for i := 0; i < 6; i++ {
		want = append(want, EventAssertionGenerated)
	}
	for i := 0; i < 6; i++ {
		want = append(want, EventAssertionValidated)
	}
	want = append(want, EventValidationComplete, EventPersistenceComplete, EventCompleted)
	assert.Equal(t, want, types(events))

	assert.Equal(t, "peticao-inicial-indenizacao", events[0].Data["agent_type"])
	assert.Equal(t, "CPC, art. 319", events[4].Data["reference"])
	assert.Equal(t, "CDC, art. 43", events[5].Data["reference"])
	assert.Equal(t, "Súmula 385 STJ", events[6].Data["reference"])
	assert.True(t, strings.HasSuffix(events[6].Data["excerpt"].(string), "..."))
	assert.Equal(t, 3, events[7].Data["sources_found"])

	grounds := events[2].Data["possiveis_fundamentos"].([]string)
	assert.Equal(t, []string{"CPC, art. 319", "CC, art. 186", "CC, art. 927", "CDC, art. 6º", "CDC, art. 14", "CDC, art. 43", "Súmula 385 STJ"}, grounds)

	firstValidation := events[15]
	assert.Equal(t, false, firstValidation.Data["is_valid"])
	note := firstValidation.Data["notes"].(*string)
	require.NotNil(t, note)
	assert.Equal(t, "Assertion sem fonte vinculada", *note)

	stored := f.db.Assertions(res.VersionID)
	require.Len(t, stored, 6)
	for i, a := range stored {
		assert.Equal(t, i+1, a.Position)
	}
	assert.Equal(t, models.KindFact, stored[0].Kind)
	assert.Equal(t, "Conforme CPC, art. 319: \"A petição inicial indicará: I - o juízo a que é dirigida...\"", stored[1].Text)
	require.Len(t, stored[1].Sources, 1)
	assert.Equal(t, "CPC, art. 319", stored[1].Sources[0].Reference)
	require.Len(t, stored[3].Sources, 1)
	assert.Equal(t, models.SourceCaseLaw, stored[3].Sources[0].Type)
	assert.Equal(t, "Requer seja declarada a inexistência do débito", stored[4].Text)
	assert.Empty(t, stored[5].Sources)

	doc := f.db.Document(f.doc.ID)
	assert.Equal(t, models.DocumentGenerated, doc.Status)
	assert.Equal(t, res.VersionID, *doc.CurrentVersionID)
}

func TestRunWithSpecialistAgent(t *testing.T) {
	f := newFixture(t)
	f.db.AddSource(models.SourceStatute, "CPC, art. 335", "O réu poderá oferecer contestação...")

	in := Input{DocumentID: f.doc.ID, AgentType: agents.ContestacaoCivilID, Facts: []string{"O autor alega atraso."}}
	res, err := f.pipeline.Run(context.Background(), in, f.userID, nil)
	require.NoError(t, err)
	assert.Equal(t, agents.ContestacaoCivilID, res.AgentID)

	stored := f.db.Assertions(res.VersionID)
	require.NotEmpty(t, stored)
	assert.True(t, stored[0].IsValid())
	assert.Contains(t, stored[0].Text, "tempestiva")
}

func TestRunEmitsErrorBeforeReturning(t *testing.T) {
	f := newFixture(t)

	var events []Event
	_, err := f.pipeline.Run(context.Background(), negativacaoInput(f.doc.ID), uuid.New(), collect(&events))
	require.ErrorIs(t, err, service.ErrDocumentNotFound)

	assert.Equal(t, []EventType{EventStarted, EventError}, types(events))
	assert.Equal(t, "NotFound", events[1].Data["error_type"])
	assert.Equal(t, err.Error(), events[1].Data["error"])
}

func TestRunPersistenceFailureLeavesNoAssertions(t *testing.T) {
	f := newFixture(t)
	f.seedNegativacaoSources()
	f.db.FailBatch = errors.New("connection reset")

	var events []Event
	_, err := f.pipeline.Run(context.Background(), negativacaoInput(f.doc.ID), f.userID, collect(&events))
	require.Error(t, err)

	last := events[len(events)-1]
	assert.Equal(t, EventError, last.Type)
	assert.Equal(t, EventValidationComplete, events[len(events)-2].Type)
	assert.Equal(t, "InternalError", last.Data["error_type"])

	versionID, err := uuid.Parse(events[1].Data["version_id"].(string))
	require.NoError(t, err)
	assert.Empty(t, f.db.Assertions(versionID))
	assert.Equal(t, models.DocumentDraft, f.db.Document(f.doc.ID).Status)
}

func TestRunRequiresServices(t *testing.T) {
	var events []Event
	_, err := New().Run(context.Background(), Input{}, uuid.New(), collect(&events))
	require.Error(t, err)
	assert.Equal(t, []EventType{EventError}, types(events))
}

func TestStreamDeliversEveryEvent(t *testing.T) {
	f := newFixture(t)
	f.seedNegativacaoSources()

	events, errc := f.pipeline.Stream(context.Background(), negativacaoInput(f.doc.ID), f.userID)
	var got []Event
	for e := range events {
		got = append(got, e)
	}
	require.NoError(t, <-errc)
	require.NotEmpty(t, got)
	assert.Equal(t, EventStarted, got[0].Type)
	assert.Equal(t, EventCompleted, got[len(got)-1].Type)
}

func TestStreamFinishesAfterClientDisconnects(t *testing.T) {
	f := newFixture(t)
	f.seedNegativacaoSources()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events, errc := f.pipeline.Stream(ctx, negativacaoInput(f.doc.ID), f.userID)
	for range events {
	}
	require.NoError(t, <-errc)

	doc := f.db.Document(f.doc.ID)
	assert.Equal(t, models.DocumentGenerated, doc.Status)
	assert.Len(t, f.db.Assertions(*doc.CurrentVersionID), 6)
}

func TestStreamRunDoesNotWaitForReader(t *testing.T) {
	f := newFixture(t)
	f.seedNegativacaoSources()

	in := negativacaoInput(f.doc.ID)
	in.AgentType = agents.CivilGenericID
	in.Facts = make([]string, 2*streamBuffer)
	for i := range in.Facts {
		in.Facts[i] = fmt.Sprintf("Fato número %d.", i+1)
	}

	events, errc := f.pipeline.Stream(context.Background(), in, f.userID)
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run blocked on an unread event channel")
	}

	var got []Event
	for e := range events {
		got = append(got, e)
	}
	assert.Greater(t, len(got), streamBuffer)
	assert.Equal(t, EventStarted, got[0].Type)
	assert.Equal(t, EventCompleted, got[len(got)-1].Type)
}

func TestValidateOrdersSourcesByHierarchy(t *testing.T) {
	caseLaw := &models.LegalSource{ID: uuid.New(), Type: models.SourceCaseLaw, Reference: "Súmula 385 STJ"}
	statute := &models.LegalSource{ID: uuid.New(), Type: models.SourceStatute, Reference: "CDC, art. 43"}
	sources := map[string]*models.LegalSource{caseLaw.Reference: caseLaw, statute.Reference: statute}

	out := Validate([]agents.GeneratedAssertion{
		{Text: "a", Confidence: models.ConfidenceHigh, SuggestedSources: []string{caseLaw.Reference, statute.Reference}},
	}, sources)

	require.Len(t, out, 1)
	assert.Equal(t, []*models.LegalSource{statute, caseLaw}, out[0].Sources)
}

func TestValidate(t *testing.T) {
	src := &models.LegalSource{ID: uuid.New(), Reference: "CC, art. 186"}
	sources := map[string]*models.LegalSource{"CC, art. 186": src, "Código Civil 186": src}

	out := Validate([]agents.GeneratedAssertion{
		{Text: "a", Confidence: models.ConfidenceHigh, SuggestedSources: []string{"CC, art. 186", "Código Civil 186"}},
		{Text: "b", Confidence: models.ConfidenceHigh, SuggestedSources: []string{"CF, art. 5º"}},
		{Text: "c", Confidence: models.ConfidenceLow},
	}, sources)

	require.Len(t, out, 3)
	assert.True(t, out[0].IsValid)
	assert.Len(t, out[0].Sources, 1)
	assert.Nil(t, out[0].Notes)
	assert.False(t, out[1].IsValid)
	assert.NotNil(t, out[1].Notes)
	assert.True(t, out[2].IsValid)
}

func TestEventSSE(t *testing.T) {
	e := newEvent(EventResearchComplete, map[string]interface{}{"sources_found": 3})
	out, err := e.SSE()
	require.NoError(t, err)
	assert.Equal(t, "event: research_complete\ndata: {\"sources_found\":3}\n\n", out)
}

func TestPreview(t *testing.T) {
	short := strings.Repeat("a", 100)
	assert.Equal(t, short, preview(short))
	long := strings.Repeat("ç", 101)
	assert.Equal(t, strings.Repeat("ç", 100)+"...", preview(long))
}
