package agents

import (
	"context"
	"errors"
	"testing"

	"lexdraft-backend/logger"
	"lexdraft-backend/metrics"
	"lexdraft-backend/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sourcesFor(refs ...string) map[string]*models.LegalSource {
	m := make(map[string]*models.LegalSource, len(refs))
	for _, ref := range refs {
		m[ref] = &models.LegalSource{Type: models.SourceStatute, Reference: ref, Excerpt: "trecho de " + ref}
	}
	return m
}

func positions(out []GeneratedAssertion) []int {
	p := make([]int, len(out))
	for i, a := range out {
		p[i] = a.Position
	}
	return p
}

func TestRegistry(t *testing.T) {
	generic := NewCivilGeneric()
	r := NewRegistry(generic, NewPeticaoInicialCivil(), NewContestacaoCivil())

	assert.Equal(t, PeticaoInicialCivilID, r.Resolve(PeticaoInicialCivilID).Info().ID)
	assert.Equal(t, CivilGenericID, r.Resolve("peticao-inicial-indenizacao").Info().ID)
	assert.Equal(t, CivilGenericID, r.Resolve("").Info().ID)

	_, ok := r.Lookup("denuncia-penal")
	assert.False(t, ok)
	a, ok := r.Lookup(CivilGenericID)
	require.True(t, ok)
	assert.Equal(t, "Agente Civil Genérico", a.Info().Name)

	var ids []string
	for _, info := range r.List() {
		ids = append(ids, info.ID)
	}
	assert.Equal(t, []string{CivilGenericID, ContestacaoCivilID, PeticaoInicialCivilID}, ids)
}

func TestPeticaoInicialStructure(t *testing.T) {
	value := 15000.0
	input := NormalizedInput{
		Facts:      []string{"O autor teve seu nome incluído no Serasa.", "Houve negativação sem notificação prévia."},
		Requests:   []string{"condenar o réu ao pagamento de danos morais"},
		Parties:    map[string]string{"autor": "João da Silva", "reu": "Banco XYZ S.A."},
		ClaimValue: &value,
	}
	sources := sourcesFor("CC, art. 186", "CDC, art. 43")

	out, err := NewPeticaoInicialCivil().Generate(context.Background(), input, sources)
	require.NoError(t, err)
	require.Len(t, out, 10)

	assert.Contains(t, out[0].Text, "João da Silva, já qualificado nos autos")
	assert.Contains(t, out[0].Text, "em face de Banco XYZ S.A.")
	assert.Equal(t, input.Facts[0], out[1].Text)
	assert.Equal(t, models.KindLegalBasis, out[3].Kind)
	assert.Equal(t, []string{"CC, art. 186"}, out[3].SuggestedSources)
	assert.Equal(t, []string{"CDC, art. 43"}, out[4].SuggestedSources)

	thesis := out[5]
	assert.Equal(t, models.KindThesis, thesis.Kind)
	assert.Equal(t, models.ConfidenceMedium, thesis.Confidence)
	assert.Empty(t, thesis.SuggestedSources)

	assert.Equal(t, "Seja julgado procedente o pedido para condenar o réu ao pagamento de danos morais", out[6].Text)
	assert.Contains(t, out[7].Text, "R$ 15.000,00 (reais)")
	assert.Equal(t, []string{"CPC, art. 319, VII"}, out[9].SuggestedSources)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, positions(out))
}

func TestPeticaoInicialWithoutPartiesOrValue(t *testing.T) {
	out, err := NewPeticaoInicialCivil().Generate(context.Background(), NormalizedInput{Facts: []string{"fato"}}, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "fato", out[0].Text)
	assert.Equal(t, models.KindRequest, out[1].Kind)
}

func TestContestacaoStructure(t *testing.T) {
	input := NormalizedInput{Facts: []string{"A empresa causou dano moral ao autor."}}

	out, err := NewContestacaoCivil().Generate(context.Background(), input, sourcesFor("CPC, art. 337"))
	require.NoError(t, err)
	require.Len(t, out, 11)

	assert.Equal(t, []string{"CPC, art. 335"}, out[0].SuggestedSources)
	assert.Equal(t, []string{"CPC, art. 337"}, out[1].SuggestedSources)
	assert.Equal(t, models.ConfidenceLow, out[2].Confidence)
	assert.Contains(t, out[2].Text, "ilegitimidade passiva")
	assert.Equal(t, []string{"CPC, art. 341"}, out[3].SuggestedSources)
	assert.Equal(t, "Impugna-se expressamente a alegação de que \"A empresa causou dano moral ao autor.\", por não corresponder à verdade dos fatos.", out[4].Text)
	assert.Equal(t, models.ConfidenceMedium, out[4].Confidence)
	assert.Contains(t, out[7].Text, "mero aborrecimento")
	assert.Equal(t, []string{"CPC, art. 85"}, out[10].SuggestedSources)
}

func TestCivilGenericTemplate(t *testing.T) {
	input := NormalizedInput{
		Facts:            []string{"Negativação indevida no SPC."},
		Requests:         []string{"declarada a inexistência do débito"},
		CandidateGrounds: []string{"CDC, art. 43", "CPC, art. 319"},
	}
	sources := sourcesFor("CPC, art. 319", "CDC, art. 43")
	sources["CF, art. 5º, XXXV"] = &models.LegalSource{Type: models.SourceConstitution}

	out, err := NewCivilGeneric().Generate(context.Background(), input, sources)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, models.ConfidenceHigh, out[0].Confidence)
	assert.Equal(t, "Conforme CDC, art. 43: \"trecho de CDC, art. 43\"", out[1].Text)
	assert.Equal(t, []string{"CDC, art. 43"}, out[1].SuggestedSources)
	assert.Equal(t, "Conforme CPC, art. 319: \"trecho de CPC, art. 319\"", out[2].Text)
	assert.Equal(t, "Requer seja declarada a inexistência do débito", out[3].Text)
	assert.Equal(t, []int{1, 2, 3, 4}, positions(out))
}

type fakeGenerator struct {
	output string
	err    error
	calls  int
}

func (f *fakeGenerator) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	return f.output, f.err
}

func TestCivilGenericModelOutput(t *testing.T) {
	gen := &fakeGenerator{output: "```json\n" + `{"assertions": [
		{"text": "O réu inscreveu o autor no cadastro.", "type": "fato", "confidence": "alto", "sources": []},
		{"text": "Ato ilícito configurado.", "type": "fundamento", "confidence": "alto", "sources": ["CC, art. 186", "Lei inventada"]},
		{"text": "Responsabilidade objetiva.", "type": "fundamento", "confidence": "alto", "sources": ["CDC, art. 14"]},
		{"text": "Algo estranho.", "type": "opiniao", "confidence": "certeza", "sources": []},
		{"text": "   ", "type": "fato", "confidence": "alto", "sources": []}
	]}` + "\n```"}
	agent := NewCivilGeneric(CivilGenericWithGenerator(gen))

	out, err := agent.Generate(context.Background(), NormalizedInput{}, sourcesFor("CC, art. 186", "CDC, art. 14"))
	require.NoError(t, err)
	require.Len(t, out, 4)

	// no source for a non-low assertion
	assert.Equal(t, models.ConfidenceLow, out[0].Confidence)
	// an invented reference is dropped and the assertion downgraded
	assert.Equal(t, []string{"CC, art. 186"}, out[1].SuggestedSources)
	assert.Equal(t, models.ConfidenceLow, out[1].Confidence)
	assert.Equal(t, models.ConfidenceHigh, out[2].Confidence)
	assert.Equal(t, models.KindThesis, out[3].Kind)
	assert.Equal(t, models.ConfidenceLow, out[3].Confidence)
	assert.Equal(t, []int{1, 2, 3, 4}, positions(out))
}

func TestCivilGenericAcceptsBareArray(t *testing.T) {
	gen := &fakeGenerator{output: `[{"text": "Fato.", "type": "fato", "confidence": "baixo", "sources": []}]`}

	out, err := NewCivilGeneric(CivilGenericWithGenerator(gen)).Generate(context.Background(), NormalizedInput{}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Fato.", out[0].Text)
}

func TestCivilGenericFallsBackToTemplate(t *testing.T) {
	input := NormalizedInput{Facts: []string{"fato do cliente"}, Requests: []string{"condenado o réu"}}

	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"generator error", &fakeGenerator{err: errors.New("quota exceeded")}},
		{"not json", &fakeGenerator{output: "Excelentíssimo Senhor Doutor Juiz..."}},
		{"final text", &fakeGenerator{output: `{"final_text": "EXCELENTÍSSIMO", "assertions": []}`}},
		{"missing assertions", &fakeGenerator{output: `{"items": []}`}},
		{"empty", &fakeGenerator{output: `{"assertions": []}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewCivilGeneric(CivilGenericWithGenerator(tt.gen)).Generate(context.Background(), input, nil)
			require.NoError(t, err)
			assert.Equal(t, 1, tt.gen.calls)
			require.Len(t, out, 2)
			assert.Equal(t, "fato do cliente", out[0].Text)
			assert.Equal(t, "Requer seja condenado o réu", out[1].Text)
		})
	}
}

func TestCivilGenericReportsPolicyViolation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	violations := metrics.ConstitutionViolations.WithLabelValues("policy", "LEI_5")
	fallbacks := metrics.AgentFallbacks.WithLabelValues(CivilGenericID, "policy_violation")
	beforeViolations := testutil.ToFloat64(violations)
	beforeFallbacks := testutil.ToFloat64(fallbacks)

	gen := &fakeGenerator{output: `{"final_text": "EXCELENTÍSSIMO SENHOR DOUTOR JUIZ", "assertions": []}`}
	agent := NewCivilGeneric(CivilGenericWithGenerator(gen), CivilGenericWithLogger(log))
	out, err := agent.Generate(context.Background(), NormalizedInput{Facts: []string{"fato"}}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "LEI_5", entries[0].ContextMap()["law"])
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	assert.Equal(t, beforeViolations+1, testutil.ToFloat64(violations))
	assert.Equal(t, beforeFallbacks+1, testutil.ToFloat64(fallbacks))
}

func TestCivilGenericMalformedOutputIsNotAViolation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	fallbacks := metrics.AgentFallbacks.WithLabelValues(CivilGenericID, "malformed")
	before := testutil.ToFloat64(fallbacks)

	gen := &fakeGenerator{output: "não é json"}
	_, err := NewCivilGeneric(CivilGenericWithGenerator(gen), CivilGenericWithLogger(log)).
		Generate(context.Background(), NormalizedInput{Facts: []string{"fato"}}, nil)
	require.NoError(t, err)

	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "malformed", warns[0].ContextMap()["reason"])
	assert.Equal(t, before+1, testutil.ToFloat64(fallbacks))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `[1]`, stripCodeFence("  [1] "))
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "0,50", FormatBRL(0.5))
	assert.Equal(t, "999,00", FormatBRL(999))
	assert.Equal(t, "1.234,56", FormatBRL(1234.56))
	assert.Equal(t, "1.000.000,00", FormatBRL(1e6))
	assert.Equal(t, "-12.345,60", FormatBRL(-12345.6))
}

func TestGeminiGeneratorRequiresClient(t *testing.T) {
	_, err := NewGeminiGenerator(nil).GenerateText(context.Background(), "s", "u")
	assert.Error(t, err)
}
