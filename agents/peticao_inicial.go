package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"lexdraft-backend/models"
)

const PeticaoInicialCivilID = "peticao-inicial-civil"

// PeticaoInicialCivil drafts civil initial petitions following CPC art. 319
type PeticaoInicialCivil struct{}

// NewPeticaoInicialCivil creates the initial petition agent
func NewPeticaoInicialCivil() *PeticaoInicialCivil {
	return &PeticaoInicialCivil{}
}

func (a *PeticaoInicialCivil) Info() Info {
	return Info{
		ID:         PeticaoInicialCivilID,
		Name:       "Agente Petição Inicial Cível – Art. 319 CPC",
		LegalBasis: "CPC, art. 319",
		LegalArea:  "civil",
		PieceType:  "Petição Inicial",
	}
}

// Generate follows the structure of art. 319: parties, facts, legal grounds,
// requests, claim value, evidence and the conciliation hearing stance.
func (a *PeticaoInicialCivil) Generate(ctx context.Context, input NormalizedInput, sources map[string]*models.LegalSource) ([]GeneratedAssertion, error) {
	b := &builder{}

	if len(input.Parties) > 0 {
		autor := partyOr(input.Parties, "autor", "[AUTOR]")
		reu := partyOr(input.Parties, "reu", "[RÉU]")
		b.add(fmt.Sprintf("%s, já qualificado nos autos, vem, respeitosamente, perante Vossa Excelência, propor a presente AÇÃO em face de %s, igualmente qualificado, pelos fatos e fundamentos a seguir expostos.", autor, reu),
			models.KindFact, models.ConfidenceHigh, "CPC, art. 319, II")
	}

	// Facts come from the client and need no legal source
	for _, fato := range input.Facts {
		b.add(fato, models.KindFact, models.ConfidenceHigh)
	}

	a.grounds(b, input, sources)

	for _, pedido := range input.Requests {
		b.add("Seja julgado procedente o pedido para "+pedido, models.KindRequest, models.ConfidenceHigh, "CPC, art. 319, IV")
	}

	if input.ClaimValue != nil && *input.ClaimValue > 0 {
		b.add(fmt.Sprintf("Atribui-se à causa o valor de R$ %s (reais), para fins de alçada e recolhimento das custas processuais.", FormatBRL(*input.ClaimValue)),
			models.KindFact, models.ConfidenceHigh, "CPC, art. 319, V")
	}

	b.add("Requer a produção de todas as provas admitidas em direito, especialmente a documental, testemunhal e pericial, se necessário.",
		models.KindRequest, models.ConfidenceHigh, "CPC, art. 319, VI")
	b.add("Manifesta-se o autor pelo interesse na realização de audiência de conciliação ou mediação, nos termos do art. 319, VII, do CPC.",
		models.KindRequest, models.ConfidenceHigh, "CPC, art. 319, VII")

	return b.assertions(), nil
}

func (a *PeticaoInicialCivil) grounds(b *builder, input NormalizedInput, sources map[string]*models.LegalSource) {
	if has(sources, "CPC, art. 319") {
		b.add("Nos termos do art. 319 do Código de Processo Civil, a petição inicial indicará o juízo a que é dirigida, os nomes das partes, o fato e os fundamentos jurídicos do pedido, bem como o pedido com suas especificações.",
			models.KindLegalBasis, models.ConfidenceHigh, "CPC, art. 319")
	}
	if has(sources, "CC, art. 186") {
		b.add("Aquele que, por ação ou omissão voluntária, negligência ou imprudência, violar direito e causar dano a outrem, ainda que exclusivamente moral, comete ato ilícito, nos termos do art. 186 do Código Civil.",
			models.KindLegalBasis, models.ConfidenceHigh, "CC, art. 186")
	}
	if has(sources, "CC, art. 927") {
		b.add("Aquele que causar dano a outrem fica obrigado a repará-lo, conforme dispõe o art. 927 do Código Civil.",
			models.KindLegalBasis, models.ConfidenceHigh, "CC, art. 927")
	}
	if has(sources, "CDC, art. 43") {
		b.add("O Código de Defesa do Consumidor, em seu art. 43, §2º, estabelece que a abertura de cadastro, ficha, registro e dados pessoais e de consumo deverá ser comunicada por escrito ao consumidor, quando não solicitada por ele.",
			models.KindLegalBasis, models.ConfidenceHigh, "CDC, art. 43")
	}

	facts := strings.ToLower(strings.Join(input.Facts, " "))
	if has(sources, "Súmula 385 STJ") || strings.Contains(facts, "negativação") {
		var refs []string
		if has(sources, "Súmula 385 STJ") {
			refs = []string{"Súmula 385 STJ"}
		}
		b.add("A jurisprudência do Superior Tribunal de Justiça é pacífica no sentido de que o dano moral decorrente de inscrição indevida em cadastro de inadimplentes é presumido, dispensando prova do prejuízo efetivo (dano in re ipsa).",
			models.KindThesis, models.ConfidenceMedium, refs...)
	}

	if has(sources, "CDC, art. 14") {
		b.add("O fornecedor de serviços responde, independentemente da existência de culpa, pela reparação dos danos causados aos consumidores por defeitos relativos à prestação dos serviços, conforme art. 14 do Código de Defesa do Consumidor.",
			models.KindLegalBasis, models.ConfidenceHigh, "CDC, art. 14")
	}
}

func partyOr(parties map[string]string, key, fallback string) string {
	if v := strings.TrimSpace(parties[key]); v != "" {
		return v
	}
	return fallback
}

// FormatBRL formats an amount the Brazilian way: 1234.5 becomes "1.234,50"
func FormatBRL(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var grouped strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(d)
	}

	out := grouped.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
