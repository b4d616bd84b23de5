package agents

import (
	"context"
	"fmt"
	"strings"

	"lexdraft-backend/models"
)

const ContestacaoCivilID = "contestacao-civil"

// ContestacaoCivil drafts civil defenses following CPC art. 335
type ContestacaoCivil struct{}

// NewContestacaoCivil creates the defense agent
func NewContestacaoCivil() *ContestacaoCivil {
	return &ContestacaoCivil{}
}

func (a *ContestacaoCivil) Info() Info {
	return Info{
		ID:         ContestacaoCivilID,
		Name:       "Agente Contestação Cível – Art. 335 CPC",
		LegalBasis: "CPC, art. 335",
		LegalArea:  "civil",
		PieceType:  "Contestação",
	}
}

func (a *ContestacaoCivil) Generate(ctx context.Context, input NormalizedInput, sources map[string]*models.LegalSource) ([]GeneratedAssertion, error) {
	b := &builder{}
	facts := strings.ToLower(strings.Join(input.Facts, " "))

	b.add("A presente contestação é tempestiva, apresentada dentro do prazo legal de 15 (quinze) dias úteis, conforme art. 335 do CPC.",
		models.KindFact, models.ConfidenceHigh, "CPC, art. 335")

	// Preliminaries (art. 337)
	if has(sources, "CPC, art. 337") {
		b.add("Antes de adentrar ao mérito, cumpre ao réu arguir eventuais questões processuais, nos termos do art. 337 do CPC.",
			models.KindLegalBasis, models.ConfidenceHigh, "CPC, art. 337")
	}
	if strings.Contains(facts, "empresa") || strings.Contains(facts, "pessoa jurídica") {
		b.add("Em preliminar, arguição de ilegitimidade passiva ad causam, vez que o réu não possui relação jurídica com os fatos narrados na inicial.",
			models.KindThesis, models.ConfidenceLow, "CPC, art. 337, XI")
	}

	b.add("Cabe ao réu manifestar-se precisamente sobre os fatos narrados na petição inicial, presumindo-se verdadeiros os fatos não impugnados, nos termos do art. 341 do CPC.",
		models.KindLegalBasis, models.ConfidenceHigh, "CPC, art. 341")

	// Each impugnation depends on evidence, hence medium confidence
	for _, fato := range input.Facts {
		b.add(fmt.Sprintf("Impugna-se expressamente a alegação de que \"%s\", por não corresponder à verdade dos fatos.", fato),
			models.KindFact, models.ConfidenceMedium)
	}

	b.add("O ônus da prova incumbe ao autor, quanto ao fato constitutivo de seu direito, conforme art. 373, I, do CPC.",
		models.KindLegalBasis, models.ConfidenceHigh, "CPC, art. 373")
	b.add("Na ausência de comprovação dos fatos constitutivos do direito alegado, impõe-se a improcedência dos pedidos.",
		models.KindThesis, models.ConfidenceHigh)
	if strings.Contains(facts, "dano moral") || strings.Contains(facts, "indenização") {
		b.add("Inexiste dano moral indenizável, sendo certo que mero aborrecimento ou dissabor do cotidiano não configura dano moral.",
			models.KindThesis, models.ConfidenceMedium)
	}

	b.add("Requer seja acolhida a presente contestação para julgar IMPROCEDENTES os pedidos formulados na inicial.",
		models.KindRequest, models.ConfidenceHigh, "CPC, art. 336")
	b.add("Requer a produção de todas as provas em direito admitidas, especialmente a documental, testemunhal e pericial.",
		models.KindRequest, models.ConfidenceHigh)
	b.add("Requer a condenação do autor ao pagamento das custas processuais e honorários advocatícios.",
		models.KindRequest, models.ConfidenceHigh, "CPC, art. 85")

	return b.assertions(), nil
}
