package pipeline

import (
	"strings"

	"lexdraft-backend/agents"
)

const (
	ClassProcedimentoComum = "procedimento_comum"
	ClassAcaoPenal         = "acao_penal"
)

var defaultGrounds = []string{"CPC, art. 319"}

// groundsByAgent lists the references each piece type usually relies on
var groundsByAgent = map[string][]string{
	"peticao-inicial-civil":       {"CPC, art. 319", "CPC, art. 320", "CF, art. 5º, XXXV"},
	"peticao-inicial-indenizacao": {"CPC, art. 319", "CC, art. 186", "CC, art. 927", "CDC, art. 6º", "CDC, art. 14"},
	"peticao-inicial-cobranca":    {"CPC, art. 319", "CC, art. 389", "CC, art. 395"},
	"contestacao-civil":           {"CPC, art. 335", "CPC, art. 336", "CPC, art. 337"},
	"denuncia-penal":              {"CPP, art. 41", "CPP, art. 43"},
}

type keywordRule struct {
	keywords   []string
	references []string
}

var keywordRules = []keywordRule{
	{[]string{"negativação", "serasa", "spc"}, []string{"CDC, art. 43", "Súmula 385 STJ"}},
	{[]string{"consumidor", "produto"}, []string{"CDC, art. 12", "CDC, art. 14"}},
	{[]string{"dano moral"}, []string{"CC, art. 186"}},
	{[]string{"contrato"}, []string{"CC, art. 421", "CC, art. 422"}},
}

// Normalize structures the client input without generating content
func Normalize(in Input) agents.NormalizedInput {
	parties := in.Parties
	if parties == nil {
		parties = map[string]string{}
	}
	return agents.NormalizedInput{
		Facts:            nonNil(in.Facts),
		Requests:         nonNil(in.Requests),
		CandidateGrounds: inferGrounds(in.AgentType, in.Facts),
		ProceduralClass:  inferProceduralClass(in.AgentType),
		Parties:          parties,
		ClaimValue:       in.ClaimValue,
	}
}

// inferGrounds returns the agent's base references plus those suggested by
// keywords in the facts, deduplicated in first-seen order.
func inferGrounds(agentType string, facts []string) []string {
	base, ok := groundsByAgent[agentType]
	if !ok {
		base = defaultGrounds
	}
	refs := append([]string(nil), base...)

	text := strings.ToLower(strings.Join(facts, " "))
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				refs = append(refs, rule.references...)
				break
			}
		}
	}
	return dedupe(refs)
}

func inferProceduralClass(agentType string) string {
	if strings.Contains(agentType, "denuncia") {
		return ClassAcaoPenal
	}
	return ClassProcedimentoComum
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
