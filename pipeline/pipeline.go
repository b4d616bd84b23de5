package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lexdraft-backend/agents"
	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/metrics"
	"lexdraft-backend/models"
	"lexdraft-backend/service"

	"github.com/google/uuid"
)

const noteMissingSource = "Assertion sem fonte vinculada"

// Pipeline turns case data into a persisted, validated set of assertions
// on a fresh document version.
type Pipeline struct {
	documents  *service.DocumentService
	assertions *service.AssertionService
	sources    *service.SourceService
	registry   *agents.Registry
	log        *logger.Logger
}

// Option is a functional option for Pipeline
type Option func(*Pipeline)

// WithDocumentService sets the document service
func WithDocumentService(s *service.DocumentService) Option {
	return func(p *Pipeline) {
		p.documents = s
	}
}

// WithAssertionService sets the assertion service
func WithAssertionService(s *service.AssertionService) Option {
	return func(p *Pipeline) {
		p.assertions = s
	}
}

// WithSourceService sets the source service
func WithSourceService(s *service.SourceService) Option {
	return func(p *Pipeline) {
		p.sources = s
	}
}

// WithRegistry sets the agent registry
func WithRegistry(r *agents.Registry) Option {
	return func(p *Pipeline) {
		p.registry = r
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// New creates a pipeline
func New(opts ...Option) *Pipeline {
	p := &Pipeline{log: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("component", "Pipeline")
	return p
}

// Input is the client's request for a generated version
type Input struct {
	DocumentID        uuid.UUID
	AgentType         string
	Facts             []string
	Requests          []string
	ClaimValue        *float64
	Parties           map[string]string
	AdditionalContext string
}

// Result summarizes a completed run
type Result struct {
	VersionID         uuid.UUID `json:"version_id"`
	VersionNumber     int       `json:"version_number"`
	AgentID           string    `json:"agent_id"`
	AssertionsCreated int       `json:"assertions_created"`
	ValidAssertions   int       `json:"valid_assertions"`
}

// ValidatedAssertion pairs a generated assertion with the sources its
// references resolved to.
type ValidatedAssertion struct {
	Assertion agents.GeneratedAssertion
	Sources   []*models.LegalSource
	IsValid   bool
	Notes     *string
}

func (p *Pipeline) ready() error {
	switch {
	case p.documents == nil:
		return errors.New("document service not set")
	case p.assertions == nil:
		return errors.New("assertion service not set")
	case p.sources == nil:
		return errors.New("source service not set")
	case p.registry == nil:
		return errors.New("agent registry not set")
	}
	return nil
}

// Run executes every stage in order, reporting progress through emit.
// On failure an error event is emitted before the error is returned.
func (p *Pipeline) Run(ctx context.Context, in Input, userID uuid.UUID, emit func(Event)) (*Result, error) {
	if emit == nil {
		emit = func(Event) {}
	}
	log := p.log.With("document_id", in.DocumentID, "agent_type", in.AgentType, "user_id", userID)

	res, err := p.run(ctx, in, userID, emit, log)
	if err != nil {
		log.Error("pipeline failed", "error", err)
		metrics.PipelineRuns.WithLabelValues(in.AgentType, "error").Inc()
		emit(newEvent(EventError, map[string]interface{}{
			"error":      err.Error(),
			"error_type": errorType(err),
		}))
		return nil, err
	}

	metrics.PipelineRuns.WithLabelValues(in.AgentType, "ok").Inc()
	log.Info("pipeline completed", "version_id", res.VersionID, "assertions", res.AssertionsCreated, "valid", res.ValidAssertions)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, in Input, userID uuid.UUID, emit func(Event), log *logger.Logger) (*Result, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}

	emit(newEvent(EventStarted, map[string]interface{}{
		"document_id": in.DocumentID.String(),
		"agent_type":  in.AgentType,
	}))

	// 1. version
	done := stageTimer("version")
	agentName := in.AgentType
	version, err := p.documents.CreateVersion(ctx, service.CreateVersionRequest{
		DocumentID: in.DocumentID,
		UserID:     userID,
		CreatedBy:  models.CreatorAgent,
		AgentName:  &agentName,
	})
	done()
	if err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}
	emit(newEvent(EventVersionCreated, map[string]interface{}{
		"version_id":     version.ID.String(),
		"version_number": version.VersionNumber,
	}))

	// 2. normalize
	normalized := Normalize(in)
	emit(newEvent(EventNormalizationComplete, map[string]interface{}{
		"fatos_count":           len(normalized.Facts),
		"pedidos_count":         len(normalized.Requests),
		"possiveis_fundamentos": normalized.CandidateGrounds,
	}))

	// 3. research
	emit(newEvent(EventResearchStarted, map[string]interface{}{
		"fundamentos_buscados": normalized.CandidateGrounds,
	}))
	done = stageTimer("research")
	sources, err := p.research(ctx, normalized.CandidateGrounds, emit, log)
	done()
	if err != nil {
		return nil, fmt.Errorf("research sources: %w", err)
	}
	emit(newEvent(EventResearchComplete, map[string]interface{}{
		"sources_found": len(sources),
	}))

	// 4. generate
	agent := p.registry.Resolve(in.AgentType)
	agentID := agent.Info().ID
	emit(newEvent(EventGenerationStarted, map[string]interface{}{
		"agent": in.AgentType,
	}))
	done = stageTimer("generate")
	generated, err := agent.Generate(ctx, normalized, sources)
	done()
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", agentID, err)
	}
	for _, a := range generated {
		emit(newEvent(EventAssertionGenerated, map[string]interface{}{
			"text":       preview(a.Text),
			"type":       string(a.Kind),
			"confidence": string(a.Confidence),
			"position":   a.Position,
		}))
	}

	// 5. validate
	validated := Validate(generated, sources)
	valid := 0
	for _, va := range validated {
		if va.IsValid {
			valid++
		}
		metrics.AssertionsGenerated.WithLabelValues(agentID, fmt.Sprint(va.IsValid)).Inc()
		emit(newEvent(EventAssertionValidated, map[string]interface{}{
			"position":      va.Assertion.Position,
			"is_valid":      va.IsValid,
			"sources_count": len(va.Sources),
			"notes":         va.Notes,
		}))
	}
	emit(newEvent(EventValidationComplete, map[string]interface{}{
		"total": len(validated),
		"valid": valid,
	}))

	// 6. persist
	done = stageTimer("persist")
	err = p.persist(ctx, version.ID, userID, validated)
	done()
	if err != nil {
		return nil, fmt.Errorf("persist assertions: %w", err)
	}
	if _, err := p.documents.UpdateStatus(ctx, service.UpdateStatusRequest{
		DocumentID: in.DocumentID,
		UserID:     userID,
		Status:     models.DocumentGenerated,
	}); err != nil {
		return nil, fmt.Errorf("update document status: %w", err)
	}
	emit(newEvent(EventPersistenceComplete, map[string]interface{}{
		"version_id": version.ID.String(),
	}))

	res := &Result{
		VersionID:         version.ID,
		VersionNumber:     version.VersionNumber,
		AgentID:           agentID,
		AssertionsCreated: len(validated),
		ValidAssertions:   valid,
	}
	emit(newEvent(EventCompleted, map[string]interface{}{
		"version_id":         version.ID.String(),
		"assertions_created": res.AssertionsCreated,
		"valid_assertions":   res.ValidAssertions,
	}))
	return res, nil
}

// research resolves each reference against stored sources. References with
// no match are dropped: agents only ever see sources that exist.
func (p *Pipeline) research(ctx context.Context, refs []string, emit func(Event), log *logger.Logger) (map[string]*models.LegalSource, error) {
	found := make(map[string]*models.LegalSource, len(refs))
	for _, ref := range refs {
		src, err := p.sources.ResolveReference(ctx, ref)
		if errors.Is(err, service.ErrSourceNotFound) {
			log.Warn("reference not resolved", "reference", ref)
			continue
		}
		if err != nil {
			return nil, err
		}
		found[ref] = src
		emit(newEvent(EventSourceFound, map[string]interface{}{
			"reference": ref,
			"type":      string(src.Type),
			"excerpt":   preview(src.Excerpt),
		}))
	}
	return found, nil
}

// Validate pairs suggested references with resolved sources and applies the
// assertion validity predicate.
func Validate(generated []agents.GeneratedAssertion, sources map[string]*models.LegalSource) []ValidatedAssertion {
	out := make([]ValidatedAssertion, 0, len(generated))
	for _, a := range generated {
		linked := make([]*models.LegalSource, 0, len(a.SuggestedSources))
		seen := make(map[uuid.UUID]bool, len(a.SuggestedSources))
		for _, ref := range a.SuggestedSources {
			src, ok := sources[ref]
			if !ok || seen[src.ID] {
				continue
			}
			seen[src.ID] = true
			linked = append(linked, src)
		}
		models.SortByHierarchy(linked)

		va := ValidatedAssertion{
			Assertion: a,
			Sources:   linked,
			IsValid:   models.AssertionIsValid(len(linked), a.Confidence),
		}
		if !va.IsValid {
			note := noteMissingSource
			va.Notes = &note
		}
		out = append(out, va)
	}
	return out
}

// persist writes every assertion and its links in one batch
func (p *Pipeline) persist(ctx context.Context, versionID, userID uuid.UUID, validated []ValidatedAssertion) error {
	items := make([]models.NewAssertion, len(validated))
	for i, va := range validated {
		ids := make([]uuid.UUID, len(va.Sources))
		for j, src := range va.Sources {
			ids[j] = src.ID
		}
		items[i] = models.NewAssertion{
			Text:       va.Assertion.Text,
			Kind:       va.Assertion.Kind,
			Confidence: va.Assertion.Confidence,
			SourceIDs:  ids,
		}
	}
	_, err := p.assertions.BulkCreateAssertions(ctx, service.BulkCreateAssertionsRequest{
		VersionID: versionID,
		UserID:    userID,
		Items:     items,
	})
	return err
}

func stageTimer(stage string) func() {
	start := time.Now()
	return func() {
		metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

func errorType(err error) string {
	switch {
	case constitution.IsPolicyViolation(err):
		return "PolicyViolation"
	case constitution.IsDomainViolation(err):
		return "DomainViolation"
	case errors.Is(err, service.ErrDocumentNotFound), errors.Is(err, service.ErrVersionNotFound):
		return "NotFound"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Canceled"
	default:
		return "InternalError"
	}
}
