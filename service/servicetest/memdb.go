// Package servicetest provides in-memory implementations of the service
// store interfaces for tests.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"lexdraft-backend/models"
	"lexdraft-backend/repository"

	"github.com/google/uuid"
)

// DB is an in-memory stand-in for the Postgres schema, shared by the fake stores
type DB struct {
	mu          sync.Mutex
	cases       map[uuid.UUID]*models.Case
	documents   map[uuid.UUID]*models.LegalDocument
	versions    map[uuid.UUID]*models.DocumentVersion
	assertions  map[uuid.UUID]*models.Assertion
	sources     map[uuid.UUID]*models.LegalSource
	links       map[uuid.UUID]map[uuid.UUID]*models.AssertionSourceLink
	renderings  map[uuid.UUID]*models.Rendering
	activity    []*models.ActivityLog
	attachments map[uuid.UUID]*models.Attachment
	users       map[string]*models.User

	// FailBatch, when set, makes CreateBatch fail without writing anything
	FailBatch error
}

// New returns an empty database
func New() *DB {
	return &DB{
		cases:       map[uuid.UUID]*models.Case{},
		documents:   map[uuid.UUID]*models.LegalDocument{},
		versions:    map[uuid.UUID]*models.DocumentVersion{},
		assertions:  map[uuid.UUID]*models.Assertion{},
		sources:     map[uuid.UUID]*models.LegalSource{},
		links:       map[uuid.UUID]map[uuid.UUID]*models.AssertionSourceLink{},
		renderings:  map[uuid.UUID]*models.Rendering{},
		attachments: map[uuid.UUID]*models.Attachment{},
		users:       map[string]*models.User{},
	}
}

func (db *DB) ownsCase(caseID, userID uuid.UUID) bool {
	c, ok := db.cases[caseID]
	return ok && c.UserID == userID
}

func (db *DB) ownsDocument(docID, userID uuid.UUID) bool {
	d, ok := db.documents[docID]
	return ok && db.ownsCase(d.CaseID, userID)
}

func (db *DB) ownsVersion(versionID, userID uuid.UUID) bool {
	v, ok := db.versions[versionID]
	return ok && db.ownsDocument(v.DocumentID, userID)
}

func (db *DB) sourcesOf(assertionID uuid.UUID) []*models.LegalSource {
	out := []*models.LegalSource{}
	for sourceID := range db.links[assertionID] {
		out = append(out, db.sources[sourceID])
	}
	models.SortByHierarchy(out)
	return out
}

func (db *DB) hydrate(a *models.Assertion) *models.Assertion {
	cp := *a
	cp.Sources = db.sourcesOf(a.ID)
	return &cp
}

func (db *DB) nextPosition(versionID uuid.UUID) int {
	max := 0
	for _, a := range db.assertions {
		if a.VersionID == versionID && a.Position > max {
			max = a.Position
		}
	}
	return max + 1
}

// Seed creates a user-owned case with one document and its first version
func (db *DB) Seed(userID uuid.UUID) (*models.Case, *models.LegalDocument, *models.DocumentVersion) {
	db.mu.Lock()
	defer db.mu.Unlock()
	c := &models.Case{ID: uuid.New(), UserID: userID, LegalArea: "civil", Title: "Caso"}
	db.cases[c.ID] = c
	d := &models.LegalDocument{ID: uuid.New(), CaseID: c.ID, PieceType: "Petição Inicial", Status: models.DocumentDraft}
	db.documents[d.ID] = d
	v := &models.DocumentVersion{ID: uuid.New(), DocumentID: d.ID, VersionNumber: 1, CreatedBy: models.CreatorHuman}
	db.versions[v.ID] = v
	d.CurrentVersionID = &v.ID
	return c, d, v
}

// AddSource stores a source directly
func (db *DB) AddSource(t models.SourceType, ref, excerpt string) *models.LegalSource {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := &models.LegalSource{ID: uuid.New(), Type: t, Reference: ref, Excerpt: excerpt, CreatedAt: time.Now()}
	db.sources[s.ID] = s
	return s
}

// Stores bundles one fake of each store over the same DB
type Stores struct {
	Cases       CaseStore
	Documents   DocumentStore
	Assertions  AssertionStore
	Sources     SourceStore
	Renderings  RenderingStore
	Activity    ActivityStore
	Attachments AttachmentStore
	Users       UserStore
}

// Stores returns the fakes backed by db
func (db *DB) Stores() Stores {
	return Stores{
		Cases:       CaseStore{db},
		Documents:   DocumentStore{db},
		Assertions:  AssertionStore{db},
		Sources:     SourceStore{db},
		Renderings:  RenderingStore{db},
		Activity:    ActivityStore{db},
		Attachments: AttachmentStore{db},
		Users:       UserStore{db},
	}
}

// Activity returns a snapshot of the recorded audit entries
func (db *DB) Activity() []*models.ActivityLog {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := make([]*models.ActivityLog, len(db.activity))
	copy(out, db.activity)
	return out
}

// Assertions returns every stored assertion of a version in position order
func (db *DB) Assertions(versionID uuid.UUID) []*models.Assertion {
	out, _ := AssertionStore{db}.ListByVersion(context.Background(), versionID)
	return out
}

// Document returns the stored document
func (db *DB) Document(id uuid.UUID) *models.LegalDocument {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := *db.documents[id]
	return &cp
}

// CaseStore is an in-memory case store
type CaseStore struct{ db *DB }

func (f CaseStore) Create(ctx context.Context, c *models.Case) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.db.cases[c.ID] = c
	return nil
}

func (f CaseStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Case, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if !f.db.ownsCase(id, userID) {
		return nil, repository.ErrNotFound
	}
	cp := *f.db.cases[id]
	return &cp, nil
}

func (f CaseStore) ListByUserID(ctx context.Context, userID uuid.UUID, legalArea *string, limit, offset int) ([]*models.Case, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.Case{}
	for _, c := range f.db.cases {
		if c.UserID == userID && (legalArea == nil || c.LegalArea == *legalArea) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f CaseStore) Update(ctx context.Context, c *models.Case) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *c
	f.db.cases[c.ID] = &cp
	return nil
}

func (f CaseStore) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if !f.db.ownsCase(id, userID) {
		return false, nil
	}
	delete(f.db.cases, id)
	return true, nil
}

func (f CaseStore) CountDocuments(ctx context.Context, id uuid.UUID) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n := 0
	for _, d := range f.db.documents {
		if d.CaseID == id {
			n++
		}
	}
	return n, nil
}

// DocumentStore is an in-memory document store
type DocumentStore struct{ db *DB }

func (f DocumentStore) Create(ctx context.Context, doc *models.LegalDocument) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	doc.ID = uuid.New()
	f.db.documents[doc.ID] = doc
	return nil
}

func (f DocumentStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.LegalDocument, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if !f.db.ownsDocument(id, userID) {
		return nil, repository.ErrNotFound
	}
	cp := *f.db.documents[id]
	return &cp, nil
}

func (f DocumentStore) ListByCaseID(ctx context.Context, caseID, userID uuid.UUID, limit, offset int) ([]*models.LegalDocument, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.LegalDocument{}
	for _, d := range f.db.documents {
		if d.CaseID == caseID && f.db.ownsCase(caseID, userID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f DocumentStore) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status models.DocumentStatus) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if !f.db.ownsDocument(id, userID) {
		return repository.ErrNotFound
	}
	f.db.documents[id].Status = status
	return nil
}

func (f DocumentStore) CreateVersion(ctx context.Context, documentID, userID uuid.UUID, v *models.DocumentVersion) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if !f.db.ownsDocument(documentID, userID) {
		return repository.ErrNotFound
	}
	max := 0
	for _, existing := range f.db.versions {
		if existing.DocumentID == documentID && existing.VersionNumber > max {
			max = existing.VersionNumber
		}
	}
	v.ID = uuid.New()
	v.DocumentID = documentID
	v.VersionNumber = max + 1
	v.CreatedAt = time.Now()
	f.db.versions[v.ID] = v
	f.db.documents[documentID].CurrentVersionID = &v.ID
	return nil
}

func (f DocumentStore) GetVersion(ctx context.Context, id, userID uuid.UUID) (*models.DocumentVersion, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if !f.db.ownsVersion(id, userID) {
		return nil, repository.ErrNotFound
	}
	cp := *f.db.versions[id]
	return &cp, nil
}

func (f DocumentStore) ListVersions(ctx context.Context, documentID, userID uuid.UUID) ([]*models.DocumentVersion, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.DocumentVersion{}
	for _, v := range f.db.versions {
		if v.DocumentID == documentID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

// AssertionStore is an in-memory assertion store
type AssertionStore struct{ db *DB }

func (f AssertionStore) Create(ctx context.Context, userID uuid.UUID, a *models.Assertion) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if !f.db.ownsVersion(a.VersionID, userID) {
		return repository.ErrNotFound
	}
	a.ID = uuid.New()
	a.Position = f.db.nextPosition(a.VersionID)
	a.CreatedAt = time.Now()
	cp := *a
	f.db.assertions[a.ID] = &cp
	return nil
}

func (f AssertionStore) CreateBatch(ctx context.Context, versionID, userID uuid.UUID, items []models.NewAssertion) ([]*models.Assertion, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if !f.db.ownsVersion(versionID, userID) {
		return nil, repository.ErrNotFound
	}
	if f.db.FailBatch != nil {
		return nil, f.db.FailBatch
	}
	// assertion_sources.source_id is a foreign key
	for _, item := range items {
		for _, sourceID := range item.SourceIDs {
			if _, ok := f.db.sources[sourceID]; !ok {
				return nil, repository.ErrNotFound
			}
		}
	}
	start := f.db.nextPosition(versionID)
	out := make([]*models.Assertion, len(items))
	for i, item := range items {
		a := &models.Assertion{
			ID:         uuid.New(),
			VersionID:  versionID,
			Text:       item.Text,
			Kind:       item.Kind,
			Confidence: item.Confidence,
			Position:   start + i,
			CreatedAt:  time.Now(),
		}
		f.db.assertions[a.ID] = a
		for _, sourceID := range item.SourceIDs {
			if f.db.links[a.ID] == nil {
				f.db.links[a.ID] = map[uuid.UUID]*models.AssertionSourceLink{}
			}
			f.db.links[a.ID][sourceID] = &models.AssertionSourceLink{ID: uuid.New(), AssertionID: a.ID, SourceID: sourceID}
		}
		out[i] = f.db.hydrate(a)
	}
	return out, nil
}

func (f AssertionStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Assertion, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	a, ok := f.db.assertions[id]
	if !ok || !f.db.ownsVersion(a.VersionID, userID) {
		return nil, repository.ErrNotFound
	}
	return f.db.hydrate(a), nil
}

func (f AssertionStore) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*models.Assertion, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.Assertion{}
	for _, a := range f.db.assertions {
		if a.VersionID == versionID {
			out = append(out, f.db.hydrate(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f AssertionStore) ListSources(ctx context.Context, assertionID uuid.UUID) ([]*models.LegalSource, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.sourcesOf(assertionID), nil
}

func (f AssertionStore) Link(ctx context.Context, assertionID, sourceID uuid.UUID) (*models.AssertionSourceLink, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if existing, ok := f.db.links[assertionID][sourceID]; ok {
		return existing, false, nil
	}
	if f.db.links[assertionID] == nil {
		f.db.links[assertionID] = map[uuid.UUID]*models.AssertionSourceLink{}
	}
	link := &models.AssertionSourceLink{ID: uuid.New(), AssertionID: assertionID, SourceID: sourceID, CreatedAt: time.Now()}
	f.db.links[assertionID][sourceID] = link
	return link, true, nil
}

func (f AssertionStore) Unlink(ctx context.Context, assertionID, sourceID uuid.UUID) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.links[assertionID][sourceID]; !ok {
		return false, nil
	}
	delete(f.db.links[assertionID], sourceID)
	return true, nil
}

// SourceStore is an in-memory source store
type SourceStore struct{ db *DB }

func (f SourceStore) Create(ctx context.Context, s *models.LegalSource) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.sources {
		if existing.Type == s.Type && existing.Reference == s.Reference && existing.Excerpt == s.Excerpt {
			*s = *existing
			return false, nil
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	f.db.sources[s.ID] = &cp
	return true, nil
}

func (f SourceStore) GetByID(ctx context.Context, id uuid.UUID) (*models.LegalSource, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.sources[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (f SourceStore) GetByReference(ctx context.Context, sourceType *models.SourceType, reference string) (*models.LegalSource, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var best *models.LegalSource
	for _, s := range f.db.sources {
		if s.Reference != reference || (sourceType != nil && s.Type != *sourceType) {
			continue
		}
		if best == nil || s.HierarchyRank() < best.HierarchyRank() {
			best = s
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return best, nil
}

func (f SourceStore) Search(ctx context.Context, query string, sourceType *models.SourceType, limit int) ([]*models.LegalSource, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	q := strings.ToLower(query)
	out := []*models.LegalSource{}
	for _, s := range f.db.sources {
		if sourceType != nil && s.Type != *sourceType {
			continue
		}
		if strings.Contains(strings.ToLower(s.Reference), q) || strings.Contains(strings.ToLower(s.Excerpt), q) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HierarchyRank() != out[j].HierarchyRank() {
			return out[i].HierarchyRank() < out[j].HierarchyRank()
		}
		return out[i].Reference < out[j].Reference
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f SourceStore) CountByType(ctx context.Context) (map[models.SourceType]int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	counts := map[models.SourceType]int{}
	for _, s := range f.db.sources {
		counts[s.Type]++
	}
	return counts, nil
}

// RenderingStore is an in-memory rendering store
type RenderingStore struct{ db *DB }

func (f RenderingStore) Upsert(ctx context.Context, r *models.Rendering) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.renderings {
		if existing.VersionID == r.VersionID && existing.Format == r.Format {
			existing.RenderedText = r.RenderedText
			existing.UpdatedAt = time.Now()
			*r = *existing
			return nil
		}
	}
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	f.db.renderings[r.ID] = &cp
	return nil
}

func (f RenderingStore) GetByVersionAndFormat(ctx context.Context, versionID uuid.UUID, format models.RenderFormat, userID uuid.UUID) (*models.Rendering, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.renderings {
		if r.VersionID == versionID && r.Format == format && f.db.ownsVersion(versionID, userID) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f RenderingStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Rendering, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.renderings[id]
	if !ok || !f.db.ownsVersion(r.VersionID, userID) {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f RenderingStore) ListByVersion(ctx context.Context, versionID, userID uuid.UUID) ([]*models.Rendering, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.Rendering{}
	for _, r := range f.db.renderings {
		if r.VersionID == versionID && f.db.ownsVersion(versionID, userID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f RenderingStore) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.renderings[id]
	if !ok || !f.db.ownsVersion(r.VersionID, userID) {
		return false, nil
	}
	delete(f.db.renderings, id)
	return true, nil
}

// ActivityStore is an in-memory activity store
type ActivityStore struct{ db *DB }

func (f ActivityStore) Create(ctx context.Context, entry *models.ActivityLog) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	f.db.activity = append(f.db.activity, entry)
	return nil
}

func (f ActivityStore) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.ActivityLog{}
	for _, e := range f.db.activity {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f ActivityStore) ListByUser(ctx context.Context, userID uuid.UUID, since time.Time, limit, offset int) ([]*models.ActivityLog, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.ActivityLog{}
	for _, e := range f.db.activity {
		if e.UserID != nil && *e.UserID == userID && !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f ActivityStore) ListForDocument(ctx context.Context, documentID uuid.UUID) ([]*models.ActivityLog, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	related := map[uuid.UUID]bool{documentID: true}
	for _, v := range f.db.versions {
		if v.DocumentID == documentID {
			related[v.ID] = true
		}
	}
	for _, a := range f.db.assertions {
		if related[a.VersionID] {
			related[a.ID] = true
		}
	}
	for _, r := range f.db.renderings {
		if related[r.VersionID] {
			related[r.ID] = true
		}
	}
	out := []*models.ActivityLog{}
	for _, e := range f.db.activity {
		if related[e.EntityID] {
			out = append(out, e)
		}
	}
	return out, nil
}

// AttachmentStore is an in-memory attachment store
type AttachmentStore struct{ db *DB }

func (f AttachmentStore) Create(ctx context.Context, att *models.Attachment) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	att.UploadedAt = time.Now()
	f.db.attachments[att.ID] = att
	return nil
}

func (f AttachmentStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Attachment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	att, ok := f.db.attachments[id]
	if !ok || !f.db.ownsCase(att.CaseID, userID) {
		return nil, repository.ErrNotFound
	}
	return att, nil
}

func (f AttachmentStore) ListByCaseID(ctx context.Context, caseID, userID uuid.UUID) ([]*models.Attachment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []*models.Attachment{}
	for _, att := range f.db.attachments {
		if att.CaseID == caseID && f.db.ownsCase(caseID, userID) {
			out = append(out, att)
		}
	}
	return out, nil
}

// UserStore is an in-memory user store
type UserStore struct{ db *DB }

func (f UserStore) Create(ctx context.Context, u *models.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u.ID = uuid.New()
	f.db.users[u.Email] = u
	return nil
}

func (f UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}
