package repository

import (
	"context"
	"errors"
	"time"

	"lexdraft-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssertionRepository handles database operations for assertions and their source links
type AssertionRepository struct {
	db *pgxpool.Pool
}

// NewAssertionRepository creates a new assertion repository
func NewAssertionRepository(db *pgxpool.Pool) *AssertionRepository {
	return &AssertionRepository{db: db}
}

const assertionColumns = `a.id, a.document_version_id, a.text, a.assertion_type, a.confidence_level, a.position, a.created_at`

// lockVersion verifies ownership and serializes position allocation for a version
func lockVersion(ctx context.Context, tx pgx.Tx, versionID, userID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, ownedVersionSQL+` FOR UPDATE OF v`, versionID, userID).Scan(&id)
	return notFound(err)
}

func nextPosition(ctx context.Context, tx pgx.Tx, versionID uuid.UUID) (int, error) {
	var next int
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM legal_assertions WHERE document_version_id = $1`,
		versionID,
	).Scan(&next)
	return next, err
}

// Create inserts one assertion at the next free position of the version
func (r *AssertionRepository) Create(ctx context.Context, userID uuid.UUID, a *models.Assertion) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockVersion(ctx, tx, a.VersionID, userID); err != nil {
		return err
	}
	if a.Position, err = nextPosition(ctx, tx, a.VersionID); err != nil {
		return err
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO legal_assertions (document_version_id, text, assertion_type, confidence_level, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		a.VersionID, a.Text, a.Kind, a.Confidence, a.Position,
	).Scan(&a.ID, &a.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CreateBatch inserts assertions and their source links in one transaction.
// Positions form a contiguous range starting at the version's next position,
// in input order. Either everything is committed or nothing is.
func (r *AssertionRepository) CreateBatch(ctx context.Context, versionID, userID uuid.UUID, items []models.NewAssertion) ([]*models.Assertion, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := lockVersion(ctx, tx, versionID, userID); err != nil {
		return nil, err
	}
	start, err := nextPosition(ctx, tx, versionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created := make([]*models.Assertion, len(items))
	assertionRows := make([][]interface{}, len(items))
	var linkRows [][]interface{}

	for i, item := range items {
		a := &models.Assertion{
			ID:         uuid.New(),
			VersionID:  versionID,
			Text:       item.Text,
			Kind:       item.Kind,
			Confidence: item.Confidence,
			Position:   start + i,
			CreatedAt:  now,
		}
		created[i] = a
		assertionRows[i] = []interface{}{a.ID, a.VersionID, a.Text, string(a.Kind), string(a.Confidence), a.Position, a.CreatedAt}

		seen := make(map[uuid.UUID]bool, len(item.SourceIDs))
		for _, sourceID := range item.SourceIDs {
			if seen[sourceID] {
				continue
			}
			seen[sourceID] = true
			linkRows = append(linkRows, []interface{}{uuid.New(), a.ID, sourceID, now})
		}
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"legal_assertions"},
		[]string{"id", "document_version_id", "text", "assertion_type", "confidence_level", "position", "created_at"},
		pgx.CopyFromRows(assertionRows),
	); err != nil {
		return nil, err
	}

	if len(linkRows) > 0 {
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"assertion_sources"},
			[]string{"id", "assertion_id", "source_id", "created_at"},
			pgx.CopyFromRows(linkRows),
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an assertion visible to the user, with its sources
func (r *AssertionRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Assertion, error) {
	query := `
		SELECT ` + assertionColumns + `
		FROM legal_assertions a
		JOIN document_versions v ON v.id = a.document_version_id
		JOIN legal_documents d ON d.id = v.document_id
		JOIN cases c ON c.id = d.case_id
		WHERE a.id = $1 AND c.user_id = $2`

	a := &models.Assertion{}
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&a.ID,
		&a.VersionID,
		&a.Text,
		&a.Kind,
		&a.Confidence,
		&a.Position,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	if a.Sources, err = r.ListSources(ctx, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

// ListByVersion retrieves a version's assertions in position order with their sources.
// Callers must have checked version ownership.
func (r *AssertionRepository) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]*models.Assertion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+assertionColumns+`
		FROM legal_assertions a
		WHERE a.document_version_id = $1
		ORDER BY a.position`, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assertions []*models.Assertion
	byID := make(map[uuid.UUID]*models.Assertion)
	for rows.Next() {
		a := &models.Assertion{}
		if err := rows.Scan(
			&a.ID,
			&a.VersionID,
			&a.Text,
			&a.Kind,
			&a.Confidence,
			&a.Position,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Sources = []*models.LegalSource{}
		assertions = append(assertions, a)
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(assertions) == 0 {
		return assertions, nil
	}

	linkRows, err := r.db.Query(ctx, `
		SELECT l.assertion_id, `+sourceColumns+`
		FROM assertion_sources l
		JOIN legal_sources s ON s.id = l.source_id
		JOIN legal_assertions a ON a.id = l.assertion_id
		WHERE a.document_version_id = $1
		ORDER BY `+hierarchyRankSQL+`, s.reference`, versionID)
	if err != nil {
		return nil, err
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var assertionID uuid.UUID
		s := &models.LegalSource{}
		if err := linkRows.Scan(&assertionID, &s.ID, &s.Type, &s.Reference, &s.Excerpt, &s.URL, &s.CreatedAt); err != nil {
			return nil, err
		}
		if a, ok := byID[assertionID]; ok {
			a.Sources = append(a.Sources, s)
		}
	}
	return assertions, linkRows.Err()
}

// ListSources retrieves the sources of an assertion ordered by hierarchy rank
func (r *AssertionRepository) ListSources(ctx context.Context, assertionID uuid.UUID) ([]*models.LegalSource, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+sourceColumns+`
		FROM assertion_sources l
		JOIN legal_sources s ON s.id = l.source_id
		WHERE l.assertion_id = $1
		ORDER BY `+hierarchyRankSQL+`, s.reference`, assertionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSources(rows)
}

// Link links a source to an assertion. An existing link is returned unchanged.
func (r *AssertionRepository) Link(ctx context.Context, assertionID, sourceID uuid.UUID) (*models.AssertionSourceLink, bool, error) {
	link := &models.AssertionSourceLink{AssertionID: assertionID, SourceID: sourceID}

	err := r.db.QueryRow(ctx, `
		INSERT INTO assertion_sources (assertion_id, source_id)
		VALUES ($1, $2)
		ON CONFLICT (assertion_id, source_id) DO NOTHING
		RETURNING id, created_at`, assertionID, sourceID).Scan(&link.ID, &link.CreatedAt)
	if err == nil {
		return link, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	err = r.db.QueryRow(ctx,
		`SELECT id, created_at FROM assertion_sources WHERE assertion_id = $1 AND source_id = $2`,
		assertionID, sourceID,
	).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		return nil, false, notFound(err)
	}
	return link, false, nil
}

// Unlink removes a link and reports whether it existed
func (r *AssertionRepository) Unlink(ctx context.Context, assertionID, sourceID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM assertion_sources WHERE assertion_id = $1 AND source_id = $2`,
		assertionID, sourceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
