package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a row does not exist or is not visible to the caller
var ErrNotFound = errors.New("record not found")

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// hierarchyRankSQL orders sources from most to least authoritative
const hierarchyRankSQL = `CASE s.source_type
		WHEN 'constituicao' THEN 1
		WHEN 'lei' THEN 2
		WHEN 'jurisprudencia' THEN 3
		WHEN 'doutrina' THEN 4
		WHEN 'argumentacao' THEN 5
		ELSE 99 END`

// ownedVersionSQL restricts a version id ($1) to those whose case belongs to user $2
const ownedVersionSQL = `
	SELECT v.id FROM document_versions v
	JOIN legal_documents d ON d.id = v.document_id
	JOIN cases c ON c.id = d.case_id
	WHERE v.id = $1 AND c.user_id = $2`

// pagination appends LIMIT/OFFSET placeholders starting at argIndex
func pagination(query string, args []interface{}, argIndex, limit, offset int) (string, []interface{}) {
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}
	return query, args
}
