package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

// SearchIndex keeps the flat per-document projection in a tsvector-backed
// table. The projection row is upserted on every document write and
// removed with the document (FK cascade also covers it).
type SearchIndex struct {
	db *sql.DB
}

func NewSearchIndex(db *sql.DB) *SearchIndex {
	return &SearchIndex{db: db}
}

func (s *SearchIndex) Index(ctx context.Context, p domain.SearchProjection) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO document_search (document_id, title, original_name, description, summary, tags_text)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (document_id) DO UPDATE
SET title = EXCLUDED.title,
	original_name = EXCLUDED.original_name,
	description = EXCLUDED.description,
	summary = EXCLUDED.summary,
	tags_text = EXCLUDED.tags_text
`, p.DocumentID, p.Title, p.OriginalName, p.Description, p.Summary, p.TagsText)
	if err != nil {
		return fmt.Errorf("upsert search projection: %w", err)
	}
	return nil
}

func (s *SearchIndex) Remove(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM document_search WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("delete search projection: %w", err)
	}
	return nil
}

func (s *SearchIndex) Search(ctx context.Context, ownerID, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT ds.document_id
FROM document_search ds
JOIN documents d ON d.id = ds.document_id
WHERE d.owner_id = $1 AND ds.tsv @@ plainto_tsquery('simple', $2)
ORDER BY d.created_at DESC
`, ownerID, query)
	if err != nil {
		return nil, fmt.Errorf("search projections: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search hits: %w", err)
	}
	return ids, nil
}
