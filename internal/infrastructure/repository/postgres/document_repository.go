package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

const documentColumns = `id, owner_id, original_name, mime_type, size_bytes, storage_disk, storage_path,
	title, description, tags, summary, sensitivity, ai_analyzed,
	visibility, public_token, public_enabled_at, public_disabled_at, created_at, updated_at`

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
`,
		doc.ID, doc.OwnerID, doc.OriginalName, doc.MimeType, doc.SizeBytes, doc.StorageDisk, doc.StoragePath,
		nullIfEmpty(doc.Title), nullIfEmpty(doc.Description), tagsJSON, nullIfEmpty(doc.Summary),
		nullIfEmpty(string(doc.Sensitivity)), doc.AIAnalyzed,
		string(doc.Visibility), nullIfEmpty(doc.PublicToken), doc.PublicEnabledAt, doc.PublicDisabledAt,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)
	return scanDocument(row)
}

// GetByPublicToken only resolves documents currently in the public state,
// so an unknown token and a private document are the same not-found.
func (r *DocumentRepository) GetByPublicToken(ctx context.Context, token string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE public_token = $1 AND visibility = 'public'
`, token)
	return scanDocument(row)
}

// Update writes the full mutable row in one statement; a transition is
// never observable half-applied.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET title = $2, description = $3, tags = $4, summary = $5, sensitivity = $6, ai_analyzed = $7,
	visibility = $8, public_token = $9, public_enabled_at = $10, public_disabled_at = $11, updated_at = $12
WHERE id = $1
`,
		doc.ID, nullIfEmpty(doc.Title), nullIfEmpty(doc.Description), tagsJSON, nullIfEmpty(doc.Summary),
		nullIfEmpty(string(doc.Sensitivity)), doc.AIAnalyzed,
		string(doc.Visibility), nullIfEmpty(doc.PublicToken), doc.PublicEnabledAt, doc.PublicDisabledAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, ownerID string, visibility domain.Visibility) ([]domain.Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE owner_id = $1`
	args := []any{ownerID}
	if visibility != "" {
		query += ` AND visibility = $2`
		args = append(args, string(visibility))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (r *DocumentRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		return []domain.Document{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id IN (`+strings.Join(placeholders, ",")+`)
ORDER BY created_at DESC
`, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents by ids: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var tagsRaw []byte
	var title, description, summary, sensitivity, publicToken sql.NullString
	var visibility string

	err := row.Scan(
		&doc.ID, &doc.OwnerID, &doc.OriginalName, &doc.MimeType, &doc.SizeBytes, &doc.StorageDisk, &doc.StoragePath,
		&title, &description, &tagsRaw, &summary, &sensitivity, &doc.AIAnalyzed,
		&visibility, &publicToken, &doc.PublicEnabledAt, &doc.PublicDisabledAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if err := json.Unmarshal(tagsRaw, &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	doc.Title = title.String
	doc.Description = description.String
	doc.Summary = summary.String
	doc.Sensitivity = domain.Sensitivity(sensitivity.String)
	doc.Visibility = domain.Visibility(visibility)
	doc.PublicToken = publicToken.String
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]domain.Document, error) {
	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
