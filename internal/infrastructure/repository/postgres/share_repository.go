package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

type ShareRepository struct {
	db *sql.DB
}

func NewShareRepository(db *sql.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) Create(ctx context.Context, grant *domain.ShareGrant) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO document_shares (document_id, user_id, shared_by, can_download, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, grant.DocumentID, grant.UserID, grant.SharedBy, grant.CanDownload, grant.CreatedAt, grant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert share grant: %w", err)
	}
	return nil
}

func (r *ShareRepository) Get(ctx context.Context, documentID, userID string) (*domain.ShareGrant, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT document_id, user_id, shared_by, can_download, created_at, updated_at
FROM document_shares
WHERE document_id = $1 AND user_id = $2
`, documentID, userID)

	var grant domain.ShareGrant
	err := row.Scan(&grant.DocumentID, &grant.UserID, &grant.SharedBy, &grant.CanDownload, &grant.CreatedAt, &grant.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGrantNotFound
		}
		return nil, fmt.Errorf("scan share grant: %w", err)
	}
	return &grant, nil
}

func (r *ShareRepository) Update(ctx context.Context, grant *domain.ShareGrant) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE document_shares
SET can_download = $3, updated_at = $4
WHERE document_id = $1 AND user_id = $2
`, grant.DocumentID, grant.UserID, grant.CanDownload, grant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update share grant: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrGrantNotFound
	}
	return nil
}

func (r *ShareRepository) Delete(ctx context.Context, documentID, userID string) error {
	result, err := r.db.ExecContext(ctx, `
DELETE FROM document_shares WHERE document_id = $1 AND user_id = $2
`, documentID, userID)
	if err != nil {
		return fmt.Errorf("delete share grant: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrGrantNotFound
	}
	return nil
}

func (r *ShareRepository) ListRecipients(ctx context.Context, documentID string) ([]domain.Recipient, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT u.id, u.name, u.email, s.can_download
FROM document_shares s
JOIN users u ON u.id = s.user_id
WHERE s.document_id = $1
ORDER BY s.created_at
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	recipients := []domain.Recipient{}
	for rows.Next() {
		var rec domain.Recipient
		if err := rows.Scan(&rec.User.ID, &rec.User.Name, &rec.Email, &rec.CanDownload); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		recipients = append(recipients, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipients: %w", err)
	}
	return recipients, nil
}

func (r *ShareRepository) ListSharedWith(ctx context.Context, userID string) ([]domain.SharedDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT d.id, d.owner_id, d.original_name, d.mime_type, d.size_bytes, d.storage_disk, d.storage_path,
	d.title, d.description, d.tags, d.summary, d.sensitivity, d.ai_analyzed,
	d.visibility, d.public_token, d.public_enabled_at, d.public_disabled_at, d.created_at, d.updated_at,
	u.id, u.name
FROM document_shares s
JOIN documents d ON d.id = s.document_id
JOIN users u ON u.id = d.owner_id
WHERE s.user_id = $1
ORDER BY s.created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list shared documents: %w", err)
	}
	defer rows.Close()

	shared := []domain.SharedDocument{}
	for rows.Next() {
		var doc domain.Document
		var owner domain.UserRef
		var tagsRaw []byte
		var title, description, summary, sensitivity, publicToken sql.NullString
		var visibility string

		err := rows.Scan(
			&doc.ID, &doc.OwnerID, &doc.OriginalName, &doc.MimeType, &doc.SizeBytes, &doc.StorageDisk, &doc.StoragePath,
			&title, &description, &tagsRaw, &summary, &sensitivity, &doc.AIAnalyzed,
			&visibility, &publicToken, &doc.PublicEnabledAt, &doc.PublicDisabledAt, &doc.CreatedAt, &doc.UpdatedAt,
			&owner.ID, &owner.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("scan shared document: %w", err)
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

		shared = append(shared, domain.SharedDocument{Document: doc, Owner: owner})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shared documents: %w", err)
	}
	return shared, nil
}
