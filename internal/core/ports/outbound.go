package ports

import (
	"context"
	"io"
	"time"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

// DocumentRepository persists document rows. Update writes the whole row in
// a single statement so readers never observe a half-applied transition.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetByPublicToken(ctx context.Context, token string) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string, visibility domain.Visibility) ([]domain.Document, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Document, error)
}

// ShareRepository persists the sharing ledger.
type ShareRepository interface {
	Create(ctx context.Context, grant *domain.ShareGrant) error
	Get(ctx context.Context, documentID, userID string) (*domain.ShareGrant, error)
	Update(ctx context.Context, grant *domain.ShareGrant) error
	Delete(ctx context.Context, documentID, userID string) error
	ListRecipients(ctx context.Context, documentID string) ([]domain.Recipient, error)
	ListSharedWith(ctx context.Context, userID string) ([]domain.SharedDocument, error)
}

// UserDirectory resolves recipient accounts. Lookup only.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// BlobStore stores source documents under opaque keys.
type BlobStore interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes a blob; an already-absent blob is not an error.
	Delete(ctx context.Context, key string) error
}

// AnalysisTask is the queue message that triggers one background analysis.
type AnalysisTask struct {
	DocumentID string    `json:"document_id"`
	Force      bool      `json:"force"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// AnalysisQueue decouples upload from classification. The worker consuming
// the subscription may live in a different process than the publisher.
type AnalysisQueue interface {
	PublishAnalysisRequested(ctx context.Context, task AnalysisTask) error
	SubscribeAnalysisRequested(ctx context.Context, handler func(context.Context, AnalysisTask) error) error
}

type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentDocument AttachmentKind = "document"
)

// Attachment is a binary payload handed to the classifier alongside the
// context prompt.
type Attachment struct {
	Kind     AttachmentKind
	MimeType string
	Data     []byte
}

// ClassifyRequest carries either a purely textual prompt or a prompt plus
// one binary attachment.
type ClassifyRequest struct {
	Prompt     string
	Attachment *Attachment
}

// DocumentClassifier produces a structured verdict for one document. The
// result is raw model output; the orchestrator normalizes it.
type DocumentClassifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (domain.AnalysisResult, error)
}

// TextExtractor reduces a stored document to plain text when its type
// belongs to a known text family (plain text, pdf, spreadsheets).
type TextExtractor interface {
	Supports(mimeType, extension string) bool
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// SearchIndex keeps the flat document projection in sync for full-text
// lookup. Search returns matching document ids scoped to one owner.
type SearchIndex interface {
	Index(ctx context.Context, projection domain.SearchProjection) error
	Remove(ctx context.Context, documentID string) error
	Search(ctx context.Context, ownerID, query string) ([]string, error)
}

// QRRenderer renders a URL as a QR image.
type QRRenderer interface {
	RenderPNG(url string, size int) ([]byte, error)
}
