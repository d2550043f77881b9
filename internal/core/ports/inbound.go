package ports

import (
	"context"
	"io"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

// UploadInput describes one incoming file plus optional user-authored
// metadata.
type UploadInput struct {
	Filename    string
	MimeType    string
	SizeBytes   int64
	Title       string
	Description string
	Body        io.Reader
}

// DocumentUploader is the inbound contract for upload orchestration.
type DocumentUploader interface {
	Upload(ctx context.Context, actorID string, in UploadInput) (*domain.Document, error)
}

// DocumentAnalyzer is the inbound contract for asynchronous analysis. It
// absorbs every analysis failure internally; a non-nil error means only
// that terminal bookkeeping itself could not be persisted.
type DocumentAnalyzer interface {
	AnalyzeByID(ctx context.Context, documentID string, force bool) error
}
