package extractor

import (
	"context"
	"fmt"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
)

// Registry dispatches to the first extractor claiming the document's type.
// It implements ports.TextExtractor itself so callers see one extractor.
type Registry struct {
	extractors []ports.TextExtractor
}

func NewRegistry(extractors ...ports.TextExtractor) *Registry {
	return &Registry{extractors: extractors}
}

func (r *Registry) Supports(mimeType, extension string) bool {
	for _, e := range r.extractors {
		if e.Supports(mimeType, extension) {
			return true
		}
	}
	return false
}

func (r *Registry) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	for _, e := range r.extractors {
		if e.Supports(doc.MimeType, doc.Extension()) {
			return e.Extract(ctx, doc)
		}
	}
	return "", fmt.Errorf("no extractor for %s (%s)", doc.OriginalName, doc.MimeType)
}
