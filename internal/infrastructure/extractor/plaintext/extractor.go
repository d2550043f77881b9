package plaintext

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
)

var textMimeTypes = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/x-yaml":     true,
	"application/javascript": true,
	"application/sql":        true,
}

var textExtensions = map[string]bool{
	"txt": true, "md": true, "json": true, "xml": true, "csv": true,
	"html": true, "css": true, "js": true, "ts": true, "php": true,
	"py": true, "rb": true, "go": true, "yml": true, "yaml": true,
	"sql": true, "log": true,
}

type Extractor struct {
	blobs ports.BlobStore
}

func New(blobs ports.BlobStore) *Extractor {
	return &Extractor{blobs: blobs}
}

func (e *Extractor) Supports(mimeType, extension string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	if textMimeTypes[mimeType] {
		return true
	}
	return textExtensions[strings.ToLower(extension)]
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.blobs.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	if !utf8.Valid(raw) {
		return "", fmt.Errorf("not valid utf-8 text: %s", doc.OriginalName)
	}
	return strings.TrimSpace(string(raw)), nil
}
