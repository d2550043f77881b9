package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
)

// PublicAccessUseCase serves the anonymous /p/{token} surface. An unknown
// token and a valid-but-private document are indistinguishable to callers:
// both resolve to the same not-found error.
type PublicAccessUseCase struct {
	repo    ports.DocumentRepository
	blobs   ports.BlobStore
	qr      ports.QRRenderer
	baseURL string
}

func NewPublicAccessUseCase(
	repo ports.DocumentRepository,
	blobs ports.BlobStore,
	qr ports.QRRenderer,
	baseURL string,
) *PublicAccessUseCase {
	return &PublicAccessUseCase{
		repo:    repo,
		blobs:   blobs,
		qr:      qr,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Stream returns the raw bytes of a public document.
func (uc *PublicAccessUseCase) Stream(ctx context.Context, token string) (*DownloadStream, error) {
	doc, err := uc.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	reader, err := uc.blobs.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, WrapError(domain.ErrBlobNotFound, "stream public document", errBlobMissing)
	}
	return &DownloadStream{
		Content:   reader,
		Filename:  doc.OriginalName,
		MimeType:  doc.MimeType,
		SizeBytes: doc.SizeBytes,
	}, nil
}

// QRCode renders a QR image of the canonical public URL.
func (uc *PublicAccessUseCase) QRCode(ctx context.Context, token string, size int) ([]byte, error) {
	doc, err := uc.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	url := doc.PublicURL(uc.baseURL)
	if url == "" {
		return nil, domain.ErrDocumentNotFound
	}
	png, err := uc.qr.RenderPNG(url, size)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

// PublicURL exposes the canonical URL for owner-facing views.
func (uc *PublicAccessUseCase) PublicURL(doc *domain.Document) string {
	return doc.PublicURL(uc.baseURL)
}

func (uc *PublicAccessUseCase) resolve(ctx context.Context, token string) (*domain.Document, error) {
	if token == "" {
		return nil, domain.ErrDocumentNotFound
	}
	doc, err := uc.repo.GetByPublicToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !doc.IsPublic() {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}
