package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
)

// MaxUploadBytes caps incoming files at 100MB.
const MaxUploadBytes = 100 << 20

type UploadDocumentUseCase struct {
	repo      ports.DocumentRepository
	blobs     ports.BlobStore
	queue     ports.AnalysisQueue
	search    ports.SearchIndex
	namespace string
}

func NewUploadDocumentUseCase(
	repo ports.DocumentRepository,
	blobs ports.BlobStore,
	queue ports.AnalysisQueue,
	search ports.SearchIndex,
	namespace string,
) *UploadDocumentUseCase {
	if namespace == "" {
		namespace = "documents"
	}
	return &UploadDocumentUseCase{
		repo:      repo,
		blobs:     blobs,
		queue:     queue,
		search:    search,
		namespace: namespace,
	}
}

// Upload stores the file, creates the document row in its initial state
// (private, unanalyzed) and enqueues the background analysis.
func (uc *UploadDocumentUseCase) Upload(ctx context.Context, actorID string, in ports.UploadInput) (*domain.Document, error) {
	if actorID == "" {
		return nil, WrapError(domain.ErrUnauthorized, "upload document", errMissingActor)
	}
	if strings.TrimSpace(in.Filename) == "" {
		return nil, WrapError(domain.ErrInvalidInput, "upload document", errMissingFilename)
	}
	if in.SizeBytes > MaxUploadBytes {
		return nil, WrapError(domain.ErrInvalidInput, "upload document",
			fmt.Errorf("file exceeds %d bytes", int64(MaxUploadBytes)))
	}
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storagePath := uc.storagePath(actorID, id, in.Filename)

	if err := uc.blobs.Save(ctx, storagePath, in.Body); err != nil {
		return nil, fmt.Errorf("save to blob store: %w", err)
	}

	doc := domain.NewDocument(id, actorID, in.Filename, in.MimeType, in.SizeBytes, "local", storagePath)
	doc.Title = strings.TrimSpace(in.Title)
	doc.Description = strings.TrimSpace(in.Description)

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document row: %w", err)
	}

	if err := uc.search.Index(ctx, doc.SearchProjection()); err != nil {
		slog.Warn("index_upload_failed", "document_id", doc.ID, "error", err)
	}

	task := ports.AnalysisTask{DocumentID: doc.ID, EnqueuedAt: time.Now().UTC()}
	if err := uc.queue.PublishAnalysisRequested(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue analysis: %w", err)
	}

	return doc, nil
}

// storagePath partitions blobs by owner and upload date:
// {namespace}/{ownerID}/{yyyy}/{mm}/{dd}/{uuid}.{ext}.
func (uc *UploadDocumentUseCase) storagePath(ownerID, id, filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	date := time.Now().UTC().Format("2006/01/02")
	return fmt.Sprintf("%s/%s/%s/%s.%s", uc.namespace, ownerID, date, id, strings.ToLower(ext))
}
