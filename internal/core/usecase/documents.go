package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
)

// DownloadStream carries a blob stream plus the response metadata the
// transport layer needs.
type DownloadStream struct {
	Content   io.ReadCloser
	Filename  string
	MimeType  string
	SizeBytes int64
}

// MetadataUpdate is a partial edit; nil fields are left untouched.
type MetadataUpdate struct {
	Title       *string
	Description *string
	Tags        *[]string
}

// DocumentsUseCase covers the owner-facing document operations: read,
// list, metadata edit, visibility, delete, download and re-analysis. Every
// mutation is gated by the authorization policy before it touches state.
type DocumentsUseCase struct {
	repo   ports.DocumentRepository
	shares ports.ShareRepository
	blobs  ports.BlobStore
	search ports.SearchIndex
	queue  ports.AnalysisQueue
}

func NewDocumentsUseCase(
	repo ports.DocumentRepository,
	shares ports.ShareRepository,
	blobs ports.BlobStore,
	search ports.SearchIndex,
	queue ports.AnalysisQueue,
) *DocumentsUseCase {
	return &DocumentsUseCase{
		repo:   repo,
		shares: shares,
		blobs:  blobs,
		search: search,
		queue:  queue,
	}
}

func (uc *DocumentsUseCase) Get(ctx context.Context, actorID, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	grant, err := uc.shares.Get(ctx, documentID, actorID)
	if err != nil && !domain.IsKind(err, domain.ErrGrantNotFound) {
		return nil, fmt.Errorf("lookup share grant: %w", err)
	}
	if !domain.CanView(actorID, doc, grant != nil) {
		return nil, WrapError(domain.ErrForbidden, "view document", errNotPermitted)
	}
	return doc, nil
}

// List returns the actor's own documents, optionally filtered by
// visibility or a full-text search term.
func (uc *DocumentsUseCase) List(ctx context.Context, actorID string, visibility domain.Visibility, query string) ([]domain.Document, error) {
	if strings.TrimSpace(query) != "" {
		ids, err := uc.search.Search(ctx, actorID, query)
		if err != nil {
			return nil, fmt.Errorf("search documents: %w", err)
		}
		docs, err := uc.repo.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		if visibility == "" {
			return docs, nil
		}
		filtered := docs[:0]
		for _, doc := range docs {
			if doc.Visibility == visibility {
				filtered = append(filtered, doc)
			}
		}
		return filtered, nil
	}
	return uc.repo.ListByOwner(ctx, actorID, visibility)
}

func (uc *DocumentsUseCase) UpdateMetadata(ctx context.Context, actorID, documentID string, in MetadataUpdate) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !domain.CanUpdate(actorID, doc) {
		return nil, WrapError(domain.ErrForbidden, "update document", errNotPermitted)
	}

	if in.Title != nil {
		if err := validateTitle(*in.Title); err != nil {
			return nil, err
		}
		doc.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		if err := validateDescription(*in.Description); err != nil {
			return nil, err
		}
		doc.Description = strings.TrimSpace(*in.Description)
	}
	if in.Tags != nil {
		if err := validateTags(*in.Tags); err != nil {
			return nil, err
		}
		doc.Tags = *in.Tags
	}
	doc.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	if err := uc.search.Index(ctx, doc.SearchProjection()); err != nil {
		slog.Warn("index_update_failed", "document_id", doc.ID, "error", err)
	}
	return doc, nil
}

// Delete removes the backing blob first; the row is only dropped once the
// blob is gone (an already-absent blob counts as gone). Share grants and
// the search row go with it.
func (uc *DocumentsUseCase) Delete(ctx context.Context, actorID, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if !domain.CanDelete(actorID, doc) {
		return WrapError(domain.ErrForbidden, "delete document", errNotPermitted)
	}

	if err := uc.blobs.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if err := uc.repo.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document row: %w", err)
	}
	if err := uc.search.Remove(ctx, doc.ID); err != nil {
		slog.Warn("index_remove_failed", "document_id", doc.ID, "error", err)
	}
	return nil
}

func (uc *DocumentsUseCase) Download(ctx context.Context, actorID, documentID string) (*DownloadStream, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	grant, err := uc.shares.Get(ctx, documentID, actorID)
	if err != nil && !domain.IsKind(err, domain.ErrGrantNotFound) {
		return nil, fmt.Errorf("lookup share grant: %w", err)
	}
	if !domain.CanDownload(actorID, doc, grant) {
		return nil, WrapError(domain.ErrForbidden, "download document", errNotPermitted)
	}
	return uc.openStream(ctx, doc)
}

// Reanalyze re-enters the pending state and enqueues a forced analysis so
// AI-provided fields are refreshed even where the user already wrote some.
func (uc *DocumentsUseCase) Reanalyze(ctx context.Context, actorID, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if !domain.CanUpdate(actorID, doc) {
		return WrapError(domain.ErrForbidden, "reanalyze document", errNotPermitted)
	}

	doc.RequestReanalysis()
	if err := uc.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("reset analysis state: %w", err)
	}

	task := ports.AnalysisTask{DocumentID: doc.ID, Force: true, EnqueuedAt: time.Now().UTC()}
	if err := uc.queue.PublishAnalysisRequested(ctx, task); err != nil {
		return fmt.Errorf("enqueue analysis: %w", err)
	}
	return nil
}

func (uc *DocumentsUseCase) openStream(ctx context.Context, doc *domain.Document) (*DownloadStream, error) {
	exists, err := uc.blobs.Exists(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("check blob: %w", err)
	}
	if !exists {
		return nil, WrapError(domain.ErrBlobNotFound, "open document stream", errBlobMissing)
	}
	reader, err := uc.blobs.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return &DownloadStream{
		Content:   reader,
		Filename:  doc.OriginalName,
		MimeType:  doc.MimeType,
		SizeBytes: doc.SizeBytes,
	}, nil
}
