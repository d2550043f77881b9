package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

// Publish makes a document reachable at its public token. The policy check
// and the entity's own refusal both guard the sensitive lock; the whole
// transition lands in one row update.
func (uc *DocumentsUseCase) Publish(ctx context.Context, actorID, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !domain.CanChangeVisibility(actorID, doc) {
		if doc.IsSensitive() && actorID == doc.OwnerID {
			return nil, WrapError(domain.ErrSensitiveVisibility, "publish document", errNotPermitted)
		}
		return nil, WrapError(domain.ErrForbidden, "publish document", errNotPermitted)
	}

	if err := doc.Publish(); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist publish: %w", err)
	}

	slog.Info("document_published", "document_id", doc.ID, "owner_id", doc.OwnerID)
	return doc, nil
}

func (uc *DocumentsUseCase) Unpublish(ctx context.Context, actorID, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !domain.CanChangeVisibility(actorID, doc) {
		return nil, WrapError(domain.ErrForbidden, "unpublish document", errNotPermitted)
	}

	doc.Unpublish()
	if err := uc.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist unpublish: %w", err)
	}

	slog.Info("document_unpublished", "document_id", doc.ID, "owner_id", doc.OwnerID)
	return doc, nil
}
