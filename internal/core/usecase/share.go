package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkozhevin/docvault/internal/core/domain"
	"github.com/mkozhevin/docvault/internal/core/ports"
)

// ShareDocumentsUseCase owns the sharing ledger: directed grants from a
// document to recipient accounts, one grant per (document, recipient).
type ShareDocumentsUseCase struct {
	repo   ports.DocumentRepository
	shares ports.ShareRepository
	users  ports.UserDirectory
}

func NewShareDocumentsUseCase(
	repo ports.DocumentRepository,
	shares ports.ShareRepository,
	users ports.UserDirectory,
) *ShareDocumentsUseCase {
	return &ShareDocumentsUseCase{
		repo:   repo,
		shares: shares,
		users:  users,
	}
}

// Grant shares the document with the account behind the given email.
// Fails with AlreadyGranted when a grant exists (UpdateGrant is the path
// for that), SelfShare when the recipient is the owner, RecipientNotFound
// when the email resolves to no account.
func (uc *ShareDocumentsUseCase) Grant(ctx context.Context, actorID, documentID, recipientEmail string, canDownload bool) (*domain.ShareGrant, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !domain.CanShare(actorID, doc) {
		return nil, WrapError(domain.ErrForbidden, "share document", errNotPermitted)
	}

	recipient, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(recipientEmail)))
	if err != nil {
		return nil, err
	}
	if recipient.ID == doc.OwnerID {
		return nil, WrapError(domain.ErrSelfShare, "share document", errNotPermitted)
	}

	existing, err := uc.shares.Get(ctx, documentID, recipient.ID)
	if err != nil && !domain.IsKind(err, domain.ErrGrantNotFound) {
		return nil, fmt.Errorf("lookup share grant: %w", err)
	}
	if existing != nil {
		return nil, WrapError(domain.ErrAlreadyGranted, "share document",
			fmt.Errorf("document %s already shared with user %s", documentID, recipient.ID))
	}

	now := time.Now().UTC()
	grant := &domain.ShareGrant{
		DocumentID:  documentID,
		UserID:      recipient.ID,
		SharedBy:    actorID,
		CanDownload: canDownload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.shares.Create(ctx, grant); err != nil {
		return nil, fmt.Errorf("create share grant: %w", err)
	}
	return grant, nil
}

// UpdateGrant toggles the download permission on an existing grant.
func (uc *ShareDocumentsUseCase) UpdateGrant(ctx context.Context, actorID, documentID, recipientID string, canDownload bool) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if !domain.CanShare(actorID, doc) {
		return WrapError(domain.ErrForbidden, "update share", errNotPermitted)
	}

	grant, err := uc.shares.Get(ctx, documentID, recipientID)
	if err != nil {
		return err
	}
	grant.CanDownload = canDownload
	grant.UpdatedAt = time.Now().UTC()
	if err := uc.shares.Update(ctx, grant); err != nil {
		return fmt.Errorf("update share grant: %w", err)
	}
	return nil
}

// Revoke removes a grant. Revoking a grant that does not exist is a no-op.
func (uc *ShareDocumentsUseCase) Revoke(ctx context.Context, actorID, documentID, recipientID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if !domain.CanShare(actorID, doc) {
		return WrapError(domain.ErrForbidden, "revoke share", errNotPermitted)
	}

	if err := uc.shares.Delete(ctx, documentID, recipientID); err != nil {
		if domain.IsKind(err, domain.ErrGrantNotFound) {
			return nil
		}
		return fmt.Errorf("delete share grant: %w", err)
	}
	return nil
}

// Recipients lists who a document is shared with; owner only.
func (uc *ShareDocumentsUseCase) Recipients(ctx context.Context, actorID, documentID string) ([]domain.Recipient, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !domain.CanShare(actorID, doc) {
		return nil, WrapError(domain.ErrForbidden, "list recipients", errNotPermitted)
	}
	return uc.shares.ListRecipients(ctx, documentID)
}

// SharedWith lists documents shared with the actor, paired with the owning
// user's public identity.
func (uc *ShareDocumentsUseCase) SharedWith(ctx context.Context, actorID string) ([]domain.SharedDocument, error) {
	return uc.shares.ListSharedWith(ctx, actorID)
}

// IsSharedWith reports whether any grant exists for the pair, regardless of
// the download flag.
func (uc *ShareDocumentsUseCase) IsSharedWith(ctx context.Context, documentID, userID string) (bool, error) {
	grant, err := uc.shares.Get(ctx, documentID, userID)
	if err != nil {
		if domain.IsKind(err, domain.ErrGrantNotFound) {
			return false, nil
		}
		return false, err
	}
	return grant != nil, nil
}

// CanDownload applies the download policy for an arbitrary user.
func (uc *ShareDocumentsUseCase) CanDownload(ctx context.Context, documentID, userID string) (bool, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return false, err
	}
	grant, err := uc.shares.Get(ctx, documentID, userID)
	if err != nil && !domain.IsKind(err, domain.ErrGrantNotFound) {
		return false, err
	}
	return domain.CanDownload(userID, doc, grant), nil
}
