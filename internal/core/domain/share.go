package domain

import "time"

// ShareGrant is a directed permission edge from a document to a recipient.
// At most one grant exists per (document, recipient) pair; re-sharing
// updates the existing grant instead of duplicating it.
type ShareGrant struct {
	DocumentID  string    `json:"document_id"`
	UserID      string    `json:"user_id"`
	SharedBy    string    `json:"shared_by"`
	CanDownload bool      `json:"can_download"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserRef is the public identity attached to listings (owner of a shared
// document, recipient of a grant).
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SharedDocument pairs a document with its owner's public identity for the
// shared-with-me listing.
type SharedDocument struct {
	Document Document `json:"document"`
	Owner    UserRef  `json:"owner"`
}

// Recipient pairs a grant with the recipient's identity for the owner's
// share management view.
type Recipient struct {
	User        UserRef `json:"user"`
	Email       string  `json:"email"`
	CanDownload bool    `json:"can_download"`
}
