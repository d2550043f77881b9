package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrGrantNotFound       = errors.New("share grant not found")
	ErrAlreadyGranted      = errors.New("document already shared with user")
	ErrSelfShare           = errors.New("cannot share a document with yourself")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrSensitiveVisibility = errors.New("sensitive documents cannot be made public")
	ErrBlobNotFound        = errors.New("stored file not found")
	ErrTemporary           = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
