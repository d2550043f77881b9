package httpadapter

import (
	"net/http"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrSensitiveVisibility):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrForbidden):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrDocumentNotFound),
		domain.IsKind(err, domain.ErrBlobNotFound),
		domain.IsKind(err, domain.ErrGrantNotFound),
		domain.IsKind(err, domain.ErrRecipientNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrAlreadyGranted):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrSelfShare):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
