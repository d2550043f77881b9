package usecase

import (
	"errors"
	"fmt"

	"github.com/mkozhevin/docvault/internal/core/domain"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 2000
)

var (
	errMissingActor    = errors.New("actor id is required")
	errMissingFilename = errors.New("filename is required")
	errNotPermitted    = errors.New("actor is not permitted")
	errBlobMissing     = errors.New("blob missing from storage")
)

// WrapError re-exported so handlers depending on this package need only one
// error vocabulary.
var WrapError = domain.WrapError

func validateTitle(title string) error {
	if len(title) > maxTitleLength {
		return WrapError(domain.ErrInvalidInput, "validate title",
			fmt.Errorf("title exceeds %d characters", maxTitleLength))
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > maxDescriptionLength {
		return WrapError(domain.ErrInvalidInput, "validate description",
			fmt.Errorf("description exceeds %d characters", maxDescriptionLength))
	}
	return nil
}

func validateTags(tags []string) error {
	if len(tags) > domain.MaxUserTags {
		return WrapError(domain.ErrInvalidInput, "validate tags",
			fmt.Errorf("at most %d tags allowed", domain.MaxUserTags))
	}
	for _, tag := range tags {
		if tag == "" {
			return WrapError(domain.ErrInvalidInput, "validate tags", errors.New("empty tag"))
		}
		if len(tag) > domain.MaxTagLength {
			return WrapError(domain.ErrInvalidInput, "validate tags",
				fmt.Errorf("tag exceeds %d characters", domain.MaxTagLength))
		}
	}
	return nil
}
