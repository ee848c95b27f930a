package service

import (
	"errors"
	"fmt"

	"dtalks/internal/microservices/http-api/repository"
)

// Callers classify failures with errors.Is against these.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrPostNotFound         = fmt.Errorf("post %w", ErrNotFound)
	ErrCommentNotFound      = fmt.Errorf("comment %w", ErrNotFound)
	ErrParentNotFound       = fmt.Errorf("parent comment %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)

	ErrBlankContent    = fmt.Errorf("%w: content must not be blank", ErrInvalid)
	ErrContentTooLong  = fmt.Errorf("%w: content exceeds %d characters", ErrInvalid, MaxCommentLength)
	ErrParentOtherPost = fmt.Errorf("%w: parent comment belongs to another post", ErrInvalid)
)

// notFound maps a repository miss onto the given service error; other errors
// pass through.
func notFound(err error, as error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return as
	}
	return err
}
