// Package apperr defines the domain error kinds shared by services,
// stores and HTTP handlers. Handlers map them 1:1 to status codes with
// errors.Is; everything else wraps them with fmt.Errorf("%w", ...) to
// attach context.
package apperr

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")

	ErrDuplicateMessage      = errors.New("message already exists")
	ErrDuplicateConversation = errors.New("conversation already exists")
	ErrDuplicateProfile      = errors.New("profile already exists")

	ErrMessageNotFound      = errors.New("message not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrImageNotFound        = errors.New("image not found")

	// ErrStorageUnavailable wraps transport-level failures from mongo,
	// s3 or redis. Distinct from not-found and validation kinds.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
