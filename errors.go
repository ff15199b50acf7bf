package pubcms

import "errors"

var (
	// ErrNotFound is returned when an article or user does not exist, or when
	// a public lookup hits an article that is not visible.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a username is already taken.
	ErrConflict = errors.New("already exists")

	// ErrUnauthenticated marks an admin action attempted without a session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrRejectedUpload is returned for uploads that fail validation. Callers
	// skip the file instead of failing the request.
	ErrRejectedUpload = errors.New("upload rejected")

	// ErrInvalidInput is returned for empty usernames or passwords.
	ErrInvalidInput = errors.New("invalid input")
)
