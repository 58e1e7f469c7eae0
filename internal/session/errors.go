package session

import "errors"

var (
	// ErrUnauthorized indicates the backend rejected the credential.
	ErrUnauthorized = errors.New("session: credential rejected")
)
