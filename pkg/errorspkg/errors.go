// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrUnauthorized indicates that the request carries no valid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)
