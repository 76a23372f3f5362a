package client

import "errors"

var (
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrLimitReached          = errors.New("limit reached")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
