package service

import "errors"

var (
	ErrSessionExpired  = errors.New("session expired or unknown")
	ErrInvalidKeyName  = errors.New("key name must be 1-64 characters of [A-Za-z0-9_.-]")
	ErrNameTooLong     = errors.New("name too long")
	ErrPersistFailed   = errors.New("failed to persist value")
	ErrSessionNotReady = errors.New("session store unavailable")
)
