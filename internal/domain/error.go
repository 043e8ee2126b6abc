package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrAlreadyExists     = errors.New("entity already exists")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNoChannels        = errors.New("no channels registered")
	ErrSessionActive     = errors.New("a distribution session is already active")
	ErrNoSession         = errors.New("no active distribution session")
	ErrNotReady          = errors.New("session is not ready to send")
	ErrSendingInProgress = errors.New("dispatch already in progress")
	ErrSessionExpired    = errors.New("session expired")

	// Infra-level errors surfaced by the storage layer
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
