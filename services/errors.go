package services

import "errors"

var (
	ErrJobNotFound           = errors.New("job not found")
	ErrTimeEntryNotFound     = errors.New("time entry not found")
	ErrTimerAlreadyActive    = errors.New("a timer is already running for this job")
	ErrTimerAlreadyStopped   = errors.New("timer already stopped")
	ErrInventoryItemNotFound = errors.New("inventory item not found")
	ErrNegativeAmount        = errors.New("amounts must not be negative")
	ErrNoSession             = errors.New("job is not open in this session")
	ErrPermissionDenied      = errors.New("location permission denied")
	ErrPositionUnavailable   = errors.New("location unavailable")
	ErrInvalidInventorySheet = errors.New("invalid inventory sheet")
)
