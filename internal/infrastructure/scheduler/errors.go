package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrAlreadyRunning is returned by RunNow while the task is in progress
	ErrAlreadyRunning = errors.New("task is already running")
)
