package scheduler

import "errors"

var (
	// ErrCycleLocked is returned by RunOnce when another process holds the cycle lock
	ErrCycleLocked = errors.New("reminder cycle is locked by another instance")

	// ErrCyclePanic wraps a panic recovered from a cycle
	ErrCyclePanic = errors.New("reminder cycle panicked")
)
