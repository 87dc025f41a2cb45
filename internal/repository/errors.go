package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task is missing or owned by someone else
	ErrTaskNotFound = errors.New("task not found")

	// ErrBlockNotFound is returned when a time block is missing or owned by someone else
	ErrBlockNotFound = errors.New("time block not found")

	// ErrRolloverClaimed is returned when another worker already inserted the
	// log row for this (timezone, date)
	ErrRolloverClaimed = errors.New("rollover run already claimed")

	// ErrRolloverLogNotFound is returned when a rollover log row is missing
	ErrRolloverLogNotFound = errors.New("rollover log not found")
)
