package tasks

import "errors"

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrStaleVersion      = errors.New("task version is stale")
	ErrInvalidTransition = errors.New("invalid task status transition")
)
