package models

import "errors"

// Errors shared between the lifecycle service and record store implementations
var (
	ErrNotFound      = errors.New("certificate not found")
	ErrSubjectExists = errors.New("subject already exists")
)
