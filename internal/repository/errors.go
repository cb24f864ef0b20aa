package repository

import "errors"

var (
	ErrProcessingLogNotFound = errors.New("processing log entry not found")
	ErrInvalidInput          = errors.New("invalid input parameters")
)
