package apperrors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyQuestion = errors.New("question must not be empty")
)
