package common

import "fmt"

// Error codes returned by pipeline stages
const (
	CodeMissingData  = "MISSING_DATA"
	CodeInvalidInput = "INVALID_INPUT"
	CodeOutputFailed = "OUTPUT_FAILED"
)

// AppError is the error type returned across package boundaries so callers
// can tell data problems apart from environment problems
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewMissingDataError reports a source file or required column that is absent
func NewMissingDataError(message string, err error) *AppError {
	return &AppError{Code: CodeMissingData, Message: message, Err: err}
}

// NewInvalidInputError reports source data that is present but unparseable
func NewInvalidInputError(message string, err error) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message, Err: err}
}

// NewOutputError reports an artifact that could not be written
func NewOutputError(message string, err error) *AppError {
	return &AppError{Code: CodeOutputFailed, Message: message, Err: err}
}
