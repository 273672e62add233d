package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeSyncError  = "SYNC_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeStore      = "STORE_ERROR"
	CodeSource     = "SOURCE_ERROR"
	CodeContract   = "CONTRACT_ERROR"
)

type SyncError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *SyncError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SyncError) Unwrap() error {
	return e.Cause
}

func NewSyncError(message, code string, context map[string]any) *SyncError {
	return &SyncError{
		Message: message,
		Code:    code,
		Context: context,
	}
}

func (e *SyncError) WithCause(cause error) *SyncError {
	e.Cause = cause
	return e
}

type ValidationError struct {
	*SyncError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		SyncError: &SyncError{
			Message: message,
			Code:    CodeValidation,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// StoreError wraps failures of the persistence collaborators (files, PostgreSQL, object storage, Redis).
type StoreError struct {
	*SyncError
	Store     string
	Operation string
}

func NewStoreError(message, store, operation string, cause error) *StoreError {
	return &StoreError{
		SyncError: &SyncError{
			Message: message,
			Code:    CodeStore,
			Context: map[string]any{
				"store":     store,
				"operation": operation,
			},
			Cause: cause,
		},
		Store:     store,
		Operation: operation,
	}
}

type SourceError struct {
	*SyncError
	Source string
	URL    string
}

func NewSourceError(message, source, url string, cause error) *SourceError {
	return &SourceError{
		SyncError: &SyncError{
			Message: message,
			Code:    CodeSource,
			Context: map[string]any{
				"source": source,
				"url":    url,
			},
			Cause: cause,
		},
		Source: source,
		URL:    url,
	}
}

// ContractError signals misuse of the reconciliation API (invalid internal state).
// Data-quality problems are never reported through it.
type ContractError struct {
	*SyncError
	Component string
}

func NewContractError(component, message string) *ContractError {
	return &ContractError{
		SyncError: &SyncError{
			Message: fmt.Sprintf("%s: %s", component, message),
			Code:    CodeContract,
			Context: map[string]any{
				"component": component,
			},
		},
		Component: component,
	}
}

// IsContractError reports whether err (or anything it wraps) is a ContractError.
func IsContractError(err error) bool {
	var ce *ContractError
	return stderrors.As(err, &ce)
}
