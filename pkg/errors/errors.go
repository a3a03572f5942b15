package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transport-related errors (fetch or oracle unreachable, timeout)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents markup or response parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting by an upstream
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeOracle represents permanent price-oracle failures (malformed response, auth)
	ErrorTypeOracle ErrorType = "oracle"
	// ErrorTypeNotify represents notification sink failures
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypePersistence represents history/stats storage errors
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeValidation represents filtered-out input (bad price, empty title, duplicate)
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScoutError represents a pipeline-stage error carrying its retry classification
type ScoutError struct {
	Type    ErrorType
	Stage   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *ScoutError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and worth retrying
func (e *ScoutError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork:
		return true
	case ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// IsRetryable classifies an arbitrary error. Unknown errors are treated as
// permanent so a misclassified failure never loops.
func IsRetryable(err error) bool {
	var se *ScoutError
	if errors.As(err, &se) {
		return se.IsRetryable()
	}
	return false
}

// New creates a new ScoutError
func New(errType ErrorType, stage, message string, err error) *ScoutError {
	return &ScoutError{
		Type:    errType,
		Stage:   stage,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new network error
func NewNetwork(stage, message string, err error) *ScoutError {
	return New(ErrorTypeNetwork, stage, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(stage, message string, err error) *ScoutError {
	return New(ErrorTypeParsing, stage, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(stage string, retryAfter string) *ScoutError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, stage, message, nil)
}

// NewOracle creates a new permanent oracle error
func NewOracle(stage, message string, err error) *ScoutError {
	return New(ErrorTypeOracle, stage, message, err)
}

// NewNotify creates a new notification error
func NewNotify(stage, message string, err error) *ScoutError {
	return New(ErrorTypeNotify, stage, message, err)
}

// NewPersistence creates a new persistence error
func NewPersistence(stage, message string, err error) *ScoutError {
	return New(ErrorTypePersistence, stage, message, err)
}

// NewValidation creates a new validation error
func NewValidation(stage, message string) *ScoutError {
	return New(ErrorTypeValidation, stage, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScoutError {
	return New(ErrorTypeConfiguration, "", message, err)
}
