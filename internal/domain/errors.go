package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common error conditions.
var (
	// ErrUnsupportedVenue indicates that an adapter does not cover the
	// requested venue/year combination.
	ErrUnsupportedVenue = errors.New("unsupported venue")

	// ErrParse indicates that a source responded but its structure did
	// not match the expected shape.
	ErrParse = errors.New("parse failure")

	// ErrNetwork indicates a transport failure or server error.
	ErrNetwork = errors.New("network failure")

	// ErrRateLimited indicates that a source rejected the request due to
	// rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrBudgetExceeded indicates that an adapter's per-run call budget
	// is exhausted.
	ErrBudgetExceeded = errors.New("request budget exceeded")

	// ErrAuth indicates missing or rejected credentials.
	ErrAuth = errors.New("authentication failure")

	// ErrNotFound indicates that a requested paper does not exist at the
	// source.
	ErrNotFound = errors.New("not found")
)

// UnsupportedVenueError provides details about an unsupported venue/year.
type UnsupportedVenueError struct {
	Source string
	Venue  string
	Year   int
	Reason string
}

// Error implements the error interface.
func (e *UnsupportedVenueError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s does not support %s %d: %s", e.Source, e.Venue, e.Year, e.Reason)
	}
	return fmt.Sprintf("%s does not support %s %d", e.Source, e.Venue, e.Year)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *UnsupportedVenueError) Unwrap() error {
	return ErrUnsupportedVenue
}

// ParseError provides details about a malformed source response.
type ParseError struct {
	Source string
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s response parse failure: %s: %v", e.Source, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s response parse failure: %s", e.Source, e.Detail)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// NetworkError provides details about a transport or server failure.
type NetworkError struct {
	Source     string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s network failure (status %d): %v", e.Source, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s network failure: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NetworkError) Unwrap() error {
	return ErrNetwork
}

// RateLimitError provides details about a rate limit rejection.
type RateLimitError struct {
	Source     string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by %s: retry after %s", e.Source, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited by %s", e.Source)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// BudgetExceededError provides details about an exhausted call budget.
type BudgetExceededError struct {
	Source string
	Budget int
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("%s request budget of %d calls exhausted", e.Source, e.Budget)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *BudgetExceededError) Unwrap() error {
	return ErrBudgetExceeded
}

// AuthError provides details about missing or rejected credentials.
type AuthError struct {
	Source     string
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s authentication failure (status %d): %s", e.Source, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s authentication failure: %s", e.Source, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *AuthError) Unwrap() error {
	return ErrAuth
}

// NotFoundError provides details about a paper missing at the source.
type NotFoundError struct {
	Source string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: paper not found: %s", e.Source, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewUnsupportedVenueError creates a new UnsupportedVenueError.
func NewUnsupportedVenueError(source, venue string, year int, reason string) *UnsupportedVenueError {
	return &UnsupportedVenueError{
		Source: source,
		Venue:  venue,
		Year:   year,
		Reason: reason,
	}
}

// NewParseError creates a new ParseError.
func NewParseError(source, detail string, cause error) *ParseError {
	return &ParseError{
		Source: source,
		Detail: detail,
		Cause:  cause,
	}
}

// NewNetworkError creates a new NetworkError.
func NewNetworkError(source string, statusCode int, cause error) *NetworkError {
	return &NetworkError{
		Source:     source,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// NewRateLimitError creates a new RateLimitError.
func NewRateLimitError(source string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{
		Source:     source,
		RetryAfter: retryAfter,
	}
}

// NewBudgetExceededError creates a new BudgetExceededError.
func NewBudgetExceededError(source string, budget int) *BudgetExceededError {
	return &BudgetExceededError{
		Source: source,
		Budget: budget,
	}
}

// NewAuthError creates a new AuthError.
func NewAuthError(source string, statusCode int, message string) *AuthError {
	return &AuthError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(source, id string) *NotFoundError {
	return &NotFoundError{
		Source: source,
		ID:     id,
	}
}
