// Package apierror defines the error types returned by the Digipost client.
//
// Three kinds of failure are distinguished:
//
//   - ConfigurationError: setup problems such as a certificate without a
//     private key. These are raised before any network I/O.
//   - RemoteError: the server answered with a non-success status. When the
//     response carried an error document, Code, Type and Message hold its
//     fields; otherwise only StatusCode is set.
//   - ParseError: a success response whose body could not be decoded into
//     the expected type. Raw holds the body for diagnostics.
//
// Transport failures (timeouts, connection errors, cancellation) are not
// wrapped in any of these types and surface as returned by net/http.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// ConfigurationError reports client misconfiguration.
type ConfigurationError struct {
	Message string
	Err     error
}

// NewConfigurationError creates a ConfigurationError with a formatted message.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Err)
	}
	return "configuration error: " + e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// RemoteError is a non-success response from the API.
type RemoteError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string

	// Document is set when the fields were decoded from an <error> body
	Document bool
}

func (e *RemoteError) Error() string {
	status := fmt.Sprintf("%d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Code == "" && e.Message == "" {
		return status
	}
	if e.Code == "" && e.Type == "" {
		return status + ": " + e.Message
	}
	if e.Type != "" {
		return fmt.Sprintf("%s (%s %s: %s)", status, e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s (%s: %s)", status, e.Code, e.Message)
}

// Structured reports whether the error was decoded from an error document.
func (e *RemoteError) Structured() bool {
	return e.Document || e.Code != "" || e.Type != ""
}

// ParseError reports a response body that could not be decoded.
type ParseError struct {
	Raw []byte
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsConfiguration reports whether err is or wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsRemote reports whether err is or wraps a RemoteError and returns it.
func IsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsParse reports whether err is or wraps a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
