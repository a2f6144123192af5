// Package errors defines the error taxonomy shared by the scanner registry,
// the configuration loader and the notification dispatcher.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFormatUnrecognized is matched by every *FormatError via errors.Is.
var ErrFormatUnrecognized = errors.New("report format not recognized")

// FormatError is returned when no scanner adapter accepts a report, or when
// the caller pins a format that is not registered.
type FormatError struct {
	// Format is the pinned format name; empty when auto-detection failed.
	Format    string
	Available []string
}

func (e *FormatError) Error() string {
	available := strings.Join(e.Available, ", ")
	if e.Format != "" {
		return fmt.Sprintf("unsupported scanner format %q (available: %s)", e.Format, available)
	}
	return fmt.Sprintf("%s: input is not a supported scanner report (available: %s)", ErrFormatUnrecognized, available)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormatUnrecognized
}

// NewFormatError creates a new FormatError.
func NewFormatError(format string, available []string) *FormatError {
	return &FormatError{Format: format, Available: available}
}

// ValidationError identifies a malformed suppression rule or channel entry.
type ValidationError struct {
	// Section is "rule" or "notifier".
	Section string
	// Position is the entry's position as reported to the user.
	Position int
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s %d: field %q %s", e.Section, e.Position, e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s %d: %s", e.Section, e.Position, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(section string, position int, field, message string) *ValidationError {
	return &ValidationError{Section: section, Position: position, Field: field, Message: message}
}

// UnknownChannelError is returned when a channel config names a type no
// sender is registered for.
type UnknownChannelError struct {
	Type       string
	Registered []string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("notifier type %q is not registered (available: %s)", e.Type, strings.Join(e.Registered, ", "))
}

// ChannelSendError wraps a transport failure from one channel sender.
type ChannelSendError struct {
	Channel string
	// Index is the position of the channel config among the enabled ones.
	Index int
	Err   error
}

func (e *ChannelSendError) Error() string {
	return fmt.Sprintf("%s notification failed: %v", e.Channel, e.Err)
}

func (e *ChannelSendError) Unwrap() error {
	return e.Err
}

// DispatchError aggregates every channel failure of one dispatch call.
// Failures are kept in the order they were observed.
type DispatchError struct {
	Failures []error
}

func (e *DispatchError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return fmt.Sprintf("notification dispatch failed for %d channel(s): %s", len(e.Failures), strings.Join(msgs, "; "))
}

func (e *DispatchError) Unwrap() []error {
	return e.Failures
}

// First returns the first failure observed.
func (e *DispatchError) First() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[0]
}

// Channels lists the channel types that failed.
func (e *DispatchError) Channels() []string {
	var out []string
	for _, f := range e.Failures {
		var sendErr *ChannelSendError
		var unknown *UnknownChannelError
		switch {
		case errors.As(f, &sendErr):
			out = append(out, sendErr.Channel)
		case errors.As(f, &unknown):
			out = append(out, unknown.Type)
		}
	}
	return out
}
