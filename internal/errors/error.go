// Package errors provides the error kinds surfaced by the checklist client.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an update or delete target is absent on the remote store.
	ErrNotFound = errors.New("product not found")
	// ErrValidation marks every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrTransport marks every TransportError.
	ErrTransport = errors.New("remote store request failed")
	// ErrClipboard marks every ClipboardError.
	ErrClipboard = errors.New("clipboard write failed")
	// ErrCircuitOpen is wrapped by a TransportError when the remote store breaker rejects a call.
	ErrCircuitOpen = errors.New("remote store circuit breaker is open")

	// ErrUnknownProduct is returned when an action names an id the cache does not hold.
	ErrUnknownProduct = errors.New("product is not in the list")
	// ErrToggleInFlight is returned when a toggle is requested while another one for the same product is pending.
	ErrToggleInFlight = errors.New("a status update for this product is still pending")
	// ErrBulkClear is wrapped by the aggregate error of a partially failed bulk clear.
	ErrBulkClear = errors.New("failed to clear all checkboxes")
)

// ValidationError reports required form fields that were empty. Fields maps field name to failed rule.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransportKind tells a failed request apart from a response that could not be parsed.
type TransportKind int

const (
	RequestFailed TransportKind = iota
	Unparsable
)

func (k TransportKind) String() string {
	switch k {
	case Unparsable:
		return "unparsable response"
	default:
		return "request failed"
	}
}

// TransportError is a network, HTTP status or decoding failure of a remote store call.
type TransportError struct {
	Op     string
	Kind   TransportKind
	Status int // 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ClipboardError wraps a clipboard write that was denied or is unsupported on this platform.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	if e.Err == nil {
		return ErrClipboard.Error()
	}
	return fmt.Sprintf("%s: %v", ErrClipboard, e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}

func (e *ClipboardError) Is(target error) bool {
	return target == ErrClipboard
}
