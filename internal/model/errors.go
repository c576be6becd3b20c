package model

import (
	"errors"
	"fmt"
)

// InputError is returned when an input source is empty or cannot be found
type InputError struct {
	Source string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("source '%s' not found", e.Source)
}

// NewInputError creates a new input error
func NewInputError(source string) *InputError {
	return &InputError{Source: source}
}

// InputFormatError is returned when an input source cannot be decoded
type InputFormatError struct {
	Source string
	Cause  error
}

func (e *InputFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source '%s' does not contain valid input (%v)", e.Source, e.Cause)
	}
	return fmt.Sprintf("source '%s' does not contain valid input", e.Source)
}

func (e *InputFormatError) Unwrap() error {
	return e.Cause
}

// NewInputFormatError creates a new input format error
func NewInputFormatError(source string, cause error) *InputFormatError {
	return &InputFormatError{
		Source: source,
		Cause:  cause,
	}
}

// IsConfigError reports whether err means an input source is unusable
func IsConfigError(err error) bool {
	var inputErr *InputError
	var formatErr *InputFormatError
	return errors.As(err, &inputErr) || errors.As(err, &formatErr)
}

// Feed error kinds
var (
	ErrFeedTransport = errors.New("fx feed transport failure")
	ErrFeedMalformed = errors.New("fx feed malformed")
)

// FeedError represents a failure to download or decode the FX rate feed
type FeedError struct {
	Kind    error
	URL     string
	Message string
	Cause   error
}

func (e *FeedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v [%s]: %s (%v)", e.Kind, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("%v [%s]: %s", e.Kind, e.URL, e.Message)
}

func (e *FeedError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// NewFeedError creates a new feed error
func NewFeedError(kind error, url, message string, cause error) *FeedError {
	return &FeedError{
		Kind:    kind,
		URL:     url,
		Message: message,
		Cause:   cause,
	}
}

// TemplateError represents rule template storage failures
type TemplateError struct {
	Operation string
	Name      string
	Cause     error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template %s '%s' failed (%v)", e.Operation, e.Name, e.Cause)
	}
	return fmt.Sprintf("template %s '%s' failed", e.Operation, e.Name)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// NewTemplateError creates a new template error
func NewTemplateError(operation, name string, cause error) *TemplateError {
	return &TemplateError{
		Operation: operation,
		Name:      name,
		Cause:     cause,
	}
}
