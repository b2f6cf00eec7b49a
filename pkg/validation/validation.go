// Package validation provides the checks applied to scene configuration and
// viewport input before they reach the layout core. Configuration problems are
// collected and reported together; viewport input is repaired in place.
package validation

import (
	"fmt"
	"math"
	"path"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Limits for user-facing body labels and asset paths
const (
	MaxBodyNameLen    = 48
	MaxTexturePathLen = 256
	MaxBodies         = 16
)

// FieldError reports a single invalid configuration field
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors accumulates field errors so a configuration file can be fixed in
// one pass instead of one failure at a time.
type Errors struct {
	fields []*FieldError
}

// Add records a problem with field
func (e *Errors) Add(field, format string, args ...any) {
	e.fields = append(e.fields, &FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Fields returns the recorded problems in insertion order
func (e *Errors) Fields() []*FieldError {
	return e.fields
}

// Err returns nil when nothing was recorded, the single FieldError when there
// is exactly one, and an aggregate error otherwise.
func (e *Errors) Err() error {
	switch len(e.fields) {
	case 0:
		return nil
	case 1:
		return e.fields[0]
	}
	msgs := make([]string, len(e.fields))
	for i, f := range e.fields {
		msgs[i] = f.Error()
	}
	return &AggregateError{Fields: e.fields, msg: strings.Join(msgs, "; ")}
}

// AggregateError is returned when more than one field is invalid
type AggregateError struct {
	Fields []*FieldError
	msg    string
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("%d invalid fields: %s", len(e.Fields), e.msg)
}

// Unwrap exposes the individual field errors to errors.As
func (e *AggregateError) Unwrap() []error {
	out := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f
	}
	return out
}

// Positive requires v to be a finite number greater than zero
func Positive(errs *Errors, field string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		errs.Add(field, "must be positive, got %v", v)
	}
}

// NonNegative requires v to be a finite number not below zero
func NonNegative(errs *Errors, field string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		errs.Add(field, "must not be negative, got %v", v)
	}
}

// Fraction requires v to lie in [0,1]
func Fraction(errs *Errors, field string, v float64) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		errs.Add(field, "must be within [0,1], got %v", v)
	}
}

// PositiveDuration rejects zero and negative durations
func PositiveDuration(errs *Errors, field string, d time.Duration) {
	if d <= 0 {
		errs.Add(field, "must be a positive duration, got %v", d)
	}
}

// IntRange requires min <= v <= max
func IntRange(errs *Errors, field string, v, min, max int) {
	if v < min || v > max {
		errs.Add(field, "must be between %d and %d, got %d", min, max, v)
	}
}

// BodyName validates and trims a body label. Labels are shown verbatim in
// tooltips and terminal cells, so control characters are refused.
func BodyName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("body name cannot be empty")
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("body name contains invalid UTF-8 characters")
	}

	if n := utf8.RuneCountInString(name); n > MaxBodyNameLen {
		return "", fmt.Errorf("body name too long: %d characters (max %d)", n, MaxBodyNameLen)
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("body name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("body name contains control characters")
		}
	}

	return trimmed, nil
}

// TexturePath accepts relative slash-separated paths that stay inside the
// asset root. An empty path means "use the placeholder sprite".
func TexturePath(p string) error {
	if p == "" {
		return nil
	}
	if len(p) > MaxTexturePathLen {
		return fmt.Errorf("texture path too long: %d bytes (max %d)", len(p), MaxTexturePathLen)
	}
	if strings.Contains(p, "\\") {
		return fmt.Errorf("texture path must use forward slashes: %q", p)
	}
	if path.IsAbs(p) {
		return fmt.Errorf("texture path must be relative: %q", p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("texture path escapes asset root: %q", p)
	}
	return nil
}

// Dimension returns v when it is a usable viewport extent and fallback
// otherwise (zero, negative, NaN or infinite).
func Dimension(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fallback
	}
	return v
}
