package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// ErrInvalid is matched by every *Errors value through errors.Is.
var ErrInvalid = errors.New("invalid input")

// FieldError is a single field failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects field failures for one record.
type Errors struct {
	Errors []FieldError `json:"errors"`
}

func (ve *Errors) Add(field, message string) {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Message: message})
}

func (ve *Errors) HasErrors() bool {
	return len(ve.Errors) > 0
}

func (ve *Errors) Error() string {
	msgs := make([]string, len(ve.Errors))
	for i, e := range ve.Errors {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

func (ve *Errors) Unwrap() error {
	return ErrInvalid
}

// Fields groups messages by field name.
func (ve *Errors) Fields() map[string][]string {
	out := make(map[string][]string, len(ve.Errors))
	for _, e := range ve.Errors {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// Err returns ve as an error, or nil when nothing was recorded.
func (ve *Errors) Err() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Invalid builds a single-field validation error.
func Invalid(field, message string) error {
	ve := &Errors{}
	ve.Add(field, message)
	return ve
}

// Required checks a required string field is non-empty.
func Required(ve *Errors, field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required")
	}
}

// RequiredID checks a reference field is set.
func RequiredID(ve *Errors, field string, id uuid.UUID) {
	if id == uuid.Nil {
		ve.Add(field, "is required")
	}
}

// RequiredTime checks a timestamp field is set.
func RequiredTime(ve *Errors, field string, t time.Time) {
	if t.IsZero() {
		ve.Add(field, "is required")
	}
}

// MaxLength checks a string does not exceed n bytes.
func MaxLength(ve *Errors, field, value string, n int) {
	if len(value) > n {
		ve.Add(field, fmt.Sprintf("must be at most %d characters", n))
	}
}

// Enum checks a field is one of allowed values. Empty values pass; pair with
// Required when the field is mandatory.
func Enum[S ~string](ve *Errors, field string, value S, allowed []S) {
	if value == "" {
		return
	}
	if slices.Contains(allowed, value) {
		return
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	ve.Add(field, fmt.Sprintf("must be one of: %s", strings.Join(names, ", ")))
}

// Email checks an optional address parses.
func Email(ve *Errors, field, value string) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		ve.Add(field, "must be a valid email address")
	}
}

type number interface {
	~int | ~int64 | ~float64
}

// NonNegative checks a field is >= 0.
func NonNegative[N number](ve *Errors, field string, value N) {
	if value < 0 {
		ve.Add(field, "must be non-negative")
	}
}

// Positive checks a field is > 0.
func Positive[N number](ve *Errors, field string, value N) {
	if value <= 0 {
		ve.Add(field, "must be positive")
	}
}

// Range checks min <= value <= max.
func Range[N number](ve *Errors, field string, value, min, max N) {
	if value < min || value > max {
		ve.Add(field, fmt.Sprintf("must be between %v and %v", min, max))
	}
}

// DecimalNonNegative checks a money or rate field is >= 0.
func DecimalNonNegative(ve *Errors, field string, value decimal.Decimal) {
	if value.IsNegative() {
		ve.Add(field, "must be non-negative")
	}
}

// DecimalRange checks min <= value <= max.
func DecimalRange(ve *Errors, field string, value, min, max decimal.Decimal) {
	if value.LessThan(min) || value.GreaterThan(max) {
		ve.Add(field, fmt.Sprintf("must be between %s and %s", min, max))
	}
}

// After checks end is strictly after start when both are set.
func After(ve *Errors, field string, start, end time.Time) {
	if start.IsZero() || end.IsZero() {
		return
	}
	if !end.After(start) {
		ve.Add(field, "must be after start")
	}
}
