package habit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports caller input that was rejected before any state
// changed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (in Input) Validate() error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	return validateReminderTime(in.ReminderTime)
}

func (u Update) Validate() error {
	if u.Name != nil {
		if err := validateName(*u.Name); err != nil {
			return err
		}
	}
	if u.ReminderTime != nil {
		return validateReminderTime(*u.ReminderTime)
	}
	return nil
}

// ValidateDate checks that s is an existing YYYY-MM-DD day.
func ValidateDate(s string) error {
	if _, err := ParseDate(s); err != nil {
		return &ValidationError{Field: "date", Reason: fmt.Sprintf("%q is not a YYYY-MM-DD day", s)}
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

func validateReminderTime(s string) error {
	if s == "" {
		return nil
	}
	if _, _, err := ParseReminderTime(s, nil); err != nil {
		return &ValidationError{Field: "reminderTime", Reason: err.Error()}
	}
	return nil
}
