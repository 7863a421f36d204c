package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxFieldLength bounds the length of name and location, in characters.
const MaxFieldLength = 50

const fieldRules = "required,max=50"

var validate = validator.New()

// User represents a single directory record
type User struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Location    string    `json:"location" db:"location"`
	DateCreated time.Time `json:"date_created" db:"date_created"`
}

// UserForm represents form data for creating a user
type UserForm struct {
	Name     string `json:"name" validate:"required,max=50"`
	Location string `json:"location" validate:"required,max=50"`
}

// Normalize trims surrounding whitespace from all fields.
func (f *UserForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Location = strings.TrimSpace(f.Location)
}

// Validate validates the user form data
func (f *UserForm) Validate() ValidationErrors {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Message: err.Error()}}
	}

	var errs ValidationErrors
	for _, fe := range fieldErrs {
		errs = append(errs, fieldError(strings.ToLower(fe.Field()), fe.Tag()))
	}
	return errs
}

// UserUpdateForm represents form data for updating a user.
// A nil field was not provided and keeps its stored value.
type UserUpdateForm struct {
	Name     *string `json:"name,omitempty"`
	Location *string `json:"location,omitempty"`
}

// Normalize trims surrounding whitespace from the provided fields.
func (f *UserUpdateForm) Normalize() {
	if f.Name != nil {
		name := strings.TrimSpace(*f.Name)
		f.Name = &name
	}
	if f.Location != nil {
		location := strings.TrimSpace(*f.Location)
		f.Location = &location
	}
}

// Validate validates the provided fields of the update form
func (f *UserUpdateForm) Validate() ValidationErrors {
	if f.Name == nil && f.Location == nil {
		return ValidationErrors{{Message: "Name or location is required"}}
	}

	var errs ValidationErrors
	if f.Name != nil {
		if err := validateField("name", *f.Name); err != nil {
			errs = append(errs, *err)
		}
	}
	if f.Location != nil {
		if err := validateField("location", *f.Location); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

func validateField(field, value string) *ValidationError {
	err := validate.Var(value, fieldRules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		ve := fieldError(field, fieldErrs[0].Tag())
		return &ve
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

func fieldError(field, tag string) ValidationError {
	label := strings.ToUpper(field[:1]) + field[1:]
	switch tag {
	case "required":
		return ValidationError{Field: field, Message: label + " is required"}
	case "max":
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", label, MaxFieldLength)}
	default:
		return ValidationError{Field: field, Message: fmt.Sprintf("%s is invalid", label)}
	}
}
