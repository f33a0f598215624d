// Package forms validates the components gallery demo form and the personal
// info records form, and keeps the submitted records.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// GalleryForm is the components gallery submission.
type GalleryForm struct {
	Username string `json:"username" validate:"min=2"`
	Email    string `json:"email" validate:"email"`
	Age      int    `json:"age" validate:"gte=18"`
	Terms    bool   `json:"terms" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// DefaultGalleryForm is the initial state of the form.
func DefaultGalleryForm() GalleryForm {
	return GalleryForm{Age: 18}
}

// ValidationError describes one invalid field. Code is the support code of
// Message, filled in by the web layer.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult collects every failing field in form order.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Err joins the field errors, or returns nil when the form is valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// For returns the message for field, if it failed.
func (r ValidationResult) For(field string) string {
	for _, e := range r.Errors {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

var galleryMessages = map[string]string{
	"username": "Username must be at least 2 characters",
	"email":    "Invalid email address",
	"age":      "Must be at least 18 years old",
	"terms":    "You must accept the terms",
	"role":     "Please select a role",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// past accepts a non-zero instant before now.
	if err := v.RegisterValidation("past", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.IsZero() && t.Before(time.Now())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateGallery checks the form against the gallery rules.
func ValidateGallery(f GalleryForm) ValidationResult {
	return check(f, galleryMessages)
}

// check validates v and reports one error per failing field, worded from
// messages.
func check(v any, messages map[string]string) ValidationResult {
	err := validate.Struct(v)
	if err == nil {
		return ValidationResult{Valid: true}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationResult{Errors: []ValidationError{{Field: "form", Message: err.Error()}}}
	}

	res := ValidationResult{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		res.Errors = append(res.Errors, ValidationError{
			Field:   fe.Field(),
			Value:   fmt.Sprint(fe.Value()),
			Message: messages[fe.Field()],
		})
	}
	return res
}
