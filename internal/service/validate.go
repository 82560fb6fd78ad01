// Package service contains owner-scoped deck and card operations.
package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/flashcards/internal/errs"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// messages holds user-facing text per field and failed rule.
var messages = map[string]map[string]string{
	"name": {
		"required": "Deck name is required",
		"max":      "Deck name too long",
	},
	"description": {"max": "Description too long"},
	"front": {
		"required": "Front text is required",
		"max":      "Front text too long",
	},
	"back": {
		"required": "Back text is required",
		"max":      "Back text too long",
	},
	"id":     {"gt": "Must be a positive integer"},
	"deckId": {"gt": "Must be a positive integer"},
}

// validateInput runs struct-tag validation and converts failures into *errs.ValidationError.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	details := make([]errs.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		details = append(details, errs.FieldError{Field: fe.Field(), Message: msg})
	}
	return &errs.ValidationError{Details: details}
}
