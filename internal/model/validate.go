package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/sleep-keeper/internal/errs"
)

var validate = validator.New()

// validateStruct runs the struct tags of v and maps failures to errs.ErrValidation.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %v: %w", err, errs.ErrValidation)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("validation: %s: %w", strings.Join(msgs, "; "), errs.ErrValidation)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s is longer than %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s %v is above %s", fe.Field(), fe.Value(), fe.Param())
	case "min":
		return fmt.Sprintf("%s %v is below %s", fe.Field(), fe.Value(), fe.Param())
	default:
		return fmt.Sprintf("%s %v fails %s", fe.Field(), fe.Value(), fe.ActualTag())
	}
}
