package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput checks the validate tags of in and turns the first failure
// into a common.ErrValidation error.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return common.NewError(common.ErrValidation, err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return common.Errorf(common.ErrValidation, "%s is required", fe.Field())
	case "email":
		return common.Errorf(common.ErrValidation, "%s must be a valid email address", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return common.Errorf(common.ErrValidation, "%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return common.Errorf(common.ErrValidation, "%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return common.Errorf(common.ErrValidation, "%s must be greater than %s", fe.Field(), fe.Param())
	case "len":
		return common.Errorf(common.ErrValidation, "%s must be %s characters long", fe.Field(), fe.Param())
	case "numeric":
		return common.Errorf(common.ErrValidation, "%s must contain digits only", fe.Field())
	case "oneof":
		return common.Errorf(common.ErrValidation, "%s must be one of: %s", fe.Field(), fe.Param())
	}
	return common.NewError(common.ErrValidation, fmt.Sprintf("%s is invalid", fe.Field()))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
