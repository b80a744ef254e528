package validation

import (
	"fmt"
	"regexp"
	"strings"

	"example.com/backstage/services/picking/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	lotCodePattern   = regexp.MustCompile(`^\d{8}$`)
	orderCodePattern = regexp.MustCompile(`^\d{9}$`)
	sealCodePattern  = regexp.MustCompile(`^\d{10}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	registerCustomValidations(v)
	return v
}

// Validator exposes the configured instance, e.g. for gin binding
func Validator() *validator.Validate {
	return validate
}

// IsValidLotCode checks the 8-digit lot code format
func IsValidLotCode(code string) bool {
	return lotCodePattern.MatchString(code)
}

// IsValidOrderCode checks the 9-digit order code format
func IsValidOrderCode(code string) bool {
	return orderCodePattern.MatchString(code)
}

// IsValidSealCode checks the 10-digit seal code format
func IsValidSealCode(code string) bool {
	return sealCodePattern.MatchString(code)
}

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("lotcode", func(fl validator.FieldLevel) bool {
		return IsValidLotCode(fl.Field().String())
	})
	_ = v.RegisterValidation("ordercode", func(fl validator.FieldLevel) bool {
		return IsValidOrderCode(fl.Field().String())
	})
	_ = v.RegisterValidation("sealcode", func(fl validator.FieldLevel) bool {
		return IsValidSealCode(fl.Field().String())
	})
	_ = v.RegisterValidation("workmode", func(fl validator.FieldLevel) bool {
		return domain.WorkMode(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("assignment", func(fl validator.FieldLevel) bool {
		return domain.AssignmentType(fl.Field().String()).Valid()
	})
}

// ValidateStruct validates a struct using validation tags and returns a
// domain validation error describing the first failing fields
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.Validationf("%v", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return domain.Validationf("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "lotcode":
		return fmt.Sprintf("%s must be exactly 8 digits, got %q", field, fe.Value())
	case "ordercode":
		return fmt.Sprintf("%s must be exactly 9 digits, got %q", field, fe.Value())
	case "sealcode":
		return fmt.Sprintf("%s must be exactly 10 digits, got %q", field, fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "workmode":
		return fmt.Sprintf("%s must be one of GERAL, SEPARADOR, BIPADOR", field)
	case "assignment":
		return fmt.Sprintf("%s must be one of OPEN, ASSIGNED_GENERAL, ASSIGNED_SEPARATED", field)
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
