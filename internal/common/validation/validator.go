package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func Validate(data interface{}) []ValidationError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var errors []ValidationError
	for _, err := range err.(validator.ValidationErrors) {
		errors = append(errors, ValidationError{
			Field:   err.Field(),
			Message: fmt.Sprintf("field must satisfy %s constraint", err.Tag()),
		})
	}
	return errors
}

// Details flattens validation errors into a single message string
func Details(errs []ValidationError) string {
	out := ""
	for i, e := range errs {
		if i > 0 {
			out += "; "
		}
		out += e.Field + ": " + e.Message
	}
	return out
}

// ValidateClassNumber checks the class is in the supported 1-10 range
func ValidateClassNumber(class int) error {
	if class < 1 || class > 10 {
		return fmt.Errorf("class number must be between 1 and 10")
	}
	return nil
}

// ValidateDifficultyLevel checks the level is in the supported 1-5 range
func ValidateDifficultyLevel(level int) error {
	if level < 1 || level > 5 {
		return fmt.Errorf("difficulty level must be between 1 and 5")
	}
	return nil
}
