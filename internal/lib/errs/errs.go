package errs

import (
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"strings"
)

// Assertion is a failed precondition that is reported to the user as a single line,
// without a stack trace.
type Assertion struct {
	Message string
}

func (a *Assertion) Error() string {
	return a.Message
}

func Assertf(msg string, args ...interface{}) error {
	return &Assertion{Message: fmt.Sprintf(msg, args...)}
}

func IsAssertion(err error) bool {
	var a *Assertion
	return errors.As(err, &a)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a parameter struct against its `validate` tags and turns the first
// failures into one Assertion.
func Validate(kind string, params interface{}) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return errors.Wrapf(err, "validate %s", kind)
	}
	var problems []string
	for _, fieldErr := range invalid {
		problem := fmt.Sprintf("%s failed on '%s'", fieldErr.Field(), fieldErr.Tag())
		if fieldErr.Param() != "" {
			problem = fmt.Sprintf("%s=%s", problem, fieldErr.Param())
		}
		problems = append(problems, fmt.Sprintf("%s (got: %v)", problem, fieldErr.Value()))
	}
	return Assertf("invalid %s: %s", kind, strings.Join(problems, ", "))
}
