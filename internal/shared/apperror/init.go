package apperror

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var employeeCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Init registers the shared tag name func and custom rules on gin's
// validator so handler binding and service validation agree.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		configure(v)
	}
}

// Validator returns the process wide validator used by services.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		configure(validate)
	})
	return validate
}

// Validate runs struct validation and maps the result to a VALIDATION_ERROR.
func Validate(s any) error {
	if err := Validator().Struct(s); err != nil {
		return MapValidationError(err)
	}
	return nil
}

func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("employee_code", func(fl validator.FieldLevel) bool {
		return employeeCodePattern.MatchString(fl.Field().String())
	})
}
