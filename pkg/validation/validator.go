package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var once sync.Once

// Init configures the validator behind Gin's binding so error details use the
// wire names of fields (json tag, then form tag). Safe to call more than once.
func Init() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
	})
}

func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ToDetails converts binding/validation errors into map[field]message.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	if errors.As(err, &se) {
		return map[string]string{"body": "invalid json"}
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		field := ute.Field
		if field == "" {
			field = "body"
		}
		return map[string]string{field: "must be a " + ute.Type.String()}
	}
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return map[string]string{"query": "must be an integer"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	if errors.Is(err, io.EOF) {
		return map[string]string{"body": "is required"}
	}
	return map[string]string{"body": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "must be a valid email"
	case "min":
		if isString {
			return "must be at least " + param + " characters long"
		}
		return "must be at least " + param
	case "max":
		if isString {
			return "must be at most " + param + " characters long"
		}
		return "must be at most " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed on %s=%s", fe.Tag(), param)
		}
		return "failed on " + fe.Tag()
	}
}
