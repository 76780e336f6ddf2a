package handlers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON binds the request body and, on failure, responds 400 with a message
// naming the first offending field by its JSON name. Input is rejected here,
// before any business logic runs.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondBadRequest(ctx, bindErrorMessage(err, out))

		return false
	}

	return true
}

func bindErrorMessage(err error, out interface{}) string {
	var validatorErrs validator.ValidationErrors

	if errors.As(err, &validatorErrs) && len(validatorErrs) > 0 {
		fe := validatorErrs[0]
		field := jsonFieldName(out, fe.StructField())

		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "email":
			return field + " must be a valid email address"
		case "min":
			return field + " must be at least " + fe.Param()
		case "max":
			return field + " must be at most " + fe.Param()
		default:
			return field + " is invalid"
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "Invalid JSON body"
	}

	return "Invalid request body"
}

func jsonFieldName(out interface{}, structField string) string {
	t := reflect.TypeOf(out)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}

	sf, ok := t.FieldByName(structField)
	if !ok {
		return structField
	}

	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return structField
	}

	return name
}
