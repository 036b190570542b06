package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Error is a client facing validation failure.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Normalizer trims and canonicalizes a request before it is validated.
type Normalizer interface {
	Normalize()
}

// Messenger supplies per request wording keyed by "field.tag".
type Messenger interface {
	Messages() map[string]string
}

var registerTagNames sync.Once

// BindJSON decodes the body into req, normalizes it and validates it with
// gin's validator. The first failing field is reported as an *Error.
func BindJSON(ctx *gin.Context, req any) error {
	registerTagNames.Do(useJSONFieldNames)

	if ctx.Request.Body == nil {
		return &Error{Message: "Invalid request body"}
	}

	if err := json.NewDecoder(ctx.Request.Body).Decode(req); err != nil {
		return &Error{Message: "Invalid request body"}
	}

	if n, ok := req.(Normalizer); ok {
		n.Normalize()
	}

	if err := binding.Validator.ValidateStruct(req); err != nil {
		return translate(req, err)
	}

	return nil
}

func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)

	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]

		if name == "-" {
			return ""
		}

		if name == "" {
			return field.Name
		}

		return name
	})
}

func translate(req any, err error) error {
	var fieldErrs validator.ValidationErrors

	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &Error{Message: "Invalid request body"}
	}

	fe := fieldErrs[0]

	if m, ok := req.(Messenger); ok {
		if msg, ok := m.Messages()[fe.Field()+"."+fe.Tag()]; ok {
			return &Error{Field: fe.Field(), Message: msg}
		}
	}

	return &Error{Field: fe.Field(), Message: defaultMessage(fe)}
}

func defaultMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	}

	return fmt.Sprintf("%s is invalid", field)
}
