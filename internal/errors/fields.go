package errors

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Fields is the validation-error envelope: field name mapped to a
// human-readable message. It is returned as the response body itself.
type Fields map[string]string

// RespondWithFields writes a field-error map with the given status code.
// Session authentication deliberately uses 404 here; everything else 400.
func RespondWithFields(c *gin.Context, statusCode int, fields Fields) {
	c.JSON(statusCode, fields)
}

// BadRequestFields writes a field-error map with a 400 status.
func BadRequestFields(c *gin.Context, fields Fields) {
	RespondWithFields(c, http.StatusBadRequest, fields)
}

// FieldsFromBinding translates a gin binding error into the field-error
// envelope. Non-validator errors (malformed JSON and friends) collapse to
// a single _body entry.
func FieldsFromBinding(err error) Fields {
	fields := Fields{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fieldName(fe)] = fieldMessage(fe)
		}
		return fields
	}

	fields["_body"] = "Request body is not valid"
	return fields
}

func fieldName(fe validator.FieldError) string {
	// Namespace is Struct.Field; drop the struct prefix and snake-case the
	// leaf to match the json tags used across the API.
	name := fe.Field()
	return toSnake(name)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "gt":
		return "Must be greater than " + fe.Param()
	case "min":
		return "Must be at least " + fe.Param() + " characters long"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "This value is not valid"
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
