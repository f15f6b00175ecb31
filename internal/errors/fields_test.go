package errors

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email     string `validate:"required,email"`
	FirstName string `validate:"required"`
	Age       int    `validate:"omitempty,gt=0"`
}

func TestFieldsFromBindingValidationErrors(t *testing.T) {
	v := validator.New()
	err := v.Struct(signupForm{Email: "nope", Age: -1})
	require.Error(t, err)

	fields := FieldsFromBinding(err)

	assert.Equal(t, "Must be a valid email address", fields["email"])
	assert.Equal(t, "This field is required", fields["first_name"])
	assert.Equal(t, "Must be greater than 0", fields["age"])
}

func TestFieldsFromBindingMalformedBody(t *testing.T) {
	var target signupForm
	err := json.Unmarshal([]byte("{"), &target)
	require.Error(t, err)

	fields := FieldsFromBinding(err)
	assert.Equal(t, "Request body is not valid", fields["_body"])
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "first_name", toSnake("FirstName"))
	assert.Equal(t, "email", toSnake("Email"))
	assert.Equal(t, "page_size", toSnake("PageSize"))
}
