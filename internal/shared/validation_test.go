package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email    string `form:"email" validate:"required,email"`
	Role     string `form:"role" validate:"required,oneof=manager sales"`
	Password string `form:"password" validate:"required,min=8"`
	Confirm  string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func TestValidateStructUsesFormNames(t *testing.T) {
	err := ValidateStruct(signupForm{Email: "nope", Role: "admin", Password: "short", Confirm: "other"})
	require.Error(t, err)

	fields := FieldErrors(err)
	require.NotNil(t, fields)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be one of manager, sales", fields["role"])
	assert.Equal(t, "must be at least 8 characters", fields["password"])
	assert.Equal(t, "does not match", fields["confirm_password"])
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(signupForm{Email: "a@b.co", Role: "sales", Password: "longenough", Confirm: "longenough"})
	assert.NoError(t, err)
}

func TestValidationErrorsString(t *testing.T) {
	v := ValidationErrors{}
	assert.NoError(t, v.Err())
	v.Add("title", "is required")
	v.Add("title", "ignored")
	v.Add("end_date", "must not be before start_date")
	assert.Equal(t, "end_date: must not be before start_date; title: is required", v.Error())
}
