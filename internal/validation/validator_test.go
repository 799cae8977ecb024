package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/apperr"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"notblank,max=8"`
	Password string `json:"password" validate:"required,min=8"`
	Confirm  string `json:"confirmPassword" validate:"eqfield=Password"`
}

func TestStructReportsEveryField(t *testing.T) {
	err := Struct(signup{Email: "nope", Username: "   ", Password: "short", Confirm: "other"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "email must be a valid email address", apperr.Message(err))
	assert.Equal(t, []string{
		"email must be a valid email address",
		"username is required",
		"password must be at least 8 characters",
		"confirmPassword must match password",
	}, apperr.DetailsOf(err))
}

func TestStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, Struct(signup{Email: "a@example.com", Username: "alice", Password: "longenough", Confirm: "longenough"}))
}

func TestGetValidatorIsShared(t *testing.T) {
	assert.Same(t, GetValidator(), GetValidator())
}
