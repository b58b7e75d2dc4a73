package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Email       string `validate:"required,email"`
	DisplayName string `validate:"required"`
	Password    string `validate:"omitempty,password"`
	Role        string `validate:"omitempty,oneof=user admin"`
}

func TestV10Validator(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(sampleInput{Email: "alice@example.com", DisplayName: "Alice"}))
	})

	t.Run("snake case keys", func(t *testing.T) {
		err := v.Validate(sampleInput{Email: "nope", Password: "123", Role: "root"})

		var verr V10ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Values(), "email")
		assert.Contains(t, verr.Values(), "display_name")
		assert.Equal(t, "Password must be 6-72 characters", verr.Values()["password"])
		assert.Contains(t, verr.Values(), "role")
		assert.Contains(t, verr.Error(), "display_name")
	})

	t.Run("non struct", func(t *testing.T) {
		err := v.Validate("text")
		require.Error(t, err)

		var verr V10ValidationError
		assert.NotErrorAs(t, err, &verr)
	})
}
