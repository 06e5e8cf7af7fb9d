package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

type contactForm struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=5"`
	Message string `json:"message" validate:"required"`
}

func TestStructCollectsAllViolations(t *testing.T) {
	var c Collector
	c.Struct(contactForm{Email: "not-an-email", Phone: "123456"})

	got := map[string]string{}
	for _, v := range c.Violations() {
		got[v.Field] = v.Message
	}
	assert.Equal(t, "name is required", got["name"])
	assert.Equal(t, "email must be a valid email address", got["email"])
	assert.Equal(t, "phone must be at most 5 characters", got["phone"])
	assert.Equal(t, "message is required", got["message"])

	err := c.Err()
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ValidationFailed))
}

func TestVarUsesGivenFieldName(t *testing.T) {
	var c Collector
	c.Var("price", -1.0, "gte=0")
	c.Var("name", "", "required")
	c.Var("category", "Rings", "required,max=100")

	require.Len(t, c.Violations(), 2)
	assert.Equal(t, apperr.Violation{Field: "price", Message: "price must be greater than or equal to 0"}, c.Violations()[0])
	assert.Equal(t, "name", c.Violations()[1].Field)
}

func TestEmptyCollectorHasNoError(t *testing.T) {
	var c Collector
	c.Struct(contactForm{Name: "Ann", Email: "ann@example.com", Message: "Hello"})
	assert.NoError(t, c.Err())
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"true", "TRUE", "1", "yes", "on", " On "} {
		v, err := ParseBool(in)
		require.NoError(t, err, in)
		assert.True(t, v, in)
	}
	for _, in := range []string{"false", "0", "no", "off", "OFF"} {
		v, err := ParseBool(in)
		require.NoError(t, err, in)
		assert.False(t, v, in)
	}
	for _, in := range []string{"", "maybe", "2"} {
		_, err := ParseBool(in)
		assert.ErrorIs(t, err, ErrNotBoolean, in)
	}
}
