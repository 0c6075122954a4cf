package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	type payload struct {
		Name     string `json:"name" binding:"required"`
		Category string `json:"category" binding:"required,oneof=report comment"`
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(payload{Category: "bogus"})
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-123")
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)

	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", fields["name"])
	assert.Equal(t, "Must be one of: report comment", fields["category"])
}

func TestGetValidationMessage(t *testing.T) {
	v := validator.New()

	type sizes struct {
		Short string `validate:"min=5"`
		Long  string `validate:"max=3"`
		Count int    `validate:"gte=1"`
	}

	err := v.Struct(sizes{Short: "ab", Long: "abcd", Count: 0})
	require.Error(t, err)

	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	messages := map[string]string{}
	for _, e := range verrs {
		messages[e.StructField()] = getValidationMessage(e)
	}
	assert.Equal(t, "Must be at least 5 characters", messages["Short"])
	assert.Equal(t, "Must be at most 3 characters", messages["Long"])
	assert.Equal(t, "Must be greater than or equal to 1", messages["Count"])
}
