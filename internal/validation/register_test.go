package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCustomRules(t *testing.T) {
	var v *Validator
	require.NotPanics(t, func() { v = New() })

	type body struct {
		Name string `json:"name" validate:"notblank"`
	}
	err := v.Struct(body{Name: "   "})
	require.Error(t, err)
	assert.Equal(t, "name is required", err.(*Error).Fields[0].Message)
}

func TestRegisterRules_ReportsFailure(t *testing.T) {
	v := validator.New()
	err := registerRules(v, map[string]validator.Func{"": validators.NotBlank})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `register "" validation`)
}
