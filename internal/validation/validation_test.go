package validation

import (
	"testing"

	"example.com/backstage/services/picking/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestCodeFormats(t *testing.T) {
	require.True(t, IsValidLotCode("12345678"))
	require.False(t, IsValidLotCode("1234567"))
	require.False(t, IsValidLotCode("1234567a"))

	require.True(t, IsValidOrderCode("123456789"))
	require.False(t, IsValidOrderCode("1234567890"))

	require.True(t, IsValidSealCode("1234567890"))
	require.False(t, IsValidSealCode(" 1234567890"))
	require.False(t, IsValidSealCode(""))
}

type sample struct {
	Lot   string `validate:"lotcode"`
	Order string `validate:"ordercode"`
	Items int    `validate:"min=0"`
	Mode  string `validate:"workmode"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{Lot: "12345678", Order: "123456789", Mode: "GERAL"}))

	err := ValidateStruct(sample{Lot: "1", Order: "123456789", Items: -1, Mode: "X"})
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Contains(t, err.Error(), "sample.Lot must be exactly 8 digits")
	require.Contains(t, err.Error(), "sample.Items must be at least 0")
	require.Contains(t, err.Error(), "sample.Mode must be one of")
}
