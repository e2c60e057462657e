package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewQrIDIsValid(t *testing.T) {
	id, err := NewQrID()
	require.NoError(t, err)
	require.Len(t, id, 26)
	require.NoError(t, ValidateQrID(id))
}

func TestNewQrIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool, 100)
	for i := 0; i < 100; i++ {
		id, err := NewQrID()
		require.NoError(t, err)
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestValidateQrIDRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "abc", "01ARZ3NDEKTSV4RRFFQ69G5FA", "01ARZ3NDEKTSV4RRFFQ69G5FAVX", "ILOU!3NDEKTSV4RRFFQ69G5FAV"} {
		require.Error(t, ValidateQrID(input), "input %q", input)
	}
}

func TestValidateQrIDAcceptsLowercase(t *testing.T) {
	require.NoError(t, ValidateQrID("01arz3ndektsv4rrffq69g5fav"))
}
