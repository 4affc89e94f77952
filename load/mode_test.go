package load

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModeString(t *testing.T) {
	require.Equal(t, "ParentFirst", ParentFirst.String())
	require.Equal(t, "CurrentFirst", CurrentFirst.String())
	require.Contains(t, Mode(99).String(), "Mode")
}
