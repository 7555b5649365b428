//go:build !windows

package apwn

import (
	"testing"

	"github.com/distillab/aspenplus/pkg/flowsheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFailsFastOffWindows(t *testing.T) {
	eng, err := New(Options{})
	require.Error(t, err)
	assert.Nil(t, eng)
	assert.ErrorIs(t, err, flowsheet.ErrAutomationUnavailable)
}
