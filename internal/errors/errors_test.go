package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrDisk, "Not enough free space", "Free up space and retry")

	assert.Equal(t, ErrDisk, err.Code)
	assert.Contains(t, err.Error(), "✗ Not enough free space")
	assert.Contains(t, err.Error(), "Free up space and retry")
}

func TestWrap_DefaultsToBenchCode(t *testing.T) {
	cause := fmt.Errorf("read: connection reset")
	err := Wrap(cause, "Phase aborted")

	assert.Equal(t, ErrBench, err.Code)
	assert.Contains(t, err.Error(), "Phase aborted")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWrapWithCode_Unwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := WrapWithCode(cause, ErrNet, "Probe failed", "Check the loopback interface")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, ErrNet, err.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Bad tick interval", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrDisk))
	assert.False(t, IsCode(nil, ErrConfig))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrConfig))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsCode(wrapped, ErrConfig), "IsCode sees through wrapping")
}
