package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxbench/boxbench/internal/config"
	"github.com/boxbench/boxbench/internal/errors"
	"github.com/boxbench/boxbench/internal/logger"
)

func TestParsePhaseDuration(t *testing.T) {
	d, err := parsePhaseDuration("750ms")
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, d)
}

func TestParsePhaseDuration_Invalid(t *testing.T) {
	_, err := parsePhaseDuration("fast")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestParsePhaseDuration_NonPositive(t *testing.T) {
	_, err := parsePhaseDuration("-1s")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFailureCode(t *testing.T) {
	assert.Equal(t, errors.ErrDisk, failureCode("disk"))
	assert.Equal(t, errors.ErrNet, failureCode("net"))
	assert.Equal(t, errors.ErrBench, failureCode("cpu"))
}

func TestBuildCoordinators(t *testing.T) {
	coords := buildCoordinators(config.Default(), logger.Noop())

	require.Len(t, coords, 3)
	for _, kind := range []string{"cpu", "disk", "net"} {
		c, ok := coords[kind]
		require.True(t, ok, "missing coordinator for %s", kind)
		assert.Equal(t, kind, c.Kind())
	}
}

func TestConfirmDiskRun_SkippedWithYesFlag(t *testing.T) {
	diskYesFlag = true
	defer func() { diskYesFlag = false }()

	proceed, err := confirmDiskRun(config.Default())
	require.NoError(t, err)
	assert.True(t, proceed)
}

func TestConfirmDiskRun_SkippedInMachineMode(t *testing.T) {
	machineMode = true
	defer func() { machineMode = false }()

	proceed, err := confirmDiskRun(config.Default())
	require.NoError(t, err)
	assert.True(t, proceed)
}
