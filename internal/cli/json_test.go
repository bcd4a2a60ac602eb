package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/boxbench/boxbench/internal/errors"
)

func TestWriteJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSONSuccess(&buf, map[string]string{"kind": "cpu"})
	require.NoError(t, err)

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
}

func TestWriteJSONFromError(t *testing.T) {
	var buf bytes.Buffer
	origErr := errors.New(errors.ErrDisk, "Not enough free space", "Free up disk space and retry")
	require.NoError(t, WriteJSONFromError(&buf, origErr))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeDiskPrecheck, env.Error.Code)
	assert.Equal(t, "Not enough free space", env.Error.Message)
	assert.Equal(t, "Free up disk space and retry", env.Error.Suggestion)
}

func TestMapErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{"config not found", errors.ErrConfig, "Config file not found", ErrCodeConfigNotFound},
		{"config invalid", errors.ErrConfig, "Bad tick interval", ErrCodeConfigInvalid},
		{"bench failure", errors.ErrBench, "cpu benchmark failed", ErrCodeBenchFailed},
		{"disk failure", errors.ErrDisk, "precheck failed", ErrCodeDiskPrecheck},
		{"net failure", errors.ErrNet, "probe failed", ErrCodeNetFailed},
		{"state fault", errors.ErrState, "already running", ErrCodeStateFault},
		{"unknown code", "NOPE", "mystery", ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapErrorCode(tt.code, tt.message))
		})
	}
}

func TestErrorToJSON_GenericError(t *testing.T) {
	jsonErr := ErrorToJSON(assert.AnError)
	require.NotNil(t, jsonErr)
	assert.Equal(t, ErrCodeUnknown, jsonErr.Code)
}

func TestErrorToJSON_Nil(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))
}

func TestNewRunReport(t *testing.T) {
	s := bench.State{
		Status: bench.StatusCompleted,
		Results: []bench.Result{
			{Name: "cpu_int", Primary: 1000, Secondary: 4000, Duration: time.Second},
			{Name: "cpu_float", Primary: 1200, Secondary: 5000, Duration: time.Second},
			{Name: bench.CompositeName, Primary: 1100, Secondary: 4500},
		},
	}

	report := NewRunReport("cpu", s, 2500*time.Millisecond)

	assert.Equal(t, "cpu", report.Kind)
	assert.Equal(t, uint64(1100), report.Primary, "headline scores come from the composite row")
	assert.Equal(t, uint64(4500), report.Secondary)
	assert.Equal(t, int64(2500), report.ElapsedMS)
	assert.Len(t, report.Results, 3)
	assert.Equal(t, "cpu_int", report.Results[0].Name)
	assert.Equal(t, int64(1000), report.Results[0].DurationMS)
}

func TestNewRunReport_NoComposite(t *testing.T) {
	s := bench.State{
		Results: []bench.Result{{Name: "net_latency", Primary: 9000, Secondary: 40}},
	}

	report := NewRunReport("net", s, time.Second)

	assert.Zero(t, report.Primary)
	assert.Zero(t, report.Secondary)
	assert.Len(t, report.Results, 1)
}
