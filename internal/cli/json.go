package cli

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/boxbench/boxbench/internal/bench"
	"github.com/boxbench/boxbench/internal/errors"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeBenchFailed    = "BENCH_FAILED"
	ErrCodeDiskPrecheck   = "DISK_PRECHECK_FAILED"
	ErrCodeNetFailed      = "NET_PROBE_FAILED"
	ErrCodeStateFault     = "STATE_FAULT"
	ErrCodeUnknown        = "UNKNOWN"
)

// JSONResult is the wire form of one phase result.
type JSONResult struct {
	Name       string            `json:"name"`
	Primary    uint64            `json:"primary"`
	Secondary  uint64            `json:"secondary"`
	DurationMS int64             `json:"duration_ms"`
	Details    map[string]string `json:"details,omitempty"`
}

// JSONRunReport is the wire form of a completed benchmark run.
type JSONRunReport struct {
	Kind      string       `json:"kind"`
	Primary   uint64       `json:"primary"`
	Secondary uint64       `json:"secondary"`
	ElapsedMS int64        `json:"elapsed_ms"`
	Results   []JSONResult `json:"results"`
}

// NewRunReport converts a terminal snapshot into the JSON report shape. The
// composite row carries the run's headline scores; it stays in the result
// list too so the per-phase breakdown is complete.
func NewRunReport(kind string, s bench.State, elapsed time.Duration) JSONRunReport {
	report := JSONRunReport{
		Kind:      kind,
		ElapsedMS: elapsed.Milliseconds(),
		Results:   make([]JSONResult, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		if r.Name == bench.CompositeName {
			report.Primary = r.Primary
			report.Secondary = r.Secondary
		}
		report.Results = append(report.Results, JSONResult{
			Name:       r.Name,
			Primary:    r.Primary,
			Secondary:  r.Secondary,
			DurationMS: r.Duration.Milliseconds(),
			Details:    r.Details,
		})
	}
	return report
}

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	env := JSONEnvelope{
		Success: true,
		Data:    data,
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	env := JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	}
	return writeJSONEnvelope(w, env)
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	if bbErr, ok := err.(*errors.Error); ok {
		return &JSONError{
			Code:       mapErrorCode(bbErr.Code, bbErr.Message),
			Message:    bbErr.Message,
			Suggestion: bbErr.Suggestion,
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrBench:
		return ErrCodeBenchFailed
	case errors.ErrDisk:
		return ErrCodeDiskPrecheck
	case errors.ErrNet:
		return ErrCodeNetFailed
	case errors.ErrState:
		return ErrCodeStateFault
	}

	return ErrCodeUnknown
}
