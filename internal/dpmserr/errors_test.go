package dpmserr

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "basic error without underlying",
			err:      &Error{Kind: Usage, Message: "test error"},
			expected: "test error",
		},
		{
			name:     "error with underlying",
			err:      &Error{Kind: Io, Message: "io error", Underlying: errors.New("file not found")},
			expected: "io error: file not found",
		},
		{
			name:     "empty message falls back to kind string",
			err:      &Error{Kind: DrmError},
			expected: "DrmError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &Error{Kind: WaylandError, Message: "test error", Underlying: underlying}

	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
	}
}

func TestKind_ExitCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Usage, 2},
		{UnsupportedEnvironment, 1},
		{DrmError, 1},
		{WaylandError, 1},
		{Io, 1},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewDisplayNotFound(t *testing.T) {
	err := NewDisplayNotFound("DP-9", []string{"DP-1", "eDP-1"})

	if err.Kind != DisplayNotFound {
		t.Errorf("Kind = %v, want %v", err.Kind, DisplayNotFound)
	}
	if err.Name != "DP-9" {
		t.Errorf("Name = %q, want %q", err.Name, "DP-9")
	}
	if len(err.Available) != 2 {
		t.Errorf("Available = %v, want 2 entries", err.Available)
	}
}

func TestNewAmbiguousDisplay(t *testing.T) {
	err := NewAmbiguousDisplay("DP", []string{"DP-1", "DP-2"})

	if err.Kind != AmbiguousDisplay {
		t.Errorf("Kind = %v, want %v", err.Kind, AmbiguousDisplay)
	}
	if len(err.Candidates) != 2 {
		t.Errorf("Candidates = %v, want 2 entries", err.Candidates)
	}
}

func TestNewDaemonStopTimeout(t *testing.T) {
	err := NewDaemonStopTimeout(1234)

	if err.Kind != DaemonStopTimeout {
		t.Errorf("Kind = %v, want %v", err.Kind, DaemonStopTimeout)
	}
	if err.PID != 1234 {
		t.Errorf("PID = %d, want 1234", err.PID)
	}
}

func TestIs(t *testing.T) {
	err := NewUsage("bad flag combination")

	if !Is(err, Usage) {
		t.Error("Is(err, Usage) = false, want true")
	}
	if Is(err, Io) {
		t.Error("Is(err, Io) = true, want false")
	}
	if Is(errors.New("plain error"), Usage) {
		t.Error("Is(plain error, Usage) = true, want false")
	}
}

func TestHandleReturn(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, 0},
		{"usage error", NewUsage("bad args"), 2},
		{"drm error", NewDrmError("ATOMIC", errors.New("EBUSY")), 1},
		{"plain error", errors.New("unexpected"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandleReturn(tt.err); got != tt.want {
				t.Errorf("HandleReturn() = %d, want %d", got, tt.want)
			}
		})
	}
}
