// Package dpmserr defines the error taxonomy shared by both backends:
// a flat set of kinds, each carrying the context needed to render a
// one-line message and pick an exit code.
package dpmserr

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"dpms/internal/logger"
)

// Kind identifies a class of failure. Every Kind except Usage maps to
// exit code 1; Usage maps to exit code 2; success is 0.
type Kind int

const (
	Usage Kind = iota
	UnsupportedEnvironment
	ProtocolNotSupported
	DisplayNotFound
	AmbiguousDisplay
	NoDisplayFound
	DaemonStartFailed
	DaemonStopTimeout
	DrmError
	WaylandError
	Io
)

func (k Kind) String() string {
	switch k {
	case Usage:
		return "Usage"
	case UnsupportedEnvironment:
		return "UnsupportedEnvironment"
	case ProtocolNotSupported:
		return "ProtocolNotSupported"
	case DisplayNotFound:
		return "DisplayNotFound"
	case AmbiguousDisplay:
		return "AmbiguousDisplay"
	case NoDisplayFound:
		return "NoDisplayFound"
	case DaemonStartFailed:
		return "DaemonStartFailed"
	case DaemonStopTimeout:
		return "DaemonStopTimeout"
	case DrmError:
		return "DrmError"
	case WaylandError:
		return "WaylandError"
	case Io:
		return "Io"
	default:
		return "Unknown"
	}
}

// ExitCode returns the exit code a Kind maps to.
func (k Kind) ExitCode() int {
	if k == Usage {
		return 2
	}
	return 1
}

// Error is the concrete error type returned by every dpms component.
type Error struct {
	Kind       Kind
	Message    string
	Underlying error

	// Context fields, populated as the Kind requires.
	Name       string   // DisplayNotFound, AmbiguousDisplay
	Available  []string // DisplayNotFound
	Candidates []string // AmbiguousDisplay
	PID        int      // DaemonStopTimeout
	Syscall    string   // DrmError
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Underlying }

// ExitCode satisfies the exit-code lookup used by Handle/HandleReturn.
func (e *Error) ExitCode() int { return e.Kind.ExitCode() }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Underlying: err}
}

// NewUsage reports a malformed CLI invocation.
func NewUsage(message string) *Error {
	return &Error{Kind: Usage, Message: message}
}

// NewDisplayNotFound reports that no output matched the given name.
func NewDisplayNotFound(name string, available []string) *Error {
	return &Error{
		Kind:      DisplayNotFound,
		Message:   fmt.Sprintf("Display '%s' not found. Available: %s", name, strings.Join(available, ", ")),
		Name:      name,
		Available: available,
	}
}

// NewAmbiguousDisplay reports that more than one output matched a prefix.
func NewAmbiguousDisplay(name string, candidates []string) *Error {
	return &Error{
		Kind:       AmbiguousDisplay,
		Message:    fmt.Sprintf("Display '%s' is ambiguous, candidates: %s", name, strings.Join(candidates, ", ")),
		Name:       name,
		Candidates: candidates,
	}
}

// NewNoDisplayFound reports that enumeration of outputs yielded nothing.
func NewNoDisplayFound() *Error {
	return &Error{Kind: NoDisplayFound, Message: "no displays found"}
}

// NewUnsupportedEnvironment reports that neither backend is reachable.
func NewUnsupportedEnvironment(reason string) *Error {
	msg := "no supported display environment found"
	if reason != "" {
		msg = msg + ": " + reason
	}
	return &Error{Kind: UnsupportedEnvironment, Message: msg}
}

// NewProtocolNotSupported reports a missing wlr-output-power-management-v1.
func NewProtocolNotSupported() *Error {
	return &Error{Kind: ProtocolNotSupported, Message: "compositor does not support wlr-output-power-management-v1"}
}

// NewDaemonStartFailed reports a fork/exec or early daemon-init failure.
func NewDaemonStartFailed(reason string, err error) *Error {
	return &Error{Kind: DaemonStartFailed, Message: "failed to start daemon: " + reason, Underlying: err}
}

// NewDaemonStopTimeout reports that a signalled daemon did not exit in time.
func NewDaemonStopTimeout(pid int) *Error {
	return &Error{
		Kind:    DaemonStopTimeout,
		Message: fmt.Sprintf("daemon (pid %d) did not stop within the timeout", pid),
		PID:     pid,
	}
}

// NewDrmError reports an ioctl or atomic-commit failure.
func NewDrmError(syscallName string, err error) *Error {
	return &Error{
		Kind:       DrmError,
		Message:    fmt.Sprintf("DRM %s failed", syscallName),
		Syscall:    syscallName,
		Underlying: err,
	}
}

// NewWaylandError reports a wire I/O, parse, or protocol violation.
func NewWaylandError(context string, err error) *Error {
	return &Error{Kind: WaylandError, Message: "wayland: " + context, Underlying: err}
}

// NewIoError reports file/socket I/O failure with its path.
func NewIoError(path string, err error) *Error {
	return &Error{Kind: Io, Message: fmt.Sprintf("I/O error on %s", path), Underlying: err}
}

// Is compares two *Error values by Kind, mirroring errors.Is semantics
// for this package's sentinel-free taxonomy.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}

// HandleReturn logs err (if any) and returns the exit code the caller
// should use. It never calls os.Exit, making it safe for library code
// and for tests that need to inspect the resulting code.
func HandleReturn(err error) int {
	if err == nil {
		return 0
	}

	var code int
	var message string

	if e, ok := err.(*Error); ok {
		code = e.ExitCode()
		message = e.Error()
		if e.Underlying != nil {
			logger.Error().Err(e.Underlying).Str("kind", e.Kind.String()).Msg(e.Message)
		} else {
			logger.Error().Str("kind", e.Kind.String()).Msg(e.Message)
		}
	} else {
		code = 1
		message = err.Error()
		logger.Error().Msg(message)
	}

	red := color.New(color.FgRed, color.Bold)
	fmt.Fprint(os.Stderr, "\n")
	red.Fprint(os.Stderr, "Error: ")
	fmt.Fprintln(os.Stderr, message)

	return code
}
