package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/volley/internal/compiler"
	"github.com/roach88/volley/internal/loader"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation or scenario failure
	ExitCommandError = 2 // Command error (invalid paths, unreadable database, etc.)
)

// ErrCodeCompile is reported for configuration errors found while
// compiling. Semantic validation errors carry their own E2xx code, and
// discovery errors their loader code.
const ErrCodeCompile = "E101"

// ExitError is an error with a process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are not
// ExitErrors map to ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
	Line    int    `json:"line,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(e *CLIError) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  e,
		})
	}

	switch {
	case e.Source != "" && e.Line > 0:
		fmt.Fprintf(f.Writer, "Error [%s]: %s:%d: %s\n", e.Code, e.Source, e.Line, e.Message)
	case e.Source != "":
		fmt.Fprintf(f.Writer, "Error [%s]: %s: %s\n", e.Code, e.Source, e.Message)
	default:
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", e.Code, e.Message)
	}
	if f.Verbose && e.Details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", e.Details)
	}
	return nil
}

// VerboseLog writes a line to the diagnostic writer when verbose.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// describeError maps a load or compile error to its CLI form. For joined
// validation errors only the first one is described.
func describeError(err error) *CLIError {
	var loadErr *loader.LoadError
	if errors.As(err, &loadErr) {
		e := &CLIError{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			e.Source = loadErr.Pos.Filename()
			e.Line = loadErr.Pos.Line()
		}
		return e
	}

	var verr compiler.ValidationError
	if errors.As(err, &verr) {
		return &CLIError{
			Code:    verr.Code,
			Message: verr.Field + ": " + verr.Message,
			Source:  verr.Source,
		}
	}

	var cerr *compiler.CompileError
	if errors.As(err, &cerr) {
		e := &CLIError{Code: ErrCodeCompile, Message: cerr.Field + ": " + cerr.Message, Source: cerr.Source}
		if cerr.Pos.IsValid() {
			e.Line = cerr.Pos.Line()
			if e.Source == "" {
				e.Source = cerr.Pos.Filename()
			}
		}
		return e
	}

	return &CLIError{Code: loader.ErrCodeGeneric, Message: err.Error()}
}
