package processor

import (
	"errors"
	"fmt"
	"go/token"
	"io"
)

// ErrorWithPosition is an error that has source position information associated
// with it. The position indicates the location in a source file where the error
// was encountered.
type ErrorWithPosition struct {
	err error
	pos token.Position
}

// Error implements the error interface. It includes position information in the
// returned message.
func (e *ErrorWithPosition) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.pos.Filename, e.pos.Line, e.pos.Column, e.err.Error())
}

// Underlying returns the underlying error.
func (e *ErrorWithPosition) Underlying() error {
	return e.err
}

// Unwrap returns the underlying error, for use with errors.Is and errors.As.
func (e *ErrorWithPosition) Unwrap() error {
	return e.err
}

// Pos returns the location in source where the underlying error was
// encountered.
func (e *ErrorWithPosition) Pos() token.Position {
	return e.pos
}

// NewErrorWithPosition returns the given error, but associates it with the
// given source code location.
func NewErrorWithPosition(pos token.Position, err error) *ErrorWithPosition {
	return &ErrorWithPosition{err: err, pos: pos}
}

// Severity indicates how serious a diagnostic is.
type Severity int

const (
	// SeverityInfo diagnostics are informational.
	SeverityInfo Severity = iota
	// SeverityWarning diagnostics describe input that was ignored.
	SeverityWarning
	// SeverityError diagnostics describe output that could not be produced.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("?%d?", int(s))
	}
}

// Diagnostic is a problem, or a note, reported while processing.
type Diagnostic struct {
	Severity Severity
	// Pos is the location in source that the diagnostic concerns. It is
	// invalid if the diagnostic does not concern a particular location.
	Pos token.Position
	Err error
}

// DiagnosticFor returns a diagnostic for the given error. If the error (or
// one that it wraps) is an *ErrorWithPosition, its position is used.
func DiagnosticFor(sev Severity, err error) Diagnostic {
	d := Diagnostic{Severity: sev, Err: err}
	var ep *ErrorWithPosition
	if errors.As(err, &ep) {
		d.Pos = ep.Pos()
		if ep == err {
			d.Err = ep.Underlying()
		}
	}
	return d
}

func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %v", d.Pos, d.Severity, d.Err)
	}
	return fmt.Sprintf("%s: %v", d.Severity, d.Err)
}

// Round describes one round of processing, which covers a single package.
type Round struct {
	// Number is the round's number, starting from 1.
	Number int
	// Package is the import path of the processed package.
	Package string
	// Outputs are the paths, as given to the OutputFactory, of the files
	// that were written successfully.
	Outputs []string
	// Diagnostics reported during the round.
	Diagnostics []Diagnostic
}

// track returns an output factory that records the outputs written
// successfully with the given factory.
func (r *Round) track(output OutputFactory) OutputFactory {
	return func(path string) (io.WriteCloser, error) {
		w, err := output(path)
		if err != nil {
			return nil, err
		}
		return &trackedWriter{w: w, path: path, round: r}, nil
	}
}

type trackedWriter struct {
	w      io.WriteCloser
	path   string
	round  *Round
	failed bool
}

func (t *trackedWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.failed = true
	}
	return n, err
}

func (t *trackedWriter) Close() error {
	err := t.w.Close()
	if err == nil && !t.failed {
		t.round.Outputs = append(t.round.Outputs, t.path)
	}
	return err
}

// Report is the result of executing a Config.
type Report struct {
	Rounds []Round
}

// Diagnostics returns the diagnostics of all rounds that are at least as
// severe as the given severity.
func (r *Report) Diagnostics(minSev Severity) []Diagnostic {
	var ds []Diagnostic
	for _, round := range r.Rounds {
		for _, d := range round.Diagnostics {
			if d.Severity >= minSev {
				ds = append(ds, d)
			}
		}
	}
	return ds
}

// HasErrors returns true if any round reported an error diagnostic.
func (r *Report) HasErrors() bool {
	return len(r.Diagnostics(SeverityError)) > 0
}

// Outputs returns the paths of all files written, across all rounds.
func (r *Report) Outputs() []string {
	var outs []string
	for _, round := range r.Rounds {
		outs = append(outs, round.Outputs...)
	}
	return outs
}
