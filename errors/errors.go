package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseStartup Phase = "startup" // arena and engine bootstrap
	PhaseHost    Phase = "host"    // host environment bridge
	PhaseLex     Phase = "lex"     // opening and tokenizing source
	PhaseParse   Phase = "parse"   // building the parse tree
	PhaseCompile Phase = "compile" // lowering to bytecode
	PhaseExecute Phase = "execute" // running compiled code
	PhaseConfig  Phase = "config"  // launcher registry
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation     Kind = "allocation"
	KindInvalidInput   Kind = "invalid_input"
	KindReleased       Kind = "released"
	KindAlreadyBound   Kind = "already_bound"
	KindUnreadable     Kind = "unreadable"
	KindConsumed       Kind = "consumed"
	KindSyntax         Kind = "syntax"
	KindInvalidProgram Kind = "invalid_program"
	KindUncaught       Kind = "uncaught"
	KindExit           Kind = "exit"
	KindNoCapturePoint Kind = "no_capture_point"
	KindNotInitialized Kind = "not_initialized"
)

// EOF is the Line value of positions at the end of input.
const EOF = -1

// Error is the structured error type used throughout the host
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Source string
	Detail string
	Line   int
	Column int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Source != "" {
		b.WriteString(" in ")
		b.WriteString(e.Position())
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Position renders the source position as source:line:column, source at EOF,
// or the bare source name when no line is known.
func (e *Error) Position() string {
	switch {
	case e.Line == EOF:
		return e.Source + " at EOF"
	case e.Line > 0 && e.Column > 0:
		return e.Source + ":" + strconv.Itoa(e.Line) + ":" + strconv.Itoa(e.Column)
	case e.Line > 0:
		return e.Source + ":" + strconv.Itoa(e.Line)
	}
	return e.Source
}

// Diagnostic renders the error the way a user sees it on the diagnostic
// stream: position first, then the detail.
func (e *Error) Diagnostic() string {
	detail := e.Detail
	if detail == "" {
		detail = string(e.Kind)
		if e.Cause != nil {
			detail = e.Cause.Error()
		}
	}
	if e.Source == "" {
		return detail
	}
	return e.Position() + ": " + detail
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Fatal reports whether the error must terminate the process: allocation
// failures and control transfers that found no capture point.
func (e *Error) Fatal() bool {
	return e.Kind == KindAllocation || e.Kind == KindNoCapturePoint
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Source sets the origin tag of the guest source
func (b *Builder) Source(source string) *Builder {
	b.err.Source = source
	return b
}

// At sets the line and column
func (b *Builder) At(line, column int) *Builder {
	b.err.Line = line
	b.err.Column = column
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message verbatim
func (b *Builder) Detail(msg string) *Builder {
	b.err.Detail = msg
	return b
}

// Detailf sets the detail message from a format string
func (b *Builder) Detailf(format string, args ...any) *Builder {
	b.err.Detail = fmt.Sprintf(format, args...)
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to reserve %d bytes", size),
		Value:  size,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unreadable creates a lex error for source text that could not be opened
func Unreadable(source string, cause error) *Error {
	return &Error{
		Phase:  PhaseLex,
		Kind:   KindUnreadable,
		Source: source,
		Detail: "could not open source",
		Cause:  cause,
	}
}

// Consumed creates a lex error for a source unit submitted a second time
func Consumed(source string) *Error {
	return &Error{
		Phase:  PhaseLex,
		Kind:   KindConsumed,
		Source: source,
		Detail: "source unit already executed",
	}
}

// Syntax creates a parse error positioned at the offending token
func Syntax(source string, line, column int, msg string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindSyntax,
		Source: source,
		Line:   line,
		Column: column,
		Detail: msg,
	}
}

// InvalidProgram creates a compile error
func InvalidProgram(source string, cause error) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindInvalidProgram,
		Source: source,
		Cause:  cause,
	}
}

// NoCapturePoint creates the fatal error for a non-local transfer that
// reached the host without a protected call to receive it.
func NoCapturePoint(value any) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindNoCapturePoint,
		Detail: fmt.Sprintf("uncaught NLR %v", value),
		Value:  value,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsFatal reports whether err, or any error it wraps, is a fatal *Error.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal()
	}
	return false
}
