package lox

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Runtime error kinds. A *RuntimeError unwraps to exactly one of these, so
// callers classify failures with errors.Is.
var (
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrOperandType       = errors.New("operand type")
	ErrNotCallable       = errors.New("not callable")
	ErrArityMismatch     = errors.New("arity mismatch")
	ErrNotAnInstance     = errors.New("not an instance")
	ErrUndefinedProperty = errors.New("undefined property")
	ErrNotAClass         = errors.New("not a class")
	ErrStackOverflow     = errors.New("stack overflow")

	errStepQuotaExceeded = errors.New("step quota exceeded")
)

const (
	runtimeErrorFrameHead = 8
	runtimeErrorFrameTail = 8
)

// Phase names the static pass that produced a diagnostic.
type Phase string

const (
	PhaseScan    Phase = "scan"
	PhaseParse   Phase = "parse"
	PhaseResolve Phase = "resolve"
)

// Diagnostic is a static (pre-execution) problem found while scanning,
// parsing or resolving.
type Diagnostic struct {
	Phase   Phase    `json:"phase" yaml:"phase"`
	Pos     Position `json:"pos" yaml:"pos"`
	Lexeme  string   `json:"lexeme,omitempty" yaml:"lexeme,omitempty"`
	AtEnd   bool     `json:"at_end,omitempty" yaml:"at_end,omitempty"`
	Message string   `json:"message" yaml:"message"`
}

func diagnosticAt(phase Phase, tok Token, message string) Diagnostic {
	return Diagnostic{
		Phase:   phase,
		Pos:     tok.Pos,
		Lexeme:  tok.Lexeme,
		AtEnd:   tok.Type == tokenEOF,
		Message: message,
	}
}

// Where renders the location clause used in reports: "", " at end" or
// " at 'name'".
func (d Diagnostic) Where() string {
	switch {
	case d.AtEnd:
		return " at end"
	case d.Phase == PhaseScan:
		return ""
	default:
		return fmt.Sprintf(" at '%s'", d.Lexeme)
	}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[line %d] Error%s: %s", d.Pos.Line, d.Where(), d.Message)
}

// CompileError aggregates every static diagnostic of one source text.
type CompileError struct {
	Diagnostics []Diagnostic
	source      string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	for i, d := range e.Diagnostics {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(d.String())
		if frame := formatCodeFrame(e.source, d.Pos, len([]rune(d.Lexeme))); frame != "" {
			b.WriteString("\n")
			b.WriteString(frame)
		}
	}
	return b.String()
}

type StackFrame struct {
	Function string
	Pos      Position
}

// RuntimeError is the single fatal error of an Interpret call.
type RuntimeError struct {
	Kind      error
	Token     Token
	Message   string
	CodeFrame string
	Frames    []StackFrame
}

func newRuntimeError(kind error, tok Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Token: tok, Message: fmt.Sprintf(format, args...)}
}

func (re *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(re.Message)
	fmt.Fprintf(&b, "\n[line %d]", re.Token.Pos.Line)
	if re.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(re.CodeFrame)
	}
	renderFrame := func(frame StackFrame) {
		if frame.Pos.Line > 0 {
			fmt.Fprintf(&b, "\n  at %s (line %d)", frame.Function, frame.Pos.Line)
		} else {
			fmt.Fprintf(&b, "\n  at %s", frame.Function)
		}
	}

	if len(re.Frames) <= runtimeErrorFrameHead+runtimeErrorFrameTail {
		for _, frame := range re.Frames {
			renderFrame(frame)
		}
		return b.String()
	}

	for _, frame := range re.Frames[:runtimeErrorFrameHead] {
		renderFrame(frame)
	}
	omitted := len(re.Frames) - (runtimeErrorFrameHead + runtimeErrorFrameTail)
	fmt.Fprintf(&b, "\n  ... %d frames omitted ...", omitted)
	for _, frame := range re.Frames[len(re.Frames)-runtimeErrorFrameTail:] {
		renderFrame(frame)
	}
	return b.String()
}

func (re *RuntimeError) Unwrap() error {
	return re.Kind
}

// Reporter receives every static diagnostic and the fatal runtime error of
// a run. Implementations must not retain the *RuntimeError beyond the call
// if they mutate it.
type Reporter interface {
	ReportStatic(Diagnostic)
	ReportRuntime(*RuntimeError)
}

// WriterReporter prints reports in the classic one-line format.
type WriterReporter struct {
	W io.Writer
}

func (r WriterReporter) ReportStatic(d Diagnostic) {
	fmt.Fprintln(r.W, d.String())
}

func (r WriterReporter) ReportRuntime(re *RuntimeError) {
	fmt.Fprintf(r.W, "%s\n[line %d]\n", re.Message, re.Token.Pos.Line)
}

// CollectingReporter records reports in memory.
type CollectingReporter struct {
	Static  []Diagnostic
	Runtime []*RuntimeError
}

func (r *CollectingReporter) ReportStatic(d Diagnostic) {
	r.Static = append(r.Static, d)
}

func (r *CollectingReporter) ReportRuntime(re *RuntimeError) {
	r.Runtime = append(r.Runtime, re)
}

type discardReporter struct{}

func (discardReporter) ReportStatic(Diagnostic)     {}
func (discardReporter) ReportRuntime(*RuntimeError) {}
