package lox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
)

// Interpreter executes resolved scripts. One interpreter keeps its global
// scope across Interpret calls, which is what a REPL session needs. It is
// not safe for concurrent use.
type Interpreter struct {
	engine       *Engine
	globals      *Env
	env          *Env
	locals       Locals
	stdout       io.Writer
	ctx          context.Context
	source       string
	quota        int
	recursionCap int
	steps        int
	callStack    []callFrame
}

type callFrame struct {
	Function string
	Pos      Position
}

// Globals returns the outermost scope.
func (in *Interpreter) Globals() *Env {
	return in.globals
}

// Interpret runs script to completion or to its first runtime error. A
// runtime error is reported through the engine's Reporter and returned.
// Cancelling ctx stops execution before the next statement.
func (in *Interpreter) Interpret(ctx context.Context, script *Script) error {
	_, err := in.Eval(ctx, script)
	return err
}

// Eval is Interpret that also yields the value of the script's last
// top-level expression statement, or nil if it has none.
func (in *Interpreter) Eval(ctx context.Context, script *Script) (Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	in.ctx = ctx
	in.steps = 0
	in.callStack = in.callStack[:0]
	in.env = in.globals
	in.source = script.source
	maps.Copy(in.locals, script.Locals)

	last := NewNil()
	for _, stmt := range script.Program {
		val, _, err := in.execute(stmt)
		if err != nil {
			in.env = in.globals
			var re *RuntimeError
			if errors.As(err, &re) {
				if re.CodeFrame == "" {
					re.CodeFrame = formatCodeFrame(in.source, re.Token.Pos, len([]rune(re.Token.Lexeme)))
				}
				in.engine.config.Reporter.ReportRuntime(re)
			}
			return NewNil(), err
		}
		if _, ok := stmt.(*ExprStmt); ok {
			last = val
		} else {
			last = NewNil()
		}
	}
	return last, nil
}

func (in *Interpreter) step() error {
	in.steps++
	if in.quota > 0 && in.steps > in.quota {
		return fmt.Errorf("%w (%d)", errStepQuotaExceeded, in.quota)
	}
	if in.ctx != nil {
		select {
		case <-in.ctx.Done():
			return in.ctx.Err()
		default:
		}
	}
	return nil
}

func (in *Interpreter) pushFrame(function string, tok Token) error {
	if in.recursionCap > 0 && len(in.callStack) >= in.recursionCap {
		return in.errorAt(ErrStackOverflow, tok, "Stack overflow.")
	}
	in.callStack = append(in.callStack, callFrame{Function: function, Pos: tok.Pos})
	return nil
}

func (in *Interpreter) popFrame() {
	if len(in.callStack) == 0 {
		return
	}
	in.callStack = in.callStack[:len(in.callStack)-1]
}

func (in *Interpreter) errorAt(kind error, tok Token, format string, args ...any) error {
	re := newRuntimeError(kind, tok, format, args...)
	re.Frames = in.stackFrames(tok.Pos)
	return re
}

// withFrames attaches the current call stack to a runtime error raised
// outside the interpreter, such as by an environment lookup.
func (in *Interpreter) withFrames(err error) error {
	var re *RuntimeError
	if errors.As(err, &re) && re.Frames == nil {
		re.Frames = in.stackFrames(re.Token.Pos)
	}
	return err
}

// stackFrames lists the innermost frame first. Each caller frame carries
// the position of the call it is suspended at.
func (in *Interpreter) stackFrames(pos Position) []StackFrame {
	frames := make([]StackFrame, 0, len(in.callStack)+1)
	frames = append(frames, StackFrame{Function: in.frameName(len(in.callStack) - 1), Pos: pos})
	for i := len(in.callStack) - 1; i >= 0; i-- {
		frames = append(frames, StackFrame{Function: in.frameName(i - 1), Pos: in.callStack[i].Pos})
	}
	return frames
}

func (in *Interpreter) frameName(index int) string {
	if index < 0 {
		return "<script>"
	}
	return in.callStack[index].Function
}
