package lox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

const (
	defaultRecursionLimit = 2048
	// MaxRecursionLimit keeps the deepest permitted Lox call chain well
	// inside the Go stack, so exhausting it is always a runtime error.
	MaxRecursionLimit = 100_000
)

// Config controls interpreter bounds and where output and reports go.
type Config struct {
	// RecursionLimit caps active calls; exceeding it raises a stack
	// overflow runtime error.
	RecursionLimit int
	// StepQuota caps executed statements per Interpret call. Zero means
	// unlimited.
	StepQuota int
	Stdout    io.Writer
	Reporter  Reporter
	// Natives are registered after the built-in natives and may replace
	// them.
	Natives []*Native
}

// Engine compiles Lox source and creates interpreters sharing its
// configuration and native table.
type Engine struct {
	config  Config
	natives map[string]*Native
}

// NewEngine constructs an Engine with defaults filled in and the built-in
// natives registered.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.RecursionLimit < 0 {
		return nil, fmt.Errorf("lox: recursion limit must be positive, got %d", cfg.RecursionLimit)
	}
	if cfg.RecursionLimit > MaxRecursionLimit {
		return nil, fmt.Errorf("lox: recursion limit %d exceeds maximum %d", cfg.RecursionLimit, MaxRecursionLimit)
	}
	if cfg.StepQuota < 0 {
		return nil, fmt.Errorf("lox: step quota must not be negative, got %d", cfg.StepQuota)
	}
	if cfg.RecursionLimit == 0 {
		cfg.RecursionLimit = defaultRecursionLimit
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Reporter == nil {
		cfg.Reporter = discardReporter{}
	}

	engine := &Engine{
		config:  cfg,
		natives: make(map[string]*Native),
	}
	engine.RegisterNative("clock", 0, nativeClock)
	for _, native := range cfg.Natives {
		if native == nil || native.Name == "" || native.Fn == nil {
			return nil, fmt.Errorf("lox: invalid native %v", native)
		}
		engine.natives[native.Name] = native
	}
	return engine, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// NewNativeFunc wraps fn as a native function of the given arity.
func NewNativeFunc(name string, arity int, fn NativeFunc) *Native {
	return &Native{Name: name, arity: arity, Fn: fn}
}

// RegisterNative adds or replaces a global native function. Interpreters
// created afterwards see it.
func (e *Engine) RegisterNative(name string, arity int, fn NativeFunc) {
	e.natives[name] = NewNativeFunc(name, arity, fn)
}

// Natives lists registered native names in sorted order.
func (e *Engine) Natives() []string {
	names := make([]string, 0, len(e.natives))
	for name := range e.natives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) Config() Config {
	return e.config
}

// Script is a resolved program ready for execution.
type Script struct {
	Program []Statement
	Locals  Locals
	source  string
}

func (s *Script) Source() string {
	return s.source
}

// Compile scans, parses and resolves source. Resolution only runs on a
// syntactically valid program. Every diagnostic is sent to the configured
// Reporter and returned together as a *CompileError.
func (e *Engine) Compile(source string) (*Script, error) {
	program, diagnostics := Parse(source)
	var locals Locals
	if len(diagnostics) == 0 {
		locals, diagnostics = Resolve(program)
	}
	if len(diagnostics) > 0 {
		for _, d := range diagnostics {
			e.config.Reporter.ReportStatic(d)
		}
		return nil, &CompileError{Diagnostics: diagnostics, source: source}
	}
	return &Script{Program: program, Locals: locals, source: source}, nil
}

// NewInterpreter returns an interpreter whose globals hold the engine's
// natives. The globals persist across Interpret calls.
func (e *Engine) NewInterpreter() *Interpreter {
	globals := NewGlobalEnv()
	for name, native := range e.natives {
		globals.Define(name, NewNative(native))
	}
	return &Interpreter{
		engine:       e,
		globals:      globals,
		env:          globals,
		locals:       make(Locals),
		stdout:       e.config.Stdout,
		recursionCap: e.config.RecursionLimit,
		quota:        e.config.StepQuota,
	}
}

// Run compiles and interprets source in a fresh interpreter.
func (e *Engine) Run(ctx context.Context, source string) error {
	script, err := e.Compile(source)
	if err != nil {
		return err
	}
	return e.NewInterpreter().Interpret(ctx, script)
}

// IsRuntimeError reports whether err carries a *RuntimeError.
func IsRuntimeError(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re)
}

// IsCompileError reports whether err carries a *CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}
