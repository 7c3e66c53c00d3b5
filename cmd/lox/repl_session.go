package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/digital-codex/jlox/lox"
)

// replSession is one interactive session: a single interpreter whose
// globals survive between entries.
type replSession struct {
	engine   *lox.Engine
	interp   *lox.Interpreter
	stdout   *bytes.Buffer
	reporter *lox.CollectingReporter
}

// replResult is the outcome of one entry. Output holds anything printed;
// Value is set when the entry ended in an expression statement.
type replResult struct {
	Output   string
	Value    string
	HasValue bool
	Err      error
}

func newREPLSession(cfg fileConfig) (*replSession, error) {
	s := &replSession{
		stdout:   new(bytes.Buffer),
		reporter: &lox.CollectingReporter{},
	}
	engine, err := lox.NewEngine(cfg.engineConfig(s.stdout, s.reporter))
	if err != nil {
		return nil, err
	}
	s.engine = engine
	s.interp = engine.NewInterpreter()
	return s, nil
}

// completeEntry adds the statement terminator a line of REPL input
// usually lacks. A trailing line comment stays after the inserted ';'.
func completeEntry(input string) string {
	trimmed := strings.TrimSpace(input)
	code, comment := splitLineComment(trimmed)
	code = strings.TrimSpace(code)
	if code == "" || strings.HasSuffix(code, ";") || strings.HasSuffix(code, "}") {
		return trimmed
	}
	if comment == "" {
		return code + ";"
	}
	return code + "; " + comment
}

// splitLineComment cuts line at the first "//" outside a string literal.
func splitLineComment(line string) (string, string) {
	inString := false
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '"':
			inString = !inString
		case !inString && line[i] == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i], line[i:]
		}
	}
	return line, ""
}

func (s *replSession) eval(ctx context.Context, input string) replResult {
	s.stdout.Reset()
	s.reporter.Static = s.reporter.Static[:0]
	s.reporter.Runtime = s.reporter.Runtime[:0]

	script, err := s.engine.Compile(completeEntry(input))
	if err != nil {
		return replResult{Err: err}
	}
	val, err := s.interp.Eval(ctx, script)
	res := replResult{Output: s.stdout.String(), Err: err}
	if err != nil {
		return res
	}
	if n := len(script.Program); n > 0 {
		if _, ok := script.Program[n-1].(*lox.ExprStmt); ok {
			res.Value = val.String()
			res.HasValue = true
		}
	}
	return res
}

func (s *replSession) reset() {
	s.interp = s.engine.NewInterpreter()
}

// globals returns the user-visible globals in name order, natives
// excluded.
func (s *replSession) globals() []replVar {
	natives := make(map[string]struct{})
	for _, name := range s.engine.Natives() {
		natives[name] = struct{}{}
	}
	var vars []replVar
	env := s.interp.Globals()
	for _, name := range env.Names() {
		val, _ := env.Lookup(name)
		if _, ok := natives[name]; ok && val.Kind() == lox.KindNative {
			continue
		}
		vars = append(vars, replVar{Name: name, Value: val.String()})
	}
	return vars
}

type replVar struct {
	Name  string
	Value string
}

// completions returns the keywords, natives and globals starting with
// prefix.
func (s *replSession) completions(prefix string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		if !strings.HasPrefix(name, prefix) {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, k := range lox.Keywords() {
		add(k)
	}
	for _, name := range s.engine.Natives() {
		add(name)
	}
	for _, name := range s.interp.Globals().Names() {
		add(name)
	}
	sort.Strings(out)
	return out
}

// runLineREPL is the prompt loop used when stdin is not a terminal. Each
// line is one entry; errors are printed and the session continues.
func runLineREPL(ctx context.Context, s *replSession, prompt string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		res := s.eval(ctx, line)
		fmt.Fprint(out, res.Output)
		switch {
		case res.Err != nil:
			fmt.Fprintln(out, res.Err)
		case res.HasValue:
			fmt.Fprintln(out, res.Value)
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
	}
}
