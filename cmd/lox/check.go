package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/digital-codex/jlox/lox"
)

// lintWarning is a non-fatal finding. Programs with warnings still run.
type lintWarning struct {
	Function string       `json:"function" yaml:"function"`
	Pos      lox.Position `json:"pos" yaml:"pos"`
	Message  string       `json:"message" yaml:"message"`
}

// checkReport is the machine-readable form of a check run.
type checkReport struct {
	Path        string           `json:"path" yaml:"path"`
	Diagnostics []lox.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Warnings    []lintWarning    `json:"warnings" yaml:"warnings"`
}

func checkCommand(args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	format := fs.String("format", "text", "output format: text, json or yaml")
	lint := fs.Bool("lint", false, "also report unreachable statements")
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox check: %v", err)
	}
	switch *format {
	case "text", "json", "yaml":
	default:
		return usageErrorf("lox check: unknown format %q", *format)
	}

	path, source, err := readScriptArg("check", fs.Args())
	if err != nil {
		return err
	}
	report := checkSource(path, source, *lint)
	if err := writeCheckReport(os.Stdout, *format, report); err != nil {
		return err
	}
	if len(report.Diagnostics) > 0 {
		return &exitError{code: exitDataErr, err: fmt.Errorf("%d static error(s)", len(report.Diagnostics)), reported: true}
	}
	if len(report.Warnings) > 0 {
		return &exitError{code: 1, err: fmt.Errorf("lint found %d issue(s)", len(report.Warnings)), reported: *format != "text"}
	}
	return nil
}

func checkSource(path, source string, lint bool) checkReport {
	report := checkReport{Path: path, Diagnostics: []lox.Diagnostic{}, Warnings: []lintWarning{}}
	collector := &lox.CollectingReporter{}
	engine := lox.MustNewEngine(lox.Config{Reporter: collector})
	script, err := engine.Compile(source)
	report.Diagnostics = append(report.Diagnostics, collector.Static...)
	if err != nil || !lint {
		return report
	}
	report.Warnings = analyzeScriptWarnings(script)
	return report
}

func writeCheckReport(w io.Writer, format string, report checkReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(report.Diagnostics) == 0 && len(report.Warnings) == 0 {
		_, err := fmt.Fprintln(w, "No issues found")
		return err
	}
	for _, d := range report.Diagnostics {
		if _, err := fmt.Fprintln(w, d.String()); err != nil {
			return err
		}
	}
	for _, warning := range report.Warnings {
		line, column := warning.Pos.Line, warning.Pos.Column
		if line <= 0 {
			line = 1
		}
		if column <= 0 {
			column = 1
		}
		if _, err := fmt.Fprintf(w, "%s:%d:%d: %s (%s)\n", report.Path, line, column, warning.Message, warning.Function); err != nil {
			return err
		}
	}
	return nil
}

func analyzeScriptWarnings(script *lox.Script) []lintWarning {
	warnings := make([]lintWarning, 0)
	lintStatements("<script>", script.Program, &warnings)

	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Pos.Line != warnings[j].Pos.Line {
			return warnings[i].Pos.Line < warnings[j].Pos.Line
		}
		if warnings[i].Pos.Column != warnings[j].Pos.Column {
			return warnings[i].Pos.Column < warnings[j].Pos.Column
		}
		return warnings[i].Function < warnings[j].Function
	})
	return warnings
}

// lintStatements reports statements following one that always returns and
// tells the caller whether the list itself always returns.
func lintStatements(function string, statements []lox.Statement, warnings *[]lintWarning) bool {
	terminated := false
	for _, stmt := range statements {
		if terminated {
			*warnings = append(*warnings, lintWarning{
				Function: function,
				Pos:      stmt.Pos(),
				Message:  "unreachable statement",
			})
			continue
		}
		if statementTerminates(function, stmt, warnings) {
			terminated = true
		}
	}
	return terminated
}

func statementTerminates(function string, stmt lox.Statement, warnings *[]lintWarning) bool {
	switch typed := stmt.(type) {
	case *lox.ReturnStmt:
		return true
	case *lox.BlockStmt:
		return lintStatements(function, typed.Statements, warnings)
	case *lox.IfStmt:
		thenTerminated := statementTerminates(function, typed.Then, warnings)
		if typed.Else == nil {
			return false
		}
		elseTerminated := statementTerminates(function, typed.Else, warnings)
		return thenTerminated && elseTerminated
	case *lox.WhileStmt:
		statementTerminates(function, typed.Body, warnings)
		return false
	case *lox.FunctionStmt:
		lintStatements(typed.Name.Lexeme, typed.Body, warnings)
		return false
	case *lox.ClassStmt:
		for _, method := range typed.Methods {
			lintStatements(typed.Name.Lexeme+"."+method.Name.Lexeme, method.Body, warnings)
		}
		return false
	default:
		return false
	}
}

func astCommand(args []string) error {
	fs := flag.NewFlagSet("ast", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	if err := fs.Parse(args); err != nil {
		return usageErrorf("lox ast: %v", err)
	}
	_, source, err := readScriptArg("ast", fs.Args())
	if err != nil {
		return err
	}
	program, diagnostics := lox.Parse(source)
	if len(diagnostics) > 0 {
		for _, d := range diagnostics {
			fmt.Fprintln(os.Stderr, d.String())
		}
		return &exitError{code: exitDataErr, err: fmt.Errorf("%d parse error(s)", len(diagnostics)), reported: true}
	}
	fmt.Print(lox.PrintProgram(program))
	return nil
}
