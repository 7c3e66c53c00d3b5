package conformance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tliron/commonlog"

	"github.com/digital-codex/jlox/lox"
)

var log = commonlog.GetLogger("lox.conformance")

// Result is the outcome of one case. An empty Failures list means the
// case passed.
type Result struct {
	Case     Case
	Stdout   []string
	Failures []string
	Err      error
	Duration time.Duration
}

func (r Result) Passed() bool {
	return len(r.Failures) == 0
}

// Run executes c in a fresh engine built from cfg. Stdout and Reporter in
// cfg are replaced by capturing implementations.
func Run(ctx context.Context, cfg lox.Config, c Case) Result {
	var stdout bytes.Buffer
	reporter := &lox.CollectingReporter{}
	cfg.Stdout = &stdout
	cfg.Reporter = reporter

	result := Result{Case: c}
	start := time.Now()

	engine, err := lox.NewEngine(cfg)
	if err != nil {
		result.Err = err
		result.Failures = append(result.Failures, fmt.Sprintf("engine: %v", err))
		return result
	}

	err = engine.Run(ctx, c.Source)
	result.Duration = time.Since(start)
	result.Err = err
	result.Stdout = splitLines(stdout.String())

	if err != nil && !lox.IsCompileError(err) && !lox.IsRuntimeError(err) {
		result.Failures = append(result.Failures, fmt.Sprintf("aborted: %v", err))
	}
	result.Failures = append(result.Failures, compareStdout(c.Stdout, result.Stdout)...)
	result.Failures = append(result.Failures, compareStatic(c.StaticErrors, reporter.Static)...)
	result.Failures = append(result.Failures, compareRuntime(c.RuntimeError, reporter.Runtime)...)

	log.Debugf("%s: %d failures", c.Name, len(result.Failures))
	return result
}

func splitLines(out string) []string {
	if out == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

func compareStdout(want, got []string) []string {
	var failures []string
	for i := 0; i < len(want) || i < len(got); i++ {
		switch {
		case i >= len(got):
			failures = append(failures, fmt.Sprintf("missing output %q", want[i]))
		case i >= len(want):
			failures = append(failures, fmt.Sprintf("unexpected output %q", got[i]))
		case want[i] != got[i]:
			failures = append(failures, fmt.Sprintf("expected output %q, got %q", want[i], got[i]))
		}
	}
	return failures
}

func compareStatic(want []string, got []lox.Diagnostic) []string {
	var failures []string
	seen := make(map[string]int, len(got))
	for _, d := range got {
		seen[d.String()]++
	}
	for _, w := range want {
		if seen[w] == 0 {
			failures = append(failures, fmt.Sprintf("missing static error %q", w))
			continue
		}
		seen[w]--
	}
	for _, d := range got {
		if seen[d.String()] > 0 {
			failures = append(failures, fmt.Sprintf("unexpected static error %q", d.String()))
			seen[d.String()]--
		}
	}
	return failures
}

func compareRuntime(want *RuntimeError, got []*lox.RuntimeError) []string {
	switch {
	case want == nil && len(got) == 0:
		return nil
	case want == nil:
		return []string{fmt.Sprintf("unexpected runtime error %q on line %d", got[0].Message, got[0].Token.Line())}
	case len(got) == 0:
		return []string{fmt.Sprintf("missing runtime error %q", want.Message)}
	}
	var failures []string
	if got[0].Message != want.Message {
		failures = append(failures, fmt.Sprintf("expected runtime error %q, got %q", want.Message, got[0].Message))
	}
	if want.Line > 0 && got[0].Token.Line() != want.Line {
		failures = append(failures, fmt.Sprintf("expected runtime error on line %d, got line %d", want.Line, got[0].Token.Line()))
	}
	return failures
}

// Report aggregates the results of a run.
type Report struct {
	Results []Result
	Passed  int
	Failed  int
}

// RunAll runs every case in order. It stops early only when ctx is done;
// the remaining cases are then absent from the report.
func RunAll(ctx context.Context, cfg lox.Config, cases []Case) Report {
	var report Report
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			log.Warningf("stopping after %d cases: %v", len(report.Results), err)
			break
		}
		result := Run(ctx, cfg, c)
		if result.Passed() {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Results = append(report.Results, result)
	}
	log.Infof("%d passed, %d failed", report.Passed, report.Failed)
	return report
}

func (r Report) OK() bool {
	return r.Failed == 0
}

// Write prints each failing case with its failures and a summary line.
// Passing cases are listed too when verbose is set.
func (r Report) Write(w io.Writer, verbose bool) error {
	for _, result := range r.Results {
		if result.Passed() {
			if verbose {
				if _, err := fmt.Fprintf(w, "PASS %s (%s)\n", result.Case.Name, result.Duration.Round(time.Microsecond)); err != nil {
					return err
				}
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "FAIL %s\n", result.Case.Name); err != nil {
			return err
		}
		for _, failure := range result.Failures {
			if _, err := fmt.Fprintf(w, "    %s\n", failure); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "%d passed, %d failed\n", r.Passed, r.Failed)
	return err
}
