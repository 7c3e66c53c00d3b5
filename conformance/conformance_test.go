package conformance

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/digital-codex/jlox/lox"
)

func runCases(t *testing.T, cases []Case) {
	t.Helper()
	if len(cases) == 0 {
		t.Fatalf("no cases loaded")
	}
	report := RunAll(context.Background(), lox.Config{}, cases)
	if !report.OK() {
		var b strings.Builder
		_ = report.Write(&b, false)
		t.Fatalf("conformance failures:\n%s", b.String())
	}
	if report.Passed != len(cases) {
		t.Fatalf("expected %d passes, got %d", len(cases), report.Passed)
	}
}

func TestScriptCorpus(t *testing.T) {
	cases, err := Load(filepath.Join("testdata", "scripts"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	runCases(t, cases)
}

func TestScriptCorpusCoversCategories(t *testing.T) {
	root := filepath.Join("testdata", "scripts")
	categories := []string{
		"assignment", "block", "bool", "call", "class", "closure", "comments",
		"constructor", "field", "for", "function", "if", "inheritance",
		"logical_operator", "method", "nil", "number", "operator", "parser",
		"resolver", "return", "runtime", "scanner", "string", "super", "this",
		"unary", "variable", "while",
	}
	for _, category := range categories {
		matches, err := filepath.Glob(filepath.Join(root, category, "*.lox"))
		if err != nil {
			t.Fatalf("glob %s: %v", category, err)
		}
		if len(matches) == 0 {
			t.Errorf("no scripts for category %q", category)
		}
	}
}

func TestSuiteFile(t *testing.T) {
	cases, err := Load(filepath.Join("testdata", "suite.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	runCases(t, cases)
}

func TestParseScriptExpectations(t *testing.T) {
	c, err := ParseScript("inline", `print 1; // expect: 1
print "";  // expect:
// [line 7] Error at 'x': Something.
var a; // Error at 'a': Other.
`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(c.Stdout, []string{"1", ""}) {
		t.Fatalf("unexpected stdout %q", c.Stdout)
	}
	want := []string{"[line 7] Error at 'x': Something.", "[line 4] Error at 'a': Other."}
	if !reflect.DeepEqual(c.StaticErrors, want) {
		t.Fatalf("unexpected static errors %q", c.StaticErrors)
	}

	c, err = ParseScript("runtime", "print 1;\nprint nil + 1; // expect runtime error: Boom.\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.RuntimeError == nil || c.RuntimeError.Message != "Boom." || c.RuntimeError.Line != 2 {
		t.Fatalf("unexpected runtime expectation %+v", c.RuntimeError)
	}
}

func TestParseScriptRejectsMixedExpectations(t *testing.T) {
	_, err := ParseScript("mixed", "x; // expect runtime error: A.\ny; // Error at 'y': B.\n")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadSuiteRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("cases:\n  - name: typo\n    source: print 1;\n    stdot: [\"1\"]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSuite(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestRunReportsMismatches(t *testing.T) {
	result := Run(context.Background(), lox.Config{}, Case{
		Name:   "wrong",
		Source: "print 1;\nprint 2;\nprint nil + 1;",
		Stdout: []string{"1", "3", "4"},
	})
	if result.Passed() {
		t.Fatalf("expected failures")
	}
	want := []string{
		`expected output "3", got "2"`,
		`missing output "4"`,
		`unexpected runtime error "Operands must be two numbers or two strings." on line 3`,
	}
	if !reflect.DeepEqual(result.Failures, want) {
		t.Fatalf("unexpected failures %q", result.Failures)
	}
}

func TestRunReportsAbort(t *testing.T) {
	result := Run(context.Background(), lox.Config{StepQuota: 10}, Case{
		Name:   "spin",
		Source: "while (true) {}",
	})
	if result.Passed() || !strings.HasPrefix(result.Failures[0], "aborted:") {
		t.Fatalf("expected abort failure, got %q", result.Failures)
	}
}

func TestReportWrite(t *testing.T) {
	report := Report{
		Results: []Result{
			{Case: Case{Name: "good"}},
			{Case: Case{Name: "bad"}, Failures: []string{"missing output \"x\""}},
		},
		Passed: 1,
		Failed: 1,
	}
	var b strings.Builder
	if err := report.Write(&b, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "FAIL bad\n    missing output \"x\"\n1 passed, 1 failed\n"
	if b.String() != want {
		t.Fatalf("expected %q, got %q", want, b.String())
	}
}
