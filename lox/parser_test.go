package lox

import (
	"strconv"
	"strings"
	"testing"
)

func parseExpr(t *testing.T, source string) Expression {
	t.Helper()
	program, diags := Parse(source + ";")
	if len(diags) != 0 {
		t.Fatalf("parse %q: %v", source, diags)
	}
	if len(program) != 1 {
		t.Fatalf("expected one statement, got %d", len(program))
	}
	stmt, ok := program[0].(*ExprStmt)
	if !ok {
		t.Fatalf("expected expression statement, got %T", program[0])
	}
	return stmt.Expr
}

func TestParseExpressionShapes(t *testing.T) {
	cases := []struct {
		source string
		want   string
	}{
		{"-123 * (45.67)", "(* (- 123) (group 45.67))"},
		{"1 + 2 * 3 == 7 and !false", "(and (== (+ 1 (* 2 3)) 7) (! false))"},
		{"a or b and c", "(or a (and b c))"},
		{"1 - 2 - 3", "(- (- 1 2) 3)"},
		{"a = b = 1", "(= a (= b 1))"},
		{"a.b(1, 2).c", "(. (call (. a b) 1 2) c)"},
		{"a.b = 3", "(= a b 3)"},
		{"super.m", "(super m)"},
		{"!!true", "(! (! true))"},
		{"1 < 2 <= 3", "(<= (< 1 2) 3)"},
	}
	for _, tc := range cases {
		if got := PrintExpr(parseExpr(t, tc.source)); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.source, tc.want, got)
		}
	}
}

func TestParseForDesugars(t *testing.T) {
	program, diags := Parse("for (var i = 0; i < 2; i = i + 1) print i;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := "(block (var i = 0) (while (< i 2) (block (print i) (; (= i (+ i 1))))))\n"
	if got := PrintProgram(program); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParseForWithoutClauses(t *testing.T) {
	program, diags := Parse("for (;;) print 1;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got := PrintProgram(program); got != "(while true (print 1))\n" {
		t.Fatalf("unexpected program %q", got)
	}
}

func TestParseClassAndFunction(t *testing.T) {
	program, diags := Parse("class B < A { init(x) { this.x = x; } }\nfun f(a, b) { return a; }")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := "(class B < A (method init (x) (; (= this x x))))\n(fun f (a b) (return a))\n"
	if got := PrintProgram(program); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		source string
		want   []string
	}{
		{"print 1", []string{"[line 1] Error at end: Expect ';' after value."}},
		{"var a = ;", []string{"[line 1] Error at ';': Expect expression."}},
		{"1 = 2;", []string{"[line 1] Error at '=': Invalid assignment target."}},
		{"a + b = c;", []string{"[line 1] Error at '=': Invalid assignment target."}},
		{"print ;\nvar = 1;\nprint 2;", []string{
			"[line 1] Error at ';': Expect expression.",
			"[line 2] Error at '=': Expect variable name.",
		}},
		{"class { }", []string{"[line 1] Error at '{': Expect class name."}},
		{"fun f(a b) {}", []string{"[line 1] Error at 'b': Expect ')' after parameters."}},
		{"super;", []string{"[line 1] Error at ';': Expect '.' after 'super'."}},
		{"{ print 1;", []string{"[line 1] Error at end: Expect '}' after block."}},
	}
	for _, tc := range cases {
		_, diags := Parse(tc.source)
		if len(diags) != len(tc.want) {
			t.Fatalf("%q: expected %d diagnostics, got %v", tc.source, len(tc.want), diags)
		}
		for i, want := range tc.want {
			if got := diags[i].String(); got != want {
				t.Fatalf("%q: expected %q, got %q", tc.source, want, got)
			}
		}
	}
}

func TestParseInterleavesScanAndParseDiagnostics(t *testing.T) {
	_, diags := Parse("print ;\nprint 1;\nprint @;\nvar = 2;")
	want := []string{
		"[line 1] Error at ';': Expect expression.",
		"[line 3] Error: Unexpected character.",
		"[line 3] Error at ';': Expect expression.",
		"[line 4] Error at '=': Expect variable name.",
	}
	if len(diags) != len(want) {
		t.Fatalf("expected %d diagnostics, got %v", len(want), diags)
	}
	for i, w := range want {
		if got := diags[i].String(); got != w {
			t.Fatalf("diagnostic %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestParseRecoversInsideBlocks(t *testing.T) {
	program, diags := Parse("{ var = 1; print 2; }\nprint 3;")
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	if got := PrintProgram(program); got != "(block (print 2))\n(print 3)\n" {
		t.Fatalf("unexpected program %q", got)
	}
}

func TestParseArgumentLimit(t *testing.T) {
	source := "f(" + strings.Repeat("1, ", maxArgs) + "1);"
	_, diags := Parse(source)
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	if diags[0].Message != "Can't have more than 255 arguments." {
		t.Fatalf("unexpected diagnostic %v", diags[0])
	}

	params := make([]string, maxArgs+1)
	for i := range params {
		params[i] = "p" + strconv.Itoa(i)
	}
	_, diags = Parse("fun f(" + strings.Join(params, ", ") + ") {}")
	if len(diags) != 1 || diags[0].Message != "Can't have more than 255 parameters." {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
}
