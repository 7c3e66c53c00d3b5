package lox

import "testing"

func mustParse(t *testing.T, source string) []Statement {
	t.Helper()
	program, diags := Parse(source)
	if len(diags) != 0 {
		t.Fatalf("parse: %v", diags)
	}
	return program
}

func TestResolveDistances(t *testing.T) {
	program := mustParse(t, "var g = 0;\n{ var a = 1; { print a; print g; } }")
	locals, diags := Resolve(program)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	inner := program[1].(*BlockStmt).Statements[1].(*BlockStmt)
	a := inner.Statements[0].(*PrintStmt).Expr
	g := inner.Statements[1].(*PrintStmt).Expr

	if d, ok := locals[a]; !ok || d != 1 {
		t.Fatalf("expected a at distance 1, got %d (%v)", d, ok)
	}
	if _, ok := locals[g]; ok {
		t.Fatalf("globals must not be resolved")
	}
}

func TestResolveFunctionParams(t *testing.T) {
	program := mustParse(t, "fun f(x) { return x; }")
	locals, diags := Resolve(program)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	ret := program[0].(*FunctionStmt).Body[0].(*ReturnStmt)
	if d, ok := locals[ret.Value]; !ok || d != 0 {
		t.Fatalf("expected x at distance 0, got %d (%v)", d, ok)
	}
}

func TestResolveThisAndSuper(t *testing.T) {
	program := mustParse(t, "class A { m() {} }\nclass B < A { m() { super.m(); return this; } }")
	locals, diags := Resolve(program)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	body := program[1].(*ClassStmt).Methods[0].Body
	call := body[0].(*ExprStmt).Expr.(*CallExpr)
	super := call.Callee.(*SuperExpr)
	this := body[1].(*ReturnStmt).Value

	// method scope, then "this" scope, then "super" scope
	if d := locals[super]; d != 2 {
		t.Fatalf("expected super at distance 2, got %d", d)
	}
	if d := locals[this]; d != 1 {
		t.Fatalf("expected this at distance 1, got %d", d)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	program := mustParse(t, "fun f(a) { var b = a; { print b; } }")
	resolver := NewResolver()
	first, _ := resolver.Resolve(program)
	second, _ := resolver.Resolve(program)
	if len(first) != len(second) {
		t.Fatalf("resolution differs: %d vs %d entries", len(first), len(second))
	}
	for expr, d := range first {
		if second[expr] != d {
			t.Fatalf("distance changed for %T: %d vs %d", expr, d, second[expr])
		}
	}
}

func TestResolveDiagnostics(t *testing.T) {
	cases := []struct {
		source string
		want   []string
	}{
		{"return 1;", []string{"[line 1] Error at 'return': Can't return from top-level code."}},
		{"{ var a = 1; var a = 2; }", []string{"[line 1] Error at 'a': Already a variable with this name in this scope."}},
		{"fun f(a, a) {}", []string{"[line 1] Error at 'a': Already a variable with this name in this scope."}},
		{"{ var a = a; }", []string{"[line 1] Error at 'a': Can't read local variable in its own initializer."}},
		{"print this;", []string{"[line 1] Error at 'this': Can't use 'this' outside of a class."}},
		{"fun f() { super.m(); }", []string{"[line 1] Error at 'super': Can't use 'super' outside of a class."}},
		{"class A { m() { super.m(); } }", []string{"[line 1] Error at 'super': Can't use 'super' in a class with no superclass."}},
		{"class A < A {}", []string{"[line 1] Error at 'A': A class can't inherit from itself."}},
		{"return 1;\n{ var b; var b; }", []string{
			"[line 1] Error at 'return': Can't return from top-level code.",
			"[line 2] Error at 'b': Already a variable with this name in this scope.",
		}},
	}
	for _, tc := range cases {
		_, diags := Resolve(mustParse(t, tc.source))
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

func TestResolveAllowsGlobalRedeclarationAndInitReturn(t *testing.T) {
	sources := []string{
		"var a = 1; var a = a;",
		"class A { init() { return; } }",
		"class A { init() { return 1; } }",
		"fun f() { return; }",
	}
	for _, source := range sources {
		if _, diags := Resolve(mustParse(t, source)); len(diags) != 0 {
			t.Fatalf("%q: unexpected diagnostics %v", source, diags)
		}
	}
}
