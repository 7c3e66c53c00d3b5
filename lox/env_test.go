package lox

import (
	"errors"
	"testing"
)

func ident(name string) Token {
	return Token{Type: tokenIdent, Lexeme: name, Pos: Position{Line: 1, Column: 1}}
}

func TestEnvGetAndAssignWalkOutward(t *testing.T) {
	globals := NewGlobalEnv()
	globals.Define("a", NewNumber(1))
	inner := newEnv(newEnv(globals))

	val, err := inner.Get(ident("a"))
	if err != nil || val.Number() != 1 {
		t.Fatalf("expected 1, got %v (%v)", val, err)
	}

	if err := inner.Assign(ident("a"), NewNumber(2)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if val, _ := globals.Lookup("a"); val.Number() != 2 {
		t.Fatalf("expected global to be updated, got %v", val)
	}
	if _, ok := inner.Lookup("a"); ok {
		t.Fatalf("assign must not create a binding in the inner scope")
	}
}

func TestEnvUndefinedVariable(t *testing.T) {
	env := NewGlobalEnv()
	_, err := env.Get(ident("missing"))
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected ErrUndefinedVariable, got %v", err)
	}
	var re *RuntimeError
	if !errors.As(err, &re) || re.Message != "Undefined variable 'missing'." {
		t.Fatalf("unexpected error %v", err)
	}

	if err := env.Assign(ident("missing"), NewNil()); !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected ErrUndefinedVariable on assign, got %v", err)
	}
}

func TestEnvDistanceAccess(t *testing.T) {
	globals := NewGlobalEnv()
	middle := newEnv(globals)
	middle.Define("x", NewString("middle"))
	inner := newEnv(middle)
	inner.Define("x", NewString("inner"))

	if got := inner.GetAt(1, "x").String(); got != "middle" {
		t.Fatalf("expected middle, got %s", got)
	}
	inner.AssignAt(1, ident("x"), NewString("changed"))
	if got := middle.GetAt(0, "x").String(); got != "changed" {
		t.Fatalf("expected changed, got %s", got)
	}
	if inner.Ancestor(2) != globals {
		t.Fatalf("expected ancestor 2 to be globals")
	}
}

func TestEnvAncestorPastGlobalsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	newEnv(NewGlobalEnv()).Ancestor(2)
}

func TestEnvDefineShadowsAndRedefines(t *testing.T) {
	env := NewGlobalEnv()
	env.Define("a", NewNumber(1))
	env.Define("a", NewNumber(2))
	if val, _ := env.Get(ident("a")); val.Number() != 2 {
		t.Fatalf("expected redefinition to win, got %v", val)
	}
	if names := env.Names(); len(names) != 1 || names[0] != "a" {
		t.Fatalf("unexpected names %v", names)
	}
}
