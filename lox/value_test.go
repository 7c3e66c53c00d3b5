package lox

import (
	"math"
	"testing"
)

func TestValueTruthy(t *testing.T) {
	cases := []struct {
		val  Value
		want bool
	}{
		{NewNil(), false},
		{Value{}, false},
		{NewBool(false), false},
		{NewBool(true), true},
		{NewNumber(0), true},
		{NewString(""), true},
	}
	for _, tc := range cases {
		if got := tc.val.Truthy(); got != tc.want {
			t.Fatalf("%v: expected %v, got %v", tc.val, tc.want, got)
		}
	}
}

func TestValueEqual(t *testing.T) {
	class := &Class{Name: "A"}
	if !NewNil().Equal(NewNil()) {
		t.Fatalf("nil must equal nil")
	}
	if NewNil().Equal(NewBool(false)) {
		t.Fatalf("nil must not equal false")
	}
	if NewNumber(1).Equal(NewString("1")) {
		t.Fatalf("values of different kinds must differ")
	}
	if nan := NewNumber(math.NaN()); nan.Equal(nan) {
		t.Fatalf("NaN must not equal itself")
	}
	if !NewString("a").Equal(NewString("a")) {
		t.Fatalf("strings compare by content")
	}
	if !NewClass(class).Equal(NewClass(class)) || NewClass(class).Equal(NewClass(&Class{Name: "A"})) {
		t.Fatalf("classes compare by identity")
	}
}

func TestValueString(t *testing.T) {
	decl := &FunctionStmt{Name: ident("add")}
	class := &Class{Name: "Point"}
	cases := []struct {
		val  Value
		want string
	}{
		{NewNil(), "nil"},
		{NewBool(true), "true"},
		{NewNumber(3), "3"},
		{NewNumber(2.5), "2.5"},
		{NewNumber(math.Copysign(0, -1)), "-0"},
		{NewNumber(math.Inf(1)), "Infinity"},
		{NewNumber(math.Inf(-1)), "-Infinity"},
		{NewNumber(math.NaN()), "NaN"},
		{NewString("hi"), "hi"},
		{NewFunction(&Function{Declaration: decl}), "<fn add>"},
		{NewNative(NewNativeFunc("clock", 0, nativeClock)), "<native fn>"},
		{NewClass(class), "Point"},
		{NewInstance(&Instance{Class: class}), "Point instance"},
	}
	for _, tc := range cases {
		if got := tc.val.String(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
