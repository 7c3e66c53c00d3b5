package lox

import "time"

// nativeClock returns wall-clock seconds since the Unix epoch.
func nativeClock(_ *Interpreter, _ []Value) (Value, error) {
	return NewNumber(float64(time.Now().UnixNano()) / float64(time.Second)), nil
}
