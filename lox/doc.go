// Package lox implements a tree-walking interpreter for the Lox language.
// Source passes through three static phases before it runs:
//   - Scanning turns text into tokens; `//` comments run to end of line.
//   - Parsing builds statements and expressions, recovering at statement
//     boundaries so one run reports several syntax errors.
//   - Resolving binds every local variable use to the scope that declares
//     it and rejects misplaced return, this and super.
//
// An Engine compiles source into a Script and creates Interpreters. An
// Interpreter keeps its globals between runs, stops at the first runtime
// error, and honours context cancellation between statements.
package lox
