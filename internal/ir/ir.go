// Package ir provides the value-typed expression and statement trees that
// the schedule realizer builds and mutates. Every node is an immutable,
// pointer-identity-comparable value; rebuilding a subtree always allocates
// a fresh node, so a Map pass can use pointer equality as a cheap "did this
// child change" signal instead of deep comparison.
package ir

// Print pretty-prints a statement tree the way the synthesizer's callers
// expect to see it in diagnostics: one statement per line, nested bodies
// indented two spaces, expressions in their usual infix form.
func Print(s Stmt) string {
	var b printer
	b.stmt(s, 0)
	return b.String()
}

// PrintExpr pretty-prints a single expression.
func PrintExpr(e Expr) string {
	var b printer
	return b.expr(e)
}
