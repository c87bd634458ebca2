// Package parser_test contains tests for the moon parser.
//
// Most tests feed a source snippet through the lexer and parser and inspect
// the resulting AST. Compact String() forms are used for precedence checks;
// type assertions are used where a field matters.
package parser_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/metaphox/moon-lang/ast"
	"github.com/metaphox/moon-lang/lexer"
	"github.com/metaphox/moon-lang/parser"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

// parse runs the full pipeline and fails the test on error.
func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseString(src)
	if err != nil {
		t.Fatalf("parse %q: unexpected error: %v", src, err)
	}
	return prog
}

// parseErr expects the parse to fail and returns the error.
func parseErr(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.ParseString(src)
	if err == nil {
		t.Fatalf("parse %q: expected an error, got %s", src, prog)
	}
	return err
}

// syntaxErr expects a *parser.SyntaxError.
func syntaxErr(t *testing.T, src string) *parser.SyntaxError {
	t.Helper()
	err := parseErr(t, src)
	var se *parser.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("parse %q: expected *SyntaxError, got %T: %v", src, err, err)
	}
	return se
}

// single parses src and returns its only statement.
func single(t *testing.T, src string) ast.Statement {
	t.Helper()
	prog := parse(t, src)
	if len(prog.Statements) != 1 {
		t.Fatalf("parse %q: expected 1 statement, got %d:\n%s", src, len(prog.Statements), prog)
	}
	return prog.Statements[0]
}

// assertAs type-asserts v to T and fails the test otherwise.
func assertAs[T any](t *testing.T, v any) T {
	t.Helper()
	out, ok := v.(T)
	if !ok {
		var zero T
		t.Fatalf("expected %T, got %T (%v)", zero, v, v)
	}
	return out
}

// ── Precedence and associativity ──────────────────────────────────────────────

func TestPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a or b and c", "(a or (b and c))"},
		{"a and b or c", "((a and b) or c)"},
		{"a or b or c", "((a or b) or c)"},
		{"a .. b .. c", "(a .. (b .. c))"},
		{"a ^ b ^ c", "(a ^ (b ^ c))"},
		{"a - b - c", "((a - b) - c)"},
		{"a + b * c", "(a + (b * c))"},
		{"a * b + c", "((a * b) + c)"},
		{"a / b * c", "((a / b) * c)"},
		{"a == b .. c", "(a == (b .. c))"},
		{"a .. b + c", "(a .. (b + c))"},
		{"a < b and c > d", "((a < b) and (c > d))"},
		{"a ~= b", "(a ~= b)"},
		{"a != b", "(a != b)"},
		{"a <= b == c >= d", "(((a <= b) == c) >= d)"},
		{"-a ^ b", "(- (a ^ b))"},
		{"-a * b", "((- a) * b)"},
		{"not a and b", "((not a) and b)"},
		{"not a == b", "((not a) == b)"},
		{"-f x", "(- f(x))"},
		{"a ^ -b", "(a ^ (- b))"},
		{"(a + b) * c", "(((a + b)) * c)"},
		{"x=-1", "x = (- 1)"},
		{"x = 1 -1", "x = (1 - 1)"},
		{"x = 2 *b", "x = (2 * b)"},
		{`x = "s" -1`, `x = ("s" - 1)`},
		{"x = {a} -1", "x = ({a} - 1)"},
		{"x = a -1", "x = a((- 1))"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := single(t, tt.input).String()
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

// TestBinaryRoot checks the root operator of `a or b and c`.
func TestBinaryRoot(t *testing.T) {
	bin := assertAs[*ast.BinaryExpr](t, single(t, "a or b and c"))
	if bin.Operator.Literal != "or" {
		t.Fatalf("root operator: got %q, want %q", bin.Operator.Literal, "or")
	}
	rhs := assertAs[*ast.BinaryExpr](t, bin.Rhs)
	if rhs.Operator.Literal != "and" {
		t.Fatalf("rhs operator: got %q, want %q", rhs.Operator.Literal, "and")
	}
}

func TestMinusBinaryVersusUnary(t *testing.T) {
	bin := assertAs[*ast.BinaryExpr](t, single(t, "a - b"))
	if bin.Operator.Type != ast.MINUS {
		t.Errorf("a - b: operator type: got %s", bin.Operator.Type)
	}

	call := assertAs[*ast.CallExpr](t, single(t, "f -b"))
	args := assertAs[*ast.ArgumentList](t, call.Arguments)
	if args.Parenthesized() || len(args.Args) != 1 {
		t.Fatalf("f -b: expected one bare argument, got %s", args)
	}
	un := assertAs[*ast.UnaryExpr](t, args.Args[0])
	if un.Operator.Literal != "-" {
		t.Errorf("f -b: unary operator: got %q", un.Operator.Literal)
	}
	if assertAs[*ast.Identifier](t, un.Operand).Name != "b" {
		t.Errorf("f -b: operand: got %s", un.Operand)
	}
}

// ── Call forms ────────────────────────────────────────────────────────────────

func TestCallForms(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"f!", "f()"},
		{`f"text"`, `f("text")`},
		{`f 'text'`, `f('text')`},
		{"f(a, b)", "f(a, b)"},
		{"f()", "f()"},
		{"f a, b", "f(a, b)"},
		{`f"a""b"`, `f("a")("b")`},
		{"f!!", "f()()"},
		{"f(a)(b)", "f(a)(b)"},
		{"f! x", "f()(x)"},
		{"f (a)", "f((a))"},
		{"f g x", "f(g(x))"},
		{"f a + b", "f((a + b))"},
		{"(f) x", "(f)(x)"},
		{"1 + f x", "(1 + f(x))"},
		{"f! + 1", "(f() + 1)"},
		{"f *list", "f((* list))"},
		{"print not done", "print((not done))"},
		{"@update @@count", "@update(@@count)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := single(t, tt.input).String()
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBangCall(t *testing.T) {
	call := assertAs[*ast.CallExpr](t, single(t, "f!"))
	if call.Bang == nil || call.Arguments != nil {
		t.Fatalf("expected zero-argument bang call, got %+v", call)
	}
	var names []string
	for _, f := range call.Fields() {
		names = append(names, f.Name)
	}
	if fmt.Sprint(names) != "[function bang]" {
		t.Errorf("fields: got %v", names)
	}
}

func TestStringCall(t *testing.T) {
	call := assertAs[*ast.CallExpr](t, single(t, `f"text"`))
	str := assertAs[*ast.StringLiteral](t, call.Arguments)
	if str.Value != "text" || str.Token.Literal != `"text"` {
		t.Errorf("string argument: value %q literal %q", str.Value, str.Token.Literal)
	}

	// A spaced string is a bare argument list, not the immediate form.
	call = assertAs[*ast.CallExpr](t, single(t, `f "text"`))
	args := assertAs[*ast.ArgumentList](t, call.Arguments)
	assertAs[*ast.StringLiteral](t, args.Args[0])
}

func TestParenArguments(t *testing.T) {
	call := assertAs[*ast.CallExpr](t, single(t, "f(a, b)"))
	args := assertAs[*ast.ArgumentList](t, call.Arguments)
	if !args.Parenthesized() || len(args.Args) != 2 {
		t.Fatalf("expected 2 parenthesised arguments, got %s", args)
	}
	if args.Fields()[0].Name != "open" {
		t.Errorf("first field: got %q, want open", args.Fields()[0].Name)
	}
}

func TestMultiLineArguments(t *testing.T) {
	prog := parse(t, "f a,\n    b,\n    c\ng")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d:\n%s", len(prog.Statements), prog)
	}
	if got := prog.Statements[0].String(); got != "f(a, b, c)" {
		t.Errorf("call: got %s", got)
	}

	if got := single(t, "f a,\n    b, c,\n    d").String(); got != "f(a, b, c, d)" {
		t.Errorf("mixed separators: got %s", got)
	}

	se := syntaxErr(t, "f a,\n    b\n    c")
	if se.Found.Type != ast.NEWLINE {
		t.Errorf("missing comma: found %s, want newline", se.Found.Type)
	}
}

// ── Assignment ────────────────────────────────────────────────────────────────

func TestAssignmentArity(t *testing.T) {
	stmt := assertAs[*ast.Assignment](t, single(t, "x = 1, 2"))
	if len(stmt.Targets) != 1 || len(stmt.Values) != 2 {
		t.Fatalf("x = 1, 2: got %d targets, %d values", len(stmt.Targets), len(stmt.Values))
	}

	stmt = assertAs[*ast.Assignment](t, single(t, "a, b = 1"))
	if len(stmt.Targets) != 2 || len(stmt.Values) != 1 {
		t.Fatalf("a, b = 1: got %d targets, %d values", len(stmt.Targets), len(stmt.Values))
	}
}

func TestAssignmentOperators(t *testing.T) {
	for _, op := range []string{"=", "+=", "-=", "*=", "/=", "%=", "..=", "or=", "and="} {
		src := "x " + op + " y"
		stmt := assertAs[*ast.Assignment](t, single(t, src))
		if stmt.Operator.Literal != op {
			t.Errorf("%q: operator: got %q, want %q", src, stmt.Operator.Literal, op)
		}
	}
}

func TestExportAssignment(t *testing.T) {
	stmt := assertAs[*ast.Assignment](t, single(t, "export a, b = f!, 2"))
	if stmt.Export == nil {
		t.Fatal("expected export marker")
	}
	if got := stmt.String(); got != "export a, b = f(), 2" {
		t.Errorf("got %s", got)
	}
	if stmt.Fields()[0].Name != "export" {
		t.Errorf("first field: got %q", stmt.Fields()[0].Name)
	}
}

func TestConditionalAsValue(t *testing.T) {
	stmt := assertAs[*ast.Assignment](t, single(t, "z = if x then y"))
	cond := assertAs[*ast.ConditionalExpr](t, stmt.Values[0])
	if cond.Then == nil || cond.Keyword.Literal != "if" {
		t.Errorf("unexpected conditional %+v", cond)
	}
	assertAs[*ast.Identifier](t, cond.Consequence)
}

// ── Conditionals ──────────────────────────────────────────────────────────────

func TestConditionalBlock(t *testing.T) {
	cond := assertAs[*ast.ConditionalExpr](t, single(t, "if x\n    y\n    z"))
	block := assertAs[*ast.Block](t, cond.Consequence)
	if len(block.Statements) != 2 {
		t.Fatalf("expected 2 statements in block, got %d", len(block.Statements))
	}
	if cond.Then != nil {
		t.Error("unexpected then marker")
	}

	cond = assertAs[*ast.ConditionalExpr](t, single(t, "unless done then\n    retry!"))
	if cond.Keyword.Literal != "unless" || cond.Then == nil {
		t.Errorf("unexpected conditional %+v", cond)
	}
	assertAs[*ast.Block](t, cond.Consequence)
}

func TestConditionalStatementConsequence(t *testing.T) {
	cond := assertAs[*ast.ConditionalExpr](t, single(t, "if x then return y"))
	assertAs[*ast.ReturnStatement](t, cond.Consequence)

	cond = assertAs[*ast.ConditionalExpr](t, single(t, "if ready then count += 1"))
	assertAs[*ast.Assignment](t, cond.Consequence)
}

// TestElseIsRejected locks in the contract for else: it is reserved, and no
// rule accepts it, so the statement in front of it must end there.
func TestElseIsRejected(t *testing.T) {
	se := syntaxErr(t, "if x then y else z")
	if se.Found.Type != ast.ELSE {
		t.Fatalf("found: got %s, want else", se.Found.Type)
	}
	if se.Span.Start.Col != 13 {
		t.Errorf("column: got %d, want 13", se.Span.Start.Col)
	}
	if len(se.Expected) != 1 || se.Expected[0] != "newline" {
		t.Errorf("expected set: got %v", se.Expected)
	}
	if got, want := se.Error(), "1:13: syntax error: unexpected else, expected newline"; got != want {
		t.Errorf("message:\n got %s\nwant %s", got, want)
	}

	se = syntaxErr(t, "if x then y elseif z")
	if se.Found.Type != ast.ELSEIF {
		t.Errorf("elseif: found %s", se.Found.Type)
	}

	se = syntaxErr(t, "if x\n    y\nelse\n    z")
	if se.Found.Type != ast.ELSE {
		t.Errorf("else line: found %s", se.Found.Type)
	}
}

// ── Function literals ─────────────────────────────────────────────────────────

func TestFunctionLiterals(t *testing.T) {
	fn := assertAs[*ast.FunctionExpr](t, single(t, "-> x"))
	if fn.Params != nil || fn.Arrow.Literal != "->" {
		t.Errorf("-> x: %+v", fn)
	}
	assertAs[*ast.Identifier](t, fn.Body)

	fn = assertAs[*ast.FunctionExpr](t, single(t, "(a, b = 1) -> a + b"))
	if len(fn.Params.Params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(fn.Params.Params))
	}
	if fn.Params.Params[0].Default != nil || fn.Params.Params[1].Default == nil {
		t.Errorf("defaults: %s", fn.Params)
	}
	assertAs[*ast.BinaryExpr](t, fn.Body)

	fn = assertAs[*ast.FunctionExpr](t, single(t, "() => @x"))
	if fn.Params == nil || len(fn.Params.Params) != 0 || fn.Arrow.Literal != "=>" {
		t.Errorf("() => @x: %+v", fn)
	}

	fn = assertAs[*ast.FunctionExpr](t, single(t, "-> -> x"))
	assertAs[*ast.FunctionExpr](t, fn.Body)
}

func TestFunctionBodyIsGreedy(t *testing.T) {
	call := assertAs[*ast.CallExpr](t, single(t, "map xs, (x) -> x * 2"))
	args := assertAs[*ast.ArgumentList](t, call.Arguments)
	if len(args.Args) != 2 {
		t.Fatalf("expected 2 arguments, got %s", args)
	}
	fn := assertAs[*ast.FunctionExpr](t, args.Args[1])
	if got := fn.Body.String(); got != "(x * 2)" {
		t.Errorf("body: got %s", got)
	}
}

func TestFunctionBlockBody(t *testing.T) {
	prog := parse(t, "f = ->\n    a\n    b\nc")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d:\n%s", len(prog.Statements), prog)
	}
	stmt := assertAs[*ast.Assignment](t, prog.Statements[0])
	fn := assertAs[*ast.FunctionExpr](t, stmt.Values[0])
	block := assertAs[*ast.Block](t, fn.Body)
	if len(block.Statements) != 2 || block.Open.Type != ast.INDENT {
		t.Errorf("block: %s (open %s)", block, block.Open.Type)
	}
}

func TestNestedBlocks(t *testing.T) {
	stmt := assertAs[*ast.Assignment](t, single(t, "f = ->\n    if x\n        y\n    z"))
	fn := assertAs[*ast.FunctionExpr](t, stmt.Values[0])
	block := assertAs[*ast.Block](t, fn.Body)
	if len(block.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %s", block)
	}
	assertAs[*ast.ConditionalExpr](t, block.Statements[0])
	assertAs[*ast.Identifier](t, block.Statements[1])
}

// TestSoftDedentOpensBlock covers a line that dedents to a column between two
// open levels inside a multi-line parenthesised group.
func TestSoftDedentOpensBlock(t *testing.T) {
	stmt := assertAs[*ast.Assignment](t, single(t, "x = (\n        y ->\n      z\n)"))
	paren := assertAs[*ast.ParenExpr](t, stmt.Values[0])
	call := assertAs[*ast.CallExpr](t, paren.Expression)
	args := assertAs[*ast.ArgumentList](t, call.Arguments)
	fn := assertAs[*ast.FunctionExpr](t, args.Args[0])
	block := assertAs[*ast.Block](t, fn.Body)
	if block.Open.Type != ast.SOFT_DEDENT {
		t.Errorf("block open: got %s, want soft-block-exit", block.Open.Type)
	}
}

// TestPartialDedent covers lines that stop between two open levels where no
// block can start: the inner level simply closes.
func TestPartialDedent(t *testing.T) {
	stmt := assertAs[*ast.Assignment](t, single(t, "x = (\n    a\n  )"))
	paren := assertAs[*ast.ParenExpr](t, stmt.Values[0])
	assertAs[*ast.Identifier](t, paren.Expression)

	prog := parse(t, "a ->\n    b\n  c")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %s", prog)
	}
	assertAs[*ast.CallExpr](t, prog.Statements[0])
	assertAs[*ast.Identifier](t, prog.Statements[1])
}

func TestSoftDedentOutsideBlockOpen(t *testing.T) {
	src := &sliceSource{toks: []ast.Token{
		{Type: ast.IDENT, Literal: "a"},
		{Type: ast.SOFT_DEDENT},
		{Type: ast.IDENT, Literal: "b"},
		{Type: ast.DEDENT},
	}}
	_, err := parser.New(src).ParseProgram()
	var se *parser.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
	}
	if se.Found.Type != ast.SOFT_DEDENT || se.Msg != "inconsistent dedent" {
		t.Errorf("got %v (found %s)", se, se.Found.Type)
	}
}

// ── Return ────────────────────────────────────────────────────────────────────

func TestReturn(t *testing.T) {
	ret := assertAs[*ast.ReturnStatement](t, single(t, "return a, b"))
	if ret.Arguments.Parenthesized() || len(ret.Arguments.Args) != 2 {
		t.Errorf("return a, b: %s", ret.Arguments)
	}

	ret = assertAs[*ast.ReturnStatement](t, single(t, "return(a)"))
	if !ret.Arguments.Parenthesized() || len(ret.Arguments.Args) != 1 {
		t.Errorf("return(a): %s", ret.Arguments)
	}

	err := parseErr(t, "return")
	if !parser.IsIncomplete(err) {
		t.Errorf("bare return should be incomplete, got %v", err)
	}
}

// ── Lists and groups ──────────────────────────────────────────────────────────

func TestListExpressions(t *testing.T) {
	list := assertAs[*ast.ListExpr](t, single(t, "{1, 2, 3}"))
	if len(list.Elements) != 3 {
		t.Errorf("expected 3 elements, got %d", len(list.Elements))
	}
	list = assertAs[*ast.ListExpr](t, single(t, "{}"))
	if len(list.Elements) != 0 {
		t.Errorf("expected empty list, got %s", list)
	}

	se := syntaxErr(t, "{1, 2")
	if se.Found.Type != ast.EOF || fmt.Sprint(se.Expected) != "[, }]" {
		t.Errorf("unmatched brace: found %s expected %v", se.Found.Type, se.Expected)
	}
	se = syntaxErr(t, "{1 2}")
	if se.Found.Type != ast.DIGIT {
		t.Errorf("missing comma: found %s", se.Found.Type)
	}
}

func TestMultiLineParen(t *testing.T) {
	stmt := assertAs[*ast.Assignment](t, single(t, "x = (\n    a + b\n)"))
	paren := assertAs[*ast.ParenExpr](t, stmt.Values[0])
	assertAs[*ast.BinaryExpr](t, paren.Expression)

	stmt = assertAs[*ast.Assignment](t, single(t, "x = (a\n)"))
	assertAs[*ast.ParenExpr](t, stmt.Values[0])
}

// ── Blocks ────────────────────────────────────────────────────────────────────

func TestEmptyBlockImpossible(t *testing.T) {
	// A comment-only body produces no block-enter, so the function has no body.
	se := syntaxErr(t, "f = ->\n    -- nothing\ng")
	if se.Found.Type != ast.NEWLINE {
		t.Errorf("found: got %s, want newline", se.Found.Type)
	}

	err := parseErr(t, "if x\n")
	if !parser.IsIncomplete(err) {
		t.Errorf("if without body should be incomplete, got %v", err)
	}
}

func TestComments(t *testing.T) {
	prog := parse(t, "x = 1 -- one\n-- two\ny -- three")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d:\n%s", len(prog.Statements), prog)
	}
	assertAs[*ast.Identifier](t, prog.Statements[1])
}

// ── Errors ────────────────────────────────────────────────────────────────────

func TestMalformedAssignmentTarget(t *testing.T) {
	for _, src := range []string{"f x = 1", "a, f x = 1", "1 = 2", "(a) = 1"} {
		se := syntaxErr(t, src)
		if se.Msg != "malformed assignment target" {
			t.Errorf("%q: got %v", src, se)
		}
	}
	se := syntaxErr(t, "f x = 1")
	if se.Span.Start.Col != 1 || se.Span.End.Col != 4 {
		t.Errorf("span: got %s", se.Span)
	}
}

func TestLexErrors(t *testing.T) {
	err := parseErr(t, `x = "abc`)
	var le *parser.LexError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LexError, got %T: %v", err, err)
	}
	if got, want := le.Error(), "1:5: unterminated string literal"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !parser.IsIncomplete(err) {
		t.Error("unterminated string should be incomplete")
	}

	err = parseErr(t, "x = 1 ? 2")
	if !errors.As(err, &le) || le.Text != "?" {
		t.Fatalf("expected LexError for ?, got %v", err)
	}
	if parser.IsIncomplete(err) {
		t.Error("unexpected character should not be incomplete")
	}

	err = parseErr(t, "?")
	if !errors.As(err, &le) {
		t.Fatalf("leading error token: got %T", err)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		input string
		found ast.TokenType
		msg   string
	}{
		{"x = ", ast.EOF, ""},
		{")", ast.RPAREN, ""},
		{"a, b", ast.EOF, ""},
		{"f(a, b", ast.EOF, ""},
		{"(a", ast.EOF, ""},
		{"a b )", ast.RPAREN, ""},
		{"  x", ast.INDENT, ""},
		{"x\n    y", ast.INDENT, ""},
		{"1 2", ast.DIGIT, ""},
	}
	for _, tt := range tests {
		se := syntaxErr(t, tt.input)
		if se.Found.Type != tt.found {
			t.Errorf("%q: found %s, want %s (%v)", tt.input, se.Found.Type, tt.found, se)
		}
		if len(se.Expected) == 0 {
			t.Errorf("%q: empty expected set", tt.input)
		}
	}

	se := syntaxErr(t, "1 2")
	if got, want := se.Error(), `1:3: syntax error: unexpected digit literal "2", expected newline`; got != want {
		t.Errorf("message:\n got %s\nwant %s", got, want)
	}
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"f = ->", true},
		{"(x) ->", true},
		{"x = (a", true},
		{"f a,", true},
		{"if x then", true},
		{"x )", false},
		{"if x then y else z", false},
	}
	for _, tt := range tests {
		err := parseErr(t, tt.input)
		if got := parser.IsIncomplete(err); got != tt.want {
			t.Errorf("%q: IsIncomplete = %v, want %v (%v)", tt.input, got, tt.want, err)
		}
	}
	if parser.IsIncomplete(nil) {
		t.Error("nil error reported as incomplete")
	}
}

// ── Spans ─────────────────────────────────────────────────────────────────────

func TestSpans(t *testing.T) {
	stmt := assertAs[*ast.Assignment](t, single(t, "x = a + b"))
	if got := stmt.Span().String(); got != "1:1-1:10" {
		t.Errorf("assignment span: got %s", got)
	}
	if got := stmt.Values[0].Span().String(); got != "1:5-1:10" {
		t.Errorf("binary span: got %s", got)
	}

	call := assertAs[*ast.CallExpr](t, single(t, "f(a)"))
	if got := call.Span().String(); got != "1:1-1:5" {
		t.Errorf("call span: got %s", got)
	}
}

// ── ParseExpression ───────────────────────────────────────────────────────────

func TestParseExpression(t *testing.T) {
	expr, rest, err := parser.ParseExpression(lexer.Tokenize("a + b, c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.String() != "(a + b)" {
		t.Errorf("expression: got %s", expr)
	}
	if got := parser.TokenSummary(rest); got != ", identifier end of input" {
		t.Errorf("rest: got %q", got)
	}

	toks := lexer.Tokenize("f x")
	expr, rest, err = parser.ParseExpression(toks[:len(toks)-1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.String() != "f(x)" || len(rest) != 0 {
		t.Errorf("without EOF: got %s, rest %v", expr, rest)
	}

	if _, _, err := parser.ParseExpression(nil); !parser.IsIncomplete(err) {
		t.Errorf("empty input: got %v", err)
	}
}

func TestLongDigitLiteral(t *testing.T) {
	digits := strings.Repeat("9", 400)
	stmt := assertAs[*ast.Assignment](t, single(t, "x = "+digits+".5"))
	lit := assertAs[*ast.DigitLiteral](t, stmt.Values[0])
	if lit.Token.Literal != digits+".5" {
		t.Errorf("literal kept %d bytes, want %d", len(lit.Token.Literal), len(digits)+2)
	}
}

// ── TokenSource ───────────────────────────────────────────────────────────────

// sliceSource replays a fixed token list, the way an external token source
// would feed the parser.
type sliceSource struct {
	toks []ast.Token
	i    int
}

func (s *sliceSource) NextToken() ast.Token {
	if s.i >= len(s.toks) {
		return ast.Token{Type: ast.EOF}
	}
	tok := s.toks[s.i]
	s.i++
	return tok
}

func TestCustomTokenSource(t *testing.T) {
	src := &sliceSource{toks: []ast.Token{
		{Type: ast.IDENT, Literal: "f"},
		{Type: ast.UNARY_MINUS, Literal: "-"},
		{Type: ast.IDENT, Literal: "b", Adjacent: true},
	}}
	prog, err := parser.New(src).ParseProgram()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := prog.String(); got != "f((- b))\n" {
		t.Errorf("got %q", got)
	}
}

// ── Concurrency ───────────────────────────────────────────────────────────────

func TestParallelParses(t *testing.T) {
	corpus := []string{
		"a or b and c",
		"f = (a, b = 1) ->\n    x = a + b\n    return x",
		"if ready then launch!",
		"f a,\n    b,\n    c",
		"export x, y = 1, {2, 3}",
		"z = if x then y",
	}
	want := make([]string, len(corpus))
	for i, src := range corpus {
		want[i] = ast.SExpr(parse(t, src))
	}

	for round := 0; round < 4; round++ {
		for i, src := range corpus {
			i, src := i, src
			t.Run(fmt.Sprintf("r%d/%d", round, i), func(t *testing.T) {
				t.Parallel()
				if got := ast.SExpr(parse(t, src)); got != want[i] {
					t.Errorf("parallel parse differs:\n got %s\nwant %s", got, want[i])
				}
			})
		}
	}
}

func TestTiers(t *testing.T) {
	if !(parser.TierBinaryOrCall < parser.TierTiedCall &&
		parser.TierTiedCall < parser.TierUnary &&
		parser.TierUnary < parser.TierFunction) {
		t.Error("binding tiers are not strictly increasing")
	}
}
