// Package parser implements the moon recursive-descent parser.
//
// The parser reads a token stream from a [TokenSource] and builds an
// [ast.Program]. Expression parsing uses Pratt (top-down operator precedence)
// with integer binding-power pairs, so precedence and associativity live in
// one small table rather than a tangle of grammar rules.
//
// Usage:
//
//	p := parser.New(lexer.New(source))
//	prog, err := p.ParseProgram()
//
// The parser is fail-fast: the first error aborts the parse and is returned
// as a *LexError or *SyntaxError. There is no partial tree.
package parser

import (
	"strings"

	"github.com/metaphox/moon-lang/ast"
	"github.com/metaphox/moon-lang/lexer"
)

// TokenSource supplies classified tokens. It must eventually return EOF and
// keep returning it.
type TokenSource interface {
	NextToken() ast.Token
}

// ── Binding powers ────────────────────────────────────────────────────────────

// Binding tiers of the grammar, lowest to highest. Calls and binary operators
// share the lowest tier and are told apart by lookahead: a callable followed
// by something that can start an expression is a call, a binary operator
// continues the expression.
const (
	TierBinaryOrCall = 1
	TierTiedCall     = 2 // f"x", f!, f(x): chain directly onto the callee
	TierUnary        = 3 // -x, *x, not x
	TierFunction     = 4 // -> body extends as far right as it can
)

// Binding powers inside the binary tier. A left-associative operator has
// right > left, a right-associative one right < left.
const (
	bpLowest = 0
	bpUnary  = 14 // operand floor of - * not: only ^ binds tighter
)

type bindingPower struct{ left, right int }

// binaryPowers maps every binary operator to its binding-power pair.
//
//	or < and < cmp < concat < add < mul < (unary) < pow
var binaryPowers = map[ast.TokenType]bindingPower{
	ast.OR:        {2, 3},
	ast.AND:       {4, 5},
	ast.EQ:        {6, 7},
	ast.NEQ:       {6, 7},
	ast.TILDE_NEQ: {6, 7},
	ast.LTE:       {6, 7},
	ast.GTE:       {6, 7},
	ast.LT:        {6, 7},
	ast.GT:        {6, 7},
	ast.CONCAT:    {9, 8},
	ast.PLUS:      {10, 11},
	ast.MINUS:     {10, 11},
	ast.ASTERISK:  {12, 13},
	ast.SLASH:     {12, 13},
	ast.CARET:     {17, 16},
}

// assignOps is the fixed set of assignment operators.
var assignOps = map[ast.TokenType]bool{
	ast.ASSIGN:         true,
	ast.PLUS_ASSIGN:    true,
	ast.MINUS_ASSIGN:   true,
	ast.STAR_ASSIGN:    true,
	ast.SLASH_ASSIGN:   true,
	ast.PERCENT_ASSIGN: true,
	ast.CONCAT_ASSIGN:  true,
	ast.OR_ASSIGN:      true,
	ast.AND_ASSIGN:     true,
}

// ── Parser ────────────────────────────────────────────────────────────────────

// prefixParseFn parses an operand starting with the current token.
type prefixParseFn func() ast.Expression

// Parser holds all state needed to parse one moon token stream.
// Create one with [New] and call [Parser.ParseProgram].
type Parser struct {
	toks []ast.Token // significant tokens, always ending in EOF
	pos  int         // index of cur in toks
	cur  ast.Token   // next token to be consumed
	prev ast.Token   // the last consumed token

	prefixFns map[ast.TokenType]prefixParseFn
}

// bailout carries the first error up to the public entry point.
type bailout struct{ err error }

// New creates a Parser that reads tokens from src until EOF. Comment tokens
// are dropped.
func New(src TokenSource) *Parser {
	var toks []ast.Token
	for {
		tok := src.NextToken()
		if tok.Type == ast.COMMENT {
			continue
		}
		toks = append(toks, tok)
		if tok.Type == ast.EOF {
			break
		}
	}
	return newParser(toks)
}

func newParser(toks []ast.Token) *Parser {
	p := &Parser{
		toks:      toks,
		prefixFns: make(map[ast.TokenType]prefixParseFn),
	}

	// ── Prefix (nud) functions ────────────────────────────────────────────────
	p.registerPrefix(ast.IDENT, func() ast.Expression { return p.parseCallChain(p.parseIdentifier()) })
	p.registerPrefix(ast.DIGIT, p.parseDigitLiteral)
	p.registerPrefix(ast.STRING, func() ast.Expression { return p.parseStringLiteral() })
	p.registerPrefix(ast.LBRACE, p.parseListExpression)
	p.registerPrefix(ast.LPAREN, p.parseParenOrFunction)
	p.registerPrefix(ast.ARROW, p.parseFunctionExpression)
	p.registerPrefix(ast.FAT_ARROW, p.parseFunctionExpression)
	p.registerPrefix(ast.UNARY_MINUS, p.parseUnaryExpression)
	p.registerPrefix(ast.UNARY_ITER, p.parseUnaryExpression)
	p.registerPrefix(ast.NOT, p.parseUnaryExpression)
	p.registerPrefix(ast.IF, p.parseConditionalExpression)
	p.registerPrefix(ast.UNLESS, p.parseConditionalExpression)

	p.cur = toks[0]
	return p
}

// ParseString lexes and parses a complete moon source text.
func ParseString(src string) (*ast.Program, error) {
	return New(lexer.New(src)).ParseProgram()
}

// ParseProgram parses the whole token stream.
func (p *Parser) ParseProgram() (prog *ast.Program, err error) {
	defer p.recoverBailout(&err)
	p.checkCur()

	prog = &ast.Program{}
	for !p.curIs(ast.EOF) {
		prog.Statements = append(prog.Statements, p.parseStatement())
		p.endStatement()
	}
	return prog, nil
}

// ParseExpression parses a single expression from the front of tokens and
// returns it together with the tokens it did not consume. Comment tokens are
// ignored. A missing trailing EOF is implied.
func ParseExpression(tokens []ast.Token) (expr ast.Expression, rest []ast.Token, err error) {
	toks := make([]ast.Token, 0, len(tokens)+1)
	for _, tok := range tokens {
		if tok.Type != ast.COMMENT {
			toks = append(toks, tok)
		}
	}
	implied := len(toks) == 0 || toks[len(toks)-1].Type != ast.EOF
	if implied {
		var at ast.Span
		if len(toks) > 0 {
			end := toks[len(toks)-1].Span.End
			at = ast.Span{Start: end, End: end}
		}
		toks = append(toks, ast.Token{Type: ast.EOF, Span: at})
	}

	p := newParser(toks)
	defer p.recoverBailout(&err)
	p.checkCur()

	expr = p.parseExpression(bpLowest)
	rest = p.toks[p.pos:]
	if implied {
		rest = rest[:len(rest)-1]
	}
	return expr, rest, nil
}

func (p *Parser) recoverBailout(errp *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*errp = b.err
	}
}

// ── Internal token management ─────────────────────────────────────────────────

// advance consumes cur. Reaching an error token aborts the parse.
// At EOF the cursor stays put.
func (p *Parser) advance() {
	p.prev = p.cur
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.cur = p.toks[p.pos]
	p.checkCur()
}

// checkCur turns an error token under the cursor into a LexError.
func (p *Parser) checkCur() {
	if p.cur.Type == ast.ILLEGAL {
		panic(bailout{&LexError{Span: p.cur.Span, Text: p.cur.Literal}})
	}
}

// expect consumes cur if it has type tt and fails otherwise.
func (p *Parser) expect(tt ast.TokenType) ast.Token {
	if !p.curIs(tt) {
		p.failExpected(tt.String())
	}
	tok := p.cur
	p.advance()
	return tok
}

// curIs reports whether the current token has the given type.
func (p *Parser) curIs(tt ast.TokenType) bool { return p.cur.Type == tt }

// blockClosed reports whether the last consumed token closed a block. An
// expression that ends that way cannot be continued by an operator, a call or
// a further bare argument.
func (p *Parser) blockClosed() bool { return p.prev.Type == ast.DEDENT }

// registerPrefix registers a prefix parse function for a token type.
func (p *Parser) registerPrefix(tt ast.TokenType, fn prefixParseFn) {
	p.prefixFns[tt] = fn
}

// startsExpression reports whether tt can begin an expression.
func (p *Parser) startsExpression(tt ast.TokenType) bool {
	_, ok := p.prefixFns[tt]
	return ok
}

// expressionStarts lists the prefix tokens in a stable order for diagnostics.
var expressionStarts = []ast.TokenType{
	ast.IDENT, ast.DIGIT, ast.STRING, ast.LBRACE, ast.LPAREN,
	ast.ARROW, ast.FAT_ARROW, ast.UNARY_MINUS, ast.UNARY_ITER, ast.NOT,
	ast.IF, ast.UNLESS,
}

// failExpected aborts with a SyntaxError at cur listing the legal alternatives.
func (p *Parser) failExpected(expected ...string) {
	err := &SyntaxError{Span: p.cur.Span, Found: p.cur, Expected: expected}
	if p.curIs(ast.SOFT_DEDENT) {
		err.Msg = "inconsistent dedent"
	}
	panic(bailout{err})
}

// failExpression aborts because cur cannot start an expression.
func (p *Parser) failExpression() {
	names := make([]string, len(expressionStarts))
	for i, tt := range expressionStarts {
		names[i] = tt.String()
	}
	p.failExpected(names...)
}

// failAt aborts with a custom message at span.
func (p *Parser) failAt(span ast.Span, found ast.Token, msg string) {
	panic(bailout{&SyntaxError{Span: span, Found: found, Msg: msg}})
}

// ── Statement parsing ─────────────────────────────────────────────────────────

// parseStatement parses an assignment, a return statement or an expression.
//
// Assignments are recognised after the fact: the statement is parsed as an
// expression and, if a ',' or an assignment operator follows, revisited as
// the first target. Only identifiers are valid targets.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case ast.RETURN:
		return p.parseReturnStatement()
	case ast.EXPORT:
		export := p.cur
		p.advance()
		return p.parseAssignment(&export, p.parseTarget())
	}

	start := p.cur
	expr := p.parseExpression(bpLowest)
	if p.blockClosed() || !(p.curIs(ast.COMMA) || assignOps[p.cur.Type]) {
		return expr
	}
	id, ok := expr.(*ast.Identifier)
	if !ok {
		p.failAt(expr.Span(), start, "malformed assignment target")
	}
	return p.parseAssignment(nil, id)
}

// endStatement checks what follows a statement: a separator (consumed), the
// end of the enclosing block or input, or nothing when the statement itself
// ended by closing a block.
func (p *Parser) endStatement() {
	switch {
	case p.curIs(ast.NEWLINE):
		p.advance()
	case p.curIs(ast.DEDENT), p.curIs(ast.EOF), p.blockClosed():
	default:
		p.failExpected(ast.NEWLINE.String())
	}
}

// parseTarget parses one assignment target.
func (p *Parser) parseTarget() *ast.Identifier {
	start := p.cur
	expr := p.parseExpression(bpLowest)
	id, ok := expr.(*ast.Identifier)
	if !ok {
		p.failAt(expr.Span(), start, "malformed assignment target")
	}
	return id
}

// parseAssignment parses the rest of `[export] a, b op x, y` after the first
// target. The target and value counts are independent.
func (p *Parser) parseAssignment(export *ast.Token, first *ast.Identifier) ast.Statement {
	stmt := &ast.Assignment{Export: export, Targets: []*ast.Identifier{first}}
	for p.curIs(ast.COMMA) {
		p.advance()
		stmt.Targets = append(stmt.Targets, p.parseTarget())
	}
	if !assignOps[p.cur.Type] {
		p.failExpected(",", "=", "+=", "-=", "*=", "/=", "%=", "..=", "or=", "and=")
	}
	stmt.Operator = p.cur
	p.advance()

	stmt.Values = p.parseExpressionList()
	return stmt
}

// parseExpressionList parses `expr {, expr}` stopping after an expression
// that closed a block.
func (p *Parser) parseExpressionList() []ast.Expression {
	var list []ast.Expression
	for {
		list = append(list, p.parseExpression(bpLowest))
		if p.blockClosed() || !p.curIs(ast.COMMA) {
			return list
		}
		p.advance()
	}
}

// parseReturnStatement parses `return args`, where args is an argument list
// in either the bare or the adjacent-parenthesised form.
func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.cur}
	p.advance()
	if p.curIs(ast.LPAREN) && p.cur.Adjacent {
		stmt.Arguments = p.parseParenArguments()
	} else {
		if !p.startsExpression(p.cur.Type) {
			p.failExpression()
		}
		stmt.Arguments = p.parseBareArguments()
	}
	return stmt
}

// parseBlock parses an indented, non-empty statement sequence:
//
//	(INDENT | SOFT_DEDENT) statement {NEWLINE statement} DEDENT
//
// A statement that closed its own nested block needs no separator before the
// next one.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Open: p.cur}
	p.advance()
	for {
		block.Statements = append(block.Statements, p.parseStatement())
		switch {
		case p.curIs(ast.NEWLINE):
			p.advance()
		case p.curIs(ast.DEDENT):
			block.Close = p.cur
			p.advance()
			return block
		case p.blockClosed():
		default:
			p.failExpected(ast.NEWLINE.String(), ast.DEDENT.String())
		}
	}
}

// atBlockOpen reports whether cur opens a block.
func (p *Parser) atBlockOpen() bool {
	return p.curIs(ast.INDENT) || p.curIs(ast.SOFT_DEDENT)
}

// ── Expression parsing ────────────────────────────────────────────────────────

// parseExpression is the core Pratt loop. It parses one operand and then
// keeps folding binary operators whose left binding power is at least minBP.
// An operand that ended by closing a block is never continued.
func (p *Parser) parseExpression(minBP int) ast.Expression {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		p.failExpression()
	}
	left := prefix()

	for !p.blockClosed() {
		bp, ok := binaryPowers[p.cur.Type]
		if !ok || bp.left < minBP {
			break
		}
		op := p.cur
		p.advance()
		right := p.parseExpression(bp.right)
		left = &ast.BinaryExpr{Lhs: left, Operator: op, Rhs: right}
	}
	return left
}

// parseUnaryExpression parses `- x`, `* x` or `not x`. The operand binds at
// the unary floor, so only ^ and calls applied to the operand bind inside it:
// -a ^ b is -(a ^ b), -a * b is (-a) * b, -f x is -(f x).
func (p *Parser) parseUnaryExpression() ast.Expression {
	op := p.cur
	p.advance()
	return &ast.UnaryExpr{Operator: op, Operand: p.parseExpression(bpUnary)}
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.expect(ast.IDENT)
	return &ast.Identifier{Token: tok, Name: tok.Literal}
}

func (p *Parser) parseDigitLiteral() ast.Expression {
	return &ast.DigitLiteral{Token: p.expect(ast.DIGIT)}
}

func (p *Parser) parseStringLiteral() *ast.StringLiteral {
	tok := p.expect(ast.STRING)
	value := tok.Literal
	if len(value) >= 2 {
		value = value[1 : len(value)-1]
	}
	return &ast.StringLiteral{Token: tok, Value: value}
}

// parseListExpression parses `{ [expr {, expr}] }`.
func (p *Parser) parseListExpression() ast.Expression {
	list := &ast.ListExpr{LBrace: p.cur}
	p.advance()
	if !p.curIs(ast.RBRACE) {
		for {
			list.Elements = append(list.Elements, p.parseExpression(bpLowest))
			if !p.curIs(ast.COMMA) {
				break
			}
			p.advance()
		}
	}
	if !p.curIs(ast.RBRACE) {
		p.failExpected(",", "}")
	}
	list.RBrace = p.cur
	p.advance()
	return list
}

// parseParenOrFunction decides between a parameter list and a parenthesised
// expression. The parameter list wins whenever the matching ')' is followed by
// an arrow.
func (p *Parser) parseParenOrFunction() ast.Expression {
	if p.isParameterList() {
		return p.parseFunctionExpression()
	}
	return p.parseCallChain(p.parseParenExpression())
}

// isParameterList scans ahead from the '(' under the cursor to its matching
// ')' and reports whether an arrow follows.
func (p *Parser) isParameterList() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Type {
		case ast.LPAREN:
			depth++
		case ast.RPAREN:
			depth--
			if depth == 0 {
				if i+1 >= len(p.toks) {
					return false
				}
				next := p.toks[i+1].Type
				return next == ast.ARROW || next == ast.FAT_ARROW
			}
		case ast.EOF:
			return false
		}
	}
	return false
}

// parseParenExpression parses
//
//	( [INDENT | NEWLINE] expr [DEDENT | NEWLINE] )
//
// The optional layout tokens let a group span lines.
func (p *Parser) parseParenExpression() *ast.ParenExpr {
	paren := &ast.ParenExpr{LParen: p.cur}
	p.advance()
	if p.curIs(ast.INDENT) || p.curIs(ast.NEWLINE) {
		p.advance()
	}
	paren.Expression = p.parseExpression(bpLowest)
	if p.curIs(ast.DEDENT) || p.curIs(ast.NEWLINE) {
		p.advance()
	}
	paren.RParen = p.expect(ast.RPAREN)
	return paren
}

// parseFunctionExpression parses `[(params)] (-> | =>) body` where body is a
// block or a single expression. An expression body is parsed at the lowest
// binding power, so it absorbs everything to its right.
func (p *Parser) parseFunctionExpression() ast.Expression {
	fn := &ast.FunctionExpr{}
	if p.curIs(ast.LPAREN) {
		fn.Params = p.parseParameterList()
	}
	if !p.curIs(ast.ARROW) && !p.curIs(ast.FAT_ARROW) {
		p.failExpected(ast.ARROW.String(), ast.FAT_ARROW.String())
	}
	fn.Arrow = p.cur
	p.advance()

	if p.atBlockOpen() {
		fn.Body = p.parseBlock()
	} else {
		fn.Body = p.parseExpression(bpLowest)
	}
	return fn
}

// parseParameterList parses `( [param {, param}] )`.
func (p *Parser) parseParameterList() *ast.ParameterList {
	list := &ast.ParameterList{LParen: p.cur}
	p.advance()
	if !p.curIs(ast.RPAREN) {
		for {
			list.Params = append(list.Params, p.parseParameter())
			if !p.curIs(ast.COMMA) {
				break
			}
			p.advance()
		}
	}
	if !p.curIs(ast.RPAREN) {
		p.failExpected(",", ")")
	}
	list.RParen = p.cur
	p.advance()
	return list
}

// parseParameter parses `name [= default]`.
func (p *Parser) parseParameter() *ast.Parameter {
	tok := p.expect(ast.IDENT)
	param := &ast.Parameter{Name: &ast.Identifier{Token: tok, Name: tok.Literal}}
	if p.curIs(ast.ASSIGN) {
		p.advance()
		param.Default = p.parseExpression(bpLowest)
	}
	return param
}

// parseConditionalExpression parses
//
//	(if | unless) condition then statement
//	(if | unless) condition [then] block
//
// The result is an expression wherever it appears.
func (p *Parser) parseConditionalExpression() ast.Expression {
	cond := &ast.ConditionalExpr{Keyword: p.cur}
	p.advance()
	cond.Condition = p.parseExpression(bpLowest)

	if p.curIs(ast.THEN) {
		then := p.cur
		cond.Then = &then
		p.advance()
		if p.atBlockOpen() {
			cond.Consequence = p.parseBlock()
		} else {
			cond.Consequence = p.parseStatement()
		}
		return cond
	}
	if !p.atBlockOpen() {
		p.failExpected(ast.THEN.String(), ast.INDENT.String())
	}
	cond.Consequence = p.parseBlock()
	return cond
}

// ── Call disambiguation ───────────────────────────────────────────────────────

// parseCallChain applies the call forms to a callable expression, checked in
// priority order:
//
//  1. an adjacent string literal     f"x"
//  2. a bang                         f!
//  3. an argument list
//     a. adjacent parenthesised      f(a, b)
//     b. bare                        f a, b
//
// Forms 1, 2 and 3a chain onto the result (f"a""b", f!!, f(a)(b)). A bare
// list takes the rest of the expression and ends the chain. With no form
// present the callee is returned unchanged.
func (p *Parser) parseCallChain(fn ast.Expression) ast.Expression {
	for {
		switch {
		case p.curIs(ast.STRING) && p.cur.Adjacent:
			fn = &ast.CallExpr{Function: fn, Arguments: p.parseStringLiteral()}
		case p.curIs(ast.BANG):
			bang := p.cur
			p.advance()
			fn = &ast.CallExpr{Function: fn, Bang: &bang}
		case p.curIs(ast.LPAREN) && p.cur.Adjacent:
			fn = &ast.CallExpr{Function: fn, Arguments: p.parseParenArguments()}
		case p.startsExpression(p.cur.Type):
			return &ast.CallExpr{Function: fn, Arguments: p.parseBareArguments()}
		default:
			return fn
		}
	}
}

// parseParenArguments parses `( [expr {, expr}] )`.
func (p *Parser) parseParenArguments() *ast.ArgumentList {
	lparen := p.cur
	args := &ast.ArgumentList{LParen: &lparen}
	p.advance()
	if !p.curIs(ast.RPAREN) {
		for {
			args.Args = append(args.Args, p.parseExpression(bpLowest))
			if !p.curIs(ast.COMMA) {
				break
			}
			p.advance()
		}
	}
	if !p.curIs(ast.RPAREN) {
		p.failExpected(",", ")")
	}
	rparen := p.cur
	args.RParen = &rparen
	p.advance()
	return args
}

// parseBareArguments parses a comma list without parentheses. A trailing
// comma followed by an indented block continues the list over several lines:
//
//	f a, b,
//	    c,
//	    d
//
// Inside the indented part each ',' may be followed by a line break; the list
// ends at the DEDENT.
func (p *Parser) parseBareArguments() *ast.ArgumentList {
	args := &ast.ArgumentList{}
	for {
		args.Args = append(args.Args, p.parseExpression(bpLowest))
		if p.blockClosed() || !p.curIs(ast.COMMA) {
			return args
		}
		p.advance()
		if p.curIs(ast.INDENT) {
			p.parseContinuedArguments(args)
			return args
		}
	}
}

func (p *Parser) parseContinuedArguments(args *ast.ArgumentList) {
	p.advance() // INDENT
	for {
		args.Args = append(args.Args, p.parseExpression(bpLowest))
		if p.blockClosed() {
			// The argument closed its own block; the list must end here too.
			p.expect(ast.DEDENT)
			return
		}
		switch {
		case p.curIs(ast.COMMA):
			p.advance()
			if p.curIs(ast.NEWLINE) {
				p.advance()
			}
		case p.curIs(ast.DEDENT):
			p.advance()
			return
		default:
			p.failExpected(",", ast.DEDENT.String())
		}
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Tokens returns the significant tokens the parser works on, EOF included.
func (p *Parser) Tokens() []ast.Token { return p.toks }

// TokenSummary renders toks as space-separated type names, a compact form for
// logs and tests.
func TokenSummary(toks []ast.Token) string {
	parts := make([]string, len(toks))
	for i, tok := range toks {
		parts[i] = tok.Type.String()
	}
	return strings.Join(parts, " ")
}
