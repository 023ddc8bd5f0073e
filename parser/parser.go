// Package parser implements a recursive-descent, precedence-climbing
// parser (https://en.wikipedia.org/wiki/Recursive_descent_parser) that
// turns a token stream into an ast.Program. It performs no type checking
// of its own — that is the emitter's job — only syntax.
package parser

import (
	"phase/ast"
	"phase/diagnostics"
	"phase/source"
	"phase/token"
)

var comparisonTokenTypes = []token.TokenType{
	token.LARGER,
	token.LARGER_EQUAL,
	token.LESS,
	token.LESS_EQUAL,
}

var equalityTokenTypes = []token.TokenType{
	token.NOT_EQUAL,
	token.EQUAL_EQUAL,
}

var termTokenTypes = []token.TokenType{
	token.SUB,
	token.ADD,
}

var factorTokenTypes = []token.TokenType{
	token.MULT,
	token.DIV,
}

var typeTokenTypes = []token.TokenType{
	token.TYPE_INT,
	token.TYPE_FLOAT,
	token.TYPE_BOOL,
	token.TYPE_STR,
	token.TYPE_VOID,
}

// Parser holds the token stream and the parser's current read position.
// Its position is always one token ahead of the token last consumed.
type Parser struct {
	file     string
	tokens   []token.Token
	position int
}

// New creates a Parser over tokens, attributing the locations it produces
// to file.
func New(file string, tokens []token.Token) *Parser {
	return &Parser{file: file, tokens: tokens, position: 0}
}

func (parser *Parser) peek() token.Token {
	return parser.tokens[parser.position]
}

func (parser *Parser) previous() token.Token {
	return parser.tokens[parser.position-1]
}

func (parser *Parser) advance() token.Token {
	if !parser.isFinished() {
		parser.position++
	}
	return parser.previous()
}

func (parser *Parser) isFinished() bool {
	return parser.peek().TokenType == token.EOF
}

func (parser *Parser) checkType(tokenType token.TokenType) bool {
	if parser.isFinished() {
		return tokenType == token.EOF
	}
	return parser.peek().TokenType == tokenType
}

func (parser *Parser) isMatch(tokenTypes ...token.TokenType) bool {
	for _, tokenType := range tokenTypes {
		if parser.checkType(tokenType) {
			parser.advance()
			return true
		}
	}
	return false
}

func (parser *Parser) loc(tok token.Token) source.Location {
	return source.New(parser.file, tok.Line, tok.Column, tok.EndColumn())
}

// Parse parses the full token stream into an ast.Program, collecting every
// diagnostic it can rather than stopping at the first one. Declarations
// that fail to parse are skipped by resynchronizing to the next top-level
// keyword, so one mistake doesn't mask the rest of the file's errors.
func (parser *Parser) Parse() (ast.Program, []error) {
	program := ast.Program{}
	var errs []error

	for !parser.isFinished() {
		switch {
		case parser.checkType(token.LET):
			parser.advance()
			decl, err := parser.globalVarDecl()
			if err != nil {
				errs = append(errs, err)
				parser.synchronize()
				continue
			}
			program.Globals = append(program.Globals, decl)
		case parser.checkType(token.FUNC):
			parser.advance()
			decl, err := parser.funcDecl()
			if err != nil {
				errs = append(errs, err)
				parser.synchronize()
				continue
			}
			program.Functions = append(program.Functions, decl)
		case parser.checkType(token.ENTRY):
			entryTok := parser.advance()
			if _, err := parser.consume(token.LCUR, "{"); err != nil {
				errs = append(errs, err)
				parser.synchronize()
				continue
			}
			body, err := parser.block()
			if err != nil {
				errs = append(errs, err)
				parser.synchronize()
				continue
			}
			decl := ast.EntryDecl{Body: body, Location: parser.loc(entryTok)}
			if program.Entry != nil {
				errs = append(errs, diagnostics.DuplicateEntry(decl.Location))
				continue
			}
			program.Entry = &decl
		default:
			tok := parser.peek()
			errs = append(errs, diagnostics.InvalidToken(parser.loc(tok), tok.Lexeme))
			parser.synchronize()
		}
	}

	return program, errs
}

// synchronize discards tokens until it reaches a plausible top-level
// declaration start, so that one malformed declaration doesn't cascade
// into spurious errors for the rest of the file.
func (parser *Parser) synchronize() {
	for !parser.isFinished() {
		switch parser.peek().TokenType {
		case token.LET, token.FUNC, token.ENTRY:
			return
		}
		parser.advance()
	}
}

func (parser *Parser) parseType() (ast.Type, error) {
	tok := parser.peek()
	if !parser.isMatch(typeTokenTypes...) {
		return ast.Void, diagnostics.ExpectSymbol(parser.loc(tok), "a type (int, float, bool, str, or void)")
	}
	switch tok.TokenType {
	case token.TYPE_INT:
		return ast.Int, nil
	case token.TYPE_FLOAT:
		return ast.Float, nil
	case token.TYPE_BOOL:
		return ast.Bool, nil
	case token.TYPE_STR:
		return ast.Str, nil
	default:
		return ast.Void, nil
	}
}

// globalVarDecl parses "let name: type;" at the top level, assuming the
// leading "let" keyword has already been consumed. Globals carry no
// initializer: their VM slot starts void until first assigned.
func (parser *Parser) globalVarDecl() (ast.GlobalVarDecl, error) {
	name, err := parser.consume(token.IDENTIFIER, "a variable name")
	if err != nil {
		return ast.GlobalVarDecl{}, err
	}
	if _, err := parser.consume(token.COLON, ":"); err != nil {
		return ast.GlobalVarDecl{}, err
	}
	declaredType, err := parser.parseType()
	if err != nil {
		return ast.GlobalVarDecl{}, err
	}
	if _, err := parser.consume(token.SEMICOLON, ";"); err != nil {
		return ast.GlobalVarDecl{}, err
	}
	return ast.GlobalVarDecl{
		Name:     name,
		Type:     declaredType,
		Location: parser.loc(name),
	}, nil
}

// funcDecl parses "func name(p1: t1, p2: t2): returnType { ... }", assuming
// the leading "func" keyword has already been consumed.
func (parser *Parser) funcDecl() (ast.FuncDecl, error) {
	funcTok := parser.previous()
	name, err := parser.consume(token.IDENTIFIER, "a function name")
	if err != nil {
		return ast.FuncDecl{}, err
	}

	if _, err := parser.consume(token.LPA, "("); err != nil {
		return ast.FuncDecl{}, err
	}

	var params []ast.Param
	if !parser.checkType(token.RPA) {
		for {
			paramName, err := parser.consume(token.IDENTIFIER, "a parameter name")
			if err != nil {
				return ast.FuncDecl{}, err
			}
			if _, err := parser.consume(token.COLON, ":"); err != nil {
				return ast.FuncDecl{}, err
			}
			paramType, err := parser.parseType()
			if err != nil {
				return ast.FuncDecl{}, err
			}
			params = append(params, ast.Param{Name: paramName.Lexeme, Type: paramType})
			if !parser.isMatch(token.COMMA) {
				break
			}
		}
	}
	if _, err := parser.consume(token.RPA, ")"); err != nil {
		return ast.FuncDecl{}, err
	}
	if _, err := parser.consume(token.COLON, ":"); err != nil {
		return ast.FuncDecl{}, err
	}
	returnType, err := parser.parseType()
	if err != nil {
		return ast.FuncDecl{}, err
	}

	if _, err := parser.consume(token.LCUR, "{"); err != nil {
		return ast.FuncDecl{}, err
	}
	body, err := parser.block()
	if err != nil {
		return ast.FuncDecl{}, err
	}

	return ast.FuncDecl{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
		Location:   parser.loc(funcTok),
	}, nil
}

// statement parses a single statement within a block.
func (parser *Parser) statement() (ast.Stmt, error) {
	switch {
	case parser.isMatch(token.LET):
		return parser.letStatement()
	case parser.isMatch(token.RETURN):
		return parser.returnStatement()
	case parser.isMatch(token.OUT):
		return parser.outStatement()
	case parser.isMatch(token.IF):
		return parser.ifStatement()
	case parser.isMatch(token.WHILE):
		return parser.whileStatement()
	case parser.checkType(token.LCUR):
		parser.advance()
		return parser.block()
	case parser.checkType(token.IDENTIFIER) && parser.peekIsAssignment():
		return parser.assignStatement()
	default:
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.SEMICOLON, ";"); err != nil {
			return nil, err
		}
		return ast.ExpressionStmt{Expression: expr}, nil
	}
}

// peekIsAssignment reports whether the upcoming tokens form "IDENTIFIER =",
// the only case where a statement starting with an identifier is an
// assignment rather than an expression statement (e.g. a bare call).
func (parser *Parser) peekIsAssignment() bool {
	if parser.position+1 >= len(parser.tokens) {
		return false
	}
	return parser.tokens[parser.position+1].TokenType == token.ASSIGN
}

// letStatement parses a local declaration: "let x: T = e;" or a batch of
// same-typed locals "let x, y: T = e1, e2;".
func (parser *Parser) letStatement() (ast.LetStmt, error) {
	var names []token.Token
	for {
		name, err := parser.consume(token.IDENTIFIER, "a variable name")
		if err != nil {
			return ast.LetStmt{}, err
		}
		names = append(names, name)
		if !parser.isMatch(token.COMMA) {
			break
		}
	}
	if _, err := parser.consume(token.COLON, ":"); err != nil {
		return ast.LetStmt{}, err
	}
	declaredType, err := parser.parseType()
	if err != nil {
		return ast.LetStmt{}, err
	}
	if _, err := parser.consume(token.ASSIGN, "="); err != nil {
		return ast.LetStmt{}, err
	}

	var inits []ast.Expression
	for {
		init, err := parser.expression()
		if err != nil {
			return ast.LetStmt{}, err
		}
		inits = append(inits, init)
		if !parser.isMatch(token.COMMA) {
			break
		}
	}
	if _, err := parser.consume(token.SEMICOLON, ";"); err != nil {
		return ast.LetStmt{}, err
	}

	if len(names) != len(inits) {
		return ast.LetStmt{}, diagnostics.WrongVarInit(parser.loc(names[0]), len(names), len(inits))
	}
	return ast.LetStmt{Names: names, Type: declaredType, Initializers: inits}, nil
}

func (parser *Parser) assignStatement() (ast.Stmt, error) {
	name := parser.advance()
	if _, err := parser.consume(token.ASSIGN, "="); err != nil {
		return nil, err
	}
	value, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, ";"); err != nil {
		return nil, err
	}
	return ast.AssignStmt{Name: name, Value: value}, nil
}

func (parser *Parser) returnStatement() (ast.Stmt, error) {
	returnTok := parser.previous()
	if parser.isMatch(token.SEMICOLON) {
		return ast.ReturnStmt{Value: nil, Location: parser.loc(returnTok)}, nil
	}
	value, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, ";"); err != nil {
		return nil, err
	}
	return ast.ReturnStmt{Value: value, Location: parser.loc(returnTok)}, nil
}

// outStatement parses "out(expr);", the language's only built-in print
// facility.
func (parser *Parser) outStatement() (ast.Stmt, error) {
	outTok := parser.previous()
	if _, err := parser.consume(token.LPA, "("); err != nil {
		return nil, err
	}
	expr, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, ")"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.SEMICOLON, ";"); err != nil {
		return nil, err
	}
	return ast.PrintStmt{Expression: expr, Location: parser.loc(outTok)}, nil
}

func (parser *Parser) ifStatement() (ast.Stmt, error) {
	ifTok := parser.previous()
	if _, err := parser.consume(token.LPA, "("); err != nil {
		return nil, err
	}
	condition, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, ")"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "{"); err != nil {
		return nil, err
	}
	thenBlock, err := parser.block()
	if err != nil {
		return nil, err
	}

	var elseStmt ast.Stmt
	if parser.isMatch(token.ELSE) {
		if parser.isMatch(token.IF) {
			elseStmt, err = parser.ifStatement()
			if err != nil {
				return nil, err
			}
		} else {
			if _, err := parser.consume(token.LCUR, "{"); err != nil {
				return nil, err
			}
			elseBlock, err := parser.block()
			if err != nil {
				return nil, err
			}
			elseStmt = elseBlock
		}
	}

	return ast.IfStmt{
		Condition: condition,
		Then:      thenBlock,
		Else:      elseStmt,
		Location:  parser.loc(ifTok),
	}, nil
}

func (parser *Parser) whileStatement() (ast.Stmt, error) {
	whileTok := parser.previous()
	if _, err := parser.consume(token.LPA, "("); err != nil {
		return nil, err
	}
	condition, err := parser.expression()
	if err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.RPA, ")"); err != nil {
		return nil, err
	}
	if _, err := parser.consume(token.LCUR, "{"); err != nil {
		return nil, err
	}
	body, err := parser.block()
	if err != nil {
		return nil, err
	}
	return ast.WhileStmt{Condition: condition, Body: body, Location: parser.loc(whileTok)}, nil
}

// block parses the statements of a brace-delimited block, assuming the
// opening '{' has already been consumed.
func (parser *Parser) block() (ast.BlockStmt, error) {
	openTok := parser.previous()
	var statements []ast.Stmt

	for !parser.checkType(token.RCUR) && !parser.isFinished() {
		stmt, err := parser.statement()
		if err != nil {
			return ast.BlockStmt{}, err
		}
		statements = append(statements, stmt)
	}

	if _, err := parser.consume(token.RCUR, "}"); err != nil {
		return ast.BlockStmt{}, err
	}
	return ast.BlockStmt{Statements: statements, Location: parser.loc(openTok)}, nil
}

// expression is the entry point for parsing expressions, starting at the
// lowest-precedence rule (logical or/and).
func (parser *Parser) expression() (ast.Expression, error) {
	return parser.or()
}

func (parser *Parser) or() (ast.Expression, error) {
	expr, err := parser.and()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(token.OR_OR) {
		op := parser.previous()
		right, err := parser.and()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) and() (ast.Expression, error) {
	expr, err := parser.equality()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(token.AND_AND) {
		op := parser.previous()
		right, err := parser.equality()
		if err != nil {
			return nil, err
		}
		expr = ast.Logical{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) equality() (ast.Expression, error) {
	expr, err := parser.comparison()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(equalityTokenTypes...) {
		op := parser.previous()
		right, err := parser.comparison()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) comparison() (ast.Expression, error) {
	expr, err := parser.term()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(comparisonTokenTypes...) {
		op := parser.previous()
		right, err := parser.term()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) term() (ast.Expression, error) {
	expr, err := parser.factor()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(termTokenTypes...) {
		op := parser.previous()
		right, err := parser.factor()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (parser *Parser) factor() (ast.Expression, error) {
	expr, err := parser.unary()
	if err != nil {
		return nil, err
	}
	for parser.isMatch(factorTokenTypes...) {
		op := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		expr = ast.Binary{Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

// unary parses unary prefix expressions: "!e" and "-e".
func (parser *Parser) unary() (ast.Expression, error) {
	if parser.isMatch(token.BANG, token.SUB) {
		op := parser.previous()
		right, err := parser.unary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Operator: op, Right: right}, nil
	}
	return parser.call()
}

// call parses a primary expression followed by an optional call suffix:
// "name(args...)".
func (parser *Parser) call() (ast.Expression, error) {
	if parser.checkType(token.IDENTIFIER) && parser.position+1 < len(parser.tokens) &&
		parser.tokens[parser.position+1].TokenType == token.LPA {
		callee := parser.advance()
		parser.advance() // consume '('

		var args []ast.Expression
		if !parser.checkType(token.RPA) {
			for {
				arg, err := parser.expression()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !parser.isMatch(token.COMMA) {
					break
				}
			}
		}
		closeTok, err := parser.consume(token.RPA, ")")
		if err != nil {
			return nil, err
		}
		return ast.Call{
			Callee:    callee,
			Arguments: args,
			Location:  source.New(parser.file, callee.Line, callee.Column, closeTok.EndColumn()),
		}, nil
	}
	return parser.primary()
}

// primary parses literals, variable references, and parenthesized
// expressions. Parentheses affect only precedence: the inner expression is
// returned as-is, with no wrapping AST node.
func (parser *Parser) primary() (ast.Expression, error) {
	switch {
	case parser.isMatch(token.FALSE):
		tok := parser.previous()
		return ast.Literal{Value: false, Location: parser.loc(tok)}, nil
	case parser.isMatch(token.TRUE):
		tok := parser.previous()
		return ast.Literal{Value: true, Location: parser.loc(tok)}, nil
	case parser.isMatch(token.INT, token.FLOAT, token.STRING):
		tok := parser.previous()
		return ast.Literal{Value: tok.Literal, Location: parser.loc(tok)}, nil
	case parser.isMatch(token.IDENTIFIER):
		return ast.Variable{Name: parser.previous()}, nil
	case parser.isMatch(token.LPA):
		expr, err := parser.expression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.consume(token.RPA, ")"); err != nil {
			return nil, err
		}
		return expr, nil
	}

	tok := parser.peek()
	return nil, diagnostics.ExpectExpression(parser.loc(tok))
}

// consume advances past the current token if it matches tokenType,
// otherwise it reports a diagnostic naming what was expected.
func (parser *Parser) consume(tokenType token.TokenType, expected string) (token.Token, error) {
	if parser.checkType(tokenType) {
		return parser.advance(), nil
	}
	tok := parser.peek()
	return token.Token{}, diagnostics.ExpectSymbol(parser.loc(tok), expected)
}
