// Package parser is a recursive-descent parser over the Rocket token
// stream, consuming it with one token of lookahead (§4.2).
package parser

import (
	"fmt"
	"strconv"

	"rocket/internal/ast"
	"rocket/internal/token"
)

// Error is a ParseError: an unexpected token, a missing terminator, or a
// malformed declaration. Parsing halts on the first error; there is no
// recovery (§4.2).
type Error struct {
	Msg string
	Pos token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("ParseError: %s (%s)", e.Msg, e.Pos)
}

type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token stream and returns the resulting program.
func Parse(tokens []token.Token) (*ast.Program, error) {
	return New(tokens).ParseProgram()
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.atEOF() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.peek().Type {
	case token.LET:
		return p.parseLetStatement()
	case token.FN:
		return p.parseFnDecl()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		tok := p.next()
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.BreakStatement{Token: tok}, nil
	case token.CONTINUE:
		tok := p.next()
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.ContinueStatement{Token: tok}, nil
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseLetStatement() (*ast.LetStatement, error) {
	tok, _ := p.expect(token.LET)
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.LetStatement{Token: tok, Name: name.Literal, Value: value}, nil
}

func (p *Parser) parseFnDecl() (*ast.FnDecl, error) {
	tok, _ := p.expect(token.FN)
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for !p.lookahead(token.RPAREN) {
		if len(params) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		param, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, param.Literal)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FnDecl{Token: tok, Name: name.Literal, Params: params, Body: body}, nil
}

func (p *Parser) parseBlock() (*ast.BlockStatement, error) {
	tok, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	block := &ast.BlockStatement{Token: tok}
	for !p.lookahead(token.RBRACE) {
		if p.atEOF() {
			return nil, &Error{Msg: "unterminated block, expected '}'", Pos: p.peek().Pos}
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	p.next()
	return block, nil
}

func (p *Parser) parseIfStatement() (*ast.IfStatement, error) {
	tok, _ := p.expect(token.IF)
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Token: tok, Cond: cond, Then: then}
	if p.lookahead(token.ELSE) {
		p.next()
		if p.lookahead(token.IF) {
			elseIf, err := p.parseIfStatement()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseIf
		} else {
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Else = elseBlock
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhileStatement() (*ast.WhileStatement, error) {
	tok, _ := p.expect(token.WHILE)
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Token: tok, Cond: cond, Body: body}, nil
}

// parseForStatement disambiguates for-of from the C-style for by looking
// ahead past `for (let IDENT` for an `of` keyword, then rewinding.
func (p *Parser) parseForStatement() (ast.Statement, error) {
	tok, _ := p.expect(token.FOR)
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	mark := p.pos
	isForOf := p.lookahead(token.LET)
	if isForOf {
		p.next()
		isForOf = p.lookahead(token.IDENT)
		if isForOf {
			p.next()
			isForOf = p.lookahead(token.OF)
		}
	}
	p.pos = mark

	if isForOf {
		return p.parseForOf(tok)
	}
	return p.parseCFor(tok)
}

func (p *Parser) parseForOf(tok token.Token) (*ast.ForOfStatement, error) {
	if _, err := p.expect(token.LET); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.OF); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForOfStatement{Token: tok, VarName: name.Literal, Iterable: iterable, Body: body}, nil
}

func (p *Parser) parseCFor(tok token.Token) (*ast.CForStatement, error) {
	stmt := &ast.CForStatement{Token: tok}

	if p.lookahead(token.SEMICOLON) {
		p.next()
	} else if p.lookahead(token.LET) {
		init, err := p.parseLetStatement()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	} else {
		init, err := p.parseExprStatement()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	}

	if !p.lookahead(token.SEMICOLON) {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	if !p.lookahead(token.RPAREN) {
		post, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Post = post
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

func (p *Parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	tok, _ := p.expect(token.RETURN)
	if p.lookahead(token.SEMICOLON) {
		p.next()
		return &ast.ReturnStatement{Token: tok}, nil
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Token: tok, Value: value}, nil
}

func (p *Parser) parseExprStatement() (*ast.ExprStatement, error) {
	tok := p.peek()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ExprStatement{Token: tok, Expr: expr}, nil
}

// parseExpr parses a primary expression followed by any mix of call, index,
// and attribute suffixes (§4.2: there are no infix operators). An index or
// attribute suffix immediately followed by `=` becomes an assignment target
// and always ends the suffix chain.
func (p *Parser) parseExpr() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseSuffixes(expr)
}

func (p *Parser) parseSuffixes(expr ast.Expression) (ast.Expression, error) {
	for {
		switch p.peek().Type {
		case token.DOT:
			tok := p.next()
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			if p.lookahead(token.ASSIGN) {
				p.next()
				value, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				return &ast.AttrAssignExpr{Token: tok, Target: expr, Name: name.Literal, Value: value}, nil
			}
			expr = &ast.AttrExpr{Token: tok, Target: expr, Name: name.Literal}
		case token.LBRACKET:
			tok := p.next()
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			if p.lookahead(token.ASSIGN) {
				p.next()
				value, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				return &ast.IndexAssignExpr{Token: tok, Target: expr, Key: key, Value: value}, nil
			}
			expr = &ast.IndexExpr{Token: tok, Target: expr, Key: key}
		case token.LPAREN:
			tok := p.next()
			var args []ast.Expression
			for !p.lookahead(token.RPAREN) {
				if len(args) > 0 {
					if _, err := p.expect(token.COMMA); err != nil {
						return nil, err
					}
				}
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
			p.next()
			expr = &ast.CallExpr{Token: tok, Callee: expr, Args: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Type {
	case token.INT:
		p.next()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, &Error{Msg: "malformed integer literal '" + tok.Literal + "'", Pos: tok.Pos}
		}
		return &ast.IntLit{Token: tok, Value: v}, nil
	case token.FLOAT:
		p.next()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, &Error{Msg: "malformed float literal '" + tok.Literal + "'", Pos: tok.Pos}
		}
		return &ast.FloatLit{Token: tok, Value: v}, nil
	case token.STRING:
		p.next()
		return &ast.StrLit{Token: tok, Value: tok.Literal}, nil
	case token.TRUE:
		p.next()
		return &ast.BoolLit{Token: tok, Value: true}, nil
	case token.FALSE:
		p.next()
		return &ast.BoolLit{Token: tok, Value: false}, nil
	case token.NULL:
		p.next()
		return &ast.NullLit{Token: tok}, nil
	case token.IDENT:
		p.next()
		return &ast.Name{Token: tok, Value: tok.Literal}, nil
	case token.LPAREN:
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.LBRACKET:
		return p.parseListLit()
	case token.LBRACE:
		return p.parseDictLit()
	default:
		return nil, &Error{Msg: fmt.Sprintf("unexpected token %s at start of expression", tok.Type), Pos: tok.Pos}
	}
}

func (p *Parser) parseListLit() (*ast.ListLit, error) {
	tok, _ := p.expect(token.LBRACKET)
	lit := &ast.ListLit{Token: tok}
	for !p.lookahead(token.RBRACKET) {
		if len(lit.Elems) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
			if p.lookahead(token.RBRACKET) {
				break
			}
		}
		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lit.Elems = append(lit.Elems, elem)
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parseDictLit() (*ast.DictLit, error) {
	tok, _ := p.expect(token.LBRACE)
	lit := &ast.DictLit{Token: tok}
	for !p.lookahead(token.RBRACE) {
		if len(lit.Pairs) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
			if p.lookahead(token.RBRACE) {
				break
			}
		}
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lit.Pairs = append(lit.Pairs, ast.DictPair{Key: key, Value: value})
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) next() token.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) lookahead(t token.Type) bool {
	return p.peek().Type == t
}

func (p *Parser) atEOF() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) expect(t token.Type) (token.Token, error) {
	tok := p.peek()
	if tok.Type != t {
		return token.Token{}, &Error{
			Msg: fmt.Sprintf("unexpected token %s %q; expected %s", tok.Type, tok.Literal, t),
			Pos: tok.Pos,
		}
	}
	return p.next(), nil
}
