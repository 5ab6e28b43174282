// Package parser implements the hand-written recursive-descent parser
//: tokens from internal/lexer become a preliminary
// internal/ast.Program whose type names are still plain strings.
package parser

import (
	"fmt"

	"github.com/go-tylang/tylang/internal/ast"
	"github.com/go-tylang/tylang/internal/lexer"
	"github.com/go-tylang/tylang/internal/token"
)

// Error reports a grammar violation, carrying the offending token's line
// for diagnostics.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parser turns a token stream into a preliminary ast.Program.
type Parser struct {
	lex *lexer.Lexer
	tok token.Token
}

// New constructs a Parser and primes its first token.
func New(lex *lexer.Lexer) (*Parser, error) {
	p := &Parser{lex: lex}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *Parser) errorf(format string, args ...interface{}) *Error {
	return &Error{Line: p.tok.Line, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	if p.tok.Kind != kind {
		return token.Token{}, p.errorf("expected %v, got %v", kind, p.tok.Kind)
	}
	t := p.tok
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

// Parse reads a whole program. On error it returns the partially-built
// Program alongside a non-nil error; callers MUST NOT proceed to
// finalization when the error is non-nil, but may still inspect/dump the
// partial tree for diagnostics.
func Parse(lex *lexer.Lexer) (*ast.Program, error) {
	p, err := New(lex)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

// ParseProgram parses the sequence of structure and function declarations
// that make up a whole source file.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.tok.Kind != token.EOF {
		switch p.tok.Kind {
		case token.Structure:
			s, err := p.parseStructureDef()
			if err != nil {
				return prog, err
			}
			prog.Structures = append(prog.Structures, *s)
		case token.Function:
			f, err := p.parseFunctionDef()
			if err != nil {
				return prog, err
			}
			prog.Functions = append(prog.Functions, *f)
		default:
			return prog, p.errorf("expected %v or %v, got %v", token.Structure, token.Function, p.tok.Kind)
		}
	}
	return prog, nil
}

func (p *Parser) parseStructureDef() (*ast.StructureDef, error) {
	line := p.tok.Line
	if _, err := p.expect(token.Structure); err != nil {
		return nil, err
	}
	name, err := p.expect(token.CamelName)
	if err != nil {
		return nil, err
	}
	var typeParams []string
	if p.tok.Kind == token.LBracket {
		typeParams, err = p.parseTypeParams()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	fields, err := p.parseFieldDefs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return &ast.StructureDef{Name: name.Text, TypeParams: typeParams, Fields: fields, Line: line}, nil
}

func (p *Parser) parseTypeParams() ([]string, error) {
	if _, err := p.expect(token.LBracket); err != nil {
		return nil, err
	}
	var names []string
	for p.tok.Kind != token.RBracket {
		name, err := p.expect(token.CamelName)
		if err != nil {
			return nil, err
		}
		names = append(names, name.Text)
		if p.tok.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	return names, nil
}

func (p *Parser) parseFieldDefs() ([]ast.FieldDef, error) {
	var fields []ast.FieldDef
	for p.tok.Kind != token.RParen {
		name, err := p.expect(token.SnakeName)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		typ, err := p.expect(token.CamelName)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.FieldDef{Name: name.Text, Type: typ.Text})
		if p.tok.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return fields, nil
}

func (p *Parser) parseFunctionDef() (*ast.FunctionDef, error) {
	line := p.tok.Line
	if _, err := p.expect(token.Function); err != nil {
		return nil, err
	}
	name, err := p.expect(token.SnakeName)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	params, err := p.parseParamDefs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Arrow); err != nil {
		return nil, err
	}
	ret, err := p.expect(token.CamelName)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var body []ast.Statement
	for p.tok.Kind != token.RParen {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
		if _, err := p.expect(token.Semicolon); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return &ast.FunctionDef{Name: name.Text, Params: params, ReturnType: ret.Text, Body: body, Line: line}, nil
}

func (p *Parser) parseParamDefs() ([]ast.ParamDef, error) {
	var params []ast.ParamDef
	for p.tok.Kind != token.RParen {
		name, err := p.expect(token.SnakeName)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon); err != nil {
			return nil, err
		}
		typ, err := p.expect(token.CamelName)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.ParamDef{Name: name.Text, Type: typ.Text})
		if p.tok.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return params, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	line := p.tok.Line
	if p.tok.Kind == token.Return {
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return ast.Return{Expr: expr, Line: line}, nil
	}
	name, err := p.expect(token.SnakeName)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Equals); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.Assignment{Name: name.Text, Expr: expr, Line: line}, nil
}

// parseExpression parses a left-associative chain of '+' operators over
// parsePostfix terms (property access binds tighter than '+').
func (p *Parser) parseExpression() (ast.Expression, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == token.Plus {
		line := p.tok.Line
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Op: ast.Add, Left: left, Right: right, Line: line}
	}
	return left, nil
}

// parsePostfix parses a primary expression followed by zero or more `.name`
// property accesses.
func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == token.Period {
		line := p.tok.Line
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.expect(token.SnakeName)
		if err != nil {
			return nil, err
		}
		expr = ast.PropertyAccess{Inner: expr, Property: name.Text, Line: line}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch p.tok.Kind {
	case token.Number:
		return p.parseLiteral()
	case token.SnakeName:
		return p.parseSnakePrimary()
	case token.CamelName:
		return p.parseConstruction()
	case token.LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf("unexpected token %v in expression", p.tok.Kind)
	}
}

func (p *Parser) parseLiteral() (ast.Expression, error) {
	tok := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	var val float64
	if _, err := fmt.Sscanf(tok.Text, "%g", &val); err != nil {
		return nil, &Error{Line: tok.Line, Message: fmt.Sprintf("malformed number literal %q: %v", tok.Text, err)}
	}
	return ast.Literal{Tag: "Float", Value: val, Line: tok.Line}, nil
}

// parseSnakePrimary parses either a bare variable reference or a
// snake_name(...) function call.
func (p *Parser) parseSnakePrimary() (ast.Expression, error) {
	name := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.Kind != token.LParen {
		return ast.VariableReference{Name: name.Text, Line: name.Line}, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	args, err := p.parseNamedArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return ast.FunctionCall{Name: name.Text, Args: args, Line: name.Line}, nil
}

// parseConstruction parses `CamelName TypeArgs? (Args)`.
func (p *Parser) parseConstruction() (ast.Expression, error) {
	name := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	var typeArgs []ast.TypeArg
	if p.tok.Kind == token.LBracket {
		var err error
		typeArgs, err = p.parseTypeArgs()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	args, err := p.parseNamedArgs()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	return ast.Construction{Type: name.Text, TypeArgs: typeArgs, Args: args, Line: name.Line}, nil
}

func (p *Parser) parseTypeArgs() ([]ast.TypeArg, error) {
	if _, err := p.expect(token.LBracket); err != nil {
		return nil, err
	}
	var args []ast.TypeArg
	for p.tok.Kind != token.RBracket {
		param, err := p.expect(token.CamelName)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Equals); err != nil {
			return nil, err
		}
		typ, err := p.expect(token.CamelName)
		if err != nil {
			return nil, err
		}
		args = append(args, ast.TypeArg{Param: param.Text, Type: typ.Text})
		if p.tok.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if _, err := p.expect(token.RBracket); err != nil {
		return nil, err
	}
	return args, nil
}

// parseNamedArgs parses `Args := arg (',' arg)* ','?` with arg being
// `snake_name '=' expression`. Arguments are named-only: there
// is no positional form.
func (p *Parser) parseNamedArgs() ([]ast.NamedArg, error) {
	var args []ast.NamedArg
	for p.tok.Kind != token.RParen {
		name, err := p.expect(token.SnakeName)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Equals); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, ast.NamedArg{Name: name.Text, Expr: expr})
		if p.tok.Kind == token.Comma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return args, nil
}
