// Package lexer scans source text into a stream of internal/token tokens.
// It reads through internal/fileinput so lex errors carry a precise
// "name:line" location, one rune at a time with a one-rune pushback
// buffer for lookahead.
package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/go-tylang/tylang/internal/fileinput"
	"github.com/go-tylang/tylang/internal/token"
)

// Error reports a lexical fault: an illegal character.
type Error struct {
	Loc  fileinput.Location
	Rune rune
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: illegal character %q", e.Loc, e.Rune)
}

// Lexer scans runes out of an Input into Tokens.
type Lexer struct {
	in   fileinput.Input
	peek rune
	have bool
}

// New returns a Lexer reading from the given named sources in order.
func New(sources ...io.Reader) *Lexer {
	lex := &Lexer{}
	lex.in.Queue = append(lex.in.Queue, sources...)
	return lex
}

func (lex *Lexer) readRune() (rune, error) {
	if lex.have {
		lex.have = false
		return lex.peek, nil
	}
	r, _, err := lex.in.ReadRune()
	return r, err
}

func (lex *Lexer) unread(r rune) {
	lex.peek = r
	lex.have = true
}

// Next scans and returns the next token, or a token.EOF token at end of
// input. Returns a non-nil *Error for an illegal character.
func (lex *Lexer) Next() (token.Token, error) {
	for {
		r, err := lex.readRune()
		if err == io.EOF {
			return token.Token{Kind: token.EOF, Line: lex.in.Scan.Line}, nil
		}
		if err != nil {
			return token.Token{}, err
		}
		if unicode.IsSpace(r) {
			continue
		}
		line := lex.in.Scan.Line
		switch {
		case unicode.IsDigit(r):
			return lex.lexNumber(r, line)
		case r == '_' || (unicode.IsLower(r) && unicode.IsLetter(r)):
			return lex.lexSnake(r, line)
		case unicode.IsUpper(r) && unicode.IsLetter(r):
			return lex.lexCamel(r, line)
		default:
			if kind, ok := punct(r); ok {
				if r == '-' {
					return lex.lexArrow(line)
				}
				return token.Token{Kind: kind, Text: string(r), Line: line}, nil
			}
			return token.Token{}, &Error{Loc: lex.in.Scan.Location, Rune: r}
		}
	}
}

func punct(r rune) (token.Kind, bool) {
	switch r {
	case '(':
		return token.LParen, true
	case ')':
		return token.RParen, true
	case ':':
		return token.Colon, true
	case '-':
		return token.Arrow, true
	case '.':
		return token.Period, true
	case ',':
		return token.Comma, true
	case ';':
		return token.Semicolon, true
	case '+':
		return token.Plus, true
	case '=':
		return token.Equals, true
	case '[':
		return token.LBracket, true
	case ']':
		return token.RBracket, true
	}
	return 0, false
}

func (lex *Lexer) lexArrow(line int) (token.Token, error) {
	r, err := lex.readRune()
	if err == nil && r == '>' {
		return token.Token{Kind: token.Arrow, Text: "->", Line: line}, nil
	}
	if err == nil {
		lex.unread(r)
	}
	return token.Token{}, &Error{Loc: fileinput.Location{Name: lex.in.Scan.Name, Line: line}, Rune: '-'}
}

func (lex *Lexer) lexNumber(first rune, line int) (token.Token, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	seenDot := false
	for {
		r, err := lex.readRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token.Token{}, err
		}
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
			continue
		}
		if r == '.' && !seenDot {
			seenDot = true
			sb.WriteRune(r)
			continue
		}
		lex.unread(r)
		break
	}
	return token.Token{Kind: token.Number, Text: sb.String(), Line: line}, nil
}

func (lex *Lexer) lexSnake(first rune, line int) (token.Token, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		r, err := lex.readRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token.Token{}, err
		}
		if r == '_' || unicode.IsDigit(r) || (unicode.IsLower(r) && unicode.IsLetter(r)) {
			sb.WriteRune(r)
			continue
		}
		lex.unread(r)
		break
	}
	text := sb.String()
	if kind, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kind, Text: text, Line: line}, nil
	}
	return token.Token{Kind: token.SnakeName, Text: text, Line: line}, nil
}

func (lex *Lexer) lexCamel(first rune, line int) (token.Token, error) {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		r, err := lex.readRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token.Token{}, err
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			continue
		}
		lex.unread(r)
		break
	}
	return token.Token{Kind: token.CamelName, Text: sb.String(), Line: line}, nil
}

// All scans every token up to and including the terminal EOF token.
func All(lex *Lexer) ([]token.Token, error) {
	var toks []token.Token
	for {
		t, err := lex.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks, nil
		}
	}
}
