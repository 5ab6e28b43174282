package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-tylang/tylang/internal/lexer"
	"github.com/go-tylang/tylang/internal/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	toks, err := lexer.All(lexer.New(strings.NewReader(src)))
	require.NoError(t, err)
	var ks []token.Kind
	for _, tok := range toks {
		ks = append(ks, tok.Kind)
	}
	return ks
}

func TestLexKeywordsAndPunctuation(t *testing.T) {
	ks := kinds(t, "structure Point ( x: Float, y: Float )")
	require.Equal(t, []token.Kind{
		token.Structure, token.CamelName, token.LParen,
		token.SnakeName, token.Colon, token.CamelName, token.Comma,
		token.SnakeName, token.Colon, token.CamelName, token.RParen,
		token.EOF,
	}, ks)
}

func TestLexNumberAndArrow(t *testing.T) {
	toks, err := lexer.All(lexer.New(strings.NewReader("function f () -> Float ( return 4.5; )")))
	require.NoError(t, err)
	var numText string
	for _, tok := range toks {
		if tok.Kind == token.Number {
			numText = tok.Text
		}
	}
	require.Equal(t, "4.5", numText)
}

func TestLexSnakeVsCamel(t *testing.T) {
	ks := kinds(t, "line_a Line")
	require.Equal(t, []token.Kind{token.SnakeName, token.CamelName, token.EOF}, ks)
}

func TestLexIllegalCharacter(t *testing.T) {
	_, err := lexer.All(lexer.New(strings.NewReader("x = 1 $ 2")))
	require.Error(t, err)
	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
	require.Equal(t, '$', lexErr.Rune)
}

func TestLexSkipsWhitespaceAndTracksLines(t *testing.T) {
	toks, err := lexer.All(lexer.New(strings.NewReader("a\n\nb")))
	require.NoError(t, err)
	require.Len(t, toks, 3) // a, b, EOF
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 3, toks[1].Line)
}
