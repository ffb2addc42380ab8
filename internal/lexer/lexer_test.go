package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rocket/internal/token"
)

func TestNextTokenPunctuationAndKeywords(t *testing.T) {
	input := `let x = 5; fn add(a, b) { return sum(a, b); }`
	tokens, err := Lex(input)
	require.NoError(t, err)

	wantTypes := []token.Type{
		token.LET, token.IDENT, token.ASSIGN, token.INT, token.SEMICOLON,
		token.FN, token.IDENT, token.LPAREN, token.IDENT, token.COMMA, token.IDENT, token.RPAREN,
		token.LBRACE, token.RETURN, token.IDENT,
	}
	for i, want := range wantTypes {
		assert.Equal(t, want, tokens[i].Type, "token %d", i)
	}
}

func TestReadNumberIntAndFloat(t *testing.T) {
	tokens, err := Lex("42 3.14")
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, token.INT, tokens[0].Type)
	assert.Equal(t, "42", tokens[0].Literal)
	assert.Equal(t, token.FLOAT, tokens[1].Type)
	assert.Equal(t, "3.14", tokens[1].Literal)
}

func TestMalformedFloatMissingFractionalDigit(t *testing.T) {
	_, err := Lex("1.")
	require.Error(t, err)
	var lexErr *Error
	require.ErrorAs(t, err, &lexErr)
}

func TestReadStringEscapes(t *testing.T) {
	tokens, err := Lex(`"hi\n\t\"there\""`)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(tokens), 1)
	assert.Equal(t, "hi\n\t\"there\"", tokens[0].Literal)
}

func TestUnterminatedStringIsLexError(t *testing.T) {
	_, err := Lex(`"unterminated`)
	require.Error(t, err)
}

func TestSkipsLineAndBlockComments(t *testing.T) {
	tokens, err := Lex("// a comment\nlet /* inline */ x = 1;")
	require.NoError(t, err)
	assert.Equal(t, token.LET, tokens[0].Type)
	assert.Equal(t, token.IDENT, tokens[1].Type)
}

func TestUnterminatedBlockCommentIsLexError(t *testing.T) {
	_, err := Lex("/* never closed")
	require.Error(t, err)
}

func TestPositionsTrackLineAndColumn(t *testing.T) {
	tokens, err := Lex("let x = 1;\nlet y = 2;")
	require.NoError(t, err)
	assert.Equal(t, 1, tokens[0].Pos.Line)
	second := tokens[5]
	assert.Equal(t, token.LET, second.Type)
	assert.Equal(t, 2, second.Pos.Line)
}

func TestIllegalCharacter(t *testing.T) {
	_, err := Lex("let x = 5 @ 3;")
	require.Error(t, err)
}

func TestNonASCIIRejectedInIdentifierButAllowedInString(t *testing.T) {
	_, err := Lex("let café = 1;")
	require.Error(t, err)

	tokens, err := Lex(`"café"`)
	require.NoError(t, err)
	assert.Equal(t, "café", tokens[0].Literal)
}
