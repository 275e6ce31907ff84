package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retrobas/rbasic/lexer"
)

func kinds(toks []lexer.Token) []lexer.Kind {
	ks := make([]lexer.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestTokenizeBasics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []lexer.Kind
	}{
		{"empty", "", []lexer.Kind{lexer.EOL}},
		{"assignment", "A = 3", []lexer.Kind{lexer.Ident, lexer.Op, lexer.Number, lexer.EOL}},
		{"string-ident-num", `A$="HI" : N=7`, []lexer.Kind{
			lexer.Ident, lexer.Op, lexer.String, lexer.Colon, lexer.Ident, lexer.Op, lexer.Number, lexer.EOL,
		}},
		{"two-char-ops", "A<=B : A>=B : A<>B", []lexer.Kind{
			lexer.Ident, lexer.Op, lexer.Ident, lexer.Colon,
			lexer.Ident, lexer.Op, lexer.Ident, lexer.Colon,
			lexer.Ident, lexer.Op, lexer.Ident, lexer.EOL,
		}},
		{"comment", "10 PRINT 1 ' trailing comment", nil}, // checked separately
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.want == nil {
				return
			}
			toks, err := lexer.Tokenize(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, kinds(toks))
		})
	}
}

func TestTokenizeComment(t *testing.T) {
	toks, err := lexer.Tokenize("PRINT 1 ' ignored")
	require.NoError(t, err)
	assert.Equal(t, []lexer.Kind{lexer.Ident, lexer.Number, lexer.EOL}, kinds(toks))
}

func TestTokenizeREMStartsComment(t *testing.T) {
	toks, err := lexer.Tokenize("PRINT 1 : REM this is a comment : PRINT 2")
	require.NoError(t, err)
	assert.Equal(t, []lexer.Kind{lexer.Ident, lexer.Number, lexer.Colon, lexer.EOL}, kinds(toks))
}

func TestTokenizeMODIsOperator(t *testing.T) {
	toks, err := lexer.Tokenize("A = B MOD C")
	require.NoError(t, err)
	require.Len(t, toks, 6)
	assert.Equal(t, lexer.Op, toks[3].Kind)
	assert.Equal(t, "MOD", toks[3].Text)
}

func TestTokenizeDollarIdent(t *testing.T) {
	toks, err := lexer.Tokenize(`LEFT$(A$,3)`)
	require.NoError(t, err)
	assert.Equal(t, "LEFT$", toks[0].Text)
	assert.Equal(t, "A$", toks[2].Text)
}

func TestTokenizeIdentCaseInsensitive(t *testing.T) {
	toks, err := lexer.Tokenize("print X")
	require.NoError(t, err)
	assert.Equal(t, "PRINT", toks[0].Text)
	assert.Equal(t, "X", toks[1].Text)
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := lexer.Tokenize(`PRINT "hi`)
	require.Error(t, err)
	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
}

func TestTokenizeColumns(t *testing.T) {
	toks, err := lexer.Tokenize("A = 3")
	require.NoError(t, err)
	assert.Equal(t, 1, toks[0].Col)
	assert.Equal(t, 3, toks[1].Col)
	assert.Equal(t, 5, toks[2].Col)
}

func TestNextYieldsEOFAfterEOL(t *testing.T) {
	l := lexer.New("A")
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, lexer.Ident, tok.Kind)

	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, lexer.EOL, tok.Kind)

	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, lexer.EOF, tok.Kind)

	tok, err = l.Next()
	require.NoError(t, err)
	assert.Equal(t, lexer.EOF, tok.Kind)
}

func TestTokenizeNumberFractional(t *testing.T) {
	toks, err := lexer.Tokenize("3.14")
	require.NoError(t, err)
	assert.InDelta(t, 3.14, toks[0].Num, 1e-9)
}

// TestTokenIsMatchesPunctuation guards against Is only recognizing
// Ident/Op kinds: punctuation (parens, comma, semicolon, colon) lexes
// to its own Kind but must still compare equal on its literal text, or
// every expectOp("(")/expectOp(")") call in the compiler silently fails
// to match a real paren.
func TestTokenIsMatchesPunctuation(t *testing.T) {
	toks, err := lexer.Tokenize(`LEFT$(A$,3)`)
	require.NoError(t, err)
	require.Len(t, toks, 7) // LEFT$ ( A$ , 3 ) EOL

	lparen, comma, rparen := toks[1], toks[3], toks[5]
	assert.True(t, lparen.Is("("))
	assert.True(t, comma.Is(","))
	assert.True(t, rparen.Is(")"))

	assert.False(t, rparen.Is("("))
	assert.False(t, lparen.Is(")"))
}

func TestTokenIsMatchesColonAndSemicolon(t *testing.T) {
	toks, err := lexer.Tokenize(`PRINT A; B : PRINT C`)
	require.NoError(t, err)

	var sawSemicolon, sawColon bool
	for _, tok := range toks {
		if tok.Kind == lexer.Semicolon {
			sawSemicolon = tok.Is(";")
		}
		if tok.Kind == lexer.Colon {
			sawColon = tok.Is(":")
		}
	}
	assert.True(t, sawSemicolon)
	assert.True(t, sawColon)
}

func TestTokenIsRejectsMismatchedKind(t *testing.T) {
	toks, err := lexer.Tokenize(`A = 3`)
	require.NoError(t, err)
	// An identifier token must not satisfy Is for punctuation text.
	assert.False(t, toks[0].Is("("))
}
