// Package lexer turns one line of BASIC source into a token stream.
package lexer

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

// Token kinds.
const (
	Number Kind = iota
	String
	Ident
	Op
	LParen
	RParen
	Comma
	Semicolon
	Colon
	LBracket
	EOL
	EOF
)

var kindNames = [...]string{
	Number:    "number",
	String:    "string",
	Ident:     "ident",
	Op:        "operator",
	LParen:    "(",
	RParen:    ")",
	Comma:     ",",
	Semicolon: ";",
	Colon:     ":",
	LBracket:  "[",
	EOL:       "end-of-line",
	EOF:       "end-of-file",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Token is a single lexical unit, carrying its source column for
// diagnostics.
type Token struct {
	Kind Kind
	Text string  // canonical text: upper-cased for identifiers/operators
	Num  float64 // populated when Kind == Number
	Col  int     // 1-based column where the token starts
}

func (t Token) String() string {
	switch t.Kind {
	case String:
		return fmt.Sprintf("%q", t.Text)
	case EOL, EOF:
		return t.Kind.String()
	default:
		return t.Text
	}
}

// Is reports whether the token's canonical text matches (case already
// normalized by the lexer). Punctuation kinds carry their own literal
// text (e.g. LParen's Text is "("), so they compare the same way
// identifiers and operators do.
func (t Token) Is(text string) bool {
	switch t.Kind {
	case Ident, Op, LParen, RParen, Comma, Semicolon, Colon:
		return t.Text == text
	}
	return false
}
