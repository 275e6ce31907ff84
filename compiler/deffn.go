package compiler

import (
	"fmt"
	"strings"

	"github.com/retrobas/rbasic/lexer"
	"github.com/retrobas/rbasic/vm"
)

// userFn is a registered DEF FN: its hidden parameter slot names and
// its body's source text, re-lexed at every call site (spec.md §4.3
// "DEF FN expansion", §9 "User-defined functions by textual
// re-lexing").
type userFn struct {
	name       string
	paramSlots []string // hidden scalar names, e.g. "FNADD1"
	body       string
}

// compileDefFn parses `DEF FN name(p1,...) = expr` and registers it.
// Nothing is emitted at the definition site.
func (c *Compiler) compileDefFn(tc *tokenCursor) error {
	if !tc.peek().Is("FN") {
		return syntaxErr(tc.line, tc.peek().Col, "expected FN after DEF")
	}
	tc.next()
	nameTok := tc.next()
	if nameTok.Kind != lexer.Ident {
		return syntaxErr(tc.line, nameTok.Col, "expected function name")
	}
	name := nameTok.Text

	var params []string
	if tc.peek().Kind == lexer.LParen {
		tc.next()
		for tc.peek().Kind != lexer.RParen {
			p := tc.next()
			if p.Kind != lexer.Ident {
				return syntaxErr(tc.line, p.Col, "expected parameter name")
			}
			params = append(params, p.Text)
			if tc.peek().Kind == lexer.Comma {
				tc.next()
				continue
			}
			break
		}
		if err := tc.expectOp(")"); err != nil {
			return err
		}
	}
	if err := tc.expectOp("="); err != nil {
		return err
	}

	// The remainder of the statement, up to EOL/colon, is the body's
	// source text: re-render it from the remaining tokens so that it
	// can be re-lexed at each call site without retaining a reference
	// to the original line's exact spelling.
	var body strings.Builder
	for !tc.atEnd() {
		t := tc.next()
		if body.Len() > 0 {
			body.WriteByte(' ')
		}
		body.WriteString(tokenSource(t))
	}

	hiddenSlots := make([]string, len(params))
	for i, p := range params {
		suffix := ""
		if strings.HasSuffix(strings.ToUpper(p), "$") {
			suffix = "$"
		}
		hiddenSlots[i] = fmt.Sprintf("FN%s%d%s", name, i+1, suffix)
	}

	// Rewrite references to the declared parameter names in the body
	// to their hidden slot names, so re-lexing the body in any later
	// context still resolves to this call's bound arguments.
	bodyText := substituteParams(body.String(), params, hiddenSlots)

	c.fns[name] = &userFn{name: name, paramSlots: hiddenSlots, body: bodyText}
	return nil
}

// tokenSource renders a token back to source text, quoting strings.
func tokenSource(t lexer.Token) string {
	switch t.Kind {
	case lexer.String:
		return `"` + t.Text + `"`
	case lexer.Number:
		return vm.FormatNumber(t.Num)
	default:
		return t.Text
	}
}

// substituteParams replaces whole-word occurrences of each param name
// with its hidden slot name in raw source text.
func substituteParams(src string, params, hidden []string) string {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return src
	}
	var out strings.Builder
	for _, t := range toks {
		if t.Kind == lexer.EOL {
			break
		}
		text := tokenSource(t)
		if t.Kind == lexer.Ident {
			for i, p := range params {
				if t.Text == strings.ToUpper(p) {
					text = hidden[i]
					break
				}
			}
		}
		if out.Len() > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(text)
	}
	return out.String()
}

// compileUserFnCall expands a call to a registered DEF FN at the call
// site: compile each argument, store (reverse order) into the hidden
// parameter slots, then re-lex and compile the body text in place.
func (c *Compiler) compileUserFnCall(tc *tokenCursor, fn *userFn) error {
	var argc int
	if tc.peek().Kind == lexer.LParen {
		tc.next()
		n, err := c.compileArgList(tc, len(fn.paramSlots))
		if err != nil {
			return err
		}
		argc = n
		if err := tc.expectOp(")"); err != nil {
			return err
		}
	}
	if argc != len(fn.paramSlots) {
		return &CompileError{Kind: "ARGUMENT COUNT MISMATCH", Line: tc.line,
			Msg: fmt.Sprintf("%s expects %d argument(s), got %d", fn.name, len(fn.paramSlots), argc)}
	}

	for i := argc - 1; i >= 0; i-- {
		slot := c.syms.ScalarSlot(fn.paramSlots[i])
		c.emit(vm.Instr{Op: vm.OpStore, A: int(slot)})
	}

	bodyToks, err := lexer.Tokenize(fn.body)
	if err != nil {
		return syntaxErr(tc.line, 0, "malformed DEF FN body")
	}
	bodyCur := &tokenCursor{toks: bodyToks, line: tc.line}
	return c.compileExpr(bodyCur, precOr)
}
