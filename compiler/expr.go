package compiler

import (
	"github.com/retrobas/rbasic/lexer"
	"github.com/retrobas/rbasic/vm"
)

// Precedence levels, lowest to highest, per spec.md §4.3 item 3:
// OR < AND < comparison < + - < * / MOD < ^ < unary + - NOT < primary.
const (
	precNone = iota
	precOr
	precAnd
	precCompare
	precAdd
	precMul
	precPow
	precUnary
)

func precOf(t lexer.Token) int {
	switch {
	case t.Is("OR"):
		return precOr
	case t.Is("AND"):
		return precAnd
	case t.Is("="), t.Is("<>"), t.Is("<"), t.Is("<="), t.Is(">"), t.Is(">="):
		return precCompare
	case t.Is("+"), t.Is("-"):
		return precAdd
	case t.Is("*"), t.Is("/"), t.Is("MOD"):
		return precMul
	}
	return precNone
}

// compileExpr compiles an expression at minimum precedence min,
// emitting stack-evaluation opcodes, via precedence climbing.
func (c *Compiler) compileExpr(tc *tokenCursor, min int) error {
	if err := c.compileUnary(tc); err != nil {
		return err
	}
	for {
		op := tc.peek()
		prec := precOf(op)
		if prec == precNone || prec < min {
			return nil
		}
		tc.next()
		// Standard left-associative precedence climbing. spec.md §4.3's
		// description of comparisons as non-chaining is not enforced as
		// a hard parse error here: `a = b = c` compiles as `(a = b) = c`
		// rather than being rejected.
		nextMin := prec + 1
		if err := c.compileExpr(tc, nextMin); err != nil {
			return err
		}
		c.emitBinOp(op)
	}
}

func (c *Compiler) emitBinOp(op lexer.Token) {
	switch {
	case op.Is("OR"):
		c.emit(vm.Instr{Op: vm.OpOr})
	case op.Is("AND"):
		c.emit(vm.Instr{Op: vm.OpAnd})
	case op.Is("="):
		c.emit(vm.Instr{Op: vm.OpCEq})
	case op.Is("<>"):
		c.emit(vm.Instr{Op: vm.OpCNe})
	case op.Is("<"):
		c.emit(vm.Instr{Op: vm.OpCLt})
	case op.Is("<="):
		c.emit(vm.Instr{Op: vm.OpCLe})
	case op.Is(">"):
		c.emit(vm.Instr{Op: vm.OpCGt})
	case op.Is(">="):
		c.emit(vm.Instr{Op: vm.OpCGe})
	case op.Is("+"):
		c.emit(vm.Instr{Op: vm.OpAdd})
	case op.Is("-"):
		c.emit(vm.Instr{Op: vm.OpSub})
	case op.Is("*"):
		c.emit(vm.Instr{Op: vm.OpMul})
	case op.Is("/"):
		c.emit(vm.Instr{Op: vm.OpDiv})
	case op.Is("MOD"):
		c.emit(vm.Instr{Op: vm.OpMod})
	}
}

// compileUnary handles unary +, -, NOT, then falls to the power level
// (right-associative) and primary.
func (c *Compiler) compileUnary(tc *tokenCursor) error {
	t := tc.peek()
	switch {
	case t.Is("-"):
		tc.next()
		if err := c.compileUnary(tc); err != nil {
			return err
		}
		c.emit(vm.Instr{Op: vm.OpNeg})
		return nil
	case t.Is("+"):
		tc.next()
		return c.compileUnary(tc)
	case t.Is("NOT"):
		tc.next()
		if err := c.compileUnary(tc); err != nil {
			return err
		}
		c.emit(vm.Instr{Op: vm.OpNot})
		return nil
	}
	return c.compilePow(tc)
}

// compilePow parses primary (^ unary)*, right-associative.
func (c *Compiler) compilePow(tc *tokenCursor) error {
	if err := c.compilePrimary(tc); err != nil {
		return err
	}
	if tc.peek().Is("^") {
		tc.next()
		if err := c.compileUnary(tc); err != nil {
			return err
		}
		c.emit(vm.Instr{Op: vm.OpPow})
	}
	return nil
}

// compilePrimary parses literals, parenthesized expressions,
// variables, array accesses, and function calls (including DEF FN
// expansion and the silent FN-prefix drop, spec.md §4.3).
func (c *Compiler) compilePrimary(tc *tokenCursor) error {
	t := tc.peek()
	switch t.Kind {
	case lexer.Number:
		tc.next()
		c.emit(vm.Instr{Op: vm.OpPushNum, D: t.Num})
		return nil
	case lexer.String:
		tc.next()
		c.emit(vm.Instr{Op: vm.OpPushStr, S: t.Text})
		return nil
	case lexer.LParen:
		tc.next()
		if err := c.compileExpr(tc, precOr); err != nil {
			return err
		}
		return tc.expectOp(")")
	}

	if t.Kind != lexer.Ident {
		return syntaxErr(tc.line, t.Col, "expected expression, got "+t.String())
	}

	// Silently drop a leading FN before another identifier.
	if t.Text == "FN" && tc.peekAt(1).Kind == lexer.Ident {
		tc.next()
		t = tc.peek()
	}

	name := t.Text
	tc.next()

	if fn, ok := c.fns[name]; ok {
		return c.compileUserFnCall(tc, fn)
	}
	if fnID, ok := vm.FnNames[name]; ok {
		return c.compileBuiltinCall(tc, fnID)
	}

	// Array access: name(idx[,idx]) — distinguished from a scalar by
	// the presence of a following '('.
	if tc.peek().Kind == lexer.LParen {
		tc.next()
		n, err := c.compileArgList(tc, -1)
		if err != nil {
			return err
		}
		if err := tc.expectOp(")"); err != nil {
			return err
		}
		slot := c.syms.ArraySlot(name)
		c.emit(vm.Instr{Op: vm.OpLoadArr, A: int(slot), B: n})
		return nil
	}

	slot := c.syms.ScalarSlot(name)
	c.emit(vm.Instr{Op: vm.OpLoad, A: int(slot)})
	return nil
}

// compileArgList compiles a parenthesized, comma-separated argument
// list (the opening paren already consumed), stopping at the closing
// paren. want is not used; arity is not enforced here (callers
// enforce it where it matters).
func (c *Compiler) compileArgList(tc *tokenCursor, want int) (int, error) {
	n := 0
	if tc.peek().Kind == lexer.RParen {
		return 0, nil
	}
	for {
		if err := c.compileExpr(tc, precOr); err != nil {
			return n, err
		}
		n++
		if tc.peek().Kind != lexer.Comma {
			break
		}
		tc.next()
	}
	return n, nil
}

// compileBuiltinCall compiles a call to a registered built-in
// function: FN(args) or bare FN for the zero-arg-callable set.
func (c *Compiler) compileBuiltinCall(tc *tokenCursor, fnID vm.FnID) error {
	if tc.peek().Kind != lexer.LParen {
		if !vm.FnBareOK[fnID] {
			return syntaxErr(tc.line, tc.peek().Col, "function requires parentheses")
		}
		c.emit(vm.Instr{Op: vm.OpCallFn, A: int(fnID), B: 0})
		return nil
	}
	tc.next()
	n, err := c.compileArgList(tc, -1)
	if err != nil {
		return err
	}
	if err := tc.expectOp(")"); err != nil {
		return err
	}
	c.emit(vm.Instr{Op: vm.OpCallFn, A: int(fnID), B: n})
	return nil
}
