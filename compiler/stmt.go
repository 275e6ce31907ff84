package compiler

import (
	"github.com/retrobas/rbasic/lexer"
	"github.com/retrobas/rbasic/vm"
)

// compileLine lexes one source line and compiles each `:`-separated
// statement in order (spec.md §4.3 item 1).
func (c *Compiler) compileLine(line int, text string) error {
	toks, lerr := lexer.Tokenize(text)
	if lerr != nil {
		if le, ok := lerr.(*lexer.Error); ok {
			return syntaxErr(line, le.Col, le.Msg)
		}
		return syntaxErr(line, 0, lerr.Error())
	}

	start := 0
	for start < len(toks) {
		end := start
		for end < len(toks) && toks[end].Kind != lexer.Colon && toks[end].Kind != lexer.EOL {
			end++
		}
		stmtToks := append(append([]lexer.Token{}, toks[start:end]...), lexer.Token{Kind: lexer.EOL})
		tc := &tokenCursor{toks: stmtToks, line: line}
		if len(stmtToks) > 1 { // more than just the synthetic EOL
			if err := c.compileStatement(tc); err != nil {
				return err
			}
		}
		if end < len(toks) && toks[end].Kind == lexer.Colon {
			start = end + 1
		} else {
			break
		}
	}
	return nil
}

// compileStatement dispatches on the leading keyword (spec.md §4.3's
// statement table). An identifier that is not a recognized keyword
// begins an implicit (LET-less) assignment.
func (c *Compiler) compileStatement(tc *tokenCursor) error {
	t := tc.peek()
	if t.Kind != lexer.Ident {
		return syntaxErr(tc.line, t.Col, "expected statement")
	}

	switch t.Text {
	case "REM":
		return nil
	case "LET":
		tc.next()
		return c.compileAssignment(tc)
	case "PRINT":
		tc.next()
		return c.compilePrint(tc)
	case "INPUT":
		tc.next()
		return c.compileInput(tc)
	case "IF":
		tc.next()
		return c.compileIf(tc)
	case "GOTO":
		tc.next()
		return c.compileGoto(tc)
	case "GOSUB":
		tc.next()
		return c.compileGosub(tc)
	case "RETURN":
		tc.next()
		c.emit(vm.Instr{Op: vm.OpRetsub})
		return nil
	case "ON":
		tc.next()
		return c.compileOn(tc)
	case "FOR":
		tc.next()
		return c.compileFor(tc)
	case "NEXT":
		tc.next()
		return c.compileNext(tc)
	case "WHILE":
		tc.next()
		return c.compileWhile(tc)
	case "WEND":
		tc.next()
		return c.compileWend(tc)
	case "DO":
		tc.next()
		return c.compileDo(tc)
	case "LOOP":
		tc.next()
		return c.compileLoop(tc)
	case "DIM":
		tc.next()
		return c.compileDim(tc)
	case "DEF":
		tc.next()
		return c.compileDefFn(tc)
	case "END", "STOP":
		tc.next()
		c.emit(vm.Instr{Op: vm.OpHalt})
		return nil
	case "RUN", "LIST", "NEW":
		tc.next()
		for !tc.atEnd() {
			tc.next()
		}
		return nil
	}

	if fnID, ok := vm.FnNames[t.Text]; ok && isGraphicsOrVoidStatementFn(fnID) {
		tc.next()
		return c.compileVoidCallStatement(tc, fnID)
	}

	return c.compileAssignment(tc)
}

func isGraphicsOrVoidStatementFn(id vm.FnID) bool {
	return vm.FnVoid[id] && id != vm.FnInput
}

// compileVoidCallStatement parses `NAME arg,arg,...` (parens optional)
// for graphics/void statements, handling LINE's three sub-forms
// specially (spec.md §4.3 "LINE statement — three forms").
func (c *Compiler) compileVoidCallStatement(tc *tokenCursor, fnID vm.FnID) error {
	if fnID == vm.FnLine {
		return c.compileLineStatement(tc)
	}

	paren := tc.peek().Kind == lexer.LParen
	if paren {
		tc.next()
	}
	n := 0
	if !tc.atEnd() && tc.peek().Kind != lexer.RParen {
		for {
			if err := c.compileExpr(tc, precOr); err != nil {
				return err
			}
			n++
			if tc.peek().Kind != lexer.Comma {
				break
			}
			tc.next()
		}
	}
	if paren {
		if err := tc.expectOp(")"); err != nil {
			return err
		}
	}
	c.emit(vm.Instr{Op: vm.OpCallFn, A: int(fnID), B: n})
	return nil
}

// compileLineStatement handles LINE (x1,y1)-(x2,y2)[,color],
// LINE -(x2,y2)[,color], and LINE x1,y1,x2,y2[,color].
func (c *Compiler) compileLineStatement(tc *tokenCursor) error {
	shorthand := false
	if tc.peek().Is("-") {
		shorthand = true
		tc.next()
	}

	n := 0
	parenForm := tc.peek().Kind == lexer.LParen
	if parenForm {
		tc.next()
	}
	for {
		if err := c.compileExpr(tc, precOr); err != nil {
			return err
		}
		n++
		if tc.peek().Kind != lexer.Comma {
			break
		}
		tc.next()
	}
	if parenForm {
		if err := tc.expectOp(")"); err != nil {
			return err
		}
	}

	if !shorthand && tc.peek().Is("-") {
		tc.next()
		if tc.peek().Kind == lexer.LParen {
			tc.next()
		}
		for {
			if err := c.compileExpr(tc, precOr); err != nil {
				return err
			}
			n++
			if tc.peek().Kind != lexer.Comma {
				break
			}
			tc.next()
		}
		if tc.peek().Kind == lexer.RParen {
			tc.next()
		}
	}

	if tc.peek().Kind == lexer.Comma {
		tc.next()
		if err := c.compileExpr(tc, precOr); err != nil {
			return err
		}
		n++
	}

	// Bit 30 of CALLFN's B operand flags the shorthand form; the VM
	// masks it off to recover the argument count.
	const lineShorthandBit = 1 << 30
	argc := n
	if shorthand {
		argc |= lineShorthandBit
	}
	c.emit(vm.Instr{Op: vm.OpCallFn, A: int(vm.FnLine), B: argc})
	return nil
}

// compileAssignment handles `v = e`, `v$ = e`, and `v(i[,j]) = e`.
func (c *Compiler) compileAssignment(tc *tokenCursor) error {
	nameTok := tc.next()
	if nameTok.Kind != lexer.Ident {
		return syntaxErr(tc.line, nameTok.Col, "expected variable name")
	}
	name := nameTok.Text

	if tc.peek().Kind == lexer.LParen {
		tc.next()
		n, err := c.compileArgList(tc, -1)
		if err != nil {
			return err
		}
		if err := tc.expectOp(")"); err != nil {
			return err
		}
		if err := tc.expectOp("="); err != nil {
			return err
		}
		if err := c.compileExpr(tc, precOr); err != nil {
			return err
		}
		slot := c.syms.ArraySlot(name)
		c.emit(vm.Instr{Op: vm.OpStoreArr, A: int(slot), B: n})
		return nil
	}

	if err := tc.expectOp("="); err != nil {
		return err
	}
	if err := c.compileExpr(tc, precOr); err != nil {
		return err
	}
	slot := c.syms.ScalarSlot(name)
	c.emit(vm.Instr{Op: vm.OpStore, A: int(slot)})
	return nil
}

// compilePrint handles the 14-column zone model: `,` zone-pads, `;`
// suppresses spacing, a trailing `;`/`,` suppresses the final newline.
func (c *Compiler) compilePrint(tc *tokenCursor) error {
	suppressNL := false
	if tc.atEnd() {
		c.emit(vm.Instr{Op: vm.OpPrintNl})
		return nil
	}
	for {
		suppressNL = false
		if tc.atEnd() {
			break
		}
		if tc.peek().Kind == lexer.Comma {
			tc.next()
			c.emit(vm.Instr{Op: vm.OpPrintSpc})
			suppressNL = true
			if tc.atEnd() {
				break
			}
			continue
		}
		if tc.peek().Kind == lexer.Semicolon {
			tc.next()
			suppressNL = true
			if tc.atEnd() {
				break
			}
			continue
		}
		// SPC(n)/TAB(n) are void column-control calls, not value
		// expressions: PRINT must not try to print a result for them.
		if (tc.peek().Is("SPC") || tc.peek().Is("TAB")) && tc.peekAt(1).Kind == lexer.LParen {
			fnID := vm.FnSpc
			if tc.peek().Is("TAB") {
				fnID = vm.FnTab
			}
			tc.next()
			if err := c.compileBuiltinCall(tc, fnID); err != nil {
				return err
			}
		} else {
			if err := c.compileExpr(tc, precOr); err != nil {
				return err
			}
			c.emit(vm.Instr{Op: vm.OpPrint})
		}
		if tc.peek().Kind == lexer.Comma || tc.peek().Kind == lexer.Semicolon {
			continue
		}
		break
	}
	if !suppressNL {
		c.emit(vm.Instr{Op: vm.OpPrintNl})
	} else {
		c.emit(vm.Instr{Op: vm.OpPrintSuppressNl})
	}
	return nil
}

// compileInput handles `INPUT ["prompt";] v`.
func (c *Compiler) compileInput(tc *tokenCursor) error {
	if tc.peek().Kind == lexer.String {
		prompt := tc.next()
		c.emit(vm.Instr{Op: vm.OpPushStr, S: prompt.Text})
		c.emit(vm.Instr{Op: vm.OpPrint})
		if tc.peek().Kind == lexer.Semicolon || tc.peek().Kind == lexer.Comma {
			tc.next()
		}
	}
	c.emit(vm.Instr{Op: vm.OpPrintSuppressNl})

	nameTok := tc.next()
	if nameTok.Kind != lexer.Ident {
		return syntaxErr(tc.line, nameTok.Col, "expected variable name")
	}
	slot := c.syms.ScalarSlot(nameTok.Text)
	c.emit(vm.Instr{Op: vm.OpCallFn, A: int(vm.FnInput), B: int(slot)})
	return nil
}

// compileIf handles the four THEN/ELSE forms (spec.md §4.3's IF row).
func (c *Compiler) compileIf(tc *tokenCursor) error {
	if err := c.compileExpr(tc, precOr); err != nil {
		return err
	}
	jzPC := c.emit(vm.Instr{Op: vm.OpJz})

	if !tc.peek().Is("THEN") {
		return syntaxErr(tc.line, tc.peek().Col, "expected THEN")
	}
	tc.next()

	if err := c.compileIfBranch(tc); err != nil {
		return err
	}

	if tc.peek().Is("ELSE") {
		tc.next()
		jmpEnd := c.emit(vm.Instr{Op: vm.OpJmp})
		c.patch(jzPC, c.here())
		if err := c.compileIfBranch(tc); err != nil {
			return err
		}
		c.patch(jmpEnd, c.here())
	} else {
		c.patch(jzPC, c.here())
	}
	return nil
}

// compileIfBranch compiles either a bare line number (GOTO shorthand)
// or an inline `:`-separated statement list, stopping at ELSE/EOL.
func (c *Compiler) compileIfBranch(tc *tokenCursor) error {
	if tc.peek().Kind == lexer.Number {
		lineTok := tc.next()
		c.emitLineJump(vm.OpJmp, int(lineTok.Num))
		return nil
	}
	for {
		if tc.atEnd() || tc.peek().Is("ELSE") {
			return nil
		}
		if err := c.compileStatement(tc); err != nil {
			return err
		}
		if tc.peek().Kind == lexer.Colon {
			tc.next()
			continue
		}
		return nil
	}
}

func (c *Compiler) compileGoto(tc *tokenCursor) error {
	lineTok := tc.next()
	if lineTok.Kind != lexer.Number {
		return syntaxErr(tc.line, lineTok.Col, "expected line number")
	}
	c.emitLineJump(vm.OpJmp, int(lineTok.Num))
	return nil
}

func (c *Compiler) compileGosub(tc *tokenCursor) error {
	lineTok := tc.next()
	if lineTok.Kind != lexer.Number {
		return syntaxErr(tc.line, lineTok.Col, "expected line number")
	}
	c.emitLineJump(vm.OpGosub, int(lineTok.Num))
	return nil
}

// compileOn handles `ON e GOTO l1,l2,...` / `ON e GOSUB ...`.
func (c *Compiler) compileOn(tc *tokenCursor) error {
	if err := c.compileExpr(tc, precOr); err != nil {
		return err
	}
	var op vm.Op
	switch {
	case tc.peek().Is("GOTO"):
		op = vm.OpOnGoto
	case tc.peek().Is("GOSUB"):
		op = vm.OpOnGosub
	default:
		return syntaxErr(tc.line, tc.peek().Col, "expected GOTO or GOSUB")
	}
	tc.next()

	var table []int
	for {
		lineTok := tc.next()
		if lineTok.Kind != lexer.Number {
			return syntaxErr(tc.line, lineTok.Col, "expected line number")
		}
		table = append(table, int(lineTok.Num))
		if tc.peek().Kind != lexer.Comma {
			break
		}
		tc.next()
	}
	idx := len(c.jumpTables)
	c.jumpTables = append(c.jumpTables, table)
	c.emit(vm.Instr{Op: op, A: idx})
	return nil
}

// compileFor handles `FOR v = s TO e [STEP k]`.
func (c *Compiler) compileFor(tc *tokenCursor) error {
	nameTok := tc.next()
	if nameTok.Kind != lexer.Ident {
		return syntaxErr(tc.line, nameTok.Col, "expected loop variable")
	}
	slot := c.syms.ScalarSlot(nameTok.Text)

	if err := tc.expectOp("="); err != nil {
		return err
	}
	if err := c.compileExpr(tc, precOr); err != nil {
		return err
	}
	c.emit(vm.Instr{Op: vm.OpStore, A: int(slot)})

	if !tc.peek().Is("TO") {
		return syntaxErr(tc.line, tc.peek().Col, "expected TO")
	}
	tc.next()
	if err := c.compileExpr(tc, precOr); err != nil {
		return err
	}

	if tc.peek().Is("STEP") {
		tc.next()
		if err := c.compileExpr(tc, precOr); err != nil {
			return err
		}
	} else {
		c.emit(vm.Instr{Op: vm.OpPushNum, D: 1})
	}

	c.emit(vm.Instr{Op: vm.OpForInit, A: int(slot)})
	checkPC := c.emit(vm.Instr{Op: vm.OpForCheck, A: -1})
	c.patch(checkPC, c.here()) // body_pc: the opcode right after FOR_CHECK

	c.forStack = append(c.forStack, forCtx{slot: int(slot), checkPC: checkPC})
	return nil
}

// compileNext handles `NEXT [v]`, closing the innermost (or named)
// open FOR by backpatching its FOR_CHECK's exit PC to the instruction
// right after the emitted FOR_INCR.
func (c *Compiler) compileNext(tc *tokenCursor) error {
	slot := -1
	if tc.peek().Kind == lexer.Ident {
		nameTok := tc.next()
		slot = int(c.syms.ScalarSlot(nameTok.Text))
	}

	if len(c.forStack) == 0 {
		return syntaxErr(tc.line, tc.peek().Col, "NEXT without FOR")
	}
	ctxIdx := len(c.forStack) - 1
	if slot >= 0 {
		found := false
		for i := len(c.forStack) - 1; i >= 0; i-- {
			if c.forStack[i].slot == slot {
				ctxIdx = i
				found = true
				break
			}
		}
		if !found {
			return syntaxErr(tc.line, tc.peek().Col, "NEXT variable does not match any open FOR")
		}
	}
	ctx := c.forStack[ctxIdx]
	c.forStack = c.forStack[:ctxIdx]

	c.emit(vm.Instr{Op: vm.OpForIncr, A: ctx.slot})
	c.code[ctx.checkPC].D = float64(c.here())
	return nil
}

// compileWhile pushes the loop start PC and compiles the condition,
// emitting a JZ whose target is patched at WEND.
func (c *Compiler) compileWhile(tc *tokenCursor) error {
	start := c.here()
	if err := c.compileExpr(tc, precOr); err != nil {
		return err
	}
	jz := c.emit(vm.Instr{Op: vm.OpJz})
	c.whileStack = append(c.whileStack, whileCtx{startPC: start, jzPC: jz})
	return nil
}

func (c *Compiler) compileWend(tc *tokenCursor) error {
	if len(c.whileStack) == 0 {
		return syntaxErr(tc.line, tc.peek().Col, "WEND without WHILE")
	}
	n := len(c.whileStack) - 1
	ctx := c.whileStack[n]
	c.whileStack = c.whileStack[:n]
	c.emit(vm.Instr{Op: vm.OpJmp, A: ctx.startPC})
	c.patch(ctx.jzPC, c.here())
	return nil
}

func (c *Compiler) compileDo(tc *tokenCursor) error {
	c.doStack = append(c.doStack, doCtx{startPC: c.here()})
	return nil
}

// compileLoop handles `LOOP [UNTIL cond]`.
func (c *Compiler) compileLoop(tc *tokenCursor) error {
	if len(c.doStack) == 0 {
		return syntaxErr(tc.line, tc.peek().Col, "LOOP without DO")
	}
	n := len(c.doStack) - 1
	ctx := c.doStack[n]
	c.doStack = c.doStack[:n]

	if tc.peek().Is("UNTIL") {
		tc.next()
		if err := c.compileExpr(tc, precOr); err != nil {
			return err
		}
		jz := c.emit(vm.Instr{Op: vm.OpJz})
		c.emit(vm.Instr{Op: vm.OpJmp, A: ctx.startPC})
		c.patch(jz, c.here())
		return nil
	}
	c.emit(vm.Instr{Op: vm.OpJmp, A: ctx.startPC})
	return nil
}

// compileDim handles `DIM name(n)` / `DIM name(r,c)`, comma-separated.
func (c *Compiler) compileDim(tc *tokenCursor) error {
	for {
		nameTok := tc.next()
		if nameTok.Kind != lexer.Ident {
			return syntaxErr(tc.line, nameTok.Col, "expected array name")
		}
		if err := tc.expectOp("("); err != nil {
			return err
		}
		n := 0
		for {
			if err := c.compileExpr(tc, precOr); err != nil {
				return err
			}
			n++
			if tc.peek().Kind != lexer.Comma {
				break
			}
			tc.next()
		}
		if err := tc.expectOp(")"); err != nil {
			return err
		}
		slot := c.syms.ArraySlot(nameTok.Text)
		c.emit(vm.Instr{Op: vm.OpDimArr, A: int(slot), B: n})

		if tc.peek().Kind != lexer.Comma {
			break
		}
		tc.next()
	}
	return nil
}
