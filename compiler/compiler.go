package compiler

import (
	"sort"

	"github.com/retrobas/rbasic/lexer"
	"github.com/retrobas/rbasic/symbols"
	"github.com/retrobas/rbasic/vm"
)

// forCtx is an open FOR awaiting its matching NEXT, used to backpatch
// the FOR_CHECK instruction's exit PC once the loop body's end is
// known (vm/frames.go's loopFrame.exitPC; see DESIGN.md for why this
// field exists beyond the two operands spec.md names for FOR_CHECK).
type forCtx struct {
	slot     int
	checkPC  int // index of the FOR_CHECK instruction
}

type whileCtx struct {
	startPC int
	jzPC    int
}

type doCtx struct {
	startPC int
}

// Compiler holds all state threaded through a single compilation pass.
type Compiler struct {
	syms *symbols.Table

	code     []vm.Instr
	pcToLine []int
	lineToPC map[int]int

	jumpTables [][]int // line numbers until finalize() resolves them to PCs

	fns map[string]*userFn

	forStack   []forCtx
	whileStack []whileCtx
	doStack    []doCtx

	// linePatches records code indices whose A operand is a source
	// line number awaiting PC resolution (GOTO/GOSUB targets).
	linePatches []int

	curLine int
}

// New returns a fresh Compiler with an empty symbol table.
func New() *Compiler {
	return &Compiler{
		syms:     symbols.New(),
		lineToPC: make(map[int]int),
		fns:      make(map[string]*userFn),
	}
}

// Compile compiles an ordered stored program into a vm.Program.
// source maps line number to source text (spec.md §3 "Compiled
// program", §4.3 "Algorithm").
func Compile(source map[int]string) (*vm.Program, error) {
	c := New()
	return c.Compile(source)
}

func (c *Compiler) Compile(source map[int]string) (*vm.Program, error) {
	lines := make([]int, 0, len(source))
	for ln := range source {
		lines = append(lines, ln)
	}
	sort.Ints(lines)

	for _, ln := range lines {
		c.curLine = ln
		c.lineToPC[ln] = len(c.code)
		if err := c.compileLine(ln, source[ln]); err != nil {
			return nil, err
		}
	}

	if len(c.forStack) > 0 {
		return nil, syntaxErr(c.curLine, 0, "FOR without matching NEXT")
	}
	if len(c.whileStack) > 0 {
		return nil, syntaxErr(c.curLine, 0, "WHILE without matching WEND")
	}
	if len(c.doStack) > 0 {
		return nil, syntaxErr(c.curLine, 0, "DO without matching LOOP")
	}

	c.emit(vm.Instr{Op: vm.OpHalt})

	if err := c.finalize(); err != nil {
		return nil, err
	}

	return &vm.Program{
		Code:       c.code,
		PCToLine:   c.pcToLine,
		LineToPC:   c.lineToPC,
		JumpTables: c.jumpTables,
		Symbols:    c.syms.Counts(),
	}, nil
}

// finalize resolves every GOTO/GOSUB line-number operand (recorded in
// linePatches) and every ON...GOTO/GOSUB jump table entry to a program
// counter.
func (c *Compiler) finalize() error {
	for _, pc := range c.linePatches {
		line := c.code[pc].A
		target, ok := c.lineToPC[line]
		if !ok {
			return undefStatement(c.pcToLine[pc], "no such line")
		}
		c.code[pc].A = target
	}
	for idx, table := range c.jumpTables {
		resolved := make([]int, len(table))
		for k, line := range table {
			target, ok := c.lineToPC[line]
			if !ok {
				return undefStatement(c.curLine, "no such line in ON...GOTO/GOSUB table")
			}
			resolved[k] = target
		}
		c.jumpTables[idx] = resolved
	}
	return nil
}

// emit appends instr to the code array, recording its originating
// source line, and returns its index.
func (c *Compiler) emit(instr vm.Instr) int {
	c.code = append(c.code, instr)
	c.pcToLine = append(c.pcToLine, c.curLine)
	return len(c.code) - 1
}

// emitLineJump emits a JMP or GOSUB whose operand is a source line
// number, to be resolved by finalize().
func (c *Compiler) emitLineJump(op vm.Op, line int) int {
	pc := c.emit(vm.Instr{Op: op, A: line})
	c.linePatches = append(c.linePatches, pc)
	return pc
}

func (c *Compiler) here() int { return len(c.code) }

// patch sets the A operand of the instruction at pc to target, used
// for the internally-known-target jumps of IF/WHILE/DO/FOR (spec.md
// §4.3 item 4).
func (c *Compiler) patch(pc, target int) {
	c.code[pc].A = target
}

// tokenCursor walks a single statement's token slice.
type tokenCursor struct {
	toks []lexer.Token
	pos  int
	line int
}

func (tc *tokenCursor) peek() lexer.Token {
	if tc.pos >= len(tc.toks) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return tc.toks[tc.pos]
}

func (tc *tokenCursor) peekAt(off int) lexer.Token {
	idx := tc.pos + off
	if idx >= len(tc.toks) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return tc.toks[idx]
}

func (tc *tokenCursor) next() lexer.Token {
	t := tc.peek()
	if tc.pos < len(tc.toks) {
		tc.pos++
	}
	return t
}

func (tc *tokenCursor) atEnd() bool {
	k := tc.peek().Kind
	return k == lexer.EOL || k == lexer.EOF
}

func (tc *tokenCursor) expectOp(text string) error {
	t := tc.next()
	if !t.Is(text) {
		return syntaxErr(tc.line, t.Col, "expected '"+text+"'")
	}
	return nil
}
