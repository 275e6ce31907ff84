package vm

import "github.com/retrobas/rbasic/symbols"

// Program is the flat bytecode produced by the compiler and consumed
// by the VM (spec.md §3 "Compiled program").
type Program struct {
	Code       []Instr
	PCToLine   []int         // parallel to Code: originating source line
	LineToPC   map[int]int   // source line -> first opcode emitted for it
	JumpTables [][]int       // resolved PC arrays, one per ON...GOTO/GOSUB
	Symbols    symbols.Counts
}
