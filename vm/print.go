package vm

import "strings"

const zoneWidth = 14

// printState tracks the VM's output column across PRINT statements,
// per spec.md §4.4 "PRINT column model".
type printState struct {
	col int
}

// write advances the column counter by the length of s and forwards
// it to the console host.
func (p *printState) write(c ConsoleHost, s string) {
	c.Write(s)
	p.col += len(s)
}

// newline writes a newline and resets the column counter.
func (p *printState) newline(c ConsoleHost) {
	c.Write("\n")
	p.col = 0
}

// zonePad advances to the next 14-column print zone: (14 - col mod 14)
// spaces, or 14 if already aligned.
func (p *printState) zonePad(c ConsoleHost) {
	n := zoneWidth - p.col%zoneWidth
	if n == 0 {
		n = zoneWidth
	}
	p.write(c, strings.Repeat(" ", n))
}

// spc emits n spaces unconditionally (the SPC(n) function).
func (p *printState) spc(c ConsoleHost, n int) {
	if n <= 0 {
		return
	}
	p.write(c, strings.Repeat(" ", n))
}

// tab pads to 1-based column n, emitting nothing if already past it
// (the TAB(n) function).
func (p *printState) tab(c ConsoleHost, n int) {
	target := n - 1
	if target <= p.col {
		return
	}
	p.write(c, strings.Repeat(" ", target-p.col))
}
