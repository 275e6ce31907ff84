package vm

// ConsoleHost performs the byte-level I/O for PRINT/INPUT. The VM
// itself owns the column/zone bookkeeping (spec.md §4.4 "PRINT column
// model"); the host only writes/reads bytes. This is the interface an
// interactive REPL shell (out of scope per spec.md §1) or a
// non-interactive driver both implement identically.
type ConsoleHost interface {
	// Write emits s to the console exactly as given (no added
	// whitespace or newline).
	Write(s string)
	// ReadLine reads one line from the console, trimmed of its
	// trailing newline, for INPUT.
	ReadLine() (string, error)
	// Locate moves the cursor to 1-based (col, row), for the LOCATE
	// statement (spec.md §4.4).
	Locate(col, row int)
}

// NullConsole discards output and returns EOF for input; used as a
// default when no host is supplied (e.g. compiler/VM unit tests that
// never execute PRINT/INPUT).
type NullConsole struct{}

func (NullConsole) Write(string)        {}
func (NullConsole) Locate(col, row int) {}
func (NullConsole) ReadLine() (string, error) {
	return "", errEOF
}

var errEOF = &Error{Kind: "EOF", Msg: "no console attached"}
