// Package console implements vm.ConsoleHost over stdin/stdout using
// VT100 escape sequences for cursor control, grounded on the teacher's
// vt100Terminal (vm/io_helpers.go in the reference Forth VM): the same
// MoveCursor-via-bytes.Buffer technique, generalized from a Forth I/O
// port abstraction to the BASIC LOCATE statement.
package console

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/retrobas/rbasic/internal/errwriter"
)

// Host is a line-buffered ConsoleHost backed by a writer/reader pair.
type Host struct {
	out *errwriter.Writer
	in  *bufio.Reader
}

// New returns a Host writing to out and reading lines from in.
func New(out io.Writer, in io.Reader) *Host {
	return &Host{out: errwriter.New(out), in: bufio.NewReader(in)}
}

// Write emits s verbatim.
func (h *Host) Write(s string) {
	io.WriteString(h.out, s)
}

// ReadLine reads one line from in, trimmed of its trailing newline.
func (h *Host) ReadLine() (string, error) {
	line, err := h.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}

// Locate moves the cursor to 1-based (col, row) using a VT100 cursor
// positioning escape sequence (ESC [ row ; col H).
func (h *Host) Locate(col, row int) {
	var b bytes.Buffer
	b.WriteString("\033[")
	b.WriteString(strconv.Itoa(row))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(col))
	b.WriteByte('H')
	io.Copy(h.out, &b)
}

// Err returns the first write error encountered, if any.
func (h *Host) Err() error { return h.out.Err }
