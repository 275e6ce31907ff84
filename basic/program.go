// Package basic implements the stored-program lifecycle: loading and
// saving the line-numbered source format, and compiling/running it
// through the compiler and VM packages (spec.md §6 "External
// interfaces", §3 "Lifecycle").
package basic

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Source is an ordered-by-line stored program: line number -> source
// text (spec.md §6 "Stored-program source format").
type Source map[int]string

// Lines returns the program's line numbers in ascending order.
func (s Source) Lines() []int {
	lines := make([]int, 0, len(s))
	for ln := range s {
		lines = append(lines, ln)
	}
	sort.Ints(lines)
	return lines
}

// SetLine stores text at line, or deletes the line if text is empty
// (spec.md §6: "An empty source after a line number deletes that
// line.").
func (s Source) SetLine(line int, text string) {
	if strings.TrimSpace(text) == "" {
		delete(s, line)
		return
	}
	s[line] = text
}

// ParseLine splits a REPL/LOAD input line `<number> <text>` into its
// line number and source text.
func ParseLine(raw string) (int, string, error) {
	raw = strings.TrimRight(raw, "\r\n")
	i := 0
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, "", errors.Errorf("line does not begin with a line number: %q", raw)
	}
	n, err := strconv.Atoi(raw[:i])
	if err != nil {
		return 0, "", errors.Wrapf(err, "bad line number in %q", raw)
	}
	text := strings.TrimLeft(raw[i:], " \t")
	return n, text, nil
}

// Load reads the stored-program text format from r: one `<line>
// <text>` record per line, blank lines ignored.
func Load(r io.Reader) (Source, error) {
	src := make(Source)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		raw := sc.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		n, text, err := ParseLine(raw)
		if err != nil {
			return nil, err
		}
		src.SetLine(n, text)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading stored program")
	}
	return src, nil
}

// Save writes src to w in ascending line-number order, UTF-8 encoded.
func Save(w io.Writer, src Source) error {
	bw := bufio.NewWriter(w)
	for _, ln := range src.Lines() {
		if _, err := fmt.Fprintf(bw, "%d %s\n", ln, src[ln]); err != nil {
			return errors.Wrap(err, "writing stored program")
		}
	}
	return bw.Flush()
}
