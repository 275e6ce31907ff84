// Package errwriter provides a writer that latches the first error it
// encounters, grounded on the teacher's ngi.ErrWriter (internal/ngi in
// the reference Forth VM).
package errwriter

import (
	"io"

	"github.com/pkg/errors"
)

// Writer wraps an io.Writer, remembering the first write error and
// returning it on every subsequent call.
type Writer struct {
	w   io.Writer
	Err error
}

// New returns a new Writer wrapping w.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err := w.w.Write(p)
	if err != nil {
		w.Err = errors.Wrap(err, "write failed")
	}
	return n, w.Err
}
