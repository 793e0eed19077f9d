package serial

import (
	"bufio"
	"bytes"
	"io"
)

// ByteWriteFlusher is what a StreamWriter needs from its destination.
type ByteWriteFlusher interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
	Flush() error
}

// StreamWriter writes binary data to a bound destination and tracks the first error
// that occurs. After an error, all subsequent write operations become no-ops.
type StreamWriter struct {
	w     ByteWriteFlusher
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
	depth int
}

var _ ByteWriteFlusher = (*StreamWriter)(nil)

// NewStreamWriterSize creates a StreamWriter. A size above zero buffers plain
// destinations with bufio; the buffer is only drained by Flush.
func NewStreamWriterSize(w io.Writer, size int) (*StreamWriter, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	switch bw := w.(type) {
	// Reuse the destination of an existing StreamWriter.
	case *StreamWriter:
		return &StreamWriter{w: bw.w, depth: bw.depth + 1}, nil

	// prevent unpredictable double-buffering.
	case *bufio.Writer:
		if bw.Size() >= size {
			return &StreamWriter{w: bw, depth: 1}, nil
		}
		return nil, ErrAlreadyBuffered

	// underlying is a buf so we don't need buffering
	case *BytesWriter:
		return &StreamWriter{w: bw}, nil
	case *bytes.Buffer:
		return &StreamWriter{w: &bytesBufferWriterAdapter{bw}}, nil
	}

	if size == 0 {
		return &StreamWriter{w: &directWriterAdapter{Writer: w}}, nil
	}
	return &StreamWriter{w: bufio.NewWriterSize(w, size)}, nil
}

// NewStreamWriter creates an unbuffered StreamWriter.
func NewStreamWriter(w io.Writer) (*StreamWriter, error) {
	return NewStreamWriterSize(w, 0)
}

// Write implements the io.Writer interface.
func (w *StreamWriter) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	if n < 0 {
		n, err = 0, ErrInvalidWrite
	}
	w.count += int64(n)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	w.setError(err)
	return n, w.err
}

// WriteString implements the io.StringWriter interface.
func (w *StreamWriter) WriteString(str string) (int, error) {
	if str == "" || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.WriteString(str)
	w.count += int64(n)
	if err == nil && n < len(str) {
		err = io.ErrShortWrite
	}
	w.setError(err)
	return n, w.err
}

// WriteByte implements the io.ByteWriter interface.
func (w *StreamWriter) WriteByte(v byte) error {
	if w.err != nil {
		return w.err
	}
	err := w.w.WriteByte(v)
	if err == nil {
		w.count++
	} else {
		w.err = err
	}
	return err
}

func (w *StreamWriter) Count() int64 { return w.count }
func (w *StreamWriter) Err() error   { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *StreamWriter) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Result flushes the buffer and returns the final count and error state.
func (w *StreamWriter) Result() (int64, error) {
	w.Flush()
	return w.count, w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *StreamWriter) Flush() error {
	// To prevent nested writers from flushing the buffer prematurely.
	// Only the outermost writer should be responsible for the final flush.
	if w.depth > 0 || w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	w.setError(err)
	return err
}
