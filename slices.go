package serial

import (
	"fmt"
	"io"
)

// BytesReader is a seekable stream over an in-memory encoding. Decoders bound to it
// read without any adapter, and CheckTrailing can tell whether a message was consumed whole.
type BytesReader struct {
	buf []byte
	off int
}

func NewBytesReader(b []byte) *BytesReader { return &BytesReader{buf: b} }

func (r *BytesReader) Read(p []byte) (int, error) {
	rest := r.Remaining()
	if len(rest) == 0 {
		return 0, io.EOF
	}
	n := copy(p, rest)
	r.off += n
	return n, nil
}

func (r *BytesReader) ReadByte() (byte, error) {
	rest := r.Remaining()
	if len(rest) == 0 {
		return 0, io.EOF
	}
	r.off++
	return rest[0], nil
}

// Seek moves anywhere inside or past the slice; reads past the end see io.EOF.
func (r *BytesReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(r.off) + offset
	case io.SeekEnd:
		abs = int64(len(r.buf)) + offset
	default:
		return 0, ErrInvalidWhence
	}
	if abs < 0 {
		return 0, ErrInvalidSeek
	}
	r.off = int(abs)
	return abs, nil
}

// Reset rewinds to the start so the same message can be decoded again.
func (r *BytesReader) Reset() { r.off = 0 }

// Offset is the number of bytes consumed so far.
func (r *BytesReader) Offset() int { return r.off }

// Remaining returns the unread part of the slice without copying it.
func (r *BytesReader) Remaining() []byte {
	if r.off >= len(r.buf) {
		return nil
	}
	return r.buf[r.off:]
}

// Available is len(Remaining()).
func (r *BytesReader) Available() int { return len(r.Remaining()) }

// CheckTrailing fails with ErrTrailingData when r was not read to the end.
func CheckTrailing(r *BytesReader) error {
	if n := r.Available(); n > 0 {
		return fmt.Errorf("%w: %d bytes", ErrTrailingData, n)
	}
	return nil
}

// BytesWriter encodes into a caller-owned slice and never grows it. A value that does
// not fit is written partially and fails with an io.ErrShortWrite-wrapped error.
type BytesWriter struct {
	buf []byte
	n   int
}

// NewBytesWriter writes into p up to its capacity.
func NewBytesWriter(p []byte) *BytesWriter { return &BytesWriter{buf: p[:cap(p)]} }

func (w *BytesWriter) short(want, wrote int) error {
	return fmt.Errorf("%w: %d of %d bytes fit in the destination", io.ErrShortWrite, wrote, want)
}

func (w *BytesWriter) Write(p []byte) (int, error) {
	n := copy(w.buf[w.n:], p)
	w.n += n
	if n < len(p) {
		return n, w.short(len(p), n)
	}
	return n, nil
}

func (w *BytesWriter) WriteString(s string) (int, error) {
	n := copy(w.buf[w.n:], s)
	w.n += n
	if n < len(s) {
		return n, w.short(len(s), n)
	}
	return n, nil
}

func (w *BytesWriter) WriteByte(c byte) error {
	if w.n >= len(w.buf) {
		return w.short(1, 0)
	}
	w.buf[w.n] = c
	w.n++
	return nil
}

// Flush is a no-op; bytes land in the slice as they are written.
func (w *BytesWriter) Flush() error { return nil }

// Reset discards what was written so the slice can take another message.
func (w *BytesWriter) Reset() { w.n = 0 }

// Len is the number of bytes written.
func (w *BytesWriter) Len() int { return w.n }

// Size is the capacity of the destination.
func (w *BytesWriter) Size() int { return len(w.buf) }

// Available is the room left.
func (w *BytesWriter) Available() int { return len(w.buf) - w.n }

// Bytes returns the written prefix of the destination.
func (w *BytesWriter) Bytes() []byte { return w.buf[:w.n] }
