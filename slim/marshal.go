package slim

import (
	"bytes"

	"github.com/oy3o/serial"
)

// Marshal runs fn against a Writer bound to a fresh buffer and returns what it wrote.
func Marshal(fn func(w *Writer) error) ([]byte, error) {
	return MarshalOptions(serial.DefaultOptions(), fn)
}

// MarshalOptions is Marshal with explicit options.
func MarshalOptions(opts serial.Options, fn func(w *Writer) error) ([]byte, error) {
	w, err := NewWriter(opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := w.BindStream(&buf); err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		_ = w.UnbindStream()
		return nil, err
	}
	if err := w.UnbindStream(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalTo writes into dst without growing it and returns the number of bytes used.
// The room available is cap(dst), not len(dst); pass dst[:n:n] to cap it at n.
// Running out of room fails with io.ErrShortWrite.
func MarshalTo(dst []byte, fn func(w *Writer) error) (int, error) {
	bw := serial.NewBytesWriter(dst)
	w := &Writer{}
	if err := w.BindStream(bw); err != nil {
		return 0, err
	}
	defer w.UnbindStream()
	if err := fn(w); err != nil {
		return bw.Len(), err
	}
	return bw.Len(), nil
}

// Unmarshal runs fn against a Reader over data. Bytes left over after fn
// returns fail with serial.ErrTrailingData.
func Unmarshal(data []byte, fn func(r *Reader) error) error {
	return UnmarshalOptions(serial.DefaultOptions(), data, fn)
}

// UnmarshalOptions is Unmarshal with explicit options.
func UnmarshalOptions(opts serial.Options, data []byte, fn func(r *Reader) error) error {
	r, err := NewReader(opts)
	if err != nil {
		return err
	}
	br := serial.NewBytesReader(data)
	if err := r.BindStream(br); err != nil {
		return err
	}
	defer r.UnbindStream()
	if err := fn(r); err != nil {
		return err
	}
	return serial.CheckTrailing(br)
}
