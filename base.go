package serial

import (
	"fmt"
	"io"
	"reflect"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ScratchSize is the size of the fixed scratch buffer every codec owns.
const ScratchSize = 32

// codecBase is the state shared by both roles: options, text encoding and scratch space.
// A codec instance is never used from two goroutines at once, so the scratch buffer
// lives on the instance rather than in shared storage.
type codecBase struct {
	opts       Options
	enc        encoding.Encoding
	raw        bool
	configured bool
	scratch    [ScratchSize]byte
}

func (b *codecBase) configure(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	enc, raw, err := ResolveEncoding(opts.Encoding)
	if err != nil {
		return err
	}
	b.opts, b.enc, b.raw, b.configured = opts, enc, raw, true
	return nil
}

func (b *codecBase) ensureConfigured() {
	if !b.configured {
		// DefaultOptions always validates.
		_ = b.configure(DefaultOptions())
	}
}

// Options returns the options in effect.
func (b *codecBase) Options() Options {
	b.ensureConfigured()
	return b.opts
}

// Limits returns the array and string limits in effect.
func (b *codecBase) Limits() Limits {
	b.ensureConfigured()
	return b.opts.Limits
}

// Encoding returns the text encoding used for strings.
func (b *codecBase) Encoding() encoding.Encoding {
	b.ensureConfigured()
	return b.enc
}

// RawText reports whether strings travel as their UTF-8 bytes without transcoding.
func (b *codecBase) RawText() bool {
	b.ensureConfigured()
	return b.raw
}

// Scratch returns the codec's fixed scratch buffer.
func (b *codecBase) Scratch() []byte { return b.scratch[:] }

// sameStream reports whether a and b are the same stream value. Values whose
// dynamic contents cannot be compared are never the same.
func sameStream(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return va.Equal(vb)
}

// ReaderBase binds a reader to one source at a time. Concrete readers embed it.
// The zero value is ready to use with DefaultOptions.
type ReaderBase struct {
	codecBase
	src io.Reader
	in  *StreamReader
}

// Configure replaces the options. It is only allowed while no stream is bound.
func (b *ReaderBase) Configure(opts Options) error {
	if b.src != nil {
		return fmt.Errorf("%w: cannot configure a bound reader", ErrBindingConflict)
	}
	return b.configure(opts)
}

// BindStream attaches r. Binding the stream that is already bound is a no-op;
// binding a different one fails with ErrBindingConflict until UnbindStream is called.
func (b *ReaderBase) BindStream(r io.Reader) error {
	if r == nil {
		return ErrNilIO
	}
	if b.src != nil {
		if sameStream(b.src, r) {
			return nil
		}
		return ErrBindingConflict
	}
	b.ensureConfigured()
	in, err := NewStreamReaderSize(r, b.opts.ReadBufferSize)
	if err != nil {
		return err
	}
	b.src, b.in = r, in
	Logger().Debug("reader bound", zap.String("stream", fmt.Sprintf("%T", r)))
	return nil
}

// UnbindStream detaches the bound source. It is safe to call when nothing is bound.
func (b *ReaderBase) UnbindStream() error {
	if b.src != nil {
		Logger().Debug("reader unbound", zap.Int64("read", b.in.Count()))
	}
	b.src, b.in = nil, nil
	return nil
}

// IsBound reports whether a source is bound.
func (b *ReaderBase) IsBound() bool { return b.src != nil }

// Stream returns the bound stream or ErrNotBound.
func (b *ReaderBase) Stream() (*StreamReader, error) {
	if b.in == nil {
		return nil, ErrNotBound
	}
	return b.in, nil
}

// DecodeText turns encoded bytes into a string. Invalid sequences are replaced, never rejected.
func (b *ReaderBase) DecodeText(p []byte) (string, error) {
	if b.RawText() {
		return string(p), nil
	}
	out, err := b.enc.NewDecoder().Bytes(p)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// WriterBase binds a writer to one destination at a time. Concrete writers embed it.
// The zero value is ready to use with DefaultOptions.
type WriterBase struct {
	codecBase
	dst     io.Writer
	out     *StreamWriter
	encoder *encoding.Encoder
}

// Configure replaces the options. It is only allowed while no stream is bound.
func (b *WriterBase) Configure(opts Options) error {
	if b.dst != nil {
		return fmt.Errorf("%w: cannot configure a bound writer", ErrBindingConflict)
	}
	b.encoder = nil
	return b.configure(opts)
}

// BindStream attaches w. Binding the stream that is already bound is a no-op;
// binding a different one fails with ErrBindingConflict until UnbindStream is called.
func (b *WriterBase) BindStream(w io.Writer) error {
	if w == nil {
		return ErrNilIO
	}
	if b.dst != nil {
		if sameStream(b.dst, w) {
			return nil
		}
		return ErrBindingConflict
	}
	b.ensureConfigured()
	out, err := NewStreamWriterSize(w, b.opts.WriteBufferSize)
	if err != nil {
		return err
	}
	b.dst, b.out = w, out
	Logger().Debug("writer bound", zap.String("stream", fmt.Sprintf("%T", w)))
	return nil
}

// UnbindStream flushes and detaches the bound destination. The destination is
// released even when the flush fails; the flush error is returned.
func (b *WriterBase) UnbindStream() error {
	if b.dst == nil {
		return nil
	}
	err := b.out.Flush()
	Logger().Debug("writer unbound", zap.Int64("written", b.out.Count()), zap.Error(err))
	b.dst, b.out = nil, nil
	return err
}

// Flush drains buffered output to the bound destination.
func (b *WriterBase) Flush() error {
	if b.out == nil {
		return ErrNotBound
	}
	return b.out.Flush()
}

// IsBound reports whether a destination is bound.
func (b *WriterBase) IsBound() bool { return b.dst != nil }

// Stream returns the bound stream or ErrNotBound.
func (b *WriterBase) Stream() (*StreamWriter, error) {
	if b.out == nil {
		return nil, ErrNotBound
	}
	return b.out, nil
}

// EncodeText transcodes s with the configured encoding into buf when it fits,
// allocating otherwise. Runes the encoding cannot represent and invalid UTF-8
// become the encoding's replacement byte. It must not be called when RawText is true.
func (b *WriterBase) EncodeText(s string, buf []byte) ([]byte, error) {
	if b.encoder == nil {
		b.encoder = encoding.ReplaceUnsupported(b.Encoding().NewEncoder())
	}
	src := []byte(s)
	b.encoder.Reset()
	n, _, err := b.encoder.Transform(buf, src, true)
	if err == nil {
		return buf[:n], nil
	}
	if err != transform.ErrShortDst {
		return nil, err
	}
	return b.encoder.Bytes(src)
}
