package serial

import (
	"bufio"
	"bytes"
	"io"
)

// ByteReadSeeker is what a StreamReader needs from its source.
type ByteReadSeeker interface {
	io.Reader
	io.ByteReader
	io.Seeker
}

// StreamReader reads binary data from a bound source.
// It tracks the first error; subsequent reads return it without touching the source.
type StreamReader struct {
	r     ByteReadSeeker
	count int64 // total bytes read
	err   error // first error encountered.
}

var _ ByteReadSeeker = (*StreamReader)(nil)

// NewStreamReaderSize creates a StreamReader. A size above zero buffers plain sources
// with bufio, which reads ahead of the decoded values; a size of zero never reads a
// byte that is not asked for.
func NewStreamReaderSize(r io.Reader, size int) (*StreamReader, error) {
	if r == nil {
		return nil, ErrNilIO
	}

	switch reader := r.(type) {
	// Share the source of an existing StreamReader.
	case *StreamReader:
		return &StreamReader{r: reader.r, count: reader.count}, nil

	// prevent unpredictable double-buffering.
	case *bufio.Reader:
		if reader.Size() >= size {
			return &StreamReader{r: &bufioReaderAdapter{Reader: reader}}, nil
		}
		return nil, ErrAlreadyBuffered

	// underlying is a buf so we don't need buffering
	case *BytesReader:
		return &StreamReader{r: reader}, nil
	case *bytes.Reader:
		return &StreamReader{r: reader}, nil
	case *bytes.Buffer:
		return &StreamReader{r: &bytesBufferReaderAdapter{Buffer: reader}}, nil
	}

	if size == 0 {
		return &StreamReader{r: &directReaderAdapter{seeker: ForwardSeeker(r)}}, nil
	}
	if size < 16 {
		return nil, ErrSizeTooSmall
	}
	return &StreamReader{
		r: &bufioReaderAdapter{Reader: bufio.NewReaderSize(r, size), seeker: ForwardSeeker(r)},
	}, nil
}

// NewStreamReader creates an unbuffered StreamReader.
func NewStreamReader(r io.Reader) (*StreamReader, error) {
	return NewStreamReaderSize(r, 0)
}

// Read implements the io.Reader interface.
func (r *StreamReader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

// Seek moves the read pointer.
func (r *StreamReader) Seek(offset int64, whence int) (int64, error) {
	if r.err != nil {
		return r.count, r.err
	}
	newPos, err := r.r.Seek(offset, whence)
	if err != nil {
		return r.count, err
	}
	r.count = newPos
	return newPos, nil
}

func (r *StreamReader) Count() int64 { return r.count }
func (r *StreamReader) Err() error   { return r.err }
func (r *StreamReader) IsEOF() bool  { return r.err == io.EOF }

// setError records the first non-nil error.
func (r *StreamReader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// ReadFull reads exactly len(p) bytes, looping over short reads. Running out of input
// before p is full is ErrStreamCorrupted; a single short read is never accepted.
func (r *StreamReader) ReadFull(p []byte) error {
	if r.err != nil {
		return Corrupted(r.err, "read")
	}
	if len(p) == 0 {
		return nil
	}
	n, err := io.ReadFull(r.r, p)
	r.count += int64(n)
	if err != nil {
		if err == io.EOF {
			// a partial read is different from a clean end-of-stream.
			err = io.ErrUnexpectedEOF
		}
		r.setError(err)
		return Corrupted(err, "read")
	}
	return nil
}

// ReadByte implements io.ByteReader.
func (r *StreamReader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.r.ReadByte()
	if err == nil {
		r.count++
	} else {
		r.err = err
	}
	return b, err
}

// Discard skips n bytes.
func (r *StreamReader) Discard(n int64) error {
	if r.err != nil {
		return r.err
	}
	skipped, err := Discard(r.r, n)
	r.count += skipped
	r.setError(err)
	return Corrupted(err, "discard")
}
