package serial

import (
	"fmt"
	"io"
)

// forwardSeeker wraps an io.Reader, adding a forward-only Seek capability
// to satisfy the io.ReadSeeker interface. It simulates seeking by reading
// and discarding data.
type forwardSeeker struct {
	r      io.Reader
	offset int64
}

// ForwardSeeker wraps an io.Reader to make it a forward-only io.ReadSeeker.
// If the provided reader already implements io.ReadSeeker, it is returned directly.
func ForwardSeeker(r io.Reader) io.ReadSeeker {
	if r == nil {
		panic("serial: ForwardSeeker called with a nil io.Reader")
	}
	if seeker, ok := r.(io.ReadSeeker); ok {
		return seeker
	}
	return &forwardSeeker{r: r}
}

// Read implements the io.Reader interface.
func (s *forwardSeeker) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.offset += int64(n)
	return n, err
}

// Seek provides forward-only seeking.
// It supports io.SeekCurrent and io.SeekStart, but will return an error
// for any backward seek attempts.
func (s *forwardSeeker) Seek(offset int64, whence int) (int64, error) {
	var skip int64

	switch whence {
	case io.SeekCurrent:
		skip = offset
	case io.SeekStart:
		if offset < s.offset {
			return s.offset, fmt.Errorf("%w: cannot seek from start to %d (current: %d)", ErrUnsupportedNegativeSeek, offset, s.offset)
		}
		skip = offset - s.offset
	default:
		return s.offset, fmt.Errorf("%w: value %d is not supported", ErrInvalidWhence, whence)
	}

	if skip < 0 {
		return s.offset, ErrUnsupportedNegativeSeek
	}
	if skip == 0 {
		return s.offset, nil
	}

	// Discard data efficiently to perform the "seek".
	written, err := Discard(s.r, skip)
	s.offset += written
	return s.offset, err
}

// ReadOnlyStream exposes a reader through the full stream surface while refusing
// every operation that would modify it or move it backwards.
type ReadOnlyStream struct {
	r io.ReadSeeker
}

// ReadOnly wraps r. Backward seeks are only possible when r is itself an io.Seeker.
func ReadOnly(r io.Reader) *ReadOnlyStream {
	return &ReadOnlyStream{r: ForwardSeeker(r)}
}

func (s *ReadOnlyStream) Read(p []byte) (int, error) { return s.r.Read(p) }

func (s *ReadOnlyStream) Seek(offset int64, whence int) (int64, error) {
	return s.r.Seek(offset, whence)
}

func (s *ReadOnlyStream) Write([]byte) (int, error) {
	return 0, fmt.Errorf("%w: write on a read-only stream", ErrUnsupportedOperation)
}

func (s *ReadOnlyStream) Flush() error {
	return fmt.Errorf("%w: flush on a read-only stream", ErrUnsupportedOperation)
}

// Truncate is the set-length operation.
func (s *ReadOnlyStream) Truncate(int64) error {
	return fmt.Errorf("%w: set length on a read-only stream", ErrUnsupportedOperation)
}
