package serial

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNilIO indicates that a stream constructor or BindStream was called with a nil io.Reader/io.Writer.
	ErrNilIO = errors.New("serial: nil io.Reader/io.Writer")

	// ErrSizeTooSmall indicates a size conflict with bufio
	ErrSizeTooSmall = errors.New("serial: buffer size smaller than 16 conflicts with bufio")

	// ErrAlreadyBuffered indicates that a stream was constructed over an already-buffered
	// reader/writer whose buffer is smaller than requested, which would double-buffer.
	ErrAlreadyBuffered = errors.New("serial: reader or writer is already buffered")

	// ErrStreamCorrupted indicates premature end of input, or a variable-length
	// integer that exceeds the bit width of its target type.
	ErrStreamCorrupted = errors.New("serial: stream corrupted")

	// ErrSizeLimitExceeded indicates an array or string length beyond the configured maximum.
	// It is raised before any allocation takes place.
	ErrSizeLimitExceeded = errors.New("serial: size limit exceeded")

	// ErrUnsupportedOperation indicates an operation the stream role does not support,
	// e.g. a write on a read-only stream or a backward seek on a forward-only one.
	ErrUnsupportedOperation = errors.New("serial: unsupported operation")

	// ErrBindingConflict indicates BindStream was called while a different stream is bound.
	ErrBindingConflict = errors.New("serial: another stream is already bound")

	// ErrNotBound indicates a read or write on a codec without a bound stream.
	ErrNotBound = errors.New("serial: no stream bound")

	// ErrUnsupportedType indicates a format has no operation for the requested Go type.
	ErrUnsupportedType = errors.New("serial: unsupported type")

	// ErrUnknownFormat indicates a catalog lookup for a format name nobody registered.
	ErrUnknownFormat = errors.New("serial: unknown format")

	// ErrInvalidSeek indicates a seek was attempted to invalid position.
	ErrInvalidSeek = errors.New("serial: seek to an invalid position")

	// ErrInvalidWhence indicates that an invalid 'whence' parameter was provided to a Seek operation.
	ErrInvalidWhence = fmt.Errorf("%w: whence for forward-only seeker", ErrUnsupportedOperation)

	// ErrUnsupportedNegativeSeek indicates a backward seek was attempted on a forward-only seeker.
	ErrUnsupportedNegativeSeek = fmt.Errorf("%w: negative offset for forward-only seeker", ErrUnsupportedOperation)

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative) count from Write.
	ErrInvalidWrite = errors.New("serial: writer returned invalid count from Write")

	// ErrDiscardNegative indicates a Discard operation was attempted with a negative byte count.
	ErrDiscardNegative = errors.New("serial: cannot discard negative number of bytes")

	// ErrTrailingData is returned by Unmarshal helpers when bytes remain after the decoded values.
	ErrTrailingData = errors.New("serial: trailing data found after decoding")
)

// Corrupted maps an end-of-input condition met while decoding what into ErrStreamCorrupted.
// Other errors, and errors already marked corrupted, are returned unchanged.
func Corrupted(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStreamCorrupted):
		return err
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %s: %w", ErrStreamCorrupted, what, io.ErrUnexpectedEOF)
	}
	return err
}

// LimitExceeded reports a requested length of what above the allowed maximum.
func LimitExceeded(what string, requested, allowed int) error {
	return fmt.Errorf("%w: %s of %d exceeds allowed %d", ErrSizeLimitExceeded, what, requested, allowed)
}

// CheckLimit returns a LimitExceeded error when n is negative or above max.
// A negative length can only come from a corrupted stream.
func CheckLimit(what string, n, max int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative %s %d", ErrStreamCorrupted, what, n)
	}
	if n > max {
		return LimitExceeded(what, n, max)
	}
	return nil
}
