package serial

import "io"

const BUFFER_SIZE = 4096

var discard [BUFFER_SIZE]byte

func Ptr[T any](v T) *T { return &v } // Ptr is a helper function to create a pointer to a value, making nullable values easier to build.

// Discard reads and drops n bytes from r, looping until all n are consumed.
func Discard(r io.Reader, n int64) (int64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 {
		return 0, ErrDiscardNegative
	}
	if n <= BUFFER_SIZE {
		skip, err := io.ReadFull(r, discard[:n])
		return int64(skip), err
	}
	return io.CopyN(io.Discard, r, n)
}
