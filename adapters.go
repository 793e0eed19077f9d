package serial

import (
	"bufio"
	"bytes"
	"io"
)

type (
	bytesBufferWriterAdapter struct{ *bytes.Buffer }
	bytesBufferReaderAdapter struct {
		*bytes.Buffer
		pos int64
	}
	bufioReaderAdapter struct {
		*bufio.Reader
		seeker io.ReadSeeker
		pos    int64
	}
	// directReaderAdapter reads straight from the source, one byte at a time for ReadByte.
	directReaderAdapter struct {
		seeker io.ReadSeeker
		one    [1]byte
	}
	// directWriterAdapter writes straight to the destination without buffering.
	directWriterAdapter struct {
		io.Writer
		one [1]byte
	}
)

func (w *bytesBufferWriterAdapter) Flush() error { return nil }
func (w *directWriterAdapter) Flush() error      { return nil }

// Read reads from the underlying buffer and updates the internal pos.
func (r *bytesBufferReaderAdapter) Read(p []byte) (n int, err error) {
	n, err = r.Buffer.Read(p)
	r.pos += int64(n)
	return n, err
}

// ReadByte reads a single byte from the buffer and updates the pos.
func (r *bytesBufferReaderAdapter) ReadByte() (byte, error) {
	b, err := r.Buffer.ReadByte()
	if err == nil {
		r.pos++
	}
	return b, err
}

// Seek performs a forward-only seek by discarding bytes from the buffer.
// It does not support seeking from the end (io.SeekEnd) or seeking backwards.
func (r *bytesBufferReaderAdapter) Seek(pos int64, whence int) (int64, error) {
	var target int64

	switch whence {
	case io.SeekStart:
		target = pos
	case io.SeekCurrent:
		target = r.pos + pos
	default:
		return r.pos, ErrInvalidWhence
	}

	skip := target - r.pos
	if skip < 0 {
		return r.pos, ErrUnsupportedNegativeSeek
	}

	// We can only discard as many bytes as are left in the buffer.
	if skip > int64(r.Buffer.Len()) {
		skip = int64(r.Buffer.Len())
	}
	r.Buffer.Next(int(skip))
	r.pos += skip
	return r.pos, nil
}

// Read reads data into p, updating the stream position.
func (b *bufioReaderAdapter) Read(p []byte) (n int, err error) {
	n, err = b.Reader.Read(p)
	b.pos += int64(n)
	return n, err
}

// ReadByte reads a single byte, updating the stream position.
func (b *bufioReaderAdapter) ReadByte() (c byte, err error) {
	c, err = b.Reader.ReadByte()
	if err == nil {
		b.pos++
	}
	return c, err
}

// Seek implements the io.Seeker interface and correctly handles the internal buffer of bufio.Reader.
func (b *bufioReaderAdapter) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = b.pos + offset
	case io.SeekEnd:
		if b.seeker == nil {
			return b.pos, ErrInvalidWhence
		}
		endPos, err := b.seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, err
		}
		target = endPos + offset
	default:
		return 0, ErrInvalidWhence
	}

	// if target is within the buffer, just discard bytes.
	if b.pos <= target && target < b.pos+int64(b.Reader.Buffered()) {
		n, err := b.Reader.Discard(int(target - b.pos))
		b.pos += int64(n)
		return b.pos, err
	}

	if b.seeker != nil && target < b.pos {
		newPos, err := b.seeker.Seek(target, io.SeekStart)
		if err != nil {
			return 0, err
		}
		b.Reader.Reset(b.seeker)
		b.pos = newPos
		return newPos, nil
	}

	if target < b.pos {
		return b.pos, ErrUnsupportedNegativeSeek
	}
	_, err := Discard(b, target-b.pos)
	return b.pos, err
}

func (d *directReaderAdapter) Read(p []byte) (int, error) { return d.seeker.Read(p) }

func (d *directReaderAdapter) Seek(offset int64, whence int) (int64, error) {
	return d.seeker.Seek(offset, whence)
}

// ReadByte loops until one byte arrives, so readers that return (0, nil) are tolerated.
func (d *directReaderAdapter) ReadByte() (byte, error) {
	for {
		n, err := d.seeker.Read(d.one[:])
		if n == 1 {
			return d.one[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func (d *directWriterAdapter) WriteByte(c byte) error {
	d.one[0] = c
	n, err := d.Writer.Write(d.one[:])
	if err != nil {
		return err
	}
	if n != 1 {
		return io.ErrShortWrite
	}
	return nil
}

func (d *directWriterAdapter) WriteString(s string) (int, error) {
	return io.WriteString(d.Writer, s)
}
