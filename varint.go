package serial

import (
	"fmt"
	"io"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// The Slim integer shape.
//
// Signed values put [cont][6 payload][sign] into the first byte and [cont][7 payload] into every
// following byte, least significant group first. Negative values are stored as their bitwise
// complement so that small negative magnitudes stay as compact as small positive ones.
// Unsigned values use 7 payload bits in every byte.
//
// The encoded length depends only on the value, never on the declared width: int16(-1) and
// int64(-1) both encode as the single byte 0x01.

// MaxVarintLen is the longest encoding of a 64-bit value.
const MaxVarintLen = 10

const (
	contBit  = 0x80
	low7Bits = 0x7f
	low6Bits = 0x3f
)

// PutFlagged encodes u into buf with the lowest bit of the first byte set to flag.
// It is the shared shape of signed integers (flag = sign) and meta handles (flag = has metadata).
// buf must hold at least MaxVarintLen bytes. It returns the number of bytes written.
func PutFlagged(buf []byte, flag bool, u uint64) int {
	var b byte
	if flag {
		b = 1
	}
	b |= byte(u&low6Bits) << 1
	u >>= 6
	if u != 0 {
		b |= contBit
	}
	buf[0] = b
	n := 1
	for u != 0 {
		b = byte(u & low7Bits)
		u >>= 7
		if u != 0 {
			b |= contBit
		}
		buf[n] = b
		n++
	}
	return n
}

// PutVarint encodes the signed v into buf and returns the number of bytes written.
func PutVarint[T constraints.Signed](buf []byte, v T) int {
	if v < 0 {
		return PutFlagged(buf, true, uint64(^v))
	}
	return PutFlagged(buf, false, uint64(v))
}

// PutUvarint encodes the unsigned v into buf and returns the number of bytes written.
func PutUvarint[T constraints.Unsigned](buf []byte, v T) int {
	u := uint64(v)
	n := 0
	for {
		b := byte(u & low7Bits)
		u >>= 7
		if u != 0 {
			b |= contBit
		}
		buf[n] = b
		n++
		if u == 0 {
			return n
		}
	}
}

// AppendVarint appends the encoding of v to dst.
func AppendVarint[T constraints.Signed](dst []byte, v T) []byte {
	var buf [MaxVarintLen]byte
	return append(dst, buf[:PutVarint(buf[:], v)]...)
}

// AppendUvarint appends the encoding of v to dst.
func AppendUvarint[T constraints.Unsigned](dst []byte, v T) []byte {
	var buf [MaxVarintLen]byte
	return append(dst, buf[:PutUvarint(buf[:], v)]...)
}

// VarintLen returns the number of bytes PutVarint writes for v.
func VarintLen[T constraints.Signed](v T) int {
	u := uint64(v)
	if v < 0 {
		u = uint64(^v)
	}
	n := 1
	for u >>= 6; u != 0; u >>= 7 {
		n++
	}
	return n
}

// UvarintLen returns the number of bytes PutUvarint writes for v.
func UvarintLen[T constraints.Unsigned](v T) int {
	u := uint64(v)
	n := 1
	for u >>= 7; u != 0; u >>= 7 {
		n++
	}
	return n
}

// ReadFlagged decodes the flagged shape. maxBits is the payload width of the target type
// (15, 31 or 63); a continuation byte that would start past it fails with ErrStreamCorrupted.
func ReadFlagged(r io.ByteReader, maxBits int) (uint64, bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, false, Corrupted(err, "varint")
	}
	flag := b&1 != 0
	u := uint64(b&0x7e) >> 1
	bits := 6
	for b&contBit != 0 {
		if bits > maxBits {
			return 0, false, fmt.Errorf("%w: varint exceeds %d bits", ErrStreamCorrupted, maxBits+1)
		}
		if b, err = r.ReadByte(); err != nil {
			return 0, false, Corrupted(err, "varint")
		}
		u |= uint64(b&low7Bits) << bits
		bits += 7
	}
	return u, flag, nil
}

func readUnsigned(r io.ByteReader, maxBits int) (uint64, error) {
	var u uint64
	for bits := 0; ; bits += 7 {
		if bits > maxBits {
			return 0, fmt.Errorf("%w: uvarint exceeds %d bits", ErrStreamCorrupted, maxBits+1)
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, Corrupted(err, "uvarint")
		}
		u |= uint64(b&low7Bits) << bits
		if b&contBit == 0 {
			return u, nil
		}
	}
}

func bitsOf[T constraints.Integer]() int {
	var zero T
	return int(unsafe.Sizeof(zero)) * 8
}

// ReadVarint decodes a signed integer of T's width.
func ReadVarint[T constraints.Signed](r io.ByteReader) (T, error) {
	u, neg, err := ReadFlagged(r, bitsOf[T]()-1)
	if err != nil {
		return 0, err
	}
	v := T(u)
	if neg {
		v = ^v
	}
	return v, nil
}

// ReadUvarint decodes an unsigned integer of T's width.
func ReadUvarint[T constraints.Unsigned](r io.ByteReader) (T, error) {
	u, err := readUnsigned(r, bitsOf[T]()-1)
	return T(u), err
}

func ReadVarint16(r io.ByteReader) (int16, error)   { return ReadVarint[int16](r) }
func ReadVarint32(r io.ByteReader) (int32, error)   { return ReadVarint[int32](r) }
func ReadVarint64(r io.ByteReader) (int64, error)   { return ReadVarint[int64](r) }
func ReadUvarint16(r io.ByteReader) (uint16, error) { return ReadUvarint[uint16](r) }
func ReadUvarint32(r io.ByteReader) (uint32, error) { return ReadUvarint[uint32](r) }
func ReadUvarint64(r io.ByteReader) (uint64, error) { return ReadUvarint[uint64](r) }

func WriteVarint16(w io.Writer, v int16) error   { return WriteVarint(w, v) }
func WriteVarint32(w io.Writer, v int32) error   { return WriteVarint(w, v) }
func WriteVarint64(w io.Writer, v int64) error   { return WriteVarint(w, v) }
func WriteUvarint16(w io.Writer, v uint16) error { return WriteUvarint(w, v) }
func WriteUvarint32(w io.Writer, v uint32) error { return WriteUvarint(w, v) }
func WriteUvarint64(w io.Writer, v uint64) error { return WriteUvarint(w, v) }

// WriteVarint encodes v with a single Write call.
func WriteVarint[T constraints.Signed](w io.Writer, v T) error {
	var buf [MaxVarintLen]byte
	return writeAll(w, buf[:PutVarint(buf[:], v)])
}

// WriteUvarint encodes v with a single Write call.
func WriteUvarint[T constraints.Unsigned](w io.Writer, v T) error {
	var buf [MaxVarintLen]byte
	return writeAll(w, buf[:PutUvarint(buf[:], v)])
}

func writeAll(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n < len(p) {
		return io.ErrShortWrite
	}
	return nil
}
