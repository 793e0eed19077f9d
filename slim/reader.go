package slim

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/oy3o/serial"
)

// Reader decodes Slim values from one bound source at a time.
// The zero value is ready to use with serial.DefaultOptions.
type Reader struct {
	serial.ReaderBase
	strBuf []byte
}

var _ serial.Reader = (*Reader)(nil)

// NewReader returns a Reader configured with opts.
func NewReader(opts serial.Options) (*Reader, error) {
	r := &Reader{}
	if err := r.Configure(opts); err != nil {
		return nil, err
	}
	return r, nil
}

func readNullable[T any](r *Reader, read func() (T, error)) (*T, error) {
	present, err := r.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	v, err := read()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// readFull fills the first n bytes of the scratch buffer.
func (r *Reader) readFull(n int, what string) ([]byte, error) {
	in, err := r.Stream()
	if err != nil {
		return nil, err
	}
	buf := r.Scratch()[:n]
	if err := in.ReadFull(buf); err != nil {
		return nil, serial.Corrupted(err, what)
	}
	return buf, nil
}

// readCount reads the presence flag and, when present, a length checked against max.
func (r *Reader) readCount(max int, what string) (int, bool, error) {
	present, err := r.ReadBool()
	if err != nil || !present {
		return 0, false, err
	}
	n, err := r.ReadInt32()
	if err != nil {
		return 0, false, err
	}
	if err := serial.CheckLimit(what, int(n), max); err != nil {
		return 0, false, err
	}
	return int(n), true, nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	return b != falseByte, err
}

func (r *Reader) ReadByte() (byte, error) {
	in, err := r.Stream()
	if err != nil {
		return 0, err
	}
	b, err := in.ReadByte()
	if err != nil {
		return 0, serial.Corrupted(err, "byte")
	}
	return b, nil
}

func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

func (r *Reader) ReadInt16() (int16, error) {
	in, err := r.Stream()
	if err != nil {
		return 0, err
	}
	return serial.ReadVarint16(in)
}

func (r *Reader) ReadUint16() (uint16, error) {
	in, err := r.Stream()
	if err != nil {
		return 0, err
	}
	return serial.ReadUvarint16(in)
}

func (r *Reader) ReadInt32() (int32, error) {
	in, err := r.Stream()
	if err != nil {
		return 0, err
	}
	return serial.ReadVarint32(in)
}

func (r *Reader) ReadUint32() (uint32, error) {
	in, err := r.Stream()
	if err != nil {
		return 0, err
	}
	return serial.ReadUvarint32(in)
}

func (r *Reader) ReadInt64() (int64, error) {
	in, err := r.Stream()
	if err != nil {
		return 0, err
	}
	return serial.ReadVarint64(in)
}

func (r *Reader) ReadUint64() (uint64, error) {
	in, err := r.Stream()
	if err != nil {
		return 0, err
	}
	return serial.ReadUvarint64(in)
}

func (r *Reader) ReadChar() (serial.Char, error) {
	v, err := r.ReadInt16()
	return serial.Char(uint16(v)), err
}

func (r *Reader) ReadFloat32() (float32, error) {
	buf, err := r.readFull(4, "float32")
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf)), nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	buf, err := r.readFull(8, "float64")
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

func (r *Reader) ReadDecimal() (serial.Decimal, error) {
	var words [3]uint32
	for i := range words {
		v, err := r.ReadInt32()
		if err != nil {
			return serial.Decimal{}, err
		}
		words[i] = uint32(v)
	}
	flags, err := r.ReadByte()
	if err != nil {
		return serial.Decimal{}, err
	}
	scale := flags & scaleMask
	if scale > serial.MaxDecimalScale {
		return serial.Decimal{}, fmt.Errorf("%w: decimal scale %d", serial.ErrStreamCorrupted, scale)
	}
	return serial.Decimal{
		Lo: words[0], Mid: words[1], Hi: words[2],
		Scale:    scale,
		Negative: flags&signBit != 0,
	}, nil
}

func (r *Reader) ReadDateTime() (serial.DateTime, error) {
	buf, err := r.readFull(9, "datetime")
	if err != nil {
		return serial.DateTime{}, err
	}
	kind := serial.DateTimeKind(buf[8])
	if kind > serial.KindLocal {
		return serial.DateTime{}, fmt.Errorf("%w: datetime kind %d", serial.ErrStreamCorrupted, buf[8])
	}
	return serial.DateTime{Ticks: int64(binary.BigEndian.Uint64(buf)), Kind: kind}, nil
}

func (r *Reader) ReadTimeSpan() (serial.TimeSpan, error) {
	v, err := r.ReadInt64()
	return serial.TimeSpan(v), err
}

// ReadGUID reads a byte array that must hold exactly 16 bytes.
func (r *Reader) ReadGUID() (uuid.UUID, error) {
	n, present, err := r.readCount(r.Limits().MaxByteArrayLen, "guid length")
	if err != nil {
		return uuid.Nil, err
	}
	if !present || n != len(uuid.UUID{}) {
		return uuid.Nil, fmt.Errorf("%w: guid of %d bytes", serial.ErrStreamCorrupted, n)
	}
	buf, err := r.readFull(n, "guid")
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.UUID(buf), nil
}

func (r *Reader) ReadGDID() (serial.GDID, error) {
	era, err := r.ReadUint32()
	if err != nil {
		return serial.GDID{}, err
	}
	id, err := r.ReadUint64()
	if err != nil {
		return serial.GDID{}, err
	}
	return serial.GDID{Era: era, ID: id}, nil
}

func (r *Reader) ReadFID() (serial.FID, error) {
	v, err := r.ReadUint64()
	return serial.FID(v), err
}

func (r *Reader) ReadPilePointer() (serial.PilePointer, error) {
	var parts [3]int32
	for i := range parts {
		v, err := r.ReadInt32()
		if err != nil {
			return serial.PilePointer{}, err
		}
		parts[i] = v
	}
	return serial.PilePointer{NodeID: parts[0], Segment: parts[1], Address: parts[2]}, nil
}

func (r *Reader) ReadMetaHandle() (serial.MetaHandle, error) {
	in, err := r.Stream()
	if err != nil {
		return serial.MetaHandle{}, err
	}
	u, hasMeta, err := serial.ReadFlagged(in, 31)
	if err != nil {
		return serial.MetaHandle{}, err
	}
	if !hasMeta {
		return serial.RawMetaHandle(uint32(u), nil), nil
	}
	s, err := r.ReadNullableString()
	if err != nil {
		return serial.MetaHandle{}, err
	}
	meta := serial.VarIntStr{Str: s}
	if s == nil {
		if meta.Int, err = r.ReadUint32(); err != nil {
			return serial.MetaHandle{}, err
		}
	}
	return serial.RawMetaHandle(uint32(u), &meta), nil
}

// ReadString reads a string; an absent string reads as "".
func (r *Reader) ReadString() (string, error) {
	s, err := r.ReadNullableString()
	if s == nil {
		return "", err
	}
	return *s, nil
}

// ReadNullableString reads a string, or nil when absent. Strings shorter than
// StringBufferSize are decoded through the reader's own buffer.
func (r *Reader) ReadNullableString() (*string, error) {
	n, present, err := r.readCount(r.Limits().MaxStringLen, "string length")
	if err != nil || !present {
		return nil, err
	}
	in, err := r.Stream()
	if err != nil {
		return nil, err
	}
	var buf []byte
	if n < StringBufferSize {
		if r.strBuf == nil {
			r.strBuf = make([]byte, StringBufferSize)
		}
		buf = r.strBuf[:n]
	} else {
		buf = make([]byte, n)
	}
	if err := in.ReadFull(buf); err != nil {
		return nil, serial.Corrupted(err, "string")
	}
	s, err := r.DecodeText(buf)
	if err != nil {
		return nil, fmt.Errorf("slim: decode string: %w", err)
	}
	return &s, nil
}

func (r *Reader) ReadTypeSpec() (serial.TypeSpec, error) {
	name, err := r.ReadString()
	if err != nil {
		return serial.TypeSpec{}, err
	}
	buf, err := r.readFull(8, "type spec hash")
	if err != nil {
		return serial.TypeSpec{}, err
	}
	return serial.TypeSpec{Name: name, Hash: binary.BigEndian.Uint64(buf)}, nil
}

func (r *Reader) ReadMethodSpec() (serial.MethodSpec, error) {
	name, err := r.ReadString()
	if err != nil {
		return serial.MethodSpec{}, err
	}
	buf, err := r.readFull(8, "method spec return type")
	if err != nil {
		return serial.MethodSpec{}, err
	}
	ret := binary.BigEndian.Uint64(buf)
	sig, err := r.ReadUint64()
	if err != nil {
		return serial.MethodSpec{}, err
	}
	return serial.MethodSpec{Name: name, ReturnType: ret, Signature: sig}, nil
}

func (r *Reader) ReadBytes() ([]byte, error) {
	n, present, err := r.readCount(r.Limits().MaxByteArrayLen, "byte array length")
	if err != nil || !present {
		return nil, err
	}
	in, err := r.Stream()
	if err != nil {
		return nil, err
	}
	v := make([]byte, n)
	if err := in.ReadFull(v); err != nil {
		return nil, serial.Corrupted(err, "byte array")
	}
	return v, nil
}

func (r *Reader) ReadInt32s() ([]int32, error) {
	n, present, err := r.readCount(r.Limits().MaxInt32ArrayLen, "int32 array length")
	if err != nil || !present {
		return nil, err
	}
	v := make([]int32, n)
	for i := range v {
		if v[i], err = r.ReadInt32(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (r *Reader) ReadInt64s() ([]int64, error) {
	n, present, err := r.readCount(r.Limits().MaxInt64ArrayLen, "int64 array length")
	if err != nil || !present {
		return nil, err
	}
	v := make([]int64, n)
	for i := range v {
		if v[i], err = r.ReadInt64(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (r *Reader) ReadFloat64s() ([]float64, error) {
	n, present, err := r.readCount(r.Limits().MaxFloat64ArrayLen, "float64 array length")
	if err != nil || !present {
		return nil, err
	}
	v := make([]float64, n)
	for i := range v {
		if v[i], err = r.ReadFloat64(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// ReadStrings reads a string array. Absent elements read as "".
func (r *Reader) ReadStrings() ([]string, error) {
	n, present, err := r.readCount(r.Limits().MaxStringArrayLen, "string array length")
	if err != nil || !present {
		return nil, err
	}
	v := make([]string, n)
	for i := range v {
		if v[i], err = r.ReadString(); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (r *Reader) ReadNullableBool() (*bool, error)     { return readNullable(r, r.ReadBool) }
func (r *Reader) ReadNullableByte() (*byte, error)     { return readNullable(r, r.ReadByte) }
func (r *Reader) ReadNullableInt8() (*int8, error)     { return readNullable(r, r.ReadInt8) }
func (r *Reader) ReadNullableInt16() (*int16, error)   { return readNullable(r, r.ReadInt16) }
func (r *Reader) ReadNullableUint16() (*uint16, error) { return readNullable(r, r.ReadUint16) }
func (r *Reader) ReadNullableInt32() (*int32, error)   { return readNullable(r, r.ReadInt32) }
func (r *Reader) ReadNullableUint32() (*uint32, error) { return readNullable(r, r.ReadUint32) }
func (r *Reader) ReadNullableInt64() (*int64, error)   { return readNullable(r, r.ReadInt64) }
func (r *Reader) ReadNullableUint64() (*uint64, error) { return readNullable(r, r.ReadUint64) }
func (r *Reader) ReadNullableChar() (*serial.Char, error) {
	return readNullable(r, r.ReadChar)
}
func (r *Reader) ReadNullableFloat32() (*float32, error) { return readNullable(r, r.ReadFloat32) }
func (r *Reader) ReadNullableFloat64() (*float64, error) { return readNullable(r, r.ReadFloat64) }
func (r *Reader) ReadNullableDecimal() (*serial.Decimal, error) {
	return readNullable(r, r.ReadDecimal)
}
func (r *Reader) ReadNullableDateTime() (*serial.DateTime, error) {
	return readNullable(r, r.ReadDateTime)
}
func (r *Reader) ReadNullableTimeSpan() (*serial.TimeSpan, error) {
	return readNullable(r, r.ReadTimeSpan)
}
func (r *Reader) ReadNullableGUID() (*uuid.UUID, error) { return readNullable(r, r.ReadGUID) }
func (r *Reader) ReadNullableGDID() (*serial.GDID, error) {
	return readNullable(r, r.ReadGDID)
}
func (r *Reader) ReadNullableFID() (*serial.FID, error) { return readNullable(r, r.ReadFID) }
func (r *Reader) ReadNullablePilePointer() (*serial.PilePointer, error) {
	return readNullable(r, r.ReadPilePointer)
}
