package slim

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/oy3o/serial"
	"golang.org/x/exp/constraints"
)

// Writer encodes values in the Slim format to one bound destination at a time.
// The zero value is ready to use with serial.DefaultOptions.
type Writer struct {
	serial.WriterBase
	strBuf []byte
}

var _ serial.Writer = (*Writer)(nil)

// NewWriter returns a Writer configured with opts.
func NewWriter(opts serial.Options) (*Writer, error) {
	w := &Writer{}
	if err := w.Configure(opts); err != nil {
		return nil, err
	}
	return w, nil
}

func writeVarint[T constraints.Signed](w *Writer, v T) error {
	out, err := w.Stream()
	if err != nil {
		return err
	}
	buf := w.Scratch()
	_, err = out.Write(buf[:serial.PutVarint(buf, v)])
	return err
}

func writeUvarint[T constraints.Unsigned](w *Writer, v T) error {
	out, err := w.Stream()
	if err != nil {
		return err
	}
	buf := w.Scratch()
	_, err = out.Write(buf[:serial.PutUvarint(buf, v)])
	return err
}

func writeNullable[T any](w *Writer, v *T, write func(T) error) error {
	if v == nil {
		return w.WriteBool(false)
	}
	if err := w.WriteBool(true); err != nil {
		return err
	}
	return write(*v)
}

func (w *Writer) writeRaw(p []byte) error {
	out, err := w.Stream()
	if err != nil {
		return err
	}
	_, err = out.Write(p)
	return err
}

func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteByte(trueByte)
	}
	return w.WriteByte(falseByte)
}

func (w *Writer) WriteByte(v byte) error {
	out, err := w.Stream()
	if err != nil {
		return err
	}
	return out.WriteByte(v)
}

func (w *Writer) WriteInt8(v int8) error     { return w.WriteByte(byte(v)) }
func (w *Writer) WriteInt16(v int16) error   { return writeVarint(w, v) }
func (w *Writer) WriteUint16(v uint16) error { return writeUvarint(w, v) }
func (w *Writer) WriteInt32(v int32) error   { return writeVarint(w, v) }
func (w *Writer) WriteUint32(v uint32) error { return writeUvarint(w, v) }
func (w *Writer) WriteInt64(v int64) error   { return writeVarint(w, v) }
func (w *Writer) WriteUint64(v uint64) error { return writeUvarint(w, v) }

// WriteChar writes a UTF-16 code unit on the int16 path.
func (w *Writer) WriteChar(v serial.Char) error { return writeVarint(w, int16(v)) }

func (w *Writer) WriteFloat32(v float32) error {
	buf := w.Scratch()[:4]
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return w.writeRaw(buf)
}

func (w *Writer) WriteFloat64(v float64) error {
	buf := w.Scratch()[:8]
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	return w.writeRaw(buf)
}

// WriteDecimal writes the three mantissa words as int32 varints, then sign and scale in one byte.
func (w *Writer) WriteDecimal(v serial.Decimal) error {
	if v.Scale > serial.MaxDecimalScale {
		return fmt.Errorf("%w: decimal scale %d exceeds %d", serial.ErrSizeLimitExceeded, v.Scale, serial.MaxDecimalScale)
	}
	for _, word := range [3]uint32{v.Lo, v.Mid, v.Hi} {
		if err := writeVarint(w, int32(word)); err != nil {
			return err
		}
	}
	flags := v.Scale & scaleMask
	if v.Negative {
		flags |= signBit
	}
	return w.WriteByte(flags)
}

// WriteDateTime writes the ticks as 8 big-endian bytes followed by the kind.
func (w *Writer) WriteDateTime(v serial.DateTime) error {
	buf := w.Scratch()[:9]
	binary.BigEndian.PutUint64(buf, uint64(v.Ticks))
	buf[8] = byte(v.Kind)
	return w.writeRaw(buf)
}

func (w *Writer) WriteTimeSpan(v serial.TimeSpan) error { return writeVarint(w, int64(v)) }

// WriteGUID writes the 16 bytes of v under the byte array rule.
func (w *Writer) WriteGUID(v uuid.UUID) error { return w.WriteBytes(v[:]) }

func (w *Writer) WriteGDID(v serial.GDID) error {
	if err := writeUvarint(w, v.Era); err != nil {
		return err
	}
	return writeUvarint(w, v.ID)
}

func (w *Writer) WriteFID(v serial.FID) error { return writeUvarint(w, uint64(v)) }

func (w *Writer) WritePilePointer(v serial.PilePointer) error {
	for _, part := range [3]int32{v.NodeID, v.Segment, v.Address} {
		if err := writeVarint(w, part); err != nil {
			return err
		}
	}
	return nil
}

// WriteMetaHandle writes the raw handle with the has-metadata flag in bit 0. Metadata
// follows as a nullable string; integer metadata is an absent string and an uint32.
func (w *Writer) WriteMetaHandle(v serial.MetaHandle) error {
	out, err := w.Stream()
	if err != nil {
		return err
	}
	meta, hasMeta := v.Metadata()
	buf := w.Scratch()
	if _, err := out.Write(buf[:serial.PutFlagged(buf, hasMeta, uint64(v.Raw()))]); err != nil {
		return err
	}
	if !hasMeta {
		return nil
	}
	if meta.Str != nil {
		return w.WriteString(*meta.Str)
	}
	if err := w.WriteBool(false); err != nil {
		return err
	}
	return writeUvarint(w, meta.Int)
}

// WriteString writes v as present, followed by its encoded length and bytes.
func (w *Writer) WriteString(v string) error {
	out, err := w.Stream()
	if err != nil {
		return err
	}
	if w.RawText() {
		if err := w.writeCount(len(v), w.Limits().MaxStringLen, "string length"); err != nil {
			return err
		}
		_, err = out.WriteString(v)
		return err
	}

	if len(v) < StringBufferSize && w.strBuf == nil {
		w.strBuf = make([]byte, StringBufferSize)
	}
	var buf []byte
	if w.strBuf != nil {
		buf = w.strBuf[:StringBufferSize-1]
	}
	p, err := w.EncodeText(v, buf)
	if err != nil {
		return fmt.Errorf("slim: encode string: %w", err)
	}
	if err := w.writeCount(len(p), w.Limits().MaxStringLen, "string length"); err != nil {
		return err
	}
	_, err = out.Write(p)
	return err
}

// writeCount writes the presence flag and a length after checking it against max.
func (w *Writer) writeCount(n, max int, what string) error {
	if err := serial.CheckLimit(what, n, min(max, math.MaxInt32)); err != nil {
		return err
	}
	if err := w.WriteBool(true); err != nil {
		return err
	}
	return writeVarint(w, int32(n))
}

func (w *Writer) WriteTypeSpec(v serial.TypeSpec) error {
	if err := w.WriteString(v.Name); err != nil {
		return err
	}
	buf := w.Scratch()[:8]
	binary.BigEndian.PutUint64(buf, v.Hash)
	return w.writeRaw(buf)
}

// WriteMethodSpec writes the name, the return type hash as 8 big-endian bytes and the
// signature hash as an uint64 varint.
func (w *Writer) WriteMethodSpec(v serial.MethodSpec) error {
	if err := w.WriteString(v.Name); err != nil {
		return err
	}
	buf := w.Scratch()[:8]
	binary.BigEndian.PutUint64(buf, v.ReturnType)
	if err := w.writeRaw(buf); err != nil {
		return err
	}
	return writeUvarint(w, v.Signature)
}

func (w *Writer) WriteBytes(v []byte) error {
	if v == nil {
		return w.WriteBool(false)
	}
	if err := w.writeCount(len(v), w.Limits().MaxByteArrayLen, "byte array length"); err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	return w.writeRaw(v)
}

func (w *Writer) WriteInt32s(v []int32) error {
	if v == nil {
		return w.WriteBool(false)
	}
	if err := w.writeCount(len(v), w.Limits().MaxInt32ArrayLen, "int32 array length"); err != nil {
		return err
	}
	for _, e := range v {
		if err := writeVarint(w, e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) WriteInt64s(v []int64) error {
	if v == nil {
		return w.WriteBool(false)
	}
	if err := w.writeCount(len(v), w.Limits().MaxInt64ArrayLen, "int64 array length"); err != nil {
		return err
	}
	for _, e := range v {
		if err := writeVarint(w, e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) WriteFloat64s(v []float64) error {
	if v == nil {
		return w.WriteBool(false)
	}
	if err := w.writeCount(len(v), w.Limits().MaxFloat64ArrayLen, "float64 array length"); err != nil {
		return err
	}
	for _, e := range v {
		if err := w.WriteFloat64(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) WriteStrings(v []string) error {
	if v == nil {
		return w.WriteBool(false)
	}
	if err := w.writeCount(len(v), w.Limits().MaxStringArrayLen, "string array length"); err != nil {
		return err
	}
	for _, e := range v {
		if err := w.WriteString(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) WriteNullableBool(v *bool) error     { return writeNullable(w, v, w.WriteBool) }
func (w *Writer) WriteNullableByte(v *byte) error     { return writeNullable(w, v, w.WriteByte) }
func (w *Writer) WriteNullableInt8(v *int8) error     { return writeNullable(w, v, w.WriteInt8) }
func (w *Writer) WriteNullableInt16(v *int16) error   { return writeNullable(w, v, w.WriteInt16) }
func (w *Writer) WriteNullableUint16(v *uint16) error { return writeNullable(w, v, w.WriteUint16) }
func (w *Writer) WriteNullableInt32(v *int32) error   { return writeNullable(w, v, w.WriteInt32) }
func (w *Writer) WriteNullableUint32(v *uint32) error { return writeNullable(w, v, w.WriteUint32) }
func (w *Writer) WriteNullableInt64(v *int64) error   { return writeNullable(w, v, w.WriteInt64) }
func (w *Writer) WriteNullableUint64(v *uint64) error { return writeNullable(w, v, w.WriteUint64) }
func (w *Writer) WriteNullableChar(v *serial.Char) error {
	return writeNullable(w, v, w.WriteChar)
}
func (w *Writer) WriteNullableFloat32(v *float32) error { return writeNullable(w, v, w.WriteFloat32) }
func (w *Writer) WriteNullableFloat64(v *float64) error { return writeNullable(w, v, w.WriteFloat64) }
func (w *Writer) WriteNullableDecimal(v *serial.Decimal) error {
	return writeNullable(w, v, w.WriteDecimal)
}
func (w *Writer) WriteNullableDateTime(v *serial.DateTime) error {
	return writeNullable(w, v, w.WriteDateTime)
}
func (w *Writer) WriteNullableTimeSpan(v *serial.TimeSpan) error {
	return writeNullable(w, v, w.WriteTimeSpan)
}
func (w *Writer) WriteNullableGUID(v *uuid.UUID) error { return writeNullable(w, v, w.WriteGUID) }
func (w *Writer) WriteNullableGDID(v *serial.GDID) error {
	return writeNullable(w, v, w.WriteGDID)
}
func (w *Writer) WriteNullableFID(v *serial.FID) error { return writeNullable(w, v, w.WriteFID) }
func (w *Writer) WriteNullablePilePointer(v *serial.PilePointer) error {
	return writeNullable(w, v, w.WritePilePointer)
}

// WriteNullableString writes an absent string as a single false presence byte.
// A present string already starts with its own presence byte.
func (w *Writer) WriteNullableString(v *string) error {
	if v == nil {
		return w.WriteBool(false)
	}
	return w.WriteString(*v)
}
