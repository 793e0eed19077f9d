package serial

import (
	"io"

	"github.com/google/uuid"
)

// Binding is the resource lifecycle every codec exposes. A codec addresses exactly one
// stream at a time: bind it, use it, and unbind it on every exit path.
type Binding[S any] interface {
	BindStream(stream S) error
	UnbindStream() error
	IsBound() bool
}

// Reader is the reading contract: one operation per supported type.
// Nullable forms read a presence boolean and then the value when present; they return nil
// when absent. Array forms return nil for an absent array and a non-nil slice otherwise.
type Reader interface {
	Binding[io.Reader]

	ReadBool() (bool, error)
	ReadNullableBool() (*bool, error)
	ReadByte() (byte, error)
	ReadNullableByte() (*byte, error)
	ReadInt8() (int8, error)
	ReadNullableInt8() (*int8, error)
	ReadInt16() (int16, error)
	ReadNullableInt16() (*int16, error)
	ReadUint16() (uint16, error)
	ReadNullableUint16() (*uint16, error)
	ReadInt32() (int32, error)
	ReadNullableInt32() (*int32, error)
	ReadUint32() (uint32, error)
	ReadNullableUint32() (*uint32, error)
	ReadInt64() (int64, error)
	ReadNullableInt64() (*int64, error)
	ReadUint64() (uint64, error)
	ReadNullableUint64() (*uint64, error)
	ReadChar() (Char, error)
	ReadNullableChar() (*Char, error)
	ReadFloat32() (float32, error)
	ReadNullableFloat32() (*float32, error)
	ReadFloat64() (float64, error)
	ReadNullableFloat64() (*float64, error)
	ReadDecimal() (Decimal, error)
	ReadNullableDecimal() (*Decimal, error)
	ReadDateTime() (DateTime, error)
	ReadNullableDateTime() (*DateTime, error)
	ReadTimeSpan() (TimeSpan, error)
	ReadNullableTimeSpan() (*TimeSpan, error)
	ReadGUID() (uuid.UUID, error)
	ReadNullableGUID() (*uuid.UUID, error)
	ReadGDID() (GDID, error)
	ReadNullableGDID() (*GDID, error)
	ReadFID() (FID, error)
	ReadNullableFID() (*FID, error)
	ReadPilePointer() (PilePointer, error)
	ReadNullablePilePointer() (*PilePointer, error)
	ReadMetaHandle() (MetaHandle, error)
	ReadString() (string, error)
	ReadNullableString() (*string, error)
	ReadTypeSpec() (TypeSpec, error)
	ReadMethodSpec() (MethodSpec, error)

	ReadBytes() ([]byte, error)
	ReadInt32s() ([]int32, error)
	ReadInt64s() ([]int64, error)
	ReadFloat64s() ([]float64, error)
	ReadStrings() ([]string, error)
}

// Writer is the writing contract, the mirror image of Reader.
type Writer interface {
	Binding[io.Writer]
	Flush() error

	WriteBool(v bool) error
	WriteNullableBool(v *bool) error
	WriteByte(v byte) error
	WriteNullableByte(v *byte) error
	WriteInt8(v int8) error
	WriteNullableInt8(v *int8) error
	WriteInt16(v int16) error
	WriteNullableInt16(v *int16) error
	WriteUint16(v uint16) error
	WriteNullableUint16(v *uint16) error
	WriteInt32(v int32) error
	WriteNullableInt32(v *int32) error
	WriteUint32(v uint32) error
	WriteNullableUint32(v *uint32) error
	WriteInt64(v int64) error
	WriteNullableInt64(v *int64) error
	WriteUint64(v uint64) error
	WriteNullableUint64(v *uint64) error
	WriteChar(v Char) error
	WriteNullableChar(v *Char) error
	WriteFloat32(v float32) error
	WriteNullableFloat32(v *float32) error
	WriteFloat64(v float64) error
	WriteNullableFloat64(v *float64) error
	WriteDecimal(v Decimal) error
	WriteNullableDecimal(v *Decimal) error
	WriteDateTime(v DateTime) error
	WriteNullableDateTime(v *DateTime) error
	WriteTimeSpan(v TimeSpan) error
	WriteNullableTimeSpan(v *TimeSpan) error
	WriteGUID(v uuid.UUID) error
	WriteNullableGUID(v *uuid.UUID) error
	WriteGDID(v GDID) error
	WriteNullableGDID(v *GDID) error
	WriteFID(v FID) error
	WriteNullableFID(v *FID) error
	WritePilePointer(v PilePointer) error
	WriteNullablePilePointer(v *PilePointer) error
	WriteMetaHandle(v MetaHandle) error
	WriteString(v string) error
	WriteNullableString(v *string) error
	WriteTypeSpec(v TypeSpec) error
	WriteMethodSpec(v MethodSpec) error

	WriteBytes(v []byte) error
	WriteInt32s(v []int32) error
	WriteInt64s(v []int64) error
	WriteFloat64s(v []float64) error
	WriteStrings(v []string) error
}
