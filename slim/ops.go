package slim

import "github.com/oy3o/serial"

// WriteOps is the compiled write table of the Slim format.
func WriteOps() []serial.WriteOp[*Writer] {
	return []serial.WriteOp[*Writer]{
		serial.Writes("WriteBool", (*Writer).WriteBool),
		serial.Writes("WriteNullableBool", (*Writer).WriteNullableBool),
		serial.Writes("WriteByte", (*Writer).WriteByte),
		serial.Writes("WriteNullableByte", (*Writer).WriteNullableByte),
		serial.Writes("WriteInt8", (*Writer).WriteInt8),
		serial.Writes("WriteNullableInt8", (*Writer).WriteNullableInt8),
		serial.Writes("WriteInt16", (*Writer).WriteInt16),
		serial.Writes("WriteNullableInt16", (*Writer).WriteNullableInt16),
		serial.Writes("WriteUint16", (*Writer).WriteUint16),
		serial.Writes("WriteNullableUint16", (*Writer).WriteNullableUint16),
		serial.Writes("WriteInt32", (*Writer).WriteInt32),
		serial.Writes("WriteNullableInt32", (*Writer).WriteNullableInt32),
		serial.Writes("WriteUint32", (*Writer).WriteUint32),
		serial.Writes("WriteNullableUint32", (*Writer).WriteNullableUint32),
		serial.Writes("WriteInt64", (*Writer).WriteInt64),
		serial.Writes("WriteNullableInt64", (*Writer).WriteNullableInt64),
		serial.Writes("WriteUint64", (*Writer).WriteUint64),
		serial.Writes("WriteNullableUint64", (*Writer).WriteNullableUint64),
		serial.Writes("WriteChar", (*Writer).WriteChar),
		serial.Writes("WriteNullableChar", (*Writer).WriteNullableChar),
		serial.Writes("WriteFloat32", (*Writer).WriteFloat32),
		serial.Writes("WriteNullableFloat32", (*Writer).WriteNullableFloat32),
		serial.Writes("WriteFloat64", (*Writer).WriteFloat64),
		serial.Writes("WriteNullableFloat64", (*Writer).WriteNullableFloat64),
		serial.Writes("WriteDecimal", (*Writer).WriteDecimal),
		serial.Writes("WriteNullableDecimal", (*Writer).WriteNullableDecimal),
		serial.Writes("WriteDateTime", (*Writer).WriteDateTime),
		serial.Writes("WriteNullableDateTime", (*Writer).WriteNullableDateTime),
		serial.Writes("WriteTimeSpan", (*Writer).WriteTimeSpan),
		serial.Writes("WriteNullableTimeSpan", (*Writer).WriteNullableTimeSpan),
		serial.Writes("WriteGUID", (*Writer).WriteGUID),
		serial.Writes("WriteNullableGUID", (*Writer).WriteNullableGUID),
		serial.Writes("WriteGDID", (*Writer).WriteGDID),
		serial.Writes("WriteNullableGDID", (*Writer).WriteNullableGDID),
		serial.Writes("WriteFID", (*Writer).WriteFID),
		serial.Writes("WriteNullableFID", (*Writer).WriteNullableFID),
		serial.Writes("WritePilePointer", (*Writer).WritePilePointer),
		serial.Writes("WriteNullablePilePointer", (*Writer).WriteNullablePilePointer),
		serial.Writes("WriteMetaHandle", (*Writer).WriteMetaHandle),
		serial.Writes("WriteString", (*Writer).WriteString),
		serial.Writes("WriteNullableString", (*Writer).WriteNullableString),
		serial.Writes("WriteTypeSpec", (*Writer).WriteTypeSpec),
		serial.Writes("WriteMethodSpec", (*Writer).WriteMethodSpec),
		serial.Writes("WriteBytes", (*Writer).WriteBytes),
		serial.Writes("WriteInt32s", (*Writer).WriteInt32s),
		serial.Writes("WriteInt64s", (*Writer).WriteInt64s),
		serial.Writes("WriteFloat64s", (*Writer).WriteFloat64s),
		serial.Writes("WriteStrings", (*Writer).WriteStrings),
	}
}

// ReadOps is the compiled read table of the Slim format.
func ReadOps() []serial.ReadOp[*Reader] {
	return []serial.ReadOp[*Reader]{
		serial.Reads("ReadBool", (*Reader).ReadBool),
		serial.Reads("ReadNullableBool", (*Reader).ReadNullableBool),
		serial.Reads("ReadByte", (*Reader).ReadByte),
		serial.Reads("ReadNullableByte", (*Reader).ReadNullableByte),
		serial.Reads("ReadInt8", (*Reader).ReadInt8),
		serial.Reads("ReadNullableInt8", (*Reader).ReadNullableInt8),
		serial.Reads("ReadInt16", (*Reader).ReadInt16),
		serial.Reads("ReadNullableInt16", (*Reader).ReadNullableInt16),
		serial.Reads("ReadUint16", (*Reader).ReadUint16),
		serial.Reads("ReadNullableUint16", (*Reader).ReadNullableUint16),
		serial.Reads("ReadInt32", (*Reader).ReadInt32),
		serial.Reads("ReadNullableInt32", (*Reader).ReadNullableInt32),
		serial.Reads("ReadUint32", (*Reader).ReadUint32),
		serial.Reads("ReadNullableUint32", (*Reader).ReadNullableUint32),
		serial.Reads("ReadInt64", (*Reader).ReadInt64),
		serial.Reads("ReadNullableInt64", (*Reader).ReadNullableInt64),
		serial.Reads("ReadUint64", (*Reader).ReadUint64),
		serial.Reads("ReadNullableUint64", (*Reader).ReadNullableUint64),
		serial.Reads("ReadChar", (*Reader).ReadChar),
		serial.Reads("ReadNullableChar", (*Reader).ReadNullableChar),
		serial.Reads("ReadFloat32", (*Reader).ReadFloat32),
		serial.Reads("ReadNullableFloat32", (*Reader).ReadNullableFloat32),
		serial.Reads("ReadFloat64", (*Reader).ReadFloat64),
		serial.Reads("ReadNullableFloat64", (*Reader).ReadNullableFloat64),
		serial.Reads("ReadDecimal", (*Reader).ReadDecimal),
		serial.Reads("ReadNullableDecimal", (*Reader).ReadNullableDecimal),
		serial.Reads("ReadDateTime", (*Reader).ReadDateTime),
		serial.Reads("ReadNullableDateTime", (*Reader).ReadNullableDateTime),
		serial.Reads("ReadTimeSpan", (*Reader).ReadTimeSpan),
		serial.Reads("ReadNullableTimeSpan", (*Reader).ReadNullableTimeSpan),
		serial.Reads("ReadGUID", (*Reader).ReadGUID),
		serial.Reads("ReadNullableGUID", (*Reader).ReadNullableGUID),
		serial.Reads("ReadGDID", (*Reader).ReadGDID),
		serial.Reads("ReadNullableGDID", (*Reader).ReadNullableGDID),
		serial.Reads("ReadFID", (*Reader).ReadFID),
		serial.Reads("ReadNullableFID", (*Reader).ReadNullableFID),
		serial.Reads("ReadPilePointer", (*Reader).ReadPilePointer),
		serial.Reads("ReadNullablePilePointer", (*Reader).ReadNullablePilePointer),
		serial.Reads("ReadMetaHandle", (*Reader).ReadMetaHandle),
		serial.Reads("ReadString", (*Reader).ReadString),
		serial.Reads("ReadNullableString", (*Reader).ReadNullableString),
		serial.Reads("ReadTypeSpec", (*Reader).ReadTypeSpec),
		serial.Reads("ReadMethodSpec", (*Reader).ReadMethodSpec),
		serial.Reads("ReadBytes", (*Reader).ReadBytes),
		serial.Reads("ReadInt32s", (*Reader).ReadInt32s),
		serial.Reads("ReadInt64s", (*Reader).ReadInt64s),
		serial.Reads("ReadFloat64s", (*Reader).ReadFloat64s),
		serial.Reads("ReadStrings", (*Reader).ReadStrings),
	}
}
