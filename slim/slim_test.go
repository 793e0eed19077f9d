package slim

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/oy3o/serial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Helpers ---

type roundTrip struct {
	name  string
	want  any
	write func(*Writer) error
	read  func(*Reader) (any, error)
}

func rt[T any](name string, v T, write func(*Writer, T) error, read func(*Reader) (T, error)) roundTrip {
	return roundTrip{
		name:  name,
		want:  v,
		write: func(w *Writer) error { return write(w, v) },
		read:  func(r *Reader) (any, error) { return read(r) },
	}
}

func encode(t *testing.T, fn func(w *Writer) error) []byte {
	t.Helper()
	data, err := Marshal(fn)
	require.NoError(t, err)
	return data
}

func decimal(t *testing.T, s string) serial.Decimal {
	t.Helper()
	d, err := serial.ParseDecimal(s)
	require.NoError(t, err)
	return d
}

func roundTrips(t *testing.T) []roundTrip {
	guid := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return []roundTrip{
		rt("BoolTrue", true, (*Writer).WriteBool, (*Reader).ReadBool),
		rt("BoolFalse", false, (*Writer).WriteBool, (*Reader).ReadBool),
		rt("Byte", byte(0xAB), (*Writer).WriteByte, (*Reader).ReadByte),
		rt("Int8Min", int8(math.MinInt8), (*Writer).WriteInt8, (*Reader).ReadInt8),
		rt("Int16Min", int16(math.MinInt16), (*Writer).WriteInt16, (*Reader).ReadInt16),
		rt("Int16Max", int16(math.MaxInt16), (*Writer).WriteInt16, (*Reader).ReadInt16),
		rt("Uint16Max", uint16(math.MaxUint16), (*Writer).WriteUint16, (*Reader).ReadUint16),
		rt("Int32Min", int32(math.MinInt32), (*Writer).WriteInt32, (*Reader).ReadInt32),
		rt("Int32Max", int32(math.MaxInt32), (*Writer).WriteInt32, (*Reader).ReadInt32),
		rt("Uint32Max", uint32(math.MaxUint32), (*Writer).WriteUint32, (*Reader).ReadUint32),
		rt("Int64Min", int64(math.MinInt64), (*Writer).WriteInt64, (*Reader).ReadInt64),
		rt("Int64Max", int64(math.MaxInt64), (*Writer).WriteInt64, (*Reader).ReadInt64),
		rt("Uint64Max", uint64(math.MaxUint64), (*Writer).WriteUint64, (*Reader).ReadUint64),
		rt("Char", serial.Char('é'), (*Writer).WriteChar, (*Reader).ReadChar),
		rt("CharHigh", serial.Char(0xffff), (*Writer).WriteChar, (*Reader).ReadChar),
		rt("Float32", float32(-1.25), (*Writer).WriteFloat32, (*Reader).ReadFloat32),
		rt("Float32Max", float32(math.MaxFloat32), (*Writer).WriteFloat32, (*Reader).ReadFloat32),
		rt("Float64Inf", math.Inf(-1), (*Writer).WriteFloat64, (*Reader).ReadFloat64),
		rt("Float64Tiny", math.SmallestNonzeroFloat64, (*Writer).WriteFloat64, (*Reader).ReadFloat64),
		rt("Decimal", decimal(t, "-79228162514264337593543950335"), (*Writer).WriteDecimal, (*Reader).ReadDecimal),
		rt("DecimalScale", decimal(t, "0.0000000000000000000000000001"), (*Writer).WriteDecimal, (*Reader).ReadDecimal),
		rt("DateTime", serial.DateTime{Ticks: 638_000_000_000_000_000, Kind: serial.KindLocal}, (*Writer).WriteDateTime, (*Reader).ReadDateTime),
		rt("DateTimeMin", serial.DateTime{Ticks: math.MinInt64}, (*Writer).WriteDateTime, (*Reader).ReadDateTime),
		rt("TimeSpan", serial.TimeSpan(-36_000_000_000), (*Writer).WriteTimeSpan, (*Reader).ReadTimeSpan),
		rt("GUID", guid, (*Writer).WriteGUID, (*Reader).ReadGUID),
		rt("GDID", serial.GDID{Era: math.MaxUint32, ID: math.MaxUint64}, (*Writer).WriteGDID, (*Reader).ReadGDID),
		rt("FID", serial.FID(1<<40), (*Writer).WriteFID, (*Reader).ReadFID),
		rt("PilePointer", serial.PilePointer{NodeID: -1, Segment: math.MaxInt32, Address: math.MinInt32}, (*Writer).WritePilePointer, (*Reader).ReadPilePointer),
		rt("MetaHandle", serial.NewMetaHandle(12345), (*Writer).WriteMetaHandle, (*Reader).ReadMetaHandle),
		rt("MetaHandleMax", serial.NewMetaHandle(serial.MaxHandle), (*Writer).WriteMetaHandle, (*Reader).ReadMetaHandle),
		rt("MetaHandleString", serial.NewMetaHandleMeta(7, serial.StrMeta("Person")), (*Writer).WriteMetaHandle, (*Reader).ReadMetaHandle),
		rt("MetaHandleInt", serial.NewMetaHandleMeta(7, serial.IntMeta(99)), (*Writer).WriteMetaHandle, (*Reader).ReadMetaHandle),
		rt("MetaHandleInlined", serial.InlineTypeValue("System.Int32"), (*Writer).WriteMetaHandle, (*Reader).ReadMetaHandle),
		rt("String", "héllo, 世界", (*Writer).WriteString, (*Reader).ReadString),
		rt("EmptyString", "", (*Writer).WriteString, (*Reader).ReadString),
		rt("TypeSpec", serial.TypeSpec{Name: "Contract", Hash: math.MaxUint64}, (*Writer).WriteTypeSpec, (*Reader).ReadTypeSpec),
		rt("MethodSpec", serial.MethodSpec{Name: "Do", ReturnType: 42, Signature: math.MaxUint64}, (*Writer).WriteMethodSpec, (*Reader).ReadMethodSpec),
		rt("Bytes", []byte{1, 2, 3}, (*Writer).WriteBytes, (*Reader).ReadBytes),
		rt("Int32s", []int32{math.MinInt32, -1, 0, math.MaxInt32}, (*Writer).WriteInt32s, (*Reader).ReadInt32s),
		rt("Int32sEmpty", []int32{}, (*Writer).WriteInt32s, (*Reader).ReadInt32s),
		rt("Int32sNil", []int32(nil), (*Writer).WriteInt32s, (*Reader).ReadInt32s),
		rt("Int64s", []int64{math.MinInt64, math.MaxInt64}, (*Writer).WriteInt64s, (*Reader).ReadInt64s),
		rt("Float64s", []float64{math.Pi, -0.5}, (*Writer).WriteFloat64s, (*Reader).ReadFloat64s),
		rt("Strings", []string{"a", "", "ü"}, (*Writer).WriteStrings, (*Reader).ReadStrings),
		rt("StringsNil", []string(nil), (*Writer).WriteStrings, (*Reader).ReadStrings),

		rt("NullableBool", serial.Ptr(true), (*Writer).WriteNullableBool, (*Reader).ReadNullableBool),
		rt[*bool]("NullableBoolNil", nil, (*Writer).WriteNullableBool, (*Reader).ReadNullableBool),
		rt("NullableByte", serial.Ptr(byte(7)), (*Writer).WriteNullableByte, (*Reader).ReadNullableByte),
		rt("NullableInt8", serial.Ptr(int8(-7)), (*Writer).WriteNullableInt8, (*Reader).ReadNullableInt8),
		rt("NullableInt16", serial.Ptr(int16(-300)), (*Writer).WriteNullableInt16, (*Reader).ReadNullableInt16),
		rt("NullableUint16", serial.Ptr(uint16(300)), (*Writer).WriteNullableUint16, (*Reader).ReadNullableUint16),
		rt("NullableInt32", serial.Ptr(int32(-1)), (*Writer).WriteNullableInt32, (*Reader).ReadNullableInt32),
		rt[*int32]("NullableInt32Nil", nil, (*Writer).WriteNullableInt32, (*Reader).ReadNullableInt32),
		rt("NullableUint32", serial.Ptr(uint32(1)), (*Writer).WriteNullableUint32, (*Reader).ReadNullableUint32),
		rt("NullableInt64", serial.Ptr(int64(math.MinInt64)), (*Writer).WriteNullableInt64, (*Reader).ReadNullableInt64),
		rt("NullableUint64", serial.Ptr(uint64(math.MaxUint64)), (*Writer).WriteNullableUint64, (*Reader).ReadNullableUint64),
		rt("NullableChar", serial.Ptr(serial.Char('x')), (*Writer).WriteNullableChar, (*Reader).ReadNullableChar),
		rt("NullableFloat32", serial.Ptr(float32(2.5)), (*Writer).WriteNullableFloat32, (*Reader).ReadNullableFloat32),
		rt("NullableFloat64", serial.Ptr(2.5), (*Writer).WriteNullableFloat64, (*Reader).ReadNullableFloat64),
		rt[*float64]("NullableFloat64Nil", nil, (*Writer).WriteNullableFloat64, (*Reader).ReadNullableFloat64),
		rt("NullableDecimal", serial.Ptr(decimal(t, "3.14")), (*Writer).WriteNullableDecimal, (*Reader).ReadNullableDecimal),
		rt("NullableDateTime", serial.Ptr(serial.DateTime{Ticks: 1, Kind: serial.KindUTC}), (*Writer).WriteNullableDateTime, (*Reader).ReadNullableDateTime),
		rt("NullableTimeSpan", serial.Ptr(serial.TimeSpan(10)), (*Writer).WriteNullableTimeSpan, (*Reader).ReadNullableTimeSpan),
		rt("NullableGUID", serial.Ptr(guid), (*Writer).WriteNullableGUID, (*Reader).ReadNullableGUID),
		rt[*uuid.UUID]("NullableGUIDNil", nil, (*Writer).WriteNullableGUID, (*Reader).ReadNullableGUID),
		rt("NullableGDID", serial.Ptr(serial.GDID{Era: 1, ID: 2}), (*Writer).WriteNullableGDID, (*Reader).ReadNullableGDID),
		rt("NullableFID", serial.Ptr(serial.FID(3)), (*Writer).WriteNullableFID, (*Reader).ReadNullableFID),
		rt("NullablePilePointer", serial.Ptr(serial.PilePointer{NodeID: 1}), (*Writer).WriteNullablePilePointer, (*Reader).ReadNullablePilePointer),
		rt("NullableString", serial.Ptr("x"), (*Writer).WriteNullableString, (*Reader).ReadNullableString),
		rt[*string]("NullableStringNil", nil, (*Writer).WriteNullableString, (*Reader).ReadNullableString),
	}
}

// --- Wire format ---

func TestWireBytes(t *testing.T) {
	tests := []struct {
		name  string
		write func(*Writer) error
		want  []byte
	}{
		{"BoolTrueFalse", func(w *Writer) error {
			if err := w.WriteBool(true); err != nil {
				return err
			}
			return w.WriteBool(false)
		}, []byte{0xFF, 0x00}},
		{"Int32MinusOne", func(w *Writer) error { return w.WriteInt32(-1) }, []byte{0x01}},
		{"Int8MinusOne", func(w *Writer) error { return w.WriteInt8(-1) }, []byte{0xFF}},
		{"Uint16", func(w *Writer) error { return w.WriteUint16(300) }, []byte{0xAC, 0x02}},
		{"Char", func(w *Writer) error { return w.WriteChar('A') }, []byte{0x82, 0x01}},
		{"Float64", func(w *Writer) error { return w.WriteFloat64(1) }, []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}},
		{"Float32", func(w *Writer) error { return w.WriteFloat32(1) }, []byte{0, 0, 0x80, 0x3F}},
		{"Decimal", func(w *Writer) error { return w.WriteDecimal(decimal(t, "-1.5")) }, []byte{0x1E, 0x00, 0x00, 0x81}},
		{"DateTime", func(w *Writer) error {
			return w.WriteDateTime(serial.DateTime{Ticks: 0x0102030405060708, Kind: serial.KindUTC})
		}, []byte{1, 2, 3, 4, 5, 6, 7, 8, 1}},
		{"TimeSpan", func(w *Writer) error { return w.WriteTimeSpan(-1) }, []byte{0x01}},
		{"GDID", func(w *Writer) error { return w.WriteGDID(serial.GDID{Era: 1, ID: 2}) }, []byte{0x01, 0x02}},
		{"FID", func(w *Writer) error { return w.WriteFID(128) }, []byte{0x80, 0x01}},
		{"PilePointer", func(w *Writer) error {
			return w.WritePilePointer(serial.PilePointer{NodeID: 1, Segment: -1})
		}, []byte{0x02, 0x01, 0x00}},
		{"String", func(w *Writer) error { return w.WriteString("hi") }, []byte{0xFF, 0x04, 'h', 'i'}},
		{"NullStringPresence", func(w *Writer) error { return w.WriteNullableString(nil) }, []byte{0x00}},
		{"NullableInt32", func(w *Writer) error { return w.WriteNullableInt32(serial.Ptr(int32(5))) }, []byte{0xFF, 0x0A}},
		{"NullableInt32Nil", func(w *Writer) error { return w.WriteNullableInt32(nil) }, []byte{0x00}},
		{"TypeSpec", func(w *Writer) error {
			return w.WriteTypeSpec(serial.TypeSpec{Name: "A", Hash: 0x0102030405060708})
		}, []byte{0xFF, 0x02, 'A', 1, 2, 3, 4, 5, 6, 7, 8}},
		{"MethodSpec", func(w *Writer) error {
			return w.WriteMethodSpec(serial.MethodSpec{Name: "M", ReturnType: 1, Signature: 300})
		}, []byte{0xFF, 0x02, 'M', 0, 0, 0, 0, 0, 0, 0, 1, 0xAC, 0x02}},
		{"MetaHandle", func(w *Writer) error { return w.WriteMetaHandle(serial.NewMetaHandle(1)) }, []byte{0x0A}},
		{"MetaHandleString", func(w *Writer) error {
			return w.WriteMetaHandle(serial.NewMetaHandleMeta(1, serial.StrMeta("T")))
		}, []byte{0x0B, 0xFF, 0x02, 'T'}},
		{"MetaHandleInt", func(w *Writer) error {
			return w.WriteMetaHandle(serial.NewMetaHandleMeta(1, serial.IntMeta(7)))
		}, []byte{0x0B, 0x00, 0x07}},
		{"InlinedString", func(w *Writer) error { return w.WriteMetaHandle(serial.InlineString("s")) }, []byte{0x01, 0xFF, 0x02, 's'}},
		{"BytesNil", func(w *Writer) error { return w.WriteBytes(nil) }, []byte{0x00}},
		{"BytesEmpty", func(w *Writer) error { return w.WriteBytes([]byte{}) }, []byte{0xFF, 0x00}},
		{"Int32s", func(w *Writer) error { return w.WriteInt32s([]int32{-1, 1}) }, []byte{0xFF, 0x04, 0x01, 0x02}},
		{"Strings", func(w *Writer) error { return w.WriteStrings([]string{"a"}) }, []byte{0xFF, 0x02, 0xFF, 0x02, 'a'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encode(t, tt.write))
		})
	}

	t.Run("GUID", func(t *testing.T) {
		g := uuid.New()
		data := encode(t, func(w *Writer) error { return w.WriteGUID(g) })
		assert.Equal(t, append([]byte{0xFF, 0x20}, g[:]...), data)
	})
}

func TestBoolAcceptsAnyNonZeroByte(t *testing.T) {
	var got []bool
	err := Unmarshal([]byte{0x01, 0x7F, 0xFF, 0x00}, func(r *Reader) error {
		for range 4 {
			b, err := r.ReadBool()
			if err != nil {
				return err
			}
			got = append(got, b)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, false}, got)
}

func TestRoundTrips(t *testing.T) {
	for _, tt := range roundTrips(t) {
		t.Run(tt.name, func(t *testing.T) {
			data := encode(t, tt.write)

			var got any
			err := Unmarshal(data, func(r *Reader) (err error) {
				got, err = tt.read(r)
				return err
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncationIsCorrupted(t *testing.T) {
	for _, tt := range roundTrips(t) {
		t.Run(tt.name, func(t *testing.T) {
			data := encode(t, tt.write)
			for cut := range len(data) {
				err := Unmarshal(data[:cut], func(r *Reader) error {
					_, err := tt.read(r)
					return err
				})
				require.ErrorIs(t, err, serial.ErrStreamCorrupted, "cut at %d of %d", cut, len(data))
			}
		})
	}
}

func TestNilAndEmptyArraysStayDistinct(t *testing.T) {
	for _, in := range [][]byte{nil, {}} {
		data := encode(t, func(w *Writer) error { return w.WriteBytes(in) })
		var out []byte
		require.NoError(t, Unmarshal(data, func(r *Reader) (err error) {
			out, err = r.ReadBytes()
			return err
		}))
		assert.Equal(t, in == nil, out == nil)
	}
}

func TestCorruptedValues(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(*Reader) error
	}{
		{"DecimalScale", []byte{0x00, 0x00, 0x00, 29}, func(r *Reader) error { _, err := r.ReadDecimal(); return err }},
		{"DateTimeKind", []byte{0, 0, 0, 0, 0, 0, 0, 0, 3}, func(r *Reader) error { _, err := r.ReadDateTime(); return err }},
		{"GUIDLength", append([]byte{0xFF, 0x1E}, make([]byte, 15)...), func(r *Reader) error { _, err := r.ReadGUID(); return err }},
		{"GUIDAbsent", []byte{0x00}, func(r *Reader) error { _, err := r.ReadGUID(); return err }},
		{"NegativeCount", []byte{0xFF, 0x01}, func(r *Reader) error { _, err := r.ReadInt32s(); return err }},
		{"Int16Overflow", []byte{0xFF, 0xFF, 0xFF, 0x01}, func(r *Reader) error { _, err := r.ReadInt16(); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Unmarshal(tt.data, tt.read), serial.ErrStreamCorrupted)
		})
	}
}

// --- Limits ---

type LimitsTestSuite struct {
	suite.Suite
	opts serial.Options
}

func (s *LimitsTestSuite) SetupTest() {
	s.opts = serial.DefaultOptions()
	s.opts.Limits = serial.Limits{
		MaxByteArrayLen:    4,
		MaxInt32ArrayLen:   2,
		MaxInt64ArrayLen:   2,
		MaxFloat64ArrayLen: 2,
		MaxStringArrayLen:  2,
		MaxStringLen:       3,
	}
}

type limitCase struct {
	name       string
	atMax      func(*Writer) error
	overMax    func(*Writer) error
	read       func(*Reader) error
	overDetail string
}

func (s *LimitsTestSuite) cases() []limitCase {
	return []limitCase{
		{"Bytes", func(w *Writer) error { return w.WriteBytes(make([]byte, 4)) },
			func(w *Writer) error { return w.WriteBytes(make([]byte, 5)) },
			func(r *Reader) error { _, err := r.ReadBytes(); return err }, "5 exceeds allowed 4"},
		{"Int32s", func(w *Writer) error { return w.WriteInt32s(make([]int32, 2)) },
			func(w *Writer) error { return w.WriteInt32s(make([]int32, 3)) },
			func(r *Reader) error { _, err := r.ReadInt32s(); return err }, "3 exceeds allowed 2"},
		{"Int64s", func(w *Writer) error { return w.WriteInt64s(make([]int64, 2)) },
			func(w *Writer) error { return w.WriteInt64s(make([]int64, 3)) },
			func(r *Reader) error { _, err := r.ReadInt64s(); return err }, "3 exceeds allowed 2"},
		{"Float64s", func(w *Writer) error { return w.WriteFloat64s(make([]float64, 2)) },
			func(w *Writer) error { return w.WriteFloat64s(make([]float64, 3)) },
			func(r *Reader) error { _, err := r.ReadFloat64s(); return err }, "3 exceeds allowed 2"},
		{"Strings", func(w *Writer) error { return w.WriteStrings(make([]string, 2)) },
			func(w *Writer) error { return w.WriteStrings(make([]string, 3)) },
			func(r *Reader) error { _, err := r.ReadStrings(); return err }, "3 exceeds allowed 2"},
		{"String", func(w *Writer) error { return w.WriteString("abc") },
			func(w *Writer) error { return w.WriteString("abcd") },
			func(r *Reader) error { _, err := r.ReadString(); return err }, "4 exceeds allowed 3"},
	}
}

func (s *LimitsTestSuite) TestWrite() {
	for _, c := range s.cases() {
		s.Run(c.name, func() {
			_, err := MarshalOptions(s.opts, c.atMax)
			s.Require().NoError(err)

			_, err = MarshalOptions(s.opts, c.overMax)
			s.Assert().ErrorIs(err, serial.ErrSizeLimitExceeded)
			s.Assert().ErrorContains(err, c.overDetail)
		})
	}
}

func (s *LimitsTestSuite) TestRead() {
	for _, c := range s.cases() {
		s.Run(c.name, func() {
			atMax, err := Marshal(c.atMax)
			s.Require().NoError(err)
			s.Assert().NoError(UnmarshalOptions(s.opts, atMax, c.read))

			overMax, err := Marshal(c.overMax)
			s.Require().NoError(err)
			err = UnmarshalOptions(s.opts, overMax, c.read)
			s.Assert().ErrorIs(err, serial.ErrSizeLimitExceeded)
			s.Assert().ErrorContains(err, c.overDetail)
		})
	}
}

func (s *LimitsTestSuite) TestCheckedBeforeAllocation() {
	// A count of 2^31-1 with no payload behind it: the limit must trip before make.
	data := append([]byte{0xFF}, serial.AppendVarint(nil, int32(math.MaxInt32))...)
	err := Unmarshal(data, func(r *Reader) error { _, err := r.ReadBytes(); return err })
	s.Assert().ErrorIs(err, serial.ErrSizeLimitExceeded)
}

func TestLimits(t *testing.T) {
	suite.Run(t, new(LimitsTestSuite))
}

// --- Strings ---

func TestStringBufferThreshold(t *testing.T) {
	sizes := []int{StringBufferSize - 1, StringBufferSize, StringBufferSize + 1, 5, StringBufferSize - 1}
	values := make([]string, len(sizes))
	for i, n := range sizes {
		values[i] = strings.Repeat(string(rune('a'+i)), n)
	}

	data := encode(t, func(w *Writer) error {
		for _, v := range values {
			if err := w.WriteString(v); err != nil {
				return err
			}
		}
		return nil
	})

	// Each string must be encoded exactly as its standalone form.
	var want []byte
	for _, v := range values {
		want = append(want, 0xFF)
		want = serial.AppendVarint(want, int32(len(v)))
		want = append(want, v...)
	}
	assert.Equal(t, want, data)

	// One reader serves every size, switching between its own buffer and fresh allocations.
	var got []string
	require.NoError(t, Unmarshal(data, func(r *Reader) error {
		for range values {
			s, err := r.ReadString()
			if err != nil {
				return err
			}
			got = append(got, s)
		}
		return nil
	}))
	assert.Equal(t, values, got, "earlier strings must not alias the reused buffer")
}

func TestStringEncoding(t *testing.T) {
	opts := serial.DefaultOptions()
	opts.Encoding = "ISO-8859-1"

	data, err := MarshalOptions(opts, func(w *Writer) error { return w.WriteString("é") })
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0x02, 0xE9}, data)

	long := strings.Repeat("é", StringBufferSize+1)
	for _, v := range []string{"café", strings.Repeat("é", StringBufferSize-1), long} {
		data, err := MarshalOptions(opts, func(w *Writer) error { return w.WriteString(v) })
		require.NoError(t, err)
		var got string
		require.NoError(t, UnmarshalOptions(opts, data, func(r *Reader) (err error) {
			got, err = r.ReadString()
			return err
		}))
		assert.Equal(t, v, got)
	}

	t.Run("Unencodable", func(t *testing.T) {
		for _, c := range []struct {
			in   string
			want []byte
		}{
			{"世", []byte{0xFF, 0x02, 0x1A}},
			{"a\xffb", []byte{0xFF, 0x06, 'a', 0x1A, 'b'}},
		} {
			data, err := MarshalOptions(opts, func(w *Writer) error { return w.WriteString(c.in) })
			require.NoError(t, err, "%q", c.in)
			assert.Equal(t, c.want, data, "%q", c.in)
		}
	})
}

func TestMetaHandleKindsOnTheWire(t *testing.T) {
	tests := []struct {
		name    string
		h       serial.MetaHandle
		inlined bool
		handle  uint32
	}{
		{"InlineString", serial.InlineString("s"), true, 0},
		{"InlineValueType", serial.InlineValueType("System.Int32"), true, 0},
		{"InlineRefType", serial.InlineRefType("System.String"), true, 0},
		{"InlineTypeValue", serial.InlineTypeValue("Person"), true, 0},
		{"Handle0", serial.NewMetaHandle(0), false, 0},
		{"Handle1", serial.NewMetaHandle(1), false, 1},
		{"Handle2", serial.NewMetaHandle(2), false, 2},
		{"Handle3", serial.NewMetaHandle(3), false, 3},
		{"Handle4", serial.NewMetaHandle(4), false, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(func(w *Writer) error { return w.WriteMetaHandle(tt.h) })
			require.NoError(t, err)

			var got serial.MetaHandle
			require.NoError(t, Unmarshal(data, func(r *Reader) (err error) {
				got, err = r.ReadMetaHandle()
				return err
			}))
			assert.Equal(t, tt.h, got)
			assert.Equal(t, tt.inlined, got.IsInlined())
			if !tt.inlined {
				assert.Equal(t, tt.handle, got.Handle())
			}
		})
	}
}

// --- Binding ---

func TestUnboundCodecs(t *testing.T) {
	var w Writer
	assert.ErrorIs(t, w.WriteInt32(1), serial.ErrNotBound)
	assert.ErrorIs(t, w.WriteString("x"), serial.ErrNotBound)

	var r Reader
	_, err := r.ReadInt32()
	assert.ErrorIs(t, err, serial.ErrNotBound)
	_, err = r.ReadStrings()
	assert.ErrorIs(t, err, serial.ErrNotBound)
}

func TestBindingLifecycle(t *testing.T) {
	var first, second bytes.Buffer
	w := &Writer{}
	require.NoError(t, w.BindStream(&first))
	assert.ErrorIs(t, w.BindStream(&second), serial.ErrBindingConflict)
	require.NoError(t, w.WriteInt32(-1))
	require.NoError(t, w.UnbindStream())

	require.NoError(t, w.BindStream(&second))
	require.NoError(t, w.WriteInt32(1))
	require.NoError(t, w.UnbindStream())

	assert.Equal(t, []byte{0x01}, first.Bytes())
	assert.Equal(t, []byte{0x02}, second.Bytes())
}

func TestReadOnlyStream(t *testing.T) {
	ro := serial.ReadOnly(bytes.NewReader([]byte{0x01}))

	r := &Reader{}
	require.NoError(t, r.BindStream(ro))
	v, err := r.ReadInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-1), v)
	require.NoError(t, r.UnbindStream())

	w := &Writer{}
	require.NoError(t, w.BindStream(ro))
	assert.ErrorIs(t, w.WriteInt32(1), serial.ErrUnsupportedOperation)
	assert.ErrorIs(t, w.UnbindStream(), serial.ErrUnsupportedOperation)
}

func TestReaderStopsAtValueBoundary(t *testing.T) {
	data := encode(t, func(w *Writer) error {
		if err := w.WriteString("first"); err != nil {
			return err
		}
		return w.WriteInt64(math.MaxInt64)
	})
	src := bytes.NewReader(data)
	r := &Reader{}
	// hide the bytes.Reader so the generic unbuffered path is taken
	require.NoError(t, r.BindStream(io.MultiReader(src)))
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "first", s)
	assert.Equal(t, serial.VarintLen(int64(math.MaxInt64)), src.Len(), "nothing past the string may be consumed")
}

// --- Marshal helpers ---

func TestMarshalHelpers(t *testing.T) {
	t.Run("TrailingData", func(t *testing.T) {
		err := Unmarshal([]byte{0x01, 0x02}, func(r *Reader) error {
			_, err := r.ReadInt32()
			return err
		})
		assert.ErrorIs(t, err, serial.ErrTrailingData)
	})

	t.Run("MarshalTo", func(t *testing.T) {
		buf := make([]byte, 8)
		n, err := MarshalTo(buf, func(w *Writer) error { return w.WriteString("hey") })
		require.NoError(t, err)
		assert.Equal(t, []byte{0xFF, 0x06, 'h', 'e', 'y'}, buf[:n])

		clear(buf)
		n, err = MarshalTo(buf[:2:2], func(w *Writer) error { return w.WriteString("hey") })
		assert.ErrorIs(t, err, io.ErrShortWrite)
		assert.Equal(t, 2, n)
		assert.Equal(t, []byte{0xFF, 0x06, 0, 0}, buf[:4], "nothing lands past the capacity")

		// The room is the capacity of dst, not its length.
		n, err = MarshalTo(buf[:0], func(w *Writer) error { return w.WriteString("hey") })
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	})
}
