package serial

import (
	"math"
	"strconv"
)

// Raw handle values below HandleBias are not handles. They tag a slot whose
// metadata string is the inlined content itself.
const (
	InlinedString    uint32 = iota // metadata holds a string value
	InlinedValueType               // metadata holds a value type name; the value follows
	InlinedRefType                 // metadata holds a reference type name; the object follows
	InlinedTypeValue               // metadata holds a type name that is itself the value
	HandleBias
)

// MaxHandle is the largest handle a MetaHandle can carry.
const MaxHandle = math.MaxUint32 - HandleBias

// VarIntStr is either a string or, when Str is nil, an unsigned integer.
type VarIntStr struct {
	Str *string
	Int uint32
}

// StrMeta returns string metadata.
func StrMeta(s string) VarIntStr { return VarIntStr{Str: &s} }

// IntMeta returns integer metadata.
func IntMeta(i uint32) VarIntStr { return VarIntStr{Int: i} }

func (v VarIntStr) String() string {
	if v.Str != nil {
		return *v.Str
	}
	return strconv.FormatUint(uint64(v.Int), 10)
}

// MetaHandle is a compact reference token: either a numeric handle, optionally paired
// with descriptive metadata, or one of four inlined literal kinds.
type MetaHandle struct {
	raw  uint32
	meta *VarIntStr
}

// NewMetaHandle returns a plain handle. It panics when h exceeds MaxHandle.
func NewMetaHandle(h uint32) MetaHandle {
	if h > MaxHandle {
		panic("serial: meta handle " + strconv.FormatUint(uint64(h), 10) + " out of range")
	}
	return MetaHandle{raw: h + HandleBias}
}

// NewMetaHandleMeta returns a handle paired with metadata such as a type name.
func NewMetaHandleMeta(h uint32, meta VarIntStr) MetaHandle {
	mh := NewMetaHandle(h)
	mh.meta = &meta
	return mh
}

// RawMetaHandle rebuilds a handle from its wire value. Decoders use it; raw values
// below HandleBias yield inlined kinds.
func RawMetaHandle(raw uint32, meta *VarIntStr) MetaHandle {
	return MetaHandle{raw: raw, meta: meta}
}

func inlined(kind uint32, s string) MetaHandle {
	return MetaHandle{raw: kind, meta: &VarIntStr{Str: &s}}
}

func InlineString(s string) MetaHandle        { return inlined(InlinedString, s) }
func InlineValueType(name string) MetaHandle  { return inlined(InlinedValueType, name) }
func InlineRefType(name string) MetaHandle    { return inlined(InlinedRefType, name) }
func InlineTypeValue(name string) MetaHandle  { return inlined(InlinedTypeValue, name) }
func (m MetaHandle) Raw() uint32              { return m.raw }
func (m MetaHandle) IsInlined() bool          { return m.raw < HandleBias }
func (m MetaHandle) IsInlinedString() bool    { return m.raw == InlinedString }
func (m MetaHandle) IsInlinedValueType() bool { return m.raw == InlinedValueType }
func (m MetaHandle) IsInlinedRefType() bool   { return m.raw == InlinedRefType }
func (m MetaHandle) IsInlinedTypeValue() bool { return m.raw == InlinedTypeValue }

// Handle returns the numeric handle, or 0 for inlined kinds.
func (m MetaHandle) Handle() uint32 {
	if m.raw < HandleBias {
		return 0
	}
	return m.raw - HandleBias
}

// Metadata returns the attached metadata, if any.
func (m MetaHandle) Metadata() (VarIntStr, bool) {
	if m.meta == nil {
		return VarIntStr{}, false
	}
	return *m.meta, true
}

// Inlined returns the inlined string payload.
func (m MetaHandle) Inlined() string {
	if m.meta == nil || m.meta.Str == nil {
		return ""
	}
	return *m.meta.Str
}

func (m MetaHandle) String() string {
	var kind string
	switch m.raw {
	case InlinedString:
		kind = "str"
	case InlinedValueType:
		kind = "vt"
	case InlinedRefType:
		kind = "rt"
	case InlinedTypeValue:
		kind = "tv"
	default:
		kind = "#" + strconv.FormatUint(uint64(m.Handle()), 10)
	}
	if m.meta != nil {
		return kind + "(" + m.meta.String() + ")"
	}
	return kind
}
