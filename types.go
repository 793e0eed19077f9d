package serial

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Char is one UTF-16 code unit. It is a distinct type so that formats can
// tell it apart from the 16-bit integers, and it travels on the int16 path.
type Char uint16

func (c Char) String() string { return string(rune(c)) }

// DateTimeKind tells how the ticks of a DateTime are to be interpreted.
type DateTimeKind byte

const (
	KindUnspecified DateTimeKind = iota
	KindUTC
	KindLocal
)

func (k DateTimeKind) String() string {
	switch k {
	case KindUnspecified:
		return "unspecified"
	case KindUTC:
		return "utc"
	case KindLocal:
		return "local"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

const (
	// TicksPerSecond is the number of 100ns ticks in a second.
	TicksPerSecond = 10_000_000
	// unixEpochTicks is the tick count of 1970-01-01T00:00:00 counted from 0001-01-01T00:00:00.
	unixEpochTicks = 621_355_968_000_000_000
)

// DateTime is a wall-clock instant counted in 100ns ticks since 0001-01-01T00:00:00
// together with the kind of clock the ticks belong to.
type DateTime struct {
	Ticks int64
	Kind  DateTimeKind
}

// DateTimeOf converts t. The kind is KindUTC for UTC times, KindLocal for times in
// time.Local and KindUnspecified otherwise; the ticks always hold t's wall clock.
func DateTimeOf(t time.Time) DateTime {
	kind := KindUnspecified
	switch t.Location() {
	case time.UTC:
		kind = KindUTC
	case time.Local:
		kind = KindLocal
	}
	_, offset := t.Zone()
	secs := t.Unix() + int64(offset)
	return DateTime{
		Ticks: unixEpochTicks + secs*TicksPerSecond + int64(t.Nanosecond()/100),
		Kind:  kind,
	}
}

// Time converts d back to a time.Time. Unspecified times are returned in UTC.
func (d DateTime) Time() time.Time {
	rel := d.Ticks - unixEpochTicks
	secs := rel / TicksPerSecond
	rem := rel % TicksPerSecond
	if rem < 0 {
		secs--
		rem += TicksPerSecond
	}
	wall := time.Unix(secs, rem*100).UTC()
	if d.Kind == KindLocal {
		return time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(),
			wall.Second(), wall.Nanosecond(), time.Local)
	}
	return wall
}

func (d DateTime) String() string {
	return d.Time().Format("2006-01-02T15:04:05.0000000") + "(" + d.Kind.String() + ")"
}

// TimeSpan is a signed duration in 100ns ticks.
type TimeSpan int64

// TimeSpanOf converts d, truncating below 100ns.
func TimeSpanOf(d time.Duration) TimeSpan { return TimeSpan(d / 100) }

// Duration converts s to a time.Duration. Spans beyond ±292 years overflow.
func (s TimeSpan) Duration() time.Duration { return time.Duration(s) * 100 }

func (s TimeSpan) String() string { return s.Duration().String() }

// MaxDecimalScale is the largest number of fractional digits a Decimal carries.
const MaxDecimalScale = 28

// Decimal is a 96-bit unsigned mantissa with a sign and a power-of-ten scale:
// value = (-1)^Negative * (Hi<<64 | Mid<<32 | Lo) / 10^Scale.
type Decimal struct {
	Lo, Mid, Hi uint32
	Scale       uint8
	Negative    bool
}

var maxMantissa = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 96), big.NewInt(1))

// NewDecimal builds a Decimal from an unscaled integer and a scale.
func NewDecimal(unscaled *big.Int, scale uint8) (Decimal, error) {
	if scale > MaxDecimalScale {
		return Decimal{}, fmt.Errorf("%w: decimal scale %d exceeds %d", ErrSizeLimitExceeded, scale, MaxDecimalScale)
	}
	m := new(big.Int).Abs(unscaled)
	if m.Cmp(maxMantissa) > 0 {
		return Decimal{}, fmt.Errorf("%w: decimal mantissa exceeds 96 bits", ErrSizeLimitExceeded)
	}
	mask := big.NewInt(0xffffffff)
	var d Decimal
	d.Lo = uint32(new(big.Int).And(m, mask).Uint64())
	d.Mid = uint32(new(big.Int).And(new(big.Int).Rsh(m, 32), mask).Uint64())
	d.Hi = uint32(new(big.Int).Rsh(m, 64).Uint64())
	d.Scale = scale
	d.Negative = unscaled.Sign() < 0
	return d, nil
}

// ParseDecimal parses a plain decimal literal such as "-12.3400".
func ParseDecimal(s string) (Decimal, error) {
	digits := strings.TrimSpace(s)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimLeft(digits, "+-")
	var scale int
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		scale = len(digits) - i - 1
		digits = digits[:i] + digits[i+1:]
	}
	if scale > MaxDecimalScale {
		return Decimal{}, fmt.Errorf("%w: decimal scale %d exceeds %d", ErrSizeLimitExceeded, scale, MaxDecimalScale)
	}
	m, ok := new(big.Int).SetString(digits, 10)
	if !ok || m.Sign() < 0 {
		return Decimal{}, fmt.Errorf("serial: invalid decimal %q", s)
	}
	if neg {
		m.Neg(m)
	}
	d, err := NewDecimal(m, uint8(scale))
	if err != nil {
		return Decimal{}, err
	}
	// keep the sign of "-0.0" the way it was written
	d.Negative = neg
	return d, nil
}

// Unscaled returns the signed mantissa.
func (d Decimal) Unscaled() *big.Int {
	m := new(big.Int).SetUint64(uint64(d.Hi))
	m.Lsh(m, 32).Or(m, new(big.Int).SetUint64(uint64(d.Mid)))
	m.Lsh(m, 32).Or(m, new(big.Int).SetUint64(uint64(d.Lo)))
	if d.Negative {
		m.Neg(m)
	}
	return m
}

func (d Decimal) String() string {
	m := new(big.Int).SetUint64(uint64(d.Hi))
	m.Lsh(m, 32).Or(m, new(big.Int).SetUint64(uint64(d.Mid)))
	m.Lsh(m, 32).Or(m, new(big.Int).SetUint64(uint64(d.Lo)))
	digits := m.String()
	if s := int(d.Scale); s > 0 {
		if len(digits) <= s {
			digits = strings.Repeat("0", s-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-s] + "." + digits[len(digits)-s:]
	}
	if d.Negative {
		return "-" + digits
	}
	return digits
}

// GDID is a globally distributed id: an authority era plus a counter within it.
type GDID struct {
	Era uint32
	ID  uint64
}

func (g GDID) IsZero() bool { return g.Era == 0 && g.ID == 0 }
func (g GDID) String() string {
	return strconv.FormatUint(uint64(g.Era), 10) + ":" + strconv.FormatUint(g.ID, 10)
}

// FID is a fast, process-unique transient id.
type FID uint64

func (f FID) String() string { return strconv.FormatUint(uint64(f), 16) }

// PilePointer addresses an object inside a memory pile.
type PilePointer struct {
	NodeID  int32
	Segment int32
	Address int32
}

func (p PilePointer) String() string {
	return fmt.Sprintf("pile(%d:%d:%d)", p.NodeID, p.Segment, p.Address)
}

// TypeSpec describes a contract type by name and hash.
type TypeSpec struct {
	Name string
	Hash uint64
}

func (t TypeSpec) String() string { return fmt.Sprintf("%s#%016x", t.Name, t.Hash) }

// MethodSpec describes a contract method by name, return type hash and signature hash.
type MethodSpec struct {
	Name       string
	ReturnType uint64
	Signature  uint64
}

func (m MethodSpec) String() string {
	return fmt.Sprintf("%s(%016x)%016x", m.Name, m.Signature, m.ReturnType)
}
