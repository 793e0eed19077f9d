package main

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oy3o/serial"
	"github.com/oy3o/serial/slim"
)

// kind maps a command line name to a Go type and a literal parser.
type kind struct {
	typ   reflect.Type
	parse func(string) (any, error)
}

func kindOf[T any](parse func(string) (T, error)) kind {
	return kind{typ: reflect.TypeFor[T](), parse: func(s string) (any, error) { return parse(s) }}
}

func parseInt[T int8 | int16 | int32 | int64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseInt(s, 0, bits)
		return T(v), err
	}
}

func parseUint[T uint8 | uint16 | uint32 | uint64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		v, err := strconv.ParseUint(s, 0, bits)
		return T(v), err
	}
}

func parseList[T any](parse func(string) (T, error)) func(string) ([]T, error) {
	return func(s string) ([]T, error) {
		out := []T{}
		if s == "" {
			return out, nil
		}
		for _, part := range strings.Split(s, ",") {
			v, err := parse(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}
}

func parseFloat64(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
func parseString(s string) (string, error)   { return s, nil }

func parseHex64(s string) (uint64, error) { return strconv.ParseUint(s, 16, 64) }

// parsePilePointer reads node:segment:address.
func parsePilePointer(s string) (serial.PilePointer, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return serial.PilePointer{}, fmt.Errorf("pilepointer literal %q is not node:segment:address", s)
	}
	var v [3]int32
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			return serial.PilePointer{}, err
		}
		v[i] = int32(n)
	}
	return serial.PilePointer{NodeID: v[0], Segment: v[1], Address: v[2]}, nil
}

// parseTypeSpec reads name#hash with the hash in hex.
func parseTypeSpec(s string) (serial.TypeSpec, error) {
	name, hash, ok := strings.Cut(s, "#")
	if !ok {
		return serial.TypeSpec{}, fmt.Errorf("typespec literal %q is not name#hash", s)
	}
	h, err := parseHex64(hash)
	return serial.TypeSpec{Name: name, Hash: h}, err
}

// parseMethodSpec reads name#return#signature with both hashes in hex.
func parseMethodSpec(s string) (serial.MethodSpec, error) {
	parts := strings.Split(s, "#")
	if len(parts) != 3 {
		return serial.MethodSpec{}, fmt.Errorf("methodspec literal %q is not name#return#signature", s)
	}
	ret, err := parseHex64(parts[1])
	if err != nil {
		return serial.MethodSpec{}, err
	}
	sig, err := parseHex64(parts[2])
	return serial.MethodSpec{Name: parts[0], ReturnType: ret, Signature: sig}, err
}

var inlineKinds = map[string]func(string) serial.MetaHandle{
	"str": serial.InlineString,
	"vt":  serial.InlineValueType,
	"rt":  serial.InlineRefType,
	"tv":  serial.InlineTypeValue,
}

// parseMetaHandle reads a handle as N, N:meta or N:#int, or an inlined
// value as str:, vt:, rt: or tv: followed by the text.
func parseMetaHandle(s string) (serial.MetaHandle, error) {
	head, rest, hasRest := strings.Cut(s, ":")
	if inline, ok := inlineKinds[head]; ok && hasRest {
		return inline(rest), nil
	}
	h, err := strconv.ParseUint(head, 10, 32)
	if err != nil {
		return serial.MetaHandle{}, err
	}
	if h > uint64(serial.MaxHandle) {
		return serial.MetaHandle{}, fmt.Errorf("handle %d exceeds %d", h, serial.MaxHandle)
	}
	if !hasRest {
		return serial.NewMetaHandle(uint32(h)), nil
	}
	if n, ok := strings.CutPrefix(rest, "#"); ok {
		i, err := strconv.ParseUint(n, 10, 32)
		if err != nil {
			return serial.MetaHandle{}, err
		}
		return serial.NewMetaHandleMeta(uint32(h), serial.IntMeta(uint32(i))), nil
	}
	return serial.NewMetaHandleMeta(uint32(h), serial.StrMeta(rest)), nil
}

var kinds = map[string]kind{
	"bool":   kindOf(strconv.ParseBool),
	"byte":   kindOf(parseUint[uint8](8)),
	"int8":   kindOf(parseInt[int8](8)),
	"int16":  kindOf(parseInt[int16](16)),
	"uint16": kindOf(parseUint[uint16](16)),
	"int32":  kindOf(parseInt[int32](32)),
	"uint32": kindOf(parseUint[uint32](32)),
	"int64":  kindOf(parseInt[int64](64)),
	"uint64": kindOf(parseUint[uint64](64)),
	"char": kindOf(func(s string) (serial.Char, error) {
		r := []rune(s)
		if len(r) != 1 || r[0] > 0xffff {
			return 0, fmt.Errorf("char literal %q must be one BMP character", s)
		}
		return serial.Char(r[0]), nil
	}),
	"float32": kindOf(func(s string) (float32, error) {
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	}),
	"float64": kindOf(parseFloat64),
	"decimal": kindOf(serial.ParseDecimal),
	"datetime": kindOf(func(s string) (serial.DateTime, error) {
		t, err := time.Parse(time.RFC3339Nano, s)
		return serial.DateTimeOf(t), err
	}),
	"timespan": kindOf(func(s string) (serial.TimeSpan, error) {
		d, err := time.ParseDuration(s)
		return serial.TimeSpanOf(d), err
	}),
	"guid": kindOf(uuid.Parse),
	"gdid": kindOf(func(s string) (serial.GDID, error) {
		era, id, ok := strings.Cut(s, ":")
		if !ok {
			return serial.GDID{}, fmt.Errorf("gdid literal %q is not era:id", s)
		}
		e, err := strconv.ParseUint(era, 10, 32)
		if err != nil {
			return serial.GDID{}, err
		}
		i, err := strconv.ParseUint(id, 10, 64)
		return serial.GDID{Era: uint32(e), ID: i}, err
	}),
	"fid": kindOf(func(s string) (serial.FID, error) {
		v, err := strconv.ParseUint(s, 16, 64)
		return serial.FID(v), err
	}),
	"pilepointer": kindOf(parsePilePointer),
	"typespec":    kindOf(parseTypeSpec),
	"methodspec":  kindOf(parseMethodSpec),
	"metahandle":  kindOf(parseMetaHandle),
	"string":      kindOf(parseString),
	"bytes":       kindOf(hex.DecodeString),
	"int32s":      kindOf(parseList(parseInt[int32](32))),
	"int64s":      kindOf(parseList(parseInt[int64](64))),
	"float64s":    kindOf(parseList(parseFloat64)),
	"strings":     kindOf(parseList(parseString)),
}

func kindNames() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// lookupKind resolves a kind name. A trailing '?' asks for the nullable form.
func lookupKind(name string) (reflect.Type, kind, bool, error) {
	base, nullable := strings.CutSuffix(name, "?")
	k, ok := kinds[base]
	if !ok {
		return nil, kind{}, false, fmt.Errorf("%w: kind %q", serial.ErrUnsupportedType, name)
	}
	t := k.typ
	if nullable && !serial.IsRefType(t) {
		t = reflect.PointerTo(t)
	}
	return t, k, nullable, nil
}

// parseLiteral parses literal as the named kind. Nullable kinds and arrays accept "null".
func parseLiteral(name, literal string) (any, error) {
	t, k, nullable, err := lookupKind(name)
	if err != nil {
		return nil, err
	}
	if nullable && literal == "null" {
		return reflect.Zero(t).Interface(), nil
	}
	v, err := k.parse(literal)
	if err != nil {
		return nil, fmt.Errorf("invalid %s literal %q: %w", name, literal, err)
	}
	if t.Kind() == reflect.Pointer {
		p := reflect.New(t.Elem())
		p.Elem().Set(reflect.ValueOf(v))
		return p.Interface(), nil
	}
	return v, nil
}

func encodeValues(opts serial.Options, values []any) ([]byte, error) {
	f, err := slim.Format()
	if err != nil {
		return nil, err
	}
	return slim.MarshalOptions(opts, func(w *slim.Writer) error {
		for _, v := range values {
			if err := f.WriteValue(w, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func decodeValues(opts serial.Options, data []byte, names []string) ([]any, error) {
	f, err := slim.Format()
	if err != nil {
		return nil, err
	}
	types := make([]reflect.Type, len(names))
	for i, name := range names {
		if types[i], _, _, err = lookupKind(name); err != nil {
			return nil, err
		}
	}
	values := make([]any, 0, len(types))
	err = slim.UnmarshalOptions(opts, data, func(r *slim.Reader) error {
		for _, t := range types {
			v, err := f.ReadValue(r, t)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		return nil
	})
	return values, err
}

func formatValue(v any) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Slice {
		if rv.IsNil() {
			return "null"
		}
	}
	if rv.Kind() == reflect.Pointer {
		return formatValue(rv.Elem().Interface())
	}
	switch x := v.(type) {
	case []byte:
		return hex.EncodeToString(x)
	case string:
		return strconv.Quote(x)
	case []string:
		quoted := make([]string, len(x))
		for i, s := range x {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, " ") + "]"
	case serial.Char:
		return strconv.QuoteRune(rune(x))
	}
	return fmt.Sprint(v)
}
