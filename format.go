package serial

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/hengadev/errsx"
	"go.uber.org/zap"
)

// Method name prefixes a format inspects on its reader and writer types.
const (
	WritePrefix = "Write"
	ReadPrefix  = "Read"
)

var errorType = reflect.TypeFor[error]()

// IsRefType reports whether values of t are references: slices, maps, channels,
// funcs and interfaces. Everything else, strings and *T nullables included,
// is treated as a value type.
func IsRefType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	}
	return false
}

func isNillable(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer || IsRefType(t)
}

// Method is a generic handle to one operation found on a reader or writer type.
// Invoking it goes through reflection; use the compiled funcs of a Format on hot paths.
type Method struct {
	Name string
	Type reflect.Type // the value written, or returned by a read
	Ref  bool
	fn   reflect.Value // method expression taking the receiver first
}

// Write invokes a write method reflectively on w.
func (m Method) Write(w any, v any) error {
	arg := reflect.ValueOf(v)
	if !arg.IsValid() && isNillable(m.Type) {
		arg = reflect.Zero(m.Type)
	}
	if !arg.IsValid() || arg.Type() != m.Type {
		return typeMismatch(m.Name, m.Type, v)
	}
	out := m.fn.Call([]reflect.Value{reflect.ValueOf(w), arg})
	err, _ := out[0].Interface().(error)
	return err
}

// Read invokes a read method reflectively on r.
func (m Method) Read(r any) (any, error) {
	out := m.fn.Call([]reflect.Value{reflect.ValueOf(r)})
	if err, _ := out[1].Interface().(error); err != nil {
		return nil, err
	}
	return out[0].Interface(), nil
}

func typeMismatch(name string, want reflect.Type, got any) error {
	return fmt.Errorf("%w: %s takes %s, got %T", ErrUnsupportedType, name, want, got)
}

// WriteFunc writes a boxed value without reflection.
type WriteFunc[W any] func(w W, v any) error

// ReadFunc reads a value and returns it boxed, without reflection.
type ReadFunc[R any] func(r R) (any, error)

// WriteOp is one entry of a writer's operation table.
type WriteOp[W any] struct {
	Name string
	Type reflect.Type
	Func WriteFunc[W]
}

// ReadOp is one entry of a reader's operation table.
type ReadOp[R any] struct {
	Name string
	Type reflect.Type
	Func ReadFunc[R]
}

// Writes compiles a typed write method expression, e.g. (*slim.Writer).WriteInt32,
// into a table entry. name must be the method's name.
func Writes[W, T any](name string, fn func(W, T) error) WriteOp[W] {
	t := reflect.TypeFor[T]()
	nillable := isNillable(t)
	return WriteOp[W]{Name: name, Type: t, Func: func(w W, v any) error {
		tv, ok := v.(T)
		if !ok {
			if v == nil && nillable {
				var zero T
				return fn(w, zero)
			}
			return typeMismatch(name, t, v)
		}
		return fn(w, tv)
	}}
}

// Reads compiles a typed read method expression into a table entry.
func Reads[R, T any](name string, fn func(R) (T, error)) ReadOp[R] {
	return ReadOp[R]{Name: name, Type: reflect.TypeFor[T](), Func: func(r R) (any, error) {
		v, err := fn(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	}}
}

// Entry summarises one supported type for listings.
type Entry struct {
	Type      reflect.Type
	Ref       bool
	WriteName string
	ReadName  string
}

// Inventory is the format-independent view of a Format.
type Inventory interface {
	Name() string
	Entries() []Entry
	IsTypeSupported(t reflect.Type) bool
	IsRefTypeSupported(t reflect.Type) bool
}

// Format inventories what a concrete reader/writer pair supports and dispatches by type.
// It is immutable once built and safe for concurrent use.
type Format[R Reader, W Writer] struct {
	name string

	writes    map[reflect.Type]Method
	writeRefs map[reflect.Type]Method
	reads     map[reflect.Type]Method
	readRefs  map[reflect.Type]Method

	writeFuncs    map[reflect.Type]WriteFunc[W]
	writeRefFuncs map[reflect.Type]WriteFunc[W]
	readFuncs     map[reflect.Type]ReadFunc[R]
	readRefFuncs  map[reflect.Type]ReadFunc[R]
}

var _ Inventory = (*Format[Reader, Writer])(nil)

// NewFormat builds a Format. It discovers every exported WriteXxx(T) error method of W
// and ReadXxx() (T, error) method of R, then binds the entries of the operation tables
// to them as compiled funcs. Discovered methods the tables do not cover, such as those
// added by a type that embeds a codec, are dispatched reflectively. Table entries that
// name a missing method or disagree on its type fail construction.
func NewFormat[R Reader, W Writer](name string, reads []ReadOp[R], writes []WriteOp[W]) (*Format[R, W], error) {
	rt, wt := reflect.TypeFor[R](), reflect.TypeFor[W]()
	var errs errsx.Map
	if rt.Kind() == reflect.Interface {
		errs.Set("reader", fmt.Errorf("%s is an interface, a concrete type is required", rt))
	}
	if wt.Kind() == reflect.Interface {
		errs.Set("writer", fmt.Errorf("%s is an interface, a concrete type is required", wt))
	}
	if !errs.IsEmpty() {
		return nil, fmt.Errorf("serial: format %q: %w", name, errs.AsError())
	}

	f := &Format[R, W]{
		name:          name,
		writes:        make(map[reflect.Type]Method),
		writeRefs:     make(map[reflect.Type]Method),
		reads:         make(map[reflect.Type]Method),
		readRefs:      make(map[reflect.Type]Method),
		writeFuncs:    make(map[reflect.Type]WriteFunc[W]),
		writeRefFuncs: make(map[reflect.Type]WriteFunc[W]),
		readFuncs:     make(map[reflect.Type]ReadFunc[R]),
		readRefFuncs:  make(map[reflect.Type]ReadFunc[R]),
	}
	log := Logger().With(zap.String("format", name))

	foundWrites := discover(wt, WritePrefix, isWriteMethod, func(ft reflect.Type) reflect.Type { return ft.In(1) })
	for _, op := range writes {
		m, ok := foundWrites[op.Name]
		switch {
		case !ok:
			errs.Set("write "+op.Name, fmt.Errorf("%s has no method %s(T) error", wt, op.Name))
		case m.Type != op.Type:
			errs.Set("write "+op.Name, fmt.Errorf("table says %s, method takes %s", op.Type, m.Type))
		case f.hasWrite(m.Type):
			errs.Set("write "+op.Name, fmt.Errorf("%s is already written by %s", m.Type, f.writeMethod(m.Type).Name))
		default:
			f.bindWrite(m, op.Func)
		}
		delete(foundWrites, op.Name)
	}
	for _, m := range sortedMethods(foundWrites) {
		if f.hasWrite(m.Type) {
			log.Warn("write method shadowed by table entry", zap.String("method", m.Name), zap.Stringer("type", m.Type))
			continue
		}
		log.Warn("write method dispatched reflectively", zap.String("method", m.Name), zap.Stringer("type", m.Type))
		f.bindWrite(m, func(w W, v any) error { return m.Write(w, v) })
	}

	foundReads := discover(rt, ReadPrefix, isReadMethod, func(ft reflect.Type) reflect.Type { return ft.Out(0) })
	for _, op := range reads {
		m, ok := foundReads[op.Name]
		switch {
		case !ok:
			errs.Set("read "+op.Name, fmt.Errorf("%s has no method %s() (T, error)", rt, op.Name))
		case m.Type != op.Type:
			errs.Set("read "+op.Name, fmt.Errorf("table says %s, method returns %s", op.Type, m.Type))
		case f.hasRead(m.Type):
			errs.Set("read "+op.Name, fmt.Errorf("%s is already read by %s", m.Type, f.readMethod(m.Type).Name))
		default:
			f.bindRead(m, op.Func)
		}
		delete(foundReads, op.Name)
	}
	for _, m := range sortedMethods(foundReads) {
		if f.hasRead(m.Type) {
			log.Warn("read method shadowed by table entry", zap.String("method", m.Name), zap.Stringer("type", m.Type))
			continue
		}
		log.Warn("read method dispatched reflectively", zap.String("method", m.Name), zap.Stringer("type", m.Type))
		f.bindRead(m, func(r R) (any, error) { return m.Read(r) })
	}

	if !errs.IsEmpty() {
		return nil, fmt.Errorf("serial: format %q: %w", name, errs.AsError())
	}

	for _, e := range f.Entries() {
		if e.WriteName == "" || e.ReadName == "" {
			log.Warn("type is only supported one way", zap.Stringer("type", e.Type),
				zap.String("write", e.WriteName), zap.String("read", e.ReadName))
		}
	}
	log.Debug("format built",
		zap.Int("value_writes", len(f.writes)), zap.Int("ref_writes", len(f.writeRefs)),
		zap.Int("value_reads", len(f.reads)), zap.Int("ref_reads", len(f.readRefs)))
	return f, nil
}

func isWriteMethod(ft reflect.Type) bool {
	return ft.NumIn() == 2 && ft.NumOut() == 1 && ft.Out(0) == errorType
}

func isReadMethod(ft reflect.Type) bool {
	return ft.NumIn() == 1 && ft.NumOut() == 2 && ft.Out(1) == errorType
}

// discover collects the methods of t named prefix+Something whose signature matches.
// ft of each method includes the receiver as its first input.
func discover(t reflect.Type, prefix string, match func(reflect.Type) bool, valueType func(reflect.Type) reflect.Type) map[string]Method {
	found := make(map[string]Method)
	for i := range t.NumMethod() {
		m := t.Method(i)
		if len(m.Name) <= len(prefix) || !strings.HasPrefix(m.Name, prefix) || !match(m.Type) {
			continue
		}
		vt := valueType(m.Type)
		found[m.Name] = Method{Name: m.Name, Type: vt, Ref: IsRefType(vt), fn: m.Func}
	}
	return found
}

func sortedMethods(ms map[string]Method) []Method {
	out := make([]Method, 0, len(ms))
	for _, m := range ms {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Method) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (f *Format[R, W]) hasWrite(t reflect.Type) bool {
	_, v := f.writes[t]
	_, r := f.writeRefs[t]
	return v || r
}

func (f *Format[R, W]) hasRead(t reflect.Type) bool {
	_, v := f.reads[t]
	_, r := f.readRefs[t]
	return v || r
}

func (f *Format[R, W]) writeMethod(t reflect.Type) Method {
	if m, ok := f.writes[t]; ok {
		return m
	}
	return f.writeRefs[t]
}

func (f *Format[R, W]) readMethod(t reflect.Type) Method {
	if m, ok := f.reads[t]; ok {
		return m
	}
	return f.readRefs[t]
}

func (f *Format[R, W]) bindWrite(m Method, fn WriteFunc[W]) {
	if m.Ref {
		f.writeRefs[m.Type], f.writeRefFuncs[m.Type] = m, fn
	} else {
		f.writes[m.Type], f.writeFuncs[m.Type] = m, fn
	}
}

func (f *Format[R, W]) bindRead(m Method, fn ReadFunc[R]) {
	if m.Ref {
		f.readRefs[m.Type], f.readRefFuncs[m.Type] = m, fn
	} else {
		f.reads[m.Type], f.readFuncs[m.Type] = m, fn
	}
}

// Name returns the format name.
func (f *Format[R, W]) Name() string { return f.name }

// IsTypeSupported reports whether the value type t can be both written and read.
func (f *Format[R, W]) IsTypeSupported(t reflect.Type) bool {
	_, w := f.writes[t]
	_, r := f.reads[t]
	return w && r
}

// IsRefTypeSupported reports whether the reference type t can be both written and read.
func (f *Format[R, W]) IsRefTypeSupported(t reflect.Type) bool {
	_, w := f.writeRefs[t]
	_, r := f.readRefs[t]
	return w && r
}

func (f *Format[R, W]) WriteMethodForType(t reflect.Type) (Method, bool) {
	m, ok := f.writes[t]
	return m, ok
}

func (f *Format[R, W]) WriteMethodForRefType(t reflect.Type) (Method, bool) {
	m, ok := f.writeRefs[t]
	return m, ok
}

func (f *Format[R, W]) ReadMethodForType(t reflect.Type) (Method, bool) {
	m, ok := f.reads[t]
	return m, ok
}

func (f *Format[R, W]) ReadMethodForRefType(t reflect.Type) (Method, bool) {
	m, ok := f.readRefs[t]
	return m, ok
}

func (f *Format[R, W]) WriteFuncForType(t reflect.Type) (WriteFunc[W], bool) {
	fn, ok := f.writeFuncs[t]
	return fn, ok
}

func (f *Format[R, W]) WriteFuncForRefType(t reflect.Type) (WriteFunc[W], bool) {
	fn, ok := f.writeRefFuncs[t]
	return fn, ok
}

func (f *Format[R, W]) ReadFuncForType(t reflect.Type) (ReadFunc[R], bool) {
	fn, ok := f.readFuncs[t]
	return fn, ok
}

func (f *Format[R, W]) ReadFuncForRefType(t reflect.Type) (ReadFunc[R], bool) {
	fn, ok := f.readRefFuncs[t]
	return fn, ok
}

// Types lists the supported value types ordered by name.
func (f *Format[R, W]) Types() []reflect.Type { return sortedTypes(f.writes) }

// RefTypes lists the supported reference types ordered by name.
func (f *Format[R, W]) RefTypes() []reflect.Type { return sortedTypes(f.writeRefs) }

func sortedTypes(ms map[reflect.Type]Method) []reflect.Type {
	out := make([]reflect.Type, 0, len(ms))
	for t := range ms {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b reflect.Type) int { return strings.Compare(a.String(), b.String()) })
	return out
}

// Entries lists every type with a write or read operation, value types first.
func (f *Format[R, W]) Entries() []Entry {
	var out []Entry
	for _, pair := range [2][2]map[reflect.Type]Method{{f.writes, f.reads}, {f.writeRefs, f.readRefs}} {
		seen := make(map[reflect.Type]*Entry)
		var part []*Entry
		for i, ms := range pair {
			for t, m := range ms {
				e, ok := seen[t]
				if !ok {
					e = &Entry{Type: t, Ref: m.Ref}
					seen[t] = e
					part = append(part, e)
				}
				if i == 0 {
					e.WriteName = m.Name
				} else {
					e.ReadName = m.Name
				}
			}
		}
		slices.SortFunc(part, func(a, b *Entry) int { return strings.Compare(a.Type.String(), b.Type.String()) })
		for _, e := range part {
			out = append(out, *e)
		}
	}
	return out
}

// WriteValue writes v with the operation bound to its dynamic type.
func (f *Format[R, W]) WriteValue(w W, v any) error {
	t := reflect.TypeOf(v)
	if t == nil {
		return fmt.Errorf("%w: untyped nil", ErrUnsupportedType)
	}
	if fn, ok := f.writeFuncs[t]; ok {
		return fn(w, v)
	}
	if fn, ok := f.writeRefFuncs[t]; ok {
		return fn(w, v)
	}
	return fmt.Errorf("%w: %s in format %q", ErrUnsupportedType, t, f.name)
}

// ReadValue reads a value of type t.
func (f *Format[R, W]) ReadValue(r R, t reflect.Type) (any, error) {
	if fn, ok := f.readFuncs[t]; ok {
		return fn(r)
	}
	if fn, ok := f.readRefFuncs[t]; ok {
		return fn(r)
	}
	return nil, fmt.Errorf("%w: %s in format %q", ErrUnsupportedType, t, f.name)
}
