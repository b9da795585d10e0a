package aspect

import (
	"fmt"
	"math"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

var errorType = reflect.TypeFor[error]()

// Signature describes a callable: its argument types, result types, and,
// for methods, the owning type. Signatures are derived from types alone
// and are immutable once built.
type Signature struct {
	// Shape is the form the callable was supplied in.
	Shape Shape

	// Owner is the receiver type for ShapeMethod, nil otherwise.
	Owner reflect.Type

	// In holds the argument types callers supply, excluding any receiver.
	In []reflect.Type

	// Out holds the result types.
	Out []reflect.Type

	// Variadic is true if the final argument is a ...T parameter.
	Variadic bool

	// Fallible is true if the last result is an error.
	Fallible bool

	// Strategy is the invocation path selected for this callable.
	Strategy Strategy

	fnType     reflect.Type
	valueRecv  bool // receiver is T rather than *T
	paramCount int  // parameters including any receiver
}

// Type returns the underlying function type.
func (s *Signature) Type() reflect.Type {
	return s.fnType
}

// Member reports whether the callable is bound to a target instance.
func (s *Signature) Member() bool {
	return s.Strategy.Member()
}

// Void reports whether the callable returns nothing.
func (s *Signature) Void() bool {
	return s.Strategy.Void()
}

// String renders the signature in Go syntax, e.g. "(*pkg.T) func(int) string".
func (s *Signature) String() string {
	var b strings.Builder
	if s.Owner != nil {
		fmt.Fprintf(&b, "(%s) ", s.Owner)
	}
	b.WriteString("func(")
	for i, in := range s.In {
		if i > 0 {
			b.WriteString(", ")
		}
		if s.Variadic && i == len(s.In)-1 {
			b.WriteString("..." + in.Elem().String())
			continue
		}
		b.WriteString(in.String())
	}
	b.WriteString(")")
	switch len(s.Out) {
	case 0:
	case 1:
		b.WriteString(" " + s.Out[0].String())
	default:
		b.WriteString(" (")
		for i, out := range s.Out {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(out.String())
		}
		b.WriteString(")")
	}
	return b.String()
}

// buildSignature classifies fnType. owner is the proxy target pointer type
// (*T) or nil for function proxies; raw marks an InspectType request.
func buildSignature(fnType, owner reflect.Type, raw bool) (*Signature, error) {
	if fnType == nil || fnType.Kind() != reflect.Func {
		callable := "<nil>"
		if fnType != nil {
			callable = fnType.String()
		}
		return nil, newConfigError(ErrSignature, callable, typeString(owner), "not a function")
	}

	sig := &Signature{
		fnType:     fnType,
		Variadic:   fnType.IsVariadic(),
		paramCount: fnType.NumIn(),
	}

	switch {
	case raw:
		sig.Shape = ShapeFuncType
	case fnType.Name() != "":
		sig.Shape = ShapeNamedFunc
	default:
		sig.Shape = ShapeFunc
	}

	first := 0
	if owner != nil && fnType.NumIn() > 0 {
		recv := fnType.In(0)
		switch {
		case recv == owner:
			sig.Shape = ShapeMethod
			sig.Owner = owner
			first = 1
		case owner.Kind() == reflect.Pointer && recv == owner.Elem():
			sig.Shape = ShapeMethod
			sig.Owner = recv
			sig.valueRecv = true
			first = 1
		}
	}

	for i := first; i < fnType.NumIn(); i++ {
		sig.In = append(sig.In, fnType.In(i))
	}
	for i := 0; i < fnType.NumOut(); i++ {
		sig.Out = append(sig.Out, fnType.Out(i))
	}
	if n := len(sig.Out); n > 0 && sig.Out[n-1] == errorType {
		sig.Fallible = true
	}

	sig.Strategy = selectStrategy(sig.Shape == ShapeMethod, len(sig.Out) == 0)
	return sig, nil
}

// bindArgs converts caller arguments into reflect values, checking arity and
// assignability. Untyped nil becomes the zero value of its parameter.
func (s *Signature) bindArgs(args []any) ([]reflect.Value, error) {
	fixed := len(s.In)
	if s.Variadic {
		fixed--
		if len(args) < fixed {
			return nil, s.arityError(len(args))
		}
	} else if len(args) != fixed {
		return nil, s.arityError(len(args))
	}

	values := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := s.paramType(i)
		if arg == nil {
			if !nillable(want) {
				return nil, newConfigError(ErrArgType, s.String(), typeString(s.Owner),
					fmt.Sprintf("argument #%d: nil is not a valid %s", i, want))
			}
			values[i] = reflect.Zero(want)
			continue
		}
		v := reflect.ValueOf(arg)
		switch {
		case v.Type().AssignableTo(want):
		case v.Type().ConvertibleTo(want) && v.Kind() == want.Kind():
			v = v.Convert(want)
		default:
			if n, ok := convertNumeric(v, want); ok {
				v = n
				break
			}
			return nil, newConfigError(ErrArgType, s.String(), typeString(s.Owner),
				fmt.Sprintf("argument #%d: %s is not assignable to %s", i, v.Type(), want))
		}
		values[i] = v
	}
	return values, nil
}

// paramType returns the expected type of caller argument i.
func (s *Signature) paramType(i int) reflect.Type {
	last := len(s.In) - 1
	if s.Variadic && i >= last {
		return s.In[last].Elem()
	}
	return s.In[i]
}

func (s *Signature) arityError(got int) error {
	want := fmt.Sprintf("%d", len(s.In))
	if s.Variadic {
		want = fmt.Sprintf("at least %d", len(s.In)-1)
	}
	return newConfigError(ErrArity, s.String(), typeString(s.Owner),
		fmt.Sprintf("want %s arguments, got %d", want, got))
}

// convertNumeric converts between numeric kinds when v's value is
// representable in want. Floats never convert to integers.
func convertNumeric(v reflect.Value, want reflect.Type) (reflect.Value, bool) {
	out := reflect.New(want).Elem()
	switch {
	case isInt(v.Kind()):
		i := v.Int()
		switch {
		case isInt(want.Kind()):
			if out.OverflowInt(i) {
				return reflect.Value{}, false
			}
			out.SetInt(i)
		case isUint(want.Kind()):
			if i < 0 || out.OverflowUint(uint64(i)) {
				return reflect.Value{}, false
			}
			out.SetUint(uint64(i))
		case isFloat(want.Kind()):
			out.SetFloat(float64(i))
		default:
			return reflect.Value{}, false
		}
	case isUint(v.Kind()):
		u := v.Uint()
		switch {
		case isInt(want.Kind()):
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return reflect.Value{}, false
			}
			out.SetInt(int64(u))
		case isUint(want.Kind()):
			if out.OverflowUint(u) {
				return reflect.Value{}, false
			}
			out.SetUint(u)
		case isFloat(want.Kind()):
			out.SetFloat(float64(u))
		default:
			return reflect.Value{}, false
		}
	case isFloat(v.Kind()) && isFloat(want.Kind()):
		f := v.Float()
		if out.OverflowFloat(f) {
			return reflect.Value{}, false
		}
		out.SetFloat(f)
	default:
		return reflect.Value{}, false
	}
	return out, true
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

func typeString(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// funcNames caches runtime names of function values by entry PC.
var funcNames sync.Map // uintptr -> string

// funcName returns the qualified runtime name of a function value.
func funcName(fn reflect.Value) string {
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return ""
	}
	pc := fn.Pointer()
	if name, ok := funcNames.Load(pc); ok {
		return name.(string)
	}
	name := fn.Type().String()
	if f := runtime.FuncForPC(pc); f != nil {
		name = f.Name()
	}
	funcNames.Store(pc, name)
	return name
}
