package aspect

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Chain is implemented by Proxy and FuncProxy.
type Chain interface {
	Aspects() []Aspect
}

// SetParam passes args to the SetParams hook of every aspect in the chain
// whose dynamic type is exactly A. Other aspects are untouched, and a chain
// without an A is a silent no-op. The first SetParams error is returned
// wrapped with ErrParams.
//
//	aspect.SetParam[*aspect.Timer](p, "checkout")
func SetParam[A interface {
	Aspect
	ParamSetter
}](p Chain, args ...any) error {
	name := reflect.TypeFor[A]().String()
	matched := 0
	var err error
	for _, a := range match[A](p) {
		matched++
		if serr := a.SetParams(args...); serr != nil {
			err = wrapParams(name, serr)
			break
		}
	}
	emitParamsSet(context.Background(), name, matched, err)
	return err
}

// Configure calls fn with every aspect in the chain whose dynamic type is
// exactly A and returns how many matched.
func Configure[A Aspect](p Chain, fn func(A)) int {
	matches := match[A](p)
	for _, a := range matches {
		fn(a)
	}
	emitParamsSet(context.Background(), reflect.TypeFor[A]().String(), len(matches), nil)
	return len(matches)
}

// ConfigureMap decodes m into every aspect in the chain whose dynamic type
// is exactly A, using the aspects' mapstructure tags. A must be a pointer
// type. Unknown keys are an error.
//
//	aspect.ConfigureMap[*aspect.StackTrace](p, map[string]any{"max_depth": 10})
func ConfigureMap[A Aspect](p Chain, m map[string]any) error {
	name := reflect.TypeFor[A]().String()
	matches := match[A](p)
	var err error
	for _, a := range matches {
		if derr := decodeParams(m, a); derr != nil {
			err = wrapParams(name, derr)
			break
		}
	}
	emitParamsSet(context.Background(), name, len(matches), err)
	return err
}

// AspectOf returns the first aspect in the chain whose dynamic type is
// exactly A.
func AspectOf[A Aspect](p Chain) (A, bool) {
	if matches := match[A](p); len(matches) > 0 {
		return matches[0], true
	}
	var zero A
	return zero, false
}

func match[A Aspect](p Chain) []A {
	want := reflect.TypeFor[A]()
	var out []A
	for _, a := range p.Aspects() {
		if reflect.TypeOf(a) == want {
			out = append(out, a.(A))
		}
	}
	return out
}

func decodeParams(m map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

func wrapParams(aspect string, err error) error {
	if errors.Is(err, ErrParams) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrParams, aspect, err)
}
