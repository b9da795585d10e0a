package aspect

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"
)

// Unprintable replaces values the Printer cannot render.
const Unprintable = "*** value is not printable ***"

// DefaultMaxBytes is the longest byte slice the Printer shows verbatim.
const DefaultMaxBytes = 64

// Dumper lets a type render itself for the Printer, bypassing reflection,
// struct tags and the codec.
type Dumper interface {
	Dump() string
}

// Printer reports every argument before the call and every result after
// it:
//
//	[aspect] 3 parameters
//	[aspect] parameter #0: (int) 1
//	[aspect] parameter #1: (string) two
//	[aspect] parameter #2: (main.Point) {"X":3,"Y":4}
//	[aspect] return value: (bool) true
//
// Scalars render with fmt. Structs, maps and slices go through Codec after
// fields tagged aspect.redact or aspect.mask are replaced. Byte slices
// longer than MaxBytes are shown as a digest. Channels, functions and
// values the codec rejects render as Unprintable.
type Printer struct {
	// Codec encodes composite values. Defaults to JSON.
	Codec Codec `mapstructure:"-"`

	// MaxBytes is the longest byte slice shown verbatim.
	MaxBytes int `mapstructure:"max_bytes"`

	// Digest selects the digest algorithm for oversize byte slices.
	Digest DigestAlgo `mapstructure:"digest"`

	maskers  map[MaskType]Masker
	reporter *Reporter
}

// NewPrinter returns a Printer with default settings.
func NewPrinter() *Printer {
	return &Printer{}
}

// Name implements Named.
func (p *Printer) Name() string { return "printer" }

// SetReporter implements Reporting.
func (p *Printer) SetReporter(r *Reporter) { p.reporter = r }

// SetParams accepts, in any order, a Codec, a byte limit (int), a
// DigestAlgo, or a MaskType/Masker pair registering a custom masker.
func (p *Printer) SetParams(args ...any) error {
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case Codec:
			p.Codec = v
		case int:
			p.MaxBytes = v
		case DigestAlgo:
			if _, ok := builtinDigesters()[v]; !ok {
				return fmt.Errorf("%w: printer: unknown digest %q", ErrParams, v)
			}
			p.Digest = v
		case MaskType:
			if i+1 >= len(args) {
				return fmt.Errorf("%w: printer: mask type %q without masker", ErrParams, v)
			}
			m, ok := args[i+1].(Masker)
			if !ok {
				return fmt.Errorf("%w: printer: mask type %q wants a Masker, got %T", ErrParams, v, args[i+1])
			}
			p.RegisterMasker(v, m)
			i++
		default:
			return fmt.Errorf("%w: printer: unexpected %T", ErrParams, args[i])
		}
	}
	return nil
}

// RegisterMasker adds or replaces the masker used for aspect.mask:"<t>".
func (p *Printer) RegisterMasker(t MaskType, m Masker) {
	if p.maskers == nil {
		p.maskers = builtinMaskers()
	}
	p.maskers[t] = m
}

// Before reports the argument count and each argument.
func (p *Printer) Before(c *Call) error {
	p.reporter.Line(fmt.Sprintf("%d parameters", len(c.Args)))
	for i, arg := range c.Args {
		var declared reflect.Type
		if c.Signature != nil {
			declared = c.Signature.paramType(i)
		}
		p.reporter.Report(fmt.Sprintf("parameter #%d", i), p.describe(declared, arg))
	}
	return nil
}

// After reports each result. Void calls report nothing.
func (p *Printer) After(c *Call) error {
	if c.Void() {
		return nil
	}
	for i, res := range c.Results {
		field := "return value"
		if len(c.Results) > 1 {
			field = fmt.Sprintf("return value #%d", i)
		}
		p.reporter.Report(field, p.describe(c.Signature.Out[i], res))
	}
	return nil
}

// describe renders "(<type>) <value>". The declared type wins over the
// dynamic one so interface parameters show as declared.
func (p *Printer) describe(declared reflect.Type, v any) string {
	t := declared
	if t == nil {
		t = reflect.TypeOf(v)
	}
	name := "nil"
	if t != nil {
		name = t.String()
	}
	return "(" + name + ") " + p.Render(v)
}

// Render returns the printable form of v.
func (p *Printer) Render(v any) string {
	if v == nil {
		return "<nil>"
	}
	return p.render(reflect.ValueOf(v), 0)
}

func (p *Printer) render(rv reflect.Value, depth int) string {
	if (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return "<nil>"
	}
	if rv.CanInterface() {
		if s, ok := selfRender(rv.Interface()); ok {
			return s
		}
	}

	switch rv.Kind() {
	case reflect.Invalid:
		return "<nil>"
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return Unprintable
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "<nil>"
		}
		if depth > maxSanitizeDepth {
			return Unprintable
		}
		return p.render(rv.Elem(), depth+1)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return p.renderBytes(rv.Bytes())
		}
		return p.encode(rv)
	case reflect.Struct, reflect.Map, reflect.Array:
		return p.encode(rv)
	}
	if !rv.CanInterface() {
		return Unprintable
	}
	return fmt.Sprint(rv.Interface())
}

// selfRender uses a value's own Dump, Error or String method. A method that
// panics yields Unprintable.
func selfRender(v any) (s string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s, ok = Unprintable, true
		}
	}()
	switch v := v.(type) {
	case Dumper:
		return v.Dump(), true
	case error:
		return v.Error(), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

func (p *Printer) renderBytes(b []byte) string {
	limit := p.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	if len(b) <= limit {
		return fmt.Sprintf("%q", b)
	}
	return digestLabel(p.digester(), b)
}

// encode runs rv through the sanitizer and the codec.
func (p *Printer) encode(rv reflect.Value) string {
	if !rv.CanInterface() {
		return Unprintable
	}
	s := &sanitizer{maskers: p.maskers}
	if s.maskers == nil {
		s.maskers = builtinMaskers()
	}
	clean := s.value(rv, 0)

	codec := p.Codec
	if codec == nil {
		codec = JSON()
	}
	data, err := codec.Marshal(clean.Interface())
	if err != nil {
		return Unprintable
	}
	if !textual(codec.ContentType()) {
		return codec.ContentType() + " " + hex.EncodeToString(data)
	}
	return compact(string(data))
}

func (p *Printer) digester() Digester {
	if d, ok := builtinDigesters()[p.Digest]; ok {
		return d
	}
	return Blake2b256()
}

// compact folds multi-line encodings onto one line.
func compact(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "; ")
}
