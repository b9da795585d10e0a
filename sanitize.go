package aspect

import (
	"reflect"
	"sync"

	"github.com/zoobzio/sentinel"
)

// Struct tags honored by the Printer when it encodes composite values.
//
//	Password string `aspect.redact:"***"`
//	Email    string `aspect.mask:"email"`
const (
	tagRedact = "aspect.redact"
	tagMask   = "aspect.mask"
)

func init() {
	sentinel.Tag(tagRedact)
	sentinel.Tag(tagMask)
}

// maxSanitizeDepth bounds the walk through nested pointers.
const maxSanitizeDepth = 32

type fieldAction uint8

const (
	actionRedact fieldAction = iota + 1
	actionMask
)

// fieldPlan describes how to transform a single tagged field.
type fieldPlan struct {
	index  []int
	name   string
	action fieldAction
	value  string // replacement text or mask type
}

// typePlan lists the tagged fields of a struct type, plus the fields that
// may hold tagged values further down.
type typePlan struct {
	fields []fieldPlan
	walk   [][]int
}

var typePlans sync.Map // reflect.Type -> *typePlan

// planFor returns the cached plan for struct type rt.
func planFor(rt reflect.Type) *typePlan {
	if cached, ok := typePlans.Load(rt); ok {
		return cached.(*typePlan)
	}
	plan := buildTypePlan(rt)
	actual, _ := typePlans.LoadOrStore(rt, plan)
	return actual.(*typePlan)
}

func buildTypePlan(rt reflect.Type) *typePlan {
	meta := scanType(rt)
	plan := &typePlan{}
	for _, field := range meta.Fields {
		if val, ok := field.Tags[tagRedact]; ok {
			plan.fields = append(plan.fields, fieldPlan{index: field.Index, name: field.Name, action: actionRedact, value: val})
			continue
		}
		if val, ok := field.Tags[tagMask]; ok {
			plan.fields = append(plan.fields, fieldPlan{index: field.Index, name: field.Name, action: actionMask, value: val})
			continue
		}
		switch field.Kind {
		case sentinel.KindStruct, sentinel.KindPointer, sentinel.KindSlice, sentinel.KindMap, sentinel.KindInterface:
			plan.walk = append(plan.walk, field.Index)
		}
	}
	return plan
}

// scanType returns sentinel metadata for rt, scanning it by reflection when
// sentinel has not seen the type.
func scanType(rt reflect.Type) sentinel.Metadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        make(map[string]string),
		}
		for _, tag := range []string{tagRedact, tagMask} {
			if v, ok := sf.Tag.Lookup(tag); ok {
				fm.Tags[tag] = v
			}
		}
		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Pointer:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}
		meta.Fields = append(meta.Fields, fm)
	}
	return meta
}

// sanitizer returns copies of values with tagged fields redacted or
// masked. The caller's values are never modified.
type sanitizer struct {
	maskers map[MaskType]Masker
}

func (s *sanitizer) value(v reflect.Value, depth int) reflect.Value {
	if depth > maxSanitizeDepth || !v.IsValid() {
		return v
	}
	switch v.Kind() {
	case reflect.Struct:
		return s.structValue(v, depth)
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		cp := reflect.New(v.Type().Elem())
		cp.Elem().Set(s.value(v.Elem(), depth+1))
		return cp
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		inner := s.value(v.Elem(), depth+1)
		cp := reflect.New(v.Type()).Elem()
		cp.Set(inner)
		return cp
	case reflect.Slice:
		if v.IsNil() || !containsStruct(v.Type().Elem()) {
			return v
		}
		cp := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			cp.Index(i).Set(s.value(v.Index(i), depth+1))
		}
		return cp
	case reflect.Array:
		if !containsStruct(v.Type().Elem()) {
			return v
		}
		cp := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			cp.Index(i).Set(s.value(v.Index(i), depth+1))
		}
		return cp
	case reflect.Map:
		if v.IsNil() || !containsStruct(v.Type().Elem()) {
			return v
		}
		cp := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), s.value(iter.Value(), depth+1))
		}
		return cp
	}
	return v
}

func (s *sanitizer) structValue(v reflect.Value, depth int) reflect.Value {
	plan := planFor(v.Type())
	if len(plan.fields) == 0 && len(plan.walk) == 0 {
		return v
	}

	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)

	for _, fp := range plan.fields {
		field, ok := fieldByIndex(cp, fp.index)
		if !ok || !field.CanSet() {
			continue
		}
		switch fp.action {
		case actionRedact:
			s.apply(field, func(string) string { return fp.value })
		case actionMask:
			m, ok := s.maskers[MaskType(fp.value)]
			if !ok {
				m = MaskerFunc(maskFull)
			}
			s.apply(field, m.Mask)
		}
	}

	for _, index := range plan.walk {
		field, ok := fieldByIndex(cp, index)
		if !ok || !field.CanSet() {
			continue
		}
		field.Set(s.value(field, depth+1))
	}
	return cp
}

// apply rewrites a string-like field with fn. Fields of other kinds are
// zeroed.
func (s *sanitizer) apply(field reflect.Value, fn func(string) string) {
	t := field.Type()
	switch {
	case t.Kind() == reflect.String:
		field.SetString(fn(field.String()))
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		if !field.IsNil() {
			field.SetBytes([]byte(fn(string(field.Bytes()))))
		}
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String:
		if field.IsNil() {
			return
		}
		cp := reflect.MakeSlice(t, field.Len(), field.Len())
		for i := 0; i < field.Len(); i++ {
			cp.Index(i).SetString(fn(field.Index(i).String()))
		}
		field.Set(cp)
	case t.Kind() == reflect.Map && t.Elem().Kind() == reflect.String:
		if field.IsNil() {
			return
		}
		cp := reflect.MakeMapWithSize(t, field.Len())
		iter := field.MapRange()
		for iter.Next() {
			cp.SetMapIndex(iter.Key(), reflect.ValueOf(fn(iter.Value().String())).Convert(t.Elem()))
		}
		field.Set(cp)
	default:
		field.SetZero()
	}
}

// fieldByIndex walks index without panicking on nil embedded pointers.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, idx := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(idx)
	}
	return v, true
}

// containsStruct reports whether values of t may hold struct fields worth
// sanitizing.
func containsStruct(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Interface
}
