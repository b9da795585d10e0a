package aspect

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	User     string
	Password string            `aspect.redact:"***"`
	Token    []byte            `aspect.redact:"[REDACTED]"`
	Email    string            `aspect.mask:"email"`
	Aliases  []string          `aspect.mask:"name"`
	Labels   map[string]string `aspect.mask:"full"`
	PIN      int               `aspect.redact:"0"`
	note     string
}

type session struct {
	ID    string
	Owner credentials
	Prev  *credentials
	All   []credentials
	ByKey map[string]*credentials
}

func newSanitizer() *sanitizer {
	return &sanitizer{maskers: builtinMaskers()}
}

func TestSanitize_Struct(t *testing.T) {
	in := credentials{
		User:     "alice",
		Password: "hunter2",
		Token:    []byte("abc"),
		Email:    "alice@example.com",
		Aliases:  []string{"Alice Liddell"},
		Labels:   map[string]string{"k": "secret"},
		PIN:      1234,
		note:     "kept",
	}

	out := newSanitizer().value(reflect.ValueOf(in), 0).Interface().(credentials)

	assert.Equal(t, "alice", out.User)
	assert.Equal(t, "***", out.Password)
	assert.Equal(t, []byte("[REDACTED]"), out.Token)
	assert.Equal(t, "a***@example.com", out.Email)
	assert.Equal(t, []string{"A**** L******"}, out.Aliases)
	assert.Equal(t, map[string]string{"k": "******"}, out.Labels)
	assert.Zero(t, out.PIN, "non-string fields are zeroed")
	assert.Equal(t, "kept", out.note)
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	in := &session{
		Owner: credentials{Password: "p1"},
		Prev:  &credentials{Password: "p2", Aliases: []string{"Bob"}},
		All:   []credentials{{Password: "p3"}},
		ByKey: map[string]*credentials{"a": {Password: "p4"}},
	}

	out := newSanitizer().value(reflect.ValueOf(in), 0).Interface().(*session)

	assert.Equal(t, "***", out.Owner.Password)
	assert.Equal(t, "***", out.Prev.Password)
	assert.Equal(t, []string{"B**"}, out.Prev.Aliases)
	assert.Equal(t, "***", out.All[0].Password)
	assert.Equal(t, "***", out.ByKey["a"].Password)

	assert.Equal(t, "p1", in.Owner.Password)
	assert.Equal(t, "p2", in.Prev.Password)
	assert.Equal(t, []string{"Bob"}, in.Prev.Aliases)
	assert.Equal(t, "p3", in.All[0].Password)
	assert.Equal(t, "p4", in.ByKey["a"].Password)
}

func TestSanitize_UnknownMaskTypeMasksFully(t *testing.T) {
	type v struct {
		S string `aspect.mask:"nope"`
	}
	out := newSanitizer().value(reflect.ValueOf(v{S: "abc"}), 0).Interface().(v)
	assert.Equal(t, "***", out.S)
}

func TestSanitize_UntaggedPassThrough(t *testing.T) {
	type plain struct{ A, B int }
	in := reflect.ValueOf(plain{1, 2})

	out := newSanitizer().value(in, 0)
	assert.Equal(t, plain{1, 2}, out.Interface())
}

type node struct {
	Secret string `aspect.redact:"x"`
	Next   *node
}

func TestSanitize_CyclicTypeAndValue(t *testing.T) {
	n := &node{Secret: "s"}
	n.Next = n

	out := newSanitizer().value(reflect.ValueOf(n), 0).Interface().(*node)
	require.NotNil(t, out)
	assert.Equal(t, "x", out.Secret)
	assert.Equal(t, "x", out.Next.Secret)
	assert.Equal(t, "s", n.Secret)
}

func TestPlanFor_Cached(t *testing.T) {
	rt := reflect.TypeFor[credentials]()
	first := planFor(rt)
	second := planFor(rt)

	assert.Same(t, first, second)
	assert.Len(t, first.fields, 6)
}

func TestScanType_UnexportedSkipped(t *testing.T) {
	meta := scanType(reflect.TypeFor[credentials]())
	for _, f := range meta.Fields {
		assert.NotEqual(t, "note", f.Name)
	}
}
