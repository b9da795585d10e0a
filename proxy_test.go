//go:build !noaspect

package aspect_test

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/aspect"
	aspecttest "github.com/zoobzio/aspect/testing"
)

func reflectPtr[T any]() reflect.Type {
	return reflect.TypeFor[*T]()
}

func TestProxy_Strategies(t *testing.T) {
	ctx := context.Background()
	log := &aspecttest.Log{}
	rec := aspecttest.NewRecorder("r", log)

	counter := &aspecttest.Counter{}
	p := aspect.Wrap(counter, aspect.WithAspects(rec))
	free := func(a, b int) int { return a * b }
	var freeVoidRan int

	tests := []struct {
		name     string
		call     func() ([]any, error)
		want     []any
		strategy aspect.Strategy
		fn       any
	}{
		{
			name:     "member void",
			call:     func() ([]any, error) { return p.Invoke(ctx, (*aspecttest.Counter).Incr) },
			strategy: aspect.StrategyMemberVoid,
			fn:       (*aspecttest.Counter).Incr,
		},
		{
			name:     "member value",
			call:     func() ([]any, error) { return p.Invoke(ctx, (*aspecttest.Counter).Add, 4) },
			want:     []any{5},
			strategy: aspect.StrategyMemberValue,
			fn:       (*aspecttest.Counter).Add,
		},
		{
			name:     "member value receiver",
			call:     func() ([]any, error) { return p.Invoke(ctx, aspecttest.Counter.Get) },
			want:     []any{5},
			strategy: aspect.StrategyMemberValue,
			fn:       aspecttest.Counter.Get,
		},
		{
			name:     "free value",
			call:     func() ([]any, error) { return p.Invoke(ctx, free, 6, 7) },
			want:     []any{42},
			strategy: aspect.StrategyFreeValue,
			fn:       free,
		},
		{
			name:     "free void",
			call:     func() ([]any, error) { return p.Invoke(ctx, func() { freeVoidRan++ }) },
			strategy: aspect.StrategyFreeVoid,
			fn:       func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := aspect.Inspect(tt.fn, reflectPtr[aspecttest.Counter]())
			require.NoError(t, err)
			assert.Equal(t, tt.strategy, sig.Strategy)

			got, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, 5, counter.N)
	assert.Equal(t, 2, counter.Calls, "each member call runs exactly once")
	assert.Equal(t, 1, freeVoidRan)
	assert.Len(t, log.Entries(), 10)

	results := rec.Results()
	require.Len(t, results, 5)
	assert.Empty(t, results[0], "void calls pass no result to After")
	assert.Equal(t, []any{5}, results[1])
	assert.Empty(t, results[4])
}

func TestProxy_HookOrder(t *testing.T) {
	log := &aspecttest.Log{}
	p := aspect.Wrap(&aspecttest.Counter{}, aspect.WithAspects(
		aspecttest.NewRecorder("a", log),
		aspecttest.NewRecorder("b", log),
		aspecttest.NewRecorder("c", log),
	))

	_, err := p.Invoke(context.Background(), (*aspecttest.Counter).Incr)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a.before", "b.before", "c.before",
		"a.after", "b.after", "c.after",
	}, log.Entries(), "after-hooks run in chain order, not reversed")
}

func TestProxy_ArgsAndResultsThreaded(t *testing.T) {
	rec := aspecttest.NewRecorder("r", &aspecttest.Log{})
	p := aspect.Wrap(&aspecttest.Counter{}, aspect.WithAspects(rec))

	_, err := p.Invoke(context.Background(), (*aspecttest.Counter).Sum, 1, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, [][]any{{1, 2, 3}}, rec.Args())
	assert.Equal(t, [][]any{{6}}, rec.Results())
}

func TestProxy_BeforeFailureAbortsCall(t *testing.T) {
	denied := errors.New("denied")
	log := &aspecttest.Log{}
	a := aspecttest.NewRecorder("a", log)
	b := aspecttest.NewRecorder("b", log)
	b.FailBefore = denied
	c := aspecttest.NewRecorder("c", log)

	counter := &aspecttest.Counter{}
	p := aspect.Wrap(counter, aspect.WithAspects(a, b, c))

	out, err := p.Invoke(context.Background(), (*aspecttest.Counter).Incr)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, aspect.ErrHook)
	assert.ErrorIs(t, err, denied)

	var he *aspect.HookError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, aspect.PhaseBefore, he.Phase)
	assert.Equal(t, 1, he.Index)
	assert.Equal(t, "b", he.Aspect)

	assert.Zero(t, counter.Calls, "real call is skipped")
	assert.Equal(t, []string{"a.before", "b.before", "a.error"}, log.Entries())
}

func TestProxy_AfterFailureSkipsRemaining(t *testing.T) {
	boom := errors.New("boom")
	log := &aspecttest.Log{}
	a := aspecttest.NewRecorder("a", log)
	a.FailAfter = boom
	b := aspecttest.NewRecorder("b", log)

	counter := &aspecttest.Counter{}
	p := aspect.Wrap(counter, aspect.WithAspects(a, b))

	out, err := p.Invoke(context.Background(), (*aspecttest.Counter).Add, 2)
	assert.Equal(t, []any{2}, out)
	assert.ErrorIs(t, err, boom)

	var he *aspect.HookError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, aspect.PhaseAfter, he.Phase)

	assert.Equal(t, 1, counter.Calls)
	assert.Equal(t, []string{"a.before", "b.before", "a.after", "b.error"}, log.Entries())
}

func TestProxy_CallFailureSkipsAfter(t *testing.T) {
	log := &aspecttest.Log{}
	p := aspect.Wrap(&aspecttest.Counter{}, aspect.WithAspects(aspecttest.NewRecorder("a", log)))

	out, err := p.Invoke(context.Background(), (*aspecttest.Counter).Div, 1, 0)
	assert.ErrorIs(t, err, aspect.ErrCall)
	assert.ErrorIs(t, err, aspecttest.ErrDivideByZero)
	assert.Equal(t, []any{0, aspecttest.ErrDivideByZero}, out)
	assert.Equal(t, []string{"a.before", "a.error"}, log.Entries())

	out, err = p.Invoke(context.Background(), (*aspecttest.Counter).Div, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{2, nil}, out)
}

func TestProxy_BindErrors(t *testing.T) {
	rec := aspecttest.NewRecorder("a", &aspecttest.Log{})
	p := aspect.Wrap(&aspecttest.Counter{}, aspect.WithAspects(rec))
	ctx := context.Background()

	_, err := p.Invoke(ctx, 42)
	assert.ErrorIs(t, err, aspect.ErrSignature)

	_, err = p.Invoke(ctx, (*aspecttest.Counter).Add)
	assert.ErrorIs(t, err, aspect.ErrArity)

	_, err = p.Invoke(ctx, (*aspecttest.Counter).Add, "one")
	assert.ErrorIs(t, err, aspect.ErrArgType)

	var nilFn func()
	_, err = p.Invoke(ctx, nilFn)
	assert.ErrorIs(t, err, aspect.ErrSignature)

	var ce *aspect.ConfigError
	assert.ErrorAs(t, err, &ce)
	assert.Empty(t, rec.Args(), "no hook runs for a bind-time error")
}

func TestProxy_New_Owned(t *testing.T) {
	p, err := aspect.New(func() (*aspecttest.Resource, error) {
		return &aspecttest.Resource{}, nil
	})
	require.NoError(t, err)
	assert.True(t, p.Owned())

	res := p.Unwrap()
	require.NoError(t, p.Close())
	require.NoError(t, p.Close(), "Close is idempotent")

	assert.Equal(t, 1, res.Closed, "owned target is closed exactly once")
	assert.Nil(t, p.Unwrap())

	_, err = p.Invoke(context.Background(), func() {})
	assert.ErrorIs(t, err, aspect.ErrClosed)
	_, err = p.Deref()
	assert.ErrorIs(t, err, aspect.ErrClosed)
}

func TestProxy_New_CloseError(t *testing.T) {
	boom := errors.New("boom")
	p, err := aspect.New(func() (*aspecttest.Resource, error) {
		return &aspecttest.Resource{CloseErr: boom}, nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, p.Close(), boom)
}

func TestProxy_New_Errors(t *testing.T) {
	boom := errors.New("boom")
	_, err := aspect.New(func() (*aspecttest.Resource, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	_, err = aspect.New(func() (*aspecttest.Resource, error) { return nil, nil })
	assert.ErrorIs(t, err, aspect.ErrNoTarget)
}

func TestProxy_New_NilConstructor(t *testing.T) {
	p, err := aspect.New[aspecttest.Counter](nil)
	require.NoError(t, err)
	require.NotNil(t, p.Unwrap())
	assert.Zero(t, p.Unwrap().N)
}

func TestProxy_Wrap_Borrowed(t *testing.T) {
	res := &aspecttest.Resource{}
	p := aspect.Wrap(res)
	assert.False(t, p.Owned())

	require.NoError(t, p.Close())
	assert.Zero(t, res.Closed, "borrowed target is never closed")
}

func TestProxy_Wrap_NilTarget(t *testing.T) {
	p := aspect.Wrap[aspecttest.Counter](nil)

	_, err := p.Invoke(context.Background(), (*aspecttest.Counter).Incr)
	assert.ErrorIs(t, err, aspect.ErrNoTarget)

	out, err := p.Invoke(context.Background(), func() int { return 1 })
	require.NoError(t, err)
	assert.Equal(t, []any{1}, out, "free calls need no target")
}

func TestProxy_Deref_RunsBeforeOnly(t *testing.T) {
	log := &aspecttest.Log{}
	rec := aspecttest.NewRecorder("a", log)
	counter := &aspecttest.Counter{}
	p := aspect.Wrap(counter, aspect.WithAspects(rec))

	got, err := p.Deref()
	require.NoError(t, err)
	require.Same(t, counter, got)
	got.Incr()

	assert.Equal(t, []string{"a.before"}, log.Entries())
	assert.Equal(t, [][]any{nil}, rec.Args())
}

func TestProxy_Deref_BeforeFailure(t *testing.T) {
	rec := aspecttest.NewRecorder("a", &aspecttest.Log{})
	rec.FailBefore = errors.New("denied")
	p := aspect.Wrap(&aspecttest.Counter{}, aspect.WithAspects(rec))

	got, err := p.Deref()
	assert.Nil(t, got)
	assert.ErrorIs(t, err, aspect.ErrHook)
}

func TestProxy_ChainIsFixed(t *testing.T) {
	a := aspecttest.NewRecorder("a", &aspecttest.Log{})
	p := aspect.Wrap(&aspecttest.Counter{}, aspect.WithAspects(a, nil), aspect.WithAspects(aspect.NewTimer("t")))

	chain := p.Aspects()
	require.Len(t, chain, 2, "nil aspects are dropped and repeated options append")
	chain[0] = nil

	assert.Same(t, a, p.Aspects()[0], "Aspects returns a copy")
}

func TestProxy_Metadata(t *testing.T) {
	p := aspect.Wrap(&aspecttest.Account{})
	meta, ok := p.Metadata()
	require.True(t, ok)
	assert.Contains(t, meta.TypeName, "Account")

	_, ok = aspect.Wrap(new(int)).Metadata()
	assert.False(t, ok, "non-struct targets have no metadata")
}

func TestProxy_ConcurrentInvokeWithCallState(t *testing.T) {
	p := aspect.Wrap(&aspecttest.Counter{}, aspect.WithAspects(
		aspect.NewTimer("sum"),
	), aspect.WithReporter(aspect.NewReporter(io.Discard, "")))

	done := make(chan error)
	for i := 0; i < 8; i++ {
		go func() {
			var err error
			for j := 0; j < 50 && err == nil; j++ {
				_, err = aspect.Call1(context.Background(), p, func(_ *aspecttest.Counter, n int) int { return n }, j)
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
}

func TestProxy_FirstParameterBindsTarget(t *testing.T) {
	counter := &aspecttest.Counter{N: 1}
	p := aspect.Wrap(counter)
	ctx := context.Background()

	double := func(c *aspecttest.Counter, by int) int { return c.N * by }
	sig, err := aspect.Inspect(double, reflectPtr[aspecttest.Counter]())
	require.NoError(t, err)
	assert.Equal(t, aspect.ShapeMethod, sig.Shape)

	out, err := p.Invoke(ctx, double, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{3}, out, "a closure taking *T first is bound to the held target")

	_, err = p.Invoke(ctx, double, &aspecttest.Counter{N: 9}, 3)
	assert.ErrorIs(t, err, aspect.ErrArity, "the receiver cannot be passed explicitly")

	peek := func(c aspecttest.Counter) int { return c.N }
	out, err = p.Invoke(ctx, peek)
	require.NoError(t, err)
	assert.Equal(t, []any{1}, out)

	other := func(c *aspecttest.Resource) int { return c.Closed }
	out, err = p.Invoke(ctx, other, &aspecttest.Resource{Closed: 2})
	require.NoError(t, err)
	assert.Equal(t, []any{2}, out, "other first parameters are ordinary arguments")
}
