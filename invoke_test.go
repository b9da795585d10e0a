//go:build !noaspect

package aspect_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/aspect"
	aspecttest "github.com/zoobzio/aspect/testing"
)

func TestCallHelpers(t *testing.T) {
	ctx := context.Background()
	log := &aspecttest.Log{}
	counter := &aspecttest.Counter{N: 10}
	p := aspect.Wrap(counter, aspect.WithAspects(aspecttest.NewRecorder("r", log)))

	got, err := aspect.Call0(ctx, p, func(c *aspecttest.Counter) int { return c.N })
	require.NoError(t, err)
	assert.Equal(t, 10, got)

	got, err = aspect.Call1(ctx, p, (*aspecttest.Counter).Add, 5)
	require.NoError(t, err)
	assert.Equal(t, 15, got)

	got, err = aspect.Call2(ctx, p, func(c *aspecttest.Counter, a, b int) int {
		c.N *= a * b
		return c.N
	}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 90, got)

	got, err = aspect.Call3(ctx, p, func(c *aspecttest.Counter, lo, hi, step int) int {
		return min(max(c.N*step, lo), hi)
	}, 0, 50, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, got)

	assert.Len(t, log.Entries(), 8)
}

func TestCallHelpers_CallError(t *testing.T) {
	ctx := context.Background()
	p := aspect.Wrap(&aspecttest.Counter{})

	got, err := aspect.Call2(ctx, p, func(c *aspecttest.Counter, a, b int) int {
		n, _ := c.Div(a, b)
		return n
	}, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, got, "a func literal taking *T is a member call")

	out, err := p.Invoke(ctx, (*aspecttest.Counter).Div, 1, 0)
	assert.ErrorIs(t, err, aspecttest.ErrDivideByZero)
	assert.ErrorIs(t, err, aspect.ErrCall)
	assert.Equal(t, []any{0, aspecttest.ErrDivideByZero}, out)
}

func TestDoHelpers(t *testing.T) {
	ctx := context.Background()
	counter := &aspecttest.Counter{}
	rec := aspecttest.NewRecorder("r", &aspecttest.Log{})
	p := aspect.Wrap(counter, aspect.WithAspects(rec))

	require.NoError(t, aspect.Do0(ctx, p, (*aspecttest.Counter).Incr))
	require.NoError(t, aspect.Do1(ctx, p, func(c *aspecttest.Counter, n int) { c.N += n }, 7))
	require.NoError(t, aspect.Do2(ctx, p, func(c *aspecttest.Counter, a, b int) { c.N += a + b }, 1, 2))
	require.NoError(t, aspect.Do3(ctx, p, func(c *aspecttest.Counter, a, b, d int) { c.N -= a + b + d }, 1, 1, 1))

	assert.Equal(t, 8, counter.N)
	assert.Equal(t, 1, counter.Calls)
	assert.Equal(t, [][]any{nil, nil, nil, nil}, rec.Results(), "void calls expose no results")
}

func TestDoHelpers_HookError(t *testing.T) {
	denied := errors.New("denied")
	rec := aspecttest.NewRecorder("r", &aspecttest.Log{})
	rec.FailBefore = denied
	counter := &aspecttest.Counter{}
	p := aspect.Wrap(counter, aspect.WithAspects(rec))

	err := aspect.Do0(context.Background(), p, (*aspecttest.Counter).Incr)
	assert.ErrorIs(t, err, denied)
	assert.Zero(t, counter.Calls, "the real call is skipped")
}

func TestRunHelpers(t *testing.T) {
	ctx := context.Background()
	log := &aspecttest.Log{}
	opt := aspect.WithAspects(aspecttest.NewRecorder("r", log))

	n, err := aspect.Run0(ctx, func() int { return 1 }, opt)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s, err := aspect.Run1(ctx, strings.ToUpper, "go", opt)
	require.NoError(t, err)
	assert.Equal(t, "GO", s)

	s, err = aspect.Run2(ctx, strings.Repeat, "ab", 2, opt)
	require.NoError(t, err)
	assert.Equal(t, "abab", s)

	s, err = aspect.Run3(ctx, strings.ReplaceAll, "aaa", "a", "b", opt)
	require.NoError(t, err)
	assert.Equal(t, "bbb", s)

	assert.Len(t, log.Entries(), 8)
}

func TestRunHelpers_NoAspects(t *testing.T) {
	n, err := aspect.Run2(context.Background(), func(a, b int) int { return a - b }, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
