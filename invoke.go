package aspect

import "context"

// Typed helpers for the common arities. They compile-check the callable
// against the proxy's target type and return typed results; the dispatch is
// the same as Invoke.

// Call0 invokes a method returning a value.
func Call0[T, R any](ctx context.Context, p *Proxy[T], m func(*T) R) (R, error) {
	out, err := p.Invoke(ctx, m)
	return result[R](out), err
}

// Call1 invokes a one-argument method returning a value.
func Call1[T, A, R any](ctx context.Context, p *Proxy[T], m func(*T, A) R, a A) (R, error) {
	out, err := p.Invoke(ctx, m, a)
	return result[R](out), err
}

// Call2 invokes a two-argument method returning a value.
func Call2[T, A, B, R any](ctx context.Context, p *Proxy[T], m func(*T, A, B) R, a A, b B) (R, error) {
	out, err := p.Invoke(ctx, m, a, b)
	return result[R](out), err
}

// Call3 invokes a three-argument method returning a value.
func Call3[T, A, B, C, R any](ctx context.Context, p *Proxy[T], m func(*T, A, B, C) R, a A, b B, c C) (R, error) {
	out, err := p.Invoke(ctx, m, a, b, c)
	return result[R](out), err
}

// Do0 invokes a void method.
func Do0[T any](ctx context.Context, p *Proxy[T], m func(*T)) error {
	_, err := p.Invoke(ctx, m)
	return err
}

// Do1 invokes a one-argument void method.
func Do1[T, A any](ctx context.Context, p *Proxy[T], m func(*T, A), a A) error {
	_, err := p.Invoke(ctx, m, a)
	return err
}

// Do2 invokes a two-argument void method.
func Do2[T, A, B any](ctx context.Context, p *Proxy[T], m func(*T, A, B), a A, b B) error {
	_, err := p.Invoke(ctx, m, a, b)
	return err
}

// Do3 invokes a three-argument void method.
func Do3[T, A, B, C any](ctx context.Context, p *Proxy[T], m func(*T, A, B, C), a A, b B, c C) error {
	_, err := p.Invoke(ctx, m, a, b, c)
	return err
}

// Run0 wraps fn in a one-shot function proxy and calls it.
func Run0[R any](ctx context.Context, fn func() R, opts ...Option) (R, error) {
	return run[R](ctx, fn, opts)
}

// Run1 wraps fn in a one-shot function proxy and calls it with a.
func Run1[A, R any](ctx context.Context, fn func(A) R, a A, opts ...Option) (R, error) {
	return run[R](ctx, fn, opts, a)
}

// Run2 wraps fn in a one-shot function proxy and calls it with a and b.
func Run2[A, B, R any](ctx context.Context, fn func(A, B) R, a A, b B, opts ...Option) (R, error) {
	return run[R](ctx, fn, opts, a, b)
}

// Run3 wraps fn in a one-shot function proxy and calls it with a, b and c.
func Run3[A, B, C, R any](ctx context.Context, fn func(A, B, C) R, a A, b B, c C, opts ...Option) (R, error) {
	return run[R](ctx, fn, opts, a, b, c)
}

func run[R, F any](ctx context.Context, fn F, opts []Option, args ...any) (R, error) {
	p, err := NewFunc(fn, opts...)
	if err != nil {
		var zero R
		return zero, err
	}
	out, err := p.Invoke(ctx, args...)
	return result[R](out), err
}

// result extracts the first result as R, or the zero R.
func result[R any](out []any) R {
	if len(out) > 0 {
		if v, ok := out[0].(R); ok {
			return v
		}
	}
	var zero R
	return zero
}
