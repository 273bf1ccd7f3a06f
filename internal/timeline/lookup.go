package timeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// History is what one repository knows about a locator.
type History struct {
	// LastModified is the last commit that touched the locator, nil if none was found.
	LastModified *time.Time
	// ExistsAtAll is false when the locator never appears in the repository history.
	ExistsAtAll bool
	// PresentAtHead is false when the locator existed once but is gone from the tip.
	PresentAtHead bool
}

// HistoryLookup answers last-modified queries against one repository.
// Implementations own any retry policy.
type HistoryLookup interface {
	LastModified(ctx context.Context, locator string) (History, error)
}

// LookupFunc adapts a function to HistoryLookup.
type LookupFunc func(ctx context.Context, locator string) (History, error)

func (f LookupFunc) LastModified(ctx context.Context, locator string) (History, error) {
	return f(ctx, locator)
}

type refKey struct{}

// WithRef attaches a history ref (branch, tag or commit) for lookups made
// with ctx. An empty ref leaves ctx unchanged.
func WithRef(ctx context.Context, ref string) context.Context {
	if ref == "" {
		return ctx
	}
	return context.WithValue(ctx, refKey{}, ref)
}

// RefFrom returns the ref attached by WithRef, or "".
func RefFrom(ctx context.Context) string {
	ref, _ := ctx.Value(refKey{}).(string)
	return ref
}

// ErrUnavailable marks a lookup that could not answer in time or at all.
var ErrUnavailable = errors.New("history lookup unavailable")

type bounded struct {
	inner   HistoryLookup
	timeout time.Duration
}

// Bounded wraps inner so every call returns within timeout. A call that runs
// over is abandoned and reported as ErrUnavailable.
func Bounded(inner HistoryLookup, timeout time.Duration) HistoryLookup {
	if timeout <= 0 {
		return inner
	}
	return &bounded{inner: inner, timeout: timeout}
}

type lookupResult struct {
	h   History
	err error
}

func (b *bounded) LastModified(ctx context.Context, locator string) (History, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan lookupResult, 1)
	go func() {
		h, err := b.inner.LastModified(ctx, locator)
		done <- lookupResult{h, err}
	}()

	select {
	case r := <-done:
		return r.h, r.err
	case <-ctx.Done():
		return History{}, fmt.Errorf("%w: %q after %s: %v", ErrUnavailable, locator, b.timeout, ctx.Err())
	}
}

type cached struct {
	inner   HistoryLookup
	entries sync.Map // ref + "\x00" + locator -> History
	group   singleflight.Group
}

// Cached memoises successful answers from inner, per ref and locator. Each
// key is fetched at most once at a time and never rewritten after it lands;
// errors are not kept. The shared fetch ignores the cancellation of whichever
// caller started it, so wrap inner with Bounded to keep it finite.
func Cached(inner HistoryLookup) HistoryLookup {
	return &cached{inner: inner}
}

func (c *cached) LastModified(ctx context.Context, locator string) (History, error) {
	key := RefFrom(ctx) + "\x00" + locator
	if v, ok := c.entries.Load(key); ok {
		return v.(History), nil
	}
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		if v, ok := c.entries.Load(key); ok {
			return v, nil
		}
		h, err := c.inner.LastModified(shared, locator)
		if err != nil {
			return nil, err
		}
		actual, _ := c.entries.LoadOrStore(key, h)
		return actual, nil
	})
	var (
		v   interface{}
		err error
	)
	select {
	case r := <-ch:
		v, err = r.Val, r.Err
	case <-ctx.Done():
		return History{}, fmt.Errorf("%w: %q: %v", ErrUnavailable, locator, ctx.Err())
	}
	if err != nil {
		return History{}, err
	}
	return v.(History), nil
}
