package shell

import (
	"slices"
	"sync"
	"sync/atomic"
)

// MiddlewareFunc is a stage in a middleware or trailer chain. A stage receives the invocation
// metadata and a next function that advances the chain. A stage that returns without calling next
// halts the chain. Work that must finish before the next stage runs has to complete (or be waited
// on) before next is called.
type MiddlewareFunc func(m *Meta, next func())

// Chain is an ordered list of stages run one after another. Stages run strictly in the order
// they were added. The zero value is an empty chain ready to use.
type Chain[T any] struct {
	mu     sync.Mutex
	stages []func(T, func())
}

// Use appends stages to the chain. Runs already in progress are not affected.
func (c *Chain[T]) Use(stages ...func(T, func())) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range stages {
		if s != nil {
			c.stages = append(c.stages, s)
		}
	}
}

// Size returns the number of stages in the chain.
func (c *Chain[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stages)
}

// Stages returns a copy of the chain's stages.
func (c *Chain[T]) Stages() []func(T, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.stages)
}

// Run invokes the first stage with v. Each call to next invokes the following stage, and after the
// last stage final is called with v. Calling next more than once from the same stage has no
// further effect. Run reports whether the end of the chain was reached. final may be nil.
func (c *Chain[T]) Run(v T, final func(T)) bool {
	stages := c.Stages()
	var reached atomic.Bool
	var step func(i int)
	step = func(i int) {
		if i == len(stages) {
			reached.Store(true)
			if final != nil {
				final(v)
			}
			return
		}
		var once sync.Once
		stages[i](v, func() { once.Do(func() { step(i + 1) }) })
	}
	step(0)
	return reached.Load()
}

// middlewareStages converts MiddlewareFunc values to chain stages.
func middlewareStages(fns []MiddlewareFunc) []func(*Meta, func()) {
	stages := make([]func(*Meta, func()), 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			stages = append(stages, fn)
		}
	}
	return stages
}
