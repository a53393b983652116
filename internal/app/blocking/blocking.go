// Package blocking coordinates app-blocking enforcement around the
// wallet's unlock windows. The actual enforcement mechanism is
// platform-specific and pluggable.
package blocking

import (
	"context"
	"log"
	"sync"
)

// Enforcer applies or lifts distraction blocking on the host platform.
type Enforcer interface {
	// Suppress lifts blocking for the duration of an unlock window.
	Suppress(ctx context.Context) error
	// Reinstate restores blocking after the window closes.
	Reinstate(ctx context.Context) error
}

// NoopEnforcer is the default on platforms without an enforcement
// backend. It never fails.
type NoopEnforcer struct{}

func (NoopEnforcer) Suppress(context.Context) error  { return nil }
func (NoopEnforcer) Reinstate(context.Context) error { return nil }

// Coordinator tracks the desired blocking state and calls the enforcer
// only on transitions, so repeated ticks are cheap.
type Coordinator struct {
	mu         sync.Mutex
	enforcer   Enforcer
	suppressed bool
}

// NewCoordinator wraps an enforcer; nil falls back to NoopEnforcer.
func NewCoordinator(e Enforcer) *Coordinator {
	if e == nil {
		e = NoopEnforcer{}
	}
	return &Coordinator{enforcer: e}
}

// Suppress lifts blocking if it is not already suppressed.
func (c *Coordinator) Suppress(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suppressed {
		return nil
	}
	if err := c.enforcer.Suppress(ctx); err != nil {
		return err
	}
	log.Printf("[blocking] suppressed for unlock window")
	c.suppressed = true
	return nil
}

// Reinstate restores blocking if it was suppressed.
func (c *Coordinator) Reinstate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.suppressed {
		return nil
	}
	if err := c.enforcer.Reinstate(ctx); err != nil {
		return err
	}
	log.Printf("[blocking] reinstated after unlock window")
	c.suppressed = false
	return nil
}

// Suppressed reports the current state.
func (c *Coordinator) Suppressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suppressed
}
