// Package status reports the health of the storefront and the services it depends on.
package status

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Component states.
const (
	StateOperational = "operational"
	StateDegraded    = "degraded"
)

// Summary captures an overview of the storefront and its dependencies.
type Summary struct {
	State      string      `json:"state"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Components []Component `json:"components,omitempty"`
}

// Operational reports whether every component passed.
func (s Summary) Operational() bool {
	return s.State == StateOperational
}

// Component represents the status of an individual dependency.
type Component struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Probe checks one dependency.
type Probe func(ctx context.Context) error

// Checker runs probes concurrently and caches the summary for a short time so that health
// checks do not hammer the backend.
type Checker struct {
	probes  map[string]Probe
	timeout time.Duration
	now     func() time.Time

	cacheMu  sync.RWMutex
	cacheTTL time.Duration
	cached   Summary
	expires  time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithCacheTTL sets how long a summary is reused. Zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Checker) {
		if d >= 0 {
			c.cacheTTL = d
		}
	}
}

// WithTimeout bounds each probe.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChecker builds a checker over named probes.
func NewChecker(probes map[string]Probe, opts ...Option) *Checker {
	c := &Checker{
		probes:   make(map[string]Probe, len(probes)),
		timeout:  3 * time.Second,
		now:      time.Now,
		cacheTTL: 30 * time.Second,
	}
	for name, p := range probes {
		name = strings.TrimSpace(name)
		if name != "" && p != nil {
			c.probes[name] = p
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check returns the cached summary or runs every probe.
func (c *Checker) Check(ctx context.Context) Summary {
	if summary, ok := c.fromCache(); ok {
		return summary
	}

	names := make([]string, 0, len(c.probes))
	for name := range c.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	components := make([]Component, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		probe := c.probes[name]
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			started := c.now()
			err := probe(pctx)
			comp := Component{Name: name, Status: StateOperational, Latency: c.now().Sub(started).Round(time.Millisecond).String()}
			if err != nil {
				comp.Status = StateDegraded
				comp.Error = err.Error()
			}
			components[i] = comp
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{State: StateOperational, UpdatedAt: c.now().UTC(), Components: components}
	for _, comp := range components {
		if comp.Status != StateOperational {
			summary.State = StateDegraded
			break
		}
	}
	c.store(summary)
	return cloneSummary(summary)
}

func (c *Checker) fromCache() (Summary, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	if c.cacheTTL == 0 || c.cached.State == "" || c.now().After(c.expires) {
		return Summary{}, false
	}
	return cloneSummary(c.cached), true
}

func (c *Checker) store(summary Summary) {
	if c.cacheTTL == 0 {
		return
	}
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cached = cloneSummary(summary)
	c.expires = c.now().Add(c.cacheTTL)
}

func cloneSummary(src Summary) Summary {
	cp := Summary{State: src.State, UpdatedAt: src.UpdatedAt}
	if len(src.Components) > 0 {
		cp.Components = make([]Component, len(src.Components))
		copy(cp.Components, src.Components)
	}
	return cp
}
