// Package health provides liveness and readiness probe endpoints. Checks run
// periodically in the background; probe handlers only read the latest state.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc probes one component. It returns nil when the component is
// healthy.
type CheckFunc func(ctx context.Context) error

// check holds configuration and last-observed state for one registered check.
// run is called from a single goroutine; healthy and lastErr are read by
// probe handlers from arbitrary goroutines.
type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	consecutiveFails int
}

// failureThreshold is how many consecutive failures flip a check unhealthy,
// avoiding flapping on one-off errors.
const failureThreshold = 3

func (c *check) run(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(checkCtx)
	c.lastErr.Store(&err)

	if err != nil {
		c.consecutiveFails++
		if c.consecutiveFails >= failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.consecutiveFails = 0
	c.healthy.Store(true)
}

// Service manages liveness and readiness checks. It starts not-ready; call
// SetReady(true) once initialization finishes.
type Service struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New creates an empty health Service.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a check for the /livez probe.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &check{name: name, timeout: timeout, fn: fn}
	c.healthy.Store(true)
	s.liveness = append(s.liveness, c)
}

// AddReadinessCheck registers a check for the /readyz probe.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &check{name: name, timeout: timeout, fn: fn}
	c.healthy.Store(true)
	s.readiness = append(s.readiness, c)
}

// SetReady flips the overall readiness gate. Readiness checks only matter
// while the gate is open.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Start launches the background check loop at the given interval. It runs
// until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	checks := make([]*check, 0, len(s.liveness)+len(s.readiness))
	checks = append(checks, s.liveness...)
	checks = append(checks, s.readiness...)
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, c := range checks {
					c.run(ctx)
				}
			}
		}
	}()
}

// Stop halts the background check loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// LiveEndpoint serves the /livez probe.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	checks := s.liveness
	s.mu.RUnlock()
	writeProbe(w, true, checks)
}

// ReadyEndpoint serves the /readyz probe. It fails while the readiness gate
// is closed or any readiness check is unhealthy.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	checks := s.readiness
	s.mu.RUnlock()
	writeProbe(w, s.ready.Load(), checks)
}

func writeProbe(w http.ResponseWriter, gate bool, checks []*check) {
	healthy := gate
	for _, c := range checks {
		if !c.healthy.Load() {
			healthy = false
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("healthy")
	e.Bool(healthy)
	e.FieldStart("checks")
	e.ObjStart()
	for _, c := range checks {
		e.FieldStart(c.name)
		if p := c.lastErr.Load(); p != nil && *p != nil {
			e.Str((*p).Error())
		} else {
			e.Str("ok")
		}
	}
	e.ObjEnd()
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
