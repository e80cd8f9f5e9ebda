package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while the breaker refuses calls.
var ErrOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config tunes one breaker. Zero values pick the defaults.
type Config struct {
	// Name identifies the breaker in state-change callbacks.
	Name string

	// Threshold is the run of consecutive failures that trips the breaker.
	Threshold uint32

	// Cooldown is how long an open breaker waits before probing again.
	Cooldown time.Duration

	// Probes is how many consecutive successes close a half-open breaker.
	Probes uint32

	// OnStateChange observes transitions.
	OnStateChange func(name string, from, to State)
}

// Breaker shields an unreliable upstream. Closed passes calls through and
// counts consecutive failures; Threshold failures open it. Open rejects with
// ErrOpen until Cooldown elapses, then HalfOpen admits probe calls one at a
// time: any failure reopens, Probes successes close.
type Breaker struct {
	cfg Config

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	inFlight  bool
	openedAt  time.Time
}

// New creates a breaker from cfg.
func New(cfg Config) *Breaker {
	if cfg.Threshold == 0 {
		cfg.Threshold = 5
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 60 * time.Second
	}
	if cfg.Probes == 0 {
		cfg.Probes = 1
	}
	return &Breaker{cfg: cfg, state: StateClosed}
}

// Name returns the breaker's name.
func (b *Breaker) Name() string {
	return b.cfg.Name
}

// State returns the current state, applying any due cooldown transition.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current(time.Now())
}

// Execute runs fn if the breaker admits it and feeds the outcome back.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.admit(time.Now()); err != nil {
		return err
	}

	err := fn()
	b.settle(err == nil, time.Now())
	return err
}

func (b *Breaker) admit(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current(now) {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		// One probe at a time
		if b.inFlight {
			return ErrOpen
		}
		b.inFlight = true
	}
	return nil
}

func (b *Breaker) settle(success bool, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.current(now)
	b.inFlight = false

	switch state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.Threshold {
			b.transition(StateOpen, now)
		}
	case StateHalfOpen:
		if !success {
			b.transition(StateOpen, now)
			return
		}
		b.successes++
		if b.successes >= b.cfg.Probes {
			b.transition(StateClosed, now)
		}
	}
}

// current applies the open-to-half-open transition once the cooldown has
// elapsed. Callers hold the mutex.
func (b *Breaker) current(now time.Time) State {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.cfg.Cooldown {
		b.transition(StateHalfOpen, now)
	}
	return b.state
}

func (b *Breaker) transition(to State, now time.Time) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.failures = 0
	b.successes = 0
	b.inFlight = false
	if to == StateOpen {
		b.openedAt = now
	}
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.cfg.Name, from, to)
	}
}
