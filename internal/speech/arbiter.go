package speech

import (
	"sync"

	"github.com/verte-zerg/suuji/internal/logger"
)

// Compile-time interface check.
var _ Port = (*Arbiter)(nil)

// Arbiter makes a Port an exclusive resource shared by several speakers.
//
// At most one utterance is in flight. Starting a new one stops the port and completes
// the previous utterance with ErrPreempted; Stop completes it with ErrInterrupted.
// Every utterance accepted by the Arbiter completes exactly once.
type Arbiter struct {
	port Port
	log  *logger.Logger

	mu     sync.Mutex
	active *utterance
	seq    uint64
}

type utterance struct {
	id   uint64
	once sync.Once
	done func(error)
}

func (u *utterance) finish(err error) {
	u.once.Do(func() {
		if u.done != nil {
			u.done(err)
		}
	})
}

// NewArbiter wraps port.
func NewArbiter(port Port, log *logger.Logger) *Arbiter {
	return &Arbiter{port: port, log: log.With("component", "speech_arbiter")}
}

// Synthesize implements Port.
func (a *Arbiter) Synthesize(text string, opts Options, done func(error)) {
	if text == "" {
		if done != nil {
			done(ErrEmptyText)
		}
		return
	}
	a.mu.Lock()
	a.seq++
	u := &utterance{id: a.seq, done: done}
	prev := a.active
	a.active = u
	a.mu.Unlock()

	if prev != nil {
		a.log.Debug("preempting utterance", "prev", prev.id, "next", u.id)
		a.port.Stop()
		prev.finish(ErrPreempted)
	}
	a.port.Synthesize(text, opts, func(err error) {
		a.complete(u, err)
	})
}

// Stop implements Port.
func (a *Arbiter) Stop() {
	a.mu.Lock()
	prev := a.active
	a.active = nil
	a.mu.Unlock()

	a.port.Stop()
	if prev != nil {
		prev.finish(ErrInterrupted)
	}
}

// Busy reports whether an utterance is in flight.
func (a *Arbiter) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active != nil
}

func (a *Arbiter) complete(u *utterance, err error) {
	a.mu.Lock()
	if a.active == u {
		a.active = nil
	}
	a.mu.Unlock()
	u.finish(err)
}
