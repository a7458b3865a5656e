// Package playback sequences utterances through a speech port one at a time.
//
// A Scheduler is a small event-driven state machine (Idle, Playing, Stopping). Every
// sequence and every stop bumps an epoch; completions that carry an older epoch or
// index are discarded, so a late callback can never resume a cancelled sequence.
package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/verte-zerg/suuji/internal/logger"
	"github.com/verte-zerg/suuji/internal/speech"
)

var (
	ErrEmptySequence  = errors.New("empty sequence")
	ErrAlreadyPlaying = errors.New("already playing")
)

type State int

const (
	Idle State = iota
	Playing
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Status is a snapshot taken after a transition.
type Status struct {
	State State
	Index int
	Len   int
	Epoch uint64
	// Notice is set when the utterance that just finished failed. Playback still advances.
	Notice error
}

type session struct {
	texts []string
	index int
	opts  speech.Options
	idle  chan struct{}
}

type Scheduler struct {
	port speech.Port
	opts speech.Options
	log  *logger.Logger

	// launchMu is held while an utterance is handed to the port. Stop acquires it
	// after bumping the epoch so no stale launch can reach the port afterwards.
	launchMu sync.Mutex

	mu        sync.Mutex
	state     State
	epoch     uint64
	sess      *session
	observers map[int]func(Status)
	nextObs   int
}

func New(port speech.Port, opts speech.Options, log *logger.Logger) *Scheduler {
	return &Scheduler{
		port:      port,
		opts:      opts,
		log:       log.With("component", "scheduler"),
		observers: make(map[int]func(Status)),
	}
}

// Subscribe registers fn to be called after every transition. Observers run on the
// goroutine that caused the transition and must not block. They may call Stop and Play.
// The returned func removes fn.
func (s *Scheduler) Subscribe(fn func(Status)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Relay returns an observer that forwards statuses to ch without blocking. When ch is
// full the oldest queued status is discarded, so the latest transition always arrives.
func Relay(ch chan Status) func(Status) {
	return func(st Status) {
		for {
			select {
			case ch <- st:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Play starts speaking texts in order.
func (s *Scheduler) Play(texts []string) error {
	if len(texts) == 0 {
		return ErrEmptySequence
	}
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrAlreadyPlaying
	}
	s.epoch++
	s.state = Playing
	s.sess = &session{texts: append([]string(nil), texts...), opts: s.opts, idle: make(chan struct{})}
	epoch := s.epoch
	text := s.sess.texts[0]
	opts := s.sess.opts
	st, obs := s.snapshotLocked(nil)
	s.mu.Unlock()

	s.log.Debug("playback started", "epoch", epoch, "len", len(texts))
	notify(obs, st)
	s.speak(epoch, 0, text, opts)
	return nil
}

// Options returns the options for the next sequence.
func (s *Scheduler) Options() speech.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// SetOptions changes the options used by sequences started after the call.
func (s *Scheduler) SetOptions(opts speech.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
}

// Stop cancels the current sequence. It is a no-op when idle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == Idle {
		s.mu.Unlock()
		return
	}
	s.epoch++
	s.state = Stopping
	epoch := s.epoch
	st, obs := s.snapshotLocked(nil)
	s.mu.Unlock()
	notify(obs, st)

	// Wait out a launch already past its epoch check; later launches see the new epoch.
	s.launchMu.Lock()
	s.launchMu.Unlock()
	s.port.Stop()

	s.mu.Lock()
	if s.state != Stopping || s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	s.toIdleLocked()
	st, obs = s.snapshotLocked(nil)
	s.mu.Unlock()

	s.log.Debug("playback stopped", "epoch", epoch)
	notify(obs, st)
}

// Current returns the index being spoken.
func (s *Scheduler) Current() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		return 0, false
	}
	return s.sess.index, true
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, _ := s.snapshotLocked(nil)
	return st
}

// Wait blocks until the current sequence has ended or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	if s.state == Idle || s.sess == nil {
		s.mu.Unlock()
		return nil
	}
	idle := s.sess.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// speak hands text to the port unless the sequence was stopped or replaced since
// index was scheduled. A completion delivered before Synthesize returns is applied
// after the launch lock is released.
func (s *Scheduler) speak(epoch uint64, index int, text string, opts speech.Options) {
	s.launchMu.Lock()
	if !s.isCurrent(epoch, index) {
		s.launchMu.Unlock()
		s.log.Debug("stale launch dropped", "epoch", epoch, "index", index)
		return
	}

	var (
		lmu       sync.Mutex
		launching = true
		early     bool
		earlyErr  error
	)
	s.port.Synthesize(text, opts, func(err error) {
		lmu.Lock()
		if launching {
			early, earlyErr = true, err
			lmu.Unlock()
			return
		}
		lmu.Unlock()
		s.complete(epoch, index, err)
	})

	lmu.Lock()
	launching = false
	fire, err := early, earlyErr
	lmu.Unlock()
	s.launchMu.Unlock()

	if fire {
		s.complete(epoch, index, err)
	}
}

func (s *Scheduler) isCurrent(epoch uint64, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Playing && s.epoch == epoch && s.sess.index == index
}

func (s *Scheduler) complete(epoch uint64, index int, err error) {
	s.mu.Lock()
	if s.state != Playing || s.epoch != epoch || s.sess.index != index {
		s.mu.Unlock()
		s.log.Debug("stale completion dropped", "epoch", epoch, "index", index)
		return
	}

	if errors.Is(err, speech.ErrPreempted) || errors.Is(err, speech.ErrInterrupted) {
		s.epoch++
		s.toIdleLocked()
		st, obs := s.snapshotLocked(nil)
		s.mu.Unlock()
		s.log.Debug("playback preempted", "epoch", epoch, "index", index)
		notify(obs, st)
		return
	}

	var notice error
	if err != nil {
		notice = err
		s.log.Warn("utterance failed", "index", index, "error", err)
	}

	s.sess.index++
	if s.sess.index >= len(s.sess.texts) {
		s.toIdleLocked()
		st, obs := s.snapshotLocked(notice)
		s.mu.Unlock()
		s.log.Debug("playback finished", "epoch", epoch)
		notify(obs, st)
		return
	}

	next := s.sess.index
	text := s.sess.texts[next]
	opts := s.sess.opts
	st, obs := s.snapshotLocked(notice)
	s.mu.Unlock()

	notify(obs, st)
	s.speak(epoch, next, text, opts)
}

func (s *Scheduler) toIdleLocked() {
	s.state = Idle
	if s.sess != nil {
		close(s.sess.idle)
	}
}

func (s *Scheduler) snapshotLocked(notice error) (Status, []func(Status)) {
	st := Status{State: s.state, Epoch: s.epoch, Notice: notice}
	if s.sess != nil {
		st.Index = s.sess.index
		st.Len = len(s.sess.texts)
	}
	obs := make([]func(Status), 0, len(s.observers))
	for _, fn := range s.observers {
		obs = append(obs, fn)
	}
	return st, obs
}

func notify(obs []func(Status), st Status) {
	for _, fn := range obs {
		fn(st)
	}
}
