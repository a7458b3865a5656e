// Package quiz implements the price listening quiz: a target is drawn from a curated
// pool, the learner types digits, and either value can be spoken aloud.
package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/verte-zerg/suuji/internal/logger"
	"github.com/verte-zerg/suuji/internal/model"
	"github.com/verte-zerg/suuji/internal/numeral"
	"github.com/verte-zerg/suuji/internal/playback"
	"github.com/verte-zerg/suuji/internal/speech"
)

// DefaultMaxDigits matches the five-digit price display.
const DefaultMaxDigits = 5

var (
	ErrEmptyPool    = errors.New("empty pool")
	ErrInvalidPool  = errors.New("invalid pool value")
	ErrNothingToSay = errors.New("nothing to say")
	ErrNoRound      = errors.New("no round in progress")
)

// Which selects the value to pronounce.
type Which int

const (
	Target Which = iota
	Candidate
)

func (w Which) String() string {
	if w == Candidate {
		return "candidate"
	}
	return "target"
}

type Options struct {
	MaxDigits int
	// Rand seeds target draws; nil uses the clock.
	Rand   rand.Source
	Speech speech.Options
	Logger *logger.Logger
	// OnCorrect is called with the target each time Submit accepts an answer.
	OnCorrect func(target int)
}

// Engine holds one learner's quiz state. It is not safe for concurrent use; the UI
// drives it from a single goroutine.
type Engine struct {
	opts   Options
	log    *logger.Logger
	drawer *Drawer
	port   speech.Port
	sched  *playback.Scheduler

	pool   []int
	target int
	buf    []byte
	active bool
}

func New(port speech.Port, opts Options) *Engine {
	if opts.MaxDigits <= 0 {
		opts.MaxDigits = DefaultMaxDigits
	}
	if opts.Speech.Rate <= 0 {
		opts.Speech.Rate = speech.DefaultOptions().Rate
	}
	opts.Speech.Alphabet = model.Kana
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "quiz")
	return &Engine{
		opts:   opts,
		log:    log,
		drawer: NewDrawer(opts.Rand),
		port:   port,
		sched:  playback.New(port, opts.Speech, log),
	}
}

// NewRound draws a target from pool and clears the buffer.
func (e *Engine) NewRound(pool []int) (int, error) {
	if len(pool) == 0 {
		return 0, ErrEmptyPool
	}
	limit := e.limit()
	for _, v := range pool {
		if v < 0 || v > limit {
			return 0, fmt.Errorf("%w: %d (allowed 0..%d)", ErrInvalidPool, v, limit)
		}
	}
	e.pool = append(e.pool[:0], pool...)
	e.next()
	return e.target, nil
}

func (e *Engine) next() {
	e.target = e.drawer.Draw(e.pool)
	e.buf = e.buf[:0]
	e.active = true
	e.log.Debug("new round", "target", e.target, "pool", len(e.pool))
}

// limit is the largest value both readable and typeable.
func (e *Engine) limit() int {
	limit := 1
	for i := 0; i < e.opts.MaxDigits; i++ {
		limit *= 10
	}
	limit--
	if limit > numeral.MaxValue {
		limit = numeral.MaxValue
	}
	return limit
}

// AppendDigit adds d to the buffer. It reports false when d is not a digit or the
// buffer is full. A buffer holding only "0" is replaced rather than extended.
func (e *Engine) AppendDigit(d int) bool {
	if d < 0 || d > 9 {
		return false
	}
	if len(e.buf) == 1 && e.buf[0] == '0' {
		e.buf[0] = byte('0' + d)
		return true
	}
	if len(e.buf) >= e.opts.MaxDigits {
		return false
	}
	e.buf = append(e.buf, byte('0'+d))
	return true
}

func (e *Engine) Backspace() {
	if len(e.buf) > 0 {
		e.buf = e.buf[:len(e.buf)-1]
	}
}

// Clear empties the buffer.
func (e *Engine) Clear() {
	e.buf = e.buf[:0]
}

func (e *Engine) Buffer() string {
	return string(e.buf)
}

func (e *Engine) Candidate() (int, bool) {
	if len(e.buf) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(e.buf))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (e *Engine) Target() int {
	return e.target
}

func (e *Engine) Active() bool {
	return e.active
}

func (e *Engine) Pool() []int {
	return append([]int(nil), e.pool...)
}

func (e *Engine) MaxDigits() int {
	return e.opts.MaxDigits
}

// IsCorrect compares the buffer with the target numerically.
func (e *Engine) IsCorrect() bool {
	if !e.active {
		return false
	}
	n, ok := e.Candidate()
	return ok && n == e.target
}

// Submit checks the answer. A correct answer fires OnCorrect and starts the next
// round from the same pool.
func (e *Engine) Submit() bool {
	if !e.IsCorrect() {
		return false
	}
	solved := e.target
	e.log.Info("answer correct", "target", solved)
	if e.opts.OnCorrect != nil {
		e.opts.OnCorrect(solved)
	}
	e.next()
	return true
}

// Pronounce speaks the target or candidate in kana, cutting off anything already
// being spoken.
func (e *Engine) Pronounce(which Which) error {
	var n int
	switch which {
	case Target:
		if !e.active {
			return ErrNoRound
		}
		n = e.target
	case Candidate:
		c, ok := e.Candidate()
		if !ok {
			return ErrNothingToSay
		}
		n = c
	default:
		return fmt.Errorf("unknown pronounce target %d", which)
	}
	text, err := numeral.Reading(n, model.Kana)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", which, err)
	}
	e.sched.Stop()
	e.port.Stop()
	if err := e.sched.Play([]string{text}); err != nil {
		return fmt.Errorf("failed to pronounce %s: %w", which, err)
	}
	return nil
}

// Reveal returns both readings of the target.
func (e *Engine) Reveal() (model.Entry, error) {
	if !e.active {
		return model.Entry{}, ErrNoRound
	}
	kana, romaji, err := numeral.Readings(e.target)
	if err != nil {
		return model.Entry{}, err
	}
	return model.Entry{Value: e.target, Kana: kana, Romaji: romaji}, nil
}

// Playback exposes the engine's scheduler so a UI can observe it.
func (e *Engine) Playback() *playback.Scheduler {
	return e.sched
}
