package speech

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/suuji/internal/logger"
)

// Compile-time interface check.
var _ Port = (*SilentPort)(nil)

// DefaultPace is roughly how long one kana takes to say at normal speed.
const DefaultPace = 120 * time.Millisecond

// SilentPort logs utterances instead of speaking them and completes each one after a
// simulated duration. Used when voice is muted or no synthesizer is installed.
type SilentPort struct {
	pace time.Duration
	log  *logger.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewSilentPort returns a silent port that takes pace per character at rate 1.0.
// A zero pace completes utterances immediately (on another goroutine).
func NewSilentPort(pace time.Duration, log *logger.Logger) *SilentPort {
	return &SilentPort{pace: pace, log: log.With("component", "silent_port")}
}

// Synthesize implements Port.
func (p *SilentPort) Synthesize(text string, opts Options, done func(error)) {
	if text == "" {
		done(ErrEmptyText)
		return
	}
	p.log.Info("speak", "text", text, "alphabet", opts.Alphabet.String(), "rate", opts.Rate)
	d := p.duration(text, opts.Rate)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		p.mu.Lock()
		current := p.timer == t
		if current {
			p.timer = nil
		}
		p.mu.Unlock()
		if current {
			done(nil)
		}
	})
	p.timer = t
}

// Stop implements Port.
func (p *SilentPort) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *SilentPort) duration(text string, rate float64) time.Duration {
	if rate <= 0 {
		rate = 1.0
	}
	return time.Duration(float64(p.pace) * float64(utf8.RuneCountInString(text)) / rate)
}
