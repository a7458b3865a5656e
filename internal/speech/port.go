// Package speech provides the speech synthesis port and its implementations.
package speech

import (
	"errors"

	"github.com/verte-zerg/suuji/internal/model"
)

// Common speech errors.
var (
	// ErrEmptyText is returned when asked to synthesize an empty string.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrPreempted completes an utterance that was cut off by a newer one.
	ErrPreempted = errors.New("utterance preempted by another speaker")

	// ErrInterrupted completes an utterance that was halted by Stop.
	ErrInterrupted = errors.New("utterance interrupted")

	// ErrNoSynthesizer is returned when no synthesizer command can be found.
	ErrNoSynthesizer = errors.New("no speech synthesizer available")

	// ErrSynthesisFailed wraps failures reported by the synthesizer.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
)

// Options tunes one utterance.
type Options struct {
	// Alphabet hints the script of the text.
	Alphabet model.Alphabet
	// Rate is the speech rate multiplier (1.0 = normal).
	Rate float64
	// Voice is a synthesizer-specific voice name.
	Voice string
}

// DefaultOptions returns kana at normal speed.
func DefaultOptions() Options {
	return Options{Alphabet: model.Kana, Rate: 1.0}
}

// Port synthesizes speech.
//
// Synthesize starts speaking text and returns immediately. done is the completion
// signal: it is called at most once, possibly from another goroutine, with a nil
// error on success. A port may drop the completion of an utterance halted by Stop;
// wrap it in an Arbiter when callers need every utterance to complete.
type Port interface {
	Synthesize(text string, opts Options, done func(error))
	Stop()
}
