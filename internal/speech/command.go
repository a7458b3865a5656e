package speech

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/verte-zerg/suuji/internal/logger"
	"github.com/verte-zerg/suuji/internal/model"
)

// Compile-time interface check.
var _ Port = (*CommandPort)(nil)

const (
	baseWordsPerMinute = 175
	defaultSayVoice    = "Kyoko"
	defaultEspeakVoice = "ja"
)

// CommandPort speaks through a system synthesizer process (say, espeak-ng, espeak).
// One process runs at a time; a new utterance or Stop kills the running one, and the
// completion of a killed process is dropped.
type CommandPort struct {
	path  string
	voice string
	log   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// NewCommandPort resolves command on PATH.
func NewCommandPort(command, voice string, log *logger.Logger) (*CommandPort, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoSynthesizer, command, err)
	}
	return &CommandPort{path: path, voice: voice, log: log.With("component", "command_port", "command", command)}, nil
}

// Synthesize implements Port.
func (p *CommandPort) Synthesize(text string, opts Options, done func(error)) {
	if text == "" {
		done(ErrEmptyText)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	args := p.args(text, opts)
	cmd := exec.CommandContext(ctx, p.path, args...)
	if err := cmd.Start(); err != nil {
		p.release(gen)
		cancel()
		done(fmt.Errorf("%w: %v", ErrSynthesisFailed, err))
		return
	}
	p.log.Debug("synthesizer started", "args", args)

	go func() {
		err := cmd.Wait()
		stopped := ctx.Err() != nil
		p.release(gen)
		cancel()
		if stopped {
			p.log.Debug("synthesizer killed", "gen", gen)
			return
		}
		if err != nil {
			done(fmt.Errorf("%w: %v", ErrSynthesisFailed, err))
			return
		}
		done(nil)
	}()
}

// Stop implements Port.
func (p *CommandPort) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *CommandPort) release(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen == gen {
		p.cancel = nil
	}
}

func (p *CommandPort) args(text string, opts Options) []string {
	return commandArgs(filepath.Base(p.path), p.voice, text, opts)
}

func commandArgs(engine, voice, text string, opts Options) []string {
	if opts.Voice != "" {
		voice = opts.Voice
	}
	wpm := wordsPerMinute(opts.Rate)
	var args []string
	switch engine {
	case "say":
		if voice == "" && opts.Alphabet == model.Kana {
			voice = defaultSayVoice
		}
		if voice != "" {
			args = append(args, "-v", voice)
		}
		args = append(args, "-r", strconv.Itoa(wpm))
	case "espeak-ng", "espeak":
		if voice == "" && opts.Alphabet == model.Kana {
			voice = defaultEspeakVoice
		}
		if voice != "" {
			args = append(args, "-v", voice)
		}
		args = append(args, "-s", strconv.Itoa(wpm))
	}
	return append(args, text)
}

func wordsPerMinute(rate float64) int {
	if rate <= 0 {
		rate = 1.0
	}
	return int(math.Round(baseWordsPerMinute * rate))
}
