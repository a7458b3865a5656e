package speech

import (
	"runtime"

	"github.com/verte-zerg/suuji/internal/logger"
	"github.com/verte-zerg/suuji/internal/model"
)

// Detect builds the port described by cfg, wrapped in an Arbiter.
//
// A muted config yields a SilentPort. An explicit command must exist on PATH. Without
// one, the platform synthesizer is tried and the silent port is the fallback.
func Detect(cfg model.SpeechConfig, log *logger.Logger) (*Arbiter, error) {
	if cfg.Mute {
		return NewArbiter(NewSilentPort(DefaultPace, log), log), nil
	}
	if cfg.Command != "" {
		port, err := NewCommandPort(cfg.Command, cfg.Voice, log)
		if err != nil {
			return nil, err
		}
		return NewArbiter(port, log), nil
	}
	for _, candidate := range candidateCommands(runtime.GOOS) {
		port, err := NewCommandPort(candidate, cfg.Voice, log)
		if err == nil {
			log.Debug("using synthesizer", "command", candidate)
			return NewArbiter(port, log), nil
		}
	}
	log.Warn("no speech synthesizer found; speaking silently")
	return NewArbiter(NewSilentPort(DefaultPace, log), log), nil
}

func candidateCommands(goos string) []string {
	if goos == "darwin" {
		return []string{"say"}
	}
	return []string{"espeak-ng", "espeak"}
}
