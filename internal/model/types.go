// Package model defines shared data structures.
package model

import "fmt"

// Alphabet selects the script a reading is rendered in.
type Alphabet int

const (
	// Kana renders readings in hiragana. This is the alphabet used for synthesis.
	Kana Alphabet = iota
	// Romaji renders readings in Latin letters for pronunciation guidance.
	Romaji
)

// String returns the config/flag name of the alphabet.
func (a Alphabet) String() string {
	switch a {
	case Kana:
		return "kana"
	case Romaji:
		return "romaji"
	default:
		return fmt.Sprintf("alphabet(%d)", int(a))
	}
}

// ParseAlphabet converts a flag value into an Alphabet.
func ParseAlphabet(s string) (Alphabet, error) {
	switch s {
	case "kana":
		return Kana, nil
	case "romaji":
		return Romaji, nil
	default:
		return 0, fmt.Errorf("unknown alphabet %q (want kana or romaji)", s)
	}
}

// Entry is one catalog row.
type Entry struct {
	Value  int
	Kana   string
	Romaji string
}

// Config defines catalog and quiz settings.
type Config struct {
	CatalogStart int
	CatalogEnd   int
	PageSize     int
	Pool         string
	MaxDigits    int
	Speech       SpeechConfig
}

// SpeechConfig selects and tunes the speech synthesizer.
type SpeechConfig struct {
	Command string
	Voice   string
	Rate    float64
	Mute    bool
}

// Pool is a named set of curated quiz targets.
type Pool struct {
	Name   string
	Values []int
}

// PoolSummary describes a stored pool without its values.
type PoolSummary struct {
	Name  string
	Count int
}
