// Package numeral converts integers into their spoken Japanese readings.
//
// Readings are produced in two parallel alphabets (kana and romaji) from immutable
// tables. The euphonic contractions of the hundreds and thousands tiers (さんびゃく,
// はっせん, ...) come from an irregular rule table rather than from string surgery.
package numeral

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/verte-zerg/suuji/internal/model"
)

// MaxValue is the largest integer with a guaranteed reading. The ten-thousand tier is
// applied once; there is no hundred-million tier.
const MaxValue = 99_999_999

var (
	// ErrOutOfRange is returned for integers outside [0, MaxValue].
	ErrOutOfRange = errors.New("number out of range")

	// ErrUnknownAlphabet is returned for an alphabet without atom tables.
	ErrUnknownAlphabet = errors.New("unknown alphabet")

	// ErrInvalidNumber is returned when user input is not a plain decimal integer.
	ErrInvalidNumber = errors.New("invalid number")
)

// Fragment is one emitted piece of a reading.
type Fragment struct {
	Tier      Tier
	Digit     int
	Text      string
	Irregular bool
	// Man marks fragments that belong to the ten-thousand group.
	Man bool
}

// Reading returns the spoken reading of n in the given alphabet.
func Reading(n int, a model.Alphabet) (string, error) {
	tbl, err := atomsFor(a)
	if err != nil {
		return "", err
	}
	if err := checkRange(n); err != nil {
		return "", err
	}
	if n == 0 {
		return tbl.zero, nil
	}
	frags := decompose(n, tbl)
	var b strings.Builder
	for i, f := range frags {
		if a == model.Romaji && i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Text)
	}
	return b.String(), nil
}

// MustReading is like Reading but panics on error.
func MustReading(n int, a model.Alphabet) string {
	s, err := Reading(n, a)
	if err != nil {
		panic(err)
	}
	return s
}

// Readings returns both renderings of n.
func Readings(n int) (kana, romaji string, err error) {
	if kana, err = Reading(n, model.Kana); err != nil {
		return "", "", err
	}
	if romaji, err = Reading(n, model.Romaji); err != nil {
		return "", "", err
	}
	return kana, romaji, nil
}

// Fragments returns the emitted pieces of n's reading, most significant first.
// Zero yields a single Ones fragment holding the zero atom.
func Fragments(n int, a model.Alphabet) ([]Fragment, error) {
	tbl, err := atomsFor(a)
	if err != nil {
		return nil, err
	}
	if err := checkRange(n); err != nil {
		return nil, err
	}
	if n == 0 {
		return []Fragment{{Tier: Ones, Text: tbl.zero}}, nil
	}
	return decompose(n, tbl), nil
}

// ParseDigits parses a learner-typed integer. Full-width digits are folded and
// "," / "_" grouping separators are ignored.
func ParseDigits(s string) (int, error) {
	folded := width.Fold.String(strings.TrimSpace(s))
	folded = strings.NewReplacer(",", "", "_", "").Replace(folded)
	if folded == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidNumber)
	}
	for _, r := range folded {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
		}
	}
	if len(folded) > len(strconv.Itoa(MaxValue)) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, folded)
	}
	n, err := strconv.Atoi(folded)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	if err := checkRange(n); err != nil {
		return 0, err
	}
	return n, nil
}

func atomsFor(a model.Alphabet) (*atoms, error) {
	switch a {
	case model.Kana:
		return &kanaAtoms, nil
	case model.Romaji:
		return &romajiAtoms, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlphabet, a)
	}
}

func checkRange(n int) error {
	if n < 0 || n > MaxValue {
		return fmt.Errorf("%w: %d (supported 0-%d)", ErrOutOfRange, n, MaxValue)
	}
	return nil
}

// decompose expects 0 < n <= MaxValue.
func decompose(n int, tbl *atoms) []Fragment {
	man, rest := n/10000, n%10000
	var out []Fragment
	if man > 0 {
		var lead []Fragment
		if man == 1 {
			lead = []Fragment{{Tier: Ones, Digit: 1, Text: tbl.ones(1)}}
		} else {
			lead = belowMan(man, tbl)
		}
		for i := range lead {
			lead[i].Man = true
		}
		lead[len(lead)-1].Text += tbl.word[TenThousands]
		out = append(out, lead...)
	}
	return append(out, belowMan(rest, tbl)...)
}

// belowMan renders v < 10000 tier by tier. A zero v yields nothing.
func belowMan(v int, tbl *atoms) []Fragment {
	var out []Fragment
	if th := v / 1000; th > 0 {
		_, irr := tbl.irregular[Thousands][th]
		out = append(out, Fragment{Tier: Thousands, Digit: th, Text: tbl.tierAtom(Thousands, th), Irregular: irr})
	}
	if h := v % 1000 / 100; h > 0 {
		_, irr := tbl.irregular[Hundreds][h]
		out = append(out, Fragment{Tier: Hundreds, Digit: h, Text: tbl.tierAtom(Hundreds, h), Irregular: irr})
	}
	if t := v % 100 / 10; t > 0 {
		out = append(out, Fragment{Tier: Tens, Digit: t, Text: tbl.tensAtom(t)})
	}
	if o := v % 10; o > 0 {
		out = append(out, Fragment{Tier: Ones, Digit: o, Text: tbl.ones(o)})
	}
	return out
}
