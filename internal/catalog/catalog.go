// Package catalog pages through integer ranges with their readings.
package catalog

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/suuji/internal/model"
	"github.com/verte-zerg/suuji/internal/numeral"
)

var (
	// ErrInvalidRange is returned for an empty or out-of-domain interval.
	ErrInvalidRange = errors.New("invalid catalog range")

	// ErrInvalidPageSize is returned for a non-positive page size.
	ErrInvalidPageSize = errors.New("page size must be > 0")

	// ErrStartOutOfRange is returned when a page would start outside the interval.
	ErrStartOutOfRange = errors.New("page start outside catalog range")
)

// Catalog covers the half-open interval [lo, hi).
type Catalog struct {
	lo int
	hi int
}

// New returns a catalog over [lo, hi). The interval must be non-empty and lie within
// the numeral domain.
func New(lo, hi int) (*Catalog, error) {
	if lo < 0 || hi <= lo || hi-1 > numeral.MaxValue {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, lo, hi)
	}
	return &Catalog{lo: lo, hi: hi}, nil
}

// Bounds returns the interval covered by the catalog.
func (c *Catalog) Bounds() (lo, hi int) {
	return c.lo, c.hi
}

// Len returns the number of values in the catalog.
func (c *Catalog) Len() int {
	return c.hi - c.lo
}

// Page builds min(size, hi-start) entries starting at start.
func (c *Catalog) Page(start, size int) ([]model.Entry, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	if start < c.lo || start >= c.hi {
		return nil, fmt.Errorf("%w: %d not in [%d, %d)", ErrStartOutOfRange, start, c.lo, c.hi)
	}
	n := size
	if remaining := c.hi - start; remaining < n {
		n = remaining
	}
	entries := make([]model.Entry, 0, n)
	for v := start; v < start+n; v++ {
		kana, romaji, err := numeral.Readings(v)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.Entry{Value: v, Kana: kana, Romaji: romaji})
	}
	return entries, nil
}

// BuildPage builds a page over the whole numeral domain.
func BuildPage(start, size int) ([]model.Entry, error) {
	c := Catalog{lo: 0, hi: numeral.MaxValue + 1}
	return c.Page(start, size)
}

// Texts extracts the reading of each entry in the given alphabet, in order.
func Texts(entries []model.Entry, a model.Alphabet) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		if a == model.Romaji {
			out[i] = e.Romaji
		} else {
			out[i] = e.Kana
		}
	}
	return out
}
