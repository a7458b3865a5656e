package catalog

import (
	"fmt"

	"github.com/verte-zerg/suuji/internal/model"
)

// Pager walks a catalog one window at a time. Every move rebuilds the page.
type Pager struct {
	cat   *Catalog
	size  int
	start int
	page  []model.Entry
}

// NewPager returns a pager positioned on the window containing start.
func NewPager(cat *Catalog, start, size int) (*Pager, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	p := &Pager{cat: cat, size: size}
	if err := p.Jump(start); err != nil {
		return nil, err
	}
	return p, nil
}

// Page returns the current window.
func (p *Pager) Page() []model.Entry {
	return p.page
}

// Start returns the first value of the current window.
func (p *Pager) Start() int {
	return p.start
}

// Size returns the configured page size.
func (p *Pager) Size() int {
	return p.size
}

// PageIndex returns the zero-based index of the current window.
func (p *Pager) PageIndex() int {
	return (p.start - p.cat.lo) / p.size
}

// PageCount returns the number of windows in the catalog.
func (p *Pager) PageCount() int {
	return (p.cat.Len() + p.size - 1) / p.size
}

// Next moves to the following window. It reports false on the last page.
func (p *Pager) Next() (bool, error) {
	next := p.start + p.size
	if next >= p.cat.hi {
		return false, nil
	}
	return true, p.load(next)
}

// Prev moves to the preceding window. It reports false on the first page.
func (p *Pager) Prev() (bool, error) {
	if p.start == p.cat.lo {
		return false, nil
	}
	prev := p.start - p.size
	if prev < p.cat.lo {
		prev = p.cat.lo
	}
	return true, p.load(prev)
}

// Jump moves to the window that contains value. Windows are aligned to the catalog start.
func (p *Pager) Jump(value int) error {
	if value < p.cat.lo || value >= p.cat.hi {
		return fmt.Errorf("%w: %d not in [%d, %d)", ErrStartOutOfRange, value, p.cat.lo, p.cat.hi)
	}
	aligned := p.cat.lo + (value-p.cat.lo)/p.size*p.size
	return p.load(aligned)
}

func (p *Pager) load(start int) error {
	page, err := p.cat.Page(start, p.size)
	if err != nil {
		return err
	}
	p.start = start
	p.page = page
	return nil
}
