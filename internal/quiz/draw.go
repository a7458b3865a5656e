package quiz

import (
	"math/rand"
	"time"
)

// Drawer picks quiz targets from a pool.
type Drawer struct {
	rnd *rand.Rand
}

// NewDrawer returns a Drawer over src, or one seeded with the current time when src is nil.
func NewDrawer(src rand.Source) *Drawer {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Drawer{rnd: rand.New(src)}
}

// Draw selects a value uniformly. The pool must not be empty.
func (d *Drawer) Draw(pool []int) int {
	return pool[d.rnd.Intn(len(pool))]
}
