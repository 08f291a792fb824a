// Package aggregate computes device, cable and material totals from a
// Snapshot. Every function here is total: unresolved references, unknown
// types and unparsable numbers degrade to defaults instead of failing.
package aggregate

import (
	"strings"

	"github.com/WessleyAI/installbom/pkg/textkey"
)

// Line is one accumulated material or hardware total.
type Line struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

// Accumulator sums quantities keyed by normalized (name, unit). Display
// name and unit keep the first-seen spelling.
type Accumulator struct {
	index map[string]int
	lines []Line
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{index: make(map[string]int)}
}

// Add accumulates q under (name, unit). Blank names are ignored and
// negative quantities count as zero.
func (a *Accumulator) Add(name, unit string, q float64) {
	if textkey.Blank(name) {
		return
	}
	q = max(q, 0)
	key := textkey.Pair(name, unit)
	if i, ok := a.index[key]; ok {
		a.lines[i].Quantity += q
		return
	}
	a.index[key] = len(a.lines)
	a.lines = append(a.lines, Line{
		Name:     strings.TrimSpace(name),
		Unit:     strings.TrimSpace(unit),
		Quantity: q,
	})
}

// Merge adds every line of b.
func (a *Accumulator) Merge(b *Accumulator) {
	if b == nil {
		return
	}
	for _, l := range b.lines {
		a.Add(l.Name, l.Unit, l.Quantity)
	}
}

// Get returns the total for (name, unit).
func (a *Accumulator) Get(name, unit string) float64 {
	if i, ok := a.index[textkey.Pair(name, unit)]; ok {
		return a.lines[i].Quantity
	}
	return 0
}

// Lines returns a copy of the totals in first-seen order.
func (a *Accumulator) Lines() []Line {
	out := make([]Line, len(a.lines))
	copy(out, a.lines)
	return out
}

// Len reports the number of distinct lines.
func (a *Accumulator) Len() int { return len(a.lines) }

// nameSet collects distinct non-blank names by key, keeping first-seen spelling.
type nameSet struct {
	seen  map[string]bool
	names []string
}

func (s *nameSet) add(name string) {
	key := textkey.Key(name)
	if key == "" {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.names = append(s.names, strings.TrimSpace(name))
}
