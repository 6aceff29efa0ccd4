package events

import "fmt"

// Policy decides what happens when several events land on the same index.
type Policy string

const (
	// PolicySum adds every colliding magnitude.
	PolicySum Policy = "sum"

	// PolicyFirst applies only the earliest event at an index; later
	// collisions are dropped.
	PolicyFirst Policy = "first"
)

// ParsePolicy maps a name to a Policy. The empty string selects PolicySum.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicySum:
		return PolicySum, nil
	case PolicyFirst:
		return PolicyFirst, nil
	}
	return "", fmt.Errorf("unknown collision policy %q (valid: sum, first)", s)
}

// Table is a read-only index -> pulse lookup used by the integrator.
type Table struct {
	pulses  map[int]float64
	applied map[int]int
}

// NewTable folds events into per-index pulses according to policy.
func NewTable(evs []Event, policy Policy) *Table {
	t := &Table{
		pulses:  make(map[int]float64, len(evs)),
		applied: make(map[int]int, len(evs)),
	}
	for _, ev := range evs {
		if _, seen := t.pulses[ev.Index]; seen && policy == PolicyFirst {
			continue
		}
		t.pulses[ev.Index] += ev.Magnitude
		t.applied[ev.Index]++
	}
	return t
}

// Pulse returns the total magnitude to add after step i and how many events
// contributed. A nil Table has no pulses.
func (t *Table) Pulse(i int) (float64, int) {
	if t == nil {
		return 0, 0
	}
	return t.pulses[i], t.applied[i]
}

// Len returns the number of distinct indices carrying a pulse.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.pulses)
}

// Collisions returns the number of events that share an index with an
// earlier event.
func Collisions(evs []Event) int {
	seen := make(map[int]bool, len(evs))
	n := 0
	for _, ev := range evs {
		if seen[ev.Index] {
			n++
		}
		seen[ev.Index] = true
	}
	return n
}
