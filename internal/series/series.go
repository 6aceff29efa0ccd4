// Package series defines the named, equal-length numeric columns a run hands
// to storage and export.
package series

import "fmt"

// Column is one named sequence indexed by time sample.
type Column struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Table is an ordered set of columns.
type Table []Column

// Validate checks that the table is non-empty, names are unique and
// non-empty, and every column has the same length.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("series table has no columns")
	}
	seen := make(map[string]bool, len(t))
	n := len(t[0].Values)
	for _, c := range t {
		if c.Name == "" {
			return fmt.Errorf("series column has empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate series column %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Values) != n {
			return fmt.Errorf("series column %q has %d samples, want %d", c.Name, len(c.Values), n)
		}
	}
	return nil
}

// Rows returns the common column length (0 for an empty table).
func (t Table) Rows() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0].Values)
}

// Get returns the column with the given name.
func (t Table) Get(name string) (Column, bool) {
	for _, c := range t {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in order.
func (t Table) Names() []string {
	out := make([]string, len(t))
	for i, c := range t {
		out[i] = c.Name
	}
	return out
}
