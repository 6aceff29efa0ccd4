package main

import (
	"fmt"
	"io"
	"sort"
)

// printSummary writes summary as aligned "key: value" lines in key order.
func printSummary(w io.Writer, summary map[string]float64) {
	keys := make([]string, 0, len(summary))
	width := 0
	for k := range summary {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-*s  %g\n", width+1, k+":", summary[k])
	}
}
