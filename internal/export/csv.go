package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
)

// WriteCSV writes tab with a header row of column names and one row per
// sample. Values use the shortest representation that round-trips.
func WriteCSV(w io.Writer, tab series.Table) error {
	if err := tab.Validate(); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(tab.Names()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, len(tab))
	for i := 0; i < tab.Rows(); i++ {
		for c, col := range tab {
			row[c] = strconv.FormatFloat(col.Values[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes tab to a CSV file at path.
func WriteCSVFile(path string, tab series.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	if err := WriteCSV(f, tab); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses a file produced by WriteCSV.
func ReadCSV(r io.Reader) (series.Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header")
	}

	header := records[0]
	tab := make(series.Table, len(header))
	for c, name := range header {
		tab[c] = series.Column{Name: name, Values: make([]float64, 0, len(records)-1)}
	}
	for i, rec := range records[1:] {
		for c, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+1, header[c], err)
			}
			tab[c].Values = append(tab[c].Values, v)
		}
	}
	return tab, tab.Validate()
}
