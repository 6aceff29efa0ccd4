package export

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
)

func sampleTable() series.Table {
	return series.Table{
		{Name: "time", Values: []float64{0, 1e-5, 2e-5, 3e-5}},
		{Name: "potential", Values: []float64{-0.4, -0.366, -0.332, -0.298}},
		{Name: "current", Values: []float64{-1.5e7, math.Inf(1), math.NaN(), 0}},
	}
}

func sameValue(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}

func TestWriteReadArrow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.arrow")
	tab := sampleTable()
	meta := map[string]string{"kind": "fscv", "seed": "42"}

	if err := WriteArrow(path, tab, Options{Metadata: meta}); err != nil {
		t.Fatalf("WriteArrow() error = %v", err)
	}

	got, gotMeta, err := ReadArrow(path, Options{})
	if err != nil {
		t.Fatalf("ReadArrow() error = %v", err)
	}
	if len(got) != len(tab) {
		t.Fatalf("read %d columns, want %d", len(got), len(tab))
	}
	for c := range tab {
		if got[c].Name != tab[c].Name {
			t.Errorf("column %d name = %q, want %q", c, got[c].Name, tab[c].Name)
		}
		if len(got[c].Values) != len(tab[c].Values) {
			t.Fatalf("column %s has %d values, want %d", tab[c].Name, len(got[c].Values), len(tab[c].Values))
		}
		for i := range tab[c].Values {
			if !sameValue(got[c].Values[i], tab[c].Values[i]) {
				t.Errorf("%s[%d] = %v, want %v", tab[c].Name, i, got[c].Values[i], tab[c].Values[i])
			}
		}
	}
	if gotMeta["kind"] != "fscv" || gotMeta["seed"] != "42" {
		t.Errorf("metadata = %v", gotMeta)
	}
}

func TestWriteArrow_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.arrow")
	ragged := series.Table{
		{Name: "time", Values: []float64{0, 1}},
		{Name: "current", Values: []float64{0}},
	}
	if err := WriteArrow(path, ragged, Options{}); err == nil {
		t.Error("WriteArrow() should reject ragged columns")
	}
	if err := WriteArrow(path, nil, Options{}); err == nil {
		t.Error("WriteArrow() should reject an empty table")
	}
}

func TestReadArrow_Missing(t *testing.T) {
	if _, _, err := ReadArrow(filepath.Join(t.TempDir(), "missing.arrow"), Options{}); err == nil {
		t.Error("ReadArrow() should fail for a missing file")
	}
}

func TestNewRecord(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec, err := NewRecord(mem, sampleTable(), nil)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	defer rec.Release()

	if rec.NumRows() != 4 || rec.NumCols() != 3 {
		t.Errorf("record shape = %d x %d, want 4 x 3", rec.NumRows(), rec.NumCols())
	}
	for _, f := range rec.Schema().Fields() {
		if f.Type.ID() != arrow.FLOAT64 {
			t.Errorf("field %s type = %s, want float64", f.Name, f.Type)
		}
	}
	if rec.Schema().HasMetadata() {
		t.Error("schema should carry no metadata when none is given")
	}
}

func TestSchema_MetadataSorted(t *testing.T) {
	s := Schema(sampleTable(), map[string]string{"seed": "1", "kind": "fscv", "id": "x"})
	keys := s.Metadata().Keys()
	want := []string{"id", "kind", "seed"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys = %v, want %v", keys, want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	tab := series.Table{
		{Name: "time", Values: []float64{0, 0.1}},
		{Name: "dopamine", Values: []float64{1, 0.99999}},
	}
	if err := WriteCSV(&buf, tab); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	want := "time,dopamine\n0,1\n0.1,0.99999\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	tab := sampleTable()
	if err := WriteCSV(&buf, tab); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	for c := range tab {
		for i := range tab[c].Values {
			if !sameValue(got[c].Values[i], tab[c].Values[i]) {
				t.Errorf("%s[%d] = %v, want %v", tab[c].Name, i, got[c].Values[i], tab[c].Values[i])
			}
		}
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not a number", "time\nfast\n"},
		{"ragged", "a,b\n1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadCSV() should fail")
			}
		})
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	if err := WriteCSVFile(path, sampleTable()); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}
	if err := WriteCSVFile(filepath.Join(t.TempDir(), "missing", "run.csv"), sampleTable()); err == nil {
		t.Error("WriteCSVFile() should fail for a missing directory")
	}
}
