package simulation

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/logging"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/simerr"
)

func TestRunCottrell_Default(t *testing.T) {
	s := DefaultCottrellScenario()
	res, err := NewRunner(nil, nil).RunCottrell(s)
	if err != nil {
		t.Fatalf("RunCottrell() error = %v", err)
	}

	AssertLength(t, 1000, map[string][]float64{
		"times":     res.Times,
		"potential": res.Potential,
		"current":   res.Current,
		"kinetic":   res.Kinetic,
		"diffusion": res.Diffusion,
	})
	if res.Times[0] != 0 || res.Times[999] != 2 {
		t.Errorf("grid spans [%v, %v], want [0, 2]", res.Times[0], res.Times[999])
	}
	if res.Potential[0] != -0.5 || res.Potential[999] != -0.5 {
		t.Errorf("potential endpoints = %v, %v, want -0.5", res.Potential[0], res.Potential[999])
	}
	for i, e := range res.Potential {
		if e > 0.5 {
			t.Fatalf("potential[%d] = %v exceeds the vertex", i, e)
		}
	}
	for i := range res.Times {
		if res.Current[i] != res.Kinetic[i]+res.Diffusion[i] {
			t.Fatalf("current[%d] = %v, want kinetic + diffusion", i, res.Current[i])
		}
	}

	// t = 0 uses the 1 us floor: 1e-7/sqrt(1e-6) A = 1e-4 A = 100 uA.
	if got := res.Diffusion[0]; math.Abs(got-100) > 1e-9 {
		t.Errorf("diffusion[0] = %v uA, want 100", got)
	}
	if got, want := res.Diffusion[999], 1e-7/math.Sqrt(2)*1e6; math.Abs(got-want) > 1e-12 {
		t.Errorf("diffusion[999] = %v uA, want %v", got, want)
	}
	if res.NonFinite != 0 {
		t.Errorf("NonFinite = %d, want 0", res.NonFinite)
	}
	if res.Summary["samples"] != 1000 || res.Summary["max_kinetic"] <= 0 || res.Summary["min_kinetic"] >= 0 {
		t.Errorf("summary = %v", res.Summary)
	}
}

func TestRunCottrell_Deterministic(t *testing.T) {
	r := NewRunner(nil, nil)
	a, err := r.RunCottrell(DefaultCottrellScenario())
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.RunCottrell(DefaultCottrellScenario())
	if err != nil {
		t.Fatal(err)
	}
	AssertIdentical(t, "current", a.Current, b.Current)
}

func TestRunCottrell_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CottrellScenario)
	}{
		{"zero total", func(s *CottrellScenario) { s.Scan.Total = 0 }},
		{"one point", func(s *CottrellScenario) { s.Points = 1 }},
		{"too many points", func(s *CottrellScenario) { s.Points = constants.MaxGridSamples + 1 }},
		{"zero i0", func(s *CottrellScenario) { s.Current.I0 = 0 }},
		{"alpha above one", func(s *CottrellScenario) { s.Current.Alpha = 1.5 }},
		{"negative k", func(s *CottrellScenario) { s.Current.K = -1 }},
		{"infinite start", func(s *CottrellScenario) { s.Scan.Start = math.Inf(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultCottrellScenario()
			tt.mutate(&s)
			_, err := NewRunner(nil, nil).RunCottrell(s)
			if !errors.Is(err, simerr.ErrInvalidParameter) {
				t.Errorf("RunCottrell() error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestRunCottrell_Trace(t *testing.T) {
	dir := t.TempDir()
	rt := logging.NewRunTrace(dir, "debug")
	defer rt.Close()

	if _, err := NewRunner(nil, rt).RunCottrell(DefaultCottrellScenario()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, logging.TraceFile))
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("trace has %d lines, want 2", len(lines))
	}
	for i, want := range []string{"run_started", "run_finished"} {
		var entry map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil {
			t.Fatal(err)
		}
		if entry["event"] != want || entry["kind"] != "cottrell" {
			t.Errorf("line %d = %v", i, entry)
		}
	}
}

func TestCottrellResult_Record(t *testing.T) {
	s := DefaultCottrellScenario()
	s.Name = "slow scan/1"
	res, err := NewRunner(nil, nil).RunCottrell(s)
	if err != nil {
		t.Fatal(err)
	}
	run, err := res.Record(s)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if run.Kind != constants.RunKindCottrell || run.Seed != 0 {
		t.Errorf("kind %q seed %d", run.Kind, run.Seed)
	}
	if run.Name != "slow-scan1" {
		t.Errorf("Name = %q", run.Name)
	}
	if len(run.Series) != 5 || run.Series[4].Name != "diffusion" {
		t.Errorf("series = %d columns", len(run.Series))
	}
	var back CottrellScenario
	if err := json.Unmarshal(run.Params, &back); err != nil {
		t.Fatal(err)
	}
	if back != s {
		t.Errorf("params round trip = %+v, want %+v", back, s)
	}
}
