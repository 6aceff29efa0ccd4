package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

func testArchive(t *testing.T) *Archive {
	t.Helper()
	run := testRun("run-a", constants.RunKindFSCV, 0)
	return &Archive{
		Version:   FormatVersion,
		CreatedAt: baseTime,
		Metadata:  map[string]string{"host": "lab"},
		Runs:      []ArchivedRun{newArchivedRun(&run)},
	}
}

func TestWriteReadArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bak")
	if err := WriteArchive(path, testArchive(t)); err != nil {
		t.Fatalf("WriteArchive() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 600", perm)
	}

	a, err := ReadArchive(path)
	if err != nil {
		t.Fatalf("ReadArchive() error = %v", err)
	}
	if len(a.Runs) != 1 || a.Metadata["host"] != "lab" || !a.CreatedAt.Equal(baseTime) {
		t.Errorf("archive = %+v", a)
	}
	run, err := a.Runs[0].Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := store.ValidateRun(run); err != nil {
		t.Errorf("decoded run is invalid: %v", err)
	}
	want := testRun("run-a", constants.RunKindFSCV, 0)
	if !sameBits(run.Series[1].Values, want.Series[1].Values) {
		t.Errorf("values = %v, want %v", run.Series[1].Values, want.Series[1].Values)
	}
}

func TestReadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bak")
	if err := WriteArchive(path, testArchive(t)); err != nil {
		t.Fatalf("WriteArchive() error = %v", err)
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if h.Version != FormatVersion || h.RunCount != 1 || h.Samples != 3 {
		t.Errorf("header = %+v", h)
	}
	if !strings.HasPrefix(h.Checksum, "sha256:") {
		t.Errorf("checksum = %q", h.Checksum)
	}
}

func TestVerifyChecksum_Tampered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bak")
	if err := WriteArchive(path, testArchive(t)); err != nil {
		t.Fatalf("WriteArchive() error = %v", err)
	}
	if err := VerifyChecksum(path); err != nil {
		t.Fatalf("VerifyChecksum() on an intact file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	data[len(data)-5] ^= 0xff
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := VerifyChecksum(path); err == nil || !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("VerifyChecksum() error = %v, want checksum mismatch", err)
	}
	if _, err := ReadArchive(path); err == nil {
		t.Error("ReadArchive() accepted a tampered file")
	}
}

func TestReadArchive_BadInput(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"no header line", []byte(`{"version":1}`)},
		{"wrong version", []byte("{\"version\":7,\"checksum\":\"sha256:00\"}\npayload")},
		{"not json", []byte("hello\nworld")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".bak")
			if err := os.WriteFile(path, tt.content, 0600); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := ReadArchive(path); err == nil {
				t.Error("ReadArchive() expected error")
			}
			if _, err := ReadHeader(path); err == nil {
				t.Error("ReadHeader() expected error")
			}
		})
	}
}

func TestReadArchive_RunCountMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bak")
	if err := WriteArchive(path, testArchive(t)); err != nil {
		t.Fatalf("WriteArchive() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	data = bytes.Replace(data, []byte(`"run_count":1`), []byte(`"run_count":2`), 1)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := ReadArchive(path); err == nil || !strings.Contains(err.Error(), "header says 2") {
		t.Errorf("ReadArchive() error = %v", err)
	}
}
