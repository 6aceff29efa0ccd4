package export

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
)

// Supported file formats.
const (
	FormatArrow = "arrow"
	FormatCSV   = "csv"
)

// ResolveFormat picks the output format for path: an explicit format wins,
// then the file extension, then the configured default. An empty result
// falls back to Arrow.
func ResolveFormat(path, explicit, configured string) (string, error) {
	format := explicit
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			format = FormatCSV
		case ".arrow", ".ipc", ".feather":
			format = FormatArrow
		default:
			format = configured
		}
	}
	switch format {
	case FormatArrow, FormatCSV:
		return format, nil
	case "":
		return FormatArrow, nil
	default:
		return "", fmt.Errorf("invalid format: %s (valid: arrow, csv)", format)
	}
}

// Extension returns the file extension written for format, dot included.
func Extension(format string) string {
	if format == FormatCSV {
		return ".csv"
	}
	return ".arrow"
}

// WriteFile writes tab to path in format. Metadata is kept only by Arrow.
func WriteFile(path, format string, tab series.Table, meta map[string]string) error {
	switch format {
	case FormatCSV:
		return WriteCSVFile(path, tab)
	case FormatArrow:
		return WriteArrow(path, tab, Options{Metadata: meta})
	default:
		return fmt.Errorf("invalid format: %s (valid: arrow, csv)", format)
	}
}

// RunMetadata builds the schema metadata attached to an exported run. An
// empty name is omitted.
func RunMetadata(kind, name string, seed uint64) map[string]string {
	meta := map[string]string{
		"kind": kind,
		"seed": strconv.FormatUint(seed, 10),
	}
	if name != "" {
		meta["name"] = name
	}
	return meta
}
