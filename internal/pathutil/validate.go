// Package pathutil confines file writes requested over MCP to directories
// under the dopasim data directory.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportsDirName is the directory under the data directory that receives
// files written by MCP clients.
const ExportsDirName = "exports"

// ErrOutside is wrapped when a path escapes every allowed directory.
var ErrOutside = errors.New("path is outside allowed directories")

// ExportDir returns the exports directory for dataDir.
func ExportDir(dataDir string) string {
	return filepath.Join(dataDir, ExportsDirName)
}

// RedactPath shortens path to .../<parent>/<base> for error messages, so
// home directories and user names are not echoed back to clients.
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	base := filepath.Base(cleaned)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// ValidatePath reports whether path lies inside one of allowedDirs after
// cleaning it and resolving symlinks on its deepest existing ancestor. The
// target itself need not exist.
func ValidatePath(path string, allowedDirs []string) error {
	switch {
	case path == "":
		return fmt.Errorf("invalid path: empty")
	case len(allowedDirs) == 0:
		return fmt.Errorf("invalid path: no allowed directories")
	case strings.ContainsRune(path, '\x00'):
		return fmt.Errorf("invalid path: contains null byte")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	resolvedDir, err := resolveExistingParent(filepath.Dir(absPath))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	resolved := filepath.Join(resolvedDir, filepath.Base(absPath))

	for _, allowed := range allowedDirs {
		allowedAbs, err := filepath.Abs(filepath.Clean(allowed))
		if err != nil {
			continue
		}
		allowedResolved, err := resolveExistingParent(allowedAbs)
		if err != nil {
			continue
		}
		if isSubpath(resolved, allowedResolved) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrOutside, RedactPath(absPath))
}

// ResolveIn turns name into a path inside dir. Relative names are joined to
// dir; absolute names are accepted only when they already lie inside it.
func ResolveIn(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("invalid path: empty")
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}
	if err := ValidatePath(path, []string{dir}); err != nil {
		return "", err
	}
	if filepath.Clean(path) == filepath.Clean(dir) {
		return "", fmt.Errorf("invalid path: %q is a directory", RedactPath(path))
	}
	return path, nil
}

// resolveExistingParent evaluates symlinks on the deepest ancestor of dir
// that exists and re-appends the missing tail.
func resolveExistingParent(dir string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		return resolved, nil
	}
	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve %s", RedactPath(dir))
	}
	resolvedParent, err := resolveExistingParent(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(dir)), nil
}

// isSubpath reports whether path equals base or lies below it.
func isSubpath(path, base string) bool {
	return path == base || strings.HasPrefix(path, base+string(os.PathSeparator))
}
