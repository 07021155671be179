package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/starford/fontfix/internal/apperr"
)

const tempPrefix = ".fontfix-tmp-"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to package root
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: storage: stat root: %w", apperr.ErrInvalidPackage, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: storage: root is not a directory: %s", apperr.ErrInvalidPackage, abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute package root.
func (f *FS) Root() string { return f.root }

// IsTemp reports whether name is a temporary file left by Write.
func IsTemp(name string) bool {
	return strings.HasPrefix(filepath.Base(name), tempPrefix)
}

// safePath resolves a relative path against the package root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes package root: %s", rel)
	}
	return abs, nil
}

// List reads dir (one level, no recursion) and returns the path of each
// regular file whose name matches pattern. Parts are not opened.
func (f *FS) List(dir string, pattern *regexp.Regexp) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, apperr.IO(fmt.Errorf("storage: list %s: %w", dir, err))
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !pattern.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, apperr.IO(fmt.Errorf("storage: stat %s: %w", e.Name(), err))
		}
		if !info.Mode().IsRegular() {
			continue
		}
		out = append(out, path.Join(filepath.ToSlash(dir), e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Read returns the raw bytes of a package part.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, apperr.IO(fmt.Errorf("storage: read %s: %w", path, err))
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename. The file
// mode of an existing part is kept.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(abs); statErr == nil {
		mode = info.Mode().Perm()
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.IO(fmt.Errorf("storage: mkdir: %w", err))
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return apperr.IO(fmt.Errorf("storage: create temp: %w", err))
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return apperr.IO(fmt.Errorf("storage: write temp: %w", err))
	}
	if err := tmp.Chmod(mode); err != nil {
		return apperr.IO(fmt.Errorf("storage: chmod temp: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return apperr.IO(fmt.Errorf("storage: fsync: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return apperr.IO(fmt.Errorf("storage: close temp: %w", err))
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return apperr.IO(fmt.Errorf("storage: rename: %w", err))
	}
	success = true
	return nil
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
