package storage

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/starford/fontfix/internal/apperr"
)

var themeRe = regexp.MustCompile(`^theme\d+\.xml$`)

func tempPackage(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempPackage(t)
	content := []byte(`<?xml version="1.0"?><a:theme/>`)
	if err := s.Write("ppt/theme/theme1.xml", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("ppt/theme/theme1.xml")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestListMatchesPatternOnly(t *testing.T) {
	s := tempPackage(t)
	for _, name := range []string{"theme1.xml", "theme10.xml", "theme2.xml", "theme_backup.xml", "notatheme10.xml", "theme3.xml.bak"} {
		_ = s.Write("ppt/theme/"+name, []byte("<x/>"))
	}
	_ = s.Write("ppt/theme/nested/theme4.xml", []byte("<x/>"))

	items, err := s.List("ppt/theme", themeRe)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"ppt/theme/theme1.xml", "ppt/theme/theme10.xml", "ppt/theme/theme2.xml"}
	if len(items) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(items), len(want), items)
	}
	for i, it := range items {
		if it != want[i] {
			t.Errorf("items[%d] = %q, want %q", i, it, want[i])
		}
	}
}

func TestListMissingDir(t *testing.T) {
	s := tempPackage(t)
	items, err := s.List("ppt/theme", themeRe)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len = %d, want 0", len(items))
	}
}

func TestReadMissingIsIOFailure(t *testing.T) {
	s := tempPackage(t)
	_, err := s.Read("ppt/theme/theme9.xml")
	if !errors.Is(err, apperr.ErrIOFailure) {
		t.Errorf("err = %v, want ErrIOFailure", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist in chain", err)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempPackage(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.xml",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteKeepsModeAndLeavesNoTemp(t *testing.T) {
	s := tempPackage(t)
	_ = s.Write("ppt/theme/theme1.xml", []byte("original"))
	abs := filepath.Join(s.root, "ppt", "theme", "theme1.xml")
	if err := os.Chmod(abs, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := s.Write("ppt/theme/theme1.xml", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("ppt/theme/theme1.xml")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	info, err := os.Stat(abs)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, "ppt", "theme", tempPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestIsTemp(t *testing.T) {
	if !IsTemp("/x/ppt/theme/" + tempPrefix + "123") {
		t.Error("temp file not recognised")
	}
	if IsTemp("/x/ppt/theme/theme1.xml") {
		t.Error("theme part reported as temp")
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/fontfix-does-not-exist-" + t.Name())
	if !errors.Is(err, apperr.ErrInvalidPackage) {
		t.Errorf("err = %v, want ErrInvalidPackage", err)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "fontfix-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestChecksum(t *testing.T) {
	if Checksum([]byte("<x/>")) != Checksum([]byte("<x/>")) {
		t.Error("checksum not stable")
	}
	if Checksum([]byte("<x/>")) == Checksum([]byte("<y/>")) {
		t.Error("different content, same checksum")
	}
}
