// Package storage defines the file-system abstraction over an unpacked
// presentation package.
package storage

import "regexp"

// Provider is the interface for package part operations. All paths are
// slash-separated and relative to the package root.
type Provider interface {
	// Root returns the absolute package root.
	Root() string
	// List returns the path of every file directly in dir whose base name
	// matches pattern, sorted. A missing dir yields no parts.
	List(dir string, pattern *regexp.Regexp) ([]string, error)
	// Read returns the raw bytes of the part at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the part at path with content.
	Write(path string, content []byte) error
}
