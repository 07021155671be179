package fontfix

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/beevik/etree"

	"github.com/starford/fontfix/internal/ooxml"
	"github.com/starford/fontfix/internal/storage"
	"github.com/starford/fontfix/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testRewriter(t *testing.T, store storage.Provider, opts Options) (*Rewriter, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts.Logger = testLogger()
	opts.Out = &out
	return New(store, opts), &out
}

func emptyPackage(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

func parsePart(t *testing.T, root, rel string) *etree.Document {
	t.Helper()
	doc, err := ooxml.Parse([]byte(testutil.ReadPart(t, root, rel)))
	if err != nil {
		t.Fatalf("parse %s: %v", rel, err)
	}
	return doc
}

// runTypefaces lists the latin, ea and cs typefaces at or below el in
// document order.
func runTypefaces(el *etree.Element) []string {
	var out []string
	switch ooxml.ClassifyRole(el) {
	case ooxml.RoleLatin, ooxml.RoleEastAsian, ooxml.RoleComplexScript:
		out = append(out, el.SelectAttrValue(ooxml.AttrTypeface, ""))
	}
	for _, c := range el.ChildElements() {
		out = append(out, runTypefaces(c)...)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
