package internal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/fontfix/internal/apperr"
	"github.com/starford/fontfix/internal/testutil"
)

func TestRun_RewritesPackage(t *testing.T) {
	root, _ := testutil.TestPackage(t)
	cfg := validConfig()
	cfg.Package.Root = root
	cfg.App.LogLevel = slog.LevelError

	var out bytes.Buffer
	if err := Run(context.Background(), WithConfig(cfg), WithStdout(&out)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	theme := testutil.ReadPart(t, root, "ppt/theme/theme1.xml")
	if !strings.Contains(theme, `<a:sym typeface="Pretendard"/>`) {
		t.Errorf("theme not rewritten:\n%s", theme)
	}
	if !strings.Contains(out.String(), "Current font scheme:") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestRun_Quiet(t *testing.T) {
	root, _ := testutil.TestPackage(t)
	cfg := validConfig()
	cfg.Package.Root = root
	cfg.App.LogLevel = slog.LevelError
	cfg.Run.Quiet = true

	var out bytes.Buffer
	if err := Run(context.Background(), WithConfig(cfg), WithStdout(&out)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("quiet run wrote %q", out.String())
	}
}

func TestRun_ReportsPartFailure(t *testing.T) {
	root, _ := testutil.TestPackage(t)
	testutil.WritePart(t, root, "ppt/theme/theme2.xml", testutil.ThemeWithoutFontSchemeXML)
	cfg := validConfig()
	cfg.Package.Root = root
	cfg.App.LogLevel = slog.LevelError

	err := Run(context.Background(), WithConfig(cfg), WithStdout(&bytes.Buffer{}))
	if !errors.Is(err, apperr.ErrSchemaViolation) {
		t.Fatalf("err = %v, want ErrSchemaViolation", err)
	}
	if !strings.Contains(err.Error(), "ppt/theme/theme2.xml") {
		t.Errorf("error does not name the part: %v", err)
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Error("expected error without config")
	}
}

func TestRun_MissingPackage(t *testing.T) {
	cfg := validConfig()
	cfg.Package.Root = t.TempDir() + "/absent"
	cfg.App.LogLevel = slog.LevelError
	err := Run(context.Background(), WithConfig(cfg))
	if !errors.Is(err, apperr.ErrInvalidPackage) {
		t.Errorf("err = %v, want ErrInvalidPackage", err)
	}
}

func TestInspect_NoFontsNeeded(t *testing.T) {
	root, _ := testutil.TestPackage(t)
	cfg := NewDefaultConfig()
	cfg.Package.Root = root
	cfg.App.LogLevel = slog.LevelError

	var out bytes.Buffer
	if err := Inspect(context.Background(), WithConfig(cfg), WithStdout(&out)); err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !strings.Contains(out.String(), "ppt/theme/theme1.xml: (name=\"Office\")") {
		t.Errorf("stdout = %q", out.String())
	}
	if testutil.ReadPart(t, root, "ppt/theme/theme1.xml") != testutil.ThemeXML("Office", "Calibri Light", "Calibri") {
		t.Error("Inspect modified the theme")
	}
}
