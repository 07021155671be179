package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/fontfix/internal"
	"github.com/starford/fontfix/internal/fontfix"
	pkgconfig "github.com/starford/fontfix/pkg/config"
)

type entrypoint func(ctx context.Context, opts ...internal.Option) error

// loadConfig builds the config from defaults, the optional YAML file and
// the command-line flags, in that order of precedence.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	configPath := cmd.String("config")
	found, err := pkgconfig.DecodeOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found && cmd.IsSet("config") {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	if root := cmd.Args().First(); root != "" {
		cfg.Package.Root = root
	}
	if cmd.IsSet("root") {
		cfg.Package.Root = cmd.String("root")
	}
	if cmd.IsSet("major") {
		cfg.Fonts.Major = cmd.String("major")
	}
	if cmd.IsSet("minor") {
		cfg.Fonts.Minor = cmd.String("minor")
	}
	if cmd.IsSet("bullet-font") {
		cfg.Fonts.Bullet = cmd.String("bullet-font")
	}
	if cmd.IsSet("major-bold") {
		cfg.Fonts.MajorBold = cmd.Bool("major-bold")
	}
	if cmd.IsSet("minor-bold") {
		cfg.Fonts.MinorBold = cmd.Bool("minor-bold")
	}
	if cmd.IsSet("slide-mode") {
		cfg.Fonts.SlideMode = cmd.String("slide-mode")
	}
	if cmd.IsSet("pass") {
		cfg.Run.Passes = cmd.StringSlice("pass")
	}
	if cmd.IsSet("continue-on-error") {
		cfg.Run.ContinueOnError = cmd.Bool("continue-on-error")
	}
	if cmd.IsSet("workers") {
		cfg.Run.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("quiet") {
		cfg.Run.Quiet = cmd.Bool("quiet")
	}
	return cfg, nil
}

// action adapts an internal entry point to a CLI action. A non-empty
// passes list restricts the run to those passes.
func action(run entrypoint, passes ...string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(passes) > 0 {
			cfg.Run.Passes = passes
		}
		if err := run(ctx, internal.WithConfig(cfg)); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:      "fontfix",
		Usage:     "Rewrite theme, master and slide fonts of an unpacked presentation package",
		ArgsUsage: "[package-root]",
		Action:    action(internal.Run),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Unpacked package directory (the one containing ppt/)",
				Sources: cli.EnvVars("FONTFIX_PACKAGE_ROOT"),
			},
			&cli.StringFlag{
				Name:    "major",
				Usage:   "Major (heading) font family",
				Sources: cli.EnvVars("FONTFIX_MAJOR_FONT"),
			},
			&cli.StringFlag{
				Name:    "minor",
				Usage:   "Minor (body) font family",
				Sources: cli.EnvVars("FONTFIX_MINOR_FONT"),
			},
			&cli.StringFlag{
				Name:  "bullet-font",
				Usage: "Typeface for master body bullets",
				Value: fontfix.DefaultBulletFont,
			},
			&cli.BoolFlag{
				Name:  "major-bold",
				Usage: "Bold the master title style",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "minor-bold",
				Usage: "Bold the master body style",
			},
			&cli.StringFlag{
				Name:  "slide-mode",
				Usage: "Slide override replacement: theme or explicit",
				Value: string(fontfix.SlideModeTheme),
			},
			&cli.StringSliceFlag{
				Name:  "pass",
				Usage: "Pass to run (theme, master, slides); repeatable",
			},
			&cli.BoolFlag{
				Name:  "continue-on-error",
				Usage: "Process every part and report all failures instead of stopping at the first",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Parts processed concurrently",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not print font scheme listings",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "theme",
				Usage:     "Rebuild the theme font schemes",
				ArgsUsage: "[package-root]",
				Action:    action(internal.Run, fontfix.PassTheme),
			},
			{
				Name:      "master",
				Usage:     "Normalize default, title and body text styles",
				ArgsUsage: "[package-root]",
				Action:    action(internal.Run, fontfix.PassMaster),
			},
			{
				Name:      "slides",
				Usage:     "Replace per-run font overrides on slides and layouts",
				ArgsUsage: "[package-root]",
				Action:    action(internal.Run, fontfix.PassSlides),
			},
			{
				Name:      "inspect",
				Usage:     "Print the theme font schemes without changing anything",
				ArgsUsage: "[package-root]",
				Action:    action(internal.Inspect),
			},
			{
				Name:      "watch",
				Usage:     "Apply the passes, then re-apply them whenever a part changes",
				ArgsUsage: "[package-root]",
				Action:    action(internal.Watch),
			},
			{
				Name:      "mcp",
				Usage:     "Serve the passes as MCP tools over stdio",
				ArgsUsage: "[package-root]",
				Action:    action(internal.ServeMCP),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
