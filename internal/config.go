package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/fontfix/internal/fontfix"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Package PackageConfig     `yaml:"package"`
	Fonts   FontsConfig       `yaml:"fonts"`
	Run     RunConfig         `yaml:"run"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Package.Validate(); err != nil {
		return err
	}
	if err := c.Fonts.Validate(); err != nil {
		return err
	}
	if err := c.Run.Validate(); err != nil {
		return err
	}
	return c.Plan().Validate()
}

// Plan converts the font and run settings into a rewrite plan.
func (c *Config) Plan() fontfix.Plan {
	return fontfix.Plan{
		Passes: c.Run.Passes,
		Major:  c.Fonts.Major,
		Minor:  c.Fonts.Minor,
		Master: fontfix.MasterOptions{
			BulletFont: c.Fonts.Bullet,
			MajorBold:  c.Fonts.MajorBold,
			MinorBold:  c.Fonts.MinorBold,
		},
		Slides: fontfix.SlideOptions{
			Mode:  fontfix.SlideMode(c.Fonts.SlideMode),
			Major: c.Fonts.Major,
			Minor: c.Fonts.Minor,
		},
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// PackageConfig points at the unpacked presentation package.
type PackageConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the package configuration.
func (c *PackageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// FontsConfig holds the target fonts and style flags.
//
// Major and Minor are required by the theme pass and by the slide pass in
// "explicit" mode; the master pass only writes theme tokens.
type FontsConfig struct {
	Major     string `yaml:"major"`
	Minor     string `yaml:"minor"`
	Bullet    string `yaml:"bullet"`
	MajorBold bool   `yaml:"major_bold"`
	MinorBold bool   `yaml:"minor_bold"`
	SlideMode string `yaml:"slide_mode"`
}

// Validate validates the fonts configuration.
func (c *FontsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Bullet, validation.Required),
		validation.Field(&c.SlideMode, validation.Required,
			validation.In(string(fontfix.SlideModeTheme), string(fontfix.SlideModeExplicit))),
	)
}

// RunConfig controls which passes run and how failures are handled.
type RunConfig struct {
	Passes          []string `yaml:"passes"`
	ContinueOnError bool     `yaml:"continue_on_error"`
	Workers         int      `yaml:"workers"`
	Quiet           bool     `yaml:"quiet"`
}

// Validate validates the run configuration.
func (c *RunConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Passes, validation.Required,
			validation.Each(validation.In(fontfix.PassTheme, fontfix.PassMaster, fontfix.PassSlides))),
		validation.Field(&c.Workers, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Package: PackageConfig{
			Root: ".",
		},
		Fonts: FontsConfig{
			Bullet:    fontfix.DefaultBulletFont,
			MajorBold: true,
			SlideMode: string(fontfix.SlideModeTheme),
		},
		Run: RunConfig{
			Passes:  append([]string(nil), fontfix.AllPasses...),
			Workers: 1,
		},
	}
}
