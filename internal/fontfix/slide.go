package fontfix

import (
	"context"
	"fmt"
	"io"

	"github.com/beevik/etree"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/fontfix/internal/apperr"
	"github.com/starford/fontfix/internal/models"
	"github.com/starford/fontfix/internal/ooxml"
)

// SlideMode chooses what slide run overrides are replaced with.
type SlideMode string

const (
	// SlideModeTheme replaces overrides with theme tokens (+mj-lt, +mn-ea, ...).
	SlideModeTheme SlideMode = "theme"
	// SlideModeExplicit replaces overrides with the major or minor font name.
	SlideModeExplicit SlideMode = "explicit"
)

// SlideOptions configures the slide pass.
type SlideOptions struct {
	Mode  SlideMode
	Major string // used by SlideModeExplicit
	Minor string // used by SlideModeExplicit
}

// Validate checks the mode and, for explicit mode, the font names.
func (o SlideOptions) Validate() error {
	explicit := o.Mode == SlideModeExplicit
	if err := validation.ValidateStruct(&o,
		validation.Field(&o.Mode, validation.Required, validation.In(SlideModeTheme, SlideModeExplicit)),
		validation.Field(&o.Major, validation.When(explicit, validation.Required, notBlank)),
		validation.Field(&o.Minor, validation.When(explicit, validation.Required, notBlank)),
	); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidArgument, err)
	}
	return nil
}

func (o SlideOptions) typeface(g ooxml.FontGroup, r ooxml.Role) string {
	if o.Mode == SlideModeExplicit {
		if g == ooxml.Major {
			return o.Major
		}
		return o.Minor
	}
	return ooxml.ThemeToken(g, r)
}

// Run property elements whose typeface children are per-run overrides.
var runProperties = []ooxml.QName{ooxml.A("rPr"), ooxml.A("defRPr"), ooxml.A("endParaRPr")}

// Placeholder types whose text uses the major font.
var titlePlaceholders = map[string]bool{"title": true, "ctrTitle": true}

// NormalizeSlideFonts rewrites explicit typeface overrides on slides and
// slide layouts. Text in title placeholders falls back to the major font,
// everything else to the minor font. Theme tokens, symbol fonts and
// bullet fonts are left alone.
func (r *Rewriter) NormalizeSlideFonts(ctx context.Context, opts SlideOptions) (*models.Report, error) {
	return r.Run(ctx, Plan{Passes: []string{PassSlides}, Slides: opts})
}

func slidePart(opts SlideOptions) partFunc {
	return func(doc *etree.Document, w io.Writer) error {
		n := 0
		for _, q := range runProperties {
			for _, rpr := range ooxml.FindAll(doc.Root(), q) {
				group := placeholderGroup(rpr)
				for _, el := range ooxml.RunTypefaces(rpr) {
					current := el.SelectAttrValue(ooxml.AttrTypeface, "")
					if current == "" || ooxml.IsThemeToken(current) {
						continue
					}
					if ooxml.SetTypeface(el, opts.typeface(group, ooxml.ClassifyRole(el))) {
						n++
					}
				}
			}
		}
		if n > 0 {
			fmt.Fprintf(w, "Slide runs: %d typeface override(s) replaced\n", n)
		}
		return nil
	}
}

// placeholderGroup returns Major when el sits in a title placeholder shape.
func placeholderGroup(el *etree.Element) ooxml.FontGroup {
	sp := ooxml.Ancestor(el, ooxml.P("sp"))
	if sp == nil {
		return ooxml.Minor
	}
	nvPr := ooxml.Child(ooxml.Child(sp, ooxml.P("nvSpPr")), ooxml.P("nvPr"))
	if nvPr == nil {
		return ooxml.Minor
	}
	ph := ooxml.Child(nvPr, ooxml.P("ph"))
	if ph != nil && titlePlaceholders[ph.SelectAttrValue("type", "")] {
		return ooxml.Major
	}
	return ooxml.Minor
}
