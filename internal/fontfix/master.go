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

// DefaultBulletFont makes bullets follow the minor latin theme font.
const DefaultBulletFont = "+mn-lt"

// MasterOptions configures the master text style pass.
type MasterOptions struct {
	// BulletFont is written to every a:buFont of the master body style.
	BulletFont string
	// MajorBold sets b="1" on title style run defaults; false removes b.
	MajorBold bool
	// MinorBold does the same for body style run defaults.
	MinorBold bool
}

// DefaultMasterOptions returns bullets on the minor font, bold titles and
// regular body text.
func DefaultMasterOptions() MasterOptions {
	return MasterOptions{BulletFont: DefaultBulletFont, MajorBold: true}
}

// Validate checks the bullet font.
func (o MasterOptions) Validate() error {
	if err := validation.ValidateStruct(&o,
		validation.Field(&o.BulletFont, validation.Required, notBlank),
	); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidArgument, err)
	}
	return nil
}

// NormalizeMasterFonts points the presentation default text style and
// every slide master's title and body styles at the theme fonts. Only
// typeface and bold attributes change; sizes, spacing, fills and element
// order are left as they are.
func (r *Rewriter) NormalizeMasterFonts(ctx context.Context, opts MasterOptions) (*models.Report, error) {
	return r.Run(ctx, Plan{Passes: []string{PassMaster}, Master: opts})
}

// defaultTextStylePart rewrites p:defaultTextStyle of presentation.xml.
// A presentation without one is left alone.
func defaultTextStylePart() partFunc {
	return func(doc *etree.Document, w io.Writer) error {
		style := ooxml.Find(doc.Root(), ooxml.P("defaultTextStyle"))
		if style == nil {
			return nil
		}
		n := 0
		for _, rpr := range ooxml.FindAll(style, ooxml.A("defRPr")) {
			n += useThemeFonts(rpr, ooxml.Minor)
		}
		fmt.Fprintf(w, "Default text style: %d typeface(s) updated\n", n)
		return nil
	}
}

func masterPart(opts MasterOptions) partFunc {
	return func(doc *etree.Document, w io.Writer) error {
		txStyles := ooxml.Find(doc.Root(), ooxml.P("txStyles"))
		if txStyles == nil {
			return apperr.SchemaViolation("no p:txStyles element")
		}

		var fonts, bullets int
		if title := ooxml.Child(txStyles, ooxml.P("titleStyle")); title != nil {
			for _, rpr := range ooxml.FindAll(title, ooxml.A("defRPr")) {
				fonts += useThemeFonts(rpr, ooxml.Major)
				setBold(rpr, opts.MajorBold)
			}
		}
		if body := ooxml.Child(txStyles, ooxml.P("bodyStyle")); body != nil {
			for _, rpr := range ooxml.FindAll(body, ooxml.A("defRPr")) {
				fonts += useThemeFonts(rpr, ooxml.Minor)
				setBold(rpr, opts.MinorBold)
			}
			for _, bu := range ooxml.FindAll(body, ooxml.A("buFont")) {
				if ooxml.SetTypeface(bu, opts.BulletFont) {
					bullets++
				}
			}
		}
		fmt.Fprintf(w, "Master text styles: %d typeface(s), %d bullet font(s) updated\n", fonts, bullets)
		return nil
	}
}

// useThemeFonts points the latin, ea and cs children of rpr at the theme
// tokens of group and returns how many changed.
func useThemeFonts(rpr *etree.Element, group ooxml.FontGroup) int {
	n := 0
	for _, el := range ooxml.RunTypefaces(rpr) {
		if ooxml.SetTypeface(el, ooxml.ThemeToken(group, ooxml.ClassifyRole(el))) {
			n++
		}
	}
	return n
}

func setBold(rpr *etree.Element, bold bool) {
	if bold {
		rpr.CreateAttr("b", "1")
		return
	}
	rpr.RemoveAttr("b")
}
