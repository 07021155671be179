package fontfix

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/fontfix/internal/apperr"
	"github.com/starford/fontfix/internal/models"
	"github.com/starford/fontfix/internal/ooxml"
	"github.com/starford/fontfix/internal/storage"
)

// HangulScript is the script code of the fallback typeface every rebuilt
// font group carries.
const HangulScript = "Hang"

var notBlank = validation.NewStringRule(func(s string) bool {
	return strings.TrimSpace(s) != ""
}, "must not be blank")

func validateFonts(major, minor string) error {
	err := validation.Errors{
		"major": validation.Validate(major, validation.Required, notBlank),
		"minor": validation.Validate(minor, validation.Required, notBlank),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidArgument, err)
	}
	return nil
}

// FixThemeFont rewrites the font scheme of every ppt/theme/theme<N>.xml
// under packageRoot so that the major and minor groups name majorFont and
// minorFont for all scripts. Before and after listings go to stdout.
func FixThemeFont(packageRoot, majorFont, minorFont string) error {
	store, err := storage.NewFS(packageRoot)
	if err != nil {
		return err
	}
	_, err = New(store, Options{}).FixThemeFont(context.Background(), majorFont, minorFont)
	return err
}

// FixThemeFont rewrites every theme part of the package. Zero theme parts
// is not an error.
func (r *Rewriter) FixThemeFont(ctx context.Context, majorFont, minorFont string) (*models.Report, error) {
	return r.Run(ctx, Plan{Passes: []string{PassTheme}, Major: majorFont, Minor: minorFont})
}

func themePart(major, minor string) partFunc {
	return func(doc *etree.Document, w io.Writer) error {
		scheme, err := findFontScheme(doc)
		if err != nil {
			return err
		}
		name := scheme.SelectAttrValue("name", "")

		fmt.Fprintf(w, "Current font scheme: (name=%q)\n", name)
		InspectFontScheme(w, scheme, "  ")

		RewriteFontScheme(scheme, major, minor)

		fmt.Fprintf(w, "New font scheme: (name=%q)\n", scheme.SelectAttrValue("name", ""))
		InspectFontScheme(w, scheme, "  ")
		return nil
	}
}

// findFontScheme returns the theme's single a:fontScheme element.
func findFontScheme(doc *etree.Document) (*etree.Element, error) {
	schemes := ooxml.FindAll(doc.Root(), ooxml.A("fontScheme"))
	switch len(schemes) {
	case 0:
		return nil, apperr.SchemaViolation("no a:fontScheme element")
	case 1:
		return schemes[0], nil
	default:
		return nil, apperr.SchemaViolation("%d a:fontScheme elements, want 1", len(schemes))
	}
}

// RewriteFontScheme replaces the children of scheme with a fresh majorFont
// and minorFont group. Each group holds latin, ea, cs, sym and a Hangul
// script fallback, all naming the group's font. The attributes of scheme
// are kept in their original order.
func RewriteFontScheme(scheme *etree.Element, majorFont, minorFont string) {
	attrs := make([]etree.Attr, len(scheme.Attr))
	copy(attrs, scheme.Attr)

	for len(scheme.Child) > 0 {
		scheme.RemoveChildAt(len(scheme.Child) - 1)
	}
	scheme.Attr = nil
	for _, a := range attrs {
		scheme.CreateAttr(a.FullKey(), a.Value)
	}

	buildFontGroup(scheme, "majorFont", majorFont)
	buildFontGroup(scheme, "minorFont", minorFont)
}

func buildFontGroup(scheme *etree.Element, local, font string) {
	group := ooxml.NewChild(scheme, ooxml.A(local))
	for _, role := range ooxml.GroupRoles {
		ooxml.NewChild(group, ooxml.A(role.Local())).CreateAttr(ooxml.AttrTypeface, font)
	}
	fallback := ooxml.NewChild(group, ooxml.A(ooxml.RoleScript.Local()))
	fallback.CreateAttr(ooxml.AttrScript, HangulScript)
	fallback.CreateAttr(ooxml.AttrTypeface, font)
}
