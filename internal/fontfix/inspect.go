package fontfix

import (
	"context"
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/starford/fontfix/internal/apperr"
	"github.com/starford/fontfix/internal/ooxml"
)

// InspectFontScheme writes one line per typeface declared by each group
// of scheme, indented under the group name:
//
//	majorFont:
//	  latin: Calibri Light
//	  font (Hang): 맑은 고딕
//
// scheme is not modified.
func InspectFontScheme(w io.Writer, scheme *etree.Element, indent string) {
	for _, group := range scheme.ChildElements() {
		fmt.Fprintf(w, "%s%s:\n", indent, ooxml.LocalName(group.Tag))
		for _, el := range group.ChildElements() {
			t := ooxml.ReadTypeface(el)
			switch t.Role {
			case ooxml.RoleScript:
				fmt.Fprintf(w, "%s  %s (%s): %s\n", indent, t.Role, t.Script, t.Typeface)
			case ooxml.RoleUnknown:
				fmt.Fprintf(w, "%s  %s: %s\n", indent, ooxml.LocalName(el.Tag), t.Typeface)
			default:
				fmt.Fprintf(w, "%s  %s: %s\n", indent, t.Role, t.Typeface)
			}
		}
	}
}

// InspectThemes writes the font scheme of every theme part to w without
// modifying anything.
func (r *Rewriter) InspectThemes(ctx context.Context, w io.Writer) error {
	parts, err := r.store.List(themeTarget.dir, themeTarget.pattern)
	if err != nil {
		return err
	}
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := r.store.Read(p)
		if err != nil {
			return apperr.NewPartError(PassTheme, p, err)
		}
		doc, err := ooxml.Parse(data)
		if err != nil {
			return apperr.NewPartError(PassTheme, p, err)
		}
		scheme, err := findFontScheme(doc)
		if err != nil {
			return apperr.NewPartError(PassTheme, p, err)
		}
		fmt.Fprintf(w, "%s: (name=%q)\n", p, scheme.SelectAttrValue("name", ""))
		InspectFontScheme(w, scheme, "  ")
	}
	return nil
}
