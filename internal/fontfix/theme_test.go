package fontfix

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/starford/fontfix/internal/apperr"
	"github.com/starford/fontfix/internal/ooxml"
	"github.com/starford/fontfix/internal/testutil"
)

// assertScheme checks that scheme holds exactly majorFont and minorFont,
// each with latin, ea, cs, sym and a Hangul fallback naming its font.
func assertScheme(t *testing.T, scheme *etree.Element, major, minor string) {
	t.Helper()
	groups := scheme.ChildElements()
	if len(groups) != 2 {
		t.Fatalf("fontScheme children = %d, want 2", len(groups))
	}
	for i, want := range []struct {
		local string
		font  string
	}{{"majorFont", major}, {"minorFont", minor}} {
		g := groups[i]
		if !ooxml.Is(g, ooxml.A(want.local)) {
			t.Fatalf("group %d = %s, want a:%s", i, g.Tag, want.local)
		}
		kids := g.ChildElements()
		if len(kids) != 5 {
			t.Fatalf("%s children = %d, want 5", want.local, len(kids))
		}
		wantRoles := []ooxml.Role{ooxml.RoleLatin, ooxml.RoleEastAsian, ooxml.RoleComplexScript, ooxml.RoleSymbol, ooxml.RoleScript}
		for j, k := range kids {
			tf := ooxml.ReadTypeface(k)
			if tf.Role != wantRoles[j] {
				t.Errorf("%s[%d] role = %v, want %v", want.local, j, tf.Role, wantRoles[j])
			}
			if tf.Typeface != want.font {
				t.Errorf("%s[%d] typeface = %q, want %q", want.local, j, tf.Typeface, want.font)
			}
		}
		if s := kids[4].SelectAttrValue("script", ""); s != HangulScript {
			t.Errorf("%s fallback script = %q, want Hang", want.local, s)
		}
	}
}

func TestFixThemeFont_EndToEnd(t *testing.T) {
	root, store := emptyPackage(t)
	testutil.WritePart(t, root, "ppt/theme/theme1.xml", testutil.ThemeXML("Test", "Arial", "Arial"))
	r, out := testRewriter(t, store, Options{})

	report, err := r.FixThemeFont(context.Background(), "Pretendard", "NotoSansKR")
	if err != nil {
		t.Fatalf("FixThemeFont: %v", err)
	}
	if report.Changed() != 1 {
		t.Errorf("changed = %d, want 1", report.Changed())
	}

	doc := parsePart(t, root, "ppt/theme/theme1.xml")
	scheme := ooxml.Find(doc.Root(), ooxml.A("fontScheme"))
	if scheme == nil {
		t.Fatal("fontScheme missing after rewrite")
	}
	if scheme.SelectAttrValue("name", "") != "Test" {
		t.Errorf("name = %q, want Test", scheme.SelectAttrValue("name", ""))
	}
	assertScheme(t, scheme, "Pretendard", "NotoSansKR")

	raw := testutil.ReadPart(t, root, "ppt/theme/theme1.xml")
	if !strings.Contains(raw, `<a:font script="Hang" typeface="Pretendard"/>`) {
		t.Errorf("serialized theme lacks Hangul fallback:\n%s", raw)
	}
	if !strings.Contains(raw, `<a:clrScheme name="Office">`) {
		t.Error("unrelated subtree lost")
	}

	log := out.String()
	for _, want := range []string{
		`Current font scheme: (name="Test")`,
		"    latin: Arial",
		`New font scheme: (name="Test")`,
		"  minorFont:",
		"    font (Hang): NotoSansKR",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("diagnostic output missing %q:\n%s", want, log)
		}
	}
}

func TestFixThemeFont_Idempotent(t *testing.T) {
	root, store := emptyPackage(t)
	testutil.WritePart(t, root, "ppt/theme/theme1.xml", testutil.ThemeXML("Office", "Calibri Light", "Calibri"))
	r, _ := testRewriter(t, store, Options{})

	if _, err := r.FixThemeFont(context.Background(), "Pretendard", "Pretendard"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	once := testutil.ReadPart(t, root, "ppt/theme/theme1.xml")

	report, err := r.FixThemeFont(context.Background(), "Pretendard", "Pretendard")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if report.Changed() != 0 {
		t.Errorf("second run changed %d part(s)", report.Changed())
	}
	if twice := testutil.ReadPart(t, root, "ppt/theme/theme1.xml"); twice != once {
		t.Errorf("second run altered the part:\n%s\n---\n%s", once, twice)
	}
}

func TestRewriteFontScheme_PreservesAttributes(t *testing.T) {
	doc, err := ooxml.Parse([]byte(`<a:theme xmlns:a="` + ooxml.NSDrawing + `" xmlns:x="urn:x">` +
		`<a:fontScheme name="Custom" x:flag="on" xmlns:mc="urn:mc" mc:Ignorable="x">` +
		`<a:majorFont><a:latin typeface="Old"/></a:majorFont>` +
		`<a:minorFont><a:latin typeface="Old"/></a:minorFont>` +
		`<a:extLst><a:ext uri="{1}"/></a:extLst>` +
		`</a:fontScheme></a:theme>`))
	if err != nil {
		t.Fatal(err)
	}
	scheme := ooxml.Find(doc.Root(), ooxml.A("fontScheme"))
	before := make([]string, 0, len(scheme.Attr))
	for _, a := range scheme.Attr {
		before = append(before, a.FullKey()+"="+a.Value)
	}

	RewriteFontScheme(scheme, "Major", "Minor")

	var after []string
	for _, a := range scheme.Attr {
		after = append(after, a.FullKey()+"="+a.Value)
	}
	if !equalStrings(before, after) {
		t.Errorf("attributes = %v, want %v", after, before)
	}
	assertScheme(t, scheme, "Major", "Minor")
}

func TestRewriteFontScheme_DefaultNamespace(t *testing.T) {
	doc, err := ooxml.Parse([]byte(`<theme xmlns="` + ooxml.NSDrawing + `"><fontScheme name="N"><majorFont/><minorFont/></fontScheme></theme>`))
	if err != nil {
		t.Fatal(err)
	}
	scheme := ooxml.Find(doc.Root(), ooxml.A("fontScheme"))
	RewriteFontScheme(scheme, "A", "B")
	assertScheme(t, scheme, "A", "B")
	if scheme.ChildElements()[0].Space != "" {
		t.Error("rebuilt group should stay in the default namespace")
	}
}

func TestFixThemeFont_IgnoresNonMatchingNames(t *testing.T) {
	root, store := emptyPackage(t)
	original := testutil.ThemeXML("Keep", "Arial", "Arial")
	for _, name := range []string{"theme_backup.xml", "notatheme10.xml", "theme.xml", "theme1.xml.bak"} {
		testutil.WritePart(t, root, "ppt/theme/"+name, original)
	}
	r, _ := testRewriter(t, store, Options{})

	report, err := r.FixThemeFont(context.Background(), "Pretendard", "Pretendard")
	if err != nil {
		t.Fatalf("FixThemeFont: %v", err)
	}
	if len(report.Parts) != 0 {
		t.Errorf("processed %v, want nothing", report.Parts)
	}
	for _, name := range []string{"theme_backup.xml", "notatheme10.xml", "theme.xml", "theme1.xml.bak"} {
		if got := testutil.ReadPart(t, root, "ppt/theme/"+name); got != original {
			t.Errorf("%s was modified", name)
		}
	}
}

func TestFixThemeFont_NoThemeDir(t *testing.T) {
	_, store := emptyPackage(t)
	r, out := testRewriter(t, store, Options{})
	report, err := r.FixThemeFont(context.Background(), "A", "B")
	if err != nil {
		t.Fatalf("FixThemeFont: %v", err)
	}
	if len(report.Parts) != 0 || out.Len() != 0 {
		t.Errorf("expected no work, got %v / %q", report.Parts, out.String())
	}
}

func TestFixThemeFont_MissingFontSchemeFailsClosed(t *testing.T) {
	root, store := emptyPackage(t)
	testutil.WritePart(t, root, "ppt/theme/theme1.xml", testutil.ThemeWithoutFontSchemeXML)
	r, _ := testRewriter(t, store, Options{})

	_, err := r.FixThemeFont(context.Background(), "A", "B")
	if !errors.Is(err, apperr.ErrSchemaViolation) {
		t.Fatalf("err = %v, want ErrSchemaViolation", err)
	}
	var pe *apperr.PartError
	if !errors.As(err, &pe) || pe.Path != "ppt/theme/theme1.xml" {
		t.Errorf("err = %#v, want PartError for theme1.xml", err)
	}
	if got := testutil.ReadPart(t, root, "ppt/theme/theme1.xml"); got != testutil.ThemeWithoutFontSchemeXML {
		t.Error("file modified despite failure")
	}
}

func TestFixThemeFont_Malformed(t *testing.T) {
	good := testutil.ThemeXML("Office", "Arial", "Arial")
	cases := map[string]string{
		"broken tag":        "<a:theme <broken>",
		"trailing text":     good + "\ngarbage",
		"second root":       good + "\n<a:theme xmlns:a=\"" + ooxml.NSDrawing + "\"/>",
		"undeclared prefix": strings.Replace(good, ` xmlns:a="`+ooxml.NSDrawing+`"`, "", 1),
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			root, store := emptyPackage(t)
			testutil.WritePart(t, root, "ppt/theme/theme1.xml", content)
			r, _ := testRewriter(t, store, Options{})

			_, err := r.FixThemeFont(context.Background(), "A", "B")
			if !errors.Is(err, apperr.ErrMalformedDocument) {
				t.Fatalf("err = %v, want ErrMalformedDocument", err)
			}
			if got := testutil.ReadPart(t, root, "ppt/theme/theme1.xml"); got != content {
				t.Error("malformed part was rewritten")
			}
		})
	}
}

func TestFixThemeFont_MultipleThemes(t *testing.T) {
	root, store := emptyPackage(t)
	testutil.WritePart(t, root, "ppt/theme/theme1.xml", testutil.ThemeXML("One", "Arial", "Verdana"))
	testutil.WritePart(t, root, "ppt/theme/theme2.xml", testutil.ThemeXML("Two", "Georgia", "Tahoma"))
	r, _ := testRewriter(t, store, Options{Workers: 2})

	report, err := r.FixThemeFont(context.Background(), "Pretendard", "NotoSansKR")
	if err != nil {
		t.Fatalf("FixThemeFont: %v", err)
	}
	if report.Changed() != 2 {
		t.Errorf("changed = %d, want 2", report.Changed())
	}
	for part, name := range map[string]string{"ppt/theme/theme1.xml": "One", "ppt/theme/theme2.xml": "Two"} {
		doc := parsePart(t, root, part)
		scheme := ooxml.Find(doc.Root(), ooxml.A("fontScheme"))
		if scheme.SelectAttrValue("name", "") != name {
			t.Errorf("%s name = %q, want %q", part, scheme.SelectAttrValue("name", ""), name)
		}
		assertScheme(t, scheme, "Pretendard", "NotoSansKR")
	}
}

func TestFixThemeFont_RejectsBlankFonts(t *testing.T) {
	_, store := emptyPackage(t)
	r, _ := testRewriter(t, store, Options{})
	for _, fonts := range [][2]string{{"", "B"}, {"A", ""}, {"  ", "B"}} {
		_, err := r.FixThemeFont(context.Background(), fonts[0], fonts[1])
		if !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("FixThemeFont(%q, %q) err = %v, want ErrInvalidArgument", fonts[0], fonts[1], err)
		}
	}
}

func TestFixThemeFontFunc(t *testing.T) {
	root, _ := emptyPackage(t)
	testutil.WritePart(t, root, "ppt/theme/theme1.xml", testutil.ThemeXML("Test", "Arial", "Arial"))
	if err := FixThemeFont(root, "Pretendard", "NotoSansKR"); err != nil {
		t.Fatalf("FixThemeFont: %v", err)
	}
	doc := parsePart(t, root, "ppt/theme/theme1.xml")
	assertScheme(t, ooxml.Find(doc.Root(), ooxml.A("fontScheme")), "Pretendard", "NotoSansKR")

	if err := FixThemeFont(root+"/missing", "A", "B"); !errors.Is(err, apperr.ErrInvalidPackage) {
		t.Errorf("err = %v, want ErrInvalidPackage", err)
	}
}
