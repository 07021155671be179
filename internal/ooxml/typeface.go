package ooxml

import "github.com/beevik/etree"

// Role is the script role of a typeface-bearing DrawingML element.
type Role int

const (
	RoleUnknown Role = iota
	RoleLatin
	RoleEastAsian
	RoleComplexScript
	RoleSymbol
	RoleScript // a:font script="..." fallback
)

var roleNames = map[Role]string{
	RoleUnknown:       "unknown",
	RoleLatin:         "latin",
	RoleEastAsian:     "ea",
	RoleComplexScript: "cs",
	RoleSymbol:        "sym",
	RoleScript:        "font",
}

func (r Role) String() string { return roleNames[r] }

// Local returns the DrawingML local name for r.
func (r Role) Local() string { return roleNames[r] }

// GroupRoles are the roles that every font group carries, in schema order.
var GroupRoles = []Role{RoleLatin, RoleEastAsian, RoleComplexScript, RoleSymbol}

// RunRoles are the roles a run-property element may override per run.
var RunRoles = []Role{RoleLatin, RoleEastAsian, RoleComplexScript}

// Attribute names used on typeface elements.
const (
	AttrTypeface = "typeface"
	AttrScript   = "script"
)

// Typeface is one typeface declaration read from the tree.
type Typeface struct {
	Role     Role
	Script   string // only for RoleScript
	Typeface string
}

// ClassifyRole maps an element to its typeface role. Elements outside the
// DrawingML namespace are RoleUnknown.
func ClassifyRole(el *etree.Element) Role {
	if NamespaceURI(el) != NSDrawing {
		return RoleUnknown
	}
	switch LocalName(el.Tag) {
	case "latin":
		return RoleLatin
	case "ea":
		return RoleEastAsian
	case "cs":
		return RoleComplexScript
	case "sym":
		return RoleSymbol
	case "font":
		return RoleScript
	default:
		return RoleUnknown
	}
}

// ReadTypeface describes el without modifying it.
func ReadTypeface(el *etree.Element) Typeface {
	t := Typeface{
		Role:     ClassifyRole(el),
		Typeface: el.SelectAttrValue(AttrTypeface, ""),
	}
	if t.Role == RoleScript {
		t.Script = el.SelectAttrValue(AttrScript, "")
	}
	return t
}

// SetTypeface replaces the typeface attribute of el in place, keeping its
// position among the other attributes. It reports whether the value changed.
func SetTypeface(el *etree.Element, typeface string) bool {
	if a := el.SelectAttr(AttrTypeface); a != nil {
		if a.Value == typeface {
			return false
		}
		a.Value = typeface
		return true
	}
	el.CreateAttr(AttrTypeface, typeface)
	return true
}

// RunTypefaces returns the latin, ea and cs children of a run-property
// element, in document order.
func RunTypefaces(rpr *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, c := range rpr.ChildElements() {
		switch ClassifyRole(c) {
		case RoleLatin, RoleEastAsian, RoleComplexScript:
			out = append(out, c)
		}
	}
	return out
}

// FontGroup selects the major (headings) or minor (body) theme font.
type FontGroup int

const (
	Minor FontGroup = iota
	Major
)

func (g FontGroup) String() string {
	if g == Major {
		return "major"
	}
	return "minor"
}

// ThemeToken returns the symbolic typeface that resolves through the theme
// font scheme, e.g. "+mj-lt" for the major latin font. Roles without a
// theme token yield "".
func ThemeToken(g FontGroup, r Role) string {
	prefix := "+mn-"
	if g == Major {
		prefix = "+mj-"
	}
	switch r {
	case RoleLatin:
		return prefix + "lt"
	case RoleEastAsian:
		return prefix + "ea"
	case RoleComplexScript:
		return prefix + "cs"
	default:
		return ""
	}
}

// IsThemeToken reports whether typeface refers to a theme font rather
// than naming a font family.
func IsThemeToken(typeface string) bool {
	return len(typeface) > 4 && (typeface[:4] == "+mj-" || typeface[:4] == "+mn-")
}
