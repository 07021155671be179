// Package ooxml provides the namespaced XML tree primitives used by the
// font passes: parsing and serializing package parts, resolving qualified
// names, and locating DrawingML and PresentationML elements.
package ooxml

import "strings"

// Namespace URIs of the markup vocabularies the passes touch.
const (
	NSDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSPresentation  = "http://schemas.openxmlformats.org/presentationml/2006/main"
)

// Conventional prefixes, used only when an element has to be created in a
// part that never bound the namespace.
var prefixes = map[string]string{
	NSDrawing:       "a",
	NSRelationships: "r",
	NSPresentation:  "p",
}

// QName is a namespace-qualified element or attribute name.
type QName struct {
	Space string // namespace URI
	Local string
}

func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// A returns the DrawingML name local.
func A(local string) QName { return QName{Space: NSDrawing, Local: local} }

// P returns the PresentationML name local.
func P(local string) QName { return QName{Space: NSPresentation, Local: local} }

// LocalName strips the namespace from an element or attribute identifier.
// It accepts prefixed ("a:latin"), Clark ("{uri}latin") and bare forms.
func LocalName(name string) string {
	if strings.HasPrefix(name, "{") {
		if i := strings.IndexByte(name, '}'); i >= 0 {
			return name[i+1:]
		}
		return name
	}
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
