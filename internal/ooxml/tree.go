package ooxml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/starford/fontfix/internal/apperr"
)

// Parse reads data into an element tree. Anything that is not a
// well-formed, namespace-well-formed document with exactly one root
// element is ErrMalformedDocument.
func Parse(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, apperr.Malformed(err)
	}
	roots := 0
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			roots++
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return nil, apperr.Malformed(errors.New("extra content at the end of the document"))
			}
		}
	}
	switch {
	case roots == 0:
		return nil, apperr.Malformed(errors.New("no root element"))
	case roots > 1:
		return nil, apperr.Malformed(errors.New("extra content at the end of the document"))
	}
	if err := checkPrefixes(doc.Root()); err != nil {
		return nil, apperr.Malformed(err)
	}
	return doc, nil
}

// checkPrefixes fails on the first element or attribute prefix with no
// namespace declaration in scope.
func checkPrefixes(root *etree.Element) error {
	var err error
	walk(root, func(el *etree.Element) {
		if err != nil {
			return
		}
		if el.Space != "" && resolvePrefix(el, el.Space) == "" {
			err = fmt.Errorf("namespace prefix %s on %s is not defined", el.Space, el.Tag)
			return
		}
		for _, a := range el.Attr {
			switch a.Space {
			case "", "xmlns", "xml":
				continue
			}
			if resolvePrefix(el, a.Space) == "" {
				err = fmt.Errorf("namespace prefix %s for attribute %s on %s is not defined", a.Space, a.Key, el.Tag)
				return
			}
		}
	})
	return err
}

// Serialize writes doc back to bytes. Prefixes, attribute order and the
// XML declaration are kept as parsed.
func Serialize(doc *etree.Document) ([]byte, error) {
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, apperr.Malformed(err)
	}
	return out, nil
}

// Is reports whether el has the qualified name q.
func Is(el *etree.Element, q QName) bool {
	return el != nil && el.Tag == q.Local && NamespaceURI(el) == q.Space
}

// NamespaceURI resolves the namespace of el from the xmlns declarations
// in scope, including a default namespace.
func NamespaceURI(el *etree.Element) string {
	return resolvePrefix(el, el.Space)
}

// resolvePrefix returns the URI bound to prefix at el. The empty prefix
// resolves to the default namespace.
func resolvePrefix(el *etree.Element, prefix string) string {
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			switch {
			case prefix == "" && a.Space == "" && a.Key == "xmlns":
				return a.Value
			case prefix != "" && a.Space == "xmlns" && a.Key == prefix:
				return a.Value
			}
		}
	}
	return ""
}

// Find returns the first element named q in document order, searching
// el and all of its descendants, or nil.
func Find(el *etree.Element, q QName) *etree.Element {
	if Is(el, q) {
		return el
	}
	for _, c := range el.ChildElements() {
		if f := Find(c, q); f != nil {
			return f
		}
	}
	return nil
}

// FindAll returns every element named q at or below el in document order.
func FindAll(el *etree.Element, q QName) []*etree.Element {
	var out []*etree.Element
	walk(el, func(e *etree.Element) {
		if Is(e, q) {
			out = append(out, e)
		}
	})
	return out
}

// Children returns the direct children of el named q.
func Children(el *etree.Element, q QName) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if Is(c, q) {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first direct child of el named q, or nil. A nil el
// yields nil so lookups can be chained.
func Child(el *etree.Element, q QName) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if Is(c, q) {
			return c
		}
	}
	return nil
}

// Ancestor returns the nearest ancestor of el named q, or nil.
func Ancestor(el *etree.Element, q QName) *etree.Element {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if Is(p, q) {
			return p
		}
	}
	return nil
}

// PrefixFor returns the prefix that resolves to uri in scope at el, so
// new elements can be created without declaring the namespace again.
// The empty string means uri is the default namespace.
func PrefixFor(el *etree.Element, uri string) string {
	for e := el; e != nil; e = e.Parent() {
		for _, a := range e.Attr {
			if a.Value != uri {
				continue
			}
			switch {
			case a.Space == "xmlns":
				return a.Key
			case a.Space == "" && a.Key == "xmlns":
				return ""
			}
		}
	}
	return prefixes[uri]
}

// NewChild appends an element named q to parent, reusing the prefix the
// document already binds to q.Space.
func NewChild(parent *etree.Element, q QName) *etree.Element {
	tag := q.Local
	if prefix := PrefixFor(parent, q.Space); prefix != "" {
		tag = prefix + ":" + q.Local
	}
	return parent.CreateElement(tag)
}

func walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, c := range el.ChildElements() {
		walk(c, fn)
	}
}
