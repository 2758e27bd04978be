// src/parsers/xmltree/tree.go
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// MaxDepth bounds element nesting. Bureau reports are a handful of levels deep.
const MaxDepth = 256

var (
	ErrNoRoot        = errors.New("document has no root element")
	ErrMultipleRoots = errors.New("document has more than one root element")
	ErrTextOutside   = errors.New("non-whitespace text outside the root element")
	ErrTooDeep       = fmt.Errorf("element nesting exceeds %d levels", MaxDepth)
)

// Element is one XML element. Children are always kept as sequences grouped by tag
// name, so a tag that occurs once and a tag that repeats are read the same way.
type Element struct {
	Name string
	// Text is the element's character data, or "" when it is absent or whitespace only.
	Text string

	children map[string][]*Element
}

var utf8BOM = []byte("\xef\xbb\xbf")

// Parse decodes a complete XML document. A leading UTF-8 byte order mark is skipped
// and documents that declare a non UTF-8 encoding in their prolog are transcoded first.
func Parse(data []byte) (*Element, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	type frame struct {
		el   *Element
		text []byte
	}

	var root *Element
	var stack []frame

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, fmt.Errorf("%w: <%s> after <%s>", ErrMultipleRoots, t.Name.Local, root.Name)
			}
			if len(stack) >= MaxDepth {
				return nil, ErrTooDeep
			}
			el := &Element{Name: t.Name.Local}
			if len(stack) == 0 {
				root = el
			} else {
				stack[len(stack)-1].el.appendChild(el)
			}
			stack = append(stack, frame{el: el})

		case xml.EndElement:
			top := stack[len(stack)-1]
			if len(bytes.TrimSpace(top.text)) > 0 {
				top.el.Text = string(top.text)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, ErrTextOutside
				}
				continue
			}
			stack[len(stack)-1].text = append(stack[len(stack)-1].text, t...)
		}
	}

	if root == nil {
		return nil, ErrNoRoot
	}
	return root, nil
}

func (e *Element) appendChild(c *Element) {
	if e.children == nil {
		e.children = make(map[string][]*Element)
	}
	e.children[c.Name] = append(e.children[c.Name], c)
}

// Children returns every child element with the given tag name, in document order.
func (e *Element) Children(name string) []*Element {
	if e == nil {
		return nil
	}
	return e.children[name]
}

// Child returns the first child with the given tag name, or nil.
func (e *Element) Child(name string) *Element {
	if c := e.Children(name); len(c) > 0 {
		return c[0]
	}
	return nil
}

// Resolve walks a dot separated path starting at e. A name segment selects the
// children of the first element of the current sequence; a numeric segment selects
// one element of the current sequence by index. Any broken link yields nil.
func (e *Element) Resolve(path string) []*Element {
	if e == nil {
		return nil
	}
	current := []*Element{e}
	if path == "" {
		return current
	}
	for _, seg := range strings.Split(path, ".") {
		if len(current) == 0 {
			return nil
		}
		if idx, err := strconv.Atoi(seg); err == nil {
			if idx < 0 || idx >= len(current) {
				return nil
			}
			current = current[idx : idx+1]
			continue
		}
		current = current[0].Children(seg)
	}
	return current
}

// Find returns the first element at path, or nil.
func (e *Element) Find(path string) *Element {
	if found := e.Resolve(path); len(found) > 0 {
		return found[0]
	}
	return nil
}

// Lookup returns the text of the first element at path. A missing element, or one
// without text, yields def.
func (e *Element) Lookup(path, def string) string {
	found := e.Find(path)
	if found == nil || found.Text == "" {
		return def
	}
	return found.Text
}
