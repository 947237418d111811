package adapters

import (
	"encoding/xml"
	"io"
	"strings"
)

// decodeXMLToMap parses XML into a generic map[string]any tree: repeated
// sibling elements collapse into a []any, a leaf element with only text
// content becomes a string, and an element with children becomes a nested
// map[string]any. This is the one stdlib-backed piece of the adapter layer —
// no library in the retrieved pack ships a generic XML-to-map decoder.
func decodeXMLToMap(content []byte) (map[string]any, error) {
	dec := xml.NewDecoder(strings.NewReader(string(content)))

	root, err := decodeElement(dec)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// decodeElement reads tokens until it finds the document's root start
// element, then decodes that element's subtree.
func decodeElement(dec *xml.Decoder) (map[string]any, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return map[string]any{}, nil
			}
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			value, err := decodeNode(dec, se)
			if err != nil {
				return nil, err
			}
			return map[string]any{se.Name.Local: value}, nil
		}
	}
}

// decodeNode decodes the subtree rooted at an already-consumed start
// element, returning either a map[string]any (if it has child elements) or a
// string (if it's a text-only leaf).
func decodeNode(dec *xml.Decoder, start xml.StartElement) (any, error) {
	children := map[string]any{}
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			value, err := decodeNode(dec, t)
			if err != nil {
				return nil, err
			}
			name := t.Name.Local
			if existing, ok := children[name]; ok {
				switch e := existing.(type) {
				case []any:
					children[name] = append(e, value)
				default:
					children[name] = []any{e, value}
				}
			} else {
				children[name] = value
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(children) == 0 {
				return strings.TrimSpace(text.String()), nil
			}
			return children, nil
		}
	}
}
