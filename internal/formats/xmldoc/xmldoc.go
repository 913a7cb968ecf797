// Package xmldoc provides the XML format provider. Input is gated on a
// leading '<' so the provider never competes for plain text; documents
// pretty-print and convert to JSON structure.
package xmldoc

import (
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/FocuswithJustin/DataLens/core/format"
	"github.com/FocuswithJustin/DataLens/core/value"
)

// Provider implements format.Format for XML documents.
type Provider struct {
	format.Base
}

// New creates the XML provider.
func New() *Provider {
	return &Provider{Base: format.Base{
		FormatID:          "xml",
		FormatName:        "XML",
		FormatCategory:    "Data",
		FormatDescription: "XML documents",
		FormatExamples:    []string{"<root><item>1</item></root>"},
		FormatAliases:     []string{"x"},
	}}
}

// Parse implements format.Format.
func (p *Provider) Parse(input string) []value.Interpretation {
	doc, root, ok := decode(input)
	if !ok {
		return nil
	}
	elements := len(xmlquery.Find(doc, "//*"))
	return []value.Interpretation{{
		Value:        value.String(strings.TrimSpace(input)),
		SourceFormat: p.ID(),
		Confidence:   0.9,
		Description:  fmt.Sprintf("XML document, root <%s>, %d elements", root.Data, elements),
	}}
}

// Conversions implements format.Format. Any string node that holds XML
// gains a pretty-printed rendering and a JSON restructuring, which also
// completes chains like base64 -> utf8 -> xml.
func (p *Provider) Conversions(_ context.Context, v value.Value) []value.Conversion {
	if v.Kind != value.KindString {
		return nil
	}
	_, root, ok := decode(v.Str)
	if !ok {
		return nil
	}

	var out []value.Conversion
	var pretty strings.Builder
	writeIndented(&pretty, root, 0)
	out = append(out, value.Conversion{
		Value:        value.String(pretty.String()),
		TargetFormat: "xml-formatted",
		Display:      pretty.String(),
		Kind:         value.KindRepresentation,
		Priority:     value.PriorityStructured,
		DisplayOnly:  true,
	})

	// Attribute ordering is lost in the JSON shape; mark the edge lossy.
	out = append(out, value.Conversion{
		Value:        value.JSON(nodeToJSON(root)),
		TargetFormat: "json",
		Display:      fmt.Sprintf("JSON structure of <%s>", root.Data),
		Kind:         value.KindConversion,
		Priority:     value.PriorityStructured,
		IsLossy:      true,
		DisplayOnly:  true,
	})
	return out
}

// Render implements format.Format.
func (p *Provider) Render(v value.Value) (string, bool) {
	if v.Kind != value.KindString {
		return "", false
	}
	_, root, ok := decode(v.Str)
	if !ok {
		return "", false
	}
	var b strings.Builder
	writeIndented(&b, root, 0)
	return b.String(), true
}

// decode accepts only well-formed documents with an element root. The
// '<' gate keeps arbitrary text away from the XML parser.
func decode(input string) (*xmlquery.Node, *xmlquery.Node, bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "<") {
		return nil, nil, false
	}
	doc, err := xmlquery.Parse(strings.NewReader(trimmed))
	if err != nil {
		return nil, nil, false
	}
	root := doc.SelectElement("*")
	if root == nil {
		return nil, nil, false
	}
	return doc, root, true
}

// writeIndented pretty-prints an element subtree with two-space indents.
// Elements holding only text stay on one line.
func writeIndented(b *strings.Builder, n *xmlquery.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(n.Data)
	for _, attr := range n.Attr {
		fmt.Fprintf(b, " %s=%q", attr.Name.Local, attr.Value)
	}

	text, children := splitChildren(n)
	switch {
	case text == "" && len(children) == 0:
		b.WriteString("/>")
	case len(children) == 0:
		b.WriteByte('>')
		b.WriteString(text)
		fmt.Fprintf(b, "</%s>", n.Data)
	default:
		b.WriteString(">\n")
		for _, c := range children {
			writeIndented(b, c, depth+1)
			b.WriteByte('\n')
		}
		b.WriteString(indent)
		fmt.Fprintf(b, "</%s>", n.Data)
	}
}

// nodeToJSON restructures an element as JSON: attributes become "@name"
// keys, repeated child elements collapse into arrays, and text-only
// elements become their string content.
func nodeToJSON(n *xmlquery.Node) any {
	text, children := splitChildren(n)
	if len(n.Attr) == 0 && len(children) == 0 {
		return text
	}

	obj := make(map[string]any)
	for _, attr := range n.Attr {
		obj["@"+attr.Name.Local] = attr.Value
	}
	if text != "" {
		obj["#text"] = text
	}
	for _, c := range children {
		child := nodeToJSON(c)
		switch existing := obj[c.Data].(type) {
		case nil:
			obj[c.Data] = child
		case []any:
			obj[c.Data] = append(existing, child)
		default:
			obj[c.Data] = []any{existing, child}
		}
	}
	return obj
}

// splitChildren separates an element's trimmed text content from its
// element children.
func splitChildren(n *xmlquery.Node) (string, []*xmlquery.Node) {
	var text strings.Builder
	var children []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			children = append(children, c)
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(text.String()), children
}
