package extraction

import (
	"encoding/xml"
	"io"
	"strings"
)

// Node is the generic structural representation of one XML record.  Every
// element becomes a Node holding its ordered children, its attribute set, and
// its character data.  All lookups return optional results so that a field
// extraction path collapses to absent on any missing link instead of
// panicking or erroring — missing data is routine, not exceptional.
//
// segments preserves the document-order interleaving of text and child
// elements, which matters for mixed content like claim text with inline
// markup.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
	segments []segment
}

// segment is one unit of element content: either a text chunk or a child
// element, never both.
type segment struct {
	text  string
	child *Node
}

// parseTree parses one well-formed record substring into a Node tree and
// returns the document element.  Parse failure is a per-record condition: the
// caller treats it as "every field lookup fails" and the pass continues with
// the next record.
func parseTree(fragment string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(fragment))
	// Legacy bulk files carry DTD-defined entities and occasional encoding
	// quirks; non-strict mode keeps them from failing whole records.
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose

	var root *Node
	stack := make([]*Node, 0, 16)

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
			n := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root == nil {
					root = n
				}
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
				parent.segments = append(parent.segments, segment{child: n})
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.segments = append(cur.segments, segment{text: string(t)})
			}
		}
	}

	if root == nil {
		return nil, errEmptyDocument
	}
	return root, nil
}

var errEmptyDocument = xmlError("no document element")

type xmlError string

func (e xmlError) Error() string { return string(e) }

// ChildrenNamed returns the ordered child elements with the given local name,
// or nil when none exist.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// First descends through path, taking the first matching child at every
// level.  It reports false as soon as any link is missing.
func (n *Node) First(path ...string) (*Node, bool) {
	cur := n
	for _, name := range path {
		if cur == nil {
			return nil, false
		}
		var next *Node
		for _, c := range cur.Children {
			if c.Name == name {
				next = c
				break
			}
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

// Attr returns the named attribute value when present and non-empty.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Text returns the element's direct character data, whitespace-trimmed,
// excluding the content of child elements.
func (n *Node) Text() (string, bool) {
	if n == nil {
		return "", false
	}
	var sb strings.Builder
	for _, seg := range n.segments {
		if seg.child == nil {
			sb.WriteString(seg.text)
		}
	}
	s := strings.TrimSpace(sb.String())
	return s, s != ""
}

// DeepText returns the whitespace-normalized character data of the element
// and all its descendants in document order.  Inline markup inside titles and
// claim text contributes its text content in place.
func (n *Node) DeepText() (string, bool) {
	if n == nil {
		return "", false
	}
	var sb strings.Builder
	n.writeDeepText(&sb)
	s := strings.Join(strings.Fields(sb.String()), " ")
	return s, s != ""
}

func (n *Node) writeDeepText(sb *strings.Builder) {
	for _, seg := range n.segments {
		if seg.child != nil {
			seg.child.writeDeepText(sb)
			continue
		}
		sb.WriteString(seg.text)
	}
}

// TextAt is First followed by Text: the fully collapsed optional lookup used
// by the field extractors.
func (n *Node) TextAt(path ...string) (string, bool) {
	node, ok := n.First(path...)
	if !ok {
		return "", false
	}
	return node.Text()
}

// DeepTextAt is First followed by DeepText.
func (n *Node) DeepTextAt(path ...string) (string, bool) {
	node, ok := n.First(path...)
	if !ok {
		return "", false
	}
	return node.DeepText()
}
