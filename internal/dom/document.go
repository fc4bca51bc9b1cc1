// internal/dom/document.go
package dom

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/axtract/internal/style"
)

// Document is the rendering provider: a live, queryable tree materialized
// from raw markup, with resolved-style and pseudo-element content queries
// backed by the in-repo style resolver.
//
// A Document is owned by a single extraction call. Nothing here is safe for
// concurrent use; concurrent extractions must each materialize their own
// Document (one isolated rendering context per call).
type Document struct {
	root     *html.Node
	gq       *goquery.Document
	resolver *style.Resolver
}

// NewDocument parses markup into a Document. Empty or whitespace-only input
// is rejected before any DOM work begins.
func NewDocument(markup string) (*Document, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, fmt.Errorf("document markup is empty")
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to materialize document: %w", err)
	}

	return &Document{
		root:     root,
		gq:       goquery.NewDocumentFromNode(root),
		resolver: style.NewResolver(style.CollectSheets(root)),
	}, nil
}

// Root returns the document node of the materialized tree.
func (d *Document) Root() *html.Node {
	return d.root
}

// QueryAll returns every element matching the CSS selector, in document
// order. An unparseable selector matches nothing.
func (d *Document) QueryAll(selector string) []*html.Node {
	return d.gq.Find(selector).Nodes
}

// Count returns the number of elements the CSS selector matches. It is the
// uniqueness-proof primitive for selector synthesis.
func (d *Document) Count(selector string) int {
	return d.gq.Find(selector).Length()
}

// ElementsByID returns all elements whose id attribute equals id, not just
// the first. If the attribute query cannot be evaluated, it falls back to a
// manual walk returning the first match.
func (d *Document) ElementsByID(id string) []*html.Node {
	if id == "" {
		return nil
	}
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(id)
	nodes := d.gq.Find(`[id="` + escaped + `"]`).Nodes
	if len(nodes) > 0 {
		return nodes
	}
	if n := d.findByIDWalk(id); n != nil {
		return []*html.Node{n}
	}
	return nil
}

func (d *Document) findByIDWalk(id string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && AttrValue(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return found
}

// EvalXPath evaluates an XPath expression against the document. It is used
// to verify synthesized paths; an invalid expression yields an error rather
// than a panic.
func (d *Document) EvalXPath(expr string) ([]*html.Node, error) {
	nodes, err := htmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath evaluation failed: %w", err)
	}
	return nodes, nil
}

// OuterHTML serializes the element's original markup.
func (d *Document) OuterHTML(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// InnerText returns the raw concatenated text content of the node.
func (d *Document) InnerText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return htmlquery.InnerText(n)
}

// Style returns the resolved value of a CSS property on the element itself,
// or "" when nothing declares it.
func (d *Document) Style(n *html.Node, property string) string {
	return d.resolver.Value(n, property)
}

// PseudoContent resolves the generated text of the element's ::before or
// ::after pseudo-element. hidden reports a pseudo-element suppressed by its
// own display:none or visibility:hidden.
func (d *Document) PseudoContent(n *html.Node, pseudoElement string) (text string, hidden bool) {
	return d.resolver.PseudoContent(n, pseudoElement)
}

// SetAttribute writes (or overwrites) an attribute on the element. This is
// the single instrumentation write the extraction core performs.
func (d *Document) SetAttribute(n *html.Node, key, val string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// AttrValue returns the value of an attribute, or "" when absent.
func AttrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasAttr reports attribute presence, distinguishing empty from absent.
func HasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
