// internal/extract/provider.go
package extract

import "golang.org/x/net/html"

// FuncUnavailable is the sentinel written to a record field when the
// capability that computes it is missing on the provider. Extraction always
// continues; the record simply carries the sentinel.
const FuncUnavailable = "ERROR: function not available"

// Provider is the rendering-provider surface the extraction core consumes:
// a live, queryable tree with attribute reads and one idempotent
// instrumentation write. internal/dom.Document is the in-repo
// implementation; anything satisfying this interface can be substituted.
type Provider interface {
	// Root returns the document node.
	Root() *html.Node
	// QueryAll returns every element matching a CSS selector, in document
	// order. Unparseable selectors match nothing.
	QueryAll(selector string) []*html.Node
	// Count returns the number of elements a CSS selector matches.
	Count(selector string) int
	// ElementsByID returns all elements sharing the id, not just the first.
	ElementsByID(id string) []*html.Node
	// OuterHTML serializes an element's markup.
	OuterHTML(n *html.Node) string
	// InnerText returns the raw concatenated text content.
	InnerText(n *html.Node) string
	// SetAttribute writes the instrumentation attribute.
	SetAttribute(n *html.Node, key, val string)
}

// StyleQuerier is the optional resolved-style capability. Providers lacking
// it still extract; the name resolver simply cannot see stylesheet-driven
// hiding or pseudo-element content.
type StyleQuerier interface {
	// Style returns the resolved value of a property on the element, "" if
	// nothing declares it.
	Style(n *html.Node, property string) string
	// PseudoContent resolves ::before / ::after generated text; hidden
	// reports a pseudo-element suppressed by its own display/visibility.
	PseudoContent(n *html.Node, pseudoElement string) (text string, hidden bool)
}

// XPathEvaluator is the optional XPath verification capability.
type XPathEvaluator interface {
	EvalXPath(expr string) ([]*html.Node, error)
}

// styleOf returns the provider's style capability when present. Capabilities
// are modeled as optional interfaces checked by presence, not runtime type
// probing of individual functions.
func styleOf(p Provider) (StyleQuerier, bool) {
	sq, ok := p.(StyleQuerier)
	return sq, ok
}
