// internal/style/resolver.go
package style

import (
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/axtract/internal/parser"
)

// Resolver answers resolved-style queries against a static document tree.
// It implements the cascade (author sheets in document order, then inline
// styles) with standard specificity ordering. There is no layout: only the
// properties relevant to accessibility extraction (display, visibility,
// pseudo-element content) are ever asked for, but the cascade is generic.
//
// A Resolver is scoped to one document and is not safe for concurrent use.
type Resolver struct {
	sheets []parser.Stylesheet

	computed map[*html.Node]map[parser.Property]parser.Value
	pseudo   map[*html.Node]map[string]map[parser.Property]parser.Value
}

// NewResolver builds a resolver over the given author stylesheets, in
// document order.
func NewResolver(sheets []parser.Stylesheet) *Resolver {
	return &Resolver{
		sheets:   sheets,
		computed: make(map[*html.Node]map[parser.Property]parser.Value),
		pseudo:   make(map[*html.Node]map[string]map[parser.Property]parser.Value),
	}
}

// CollectSheets parses every <style> element under root into stylesheets.
func CollectSheets(root *html.Node) []parser.Stylesheet {
	var sheets []parser.Stylesheet
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "style") {
			var css strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					css.WriteString(c.Data)
				}
			}
			sheets = append(sheets, parser.NewParser(css.String()).Parse())
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return sheets
}

// Value returns the cascaded value of a property on the element itself, or ""
// when no rule declares it. Inheritance is not applied here; callers that
// need inherited semantics (visibility) walk ancestors explicitly.
func (r *Resolver) Value(n *html.Node, property string) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	styles := r.computedFor(n)
	if val, ok := styles[parser.Property(property)]; ok {
		return string(val)
	}
	return ""
}

// PseudoValue returns the cascaded value of a property on a pseudo-element
// ("::before" / "::after") of n, or "".
func (r *Resolver) PseudoValue(n *html.Node, pseudoElement, property string) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	styles := r.pseudoFor(n, pseudoElement)
	if val, ok := styles[parser.Property(property)]; ok {
		return string(val)
	}
	return ""
}

// PseudoContent resolves the generated text of a pseudo-element. hidden
// reports whether the pseudo-element itself is suppressed via display:none or
// visibility:hidden; in that case text is "".
func (r *Resolver) PseudoContent(n *html.Node, pseudoElement string) (text string, hidden bool) {
	styles := r.pseudoFor(n, pseudoElement)
	if len(styles) == 0 {
		return "", false
	}
	if display, ok := styles["display"]; ok && strings.TrimSpace(string(display)) == "none" {
		return "", true
	}
	if vis, ok := styles["visibility"]; ok && strings.TrimSpace(string(vis)) == "hidden" {
		return "", true
	}
	content, ok := styles["content"]
	if !ok {
		return "", false
	}
	return decodeContentValue(n, string(content)), false
}

func (r *Resolver) computedFor(n *html.Node) map[parser.Property]parser.Value {
	if cached, ok := r.computed[n]; ok {
		return cached
	}
	styles := r.cascade(n, "")
	r.computed[n] = styles
	return styles
}

func (r *Resolver) pseudoFor(n *html.Node, pseudoElement string) map[parser.Property]parser.Value {
	byPseudo, ok := r.pseudo[n]
	if !ok {
		byPseudo = make(map[string]map[parser.Property]parser.Value)
		r.pseudo[n] = byPseudo
	}
	if cached, ok := byPseudo[pseudoElement]; ok {
		return cached
	}
	styles := r.cascade(n, pseudoElement)
	byPseudo[pseudoElement] = styles
	return styles
}

type styleOrigin int

const (
	originAuthor styleOrigin = iota
	originInline
)

// declarationWithContext carries a declaration together with the data the
// cascade sorts by.
type declarationWithContext struct {
	declaration parser.Declaration
	specificity [3]int
	origin      styleOrigin
	order       int
}

// cascadePriority ranks declarations before specificity is consulted: author
// normal < inline normal < important (author and inline alike).
func cascadePriority(d declarationWithContext) int {
	if d.declaration.Important {
		return 3
	}
	if d.origin == originInline {
		return 2
	}
	return 1
}

// cascade gathers every declaration whose selector matches (n, pseudoElement)
// and applies them in ascending priority so later writes win. Inline styles
// participate only for the element itself, never for pseudo-elements.
func (r *Resolver) cascade(n *html.Node, pseudoElement string) map[parser.Property]parser.Value {
	var declarations []declarationWithContext
	order := 0

	for _, sheet := range r.sheets {
		for _, rule := range sheet.Rules {
			matched, specificity := matchRule(n, rule.Selectors, pseudoElement)
			if !matched {
				continue
			}
			for _, decl := range rule.Declarations {
				declarations = append(declarations, declarationWithContext{
					declaration: decl,
					specificity: specificity,
					origin:      originAuthor,
					order:       order,
				})
				order++
			}
		}
	}

	if pseudoElement == "" {
		if inline := attrValue(n, "style"); inline != "" {
			for _, decl := range parser.ParseInline(inline) {
				declarations = append(declarations, declarationWithContext{
					declaration: decl,
					specificity: [3]int{1, 0, 0},
					origin:      originInline,
					order:       order,
				})
				order++
			}
		}
	}

	sort.SliceStable(declarations, func(i, j int) bool {
		d1, d2 := declarations[i], declarations[j]
		p1, p2 := cascadePriority(d1), cascadePriority(d2)
		if p1 != p2 {
			return p1 < p2
		}
		s1, s2 := d1.specificity, d2.specificity
		if s1[0] != s2[0] {
			return s1[0] < s2[0]
		}
		if s1[1] != s2[1] {
			return s1[1] < s2[1]
		}
		if s1[2] != s2[2] {
			return s1[2] < s2[2]
		}
		return d1.order < d2.order
	})

	styles := make(map[parser.Property]parser.Value)
	for _, declCtx := range declarations {
		styles[declCtx.declaration.Property] = declCtx.declaration.Value
	}
	return styles
}

// matchRule reports whether any selector in the rule's list matches the node
// for the requested pseudo target, returning the specificity of the first
// selector that matched.
func matchRule(n *html.Node, selectors []parser.ComplexSelector, pseudoElement string) (bool, [3]int) {
	for _, complexSelector := range selectors {
		if complexSelector.PseudoTarget() != pseudoElement {
			continue
		}
		last := len(complexSelector.Parts) - 1
		if last < 0 {
			continue
		}
		if recursiveMatch(n, complexSelector, last) {
			a, b, c := complexSelector.Specificity()
			return true, [3]int{a, b, c}
		}
	}
	return false, [3]int{}
}

// recursiveMatch walks the selector chain right-to-left against the tree.
func recursiveMatch(n *html.Node, complexSelector parser.ComplexSelector, index int) bool {
	if n == nil || index < 0 || n.Type != html.ElementNode {
		return false
	}
	part := complexSelector.Parts[index]
	if !matchesCompound(n, part.Compound) {
		return false
	}
	if index == 0 {
		return true
	}
	next := index - 1
	switch part.Combinator {
	case parser.CombinatorDescendant:
		for parent := n.Parent; parent != nil; parent = parent.Parent {
			if recursiveMatch(parent, complexSelector, next) {
				return true
			}
		}
		return false
	case parser.CombinatorChild:
		return recursiveMatch(n.Parent, complexSelector, next)
	case parser.CombinatorAdjacentSibling:
		return recursiveMatch(previousElementSibling(n), complexSelector, next)
	case parser.CombinatorGeneralSibling:
		for sibling := previousElementSibling(n); sibling != nil; sibling = previousElementSibling(sibling) {
			if recursiveMatch(sibling, complexSelector, next) {
				return true
			}
		}
		return false
	case parser.CombinatorNone:
		return true
	}
	return false
}

func previousElementSibling(n *html.Node) *html.Node {
	for sibling := n.PrevSibling; sibling != nil; sibling = sibling.PrevSibling {
		if sibling.Type == html.ElementNode {
			return sibling
		}
	}
	return nil
}

func matchesCompound(n *html.Node, compound parser.Compound) bool {
	if compound.Unsupported {
		return false
	}
	if compound.Tag != "" && compound.Tag != "*" && !strings.EqualFold(n.Data, compound.Tag) {
		return false
	}
	if compound.ID != "" && attrValue(n, "id") != compound.ID {
		return false
	}
	if len(compound.Classes) > 0 {
		nodeClasses := strings.Fields(attrValue(n, "class"))
		for _, required := range compound.Classes {
			found := false
			for _, cls := range nodeClasses {
				if cls == required {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	for _, attrSel := range compound.Attributes {
		if !matchesAttribute(n, attrSel) {
			return false
		}
	}
	return true
}

func matchesAttribute(n *html.Node, sel parser.AttributeSelector) bool {
	var actual string
	found := false
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, sel.Name) {
			actual = attr.Val
			found = true
			break
		}
	}

	switch sel.Operator {
	case "":
		return found
	case "=":
		return found && actual == sel.Value
	case "~=":
		if !found {
			return false
		}
		for _, word := range strings.Fields(actual) {
			if word == sel.Value {
				return true
			}
		}
		return false
	case "|=":
		return found && (actual == sel.Value || strings.HasPrefix(actual, sel.Value+"-"))
	case "^=":
		return found && sel.Value != "" && strings.HasPrefix(actual, sel.Value)
	case "$=":
		return found && sel.Value != "" && strings.HasSuffix(actual, sel.Value)
	case "*=":
		return found && sel.Value != "" && strings.Contains(actual, sel.Value)
	default:
		return false
	}
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// decodeContentValue turns a CSS content value into plain text. Quoted string
// segments are concatenated; attr(name) resolves against the element; other
// components (counters, url(), keywords) contribute nothing. The keywords
// none and normal yield the empty string.
func decodeContentValue(n *html.Node, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "none" || raw == "normal" {
		return ""
	}

	var out strings.Builder
	for i := 0; i < len(raw); {
		ch := raw[i]
		switch {
		case ch == '"' || ch == '\'':
			quote := ch
			i++
			for i < len(raw) && raw[i] != quote {
				if raw[i] == '\\' && i+1 < len(raw) {
					i++
				}
				out.WriteByte(raw[i])
				i++
			}
			i++ // closing quote
		case strings.HasPrefix(raw[i:], "attr("):
			end := strings.IndexByte(raw[i:], ')')
			if end == -1 {
				return out.String()
			}
			name := strings.TrimSpace(raw[i+len("attr(") : i+end])
			out.WriteString(attrValue(n, name))
			i += end + 1
		default:
			i++
		}
	}
	return out.String()
}
