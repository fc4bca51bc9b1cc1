// internal/extract/accname.go
package extract

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// NameResolver computes the accessible name of an element per the
// priority-ordered ARIA / HTML-AAM chain: labelledby, aria-label, role and
// tag native semantics, generic child content with pseudo-element text, then
// title. Resolution is recursive (labelledby references and child-content
// walks re-enter the resolver); a visited set keyed by node identity breaks
// reference cycles, with a revisit contributing the empty string.
type NameResolver struct {
	provider      Provider
	style         StyleQuerier // nil when the provider lacks the capability
	maxChildDepth int
	logger        *zap.Logger
}

// NewNameResolver wires a resolver to one document's provider.
// maxChildDepth bounds the generic child-content walk (2 in the default
// configuration).
func NewNameResolver(p Provider, maxChildDepth int, logger *zap.Logger) *NameResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxChildDepth <= 0 {
		maxChildDepth = 2
	}
	sq, _ := styleOf(p)
	return &NameResolver{
		provider:      p,
		style:         sq,
		maxChildDepth: maxChildDepth,
		logger:        logger,
	}
}

// AccessibleName computes the element's accessible name. It never returns an
// error: any internal failure degrades to the element's plain text content
// or title attribute.
func (r *NameResolver) AccessibleName(n *html.Node) string {
	return r.resolve(n, false, make(map[*html.Node]struct{}))
}

// resolve is the resolution state machine. inLabelledby marks that we are
// computing the name of an element referenced through aria-labelledby; in
// that context the referenced element's own aria-labelledby is ignored,
// breaking first-level reference cycles by definition.
func (r *NameResolver) resolve(n *html.Node, inLabelledby bool, visited map[*html.Node]struct{}) (name string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("accessible name resolution failed, degrading to text content",
				zap.Any("panic", rec))
			name = r.fallbackName(n)
		}
	}()

	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	if _, seen := visited[n]; seen {
		return ""
	}
	visited[n] = struct{}{}

	// Ignore conditions precede every strategy.
	if r.isIgnored(n) {
		return ""
	}

	// 1. aria-labelledby. When the attribute exists its result is
	// authoritative even if empty; only total absence falls through.
	if !inLabelledby && hasAttr(n, "aria-labelledby") {
		return r.labelledbyName(n, visited)
	}

	// 2. aria-label.
	if label := normalizeSpace(attrOf(n, "aria-label")); label != "" {
		return label
	}

	// 3a. Role-specific computation.
	if role := firstToken(attrOf(n, "role")); role != "" {
		if name := r.roleName(n, role, visited); name != "" {
			return name
		}
	}

	// 3b. Tag-specific native text alternative (HTML-AAM style).
	if name, authoritative := r.nativeName(n, visited); authoritative || name != "" {
		return name
	}

	// Elements in editing mode expose their title attribute only.
	if isContentEditable(n) {
		return normalizeSpace(attrOf(n, "title"))
	}

	// 3c. Generic elements: depth-limited child content combined with
	// pseudo-element generated text, falling back to title.
	return r.genericName(n, visited)
}

// -- Ignore Conditions --

// isIgnored reports elements excluded from name computation entirely:
// aria-hidden, presentational roles, the hidden attribute, and effective
// display:none / visibility:hidden. display:contents does not ignore the
// element; its children are still processed.
func (r *NameResolver) isIgnored(n *html.Node) bool {
	if attrOf(n, "aria-hidden") == "true" {
		return true
	}
	switch firstToken(attrOf(n, "role")) {
	case "presentation", "none":
		return true
	}
	if hasAttr(n, "hidden") {
		return true
	}
	if r.style == nil {
		return false
	}
	// display:none on the element or any ancestor hides the subtree.
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if strings.TrimSpace(r.style.Style(cur, "display")) == "none" {
			return true
		}
	}
	// visibility inherits; the nearest declared value wins.
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		switch strings.TrimSpace(r.style.Style(cur, "visibility")) {
		case "hidden", "collapse":
			return true
		case "visible":
			return false
		}
	}
	return false
}

// -- Strategy 1: aria-labelledby --

// labelledbyName resolves the IDREFS list: tokens are deduplicated
// order-preserving, every element sharing a referenced id contributes (not
// just the first), and the non-empty resolved names are joined with single
// spaces. A token resolving to zero elements contributes nothing and is not
// an error.
func (r *NameResolver) labelledbyName(n *html.Node, visited map[*html.Node]struct{}) string {
	seen := make(map[string]struct{})
	var parts []string
	for _, token := range strings.Fields(attrOf(n, "aria-labelledby")) {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		for _, ref := range r.provider.ElementsByID(token) {
			if name := r.resolve(ref, true, visited); name != "" {
				parts = append(parts, name)
			}
		}
	}
	return normalizeSpace(strings.Join(parts, " "))
}

// -- Strategy 3a: role-specific overrides --

func (r *NameResolver) roleName(n *html.Node, role string, visited map[*html.Node]struct{}) string {
	switch role {
	case "button", "heading", "group", "region":
		return r.childContent(n, visited, 0)
	case "link":
		if name := r.childContent(n, visited, 0); name != "" {
			return name
		}
		return normalizeSpace(attrOf(n, "title"))
	case "textbox", "searchbox":
		if name := normalizeSpace(attrOf(n, "aria-placeholder")); name != "" {
			return name
		}
		return normalizeSpace(attrOf(n, "placeholder"))
	case "slider", "spinbutton", "progressbar":
		if name := normalizeSpace(attrOf(n, "aria-valuetext")); name != "" {
			return name
		}
		return normalizeSpace(attrOf(n, "aria-valuenow"))
	case "img":
		return normalizeSpace(attrOf(n, "alt"))
	}
	return ""
}

// -- Strategy 3b: per-tag native semantics --

// nativeName applies the HTML-AAM style per-tag mapping. authoritative
// results are returned to the caller even when empty (an explicit empty alt
// on an image is a deliberate "no name").
func (r *NameResolver) nativeName(n *html.Node, visited map[*html.Node]struct{}) (name string, authoritative bool) {
	switch strings.ToLower(n.Data) {
	case "img":
		if hasAttr(n, "alt") {
			return normalizeSpace(attrOf(n, "alt")), true
		}
		return normalizeSpace(attrOf(n, "title")), false

	case "input":
		return r.inputName(n, visited)

	case "button":
		if name := r.childContent(n, visited, 0); name != "" {
			return name, false
		}
		return normalizeSpace(attrOf(n, "title")), false

	case "select":
		return r.selectName(n), false

	case "textarea":
		return firstNonEmpty(
			r.associatedLabel(n),
			normalizeSpace(attrOf(n, "aria-placeholder")),
			normalizeSpace(attrOf(n, "placeholder")),
			normalizeSpace(attrOf(n, "title")),
		), false

	case "a":
		if name := r.childContent(n, visited, 0); name != "" {
			return name, false
		}
		return normalizeSpace(attrOf(n, "title")), false

	case "fieldset":
		if legend := firstDescendant(n, "legend"); legend != nil {
			return normalizeSpace(r.provider.InnerText(legend)), false
		}
		return "", false

	case "figure":
		if caption := firstDescendant(n, "figcaption"); caption != nil {
			return normalizeSpace(r.provider.InnerText(caption)), false
		}
		return "", false

	case "table":
		if caption := firstDescendant(n, "caption"); caption != nil {
			if name := normalizeSpace(r.provider.InnerText(caption)); name != "" {
				return name, false
			}
		}
		return normalizeSpace(attrOf(n, "summary")), false

	case "iframe", "object", "embed", "audio", "video":
		return normalizeSpace(attrOf(n, "title")), false

	case "canvas":
		if name := normalizeSpace(attrOf(n, "title")); name != "" {
			return name, false
		}
		// Canvas fallback content is what non-supporting agents render.
		return normalizeSpace(r.provider.InnerText(n)), false

	case "svg":
		if title := firstChildElement(n, "title"); title != nil {
			if name := normalizeSpace(r.provider.InnerText(title)); name != "" {
				return name, false
			}
		}
		return normalizeSpace(attrOf(n, "title")), false

	case "math":
		return r.mathName(n), false
	}
	return "", false
}

// inputName follows the per-type chains for <input>.
func (r *NameResolver) inputName(n *html.Node, visited map[*html.Node]struct{}) (string, bool) {
	switch strings.ToLower(attrOf(n, "type")) {
	case "submit":
		return firstNonEmpty(normalizeSpace(attrOf(n, "value")), "Submit"), false
	case "reset":
		return firstNonEmpty(normalizeSpace(attrOf(n, "value")), "Reset"), false
	case "button":
		return normalizeSpace(attrOf(n, "value")), false
	case "image":
		return firstNonEmpty(
			normalizeSpace(attrOf(n, "alt")),
			normalizeSpace(attrOf(n, "value")),
			"Submit",
		), true
	case "range":
		return firstNonEmpty(
			normalizeSpace(attrOf(n, "aria-valuetext")),
			normalizeSpace(attrOf(n, "aria-valuenow")),
			normalizeSpace(attrOf(n, "value")),
		), false
	default:
		// Label lookup precedes placeholders for text-like inputs.
		return firstNonEmpty(
			r.associatedLabel(n),
			normalizeSpace(attrOf(n, "aria-placeholder")),
			normalizeSpace(attrOf(n, "placeholder")),
			normalizeSpace(attrOf(n, "title")),
		), false
	}
}

// selectName prefers the selected option (else the first), its text then its
// label attribute, before falling back to the associated label.
func (r *NameResolver) selectName(n *html.Node) string {
	var first, selected *html.Node
	var walk func(cur *html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && strings.EqualFold(c.Data, "option") {
				if first == nil {
					first = c
				}
				if selected == nil && hasAttr(c, "selected") {
					selected = c
				}
			}
			walk(c)
		}
	}
	walk(n)

	opt := selected
	if opt == nil {
		opt = first
	}
	if opt != nil {
		if name := normalizeSpace(r.provider.InnerText(opt)); name != "" {
			return name
		}
		if name := normalizeSpace(attrOf(opt, "label")); name != "" {
			return name
		}
	}
	return r.associatedLabel(n)
}

// mathName prefers a text-only <annotation> element, then the alttext
// attribute, then title.
func (r *NameResolver) mathName(n *html.Node) string {
	if annotation := firstDescendant(n, "annotation"); annotation != nil && isTextOnly(annotation) {
		if name := normalizeSpace(r.provider.InnerText(annotation)); name != "" {
			return name
		}
	}
	if name := normalizeSpace(attrOf(n, "alttext")); name != "" {
		return name
	}
	return normalizeSpace(attrOf(n, "title"))
}

// associatedLabel resolves a form control's label: explicit label[for=id]
// takes priority over the nearest ancestor label. The control's own content
// is excluded from the label text.
func (r *NameResolver) associatedLabel(n *html.Node) string {
	if id := attrOf(n, "id"); id != "" {
		for _, label := range r.provider.QueryAll(`label[for="` + escapeAttrString(id) + `"]`) {
			if text := labelText(label, n); text != "" {
				return text
			}
		}
	}
	for cur := n.Parent; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		if strings.EqualFold(cur.Data, "label") {
			return labelText(cur, n)
		}
	}
	return ""
}

// labelText extracts a label's text with the nested control subtree excluded.
func labelText(label, control *html.Node) string {
	var sb strings.Builder
	var walk func(cur *html.Node)
	walk = func(cur *html.Node) {
		if cur == control {
			return
		}
		if cur.Type == html.TextNode {
			sb.WriteString(cur.Data)
			sb.WriteByte(' ')
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(label)
	return normalizeSpace(sb.String())
}

// -- Strategy 3c: generic elements --

// genericName combines the depth-limited child-content walk with ::before /
// ::after generated text. Pseudo text contributes only when neither
// pseudo-element is itself hidden. title is the last resort.
func (r *NameResolver) genericName(n *html.Node, visited map[*html.Node]struct{}) string {
	core := r.childContent(n, visited, 0)

	before, beforeHidden := r.pseudoText(n, "::before")
	after, afterHidden := r.pseudoText(n, "::after")
	if beforeHidden || afterHidden {
		before, after = "", ""
	}

	if name := normalizeSpace(before + " " + core + " " + after); name != "" {
		return name
	}
	return normalizeSpace(attrOf(n, "title"))
}

func (r *NameResolver) pseudoText(n *html.Node, pseudoElement string) (string, bool) {
	if r.style == nil {
		return "", false
	}
	return r.style.PseudoContent(n, pseudoElement)
}

// childContent walks direct children up to maxChildDepth levels:
// text nodes contribute verbatim; image-like children (img, svg, and
// submit/reset/button/image inputs) contribute their fully resolved names;
// other elements contribute their aria-label or resolved aria-labelledby
// when declared, else their own recursively walked content.
func (r *NameResolver) childContent(n *html.Node, visited map[*html.Node]struct{}, depth int) string {
	if depth >= r.maxChildDepth {
		return ""
	}

	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if text := strings.TrimSpace(c.Data); text != "" {
				parts = append(parts, text)
			}
		case html.ElementNode:
			if r.isIgnored(c) {
				continue
			}
			if isImageLike(c) {
				if name := r.resolve(c, false, visited); name != "" {
					parts = append(parts, name)
				}
				continue
			}
			if label := normalizeSpace(attrOf(c, "aria-label")); label != "" {
				parts = append(parts, label)
				continue
			}
			if hasAttr(c, "aria-labelledby") {
				if name := r.labelledbyName(c, visited); name != "" {
					parts = append(parts, name)
				}
				continue
			}
			if text := r.childContent(c, visited, depth+1); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return normalizeSpace(strings.Join(parts, " "))
}

// fallbackName is the degraded result after an internal resolution error.
func (r *NameResolver) fallbackName(n *html.Node) string {
	if n == nil {
		return ""
	}
	if text := normalizeSpace(r.provider.InnerText(n)); text != "" {
		return text
	}
	return normalizeSpace(attrOf(n, "title"))
}

// -- Helpers --

func isImageLike(n *html.Node) bool {
	switch strings.ToLower(n.Data) {
	case "img", "svg":
		return true
	case "input":
		switch strings.ToLower(attrOf(n, "type")) {
		case "submit", "reset", "button", "image":
			return true
		}
	}
	return false
}

func isContentEditable(n *html.Node) bool {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, "contenteditable") {
			val := strings.TrimSpace(strings.ToLower(attr.Val))
			return val == "true" || val == ""
		}
	}
	return false
}

func firstDescendant(n *html.Node, tag string) *html.Node {
	var found *html.Node
	var walk func(cur *html.Node)
	walk = func(cur *html.Node) {
		if found != nil {
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && strings.EqualFold(c.Data, tag) {
				found = c
				return
			}
			walk(c)
		}
	}
	walk(n)
	return found
}

func firstChildElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && strings.EqualFold(c.Data, tag) {
			return c
		}
	}
	return nil
}

func isTextOnly(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			return false
		}
	}
	return true
}

func firstToken(value string) string {
	fields := strings.Fields(strings.ToLower(value))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeSpace collapses all whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// hasAttr reports attribute presence, distinguishing empty from absent.
func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}
