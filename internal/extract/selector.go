// internal/extract/selector.go
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// SelectorSynthesizer builds CSS-style selectors for nodes using the
// document frequency table for rarity scoring and the live document for
// uniqueness proofs. The table is injected per extraction call; the
// synthesizer holds no ambient state, so concurrent extractions with their
// own table and provider are safe.
type SelectorSynthesizer struct {
	provider     Provider
	stats        *FrequencyTable
	depthCeiling int
	attrCeiling  int
	logger       *zap.Logger
}

// NewSelectorSynthesizer wires a synthesizer to one document's provider and
// frequency table. depthCeiling bounds ancestor escalation (3 in the default
// configuration); attrCeiling is the attribute value length limit shared
// with the statistics pass.
func NewSelectorSynthesizer(p Provider, stats *FrequencyTable, depthCeiling, attrCeiling int, logger *zap.Logger) *SelectorSynthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if depthCeiling <= 0 {
		depthCeiling = 3
	}
	return &SelectorSynthesizer{
		provider:     p,
		stats:        stats,
		depthCeiling: depthCeiling,
		attrCeiling:  attrCeiling,
		logger:       logger,
	}
}

// Generic base-selector patterns. These shapes are not guaranteed unique
// outside the current document snapshot, so they trigger ancestor
// escalation: a bare class, a bare attribute selector, a bare tag, and a
// simple tag.class compound.
var (
	bareClassPattern = regexp.MustCompile(`^\.\S+$`)
	bareAttrPattern  = regexp.MustCompile(`^\[[^\]]+\]$`)
	bareTagPattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)
	tagClassPattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*\.\S+$`)
)

func isGenericSelector(sel string) bool {
	return bareClassPattern.MatchString(sel) ||
		bareAttrPattern.MatchString(sel) ||
		bareTagPattern.MatchString(sel) ||
		tagClassPattern.MatchString(sel)
}

// Selector synthesizes a selector for the node. The result is guaranteed to
// match the node when queried; global uniqueness is best-effort, escalating
// through ancestor context and nth-child disambiguation up to the depth
// ceiling. Any panic during synthesis degrades to a pure positional
// hierarchical selector.
func (s *SelectorSynthesizer) Selector(node *html.Node) (selector string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("selector synthesis failed, using positional fallback",
				zap.Any("panic", r))
			selector = PositionalSelector(node)
		}
	}()

	if node == nil || node.Type != html.ElementNode {
		return ""
	}

	base := s.baseSelector(node)
	if !isGenericSelector(base) {
		return base
	}

	selector = s.escalate(node, base)

	// Ancestor context cannot separate same-parent twins (identical tag and
	// classes under one parent); pin the target itself as the last resort.
	if s.provider.Count(selector) > 1 {
		if pos := elementPosition(node); pos > 0 {
			selector += ":nth-child(" + strconv.Itoa(pos) + ")"
		}
	}
	return selector
}

// baseSelector picks the conventional CSS priority: id, else the rarest
// class by document frequency (ties broken by first-encountered), else the
// rarest qualifying attribute, else the bare tag name.
func (s *SelectorSynthesizer) baseSelector(node *html.Node) string {
	if id := attrOf(node, "id"); id != "" {
		return "#" + Escape(id)
	}

	if token := s.rarestClass(node); token != "" {
		return "." + Escape(token)
	}

	if pair := s.rarestAttribute(node); pair != "" {
		return "[" + pair + "]"
	}

	return strings.ToLower(node.Data)
}

// rarestClass returns the node's class token with the lowest document-wide
// count, "" when the node has no classes.
func (s *SelectorSynthesizer) rarestClass(node *html.Node) string {
	best := ""
	bestCount := -1
	for _, token := range strings.Fields(attrOf(node, "class")) {
		count := s.stats.ClassCount(token)
		if bestCount == -1 || count < bestCount {
			best = token
			bestCount = count
		}
	}
	return best
}

// rarestAttribute returns the normalized pair with the lowest document-wide
// count among the node's harvested attributes, "" when none qualify.
func (s *SelectorSynthesizer) rarestAttribute(node *html.Node) string {
	best := ""
	bestCount := -1
	for _, attr := range HarvestAttributes(node) {
		pair, ok := NormalizeAttrPair(attr.Key, attr.Val, s.attrCeiling)
		if !ok {
			continue
		}
		count := s.stats.Attributes[pair]
		if bestCount == -1 || count < bestCount {
			best = pair
			bestCount = count
		}
	}
	return best
}

// escalate walks upward from the immediate parent, prefixing ancestor
// context until an id is used, the depth ceiling is reached, or the document
// root is reached. Composed selectors still matching more than one element
// get an nth-child disambiguator on the ancestor fragment.
func (s *SelectorSynthesizer) escalate(node *html.Node, accumulated string) string {
	ancestor := node.Parent
	for depth := 0; depth < s.depthCeiling && ancestor != nil && ancestor.Type == html.ElementNode; depth++ {
		if id := attrOf(ancestor, "id"); id != "" {
			// Ids are assumed unique; anchor here and stop climbing.
			fragment := "#" + Escape(id)
			return s.composeWithNthChild(fragment, accumulated, ancestor)
		}

		fragment := strings.ToLower(ancestor.Data)
		if token := s.rarestPositiveClass(ancestor); token != "" {
			fragment += "." + Escape(token)
		}
		accumulated = s.composeWithNthChild(fragment, accumulated, ancestor)
		ancestor = ancestor.Parent
	}
	return accumulated
}

// rarestPositiveClass picks the ancestor's rarest class restricted to
// classes the frequency table has actually seen.
func (s *SelectorSynthesizer) rarestPositiveClass(node *html.Node) string {
	best := ""
	bestCount := -1
	for _, token := range strings.Fields(attrOf(node, "class")) {
		count := s.stats.ClassCount(token)
		if count <= 0 {
			continue
		}
		if bestCount == -1 || count < bestCount {
			best = token
			bestCount = count
		}
	}
	return best
}

// composeWithNthChild joins `ancestorFragment > accumulated` and, when the
// composition is still ambiguous in the live document, pins the ancestor by
// its 1-based position among its parent's element children.
func (s *SelectorSynthesizer) composeWithNthChild(fragment, accumulated string, ancestor *html.Node) string {
	composed := fragment + " > " + accumulated
	if s.provider.Count(composed) > 1 {
		if pos := elementPosition(ancestor); pos > 0 {
			fragment += ":nth-child(" + strconv.Itoa(pos) + ")"
			composed = fragment + " > " + accumulated
		}
	}
	return composed
}

// elementPosition returns the node's 1-based position among its parent's
// element children, 0 for a detached node.
func elementPosition(n *html.Node) int {
	if n == nil || n.Parent == nil {
		return 0
	}
	pos := 1
	for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
		if prev.Type == html.ElementNode {
			pos++
		}
	}
	return pos
}

// PositionalSelector is the last-resort fallback: a pure hierarchical
// selector built from the node up to the root without consulting the
// frequency table. Each level contributes tag[.firstClass][:nth-child(N)].
func PositionalSelector(node *html.Node) string {
	if node == nil {
		return ""
	}
	var parts []string
	for n := node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		part := strings.ToLower(n.Data)
		if tokens := strings.Fields(attrOf(n, "class")); len(tokens) > 0 {
			part += "." + Escape(tokens[0])
		}
		if pos := elementPosition(n); pos > 1 {
			part += ":nth-child(" + strconv.Itoa(pos) + ")"
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return ""
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}
