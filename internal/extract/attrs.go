// internal/extract/attrs.go
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// excludedAttrs are style, state, and structural attributes that change too
// often (or are handled separately) to be useful in a synthesized selector.
var excludedAttrs = map[string]struct{}{
	"class":                 {},
	"style":                 {},
	"id":                    {},
	"selected":              {},
	"checked":               {},
	"disabled":              {},
	"tabindex":              {},
	"aria-checked":          {},
	"aria-selected":         {},
	"aria-invalid":          {},
	"aria-activedescendant": {},
	"aria-busy":             {},
	"aria-disabled":         {},
	"aria-expanded":         {},
	"aria-grabbed":          {},
	"aria-pressed":          {},
	"aria-valuenow":         {},
	"xmlns":                 {},
}

// HarvestAttributes returns the element's attributes filtered to the stable,
// selector-safe subset: excluded and namespaced (colon-containing) attributes
// are dropped. Order follows the source markup.
func HarvestAttributes(n *html.Node) []html.Attribute {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	out := make([]html.Attribute, 0, len(n.Attr))
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if _, excluded := excludedAttrs[key]; excluded {
			continue
		}
		if strings.Contains(attr.Key, ":") {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// NormalizeAttrPair builds the canonical `name="value"` string for an
// attribute, shared between the statistics pass and selector synthesis so
// rarity lookups hit the same keys. Attributes whose name embeds href/src are
// reduced to a suffix-match form `name$="tail"`. Values over the ceiling are
// rejected (ok=false).
func NormalizeAttrPair(name, value string, ceiling int) (pair string, ok bool) {
	if ceiling > 0 && len(value) > ceiling {
		return "", false
	}
	name = strings.ToLower(name)
	if strings.Contains(name, "href") || strings.Contains(name, "src") {
		return name + `$="` + escapeAttrString(URITail(value, ceiling)) + `"`, true
	}
	return name + `="` + escapeAttrString(value) + `"`, true
}

// escapeAttrString escapes quotes, backslashes, and line breaks so the value
// can sit inside a double-quoted CSS attribute selector string.
var attrStringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\a `,
	"\r", "",
	"\f", `\c `,
)

func escapeAttrString(value string) string {
	return attrStringEscaper.Replace(value)
}
