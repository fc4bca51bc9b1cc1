// internal/extract/stats.go
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// FrequencyTable holds exact occurrence counts for selector fragments across
// the entire document, so rarity scoring reflects true global uniqueness
// pressure rather than just the candidate subset. It is built once per
// document and read-only afterwards; ownership is scoped to one extraction
// call (never ambient state).
type FrequencyTable struct {
	// Tags maps lowercase tag name to occurrence count.
	Tags map[string]int
	// Classes maps the escaped class token to occurrence count.
	Classes map[string]int
	// Attributes maps the normalized `name="value"` (or `name$="tail"`)
	// string to occurrence count.
	Attributes map[string]int
}

// ClassCount returns the count for a raw (unescaped) class token.
func (t *FrequencyTable) ClassCount(token string) int {
	return t.Classes[Escape(token)]
}

// CollectStats walks every element of the document once and builds the
// frequency table. It never fails; a document with no elements yields an
// empty (sparse) table. ceiling is the attribute value length limit applied
// by NormalizeAttrPair.
func CollectStats(root *html.Node, ceiling int) *FrequencyTable {
	table := &FrequencyTable{
		Tags:       make(map[string]int),
		Classes:    make(map[string]int),
		Attributes: make(map[string]int),
	}
	if root == nil {
		return table
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			table.Tags[strings.ToLower(n.Data)]++

			for _, attr := range n.Attr {
				if attr.Key == "class" {
					for _, token := range strings.Fields(attr.Val) {
						table.Classes[Escape(token)]++
					}
					break
				}
			}

			for _, attr := range HarvestAttributes(n) {
				if pair, ok := NormalizeAttrPair(attr.Key, attr.Val, ceiling); ok {
					table.Attributes[pair]++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return table
}
