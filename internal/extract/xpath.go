// internal/extract/xpath.go
package extract

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// xpathSegment is one step of a root-to-node path, built bottom-up then
// reversed for serialization. Exactly one of id/classToken disambiguates the
// tag; ordinal is the 1-based position among same-tag siblings and is left
// zero when no same-tag sibling precedes the node.
type xpathSegment struct {
	tag        string
	id         string
	classToken string
	ordinal    int
}

func (s xpathSegment) serialize() string {
	switch {
	case s.id != "":
		return s.tag + "[@id='" + s.id + "']"
	case s.classToken != "":
		return s.tag + "[@class='" + s.classToken + "']"
	case s.ordinal > 1:
		return s.tag + "[" + strconv.Itoa(s.ordinal) + "]"
	default:
		return s.tag
	}
}

// SynthesizeXPath builds a robust XPath for the node via an ancestor walk.
// A document-unique id terminates the walk (id and class disambiguation
// survive markup reordering better than positional indices; the same-tag
// ordinal is the fallback only when neither is available). A detached node
// yields the empty string; the document root yields "/".
func SynthesizeXPath(p Provider, node *html.Node) string {
	if node == nil {
		return ""
	}
	if node.Type == html.DocumentNode {
		return "/"
	}

	var segments []xpathSegment
	anchored := false
	reachedRoot := false

	for n := node; n != nil; n = n.Parent {
		if n.Type == html.DocumentNode {
			reachedRoot = true
			break
		}
		if n.Type != html.ElementNode {
			continue
		}

		tag := strings.ToLower(n.Data)
		if tag == "" {
			continue
		}

		segment := xpathSegment{tag: tag}

		// An id anchors the path only when it is provably page-unique;
		// duplicated ids fall through to class/ordinal disambiguation.
		// Ids containing a quote cannot be embedded in the [@id='...']
		// literal and are skipped the same way.
		if id := attrOf(n, "id"); id != "" && !strings.ContainsAny(id, "'\"") {
			if len(p.ElementsByID(id)) == 1 {
				segment.id = id
				segments = append(segments, segment)
				anchored = true
				break
			}
		}

		if class := attrOf(n, "class"); class != "" {
			if tokens := strings.Fields(class); len(tokens) > 0 && !strings.ContainsAny(tokens[0], "'\"") {
				segment.classToken = tokens[0]
			}
		}

		if segment.classToken == "" {
			count := 0
			for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
				if prev.Type == html.ElementNode && strings.EqualFold(prev.Data, n.Data) {
					count++
				}
			}
			if count > 0 {
				segment.ordinal = count + 1
			}
		}

		segments = append(segments, segment)
	}

	if len(segments) == 0 || (!anchored && !reachedRoot) {
		// Detached subtree: no stable path exists.
		return ""
	}

	parts := make([]string, 0, len(segments))
	for i := len(segments) - 1; i >= 0; i-- {
		parts = append(parts, segments[i].serialize())
	}

	if anchored {
		return "//" + strings.Join(parts, "/")
	}
	return "/" + strings.Join(parts, "/")
}

func attrOf(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
