// internal/extract/selector_test.go
package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/axtract/internal/dom"
)

func newSynthesizer(t *testing.T, doc *dom.Document) *SelectorSynthesizer {
	t.Helper()
	stats := CollectStats(doc.Root(), 30)
	return NewSelectorSynthesizer(doc, stats, 3, 30, nil)
}

// assertUniqueMatch verifies the one property every synthesized selector
// must hold: it resolves to exactly the target element in the live document.
func assertUniqueMatch(t *testing.T, doc *dom.Document, selector string, want *html.Node) {
	t.Helper()
	nodes := doc.QueryAll(selector)
	require.Len(t, nodes, 1, "selector %q", selector)
	assert.Same(t, want, nodes[0])
}

func TestSelectorSynthesizer(t *testing.T) {
	t.Run("id wins outright", func(t *testing.T) {
		doc := mustDocument(t, `<html><body><div id="main">x</div></body></html>`)
		div := queryOne(t, doc, "div")

		sel := newSynthesizer(t, doc).Selector(div)
		assert.Equal(t, "#main", sel)
		assertUniqueMatch(t, doc, sel, div)
	})

	t.Run("hostile id is escaped", func(t *testing.T) {
		doc := mustDocument(t, `<html><body><div id="1id">x</div></body></html>`)
		div := queryOne(t, doc, "div")

		sel := newSynthesizer(t, doc).Selector(div)
		assert.Equal(t, `#\31 id`, sel)
		assertUniqueMatch(t, doc, sel, div)
	})

	t.Run("bare class escalates to ancestor id", func(t *testing.T) {
		doc := mustDocument(t,
			`<html><body><div id="wrap"><span class="only">x</span></div></body></html>`)
		span := queryOne(t, doc, "span")

		sel := newSynthesizer(t, doc).Selector(span)
		assert.Equal(t, "#wrap > .only", sel)
		assertUniqueMatch(t, doc, sel, span)
	})

	t.Run("rarest class is chosen", func(t *testing.T) {
		doc := mustDocument(t, `<html><body><div id="w">
			<p class="common rare">target</p>
			<p class="common">other</p>
		</div></body></html>`)
		target := queryOne(t, doc, ".rare")

		sel := newSynthesizer(t, doc).Selector(target)
		assert.Equal(t, "#w > .rare", sel)
		assertUniqueMatch(t, doc, sel, target)
	})

	t.Run("attribute pair used when classless", func(t *testing.T) {
		doc := mustDocument(t, `<html><body><div id="w">
			<input data-kind="email">
			<input data-kind="password">
		</div></body></html>`)
		email := queryOne(t, doc, `[data-kind="email"]`)

		sel := newSynthesizer(t, doc).Selector(email)
		assert.Equal(t, `#w > [data-kind="email"]`, sel)
		assertUniqueMatch(t, doc, sel, email)
	})

	t.Run("same-parent twins get distinct selectors", func(t *testing.T) {
		doc := mustDocument(t, `<html><body><ul id="menu"><li>
			<a class="nav-link" href="/a">A</a>
			<a class="nav-link" href="/b">B</a>
		</li></ul></body></html>`)
		links := doc.QueryAll("a")
		require.Len(t, links, 2)

		synth := newSynthesizer(t, doc)
		first := synth.Selector(links[0])
		second := synth.Selector(links[1])

		assert.NotEqual(t, first, second)
		assertUniqueMatch(t, doc, first, links[0])
		assertUniqueMatch(t, doc, second, links[1])
	})

	t.Run("non element yields empty", func(t *testing.T) {
		doc := mustDocument(t, `<html><body>text</body></html>`)
		synth := newSynthesizer(t, doc)
		assert.Equal(t, "", synth.Selector(nil))
		assert.Equal(t, "", synth.Selector(doc.Root()))
	})
}

func TestPositionalSelector(t *testing.T) {
	doc := mustDocument(t, `<html><body>
		<div><p>one</p><p class="x">two</p></div>
	</body></html>`)
	second := queryOne(t, doc, "p.x")

	sel := PositionalSelector(second)
	assertUniqueMatch(t, doc, sel, second)
}
