// internal/extract/stats_test.go
package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectStats(t *testing.T) {
	root := parseFragment(t, `
		<html><body>
			<div class="card featured"><a href="/account/settings" class="card">one</a></div>
			<div class="card"><span data-kind="cta">two</span></div>
			<span data-kind="cta">three</span>
		</body></html>`)

	table := CollectStats(root, 30)

	t.Run("tag counts", func(t *testing.T) {
		assert.Equal(t, 2, table.Tags["div"])
		assert.Equal(t, 2, table.Tags["span"])
		assert.Equal(t, 1, table.Tags["a"])
		assert.Equal(t, 1, table.Tags["body"])
	})

	t.Run("class token counts", func(t *testing.T) {
		assert.Equal(t, 3, table.ClassCount("card"))
		assert.Equal(t, 1, table.ClassCount("featured"))
		assert.Equal(t, 0, table.ClassCount("absent"))
	})

	t.Run("normalized attribute counts", func(t *testing.T) {
		assert.Equal(t, 2, table.Attributes[`data-kind="cta"`])
		// href values are counted in their suffix-match form.
		assert.Equal(t, 1, table.Attributes[`href$="settings"`])
	})

	t.Run("class tokens are stored escaped", func(t *testing.T) {
		hostile := parseFragment(t, `<p class="1a">x</p><p class="1a">y</p>`)
		table := CollectStats(hostile, 30)
		assert.Equal(t, 2, table.ClassCount("1a"))
		assert.Equal(t, 2, table.Classes[`\31 a`])
	})

	t.Run("nil root yields empty table", func(t *testing.T) {
		table := CollectStats(nil, 30)
		assert.Empty(t, table.Tags)
		assert.Empty(t, table.Classes)
		assert.Empty(t, table.Attributes)
	})
}
