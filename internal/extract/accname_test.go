// internal/extract/accname_test.go
package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveName(t *testing.T, markup, selector string) string {
	t.Helper()
	doc := mustDocument(t, markup)
	resolver := NewNameResolver(doc, 2, nil)
	return resolver.AccessibleName(queryOne(t, doc, selector))
}

func TestAccessibleName_AriaLabelledby(t *testing.T) {
	t.Run("joins referenced names in order", func(t *testing.T) {
		name := resolveName(t, `<html><body>
			<div id="a">First</div>
			<div id="b">Second</div>
			<button aria-labelledby="a b">ignored</button>
		</body></html>`, "button")
		assert.Equal(t, "First Second", name)
	})

	t.Run("authoritative even when every reference is missing", func(t *testing.T) {
		name := resolveName(t, `<html><body>
			<button aria-labelledby="ghost">visible text</button>
		</body></html>`, "button")
		assert.Equal(t, "", name)
	})

	t.Run("duplicate tokens contribute once", func(t *testing.T) {
		name := resolveName(t, `<html><body>
			<span id="a">Once</span>
			<button aria-labelledby="a a">x</button>
		</body></html>`, "button")
		assert.Equal(t, "Once", name)
	})

	t.Run("every element sharing the id contributes", func(t *testing.T) {
		name := resolveName(t, `<html><body>
			<span id="dup">One</span><span id="dup">Two</span>
			<button aria-labelledby="dup">x</button>
		</body></html>`, "button")
		assert.Equal(t, "One Two", name)
	})

	t.Run("referenced element ignores its own labelledby", func(t *testing.T) {
		// A pair of mutually referencing elements must terminate with each
		// side's own content, not recurse.
		name := resolveName(t, `<html><body>
			<div id="x" aria-labelledby="y">Left</div>
			<div id="y" aria-labelledby="x">Right</div>
		</body></html>`, "#x")
		assert.Equal(t, "Right", name)
	})

	t.Run("takes priority over aria-label", func(t *testing.T) {
		name := resolveName(t, `<html><body>
			<span id="ref">From Ref</span>
			<button aria-labelledby="ref" aria-label="From Label">x</button>
		</body></html>`, "button")
		assert.Equal(t, "From Ref", name)
	})
}

func TestAccessibleName_AriaLabel(t *testing.T) {
	t.Run("overrides content", func(t *testing.T) {
		name := resolveName(t, `<html><body><span aria-label="Hello">ignored</span></body></html>`, "span")
		assert.Equal(t, "Hello", name)
	})

	t.Run("whitespace only label falls through", func(t *testing.T) {
		name := resolveName(t, `<html><body><span aria-label="   ">Content</span></body></html>`, "span")
		assert.Equal(t, "Content", name)
	})
}

func TestAccessibleName_IgnoreConditions(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		selector string
	}{
		{"aria-hidden", `<html><body><button aria-hidden="true">x</button></body></html>`, "button"},
		{"presentation role", `<html><body><img role="presentation" alt="x"></body></html>`, "img"},
		{"none role", `<html><body><img role="none" alt="x"></body></html>`, "img"},
		{"hidden attribute", `<html><body><button hidden>x</button></body></html>`, "button"},
		{"stylesheet display none", `<html><head><style>.gone{display:none}</style></head><body><button class="gone">x</button></body></html>`, "button"},
		{"inherited visibility hidden", `<html><head><style>.veil{visibility:hidden}</style></head><body><div class="veil"><button>x</button></div></body></html>`, "button"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "", resolveName(t, tt.markup, tt.selector))
		})
	}

	t.Run("visibility visible on descendant un-hides", func(t *testing.T) {
		name := resolveName(t, `<html><head><style>
			.veil{visibility:hidden}
			.shown{visibility:visible}
		</style></head><body>
			<div class="veil"><button class="shown">Back</button></div>
		</body></html>`, "button")
		assert.Equal(t, "Back", name)
	})

	t.Run("hidden children are excluded from content", func(t *testing.T) {
		name := resolveName(t, `<html><body>
			<button>Visible<span aria-hidden="true">Secret</span></button>
		</body></html>`, "button")
		assert.Equal(t, "Visible", name)
	})
}

func TestAccessibleName_RoleOverrides(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		selector string
		want     string
	}{
		{"role button uses content", `<html><body><div role="button" title="t">Press</div></body></html>`, "div", "Press"},
		{"role link falls back to title", `<html><body><div role="link" title="Destination"></div></body></html>`, "div", "Destination"},
		{"role textbox placeholder", `<html><body><div role="textbox" placeholder="Type here"></div></body></html>`, "div", "Type here"},
		{"role textbox prefers aria-placeholder", `<html><body><div role="textbox" aria-placeholder="A" placeholder="B"></div></body></html>`, "div", "A"},
		{"role slider valuetext", `<html><body><div role="slider" aria-valuetext="Medium" aria-valuenow="50"></div></body></html>`, "div", "Medium"},
		{"role slider valuenow fallback", `<html><body><div role="slider" aria-valuenow="50"></div></body></html>`, "div", "50"},
		{"role img alt", `<html><body><div role="img" alt="Chart"></div></body></html>`, "div", "Chart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveName(t, tt.markup, tt.selector))
		})
	}
}

func TestAccessibleName_Images(t *testing.T) {
	t.Run("alt text", func(t *testing.T) {
		assert.Equal(t, "Logo",
			resolveName(t, `<html><body><img alt="Logo" title="t"></body></html>`, "img"))
	})

	t.Run("explicit empty alt is authoritative", func(t *testing.T) {
		assert.Equal(t, "",
			resolveName(t, `<html><body><img alt="" title="decorative"></body></html>`, "img"))
	})

	t.Run("missing alt falls back to title", func(t *testing.T) {
		assert.Equal(t, "Photo",
			resolveName(t, `<html><body><img title="Photo"></body></html>`, "img"))
	})
}

func TestAccessibleName_Inputs(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		selector string
		want     string
	}{
		{"submit default", `<html><body><input type="submit"></body></html>`, "input", "Submit"},
		{"submit with value", `<html><body><input type="submit" value="Go"></body></html>`, "input", "Go"},
		{"reset default", `<html><body><input type="reset"></body></html>`, "input", "Reset"},
		{"image alt", `<html><body><input type="image" alt="Search"></body></html>`, "input", "Search"},
		{"image default", `<html><body><input type="image"></body></html>`, "input", "Submit"},
		{"range valuetext", `<html><body><input type="range" aria-valuetext="Loud" value="9"></body></html>`, "input", "Loud"},
		{"text placeholder", `<html><body><input type="text" placeholder="Email"></body></html>`, "input", "Email"},
		{"explicit label wins over placeholder", `<html><body><label for="q">Search</label><input id="q" type="text" placeholder="p"></body></html>`, "input", "Search"},
		{"wrapping label excludes control text", `<html><body><label>Quantity <input type="number" value="3"></label></body></html>`, "input", "Quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveName(t, tt.markup, tt.selector))
		})
	}
}

func TestAccessibleName_NativeElements(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		selector string
		want     string
	}{
		{"button content", `<html><body><button>Save</button></body></html>`, "button", "Save"},
		{"button with image child", `<html><body><button><img alt="Go"></button></body></html>`, "button", "Go"},
		{"anchor content", `<html><body><a href="/x">Home</a></body></html>`, "a", "Home"},
		{"anchor title fallback", `<html><body><a href="/x" title="Homepage"><img alt=""></a></body></html>`, "a", "Homepage"},
		{"select selected option", `<html><body><select><option>A</option><option selected>B</option></select></body></html>`, "select", "B"},
		{"select first option default", `<html><body><select><option>A</option><option>B</option></select></body></html>`, "select", "A"},
		{"textarea label chain", `<html><body><label for="m">Message</label><textarea id="m" placeholder="p"></textarea></body></html>`, "textarea", "Message"},
		{"fieldset legend", `<html><body><fieldset><legend>Shipping</legend><input></fieldset></body></html>`, "fieldset", "Shipping"},
		{"figure figcaption", `<html><body><figure><img alt=""><figcaption>Fig 1</figcaption></figure></body></html>`, "figure", "Fig 1"},
		{"table caption", `<html><body><table><caption>Prices</caption><tr><td>1</td></tr></table></body></html>`, "table", "Prices"},
		{"iframe title", `<html><body><iframe title="Ad frame"></iframe></body></html>`, "iframe", "Ad frame"},
		{"canvas fallback content", `<html><body><canvas>Chart of sales</canvas></body></html>`, "canvas", "Chart of sales"},
		{"svg title element", `<html><body><svg><title>Close icon</title></svg></body></html>`, "svg", "Close icon"},
		{"math text-only annotation", `<html><body><math alttext="x squared"><annotation>x^2</annotation></math></body></html>`, "math", "x^2"},
		{"math alttext fallback", `<html><body><math alttext="x squared"><mi>x</mi></math></body></html>`, "math", "x squared"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveName(t, tt.markup, tt.selector))
		})
	}
}

func TestAccessibleName_ContentEditable(t *testing.T) {
	t.Run("title only", func(t *testing.T) {
		assert.Equal(t, "Editor",
			resolveName(t, `<html><body><div contenteditable="true" title="Editor">draft text</div></body></html>`, "div"))
	})

	t.Run("without title yields empty", func(t *testing.T) {
		assert.Equal(t, "",
			resolveName(t, `<html><body><div contenteditable>draft text</div></body></html>`, "div"))
	})
}

func TestAccessibleName_GenericContent(t *testing.T) {
	t.Run("depth limited child walk", func(t *testing.T) {
		// Default depth 2: text of direct children and grandchildren
		// contributes, anything deeper does not.
		name := resolveName(t, `<html><body>
			<div id="t">top <span>mid <em>deep</em></span></div>
		</body></html>`, "#t")
		assert.Equal(t, "top mid", name)
	})

	t.Run("pseudo element text wraps content", func(t *testing.T) {
		name := resolveName(t, `<html><head><style>
			.badge::before{content:"New: "}
			.badge::after{content:"!"}
		</style></head><body><div class="badge">Item</div></body></html>`, "div.badge")
		assert.Equal(t, "New: Item !", name)
	})

	t.Run("hidden pseudo element suppresses generated text", func(t *testing.T) {
		name := resolveName(t, `<html><head><style>
			.badge::before{content:"New: "; display:none}
		</style></head><body><div class="badge">Item</div></body></html>`, "div.badge")
		assert.Equal(t, "Item", name)
	})

	t.Run("title as last resort", func(t *testing.T) {
		assert.Equal(t, "Tip",
			resolveName(t, `<html><body><div title="Tip"><img alt=""></div></body></html>`, "div"))
	})
}

func TestAccessibleName_Degradation(t *testing.T) {
	t.Run("nil node", func(t *testing.T) {
		doc := mustDocument(t, `<html><body></body></html>`)
		resolver := NewNameResolver(doc, 2, nil)
		assert.Equal(t, "", resolver.AccessibleName(nil))
	})

	t.Run("self referencing labelledby terminates", func(t *testing.T) {
		require.NotPanics(t, func() {
			name := resolveName(t, `<html><body>
				<div id="self" aria-labelledby="self">Own</div>
			</body></html>`, "#self")
			// The revisit guard stops the self reference; the attribute is
			// still authoritative, so the result is the empty name.
			assert.Equal(t, "", name)
		})
	})
}
