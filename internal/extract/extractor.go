// internal/extract/extractor.go
package extract

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/axtract/api/schemas"
	"github.com/xkilldash9x/axtract/internal/config"
	"github.com/xkilldash9x/axtract/internal/dom"
)

// DefaultPatterns is the fixed, ordered allowlist of CSS patterns that
// selects candidate elements: structural landmarks, headings, links and form
// controls, media, and explicit ARIA role values. Custom and namespaced
// elements are matched by a supplemental tree scan since their tag shapes
// are not expressible as CSS selectors.
var DefaultPatterns = []string{
	// Structural landmarks.
	"header", "nav", "main", "footer", "aside", "form", "section[aria-label]",
	"h1", "h2", "h3", "h4", "h5", "h6",
	// Links and form controls.
	"a", "button", "input", "select", "textarea", "label",
	"summary", "details", "[contenteditable]",
	// Media and replaced content.
	"img", "svg", "audio", "video", "canvas", "iframe", "object", "embed",
	"figure", "table", "math",
	// Explicit ARIA roles.
	"[role=button]", "[role=link]", "[role=checkbox]", "[role=radio]",
	"[role=tab]", "[role=menuitem]", "[role=textbox]", "[role=searchbox]",
	"[role=slider]", "[role=spinbutton]", "[role=progressbar]",
	"[role=heading]", "[role=img]", "[role=group]", "[role=region]",
	"[role=navigation]", "[role=banner]", "[role=main]", "[role=contentinfo]",
}

// Capabilities carries the per-element computation functions. They are
// modeled as presence-checked function values: a nil capability degrades the
// corresponding record field to the FuncUnavailable sentinel instead of
// aborting extraction.
type Capabilities struct {
	Selector func(n *html.Node) string
	XPath    func(n *html.Node) string
	Name     func(n *html.Node) string
}

// Extractor assembles the accessibility profile for one document per call.
// It owns no document state between calls; every Extract materializes an
// isolated rendering context, so concurrent Extract calls are safe.
type Extractor struct {
	cfg    config.ExtractorConfig
	logger *zap.Logger
}

// New creates an Extractor with the given configuration.
func New(cfg config.ExtractorConfig, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: cfg.WithDefaults(), logger: logger}
}

// Extract materializes the markup and returns one record per candidate
// element. Only document materialization failure is fatal; any per-element
// synthesis failure degrades that field and processing continues.
func (e *Extractor) Extract(markup string) ([]schemas.ElementRecord, error) {
	doc, err := dom.NewDocument(markup)
	if err != nil {
		return nil, fmt.Errorf("extraction aborted: %w", err)
	}
	return e.ExtractFrom(doc), nil
}

// ExtractFrom runs extraction against an already materialized provider. The
// statistics pass runs exactly once; all per-element computations execute
// sequentially against the same stable snapshot.
func (e *Extractor) ExtractFrom(p Provider) []schemas.ElementRecord {
	stats := CollectStats(p.Root(), e.cfg.AttributeValueCeiling)

	caps := e.capabilities(p, stats)

	patterns := e.cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	processed := make(map[*html.Node]struct{})
	var records []schemas.ElementRecord

	emit := func(n *html.Node) {
		if _, done := processed[n]; done {
			return
		}
		processed[n] = struct{}{}
		records = append(records, e.buildRecord(p, caps, n))
	}

	for _, pattern := range patterns {
		for _, n := range p.QueryAll(pattern) {
			emit(n)
		}
	}
	for _, n := range irregularElements(p.Root()) {
		emit(n)
	}

	e.logger.Debug("extraction complete",
		zap.Int("candidates", len(processed)),
		zap.Int("records", len(records)))
	return records
}

// capabilities wires the three synthesizers to one document's provider and
// frequency table.
func (e *Extractor) capabilities(p Provider, stats *FrequencyTable) Capabilities {
	selSynth := NewSelectorSynthesizer(p, stats,
		e.cfg.AncestorDepthCeiling, e.cfg.AttributeValueCeiling, e.logger)
	nameRes := NewNameResolver(p, e.cfg.ChildContentDepth, e.logger)

	return Capabilities{
		Selector: selSynth.Selector,
		XPath:    func(n *html.Node) string { return SynthesizeXPath(p, n) },
		Name:     nameRes.AccessibleName,
	}
}

// buildRecord captures the original markup before the instrumentation write,
// marks the element as exposed, then computes the three identifiers and
// mirrors the optional source attributes.
func (e *Extractor) buildRecord(p Provider, caps Capabilities, n *html.Node) schemas.ElementRecord {
	record := schemas.ElementRecord{
		// Original markup must predate the instrumentation attribute.
		Element:   p.OuterHTML(n),
		TagName:   strings.ToLower(n.Data),
		InnerText: p.InnerText(n),
	}

	// The exposure mark is idempotent: an already instrumented element
	// keeps its identifier.
	if attrOf(n, e.cfg.InstrumentationAttribute) == "" {
		p.SetAttribute(n, e.cfg.InstrumentationAttribute, uuid.NewString())
	}

	record.Selector = e.applyCapability(caps.Selector, n, "selector")
	record.XPath = e.applyCapability(caps.XPath, n, "xpath")
	record.AccessibleText = e.applyCapability(caps.Name, n, "accessible name")

	record.Role = mirrorAttr(n, "role")
	record.AriaLabel = mirrorAttr(n, "aria-label")
	record.AriaLabelledby = mirrorAttr(n, "aria-labelledby")
	record.Href = mirrorAttr(n, "href")
	record.Alt = mirrorAttr(n, "alt")
	record.Placeholder = mirrorAttr(n, "placeholder")
	record.AltText = mirrorAttr(n, "alttext")
	record.Annotation = mirrorAttr(n, "annotation")
	record.Title = mirrorAttr(n, "title")

	if sq, ok := styleOf(p); ok {
		if text, hidden := sq.PseudoContent(n, "::before"); !hidden && text != "" {
			record.PseudoBefore = schemas.Str(text)
		}
		if text, hidden := sq.PseudoContent(n, "::after"); !hidden && text != "" {
			record.PseudoAfter = schemas.Str(text)
		}
	}

	return record
}

// applyCapability runs one synthesizer for one element, degrading to the
// sentinel when the capability is missing. The synthesizers recover their
// own panics; this guard covers a missing function, never aborting the batch.
func (e *Extractor) applyCapability(fn func(*html.Node) string, n *html.Node, field string) string {
	if fn == nil {
		e.logger.Warn("capability missing, writing sentinel", zap.String("field", field))
		return FuncUnavailable
	}
	return fn(n)
}

// mirrorAttr copies a source attribute into an optional record field. The
// pointer distinguishes an empty value from an absent attribute; alt="" is
// a deliberate "decorative" signal and must survive serialization.
func mirrorAttr(n *html.Node, key string) *string {
	if !hasAttr(n, key) {
		return nil
	}
	return schemas.Str(attrOf(n, key))
}

// irregularElements scans the tree for custom elements (hyphenated tag
// names) and namespaced elements (colon in the tag name), which the CSS
// allowlist cannot express.
func irregularElements(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.ContainsAny(n.Data, "-:") {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}
