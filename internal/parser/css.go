// internal/parser/css.go
package parser

import (
	"fmt"
	"strings"
)

// Property represents a CSS property name (e.g., "display").
type Property string

// Value represents a raw CSS value (e.g., "none").
type Value string

// Declaration is a single property: value pair.
type Declaration struct {
	Property  Property
	Value     Value
	Important bool
}

// Rule applies a set of declarations to one or more complex selectors.
type Rule struct {
	Selectors    []ComplexSelector
	Declarations []Declaration
}

// Stylesheet is the parsed CSSOM for one <style> element or user sheet.
type Stylesheet struct {
	Rules []Rule
}

// Combinator defines the relationship between adjacent compound selectors.
type Combinator int

const (
	CombinatorNone            Combinator = iota // First compound in the chain.
	CombinatorDescendant                        // Whitespace.
	CombinatorChild                             // >
	CombinatorAdjacentSibling                   // +
	CombinatorGeneralSibling                    // ~
)

// AttributeSelector is a `[name]` or `[name<op>"value"]` component.
type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
}

// Compound is one compound selector: tag, id, classes, attributes, and an
// optional trailing pseudo-element (::before / ::after). Unsupported marks
// compounds carrying pseudo-classes this engine cannot evaluate; the matcher
// treats them as never matching.
type Compound struct {
	Tag           string
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoElement string
	Unsupported   bool
}

// CompoundWithCombinator pairs a compound with the combinator preceding it.
type CompoundWithCombinator struct {
	Combinator Combinator
	Compound   Compound
}

// ComplexSelector is a chain of compounds joined by combinators.
type ComplexSelector struct {
	Parts []CompoundWithCombinator
}

// Specificity returns the (id, class/attr, tag/pseudo-element) triple for the
// whole complex selector.
func (cs ComplexSelector) Specificity() (int, int, int) {
	a, b, c := 0, 0, 0
	for _, part := range cs.Parts {
		sa, sb, sc := part.Compound.Specificity()
		a += sa
		b += sb
		c += sc
	}
	return a, b, c
}

// Specificity for a single compound selector.
func (s Compound) Specificity() (a, b, c int) {
	if s.ID != "" {
		a = 1
	}
	b = len(s.Classes) + len(s.Attributes)
	if s.Tag != "" && s.Tag != "*" {
		c = 1
	}
	if s.PseudoElement != "" {
		c++
	}
	return a, b, c
}

// PseudoTarget returns the pseudo-element the final compound addresses, or ""
// when the selector targets the element itself.
func (cs ComplexSelector) PseudoTarget() string {
	if len(cs.Parts) == 0 {
		return ""
	}
	return cs.Parts[len(cs.Parts)-1].Compound.PseudoElement
}

// IsValid reports whether the compound has at least one component.
func (s Compound) IsValid() bool {
	return s.Tag != "" || s.ID != "" || len(s.Classes) > 0 ||
		len(s.Attributes) > 0 || s.PseudoElement != ""
}

// Parser holds the state of the CSS parser.
type Parser struct {
	input string
	pos   int
}

func NewParser(input string) *Parser {
	return &Parser{input: input}
}

// Parse analyzes the input CSS and builds a Stylesheet. Unparseable rules and
// at-rules are skipped, never fatal; a malformed document yields a sparse
// sheet rather than an error.
func (p *Parser) Parse() Stylesheet {
	var rules []Rule
	for {
		p.consumeWhitespace()
		if p.eof() {
			break
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}
		if p.currentChar() == '@' {
			p.skipAtRule()
			continue
		}

		selectors := p.parseSelectorList()
		if len(selectors) == 0 {
			p.skipTo('{')
			if !p.eof() && p.currentChar() == '{' {
				// skipBlock starts at depth 1, so the brace itself must be
				// consumed first or the skip swallows the following rule too.
				p.consumeChar()
				p.skipBlock('{', '}')
			}
			continue
		}

		declarations, err := p.parseDeclarations()
		if err != nil {
			continue
		}
		if len(declarations) > 0 {
			rules = append(rules, Rule{Selectors: selectors, Declarations: declarations})
		}
	}
	return Stylesheet{Rules: rules}
}

// ParseInline parses the contents of a style="" attribute.
func ParseInline(styleAttr string) []Declaration {
	var decls []Declaration
	for _, part := range strings.Split(styleAttr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		prop, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])
		important := false
		if strings.HasSuffix(strings.ToLower(val), "!important") {
			important = true
			val = strings.TrimSpace(val[:len(val)-len("!important")])
		}
		if prop == "" || val == "" {
			continue
		}
		decls = append(decls, Declaration{
			Property:  Property(strings.ToLower(prop)),
			Value:     Value(val),
			Important: important,
		})
	}
	return decls
}

// parseSelectorList parses a comma-separated list of complex selectors.
func (p *Parser) parseSelectorList() []ComplexSelector {
	var list []ComplexSelector
	for {
		p.consumeWhitespace()
		if p.eof() || p.currentChar() == '{' {
			break
		}
		complex := p.parseComplexSelector()
		if len(complex.Parts) > 0 {
			list = append(list, complex)
		}
		p.consumeWhitespace()
		if p.eof() || p.currentChar() == '{' {
			break
		}
		if p.currentChar() == ',' {
			p.consumeChar()
			continue
		}
		break
	}
	return list
}

// parseComplexSelector parses a sequence of compounds and combinators.
func (p *Parser) parseComplexSelector() ComplexSelector {
	var complexSelector ComplexSelector
	combinator := CombinatorNone

	for {
		p.consumeWhitespace()
		if p.eof() || p.currentChar() == '{' || p.currentChar() == ',' {
			break
		}

		compound, err := p.parseCompound()
		if err != nil {
			// Consume the offending character first so recovery always
			// makes progress.
			p.consumeChar()
			p.skipTo(' ', '>', '+', '~', ',', '{')
			continue
		}
		if compound.IsValid() {
			complexSelector.Parts = append(complexSelector.Parts, CompoundWithCombinator{
				Combinator: combinator,
				Compound:   compound,
			})
		}

		p.consumeWhitespace()
		if p.eof() || p.currentChar() == '{' || p.currentChar() == ',' {
			break
		}

		switch p.currentChar() {
		case '>':
			combinator = CombinatorChild
			p.consumeChar()
		case '+':
			combinator = CombinatorAdjacentSibling
			p.consumeChar()
		case '~':
			combinator = CombinatorGeneralSibling
			p.consumeChar()
		default:
			combinator = CombinatorDescendant
		}
	}
	return complexSelector
}

// parseCompound parses a single compound selector like div#id.a.b::before.
func (p *Parser) parseCompound() (Compound, error) {
	compound := Compound{}

	if !p.eof() {
		ch := p.currentChar()
		if ch == '*' {
			p.consumeChar()
			compound.Tag = "*"
		} else if isIdentStart(ch) {
			compound.Tag = strings.ToLower(p.parseIdentifier())
		}
	}

	for !p.eof() {
		switch p.currentChar() {
		case '#':
			p.consumeChar()
			compound.ID = p.parseIdentifier()
		case '.':
			p.consumeChar()
			compound.Classes = append(compound.Classes, p.parseIdentifier())
		case '[':
			p.consumeChar()
			if attr, err := p.parseAttributeSelector(); err == nil {
				compound.Attributes = append(compound.Attributes, attr)
			}
		case ':':
			p.consumeChar()
			doubled := false
			if !p.eof() && p.currentChar() == ':' {
				p.consumeChar()
				doubled = true
			}
			name := strings.ToLower(p.parseIdentifier())
			// Functional pseudo-classes carry an argument block.
			if !p.eof() && p.currentChar() == '(' {
				p.consumeChar()
				p.skipBlock('(', ')')
			}
			switch {
			case name == "before" || name == "after":
				// Single-colon legacy syntax is accepted alongside ::.
				compound.PseudoElement = "::" + name
			case doubled:
				// Other pseudo-elements (::marker etc.) are out of scope.
				compound.Unsupported = true
			default:
				// Pseudo-classes (:hover, :nth-child, ...) cannot be
				// evaluated against a static tree here.
				compound.Unsupported = true
			}
		default:
			goto done
		}
	}

done:
	if !compound.IsValid() && compound.Tag != "*" {
		return compound, fmt.Errorf("invalid compound selector")
	}
	return compound, nil
}

// parseAttributeSelector parses the contents of `[...]`; the closing ']' is
// consumed on success.
func (p *Parser) parseAttributeSelector() (AttributeSelector, error) {
	p.consumeWhitespace()
	name := p.parseIdentifier()
	p.consumeWhitespace()

	if p.eof() {
		return AttributeSelector{}, fmt.Errorf("unexpected EOF in attribute selector")
	}
	if p.currentChar() == ']' {
		p.consumeChar()
		return AttributeSelector{Name: name}, nil
	}

	var operator strings.Builder
	operator.WriteByte(p.consumeChar())
	if !p.eof() && p.currentChar() == '=' {
		operator.WriteByte(p.consumeChar())
	}
	p.consumeWhitespace()

	var value string
	if p.currentChar() == '"' || p.currentChar() == '\'' {
		quote := p.consumeChar()
		start := p.pos
		for !p.eof() && p.currentChar() != quote {
			p.pos++
		}
		value = p.input[start:p.pos]
		if !p.eof() {
			p.consumeChar()
		}
	} else {
		value = p.parseIdentifier()
	}
	p.consumeWhitespace()

	if p.eof() || p.currentChar() != ']' {
		return AttributeSelector{}, fmt.Errorf("expected ']' to close attribute selector")
	}
	p.consumeChar()

	return AttributeSelector{Name: name, Operator: operator.String(), Value: value}, nil
}

// parseDeclarations parses the content within { ... }.
func (p *Parser) parseDeclarations() ([]Declaration, error) {
	p.consumeWhitespace()
	if p.eof() || p.currentChar() != '{' {
		return nil, fmt.Errorf("expected '{' at start of declarations")
	}
	p.consumeChar()

	var declarations []Declaration
	for {
		p.consumeWhitespace()
		if p.eof() || p.currentChar() == '}' {
			break
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}

		property, value, important := p.parseDeclaration()
		if property != "" && value != "" {
			declarations = append(declarations, Declaration{
				Property:  Property(strings.ToLower(property)),
				Value:     Value(value),
				Important: important,
			})
		}
	}

	if !p.eof() && p.currentChar() == '}' {
		p.consumeChar()
	}
	return declarations, nil
}

// parseDeclaration parses a single 'property: value;' pair.
func (p *Parser) parseDeclaration() (prop, val string, important bool) {
	if !isIdentStart(p.currentChar()) {
		p.skipPastSemicolon()
		return
	}
	prop = p.parseIdentifier()
	p.consumeWhitespace()

	if p.eof() || p.currentChar() != ':' {
		p.skipPastSemicolon()
		return
	}
	p.consumeChar()
	p.consumeWhitespace()

	val = p.parseValue()

	if strings.HasSuffix(strings.ToLower(val), "!important") {
		important = true
		val = strings.TrimSpace(val[:len(val)-len("!important")])
	}

	p.consumeWhitespace()
	if !p.eof() && p.currentChar() == ';' {
		p.consumeChar()
	}
	return
}

// parseValue reads a CSS value until a delimiter, skipping quoted strings and
// parenthesized blocks whole.
func (p *Parser) parseValue() string {
	start := p.pos
	for !p.eof() {
		ch := p.currentChar()
		if ch == ';' || ch == '}' {
			break
		}
		if ch == '"' || ch == '\'' {
			p.skipQuotedString(ch)
			continue
		}
		if ch == '(' {
			p.consumeChar()
			p.skipBlock('(', ')')
			continue
		}
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos])
}

// --- Lexer-like Helpers ---

func (p *Parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *Parser) currentChar() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) consumeChar() byte {
	ch := p.currentChar()
	if !p.eof() {
		p.pos++
	}
	return ch
}

func (p *Parser) consumeWhitespace() {
	for !p.eof() && isWhitespace(p.currentChar()) {
		p.pos++
	}
}

func (p *Parser) startsWith(s string) bool {
	if p.pos+len(s) > len(p.input) {
		return false
	}
	return p.input[p.pos:p.pos+len(s)] == s
}

func (p *Parser) skipComment() {
	p.pos += 2
	endIndex := strings.Index(p.input[p.pos:], "*/")
	if endIndex == -1 {
		p.pos = len(p.input)
	} else {
		p.pos += endIndex + 2
	}
}

func (p *Parser) skipTo(targets ...byte) {
	for !p.eof() {
		ch := p.currentChar()
		for _, target := range targets {
			if ch == target {
				return
			}
		}
		p.pos++
	}
}

func (p *Parser) skipPastSemicolon() {
	p.skipTo(';', '}')
	if !p.eof() && p.currentChar() == ';' {
		p.consumeChar()
	}
}

// skipBlock assumes the opening delimiter has already been consumed.
func (p *Parser) skipBlock(open, close byte) {
	depth := 1
	for !p.eof() {
		c := p.consumeChar()
		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) skipQuotedString(quote byte) {
	p.consumeChar()
	for !p.eof() {
		ch := p.consumeChar()
		if ch == '\\' {
			p.consumeChar()
		} else if ch == quote {
			return
		}
	}
}

func (p *Parser) skipAtRule() {
	p.consumeChar() // '@'
	_ = p.parseIdentifier()
	p.consumeWhitespace()
	for !p.eof() {
		ch := p.currentChar()
		if ch == '{' {
			p.consumeChar()
			p.skipBlock('{', '}')
			return
		}
		if ch == ';' {
			p.consumeChar()
			return
		}
		p.pos++
	}
}

func (p *Parser) parseIdentifier() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.currentChar()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '-'
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
