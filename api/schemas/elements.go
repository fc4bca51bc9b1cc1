package schemas

// -- Element Profile Schemas --

// ElementRecord is the per-element unit of output. It is created once per
// candidate element during a single extraction call, is immutable after
// construction, and is never persisted by this module.
//
// Element holds the serialized original markup, captured before the
// instrumentation attribute is written. The optional fields mirror source
// attributes; they are pointers so that presence follows the attribute
// itself — an attribute that exists with an empty value (alt="") is emitted
// as "", an absent attribute is omitted entirely.
type ElementRecord struct {
	Element        string `json:"element"`
	TagName        string `json:"tagName"`
	InnerText      string `json:"innerText"`
	AccessibleText string `json:"accessibleText"`
	XPath          string `json:"xpath"`
	Selector       string `json:"selector"`

	Role           *string `json:"role,omitempty"`
	AriaLabel      *string `json:"ariaLabel,omitempty"`
	AriaLabelledby *string `json:"ariaLabelledby,omitempty"`
	Href           *string `json:"href,omitempty"`
	Alt            *string `json:"alt,omitempty"`
	Placeholder    *string `json:"placeholder,omitempty"`
	AltText        *string `json:"altText,omitempty"`
	Annotation     *string `json:"annotation,omitempty"`
	Title          *string `json:"title,omitempty"`
	PseudoBefore   *string `json:"pseudoBefore,omitempty"`
	PseudoAfter    *string `json:"pseudoAfter,omitempty"`
}

// Str points at a string literal, for building optional record fields.
func Str(s string) *string { return &s }

// Result is the envelope returned for one extracted document. Source names
// the input (file path, URL, or "stdin") purely for reporting.
type Result struct {
	Source   string          `json:"source,omitempty"`
	Count    int             `json:"count"`
	Elements []ElementRecord `json:"elements"`
}
