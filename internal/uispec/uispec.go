// Package uispec parses model replies that describe the UI structure
// of a screenshot.
package uispec

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ElementType enumerates the kinds of UI elements a document may
// contain.
type ElementType string

const (
	TypeButton   ElementType = "button"
	TypeText     ElementType = "text"
	TypeInput    ElementType = "input"
	TypeCheckbox ElementType = "checkbox"
	TypeToggle   ElementType = "toggle"
	TypeImage    ElementType = "image"
	TypeIcon     ElementType = "icon"
	TypePanel    ElementType = "panel"
	TypeList     ElementType = "list"
	TypeTable    ElementType = "table"
	TypeLink     ElementType = "link"
	TypeOther    ElementType = "other"
)

func (t ElementType) valid() bool {
	switch t {
	case TypeButton, TypeText, TypeInput, TypeCheckbox, TypeToggle,
		TypeImage, TypeIcon, TypePanel, TypeList, TypeTable, TypeLink, TypeOther:
		return true
	}
	return false
}

// UnmarshalJSON rejects strings outside the enumeration, so a document
// with an invented element type fails the parse as a whole instead of
// half-succeeding.
func (t *ElementType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := ElementType(s)
	if !v.valid() {
		return fmt.Errorf("unknown element type %q", s)
	}
	*t = v
	return nil
}

// Bounds is an element's pixel rectangle, relative to the top-left of
// the image the model was shown.
type Bounds struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Element is one UI element in a parsed document.
type Element struct {
	Type   ElementType `json:"type"`
	Label  string      `json:"label,omitempty"`
	Role   string      `json:"role,omitempty"`
	Bounds Bounds      `json:"bounds"`
	Notes  string      `json:"notes,omitempty"`
}

// Document is the structured description of a screenshot.
type Document struct {
	Summary  string    `json:"summary"`
	Elements []Element `json:"elements"`
}

// Parse decodes raw as a Document. Any deviation from the documented
// shape fails the parse: a reply that is not a JSON object, a wrongly
// typed field, an element type outside the enumeration, or trailing
// content after the object. Callers treat a failure as a signal to
// surface the raw text instead, not as a tool error.
//
// Unknown extra fields are tolerated; models pad their output freely.
func Parse(raw string) (*Document, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		// Catches prose, arrays, bare literals like "null", and the
		// empty reply in one place.
		return nil, fmt.Errorf("parsing ui spec: reply is not a JSON object")
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing ui spec: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parsing ui spec: trailing content after document")
	}
	if doc.Elements == nil {
		doc.Elements = []Element{}
	}
	return &doc, nil
}
