// Package ui defines the closed set of rich-response widgets an agent may
// return, and the parse step that turns untrusted model output into them.
package ui

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is a component type tag.
type Type string

const (
	TypeText      Type = "text"
	TypeButton    Type = "button"
	TypeCard      Type = "card"
	TypeList      Type = "list"
	TypeBadge     Type = "badge"
	TypeAlert     Type = "alert"
	TypeAccordion Type = "accordion"
	TypeTable     Type = "table"
	TypeTimeline  Type = "timeline"
	TypeMatrix    Type = "matrix"
	TypeSegue     Type = "segue"
)

// Types lists every supported type in the order used in prompts.
func Types() []Type {
	return []Type{
		TypeText, TypeButton, TypeCard, TypeList, TypeBadge, TypeAlert,
		TypeAccordion, TypeTable, TypeTimeline, TypeMatrix, TypeSegue,
	}
}

// Props is implemented by the per-type property structs.
type Props interface {
	// validate returns a rejection reason, or "" when the props are usable.
	validate() string
}

// Component is one validated widget.
type Component struct {
	Type  Type   `json:"type"`
	ID    string `json:"id,omitempty"`
	Props Props  `json:"props"`
}

// Result is the outcome of parsing one raw component: either a Component or
// the reason it was rejected.
type Result struct {
	Component *Component
	Reason    string
}

// OK reports whether the entry was accepted.
func (r Result) OK() bool { return r.Component != nil }

var factories = map[Type]func() Props{
	TypeText:      func() Props { return &TextProps{} },
	TypeButton:    func() Props { return &ButtonProps{} },
	TypeCard:      func() Props { return &CardProps{} },
	TypeList:      func() Props { return &ListProps{} },
	TypeBadge:     func() Props { return &BadgeProps{} },
	TypeAlert:     func() Props { return &AlertProps{} },
	TypeAccordion: func() Props { return &AccordionProps{} },
	TypeTable:     func() Props { return &TableProps{} },
	TypeTimeline:  func() Props { return &TimelineProps{} },
	TypeMatrix:    func() Props { return &MatrixProps{} },
	TypeSegue:     func() Props { return &SegueProps{} },
}

type rawComponent struct {
	Type  string          `json:"type"`
	ID    string          `json:"id,omitempty"`
	Props json.RawMessage `json:"props"`
}

func reject(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Parse validates one raw component. It never panics on arbitrary input.
func Parse(raw json.RawMessage) Result {
	var rc rawComponent
	if err := json.Unmarshal(raw, &rc); err != nil {
		return reject("malformed component: %v", err)
	}
	return parseRaw(rc)
}

// ParseSegue validates an entry of the segues array. A missing type is
// read as "segue"; any other type is rejected.
func ParseSegue(raw json.RawMessage) Result {
	var rc rawComponent
	if err := json.Unmarshal(raw, &rc); err != nil {
		return reject("malformed segue: %v", err)
	}
	if rc.Type == "" {
		rc.Type = string(TypeSegue)
		if len(rc.Props) == 0 {
			// flat form: {"label": "...", "prompt": "..."}
			rc.Props = raw
		}
	}
	if Type(rc.Type) != TypeSegue {
		return reject("segue entry has type %q", rc.Type)
	}
	return parseRaw(rc)
}

func parseRaw(rc rawComponent) Result {
	if rc.Type == "" {
		return reject("missing type")
	}
	props := strings.TrimSpace(string(rc.Props))
	if props == "" || props == "null" {
		return reject("missing props")
	}
	newProps, ok := factories[Type(rc.Type)]
	if !ok {
		return reject("unknown type %q", rc.Type)
	}
	p := newProps()
	if err := json.Unmarshal(rc.Props, p); err != nil {
		return reject("malformed props for %s: %v", rc.Type, err)
	}
	if reason := p.validate(); reason != "" {
		return reject("%s: %s", rc.Type, reason)
	}
	return Result{Component: &Component{Type: Type(rc.Type), ID: rc.ID, Props: p}}
}

// ParseAll parses every entry and splits accepted components from rejection reasons.
func ParseAll(raws []json.RawMessage, parse func(json.RawMessage) Result) ([]Component, []string) {
	out := make([]Component, 0, len(raws))
	var rejected []string
	for _, raw := range raws {
		res := parse(raw)
		if !res.OK() {
			rejected = append(rejected, res.Reason)
			continue
		}
		out = append(out, *res.Component)
	}
	return out, rejected
}

// UnmarshalJSON decodes a stored component through Parse.
func (c *Component) UnmarshalJSON(b []byte) error {
	res := Parse(b)
	if !res.OK() {
		return fmt.Errorf("ui: %s", res.Reason)
	}
	*c = *res.Component
	return nil
}

// NewButton builds a button component.
func NewButton(label, action, variant string) Component {
	return Component{Type: TypeButton, Props: &ButtonProps{Label: label, Action: action, Variant: variant}}
}

// Action returns the action of a button or segue, or "".
func (c Component) Action() string {
	switch p := c.Props.(type) {
	case *ButtonProps:
		return p.Action
	case *SegueProps:
		return p.Action
	}
	return ""
}
