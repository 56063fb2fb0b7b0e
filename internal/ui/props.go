package ui

import (
	"encoding/json"
	"strings"
)

type TextProps struct {
	Content string `json:"content"`
	Variant string `json:"variant,omitempty"`
	Size    string `json:"size,omitempty"`
}

func (p *TextProps) validate() string {
	if strings.TrimSpace(p.Content) == "" {
		return "content is required"
	}
	return ""
}

type ButtonProps struct {
	Label   string `json:"label"`
	Action  string `json:"action"`
	Variant string `json:"variant,omitempty"`
	Size    string `json:"size,omitempty"`
	Href    string `json:"href,omitempty"`
}

func (p *ButtonProps) validate() string {
	if p.Label == "" {
		return "label is required"
	}
	if p.Action == "" {
		return "action is required"
	}
	return ""
}

// CardProps may carry nested footer components. Invalid footer entries are dropped.
type CardProps struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Content     string      `json:"content,omitempty"`
	Variant     string      `json:"variant,omitempty"`
	Footer      []Component `json:"footer,omitempty"`
}

func (p *CardProps) UnmarshalJSON(b []byte) error {
	var raw struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Content     string            `json:"content"`
		Variant     string            `json:"variant"`
		Footer      []json.RawMessage `json:"footer"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Title = raw.Title
	p.Description = raw.Description
	p.Content = raw.Content
	p.Variant = raw.Variant
	p.Footer = nil
	if len(raw.Footer) > 0 {
		p.Footer, _ = ParseAll(raw.Footer, Parse)
	}
	return nil
}

func (p *CardProps) validate() string {
	if p.Title == "" {
		return "title is required"
	}
	return ""
}

// ListItem accepts either an object or a bare string (read as the title).
type ListItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Action      string `json:"action,omitempty"`
}

func (i *ListItem) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*i = ListItem{Title: s}
		return nil
	}
	type plain ListItem
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*i = ListItem(v)
	return nil
}

type ListProps struct {
	Items   []ListItem `json:"items"`
	Variant string     `json:"variant,omitempty"`
}

func (p *ListProps) validate() string {
	if len(p.Items) == 0 {
		return "items is required"
	}
	return ""
}

type BadgeProps struct {
	Label   string `json:"label"`
	Variant string `json:"variant,omitempty"`
}

func (p *BadgeProps) validate() string {
	if p.Label == "" {
		return "label is required"
	}
	return ""
}

type AlertProps struct {
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
	Variant string `json:"variant,omitempty"`
}

func (p *AlertProps) validate() string {
	if p.Message == "" {
		return "message is required"
	}
	return ""
}

type AccordionItem struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	DefaultOpen bool   `json:"defaultOpen,omitempty"`
}

type AccordionProps struct {
	Items []AccordionItem `json:"items"`
}

func (p *AccordionProps) validate() string {
	if len(p.Items) == 0 {
		return "items is required"
	}
	return ""
}

// TableProps rows hold scalar cells of any JSON type.
type TableProps struct {
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
	Caption string   `json:"caption,omitempty"`
}

func (p *TableProps) validate() string {
	if len(p.Headers) == 0 {
		return "headers is required"
	}
	if p.Rows == nil {
		return "rows is required"
	}
	return ""
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Milestone struct {
	Title  string `json:"title"`
	Date   string `json:"date,omitempty"`
	Status string `json:"status"`
	Links  []Link `json:"links,omitempty"`
}

type TimelineProps struct {
	Title      string      `json:"title,omitempty"`
	Milestones []Milestone `json:"milestones"`
}

func (p *TimelineProps) validate() string {
	if len(p.Milestones) == 0 {
		return "milestones is required"
	}
	for _, m := range p.Milestones {
		if m.Title == "" || m.Status == "" {
			return "each milestone needs title and status"
		}
	}
	return ""
}

type MatrixRow struct {
	Label  string `json:"label"`
	Values []any  `json:"values"`
}

type MatrixProps struct {
	Title   string      `json:"title,omitempty"`
	Columns []string    `json:"columns,omitempty"`
	Rows    []MatrixRow `json:"rows"`
}

func (p *MatrixProps) validate() string {
	if len(p.Rows) == 0 {
		return "rows is required"
	}
	for _, r := range p.Rows {
		if r.Label == "" || r.Values == nil {
			return "each row needs label and values"
		}
	}
	return ""
}

// SegueProps is a suggested follow-up. Prompt is sent as the next user
// message when Action is empty.
type SegueProps struct {
	Label  string `json:"label"`
	Action string `json:"action,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Intent string `json:"intent,omitempty"`
}

func (p *SegueProps) validate() string {
	if p.Label == "" {
		return "label is required"
	}
	return ""
}
