package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

const templates = `
{{define "text"}}<p class="ui-text ui-text-{{or .Size "sm"}} ui-{{or .Variant "default"}}">{{.Content}}</p>{{end}}
{{define "button"}}<div>{{if .Href}}<a href="{{.Href}}">{{end}}<button class="ui-button ui-{{or .Variant "default"}}" data-action="{{.Action}}">{{.Label}}</button>{{if .Href}}</a>{{end}}</div>{{end}}
{{define "card"}}<div class="ui-card ui-{{or .Variant "default"}}"><div class="ui-card-header"><h3>{{.Title}}</h3>{{with .Description}}<p class="ui-card-description">{{.}}</p>{{end}}</div>{{if or .Content .Footer}}<div class="ui-card-content">{{with .Content}}<p>{{.}}</p>{{end}}{{with .Footer}}<div class="ui-card-footer">{{range .}}{{component .}}{{end}}</div>{{end}}</div>{{end}}</div>{{end}}
{{define "list"}}{{if eq .Variant "numbered"}}<ol class="ui-list">{{else}}<ul class="ui-list">{{end}}{{range .Items}}<li>{{with .Icon}}<span class="ui-icon">{{.}}</span>{{end}}<strong>{{.Title}}</strong>{{with .Description}}<p>{{.}}</p>{{end}}</li>{{end}}{{if eq .Variant "numbered"}}</ol>{{else}}</ul>{{end}}{{end}}
{{define "badge"}}<span class="ui-badge ui-{{or .Variant "default"}}">{{.Label}}</span>{{end}}
{{define "alert"}}<div class="ui-alert ui-{{or .Variant "default"}}" role="alert">{{with .Title}}<strong>{{.}}</strong>{{end}}<p>{{.Message}}</p></div>{{end}}
{{define "accordion"}}<div class="ui-accordion">{{range .Items}}<details{{if .DefaultOpen}} open{{end}}><summary>{{.Title}}</summary><p>{{.Content}}</p></details>{{end}}</div>{{end}}
{{define "table"}}<table class="ui-table">{{with .Caption}}<caption>{{.}}</caption>{{end}}<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead><tbody>{{range .Rows}}<tr>{{range .}}<td>{{cell .}}</td>{{end}}</tr>{{end}}</tbody></table>{{end}}
{{define "timeline"}}<div class="ui-timeline">{{with .Title}}<h4>{{.}}</h4>{{end}}<ol>{{range .Milestones}}<li class="ui-milestone ui-{{.Status}}"><strong>{{.Title}}</strong>{{with .Date}} <time>{{.}}</time>{{end}}{{range .Links}} <a href="{{.URL}}">{{.Label}}</a>{{end}}</li>{{end}}</ol></div>{{end}}
{{define "matrix"}}<table class="ui-matrix">{{with .Title}}<caption>{{.}}</caption>{{end}}{{with .Columns}}<thead><tr><th></th>{{range .}}<th>{{.}}</th>{{end}}</tr></thead>{{end}}<tbody>{{range .Rows}}<tr><th>{{.Label}}</th>{{range .Values}}<td>{{cell .}}</td>{{end}}</tr>{{end}}</tbody></table>{{end}}
{{define "segue"}}<button class="ui-segue" data-action="{{.Action}}" data-prompt="{{.Prompt}}">{{.Label}}</button>{{end}}
`

var tmpl *template.Template

func init() {
	tmpl = template.Must(template.New("ui").Funcs(template.FuncMap{
		"component": renderNested,
		"cell":      cell,
	}).Parse(templates))
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case bool:
		if x {
			return "✓"
		}
		return "✗"
	}
	return fmt.Sprint(v)
}

func renderNested(c Component) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, c); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Render writes the HTML fragment of one component. Unknown types write nothing.
func Render(w io.Writer, c Component) error {
	if c.Props == nil || tmpl.Lookup(string(c.Type)) == nil {
		return nil
	}
	return tmpl.ExecuteTemplate(w, string(c.Type), c.Props)
}

// RenderAll renders components in order inside a wrapper div.
func RenderAll(w io.Writer, components []Component) error {
	if len(components) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, `<div class="ui-components">`); err != nil {
		return err
	}
	for _, c := range components {
		if err := Render(w, c); err != nil {
			return fmt.Errorf("render %s: %w", c.Type, err)
		}
	}
	_, err := io.WriteString(w, `</div>`)
	return err
}
