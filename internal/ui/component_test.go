package ui_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/boddenberg/recruit-assist-go/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AcceptsEveryType(t *testing.T) {
	cases := map[ui.Type]string{
		ui.TypeText:      `{"type":"text","props":{"content":"hello"}}`,
		ui.TypeButton:    `{"type":"button","props":{"label":"Go","action":"explore_career"}}`,
		ui.TypeCard:      `{"type":"card","props":{"title":"Infantry"}}`,
		ui.TypeList:      `{"type":"list","props":{"items":["a",{"title":"b"}]}}`,
		ui.TypeBadge:     `{"type":"badge","props":{"label":"New"}}`,
		ui.TypeAlert:     `{"type":"alert","props":{"message":"Heads up"}}`,
		ui.TypeAccordion: `{"type":"accordion","props":{"items":[{"title":"q","content":"a"}]}}`,
		ui.TypeTable:     `{"type":"table","props":{"headers":["Rank","Pay"],"rows":[["E-1",2017]]}}`,
		ui.TypeTimeline:  `{"type":"timeline","props":{"milestones":[{"title":"MEPS","status":"done"}]}}`,
		ui.TypeMatrix:    `{"type":"matrix","props":{"columns":["Army"],"rows":[{"label":"Bonus","values":[true]}]}}`,
		ui.TypeSegue:     `{"type":"segue","props":{"label":"Tell me more"}}`,
	}
	require.Len(t, cases, len(ui.Types()))

	for typ, raw := range cases {
		res := ui.Parse(json.RawMessage(raw))
		require.Truef(t, res.OK(), "%s rejected: %s", typ, res.Reason)
		assert.Equal(t, typ, res.Component.Type)
	}
}

func TestParse_RejectionReasons(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		reason string
	}{
		{"missing type", `{"props":{"content":"x"}}`, "missing type"},
		{"missing props", `{"type":"button"}`, "missing props"},
		{"null props", `{"type":"button","props":null}`, "missing props"},
		{"unknown type", `{"type":"form","props":{}}`, "unknown type"},
		{"malformed props", `{"type":"list","props":{"items":42}}`, "malformed props"},
		{"required prop", `{"type":"button","props":{"label":"x"}}`, "action is required"},
		{"not json", `nope`, "malformed component"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ui.Parse(json.RawMessage(tc.raw))
			assert.False(t, res.OK())
			assert.Contains(t, res.Reason, tc.reason)
		})
	}
}

func TestParseAll_DropsMalformedEntries(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"type":"text","props":{"content":"keep"}}`),
		json.RawMessage(`{"type":"button"}`),
		json.RawMessage(`{"type":"badge","props":{"label":"keep"}}`),
		json.RawMessage(`{"props":{"label":"no type"}}`),
	}

	got, rejected := ui.ParseAll(raws, ui.Parse)

	require.Len(t, got, 2)
	assert.Equal(t, ui.TypeText, got[0].Type)
	assert.Equal(t, ui.TypeBadge, got[1].Type)
	assert.Len(t, rejected, 2)
}

func TestParseSegue_FlatAndTyped(t *testing.T) {
	res := ui.ParseSegue(json.RawMessage(`{"label":"Compare branches","prompt":"Compare Army and Navy"}`))
	require.True(t, res.OK(), res.Reason)
	assert.Equal(t, ui.TypeSegue, res.Component.Type)
	assert.Equal(t, "Compare Army and Navy", res.Component.Props.(*ui.SegueProps).Prompt)

	res = ui.ParseSegue(json.RawMessage(`{"type":"button","props":{"label":"x","action":"y"}}`))
	assert.False(t, res.OK())
}

func TestCard_FooterKeepsOnlyValidEntries(t *testing.T) {
	raw := `{"type":"card","props":{"title":"Next steps","footer":[
		{"type":"button","props":{"label":"Apply","action":"start_assessment"}},
		{"type":"button","props":{"label":"broken"}}
	]}}`
	res := ui.Parse(json.RawMessage(raw))
	require.True(t, res.OK(), res.Reason)

	card := res.Component.Props.(*ui.CardProps)
	require.Len(t, card.Footer, 1)
	assert.Equal(t, "start_assessment", card.Footer[0].Action())
}

func TestComponent_JSONRoundTripThroughParse(t *testing.T) {
	in := ui.NewButton("Calculate", "calculate_benefits", "default")
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out ui.Component
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "calculate_benefits", out.Action())

	assert.Error(t, json.Unmarshal([]byte(`{"type":"button","props":{}}`), &out))
}

func TestRender(t *testing.T) {
	card := ui.Parse(json.RawMessage(`{"type":"card","props":{"title":"<b>Pay</b>","content":"Monthly",
		"footer":[{"type":"button","props":{"label":"View","action":"view_benefits"}}]}}`))
	require.True(t, card.OK())

	var buf bytes.Buffer
	require.NoError(t, ui.Render(&buf, *card.Component))
	html := buf.String()

	assert.Contains(t, html, "&lt;b&gt;Pay&lt;/b&gt;")
	assert.Contains(t, html, `data-action="view_benefits"`)

	buf.Reset()
	require.NoError(t, ui.Render(&buf, ui.Component{Type: "hologram", Props: &ui.TextProps{Content: "x"}}))
	assert.Empty(t, buf.String())
}

func TestRenderAll_TableCells(t *testing.T) {
	table := ui.Parse(json.RawMessage(`{"type":"table","props":{"headers":["Rank","Pay","Eligible"],"rows":[["E-1",2017,true]]}}`))
	require.True(t, table.OK())

	var buf bytes.Buffer
	require.NoError(t, ui.RenderAll(&buf, []ui.Component{*table.Component}))

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, `<div class="ui-components">`))
	assert.Contains(t, html, "<td>2017</td>")
	assert.Contains(t, html, "<td>✓</td>")
}
