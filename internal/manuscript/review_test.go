package manuscript

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorReview_JSONShape(t *testing.T) {
	r := NewEditorReview()
	r.OverallAssessment = "Solid draft."
	r.Suggestions = append(r.Suggestions, ReviewSuggestion{
		Type: "pacing", Severity: SeverityMinor, Location: "Chapter 2",
		Issue: "Slow opening", Suggestion: "Cut the weather paragraph",
	})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "overall_assessment")
	assert.Contains(t, raw, "character_notes")
	s := raw["suggestions"].([]any)[0].(map[string]any)
	assert.Equal(t, "pacing", s["type"])
	assert.NotContains(t, s, "example")

	var back EditorReview
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.Suggestions, back.Suggestions)
	assert.True(t, r.Timestamp.Equal(back.Timestamp))
}

func TestEditorReview_Markdown(t *testing.T) {
	r := NewEditorReview()
	r.OverallAssessment = "Promising."
	r.Strengths = []string{"Voice"}
	r.Weaknesses = []string{"Middle sags"}
	r.CharacterNotes = map[string]string{"Zed": "flat", "Ann": "vivid"}
	r.PlotNotes = []string{"Subplot unresolved"}
	r.Suggestions = []ReviewSuggestion{{Type: "style", Severity: SeverityInfo, Issue: "Adverbs", Example: "quickly ran"}}

	md := r.Markdown()

	assert.True(t, strings.HasPrefix(md, "## Overall Assessment\n\nPromising."))
	assert.Contains(t, md, "## Strengths\n\n- Voice\n")
	assert.Contains(t, md, "## Areas for Improvement\n\n- Middle sags\n")
	assert.Contains(t, md, "- **[style/info]** Adverbs\n  - Example: quickly ran\n")
	assert.Less(t, strings.Index(md, "**Ann**"), strings.Index(md, "**Zed**"))
	assert.Contains(t, md, "### Plot & Structure\n\n- Subplot unresolved\n")
}

func TestEditorReview_MarkdownEmpty(t *testing.T) {
	assert.Equal(t, "## Overall Assessment\n", NewEditorReview().Markdown())
}
