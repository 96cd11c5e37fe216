package manuscript

import (
	"fmt"
	"sort"
	"strings"
)

// NewEditorReview returns an empty review stamped with the current time.
func NewEditorReview() *EditorReview {
	return &EditorReview{
		Timestamp:      timeNow(),
		Strengths:      []string{},
		Weaknesses:     []string{},
		Suggestions:    []ReviewSuggestion{},
		CharacterNotes: map[string]string{},
		PlotNotes:      []string{},
	}
}

// Markdown renders the review using the section layout the editor prompt
// asks the agent for.
func (r *EditorReview) Markdown() string {
	var sb strings.Builder

	sb.WriteString("## Overall Assessment\n\n")
	if r.OverallAssessment != "" {
		sb.WriteString(r.OverallAssessment)
		sb.WriteString("\n\n")
	}

	writeList(&sb, "## Strengths", r.Strengths)
	writeList(&sb, "## Areas for Improvement", r.Weaknesses)

	if len(r.Suggestions) > 0 {
		sb.WriteString("## Detailed Feedback\n\n")
		for _, s := range r.Suggestions {
			fmt.Fprintf(&sb, "- **[%s/%s]** %s", s.Type, s.Severity, s.Issue)
			if s.Location != "" {
				fmt.Fprintf(&sb, " (%s)", s.Location)
			}
			sb.WriteString("\n")
			if s.Suggestion != "" {
				fmt.Fprintf(&sb, "  - Suggestion: %s\n", s.Suggestion)
			}
			if s.Example != "" {
				fmt.Fprintf(&sb, "  - Example: %s\n", s.Example)
			}
		}
		sb.WriteString("\n")
	}

	if len(r.CharacterNotes) > 0 {
		sb.WriteString("### Characters\n\n")
		names := make([]string, 0, len(r.CharacterNotes))
		for name := range r.CharacterNotes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "- **%s**: %s\n", name, r.CharacterNotes[name])
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "### Plot & Structure", r.PlotNotes)

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading)
	sb.WriteString("\n\n")
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}
