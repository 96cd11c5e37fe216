// Package templates renders the prompts handed to the editing agent.
//
// Templates are embedded at build time and parsed once by NewRenderer.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/HendryAvila/storybook/internal/manuscript"
)

//go:embed files/*.md.tmpl
var files embed.FS

// Template names.
const (
	EditorSystem  = "editor_system.md.tmpl"
	ChatSystem    = "chat_system.md.tmpl"
	Review        = "review.md.tmpl"
	QuickFeedback = "quick_feedback.md.tmpl"
)

// Renderer renders a named template with data.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// EmbedRenderer renders the embedded prompt templates.
type EmbedRenderer struct {
	tmpl *template.Template
}

var _ Renderer = (*EmbedRenderer)(nil)

// NewRenderer parses every embedded template.
func NewRenderer() (*EmbedRenderer, error) {
	tmpl, err := template.New("prompts").
		Funcs(template.FuncMap{
			"commas": Commas,
			"join":   strings.Join,
		}).
		ParseFS(files, "files/*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing prompt templates: %w", err)
	}
	return &EmbedRenderer{tmpl: tmpl}, nil
}

// Render executes the named template.
func (r *EmbedRenderer) Render(name string, data any) (string, error) {
	t := r.tmpl.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// ─── Data ───────────────────────────────────────────────────────────────────

// ProjectData describes the manuscript a prompt is about.
type ProjectData struct {
	Title          string
	Genre          string
	WordCount      int
	ManuscriptPath string
}

// NewProjectData describes p, whose manuscript lives at manuscriptPath.
func NewProjectData(p *manuscript.Project, manuscriptPath string) ProjectData {
	return ProjectData{
		Title:          p.Metadata.Title,
		Genre:          p.Metadata.Genre,
		WordCount:      p.Metadata.WordCount,
		ManuscriptPath: manuscriptPath,
	}
}

// ReviewData feeds the Review template.
type ReviewData struct {
	ProjectData
	FocusAreas []string
}

// QuickFeedbackData feeds the QuickFeedback template.
type QuickFeedbackData struct {
	ProjectData
	Question string
}

// Commas formats n with thousands separators, e.g. 12345 -> "12,345".
func Commas(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	if neg {
		return "-" + out.String()
	}
	return out.String()
}
