package library

import (
	"strings"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/journal"
	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/HendryAvila/storybook/internal/projects"
)

// Export formats accepted by Export.
const (
	ExportDocx     = "docx"
	ExportPDF      = "pdf"
	ExportMarkdown = "markdown"
)

// ParseExportFormat normalizes a format name. "md" means markdown.
func ParseExportFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case ExportDocx, ExportPDF, ExportMarkdown:
		return f, nil
	case "md":
		return ExportMarkdown, nil
	default:
		return "", invalid("Invalid export format. Must be docx, pdf, or markdown")
	}
}

// Export writes the manuscript in format and returns the file path.
//
// An empty dest means a file named after the title inside the project
// directory. Markdown without a dest needs no conversion: the manuscript
// itself is returned. PDF fails with convert.ErrCapabilityUnavailable.
func (l *Library) Export(ref, format, dest string) (string, error) {
	format, err := ParseExportFormat(format)
	if err != nil {
		return "", err
	}
	p, err := l.Get(ref)
	if err != nil {
		return "", err
	}

	dest = strings.TrimSpace(dest)
	if dest == "" {
		switch format {
		case ExportMarkdown:
			return l.store.ManuscriptPath(p), nil
		case ExportDocx:
			dest = projects.ExportName(p, "docx")
		case ExportPDF:
			dest = projects.ExportName(p, "pdf")
		}
	}
	return l.store.Export(p, dest, l.conv)
}

// ─── Reviews and sessions ───────────────────────────────────────────────────

// Reviews returns saved reviews, newest first. Without a journal only the
// latest review file, if any, is reported.
func (l *Library) Reviews(ref string, limit int) ([]journal.Review, error) {
	p, err := l.Get(ref)
	if err != nil {
		return nil, err
	}
	if l.journal != nil {
		return l.journal.Reviews(p.ID, limit)
	}
	content, ok := l.store.ReadSideFile(p, projects.LatestReviewFile)
	if !ok {
		return []journal.Review{}, nil
	}
	return []journal.Review{{ProjectID: p.ID, FocusAreas: []string{}, Content: content}}, nil
}

// RecordReview stores a finished review next to the manuscript and in the
// journal. Journal failures are logged, not returned.
func (l *Library) RecordReview(p *manuscript.Project, focusAreas []string, markdown string, costUSD float64) error {
	if err := l.store.WriteSideFile(p, projects.LatestReviewFile, markdown); err != nil {
		return err
	}
	if l.journal == nil {
		return nil
	}
	if _, err := l.journal.SaveReview(p.ID, focusAreas, markdown, costUSD); err != nil {
		l.logger.Warn().Err(err).Str("project_id", p.ID).Msg("saving review to journal failed")
	}
	return nil
}

// TrackSession opens a journal session of kind for p and returns the
// function that closes it. Without a journal both are no-ops.
func (l *Library) TrackSession(p *manuscript.Project, kind string) func(journal.Outcome) {
	if l.journal == nil {
		return func(journal.Outcome) {}
	}
	id, err := l.journal.StartSession(p.ID, kind)
	if err != nil {
		l.logger.Warn().Err(err).Str("project_id", p.ID).Msg("starting journal session failed")
		return func(journal.Outcome) {}
	}
	return func(out journal.Outcome) {
		if err := l.journal.FinishSession(id, out); err != nil {
			l.logger.Warn().Err(err).Str("session", id).Msg("finishing journal session failed")
		}
	}
}

// Stats returns journal totals for a project. Without a journal the zero
// value is returned.
func (l *Library) Stats(ref string) (journal.Stats, error) {
	p, err := l.Get(ref)
	if err != nil {
		return journal.Stats{}, err
	}
	if l.journal == nil {
		return journal.Stats{}, nil
	}
	return l.journal.Stats(p.ID)
}

// ApplyToolCalls folds the track_character and track_plot_event calls of
// a finished agent session into the stored project and saves it when
// anything changed. The project is reloaded first because the MCP tool
// server may have written it during the session.
func (l *Library) ApplyToolCalls(ref string, calls []agent.Event) (*manuscript.Project, int, error) {
	p, err := l.Get(ref)
	if err != nil {
		return nil, 0, err
	}
	applied := 0
	for _, ev := range calls {
		if agent.Fold(p, ev) {
			applied++
		}
	}
	if applied == 0 {
		return p, 0, nil
	}
	if err := l.store.Save(p); err != nil {
		return nil, 0, err
	}
	return p, applied, nil
}
