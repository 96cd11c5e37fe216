// Package library is the application layer shared by the CLI, the
// line-delimited bridge and the HTTP API.
//
// It combines the project store, the document converter and the optional
// journal into the operations a front end offers: create or import a
// project, edit metadata and manuscript, curate characters and plot
// events, export, and browse review history. Front ends translate its
// errors into their own status codes with the sentinels below.
package library

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/HendryAvila/storybook/internal/convert"
	"github.com/HendryAvila/storybook/internal/journal"
	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/HendryAvila/storybook/internal/tools"
)

var (
	// ErrInvalid marks a request the caller can fix: a missing name, a bad
	// field, an unknown export format.
	ErrInvalid = errors.New("invalid request")
	// ErrNoEntry means a character or plot event is not tracked.
	ErrNoEntry = errors.New("entry not found")
)

// Library serves project operations over one store.
type Library struct {
	store   projects.Store
	conv    *convert.Converter
	journal *journal.Journal
	logger  zerolog.Logger
}

// New creates a Library. j may be nil when the journal is disabled or
// could not be opened.
func New(store projects.Store, conv *convert.Converter, j *journal.Journal, logger zerolog.Logger) *Library {
	if conv == nil {
		conv = convert.New()
	}
	return &Library{
		store:   store,
		conv:    conv,
		journal: j,
		logger:  logger.With().Str("component", "library").Logger(),
	}
}

// Store returns the underlying project store.
func (l *Library) Store() projects.Store { return l.store }

// Converter returns the document converter.
func (l *Library) Converter() *convert.Converter { return l.conv }

// Journal returns the journal, or nil.
func (l *Library) Journal() *journal.Journal { return l.journal }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ─── Projects ───────────────────────────────────────────────────────────────

// List returns every project, most recently edited first.
func (l *Library) List() []*manuscript.Project {
	return l.store.List()
}

// Get resolves a full id or unique id prefix.
func (l *Library) Get(ref string) (*manuscript.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, invalid("project id is required")
	}
	return l.store.Resolve(ref)
}

// Create makes a project. When importFile is set its content becomes the
// manuscript: text files are copied verbatim, docx and PDF are converted
// to Markdown first.
func (l *Library) Create(name string, meta *manuscript.ManuscriptMetadata, importFile string) (*manuscript.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("project name is required")
	}
	importFile = strings.TrimSpace(importFile)
	if importFile == "" {
		return l.store.Create(name, meta)
	}

	if convert.DetectFormat(importFile) == convert.FormatText {
		return l.store.Import(name, importFile, meta)
	}

	content, err := l.conv.Import(importFile)
	if err != nil {
		return nil, err
	}
	p, err := l.store.ImportContent(name, content, meta)
	if err != nil {
		return nil, err
	}
	l.logger.Info().Str("project_id", p.ID).Str("source", importFile).Msg("document imported")
	return p, nil
}

// ReplaceManuscript converts a document and writes it over the manuscript
// of an existing project.
func (l *Library) ReplaceManuscript(ref, sourcePath string) (*manuscript.Project, error) {
	p, err := l.Get(ref)
	if err != nil {
		return nil, err
	}
	content, err := l.conv.Import(sourcePath)
	if err != nil {
		return nil, err
	}
	if err := l.store.WriteManuscript(p, content); err != nil {
		return nil, err
	}
	return p, nil
}

// MetadataPatch names the metadata fields to change. Nil fields are left
// alone. Word count is derived from the manuscript and cannot be set.
type MetadataPatch struct {
	Title        *string `json:"title,omitempty"`
	Author       *string `json:"author,omitempty"`
	Genre        *string `json:"genre,omitempty"`
	ChapterCount *int    `json:"chapter_count,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (m MetadataPatch) Empty() bool {
	return m.Title == nil && m.Author == nil && m.Genre == nil && m.ChapterCount == nil && m.Notes == nil
}

func (m MetadataPatch) apply(meta *manuscript.ManuscriptMetadata) error {
	if m.Title != nil {
		title := strings.TrimSpace(*m.Title)
		if title == "" {
			return invalid("title cannot be empty")
		}
		meta.Title = title
	}
	if m.Author != nil {
		meta.Author = strings.TrimSpace(*m.Author)
	}
	if m.Genre != nil {
		meta.Genre = strings.TrimSpace(*m.Genre)
	}
	if m.ChapterCount != nil {
		if *m.ChapterCount < 0 {
			return invalid("chapter_count cannot be negative")
		}
		meta.ChapterCount = *m.ChapterCount
	}
	if m.Notes != nil {
		meta.Notes = *m.Notes
	}
	return nil
}

// Metadata builds creation metadata from the patch. An empty patch yields
// nil so the store's defaults apply.
func (m MetadataPatch) Metadata(name string) (*manuscript.ManuscriptMetadata, error) {
	if m.Empty() {
		return nil, nil
	}
	meta := manuscript.NewMetadata(strings.TrimSpace(name))
	if err := m.apply(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// UpdateMetadata applies patch and saves the project.
func (l *Library) UpdateMetadata(ref string, patch MetadataPatch) (*manuscript.Project, error) {
	p, err := l.Get(ref)
	if err != nil {
		return nil, err
	}
	if err := patch.apply(&p.Metadata); err != nil {
		return nil, err
	}
	if err := l.store.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a project directory and its journal history.
func (l *Library) Delete(ref string) error {
	p, err := l.Get(ref)
	if err != nil {
		return err
	}
	ok, err := l.store.Delete(p.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", projects.ErrNotFound, ref)
	}
	if l.journal != nil {
		if err := l.journal.Forget(p.ID); err != nil {
			l.logger.Warn().Err(err).Str("project_id", p.ID).Msg("journal cleanup failed")
		}
	}
	return nil
}

// ─── Manuscript ─────────────────────────────────────────────────────────────

// Manuscript returns the project and its manuscript text.
func (l *Library) Manuscript(ref string) (*manuscript.Project, string, error) {
	p, err := l.Get(ref)
	if err != nil {
		return nil, "", err
	}
	content, err := l.store.ReadManuscript(p)
	if err != nil {
		return nil, "", err
	}
	return p, content, nil
}

// SaveManuscript replaces the manuscript text. The word count follows.
func (l *Library) SaveManuscript(ref, content string) (*manuscript.Project, error) {
	p, err := l.Get(ref)
	if err != nil {
		return nil, err
	}
	if err := l.store.WriteManuscript(p, content); err != nil {
		return nil, err
	}
	return p, nil
}

// ─── Characters and plot events ─────────────────────────────────────────────

// AddCharacter records a character described by track_character style
// arguments. A character with the same name is replaced.
func (l *Library) AddCharacter(ref string, args map[string]any) (*manuscript.Project, manuscript.Character, error) {
	c, err := tools.CharacterFromArgs(args)
	if err != nil {
		return nil, c, invalid("%v", err)
	}
	p, err := l.Get(ref)
	if err != nil {
		return nil, c, err
	}
	p.AddCharacter(c)
	if err := l.store.Save(p); err != nil {
		return nil, c, err
	}
	return p, c, nil
}

// RemoveCharacter drops the character whose name matches, ignoring case.
func (l *Library) RemoveCharacter(ref, name string) (*manuscript.Project, error) {
	p, err := l.Get(ref)
	if err != nil {
		return nil, err
	}
	if !p.RemoveCharacter(strings.TrimSpace(name)) {
		return nil, fmt.Errorf("%w: character %q", ErrNoEntry, name)
	}
	if err := l.store.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddPlotEvent records a plot event described by track_plot_event style
// arguments. An event with the same id is replaced.
func (l *Library) AddPlotEvent(ref string, args map[string]any) (*manuscript.Project, manuscript.PlotEvent, error) {
	e, err := tools.PlotEventFromArgs(args)
	if err != nil {
		return nil, e, invalid("%v", err)
	}
	p, err := l.Get(ref)
	if err != nil {
		return nil, e, err
	}
	p.AddPlotEvent(e)
	if err := l.store.Save(p); err != nil {
		return nil, e, err
	}
	return p, e, nil
}

// RemovePlotEvent drops the plot event with the given id.
func (l *Library) RemovePlotEvent(ref, id string) (*manuscript.Project, error) {
	p, err := l.Get(ref)
	if err != nil {
		return nil, err
	}
	if !p.RemovePlotEvent(strings.TrimSpace(id)) {
		return nil, fmt.Errorf("%w: plot event %q", ErrNoEntry, id)
	}
	if err := l.store.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}
