package manuscript

import (
	"strings"
	"time"
)

// NewMetadata returns metadata with the default genre and both timestamps
// set to now. An empty title falls back to DefaultTitle.
func NewMetadata(title string) ManuscriptMetadata {
	return newMetadataAt(title, timeNow())
}

func newMetadataAt(title string, now time.Time) ManuscriptMetadata {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return ManuscriptMetadata{
		Title:      title,
		Genre:      DefaultGenre,
		CreatedAt:  now,
		LastEdited: now,
	}
}

// NewProject builds a project with the given identity. When meta is nil the
// metadata title defaults to the project name.
func NewProject(id, name string, meta *ManuscriptMetadata) *Project {
	return NewProjectAt(id, name, meta, timeNow())
}

// NewProjectAt is NewProject with an explicit creation time.
func NewProjectAt(id, name string, meta *ManuscriptMetadata, now time.Time) *Project {
	p := &Project{
		ID:             id,
		Name:           name,
		CreatedAt:      now,
		LastEdited:     now,
		Characters:     []Character{},
		PlotEvents:     []PlotEvent{},
		ManuscriptFile: DefaultManuscriptFile,
	}
	if meta != nil {
		p.Metadata = *meta
		if p.Metadata.CreatedAt.IsZero() {
			p.Metadata.CreatedAt = now
		}
		if p.Metadata.LastEdited.IsZero() {
			p.Metadata.LastEdited = now
		}
	} else {
		p.Metadata = newMetadataAt(name, now)
	}
	p.Normalize()
	return p
}

// ManuscriptName returns the manuscript filename relative to the project
// directory, falling back to DefaultManuscriptFile.
func (p *Project) ManuscriptName() string {
	if p.ManuscriptFile == "" {
		return DefaultManuscriptFile
	}
	return p.ManuscriptFile
}

// ShortID returns the first eight characters of the id, the form shown in
// listings and accepted as a prefix reference.
func (p *Project) ShortID() string {
	if len(p.ID) > 8 {
		return p.ID[:8]
	}
	return p.ID
}

// Normalize replaces nil collections with empty ones so the sidecar always
// encodes arrays instead of null.
func (p *Project) Normalize() {
	if p.Characters == nil {
		p.Characters = []Character{}
	}
	if p.PlotEvents == nil {
		p.PlotEvents = []PlotEvent{}
	}
	for i := range p.Characters {
		p.Characters[i].normalize()
	}
	for i := range p.PlotEvents {
		p.PlotEvents[i].normalize()
	}
}

func (c *Character) normalize() {
	if c.Aliases == nil {
		c.Aliases = []string{}
	}
	if c.Traits == nil {
		c.Traits = []string{}
	}
}

func (e *PlotEvent) normalize() {
	if e.CharactersInvolved == nil {
		e.CharactersInvolved = []string{}
	}
	if e.Importance == "" {
		e.Importance = ImportanceMedium
	}
}

// ─── Characters ─────────────────────────────────────────────────────────────

// AddCharacter tracks c. A character whose name matches an existing one
// case-insensitively replaces that entry in place; otherwise c is appended.
// Alias collisions between different characters are not checked.
func (p *Project) AddCharacter(c Character) {
	c.normalize()
	for i := range p.Characters {
		if strings.EqualFold(p.Characters[i].Name, c.Name) {
			p.Characters[i] = c
			return
		}
	}
	p.Characters = append(p.Characters, c)
}

// Character finds a character by name or alias, case-insensitively.
//
// When two characters share an alias the one inserted first wins. That
// tie-break is inherited behavior, not a designed rule.
func (p *Project) Character(name string) (*Character, bool) {
	for i := range p.Characters {
		if p.Characters[i].Matches(name) {
			return &p.Characters[i], true
		}
	}
	return nil, false
}

// RemoveCharacter drops the character whose name matches case-insensitively.
// Aliases are not considered. Reports whether anything was removed.
func (p *Project) RemoveCharacter(name string) bool {
	for i := range p.Characters {
		if strings.EqualFold(p.Characters[i].Name, name) {
			p.Characters = append(p.Characters[:i], p.Characters[i+1:]...)
			return true
		}
	}
	return false
}

// Matches reports whether name refers to c by name or any alias.
func (c *Character) Matches(name string) bool {
	if strings.EqualFold(c.Name, name) {
		return true
	}
	for _, a := range c.Aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// ─── Plot events ────────────────────────────────────────────────────────────

// AddPlotEvent tracks e. An event with the same ID replaces the existing
// entry in place; otherwise e is appended.
func (p *Project) AddPlotEvent(e PlotEvent) {
	e.normalize()
	for i := range p.PlotEvents {
		if p.PlotEvents[i].ID == e.ID {
			p.PlotEvents[i] = e
			return
		}
	}
	p.PlotEvents = append(p.PlotEvents, e)
}

// PlotEvent finds a plot event by exact ID.
func (p *Project) PlotEvent(id string) (*PlotEvent, bool) {
	for i := range p.PlotEvents {
		if p.PlotEvents[i].ID == id {
			return &p.PlotEvents[i], true
		}
	}
	return nil, false
}

// RemovePlotEvent drops the plot event with the given ID.
func (p *Project) RemovePlotEvent(id string) bool {
	for i := range p.PlotEvents {
		if p.PlotEvents[i].ID == id {
			p.PlotEvents = append(p.PlotEvents[:i], p.PlotEvents[i+1:]...)
			return true
		}
	}
	return false
}

// ─── Word count ─────────────────────────────────────────────────────────────

// CountWords returns the number of whitespace-delimited tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
