// Package manuscript defines the storybook entity model: a Project with its
// manuscript metadata and the characters and plot events tracked for it.
//
// The JSON encoding of these types is the sidecar format stored as
// project.json, so field names are part of the on-disk contract and must
// stay in sync with sidecars written by earlier versions.
package manuscript

import (
	"time"
)

// DefaultTitle is the title given to metadata created without one.
const DefaultTitle = "Untitled Manuscript"

// DefaultGenre is the genre given to metadata created without one.
const DefaultGenre = "Fiction"

// DefaultManuscriptFile is the manuscript filename used when a project
// does not name one explicitly.
const DefaultManuscriptFile = "manuscript.md"

// ─── Importance levels ──────────────────────────────────────────────────────

// Importance ranks a plot event. Values are advisory and not validated,
// so sidecars may carry levels outside this set.
type Importance = string

const (
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

// ─── Review severities ──────────────────────────────────────────────────────

// Severity ranks an editorial suggestion.
type Severity = string

const (
	SeverityInfo     Severity = "info"
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Genres is the closed list of genres offered by the console and web
// surfaces. Metadata accepts any free-text genre.
var Genres = []string{
	"Fiction",
	"Literary Fiction",
	"Mystery",
	"Thriller",
	"Romance",
	"Science Fiction",
	"Fantasy",
	"Horror",
	"Historical Fiction",
	"Young Adult",
	"Other",
}

// ─── Core data structures ───────────────────────────────────────────────────

// ManuscriptMetadata holds descriptive facts about a manuscript.
// WordCount is derived from the manuscript file by the project store;
// ChapterCount is set by callers and never derived.
type ManuscriptMetadata struct {
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Genre        string    `json:"genre"`
	WordCount    int       `json:"word_count"`
	ChapterCount int       `json:"chapter_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastEdited   time.Time `json:"last_edited"`
	Notes        string    `json:"notes"`
}

// Character is a tracked character. Identity is the case-insensitive Name.
type Character struct {
	Name            string   `json:"name"`
	Aliases         []string `json:"aliases"`
	Description     string   `json:"description"`
	Traits          []string `json:"traits"`
	FirstAppearance string   `json:"first_appearance"` // chapter/scene reference
	Notes           string   `json:"notes"`
}

// PlotEvent is a tracked story beat. Identity is the caller-supplied ID.
// CharactersInvolved holds plain names and is not cross-checked against
// the project's characters.
type PlotEvent struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	ChapterReference   string     `json:"chapter_reference"`
	TimestampInStory   string     `json:"timestamp_in_story"` // e.g. "Day 3"
	CharactersInvolved []string   `json:"characters_involved"`
	Importance         Importance `json:"importance"`
	Notes              string     `json:"notes"`
}

// Project is the unit of work: one manuscript plus its tracked entities.
type Project struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastEdited     time.Time          `json:"last_edited"`
	Metadata       ManuscriptMetadata `json:"metadata"`
	Characters     []Character        `json:"characters"`
	PlotEvents     []PlotEvent        `json:"plot_events"`
	ManuscriptFile string             `json:"manuscript_file"`
}

// ReviewSuggestion is a single editorial finding produced by the agent.
type ReviewSuggestion struct {
	Type       string   `json:"type"` // grammar, style, plot, character, pacing...
	Severity   Severity `json:"severity"`
	Location   string   `json:"location"`
	Issue      string   `json:"issue"`
	Suggestion string   `json:"suggestion"`
	Example    string   `json:"example,omitempty"`
}

// EditorReview aggregates an editorial review of a manuscript.
type EditorReview struct {
	Timestamp         time.Time          `json:"timestamp"`
	OverallAssessment string             `json:"overall_assessment"`
	Strengths         []string           `json:"strengths"`
	Weaknesses        []string           `json:"weaknesses"`
	Suggestions       []ReviewSuggestion `json:"suggestions"`
	CharacterNotes    map[string]string  `json:"character_notes"`
	PlotNotes         []string           `json:"plot_notes"`
}
