package manuscript

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = orig })
}

// ─── Constructors ───────────────────────────────────────────────────────────

func TestNewProject_DefaultMetadataUsesName(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fixedClock(t, at)

	p := NewProject("abc", "My Novel", nil)

	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, "My Novel", p.Metadata.Title)
	assert.Equal(t, DefaultGenre, p.Metadata.Genre)
	assert.Equal(t, DefaultManuscriptFile, p.ManuscriptName())
	assert.Equal(t, at, p.CreatedAt)
	assert.Equal(t, at, p.Metadata.LastEdited)
	assert.NotNil(t, p.Characters)
	assert.NotNil(t, p.PlotEvents)
}

func TestNewProject_SuppliedMetadataKept(t *testing.T) {
	meta := ManuscriptMetadata{Title: "The Long Road", Genre: "Fantasy", Author: "R. Vale"}
	p := NewProject("abc", "road", &meta)

	assert.Equal(t, "The Long Road", p.Metadata.Title)
	assert.Equal(t, "Fantasy", p.Metadata.Genre)
	assert.False(t, p.Metadata.CreatedAt.IsZero())
}

func TestNewMetadata_EmptyTitle(t *testing.T) {
	assert.Equal(t, DefaultTitle, NewMetadata("  ").Title)
}

func TestManuscriptName_EmptyFallsBack(t *testing.T) {
	p := &Project{}
	assert.Equal(t, DefaultManuscriptFile, p.ManuscriptName())
}

// ─── Characters ─────────────────────────────────────────────────────────────

func TestAddCharacter_ReplacesCaseInsensitiveMatchInPlace(t *testing.T) {
	p := NewProject("id", "p", nil)
	p.AddCharacter(Character{Name: "Alice", Description: "first"})
	p.AddCharacter(Character{Name: "Bob"})
	p.AddCharacter(Character{Name: "ALICE", Description: "second", Traits: []string{"brave"}})

	require.Len(t, p.Characters, 2)
	assert.Equal(t, "ALICE", p.Characters[0].Name)
	assert.Equal(t, "second", p.Characters[0].Description)
	assert.Equal(t, []string{"brave"}, p.Characters[0].Traits)
	assert.Equal(t, "Bob", p.Characters[1].Name)
}

func TestAddCharacter_AppendsNewNames(t *testing.T) {
	p := NewProject("id", "p", nil)
	p.AddCharacter(Character{Name: "Alice"})
	p.AddCharacter(Character{Name: "Alicia"})

	assert.Len(t, p.Characters, 2)
	assert.NotNil(t, p.Characters[1].Aliases)
}

func TestCharacter_Lookup(t *testing.T) {
	p := NewProject("id", "p", nil)
	p.AddCharacter(Character{Name: "Elizabeth Bennet", Aliases: []string{"Lizzy", "Eliza"}})

	tests := []struct {
		query string
		found bool
	}{
		{"Elizabeth Bennet", true},
		{"elizabeth bennet", true},
		{"lizzy", true},
		{"ELIZA", true},
		{"Darcy", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, ok := p.Character(tt.query)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, "Elizabeth Bennet", c.Name)
			} else {
				assert.Nil(t, c)
			}
		})
	}
}

func TestCharacter_SharedAliasFirstInsertedWins(t *testing.T) {
	p := NewProject("id", "p", nil)
	p.AddCharacter(Character{Name: "John Smith", Aliases: []string{"Smith"}})
	p.AddCharacter(Character{Name: "Jane Smith", Aliases: []string{"Smith"}})

	c, ok := p.Character("smith")
	require.True(t, ok)
	assert.Equal(t, "John Smith", c.Name)
}

func TestRemoveCharacter(t *testing.T) {
	p := NewProject("id", "p", nil)
	p.AddCharacter(Character{Name: "Alice", Aliases: []string{"Al"}})

	assert.False(t, p.RemoveCharacter("Al"))
	assert.True(t, p.RemoveCharacter("alice"))
	assert.Empty(t, p.Characters)
}

// ─── Plot events ────────────────────────────────────────────────────────────

func TestAddPlotEvent_ReplacesSameIDInPlace(t *testing.T) {
	p := NewProject("id", "p", nil)
	p.AddPlotEvent(PlotEvent{ID: "e1", Title: "Inciting incident"})
	p.AddPlotEvent(PlotEvent{ID: "e2", Title: "Midpoint"})
	p.AddPlotEvent(PlotEvent{ID: "e1", Title: "Revised incident", Importance: ImportanceHigh})

	require.Len(t, p.PlotEvents, 2)
	assert.Equal(t, "Revised incident", p.PlotEvents[0].Title)
	assert.Equal(t, ImportanceHigh, p.PlotEvents[0].Importance)
	assert.Equal(t, "e2", p.PlotEvents[1].ID)
}

func TestAddPlotEvent_IDIsCaseSensitive(t *testing.T) {
	p := NewProject("id", "p", nil)
	p.AddPlotEvent(PlotEvent{ID: "e1"})
	p.AddPlotEvent(PlotEvent{ID: "E1"})

	assert.Len(t, p.PlotEvents, 2)
	assert.Equal(t, ImportanceMedium, p.PlotEvents[0].Importance)
}

func TestPlotEventLookupAndRemove(t *testing.T) {
	p := NewProject("id", "p", nil)
	p.AddPlotEvent(PlotEvent{ID: "e1", Title: "x"})

	e, ok := p.PlotEvent("e1")
	require.True(t, ok)
	assert.Equal(t, "x", e.Title)

	_, ok = p.PlotEvent("missing")
	assert.False(t, ok)

	assert.True(t, p.RemovePlotEvent("e1"))
	assert.False(t, p.RemovePlotEvent("e1"))
}

// ─── Word count ─────────────────────────────────────────────────────────────

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"Hello   world\n\nfoo", 3},
		{"# Title\n\nOne two three.", 5},
		{"\t tabs\tand\nnewlines ", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountWords(tt.text), "CountWords(%q)", tt.text)
	}
}

// ─── Sidecar encoding ───────────────────────────────────────────────────────

func TestProjectJSON_FieldNames(t *testing.T) {
	p := NewProject("id-1", "Book", nil)
	p.AddCharacter(Character{Name: "Ann", FirstAppearance: "ch1"})
	p.AddPlotEvent(PlotEvent{ID: "e1", TimestampInStory: "Day 3"})

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"id", "name", "created_at", "last_edited", "metadata", "characters", "plot_events", "manuscript_file"} {
		assert.Contains(t, raw, key)
	}
	meta := raw["metadata"].(map[string]any)
	assert.Contains(t, meta, "word_count")
	assert.Contains(t, meta, "chapter_count")
	chars := raw["characters"].([]any)
	assert.Contains(t, chars[0].(map[string]any), "first_appearance")
	events := raw["plot_events"].([]any)
	assert.Contains(t, events[0].(map[string]any), "timestamp_in_story")
}

func TestProjectJSON_LegacyTimestampsAndNulls(t *testing.T) {
	legacy := `{
		"id": "0d3c",
		"name": "Old",
		"created_at": "2025-01-02T03:04:05.123456",
		"last_edited": "2025-01-03T03:04:05.123456",
		"metadata": {"title": "Old", "created_at": "2025-01-02T03:04:05.123456", "last_edited": "2025-01-02T03:04:05"},
		"characters": null,
		"plot_events": [{"id": "e1", "title": "t", "description": "d"}],
		"manuscript_file": ""
	}`

	var p Project
	require.NoError(t, json.Unmarshal([]byte(legacy), &p))

	assert.Equal(t, 2025, p.CreatedAt.Year())
	assert.Equal(t, 3, p.LastEdited.Day())
	assert.Equal(t, 2, p.Metadata.CreatedAt.Day())
	assert.NotNil(t, p.Characters)
	assert.Equal(t, ImportanceMedium, p.PlotEvents[0].Importance)
	assert.NotNil(t, p.PlotEvents[0].CharactersInvolved)
	assert.Equal(t, DefaultManuscriptFile, p.ManuscriptName())
}

func TestProjectJSON_RoundTripPreservesTimestamps(t *testing.T) {
	at := time.Date(2026, 5, 6, 7, 8, 9, 123456789, time.UTC)
	fixedClock(t, at)
	p := NewProject("id", "Book", nil)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	var back Project
	require.NoError(t, json.Unmarshal(data, &back))

	assert.True(t, at.Equal(back.CreatedAt))
	assert.True(t, at.Equal(back.Metadata.LastEdited))
}

func TestProjectJSON_BadTimestampRejected(t *testing.T) {
	var p Project
	err := json.Unmarshal([]byte(`{"id":"x","created_at":"yesterday"}`), &p)
	assert.Error(t, err)
}
