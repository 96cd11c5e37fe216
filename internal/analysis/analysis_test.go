package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterConsistency_CapitalizationVariants(t *testing.T) {
	r := CharacterConsistency("Alice", "Alice met alice. ALICE ran. Malice is not her.")

	assert.Equal(t, 3, r.Mentions)
	assert.Equal(t, []string{"Alice", "alice", "ALICE"}, r.Variants)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, "Inconsistent capitalization: Alice, alice, ALICE", r.Issues[0])
	assert.Contains(t, r.String(), "Found 3 mentions of 'Alice'.\n\nIssues found:\n- Inconsistent")
}

func TestCharacterConsistency_Clean(t *testing.T) {
	r := CharacterConsistency("Dr. Watson", "Dr. Watson sat. Later Dr. Watson stood.")

	assert.Equal(t, 2, r.Mentions)
	assert.Empty(t, r.Issues)
	assert.Equal(t, "Found 2 mentions of 'Dr. Watson'.\n\nNo consistency issues detected.", r.String())
}

func TestCharacterConsistency_AccentedNames(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		mentions int
		variants []string
	}{
		{"Zoë", "Zoë went home. Later Zoë slept.", 2, []string{"Zoë"}},
		{"Élodie", "Élodie laughed; élodie? No, Élodie.", 3, []string{"Élodie", "élodie"}},
		{"Zoë", "Zoëlle is someone else, and so is AZoë.", 0, []string{}},
		{"Zoë", "Zoë Zoë", 2, []string{"Zoë"}},
		{"Zoe", "Zoe went home. Later Zoe slept.", 2, []string{"Zoe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.text, func(t *testing.T) {
			r := CharacterConsistency(tt.name, tt.text)
			assert.Equal(t, tt.mentions, r.Mentions)
			assert.Equal(t, tt.variants, r.Variants)
		})
	}
}

func TestTimeReferences_PatternThenPositionOrder(t *testing.T) {
	text := "On Monday in March, day 3 began. 3 days later she left on friday."
	r := TimeReferences(text)

	assert.Equal(t, []string{"Monday", "friday", "March", "day 3", "3 days later"}, r.References)
	assert.Equal(t,
		"Found 5 time references in the manuscript.\n\nSample references:\n- Monday\n- friday\n- March\n- day 3\n- 3 days later",
		r.String())
}

func TestTimeReferences_SampleCapped(t *testing.T) {
	r := TimeReferences(strings.Repeat("Sunday ", 12))

	assert.Len(t, r.References, 12)
	assert.Equal(t, SampleLimit, strings.Count(r.String(), "- Sunday"))
}

func TestTimeReferences_None(t *testing.T) {
	r := TimeReferences("Nothing happens here.")
	assert.Empty(t, r.References)
	assert.Equal(t, "Found 0 time references in the manuscript.\n", r.String())
}

func TestProse_PassiveAndAdverbs(t *testing.T) {
	r := Prose("She was quickly running. They were really tired! Nothing happened?")

	assert.Equal(t, 3, r.Sentences)
	assert.Equal(t, 10, r.Words)
	assert.InDelta(t, 3.33, r.AvgSentenceLength, 0.01)
	assert.Equal(t, 2, r.PassiveCount)
	assert.Equal(t, 2, r.AdverbCount)
	assert.Equal(t, []string{"High use of passive voice detected", "Frequent adverb use (2 adverbs)"}, r.Issues)
	assert.Contains(t, r.String(), "- Avg. sentence length: 3.3 words\n")
}

func TestProse_RepeatedWordsFirstSeenOrder(t *testing.T) {
	r := Prose(strings.Repeat("dark night the ", 4))

	assert.Equal(t, []string{"dark", "night"}, r.Repeated)
	assert.Equal(t, []string{"Repetitive words: dark, night"}, r.Issues)
	assert.Equal(t, 1, r.Sentences)
}

func TestProse_RepeatedReportCapped(t *testing.T) {
	r := Prose(strings.Repeat("aaaa bbbb cccc dddd eeee ffff ", 4))

	assert.Len(t, r.Repeated, 6)
	assert.Equal(t, "Repetitive words: aaaa, bbbb, cccc, dddd, eeee", r.Issues[0])
}

func TestProse_Clean(t *testing.T) {
	r := Prose("The cat sat on the mat.")
	assert.Empty(t, r.Issues)
	assert.True(t, strings.HasSuffix(r.String(), "\nNo major issues detected."))
}

func TestProse_WhitespaceOnly(t *testing.T) {
	r := Prose("   \n ")
	assert.Zero(t, r.Words)
	assert.Zero(t, r.AvgSentenceLength)
}

func TestPacing(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		paragraphs int
		ratio      float64
		issues     []string
	}{
		{
			name:       "short mixed",
			text:       "\"Hi,\" she said.\n\nThe rain kept falling outside.",
			paragraphs: 2,
			ratio:      0.5,
			issues:     []string{"Very short paragraphs may feel choppy"},
		},
		{
			name:       "long narrative",
			text:       strings.Repeat("word ", 250),
			paragraphs: 1,
			ratio:      0,
			issues: []string{
				"Long paragraphs may slow pacing",
				"Low dialogue ratio - consider adding more character interaction",
			},
		},
		{
			name:       "all dialogue",
			text:       strings.Repeat("'Yes,' he said. "+strings.Repeat("more ", 40)+"\n\n", 3),
			paragraphs: 3,
			ratio:      1,
			issues:     []string{"High dialogue ratio - consider adding more description"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Pacing(tt.text)
			assert.Equal(t, tt.paragraphs, r.Paragraphs)
			assert.InDelta(t, tt.ratio, r.DialogueRatio, 0.001)
			assert.Equal(t, tt.issues, r.Issues)
		})
	}
}

func TestPacing_String(t *testing.T) {
	r := Pacing("\"Hi,\" she said.\n\nThe rain kept falling outside.")
	assert.Equal(t,
		"Pacing Analysis:\n- Paragraphs: 2\n- Avg. paragraph length: 4.0 words\n- Dialogue ratio: 50%\n\nPotential issues:\n- Very short paragraphs may feel choppy",
		r.String())
}
