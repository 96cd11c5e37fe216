// Package analysis holds the lightweight text heuristics behind the
// manuscript analysis tools. They are fast approximations meant to point
// an editor at passages worth reading, not linguistic analysis.
package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ─── Character consistency ──────────────────────────────────────────────────

// ConsistencyReport summarizes how a character name is written.
type ConsistencyReport struct {
	Name     string   `json:"name"`
	Mentions int      `json:"mentions"`
	Variants []string `json:"variants"`
	Issues   []string `json:"issues"`
}

// CharacterConsistency counts whole-word, case-insensitive mentions of name
// and flags the name when it appears with more than one capitalization.
func CharacterConsistency(name, text string) ConsistencyReport {
	r := ConsistencyReport{Name: name, Variants: []string{}, Issues: []string{}}
	if name == "" {
		return r
	}

	mentions := findWholeWord(text, name)
	r.Mentions = len(mentions)

	seen := map[string]bool{}
	for _, m := range mentions {
		if !seen[m] {
			seen[m] = true
			r.Variants = append(r.Variants, m)
		}
	}
	if len(r.Variants) > 1 {
		r.Issues = append(r.Issues, "Inconsistent capitalization: "+strings.Join(r.Variants, ", "))
	}
	return r
}

// findWholeWord returns every case-insensitive occurrence of word in text
// that sits on word boundaries. Letters and digits of any script count as
// word characters.
func findWholeWord(text, word string) []string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))
	var found []string
	for pos := 0; pos < len(text); {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if atWordBoundary(text, start) && atWordBoundary(text, end) {
			found = append(found, text[start:end])
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return found
}

func atWordBoundary(text string, i int) bool {
	before, _ := utf8.DecodeLastRuneInString(text[:i])
	after, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(before) != isWordRune(after)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (r ConsistencyReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d mentions of '%s'.\n", r.Mentions, r.Name)
	if len(r.Issues) > 0 {
		sb.WriteString("\nIssues found:\n")
		writeBullets(&sb, r.Issues)
	} else {
		sb.WriteString("\nNo consistency issues detected.")
	}
	return sb.String()
}

// ─── Timeline ───────────────────────────────────────────────────────────────

// timePatterns are applied in order; matches are reported pattern by
// pattern, each in position order.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\b`),
	regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\b`),
	regexp.MustCompile(`(?i)\bday (\d+)\b`),
	regexp.MustCompile(`(?i)\b(\d+) days? (later|ago|before|after)\b`),
}

// SampleLimit caps the references listed in a timeline report.
const SampleLimit = 10

// TimelineReport lists the time references found in a text.
type TimelineReport struct {
	References []string `json:"references"`
}

// TimeReferences finds weekday, month, "day N" and "N days later" style
// references.
func TimeReferences(text string) TimelineReport {
	r := TimelineReport{References: []string{}}
	for _, re := range timePatterns {
		r.References = append(r.References, re.FindAllString(text, -1)...)
	}
	return r
}

func (r TimelineReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d time references in the manuscript.\n", len(r.References))
	if len(r.References) > 0 {
		sb.WriteString("\nSample references:\n")
		writeBullets(&sb, r.References[:min(len(r.References), SampleLimit)])
	}
	return sb.String()
}

// ─── Prose ──────────────────────────────────────────────────────────────────

const (
	// flagRatio is the share of words above which passive or adverb use
	// is flagged.
	flagRatio = 0.05
	// repeatThreshold is the count a long word must exceed to be flagged.
	repeatThreshold = 3
	// repeatReportLimit caps the repeated words named in the issue.
	repeatReportLimit = 5
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

var passiveIndicators = map[string]bool{"was": true, "were": true, "been": true, "being": true}

// ProseReport carries sentence and word statistics for a text sample.
type ProseReport struct {
	Sentences         int      `json:"sentences"`
	Words             int      `json:"words"`
	AvgSentenceLength float64  `json:"avg_sentence_length"`
	PassiveCount      int      `json:"passive_count"`
	AdverbCount       int      `json:"adverb_count"`
	Repeated          []string `json:"repeated"`
	Issues            []string `json:"issues"`
}

// Prose measures sentence length and flags heavy passive voice, adverbs
// ending in -ly and words longer than three letters used more than three
// times.
func Prose(text string) ProseReport {
	r := ProseReport{Repeated: []string{}, Issues: []string{}}

	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			r.Sentences++
		}
	}
	words := strings.Fields(text)
	r.Words = len(words)
	if r.Sentences > 0 {
		r.AvgSentenceLength = float64(r.Words) / float64(r.Sentences)
	}
	if r.Words == 0 {
		return r
	}

	freq := map[string]int{}
	var order []string
	for _, w := range words {
		lower := strings.ToLower(w)
		if passiveIndicators[lower] {
			r.PassiveCount++
		}
		if strings.HasSuffix(lower, "ly") {
			r.AdverbCount++
		}
		if utf8.RuneCountInString(lower) > 3 {
			if freq[lower] == 0 {
				order = append(order, lower)
			}
			freq[lower]++
		}
	}
	for _, w := range order {
		if freq[w] > repeatThreshold {
			r.Repeated = append(r.Repeated, w)
		}
	}

	total := float64(r.Words)
	if float64(r.PassiveCount)/total > flagRatio {
		r.Issues = append(r.Issues, "High use of passive voice detected")
	}
	if float64(r.AdverbCount)/total > flagRatio {
		r.Issues = append(r.Issues, fmt.Sprintf("Frequent adverb use (%d adverbs)", r.AdverbCount))
	}
	if len(r.Repeated) > 0 {
		top := r.Repeated[:min(len(r.Repeated), repeatReportLimit)]
		r.Issues = append(r.Issues, "Repetitive words: "+strings.Join(top, ", "))
	}
	return r
}

func (r ProseReport) String() string {
	var sb strings.Builder
	sb.WriteString("Prose Analysis:\n")
	fmt.Fprintf(&sb, "- Sentences: %d\n", r.Sentences)
	fmt.Fprintf(&sb, "- Words: %d\n", r.Words)
	fmt.Fprintf(&sb, "- Avg. sentence length: %.1f words\n", r.AvgSentenceLength)
	if len(r.Issues) > 0 {
		sb.WriteString("\nIssues detected:\n")
		writeBullets(&sb, r.Issues)
	} else {
		sb.WriteString("\nNo major issues detected.")
	}
	return sb.String()
}

// ─── Pacing ─────────────────────────────────────────────────────────────────

const (
	longParagraphWords  = 200
	shortParagraphWords = 30
	highDialogueRatio   = 0.7
	lowDialogueRatio    = 0.2
)

// PacingReport carries paragraph statistics for a chapter.
type PacingReport struct {
	Paragraphs         int      `json:"paragraphs"`
	AvgParagraphLength float64  `json:"avg_paragraph_length"`
	DialogueRatio      float64  `json:"dialogue_ratio"`
	Issues             []string `json:"issues"`
}

// Pacing splits text into blank-line separated paragraphs and flags long
// or choppy paragraphs and unbalanced dialogue. A paragraph counts as
// dialogue when it contains any straight quote.
func Pacing(text string) PacingReport {
	r := PacingReport{Issues: []string{}}

	var totalWords, dialogue int
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		r.Paragraphs++
		totalWords += len(strings.Fields(p))
		if strings.ContainsAny(p, `"'`) {
			dialogue++
		}
	}
	if r.Paragraphs > 0 {
		r.AvgParagraphLength = float64(totalWords) / float64(r.Paragraphs)
		r.DialogueRatio = float64(dialogue) / float64(r.Paragraphs)
	}

	switch {
	case r.AvgParagraphLength > longParagraphWords:
		r.Issues = append(r.Issues, "Long paragraphs may slow pacing")
	case r.AvgParagraphLength < shortParagraphWords:
		r.Issues = append(r.Issues, "Very short paragraphs may feel choppy")
	}
	switch {
	case r.DialogueRatio > highDialogueRatio:
		r.Issues = append(r.Issues, "High dialogue ratio - consider adding more description")
	case r.DialogueRatio < lowDialogueRatio:
		r.Issues = append(r.Issues, "Low dialogue ratio - consider adding more character interaction")
	}
	return r
}

func (r PacingReport) String() string {
	var sb strings.Builder
	sb.WriteString("Pacing Analysis:\n")
	fmt.Fprintf(&sb, "- Paragraphs: %d\n", r.Paragraphs)
	fmt.Fprintf(&sb, "- Avg. paragraph length: %.1f words\n", r.AvgParagraphLength)
	fmt.Fprintf(&sb, "- Dialogue ratio: %.0f%%\n", r.DialogueRatio*100)
	if len(r.Issues) > 0 {
		sb.WriteString("\nPotential issues:\n")
		writeBullets(&sb, r.Issues)
	}
	return sb.String()
}

func writeBullets(sb *strings.Builder, items []string) {
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(item)
	}
}
