package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/convert"
	"github.com/HendryAvila/storybook/internal/journal"
	"github.com/HendryAvila/storybook/internal/projects"
)

func newTestLibrary(t *testing.T, withJournal bool) *Library {
	t.Helper()
	root := t.TempDir()
	store, err := projects.NewFileStore(root, zerolog.Nop())
	require.NoError(t, err)

	var j *journal.Journal
	if withJournal {
		j, err = journal.Open(journal.DefaultPath(root), zerolog.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = j.Close() })
	}
	return New(store, convert.New(), j, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestCreate_RequiresName(t *testing.T) {
	lib := newTestLibrary(t, false)
	_, err := lib.Create("  ", nil, "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestCreate_ImportsText(t *testing.T) {
	lib := newTestLibrary(t, false)
	src := filepath.Join(t.TempDir(), "draft.md")
	require.NoError(t, os.WriteFile(src, []byte("# Draft\n\nIt was a dark night."), 0o644))

	p, err := lib.Create("Draft", nil, src)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Metadata.WordCount)

	_, content, err := lib.Manuscript(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Draft\n\nIt was a dark night.", content)
}

func TestCreate_UnsupportedImport(t *testing.T) {
	lib := newTestLibrary(t, false)
	src := filepath.Join(t.TempDir(), "draft.rtf")
	require.NoError(t, os.WriteFile(src, []byte("{\\rtf1}"), 0o644))

	_, err := lib.Create("Draft", nil, src)
	assert.ErrorIs(t, err, convert.ErrUnsupportedFormat)
	assert.Empty(t, lib.List())
}

func TestCreate_ImportsDocx(t *testing.T) {
	lib := newTestLibrary(t, false)
	src := filepath.Join(t.TempDir(), "draft.docx")
	require.NoError(t, convert.New().ExportDocx("# Chapter One\n\nThe rain came early.", src, "Draft"))

	p, err := lib.Create("Draft", nil, src)
	require.NoError(t, err)

	_, content, err := lib.Manuscript(p.ID)
	require.NoError(t, err)
	assert.Contains(t, content, "# Chapter One")
	assert.Contains(t, content, "The rain came early.")
}

func TestUpdateMetadata_Partial(t *testing.T) {
	lib := newTestLibrary(t, false)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)

	chapters := 12
	updated, err := lib.UpdateMetadata(p.ID[:8], MetadataPatch{Author: strPtr("A. Writer"), ChapterCount: &chapters})
	require.NoError(t, err)
	assert.Equal(t, "Night Train", updated.Metadata.Title)
	assert.Equal(t, "A. Writer", updated.Metadata.Author)
	assert.Equal(t, 12, updated.Metadata.ChapterCount)
	assert.Equal(t, "Fiction", updated.Metadata.Genre)

	_, err = lib.UpdateMetadata(p.ID, MetadataPatch{Title: strPtr(" ")})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSaveManuscript_UpdatesWordCount(t *testing.T) {
	lib := newTestLibrary(t, false)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)

	p, err = lib.SaveManuscript(p.ID, "one two three")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Metadata.WordCount)

	reloaded, err := lib.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Metadata.WordCount)
}

func TestCharacters(t *testing.T) {
	lib := newTestLibrary(t, false)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)

	_, _, err = lib.AddCharacter(p.ID, map[string]any{"description": "no name"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, c, err := lib.AddCharacter(p.ID, map[string]any{"name": "Mara", "traits": "stubborn, kind"})
	require.NoError(t, err)
	assert.Equal(t, []string{"stubborn", "kind"}, c.Traits)

	_, err = lib.RemoveCharacter(p.ID, "MARA")
	require.NoError(t, err)
	_, err = lib.RemoveCharacter(p.ID, "Mara")
	assert.ErrorIs(t, err, ErrNoEntry)

	reloaded, err := lib.Get(p.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Characters)
}

func TestPlotEvents(t *testing.T) {
	lib := newTestLibrary(t, false)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)

	_, e, err := lib.AddPlotEvent(p.ID, map[string]any{"id": "e1", "title": "Departure"})
	require.NoError(t, err)
	assert.Equal(t, "medium", e.Importance)

	_, _, err = lib.AddPlotEvent(p.ID, map[string]any{"id": "e1", "title": "Departure, delayed", "importance": "high"})
	require.NoError(t, err)

	reloaded, err := lib.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.PlotEvents, 1)
	assert.Equal(t, "high", reloaded.PlotEvents[0].Importance)

	_, err = lib.RemovePlotEvent(p.ID, "e2")
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestExport(t *testing.T) {
	lib := newTestLibrary(t, false)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)

	_, err = lib.Export(p.ID, "rtf", "")
	assert.ErrorIs(t, err, ErrInvalid)

	path, err := lib.Export(p.ID, "markdown", "")
	require.NoError(t, err)
	assert.Equal(t, lib.Store().ManuscriptPath(p), path)

	path, err = lib.Export(p.ID, "docx", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(lib.Store().ProjectDir(p.ID), "Night_Train.docx"), path)
	assert.FileExists(t, path)

	_, err = lib.Export(p.ID, "pdf", "")
	assert.True(t, errors.Is(err, convert.ErrCapabilityUnavailable))
}

func TestDelete(t *testing.T) {
	lib := newTestLibrary(t, true)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)
	require.NoError(t, lib.RecordReview(p, nil, "## Overall Assessment\n\nGood.", 0.1))

	require.NoError(t, lib.Delete(p.ID))
	_, err = lib.Get(p.ID)
	assert.ErrorIs(t, err, projects.ErrNotFound)

	st, err := lib.Journal().Stats(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Reviews)

	assert.ErrorIs(t, lib.Delete(p.ID), projects.ErrNotFound)
}

func TestReviews_WithJournal(t *testing.T) {
	lib := newTestLibrary(t, true)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)

	finish := lib.TrackSession(p, journal.KindReview)
	require.NoError(t, lib.RecordReview(p, []string{"plot"}, "first", 0.1))
	require.NoError(t, lib.RecordReview(p, nil, "second", 0.2))
	finish(journal.Outcome{CostUSD: 0.3, Turns: 4})

	reviews, err := lib.Reviews(p.ID, 0)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "second", reviews[0].Content)

	latest, ok := lib.Store().ReadSideFile(p, projects.LatestReviewFile)
	require.True(t, ok)
	assert.Equal(t, "second", latest)

	st, err := lib.Stats(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Sessions)
	assert.Equal(t, 4, st.TotalTurns)
}

func TestReviews_WithoutJournal(t *testing.T) {
	lib := newTestLibrary(t, false)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)

	reviews, err := lib.Reviews(p.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	require.NoError(t, lib.RecordReview(p, nil, "only", 0))
	lib.TrackSession(p, journal.KindChat)(journal.Outcome{})

	reviews, err = lib.Reviews(p.ID, 0)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "only", reviews[0].Content)
}

func TestMetadataPatch_Metadata(t *testing.T) {
	meta, err := MetadataPatch{}.Metadata("Night Train")
	require.NoError(t, err)
	assert.Nil(t, meta)

	meta, err = MetadataPatch{Genre: strPtr("Mystery")}.Metadata("Night Train")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Night Train", meta.Title)
	assert.Equal(t, "Mystery", meta.Genre)
}

func TestApplyToolCalls(t *testing.T) {
	lib := newTestLibrary(t, false)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)

	calls := []agent.Event{
		{Type: agent.EventToolUse, Tool: "mcp__storybook__track_character", Input: map[string]any{"name": "Mara"}},
		{Type: agent.EventToolUse, Tool: "track_plot_event", Input: map[string]any{"id": "e1", "title": "Departure"}},
		{Type: agent.EventToolUse, Tool: "Read", Input: map[string]any{"file_path": "manuscript.md"}},
	}
	updated, n, err := lib.ApplyToolCalls(p.ID, calls)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, updated.Characters, 1)

	reloaded, err := lib.Get(p.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.PlotEvents, 1)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, ""},
		{fmt.Errorf("wrapped: %w", projects.ErrNotFound), KindNotFound},
		{ErrNoEntry, KindNotFound},
		{projects.ErrAmbiguous, KindInvalid},
		{invalid("bad"), KindInvalid},
		{&convert.FormatError{Op: "import", Ext: ".rtf"}, KindUnsupported},
		{&convert.CapabilityError{Format: convert.FormatPDF, Op: "export"}, KindUnavailable},
		{errors.New("disk full"), KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "%v", tt.err)
	}
}

// streamingRunner sends text events until its context ends, then closes
// stopped.
type streamingRunner struct {
	stopped chan struct{}
}

func (r *streamingRunner) Run(ctx context.Context, _ agent.Request) (<-chan agent.Event, error) {
	ch := make(chan agent.Event)
	go func() {
		defer close(r.stopped)
		defer close(ch)
		for {
			select {
			case ch <- agent.Event{Type: agent.EventText, Content: "more"}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func waitStopped(t *testing.T, stopped <-chan struct{}) {
	t.Helper()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("agent run was not cancelled")
	}
}

func TestChatSend_EmitFailureCancelsRun(t *testing.T) {
	lib := newTestLibrary(t, true)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)
	runner := &streamingRunner{stopped: make(chan struct{})}

	chat, err := lib.StartChat(runner, agent.Options{}, p)
	require.NoError(t, err)

	broken := errors.New("stdout closed")
	err = chat.Send(context.Background(), "Who is Mara?", func(agent.Event) error { return broken })
	assert.ErrorIs(t, err, broken)
	waitStopped(t, runner.stopped)
}

func TestReview_EmitFailureCancelsRun(t *testing.T) {
	lib := newTestLibrary(t, true)
	p, err := lib.Create("Night Train", nil, "")
	require.NoError(t, err)
	runner := &streamingRunner{stopped: make(chan struct{})}

	broken := errors.New("stdout closed")
	_, err = lib.Review(context.Background(), runner, agent.Options{}, p, nil, func(agent.Event) error { return broken })
	assert.ErrorIs(t, err, broken)
	waitStopped(t, runner.stopped)
}
