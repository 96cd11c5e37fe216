package agent

import (
	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/HendryAvila/storybook/internal/tools"
)

// Fold applies a track_character or track_plot_event tool call to p using
// the same merge rules as the tool itself. It reports whether p changed.
// Other events, and calls with invalid input, are ignored.
func Fold(p *manuscript.Project, ev Event) bool {
	if ev.Type != EventToolUse {
		return false
	}
	switch ShortToolName(ev.Tool) {
	case tools.TrackCharacter:
		c, err := tools.CharacterFromArgs(ev.Input)
		if err != nil {
			return false
		}
		p.AddCharacter(c)
		return true
	case tools.TrackPlotEvent:
		e, err := tools.PlotEventFromArgs(ev.Input)
		if err != nil {
			return false
		}
		p.AddPlotEvent(e)
		return true
	}
	return false
}
