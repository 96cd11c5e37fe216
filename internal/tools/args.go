package tools

import (
	"errors"
	"strings"

	"github.com/HendryAvila/storybook/internal/manuscript"
)

// CharacterFromArgs builds the character described by track_character
// arguments. The same decoding applies to calls replayed from an agent's
// event stream.
func CharacterFromArgs(args map[string]any) (manuscript.Character, error) {
	name := strings.TrimSpace(stringArg(args, "name"))
	if name == "" {
		return manuscript.Character{}, errors.New("'name' is required")
	}
	return manuscript.Character{
		Name:            name,
		Aliases:         stringSlice(args["aliases"]),
		Description:     stringArg(args, "description"),
		Traits:          stringSlice(args["traits"]),
		FirstAppearance: stringArg(args, "first_appearance"),
		Notes:           stringArg(args, "notes"),
	}, nil
}

// PlotEventFromArgs builds the plot event described by track_plot_event
// arguments. Importance defaults to medium.
func PlotEventFromArgs(args map[string]any) (manuscript.PlotEvent, error) {
	id := strings.TrimSpace(stringArg(args, "id"))
	if id == "" {
		return manuscript.PlotEvent{}, errors.New("'id' is required")
	}
	title := strings.TrimSpace(stringArg(args, "title"))
	if title == "" {
		return manuscript.PlotEvent{}, errors.New("'title' is required")
	}
	importance := strings.TrimSpace(stringArg(args, "importance"))
	if importance == "" {
		importance = manuscript.ImportanceMedium
	}
	return manuscript.PlotEvent{
		ID:                 id,
		Title:              title,
		Description:        stringArg(args, "description"),
		ChapterReference:   stringArg(args, "chapter_reference"),
		TimestampInStory:   stringArg(args, "timestamp_in_story"),
		CharactersInvolved: stringSlice(args["characters_involved"]),
		Importance:         importance,
		Notes:              stringArg(args, "notes"),
	}, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// stringSlice reads an array-of-strings argument. A plain string is
// accepted as a comma-separated list. Blank entries are dropped.
func stringSlice(v any) []string {
	var items []string
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	case []string:
		items = v
	case string:
		items = strings.Split(v, ",")
	}

	out := []string{}
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
