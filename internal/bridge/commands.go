package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/storybook/internal/library"
	"github.com/HendryAvila/storybook/internal/manuscript"
)

type handler func(args json.RawMessage) (any, error)

// Command names accepted by Serve.
const (
	CmdListProjects    = "list_projects"
	CmdGetProject      = "get_project"
	CmdCreateProject   = "create_project"
	CmdImportProject   = "import_project"
	CmdUpdateMetadata  = "update_metadata"
	CmdDeleteProject   = "delete_project"
	CmdGetManuscript   = "get_manuscript"
	CmdSaveManuscript  = "save_manuscript"
	CmdAddCharacter    = "add_character"
	CmdRemoveCharacter = "remove_character"
	CmdAddPlotEvent    = "add_plot_event"
	CmdRemovePlotEvent = "remove_plot_event"
	CmdExportProject   = "export_project"
	CmdListReviews     = "list_reviews"
)

var commandNames = []string{
	CmdListProjects, CmdGetProject, CmdCreateProject, CmdImportProject,
	CmdUpdateMetadata, CmdDeleteProject, CmdGetManuscript, CmdSaveManuscript,
	CmdAddCharacter, CmdRemoveCharacter, CmdAddPlotEvent, CmdRemovePlotEvent,
	CmdExportProject, CmdListReviews,
}

func (b *Bridge) commandTable() map[string]handler {
	return map[string]handler{
		CmdListProjects:    b.listProjects,
		CmdGetProject:      b.getProject,
		CmdCreateProject:   b.createProject,
		CmdImportProject:   b.importProject,
		CmdUpdateMetadata:  b.updateMetadata,
		CmdDeleteProject:   b.deleteProject,
		CmdGetManuscript:   b.getManuscript,
		CmdSaveManuscript:  b.saveManuscript,
		CmdAddCharacter:    b.addCharacter,
		CmdRemoveCharacter: b.removeCharacter,
		CmdAddPlotEvent:    b.addPlotEvent,
		CmdRemovePlotEvent: b.removePlotEvent,
		CmdExportProject:   b.exportProject,
		CmdListReviews:     b.listReviews,
	}
}

// decode unmarshals args into dst. Missing args leave dst untouched.
func decode(args json.RawMessage, dst any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("%w: args: %v", library.ErrInvalid, err)
	}
	return nil
}

type projectArgs struct {
	ProjectID string `json:"project_id"`
}

func (b *Bridge) listProjects(json.RawMessage) (any, error) {
	return b.lib.List(), nil
}

func (b *Bridge) getProject(args json.RawMessage) (any, error) {
	var a projectArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return b.lib.Get(a.ProjectID)
}

type createArgs struct {
	Name       string                `json:"name"`
	Metadata   library.MetadataPatch `json:"metadata"`
	ImportFile string                `json:"import_file"`
}

func (b *Bridge) create(a createArgs) (*manuscript.Project, error) {
	meta, err := a.Metadata.Metadata(a.Name)
	if err != nil {
		return nil, err
	}
	return b.lib.Create(a.Name, meta, a.ImportFile)
}

func (b *Bridge) createProject(args json.RawMessage) (any, error) {
	var a createArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return b.create(a)
}

func (b *Bridge) importProject(args json.RawMessage) (any, error) {
	var a struct {
		createArgs
		SourcePath string `json:"source_path"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.SourcePath != "" {
		a.ImportFile = a.SourcePath
	}
	if a.ImportFile == "" {
		return nil, fmt.Errorf("%w: source_path is required", library.ErrInvalid)
	}
	return b.create(a.createArgs)
}

func (b *Bridge) updateMetadata(args json.RawMessage) (any, error) {
	var a struct {
		projectArgs
		Metadata library.MetadataPatch `json:"metadata"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return b.lib.UpdateMetadata(a.ProjectID, a.Metadata)
}

func (b *Bridge) deleteProject(args json.RawMessage) (any, error) {
	var a projectArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if err := b.lib.Delete(a.ProjectID); err != nil {
		return nil, err
	}
	return map[string]any{"deleted": true}, nil
}

func (b *Bridge) getManuscript(args json.RawMessage) (any, error) {
	var a projectArgs
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	p, content, err := b.lib.Manuscript(a.ProjectID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"content":    content,
		"path":       b.lib.Store().ManuscriptPath(p),
		"word_count": p.Metadata.WordCount,
	}, nil
}

func (b *Bridge) saveManuscript(args json.RawMessage) (any, error) {
	var a struct {
		projectArgs
		Content *string `json:"content"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	if a.Content == nil {
		return nil, fmt.Errorf("%w: content is required", library.ErrInvalid)
	}
	return b.lib.SaveManuscript(a.ProjectID, *a.Content)
}

func (b *Bridge) addCharacter(args json.RawMessage) (any, error) {
	var a struct {
		projectArgs
		Character map[string]any `json:"character"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	_, c, err := b.lib.AddCharacter(a.ProjectID, a.Character)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (b *Bridge) removeCharacter(args json.RawMessage) (any, error) {
	var a struct {
		projectArgs
		Name string `json:"name"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return b.lib.RemoveCharacter(a.ProjectID, a.Name)
}

func (b *Bridge) addPlotEvent(args json.RawMessage) (any, error) {
	var a struct {
		projectArgs
		Event map[string]any `json:"event"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	_, e, err := b.lib.AddPlotEvent(a.ProjectID, a.Event)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (b *Bridge) removePlotEvent(args json.RawMessage) (any, error) {
	var a struct {
		projectArgs
		EventID string `json:"event_id"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return b.lib.RemovePlotEvent(a.ProjectID, a.EventID)
}

func (b *Bridge) exportProject(args json.RawMessage) (any, error) {
	var a struct {
		projectArgs
		Format string `json:"format"`
		Dest   string `json:"dest"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	path, err := b.lib.Export(a.ProjectID, a.Format, a.Dest)
	if err != nil {
		return nil, err
	}
	return map[string]any{"path": path}, nil
}

func (b *Bridge) listReviews(args json.RawMessage) (any, error) {
	var a struct {
		projectArgs
		Limit int `json:"limit"`
	}
	if err := decode(args, &a); err != nil {
		return nil, err
	}
	return b.lib.Reviews(a.ProjectID, a.Limit)
}
