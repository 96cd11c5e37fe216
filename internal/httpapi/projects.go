package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/library"
	"github.com/HendryAvila/storybook/internal/manuscript"
)

type handlers struct {
	lib     *library.Library
	runner  agent.Runner
	opts    agent.Options
	version string
	logger  zerolog.Logger
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version, Timestamp: time.Now().UTC()})
}

func (h *handlers) genres(c *gin.Context) {
	success(c, manuscript.Genres, "")
}

// bind decodes a JSON body. It answers 400 and reports false on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		failStatus(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// ─── Projects ───────────────────────────────────────────────────────────────

func (h *handlers) listProjects(c *gin.Context) {
	success(c, h.lib.List(), "")
}

func (h *handlers) getProject(c *gin.Context) {
	p, err := h.lib.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, p, "")
}

// CreateProjectRequest is the body of POST /api/projects. importFile is
// the web client's spelling; import_file is accepted too.
type CreateProjectRequest struct {
	Name          string                `json:"name"`
	ImportFile    string                `json:"importFile"`
	ImportFileAlt string                `json:"import_file"`
	Metadata      library.MetadataPatch `json:"metadata"`
}

func (h *handlers) createProject(c *gin.Context) {
	var req CreateProjectRequest
	if !bind(c, &req) {
		return
	}
	if req.Name == "" {
		failStatus(c, http.StatusBadRequest, "Project name is required")
		return
	}
	importFile := req.ImportFile
	if importFile == "" {
		importFile = req.ImportFileAlt
	}

	meta, err := req.Metadata.Metadata(req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.lib.Create(req.Name, meta, importFile)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, p, "Project created successfully")
}

func (h *handlers) updateMetadata(c *gin.Context) {
	var patch library.MetadataPatch
	if !bind(c, &patch) {
		return
	}
	p, err := h.lib.UpdateMetadata(c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, p, "Metadata updated successfully")
}

func (h *handlers) deleteProject(c *gin.Context) {
	if err := h.lib.Delete(c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	success[any](c, nil, "Project deleted successfully")
}

// ─── Manuscript ─────────────────────────────────────────────────────────────

// ManuscriptResponse is the data of GET /api/projects/:id/manuscript.
type ManuscriptResponse struct {
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

func (h *handlers) getManuscript(c *gin.Context) {
	p, content, err := h.lib.Manuscript(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, ManuscriptResponse{Content: content, WordCount: p.Metadata.WordCount}, "")
}

func (h *handlers) saveManuscript(c *gin.Context) {
	var body map[string]any
	if !bind(c, &body) {
		return
	}
	content, ok := body["content"].(string)
	if !ok {
		failStatus(c, http.StatusBadRequest, "Manuscript content must be a string")
		return
	}
	p, err := h.lib.SaveManuscript(c.Param("id"), content)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, ManuscriptResponse{Content: content, WordCount: p.Metadata.WordCount}, "Manuscript updated successfully")
}

// ─── Characters and plot events ─────────────────────────────────────────────

func (h *handlers) listCharacters(c *gin.Context) {
	p, err := h.lib.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, p.Characters, "")
}

func (h *handlers) addCharacter(c *gin.Context) {
	var args map[string]any
	if !bind(c, &args) {
		return
	}
	_, ch, err := h.lib.AddCharacter(c.Param("id"), args)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, ch, fmt.Sprintf("Character %s tracked", ch.Name))
}

func (h *handlers) removeCharacter(c *gin.Context) {
	p, err := h.lib.RemoveCharacter(c.Param("id"), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, p.Characters, "Character removed")
}

func (h *handlers) listPlotEvents(c *gin.Context) {
	p, err := h.lib.Get(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, p.PlotEvents, "")
}

func (h *handlers) addPlotEvent(c *gin.Context) {
	var args map[string]any
	if !bind(c, &args) {
		return
	}
	_, e, err := h.lib.AddPlotEvent(c.Param("id"), args)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, e, fmt.Sprintf("Plot event %s tracked", e.ID))
}

func (h *handlers) removePlotEvent(c *gin.Context) {
	p, err := h.lib.RemovePlotEvent(c.Param("id"), c.Param("eventId"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, p.PlotEvents, "Plot event removed")
}

// ─── Export and reviews ─────────────────────────────────────────────────────

// ExportRequest is the body of POST /api/projects/:id/export.
type ExportRequest struct {
	Format string `json:"format"`
	Dest   string `json:"dest"`
}

// ExportResponse reports where the export was written.
type ExportResponse struct {
	Format string `json:"format"`
	Path   string `json:"path"`
}

func (h *handlers) exportProject(c *gin.Context) {
	var req ExportRequest
	if !bind(c, &req) {
		return
	}
	format, err := library.ParseExportFormat(req.Format)
	if err != nil {
		failStatus(c, http.StatusBadRequest, "Invalid export format. Must be docx, pdf, or markdown")
		return
	}
	path, err := h.lib.Export(c.Param("id"), format, req.Dest)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, ExportResponse{Format: format, Path: path}, "Project exported as "+format)
}

func (h *handlers) listReviews(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	reviews, err := h.lib.Reviews(c.Param("id"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, reviews, "")
}
