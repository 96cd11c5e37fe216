// Package resources implements the MCP resources of the storybook server.
//
// Resources give the host read-only context about the bound project:
// its sidecar as JSON and its manuscript as markdown.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HendryAvila/storybook/internal/manuscript"
	"github.com/HendryAvila/storybook/internal/projects"
	"github.com/mark3labs/mcp-go/mcp"
)

// Resource URIs.
const (
	ProjectURI    = "storybook://project"
	ManuscriptURI = "storybook://manuscript"
)

// Handler serves the resource endpoints for one bound project.
type Handler struct {
	store     projects.Store
	projectID string
}

// NewHandler creates a resource Handler.
func NewHandler(store projects.Store, projectID string) *Handler {
	return &Handler{store: store, projectID: projectID}
}

// ProjectResource returns the MCP resource definition for the project sidecar.
func (h *Handler) ProjectResource() mcp.Resource {
	return mcp.NewResource(
		ProjectURI,
		"Storybook Project",
		mcp.WithResourceDescription("Project metadata, tracked characters and plot events"),
		mcp.WithMIMEType("application/json"),
	)
}

// ManuscriptResource returns the MCP resource definition for the manuscript.
func (h *Handler) ManuscriptResource() mcp.Resource {
	return mcp.NewResource(
		ManuscriptURI,
		"Manuscript",
		mcp.WithResourceDescription("Full manuscript text"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// HandleProject returns the bound project as JSON.
func (h *Handler) HandleProject(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	p, err := h.project()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling project: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// HandleManuscript returns the bound project's manuscript text.
func (h *Handler) HandleManuscript(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	p, err := h.project()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	text, err := h.store.ReadManuscript(p)
	if err != nil {
		return nil, fmt.Errorf("reading manuscript: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     text,
		},
	}, nil
}

func (h *Handler) project() (*manuscript.Project, error) {
	if h.projectID == "" {
		return nil, fmt.Errorf("no project is bound to this server")
	}
	return h.store.Resolve(h.projectID)
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
