// Package projects persists storybook projects on the local filesystem.
//
// Layout, one directory per project under a configured root:
//
//	<root>/<project-id>/project.json   the serialized Project (sidecar)
//	<root>/<project-id>/manuscript.md  the manuscript text
//	<root>/<project-id>/*              exports, reviews and other side files
//
// The layout is shared with external bridge processes, so it must not change.
// The store is the only writer of sidecars and manuscript files. It does no
// locking: concurrent writers to the same project race and the last one wins.
package projects

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HendryAvila/storybook/internal/manuscript"
)

const (
	// SidecarFile is the filename of a project's serialized state.
	SidecarFile = "project.json"
	// DefaultRoot is the projects root used when none is configured.
	DefaultRoot = "~/.storybook/projects"
)

var (
	// ErrNotFound means no project matches a reference.
	ErrNotFound = errors.New("project not found")
	// ErrAmbiguous means an id prefix matches more than one project.
	ErrAmbiguous = errors.New("ambiguous project reference")
	// ErrSourceNotFound means an import source file does not exist.
	ErrSourceNotFound = errors.New("source file not found")
)

// Store defines the persistence interface for projects.
// Read paths report absence instead of failing; write paths surface I/O errors.
type Store interface {
	Root() string
	ProjectDir(id string) string
	ManuscriptPath(p *manuscript.Project) string

	Create(name string, meta *manuscript.ManuscriptMetadata) (*manuscript.Project, error)
	Import(name, sourcePath string, meta *manuscript.ManuscriptMetadata) (*manuscript.Project, error)
	ImportContent(name, content string, meta *manuscript.ManuscriptMetadata) (*manuscript.Project, error)
	List() []*manuscript.Project
	Load(id string) (*manuscript.Project, bool)
	Resolve(ref string) (*manuscript.Project, error)
	Save(p *manuscript.Project) error
	Delete(id string) (bool, error)

	ReadManuscript(p *manuscript.Project) (string, error)
	WriteManuscript(p *manuscript.Project, content string) error
	RefreshWordCount(p *manuscript.Project) error
	ReadSideFile(p *manuscript.Project, name string) (string, bool)
	WriteSideFile(p *manuscript.Project, name, content string) error
	Export(p *manuscript.Project, dest string, conv Exporter) (string, error)
}

// FileStore implements Store using the local filesystem.
type FileStore struct {
	root   string
	logger zerolog.Logger
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a filesystem-backed store rooted at root. The root is
// resolved once to an absolute path (expanding a leading ~) and created if
// missing.
func NewFileStore(root string, logger zerolog.Logger) (*FileStore, error) {
	abs, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating projects root: %w", err)
	}
	return &FileStore{
		root:   abs,
		logger: logger.With().Str("component", "projects.store").Logger(),
	}, nil
}

// ResolveRoot expands a leading ~ and makes root absolute.
// An empty root resolves DefaultRoot.
func ResolveRoot(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		root = DefaultRoot
	}
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving projects root: %w", err)
	}
	return abs, nil
}

// Root returns the absolute projects root.
func (fs *FileStore) Root() string {
	return fs.root
}

// ProjectDir returns the directory of the project with the given id.
func (fs *FileStore) ProjectDir(id string) string {
	return filepath.Join(fs.root, id)
}

// SidecarPath returns the path of a project's project.json.
func (fs *FileStore) SidecarPath(id string) string {
	return filepath.Join(fs.ProjectDir(id), SidecarFile)
}

// ManuscriptPath returns the absolute path of a project's manuscript file.
func (fs *FileStore) ManuscriptPath(p *manuscript.Project) string {
	return filepath.Join(fs.ProjectDir(p.ID), p.ManuscriptName())
}

// Create makes a new project with a fresh random id, writes the manuscript
// stub and persists the sidecar. When meta is nil the title defaults to name.
func (fs *FileStore) Create(name string, meta *manuscript.ManuscriptMetadata) (*manuscript.Project, error) {
	p := manuscript.NewProjectAt(uuid.NewString(), name, meta, timeNow())

	if err := os.MkdirAll(fs.ProjectDir(p.ID), 0o755); err != nil {
		return nil, fmt.Errorf("creating project directory: %w", err)
	}
	if err := writeFile(fs.ManuscriptPath(p), []byte(fmt.Sprintf("# %s\n\n", name))); err != nil {
		return nil, fmt.Errorf("writing manuscript stub: %w", err)
	}
	if err := fs.writeSidecar(p); err != nil {
		return nil, err
	}

	fs.logger.Info().Str("project_id", p.ID).Str("name", name).Msg("project created")
	return p, nil
}

// Import creates a project and copies sourcePath verbatim into its
// manuscript. Conversion from rich formats is the caller's job.
func (fs *FileStore) Import(name, sourcePath string, meta *manuscript.ManuscriptMetadata) (*manuscript.Project, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourcePath)
		}
		return nil, fmt.Errorf("reading import source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("import source %s is a directory", sourcePath)
	}

	p, err := fs.Create(name, meta)
	if err != nil {
		return nil, err
	}
	if err := copyFile(sourcePath, fs.ManuscriptPath(p)); err != nil {
		fs.discard(p.ID)
		return nil, fmt.Errorf("copying manuscript: %w", err)
	}
	if err := fs.RefreshWordCount(p); err != nil {
		fs.discard(p.ID)
		return nil, err
	}
	if err := fs.Save(p); err != nil {
		fs.discard(p.ID)
		return nil, err
	}
	return p, nil
}

// ImportContent creates a project whose manuscript is content, typically
// the output of a document conversion.
func (fs *FileStore) ImportContent(name, content string, meta *manuscript.ManuscriptMetadata) (*manuscript.Project, error) {
	p, err := fs.Create(name, meta)
	if err != nil {
		return nil, err
	}
	if err := fs.WriteManuscript(p, content); err != nil {
		fs.discard(p.ID)
		return nil, err
	}
	return p, nil
}

// List returns every project under the root, most recently edited first.
// Entries without a readable, well-formed sidecar are skipped.
func (fs *FileStore) List() []*manuscript.Project {
	entries, err := os.ReadDir(fs.root)
	if err != nil {
		fs.logger.Warn().Err(err).Msg("reading projects root")
		return []*manuscript.Project{}
	}

	result := make([]*manuscript.Project, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, ok := fs.Load(entry.Name())
		if !ok {
			continue // skip invalid projects
		}
		result = append(result, p)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastEdited.After(result[j].LastEdited)
	})
	return result
}

// Load reads a project by id. It reports false when the id is unknown or
// its sidecar is unreadable or malformed; callers treat both as absence.
func (fs *FileStore) Load(id string) (*manuscript.Project, bool) {
	if !validID(id) {
		return nil, false
	}
	data, err := os.ReadFile(fs.SidecarPath(id))
	if err != nil {
		if !os.IsNotExist(err) {
			fs.logger.Debug().Err(err).Str("project_id", id).Msg("unreadable sidecar")
		}
		return nil, false
	}

	p, err := decodeProject(data)
	if err != nil {
		fs.logger.Debug().Err(err).Str("project_id", id).Msg("malformed sidecar")
		return nil, false
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, true
}

// Resolve finds a project by full id or by a unique id prefix.
func (fs *FileStore) Resolve(ref string) (*manuscript.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if p, ok := fs.Load(ref); ok {
		return p, nil
	}

	var matches []*manuscript.Project
	for _, p := range fs.List() {
		if strings.HasPrefix(p.ID, ref) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		lines := make([]string, len(matches))
		for i, m := range matches {
			lines[i] = fmt.Sprintf("  %s %s", m.ShortID(), m.Name)
		}
		return nil, fmt.Errorf("%w %q, %d matches:\n%s", ErrAmbiguous, ref, len(matches), strings.Join(lines, "\n"))
	}
}

// Save stamps the project as edited now and overwrites its sidecar.
func (fs *FileStore) Save(p *manuscript.Project) error {
	now := timeNow()
	p.LastEdited = now
	p.Metadata.LastEdited = now
	return fs.writeSidecar(p)
}

// Delete removes a project's directory and everything in it. It reports
// false, without error, when the project does not exist.
func (fs *FileStore) Delete(id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	dir := fs.ProjectDir(id)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking project directory: %w", err)
	}
	if !info.IsDir() {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("removing project directory: %w", err)
	}
	fs.logger.Info().Str("project_id", id).Msg("project deleted")
	return true, nil
}

// writeSidecar marshals and atomically writes a project's project.json.
// The project directory must already exist.
func (fs *FileStore) writeSidecar(p *manuscript.Project) error {
	if !validID(p.ID) {
		return fmt.Errorf("invalid project id %q", p.ID)
	}
	data, err := encodeProject(p)
	if err != nil {
		return fmt.Errorf("marshaling project: %w", err)
	}
	if err := writeFile(fs.SidecarPath(p.ID), data); err != nil {
		return fmt.Errorf("writing %s: %w", SidecarFile, err)
	}
	return nil
}

// discard removes a half-created project after a failed import.
func (fs *FileStore) discard(id string) {
	if _, err := fs.Delete(id); err != nil {
		fs.logger.Warn().Err(err).Str("project_id", id).Msg("cleaning up failed import")
	}
}

// validID reports whether id names a single directory directly under root.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && filepath.Base(id) == id
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".import-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
