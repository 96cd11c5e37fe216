package projects

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/storybook/internal/manuscript"
)

// LatestReviewFile is the side file holding the most recent editor review.
const LatestReviewFile = "latest_review.md"

// Exporter writes manuscript content to a destination file.
// convert.Converter satisfies it.
type Exporter interface {
	Export(content, path, title string) error
}

// ReadManuscript returns the manuscript text. A missing file reads as "".
func (fs *FileStore) ReadManuscript(p *manuscript.Project) (string, error) {
	data, err := os.ReadFile(fs.ManuscriptPath(p))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading manuscript: %w", err)
	}
	return string(data), nil
}

// WriteManuscript replaces the manuscript text, recounts words from the
// written file and saves the project.
func (fs *FileStore) WriteManuscript(p *manuscript.Project, content string) error {
	if err := writeFile(fs.ManuscriptPath(p), []byte(content)); err != nil {
		return fmt.Errorf("writing manuscript: %w", err)
	}
	if err := fs.RefreshWordCount(p); err != nil {
		return err
	}
	return fs.Save(p)
}

// RefreshWordCount recomputes metadata.word_count from the manuscript on
// disk. It does not save.
func (fs *FileStore) RefreshWordCount(p *manuscript.Project) error {
	content, err := fs.ReadManuscript(p)
	if err != nil {
		return err
	}
	p.Metadata.WordCount = manuscript.CountWords(content)
	return nil
}

// ReadSideFile reads a file stored next to the manuscript.
func (fs *FileStore) ReadSideFile(p *manuscript.Project, name string) (string, bool) {
	if !validID(name) {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(fs.ProjectDir(p.ID), name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// WriteSideFile stores content in a file next to the manuscript.
// The sidecar and manuscript names are reserved.
func (fs *FileStore) WriteSideFile(p *manuscript.Project, name, content string) error {
	if !validID(name) || name == SidecarFile || name == p.ManuscriptName() {
		return fmt.Errorf("invalid side file name %q", name)
	}
	if err := writeFile(filepath.Join(fs.ProjectDir(p.ID), name), []byte(content)); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Export writes the manuscript to dest through conv, using the metadata
// title. A relative dest is placed inside the project directory.
// It returns the absolute destination path.
func (fs *FileStore) Export(p *manuscript.Project, dest string, conv Exporter) (string, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return "", fmt.Errorf("export destination is required")
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(fs.ProjectDir(p.ID), dest)
	}

	content, err := fs.ReadManuscript(p)
	if err != nil {
		return "", err
	}
	if err := conv.Export(content, dest, p.Metadata.Title); err != nil {
		return "", err
	}
	fs.logger.Info().Str("project_id", p.ID).Str("dest", dest).Msg("manuscript exported")
	return dest, nil
}

// ExportName returns the default export filename for a project and
// format extension, e.g. "The_Long_Road.docx".
func ExportName(p *manuscript.Project, ext string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return -1
		}
		return r
	}, strings.TrimSpace(p.Metadata.Title))
	if base == "" {
		base = "manuscript"
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}
