package projects

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HendryAvila/storybook/internal/manuscript"
)

func encodeProject(p *manuscript.Project) ([]byte, error) {
	p.Normalize()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func decodeProject(data []byte) (*manuscript.Project, error) {
	var p manuscript.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", SidecarFile, err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("parsing %s: %w", SidecarFile, errNoName)
	}
	return &p, nil
}

var errNoName = errors.New("project has no name")

// writeFile is swapped in tests to simulate a failing disk.
var writeFile = writeFileAtomic

// writeFileAtomic writes data to a temp file in the destination directory
// and renames it over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
