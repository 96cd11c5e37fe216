package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Converter imports documents as Markdown and exports Markdown to other
// formats. The zero value is not usable; call New.
type Converter struct {
	docx bool
	pdf  bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithoutDocx disables the docx backend. Docx operations then fail with
// ErrCapabilityUnavailable.
func WithoutDocx() Option {
	return func(c *Converter) { c.docx = false }
}

// WithoutPDF disables the PDF backend.
func WithoutPDF() Option {
	return func(c *Converter) { c.pdf = false }
}

// New returns a Converter with every backend enabled unless disabled by opts.
func New(opts ...Option) *Converter {
	c := &Converter{docx: true, pdf: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Import reads path and returns its content as Markdown, dispatching on
// the file extension.
func (c *Converter) Import(path string) (string, error) {
	switch DetectFormat(path) {
	case FormatDocx:
		return c.ImportDocx(path)
	case FormatPDF:
		return c.ImportPDF(path)
	case FormatText:
		return c.ImportText(path)
	default:
		return "", &FormatError{Op: "import", Ext: filepath.Ext(path)}
	}
}

// Export writes Markdown content to path in the format its extension
// names. title is used by formats that carry a document title.
func (c *Converter) Export(content, path, title string) error {
	switch DetectFormat(path) {
	case FormatDocx:
		return c.ExportDocx(content, path, title)
	case FormatText:
		return c.ExportMarkdown(content, path)
	case FormatPDF:
		return &CapabilityError{Format: FormatPDF, Op: "export", Reason: "no PDF writer is available"}
	default:
		return &FormatError{Op: "export", Ext: filepath.Ext(path)}
	}
}

// ImportText returns the file content unchanged. It must be UTF-8.
func (c *Converter) ImportText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("reading %s: not valid UTF-8 text", path)
	}
	return string(data), nil
}

// ExportMarkdown writes content to path unchanged.
func (c *Converter) ExportMarkdown(content, path string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Capabilities reports which formats this converter can import and export.
func (c *Converter) Capabilities() map[Format][]string {
	caps := map[Format][]string{FormatText: {"import", "export"}}
	if c.docx {
		caps[FormatDocx] = []string{"import", "export"}
	}
	if c.pdf {
		caps[FormatPDF] = []string{"import"}
	}
	return caps
}
