// Package convert moves manuscripts between Markdown and other document
// formats. Dispatch is by file extension only; content is never sniffed.
package convert

import (
	"path/filepath"
	"strings"
)

// Format is a document format recognized by extension.
type Format string

const (
	FormatDocx    Format = "docx"
	FormatPDF     Format = "pdf"
	FormatText    Format = "txt"
	FormatUnknown Format = "unknown"
)

// DetectFormat classifies path by its extension, case-insensitively.
// .txt, .md and .markdown are all plain text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return FormatDocx
	case ".pdf":
		return FormatPDF
	case ".txt", ".md", ".markdown":
		return FormatText
	default:
		return FormatUnknown
	}
}
