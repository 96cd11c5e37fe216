package convert

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	excessNewlines = regexp.MustCompile(`\n{3,}`)
	excessSpaces   = regexp.MustCompile(` {2,}`)
)

// ImportPDF extracts the plain text of every page, separates pages with a
// blank line and collapses runs of blank lines and spaces.
func (c *Converter) ImportPDF(path string) (string, error) {
	if !c.pdf {
		return "", &CapabilityError{Format: FormatPDF, Op: "import", Reason: "pdf backend disabled"}
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extracting text from page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return cleanPageText(pages), nil
}

// cleanPageText joins page texts with a blank line, then collapses three or
// more newlines to two and repeated spaces to one.
func cleanPageText(pages []string) string {
	content := strings.Join(pages, "\n\n")
	content = excessNewlines.ReplaceAllString(content, "\n\n")
	return excessSpaces.ReplaceAllString(content, " ")
}
