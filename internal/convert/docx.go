package convert

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxHeadingLevel is the deepest heading style a word processor defines.
const maxHeadingLevel = 9

// boldHeadingLimit is the length below which a paragraph opening with a
// bold run is taken for a heading.
const boldHeadingLimit = 100

// ─── Import ─────────────────────────────────────────────────────────────────

// ImportDocx converts a .docx file to Markdown. Each body paragraph becomes
// one block. Heading-styled paragraphs and short paragraphs whose first run
// is bold become headings. Blank paragraphs are dropped and blocks are
// separated by a blank line.
func (c *Converter) ImportDocx(path string) (string, error) {
	if !c.docx {
		return "", &CapabilityError{Format: FormatDocx, Op: "import", Reason: "docx backend disabled"}
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening docx %s: %w", path, err)
	}
	defer zr.Close()

	names := map[string]string{}
	if f := findZipFile(&zr.Reader, "word/styles.xml"); f != nil {
		names, err = readStyleNames(f)
		if err != nil {
			return "", fmt.Errorf("reading docx styles: %w", err)
		}
	}

	doc := findZipFile(&zr.Reader, "word/document.xml")
	if doc == nil {
		return "", fmt.Errorf("opening docx %s: word/document.xml missing", path)
	}
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("opening docx body: %w", err)
	}
	defer rc.Close()

	paras, err := readParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("parsing docx body: %w", err)
	}

	blocks := make([]string, 0, len(paras))
	for _, p := range paras {
		if block := p.markdown(names); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}

type docxParagraph struct {
	styleID   string
	text      strings.Builder
	runs      int
	firstBold bool
}

func (p *docxParagraph) markdown(styleNames map[string]string) string {
	text := strings.TrimSpace(p.text.String())
	if text == "" {
		return ""
	}
	if level, ok := headingLevel(p.styleID, styleNames); ok {
		return strings.Repeat("#", level) + " " + text
	}
	if p.firstBold && utf8.RuneCountInString(text) < boldHeadingLimit {
		return "## " + text
	}
	return text
}

// headingLevel maps a paragraph style to a heading level. Styles named
// "Heading N" take level N (1 when no digit trails the name) and the
// Title style is level 1.
func headingLevel(styleID string, styleNames map[string]string) (int, bool) {
	if styleID == "" {
		return 0, false
	}
	name := styleNames[styleID]
	if name == "" {
		name = styleID
	}
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case lower == "title":
		return 1, true
	case strings.HasPrefix(lower, "heading"):
		last := rune(lower[len(lower)-1])
		if unicode.IsDigit(last) && last != '0' {
			return int(last - '0'), true
		}
		return 1, true
	}
	return 0, false
}

// readParagraphs walks document.xml and collects the paragraphs that are
// direct children of the body. Table cells and text boxes are skipped as
// paragraphs, though text nested inside a body paragraph is kept.
func readParagraphs(r io.Reader) ([]*docxParagraph, error) {
	dec := xml.NewDecoder(r)
	var (
		stack []string
		paras []*docxParagraph
		cur   *docxParagraph
		depth int // stack depth of cur's <w:p>
		inRun bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, t.Name.Local)
			level := len(stack)

			if cur == nil {
				if t.Name.Local == "p" && parent == "body" {
					cur = &docxParagraph{}
					depth = level
				}
				continue
			}

			switch t.Name.Local {
			case "pStyle":
				if level == depth+2 && parent == "pPr" {
					cur.styleID = attr(t, "val")
				}
			case "r":
				if level == depth+1 {
					cur.runs++
					inRun = cur.runs == 1
				}
			case "b":
				if inRun && level == depth+3 && parent == "rPr" {
					cur.firstBold = onOff(attr(t, "val"))
				}
			case "tab":
				if parent == "r" {
					cur.text.WriteByte('\t')
				}
			case "br", "cr":
				if parent == "r" {
					cur.text.WriteByte('\n')
				}
			}

		case xml.EndElement:
			level := len(stack)
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if cur == nil {
				continue
			}
			switch {
			case t.Name.Local == "r" && level == depth+1:
				inRun = false
			case t.Name.Local == "p" && level == depth:
				paras = append(paras, cur)
				cur = nil
			}

		case xml.CharData:
			if cur != nil && len(stack) > 0 && stack[len(stack)-1] == "t" {
				cur.text.Write(t)
			}
		}
	}
	return paras, nil
}

func readStyleNames(f *zip.File) (map[string]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var styles struct {
		Styles []struct {
			ID   string `xml:"styleId,attr"`
			Name struct {
				Val string `xml:"val,attr"`
			} `xml:"name"`
		} `xml:"style"`
	}
	if err := xml.NewDecoder(rc).Decode(&styles); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(styles.Styles))
	for _, s := range styles.Styles {
		names[s.ID] = s.Name.Val
	}
	return names, nil
}

func findZipFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// onOff reads an OOXML toggle property; an absent value means on.
func onOff(val string) bool {
	switch strings.ToLower(val) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// ─── Export ─────────────────────────────────────────────────────────────────

// ExportDocx writes Markdown content to path as a .docx package. A non-empty
// title becomes a centered Title paragraph. Lines starting with '#' become
// headings of that depth, capped at nine; other non-blank lines become plain
// paragraphs.
func (c *Converter) ExportDocx(content, path, title string) error {
	if !c.docx {
		return &CapabilityError{Format: FormatDocx, Op: "export", Reason: "docx backend disabled"}
	}

	var body strings.Builder
	if title != "" {
		writeParagraph(&body, "Title", true, title)
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			text := strings.TrimLeft(line, "#")
			level := min(len(line)-len(text), maxHeadingLevel)
			writeParagraph(&body, fmt.Sprintf("Heading%d", level), false, strings.TrimSpace(text))
			continue
		}
		writeParagraph(&body, "", false, line)
	}

	return writeDocxPackage(path, body.String())
}

func writeParagraph(sb *strings.Builder, style string, center bool, text string) {
	sb.WriteString("<w:p>")
	if style != "" || center {
		sb.WriteString("<w:pPr>")
		if style != "" {
			fmt.Fprintf(sb, `<w:pStyle w:val="%s"/>`, style)
		}
		if center {
			sb.WriteString(`<w:jc w:val="center"/>`)
		}
		sb.WriteString("</w:pPr>")
	}
	sb.WriteString(`<w:r><w:t xml:space="preserve">`)
	_ = xml.EscapeText(sb, []byte(text))
	sb.WriteString("</w:t></w:r></w:p>")
}

func writeDocxPackage(path, body string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.docx")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	zw := zip.NewWriter(tmp)
	parts := []struct{ name, data string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML()},
		{"word/document.xml", documentXMLHeader + body + documentXMLFooter},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if _, err := io.WriteString(w, part.data); err != nil {
			tmp.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ─── OOXML parts ────────────────────────────────────────────────────────────

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const documentXMLHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="` + wordNS + `"><w:body>`

const documentXMLFooter = `<w:sectPr/></w:body></w:document>`

// stylesXML defines Normal, Title and Heading1..Heading9 so word processors
// render exported headings with their usual look.
func stylesXML() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<w:styles xmlns:w="` + wordNS + `">`)
	sb.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	sb.WriteString(`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/>` +
		`<w:rPr><w:sz w:val="56"/></w:rPr></w:style>`)
	for i := 1; i <= maxHeadingLevel; i++ {
		size := max(36-4*(i-1), 22)
		fmt.Fprintf(&sb, `<w:style w:type="paragraph" w:styleId="Heading%d"><w:name w:val="heading %d"/>`+
			`<w:basedOn w:val="Normal"/><w:pPr><w:outlineLvl w:val="%d"/></w:pPr>`+
			`<w:rPr><w:b/><w:sz w:val="%d"/></w:rPr></w:style>`, i, i, i-1, size)
	}
	sb.WriteString(`</w:styles>`)
	return sb.String()
}
