package convert

import (
	"archive/zip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── DetectFormat ───────────────────────────────────────────────────────────

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"test.docx", FormatDocx},
		{"TEST.DOCX", FormatDocx},
		{"report.pdf", FormatPDF},
		{"notes.txt", FormatText},
		{"draft.md", FormatText},
		{"draft.Markdown", FormatText},
		{"test.xyz", FormatUnknown},
		{"noext", FormatUnknown},
		{"dir.docx/file", FormatUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.path), "DetectFormat(%q)", tt.path)
	}
}

// ─── Dispatch and errors ────────────────────────────────────────────────────

func TestImport_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.xyz")
	require.NoError(t, os.WriteFile(path, []byte("Content"), 0o644))

	_, err := New().Import(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.False(t, errors.Is(err, ErrCapabilityUnavailable))

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, ".xyz", fe.Ext)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestExport_UnsupportedFormat(t *testing.T) {
	err := New().Export("Content", filepath.Join(t.TempDir(), "output.xyz"), "")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), "unsupported export format")
}

func TestExport_PDFIsCapabilityUnavailable(t *testing.T) {
	err := New().Export("Content", filepath.Join(t.TempDir(), "out.pdf"), "T")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapabilityUnavailable))
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestDisabledBackends(t *testing.T) {
	dir := t.TempDir()
	c := New(WithoutDocx(), WithoutPDF())

	err := c.Export("# A", filepath.Join(dir, "a.docx"), "")
	var ce *CapabilityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, FormatDocx, ce.Format)
	assert.Equal(t, "export", ce.Op)

	_, err = c.Import(filepath.Join(dir, "missing.docx"))
	assert.True(t, errors.Is(err, ErrCapabilityUnavailable))

	_, err = c.Import(filepath.Join(dir, "missing.pdf"))
	assert.True(t, errors.Is(err, ErrCapabilityUnavailable))

	_, ok := c.Capabilities()[FormatDocx]
	assert.False(t, ok)
}

// ─── Text and Markdown ──────────────────────────────────────────────────────

func TestMarkdownRoundTrip(t *testing.T) {
	original := "# Test Novel\n\n## Chapter 1\n\nOnce upon a time."
	path := filepath.Join(t.TempDir(), "test.md")
	c := New()

	require.NoError(t, c.Export(original, path, "ignored"))
	got, err := c.Import(path)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestImportText_RejectsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 'a'}, 0o644))

	_, err := New().ImportText(path)
	assert.Error(t, err)
}

func TestImportText_MissingFile(t *testing.T) {
	_, err := New().Import(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

// ─── Docx ───────────────────────────────────────────────────────────────────

func TestDocxRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")
	c := New()

	content := "# My Novel\n\n## Chapter 1\n\nTest content.\n\n\n#### Deep & <odd>\nLast line."
	require.NoError(t, c.Export(content, path, "My Novel"))

	got, err := c.Import(path)
	require.NoError(t, err)
	assert.Equal(t,
		"# My Novel\n\n# My Novel\n\n## Chapter 1\n\nTest content.\n\n#### Deep & <odd>\n\nLast line.",
		got)
}

func TestExportDocx_HeadingLevelCapped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep.docx")
	require.NoError(t, New().ExportDocx("############ Very deep", path, ""))

	body := readZipPart(t, path, "word/document.xml")
	assert.Contains(t, body, `<w:pStyle w:val="Heading9"/>`)
	assert.NotContains(t, body, "Heading12")

	for _, part := range []string{"[Content_Types].xml", "_rels/.rels", "word/styles.xml"} {
		assert.NotEmpty(t, readZipPart(t, path, part), part)
	}
}

func TestExportDocx_TitleCentered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titled.docx")
	require.NoError(t, New().ExportDocx("Body", path, "The Title"))

	body := readZipPart(t, path, "word/document.xml")
	assert.Contains(t, body, `<w:pStyle w:val="Title"/><w:jc w:val="center"/>`)
	assert.Less(t, strings.Index(body, "The Title"), strings.Index(body, "Body"))
}

func TestImportDocx_Heuristics(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:pPr><w:pStyle w:val="Heading3"/></w:pPr><w:r><w:t>Styled heading</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="CustomHead"/></w:pPr><w:r><w:t>No digit heading</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Bold short line</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:b w:val="0"/></w:rPr><w:t>Explicitly not bold</w:t></w:r></w:p>
<w:p><w:r><w:t>Plain start, </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>bold later</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>` + strings.Repeat("x", 120) + `</w:t></w:r></w:p>
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>` + strings.Repeat("Ж", 60) + `</w:t></w:r></w:p>
<w:p><w:r><w:t>   </w:t></w:r></w:p>
<w:p></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Table cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:p><w:r><w:t>Col A</w:t><w:tab/><w:t>Col B</w:t></w:r></w:p>
<w:sectPr/></w:body></w:document>`

	const styles = `<?xml version="1.0" encoding="UTF-8"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/></w:style>
<w:style w:type="paragraph" w:styleId="CustomHead"><w:name w:val="Heading Custom"/></w:style>
</w:styles>`

	path := writeDocx(t, map[string]string{
		"word/document.xml": doc,
		"word/styles.xml":   styles,
	})

	got, err := New().ImportDocx(path)
	require.NoError(t, err)

	want := strings.Join([]string{
		"### Styled heading",
		"# No digit heading",
		"## Bold short line",
		"Explicitly not bold",
		"Plain start, bold later",
		strings.Repeat("x", 120),
		"## " + strings.Repeat("Ж", 60),
		"Col A\tCol B",
	}, "\n\n")
	assert.Equal(t, want, got)
}

func TestImportDocx_StyleIDWithoutStylesPart(t *testing.T) {
	const doc = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Two</w:t></w:r></w:p>
</w:body></w:document>`
	path := writeDocx(t, map[string]string{"word/document.xml": doc})

	got, err := New().ImportDocx(path)
	require.NoError(t, err)
	assert.Equal(t, "## Two", got)
}

func TestImportDocx_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := New().ImportDocx(path)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
}

// ─── PDF cleanup ────────────────────────────────────────────────────────────

func TestCleanPageText(t *testing.T) {
	got := cleanPageText([]string{"Page  one   text\n\n\n\nmore", "", "Page two"})
	assert.Equal(t, "Page one text\n\nmore\n\nPage two", got)
}

func TestImportPDF_MissingFile(t *testing.T) {
	_, err := New().ImportPDF(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCapabilityUnavailable))
}

// ─── helpers ────────────────────────────────────────────────────────────────

func writeDocx(t *testing.T, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, data := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func readZipPart(t *testing.T, path, name string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	f := findZipFile(&zr.Reader, name)
	require.NotNil(t, f, "missing part %s", name)
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}
