package e2e

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SupportedFileExtensions is the list of file extensions used in E2E file-based tests.
// PDF is not generated here (no minimal PDF with extractable text).
var SupportedFileExtensions = []string{".txt", ".md", ".docx", ".odt", ".xlsx"}

// WriteMinimalFile returns the bytes of a minimal file of the given extension holding
// one paragraph (or spreadsheet row) per line.
func WriteMinimalFile(ext string, lines []string) ([]byte, error) {
	switch ext {
	case ".txt", ".md", ".rst":
		return []byte(strings.Join(lines, "\n") + "\n"), nil
	case ".docx":
		return minimalDocx(lines)
	case ".odt":
		return minimalOdt(lines)
	case ".xlsx":
		return minimalXlsx(lines)
	default:
		return nil, fmt.Errorf("no fixture for %s", ext)
	}
}

func zipOf(name, body string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create(name)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write([]byte(body)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func minimalDocx(lines []string) ([]byte, error) {
	var b strings.Builder
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, l := range lines {
		b.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + html.EscapeString(l) + `</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return zipOf("word/document.xml", b.String())
}

func minimalOdt(lines []string) ([]byte, error) {
	var b strings.Builder
	b.WriteString(`<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"><office:body><office:text>`)
	for _, l := range lines {
		b.WriteString(`<text:p>` + html.EscapeString(l) + `</text:p>`)
	}
	b.WriteString(`</office:text></office:body></office:document-content>`)
	return zipOf("content.xml", b.String())
}

func minimalXlsx(lines []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	for i, l := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue("Sheet1", cell, l); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
