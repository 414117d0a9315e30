package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

// HTMLFileName returns the output file name for a page with the given column count.
func HTMLFileName(columns int) string {
	if columns == 1 {
		return "1-column.html"
	}
	return fmt.Sprintf("%d-columns.html", columns)
}

// ValidColumns reports whether columns is a supported HTML layout.
func ValidColumns(columns int) bool {
	return columns >= 1 && columns <= 3
}

const pageCSS = `
    @page {
      size: {{.PageSize}};
      margin: 0mm;
      padding: 0mm;
    }
    body {
      margin: 0;
      font-family: Arial, sans-serif;
      font-size: 18pt;
    }
    * {
      margin: 0;
      padding: 0;
      box-sizing: border-box;
    }
    table {
      width: 100%;
      border-collapse: collapse;
    }
    td {
      width: {{.CellWidth}};
      vertical-align: top;
      padding: 5px;
      padding-right: 0px;
      border: none;
    }
    .l {
      text-align: start;
      color: green;
    }
    .r {
      text-align: end;
      font-weight: bold;
    }`

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <style>{{template "css" .}}
  </style>
</head>
<body>
{{- range .Rows}}
  <hr />
{{- if eq $.Columns 1}}
  <p class="r">{{template "lines" .Right}}</p>
  <p class="l">{{template "lines" .Left}}</p>
{{- else}}
  <table>
    <tr>
      <td><p>{{template "lines" .Left}}</p></td>
      <td><p>{{template "lines" .Right}}</p></td>
{{- if eq $.Columns 3}}
      <td></td>
{{- end}}
    </tr>
  </table>
{{- end}}
{{- end}}
</body>
</html>
`

const linesTemplate = `{{range $i, $s := .}}{{if $i}}<br />{{end}}{{$s}}{{end}}`

var page = template.Must(template.Must(template.Must(
	template.New("page").Parse(pageTemplate)).
	New("css").Parse(pageCSS)).
	New("lines").Parse(linesTemplate))

type pageData struct {
	Columns   int
	PageSize  template.CSS
	CellWidth template.CSS
	Rows      []Row
}

// HTML writes a printable page with the given layout. One column stacks the right
// sentence (bold, end-aligned) above the left one; two and three columns put them side by
// side, the third column left blank for notes. Blocks are separated by a rule.
func HTML(w io.Writer, columns int, rows []Row) error {
	if !ValidColumns(columns) {
		return fmt.Errorf("unsupported column layout: %d", columns)
	}
	data := pageData{Columns: columns, PageSize: "A4 landscape", CellWidth: "50%", Rows: rows}
	switch columns {
	case 1:
		data.PageSize = "A4"
	case 3:
		data.CellWidth = "33%"
	}
	if err := page.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render %d-column page: %w", columns, err)
	}
	return nil
}

// WriteHTMLFiles renders one page per layout in columns into dir and returns the written paths.
func WriteHTMLFiles(dir string, rows []Row, columns []int) ([]string, error) {
	paths := make([]string, 0, len(columns))
	for _, c := range columns {
		var buf bytes.Buffer
		if err := HTML(&buf, c, rows); err != nil {
			return paths, err
		}
		path := filepath.Join(dir, HTMLFileName(c))
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
