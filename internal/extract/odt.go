package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// odfContentPath is the path to the document body inside an OpenDocument zip.
const odfContentPath = "content.xml"

var (
	// odfEmptyPara removes self-closing <text:p/> and <text:h/> elements.
	odfEmptyPara = regexp.MustCompile(`<text:[ph](?:\s[^>]*)?/>`)
	// odfParagraph matches paragraphs and headings; the inner text may hold spans.
	odfParagraph = regexp.MustCompile(`(?s)<text:([ph])(?:\s[^>]*)?>(.*?)</text:[ph]>`)
	odfSpace     = regexp.MustCompile(`<text:(?:s|tab)(?:\s[^>]*)?/>`)
	odfBreak     = regexp.MustCompile(`<text:line-break(?:\s[^>]*)?/>`)
)

// extractODT returns one line per paragraph or heading of an OpenDocument text file.
func extractODT(content []byte) (string, error) {
	zr, err := openZip(content)
	if err != nil {
		return "", fmt.Errorf("extract ODT: %w", err)
	}
	data, err := readZipEntry(zr, odfContentPath)
	if err != nil {
		return "", fmt.Errorf("extract ODT: %w", err)
	}
	if data == nil {
		return "", fmt.Errorf("extract ODT: %s not found", odfContentPath)
	}

	body := odfEmptyPara.ReplaceAllString(string(data), "")
	var lines []string
	for _, m := range odfParagraph.FindAllStringSubmatch(body, -1) {
		inner := odfSpace.ReplaceAllString(m[2], " ")
		inner = odfBreak.ReplaceAllString(inner, "\n")
		lines = append(lines, strings.Split(stripTags(inner), "\n")...)
	}
	return joinLines(lines), nil
}
