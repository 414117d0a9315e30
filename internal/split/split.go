// Package split turns extracted text into the sentence units that get aligned.
package split

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// terminators end a sentence; the terminator stays with the sentence it ends.
const terminators = ".!?"

// Splitter splits text into sentences.
type Splitter struct {
	lowercase bool
	lang      language.Tag
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithLowercase toggles lowercasing of every unit (on by default). Lowercased
// units embed more consistently across the two languages.
func WithLowercase(on bool) Option {
	return func(s *Splitter) { s.lowercase = on }
}

// WithLanguage sets the language used for case mapping.
func WithLanguage(tag language.Tag) Option {
	return func(s *Splitter) { s.lang = tag }
}

// New returns a Splitter.
func New(opts ...Option) *Splitter {
	s := &Splitter{lowercase: true, lang: language.Und}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split breaks text into sentences. Each line is split after every '.', '!' or '?';
// pieces are trimmed and whitespace-collapsed, and empty or terminator-only pieces
// are dropped. Sentences never span lines.
func (s *Splitter) Split(text string) []string {
	var lower cases.Caser
	if s.lowercase {
		lower = cases.Lower(s.lang)
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, piece := range splitInclusive(line) {
			piece = Preprocess(piece)
			if piece == "" || (len(piece) == 1 && strings.ContainsAny(piece, terminators)) {
				continue
			}
			if s.lowercase {
				piece = lower.String(piece)
			}
			out = append(out, piece)
		}
	}
	return out
}

// splitInclusive cuts line after each terminator, keeping the terminator.
func splitInclusive(line string) []string {
	var parts []string
	for {
		i := strings.IndexAny(line, terminators)
		if i < 0 {
			break
		}
		parts = append(parts, line[:i+1])
		line = line[i+1:]
	}
	if line != "" {
		parts = append(parts, line)
	}
	return parts
}
