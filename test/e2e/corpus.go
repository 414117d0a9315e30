// Package e2e provides end-to-end tests that align generated parallel documents.
package e2e

import "github.com/hyperjump/narabe/internal/models"

// ParallelCorpus is a pair of documents where Right is Left with unmatched
// sentences inserted. Expected lists the pairs every alignment must contain.
type ParallelCorpus struct {
	Left     []string
	Right    []string
	Expected []models.Point
}

var corpusSentences = []string{
	"The harbour master rang the bell at dawn.",
	"Fishing boats slipped out past the breakwater.",
	"Gulls followed the trawlers toward open water.",
	"A baker on Quay Street lit his ovens early.",
	"Fresh bread smelled of rosemary and sea salt.",
	"Children walked to school along the seawall.",
	"Their aunt kept a jar of polished pebbles.",
	"Every pebble came from a different beach.",
	"At noon the ferry arrived from the islands.",
	"Passengers carried baskets of apples and wool.",
	"The old lighthouse keeper counted the ships.",
	"He wrote each name in a leather ledger.",
	"Clouds gathered over the western cliffs.",
	"Rain drummed on the slate roofs by evening.",
	"Lanterns glowed in the windows of the inn.",
	"Sailors argued about knots and weather charts.",
	"A fiddler played reels until the candles died.",
	"Midnight brought a thick and silent fog.",
	"Somewhere a foghorn groaned across the bay.",
	"By morning the storm had blown itself out.",
	"Driftwood lay scattered across the shingle.",
	"The mayor ordered repairs to the damaged pier.",
	"Carpenters hammered planks from sunrise to dusk.",
	"Within a week the harbour was busy again.",
}

// corpusNoise shares no words with corpusSentences.
var corpusNoise = []string{
	"Foreword: Ingrid Solberg, translator.",
	"Chapter endnotes explained.",
	"Publisher's interjection here.",
}

// BuildParallelCorpus returns a corpus of n left sentences (n <= 24). Right opens
// with two noise sentences and has a third inserted after left sentence n/2.
func BuildParallelCorpus(n int) *ParallelCorpus {
	n = min(n, len(corpusSentences))
	c := &ParallelCorpus{Left: append([]string{}, corpusSentences[:n]...)}
	c.Right = append(c.Right, corpusNoise[:2]...)
	offset := 2
	for i, s := range c.Left {
		c.Right = append(c.Right, s)
		c.Expected = append(c.Expected, models.Point{Left: i, Right: i + offset})
		if i == n/2 {
			c.Right = append(c.Right, corpusNoise[2])
			offset++
		}
	}
	return c
}
