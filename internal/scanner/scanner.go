package scanner

import (
	"context"

	"docscan/internal/model"
)

// Match is the best corpus entry for a scanned text. The zero value means no match.
type Match struct {
	Filename   string  `json:"filename"`
	Similarity float64 `json:"similarity"`
}

// Scan compares text against every corpus document except the one named
// exclude and returns the most similar. Ties keep the earliest document in
// corpus order. An empty corpus yields the zero Match.
//
// Every call is a full rescan of the corpus; there is no index.
func Scan(ctx context.Context, text string, corpus []model.Document, exclude string) (Match, error) {
	target := []rune(text)
	best := Match{}
	found := false

	for _, doc := range corpus {
		if exclude != "" && doc.Name == exclude {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Match{}, err
		}

		score, err := similarity(ctx, target, []rune(doc.Content))
		if err != nil {
			return Match{}, err
		}
		if !found || score > best.Similarity {
			best = Match{Filename: doc.Name, Similarity: score}
			found = true
		}
	}

	return best, nil
}
