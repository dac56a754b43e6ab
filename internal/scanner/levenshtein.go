package scanner

import "context"

// ctxCheckEvery is how many DP rows run between cancellation checks.
const ctxCheckEvery = 256

// Distance returns the Levenshtein distance between a and b, counted in
// Unicode code points.
func Distance(a, b string) int {
	d, _ := distance(context.Background(), []rune(a), []rune(b))
	return d
}

// distance keeps two rows of the edit matrix and stops early when ctx is done.
func distance(ctx context.Context, a, b []rune) (int, error) {
	if len(a) == 0 {
		return len(b), nil
	}
	if len(b) == 0 {
		return len(a), nil
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)], nil
}

// Similarity returns (1 - distance/max(len)) * 100. Two empty texts are 100% similar.
func Similarity(a, b string) float64 {
	s, _ := similarity(context.Background(), []rune(a), []rune(b))
	return s
}

func similarity(ctx context.Context, a, b []rune) (float64, error) {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 100, nil
	}
	d, err := distance(ctx, a, b)
	if err != nil {
		return 0, err
	}
	score := (1 - float64(d)/float64(maxLen)) * 100
	return min(max(score, 0), 100), nil
}
