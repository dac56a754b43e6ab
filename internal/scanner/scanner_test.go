package scanner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docscan/internal/model"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"hello world", "hello world", 0},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.a, tt.b))
			assert.Equal(t, tt.expected, Distance(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical", "hello world", "hello world", 100},
		{"both empty", "", "", 100},
		{"one empty", "abc", "", 0},
		{"disjoint equal length", "abcd", "wxyz", 0},
		{"half", "abcd", "abzz", 50},
		{"kitten", "kitten", "sitting", (1 - 3.0/7.0) * 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestScan(t *testing.T) {
	corpus := []model.Document{
		{Name: "1700000000000-a.txt", Content: "the quick brown fox"},
		{Name: "1700000000001-b.txt", Content: "hello world"},
		{Name: "1700000000002-c.txt", Content: "hello world"},
		{Name: "1700000000003-d.txt", Content: "lorem ipsum"},
	}

	tests := []struct {
		name     string
		text     string
		corpus   []model.Document
		exclude  string
		expected Match
	}{
		{
			name:     "empty corpus",
			text:     "hello world",
			expected: Match{},
		},
		{
			name:     "tie keeps first in corpus order",
			text:     "hello world",
			corpus:   corpus,
			expected: Match{Filename: "1700000000001-b.txt", Similarity: 100},
		},
		{
			name:     "excluded entry is skipped",
			text:     "hello world",
			corpus:   corpus,
			exclude:  "1700000000001-b.txt",
			expected: Match{Filename: "1700000000002-c.txt", Similarity: 100},
		},
		{
			name:     "only excluded entry",
			text:     "hello world",
			corpus:   corpus[1:2],
			exclude:  "1700000000001-b.txt",
			expected: Match{},
		},
		{
			name:     "zero similarity still matches",
			text:     "zzzz",
			corpus:   []model.Document{{Name: "x.txt", Content: "abcd"}},
			expected: Match{Filename: "x.txt", Similarity: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Scan(context.Background(), tt.text, tt.corpus, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestScan_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, "hello", []model.Document{{Name: "a.txt", Content: "hello"}}, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScan_DeadlineInsideLongComparison(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	time.Sleep(2 * time.Millisecond)

	long := strings.Repeat("a", 4096)
	_, err := similarity(ctx, []rune(long), []rune(long))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
