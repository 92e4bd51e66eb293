package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_ShortInputs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "whitespace only", text: " \n\t ", want: nil},
		{name: "fits in one chunk", text: "  hello world  ", want: []string{"hello world"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitText(tt.text, 100, 20))
		})
	}
}

func TestSplitText_PrefersParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("a", 40)
	para2 := strings.Repeat("b", 40)
	para3 := strings.Repeat("c", 40)

	got := SplitText(para1+"\n\n"+para2+"\n\n"+para3, 90, 0)

	require.Len(t, got, 2)
	assert.Equal(t, para1+"\n\n"+para2, got[0])
	assert.Equal(t, para3, got[1])
}

func TestSplitText_RespectsSizeAndOverlap(t *testing.T) {
	words := make([]string, 200)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")

	got := SplitText(text, 50, 10)
	require.Greater(t, len(got), 1)

	for _, chunk := range got {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 50)
	}
	// consecutive chunks share trailing words
	assert.True(t, strings.HasPrefix(got[1], "word"))
	assert.True(t, strings.HasSuffix(got[0], got[1][:4]))
}

func TestSplitText_FallsBackToRunes(t *testing.T) {
	text := strings.Repeat("é", 25)

	got := SplitText(text, 10, 0)

	require.Len(t, got, 3)
	assert.Equal(t, strings.Repeat("é", 10), got[0])
	assert.Equal(t, strings.Repeat("é", 5), got[2])
}

func TestSplitText_CoversAllContent(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one is last.\nNew line text.\n\nNew paragraph."

	got := SplitText(text, 30, 0)

	joined := strings.Join(got, " ")
	for _, w := range strings.Fields(text) {
		assert.Contains(t, joined, strings.TrimSuffix(w, "."))
	}
}
