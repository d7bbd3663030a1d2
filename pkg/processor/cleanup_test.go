package processor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		maxLines      int
		want          string
		wantTruncated bool
	}{
		{name: "under limit", text: "a\nb", maxLines: 5, want: "a\nb"},
		{name: "exactly at limit", text: "a\nb\nc", maxLines: 3, want: "a\nb\nc"},
		{name: "trailing newline is not a line", text: "a\nb\nc\n", maxLines: 3, want: "a\nb\nc\n"},
		{name: "over limit", text: "a\nb\nc\nd", maxLines: 2, want: "a\nb", wantTruncated: true},
		{name: "disabled", text: "a\nb\nc", maxLines: 0, want: "a\nb\nc"},
		{name: "empty", text: "", maxLines: 3, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := Truncate(tt.text, tt.maxLines)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTruncated, truncated)
		})
	}
}

func TestTruncateIdempotent(t *testing.T) {
	text := strings.Repeat("error line\n", 50)

	for _, maxLines := range []int{1, 5, 49, 50, 100} {
		once, _ := Truncate(text, maxLines)
		twice, truncatedAgain := Truncate(once, maxLines)

		assert.Equal(t, once, twice, "maxLines=%d", maxLines)
		assert.False(t, truncatedAgain, "maxLines=%d", maxLines)
	}
}

func TestCleanup(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "trailing whitespace trimmed",
			text: "first   \nsecond\t\n",
			want: "first\nsecond",
		},
		{
			name: "blank runs collapsed",
			text: "one\n\n\n\ntwo\n \t \nthree",
			want: "one\n\ntwo\n\nthree",
		},
		{
			name: "leading and trailing blank lines dropped",
			text: "\n\n  \nbody\n\n\n",
			want: "body",
		},
		{
			name: "indentation preserved",
			text: "Traceback:\n    File \"a.py\", line 1\n\tat Main.main(Main.java:3)",
			want: "Traceback:\n    File \"a.py\", line 1\n\tat Main.main(Main.java:3)",
		},
		{
			name: "windows line endings",
			text: "one\r\n\r\n\r\ntwo\r\n",
			want: "one\n\ntwo",
		},
		{
			name: "only blank",
			text: "\n \n\t\n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cleanup(tt.text))
		})
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(""))
	assert.Equal(t, 1, CountLines("one"))
	assert.Equal(t, 2, CountLines("one\ntwo\n"))
	assert.Equal(t, 3, CountLines("one\n\nthree"))
}
