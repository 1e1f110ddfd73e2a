package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		width    int
		expected []string
	}{
		{
			name:     "simple wrap",
			text:     "hello world",
			width:    5,
			expected: []string{"hello", "world"},
		},
		{
			name:     "no wrap needed",
			text:     "hello",
			width:    10,
			expected: []string{"hello"},
		},
		{
			name:     "multiple wraps",
			text:     "this is a long text that needs wrapping",
			width:    10,
			expected: []string{"this is a", "long text", "that needs", "wrapping"},
		},
		{
			name:     "empty string",
			text:     "",
			width:    10,
			expected: nil,
		},
		{
			name:     "single word longer than width",
			text:     "supercalifragilistic",
			width:    10,
			expected: []string{"supercalifragilistic"},
		},
		{
			name:     "long word between short ones",
			text:     "a supercalifragilistic b",
			width:    10,
			expected: []string{"a", "supercalifragilistic", "b"},
		},
		{
			name:     "multiple spaces",
			text:     "hello    world",
			width:    20,
			expected: []string{"hello world"},
		},
		{
			name:     "runes not bytes",
			text:     "héllo wörld",
			width:    11,
			expected: []string{"héllo wörld"},
		},
		{
			name:     "no width",
			text:     "hello world",
			width:    0,
			expected: []string{"hello world"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Wrap(tt.text, tt.width))
		})
	}
}

func TestIndent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "  a\n\n  b", Indent("a\n\nb", 2))
	assert.Equal(t, "a", Indent("a", -1))
}
