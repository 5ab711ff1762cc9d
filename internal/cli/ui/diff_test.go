package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineDiff(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   string
	}{
		{"equal", "a\nb", "a\nb", ""},
		{"changed line", "a\nb\nc", "a\nB\nc", "@@ -2 +2 @@\n-b\n+B\n"},
		{"added line", "a", "a\nb", "@@ -2 +2 @@\n+b\n"},
		{"removed line", "a\nb", "a", "@@ -2 +2 @@\n-b\n"},
		{"blank replaced", "a\n\nc", "a\nx\nc", "@@ -2 +2 @@\n-\n+x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LineDiff(tt.before, tt.after))
		})
	}
}

func TestWriteDiffNoColor(t *testing.T) {
	var buf bytes.Buffer
	WriteDiff(&buf, "@@ -1 +1 @@\n-a\n+b\n  name: x\n", true)

	assert.Equal(t, "@@ -1 +1 @@\n-a\n+b\n  name: x\n", buf.String())
}
