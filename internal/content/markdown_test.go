package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			in:       "hello **world**",
			contains: []string{"<strong>world</strong>"},
		},
		{
			name:     "script stripped",
			in:       "hi <script>alert(1)</script>",
			excludes: []string{"<script", "alert(1)</script>"},
		},
		{
			name:     "external link gets rel",
			in:       "[site](https://example.com)",
			contains: []string{`href="https://example.com"`, "noreferrer", `target="_blank"`},
		},
		{
			name:     "javascript link dropped",
			in:       "[x](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "gfm strikethrough",
			in:       "~~old~~",
			contains: []string{"<del>old</del>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render(tt.in)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
