package review

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_EmptyDiff(t *testing.T) {
	assert.Equal(t,
		"You're a code reviewer. Review this code diff and give concise feedback:\n\n",
		BuildPrompt(""))
}

func TestBuildPrompt_ContainsDiffVerbatim(t *testing.T) {
	tests := []struct {
		name string
		diff string
	}{
		{"simple", "diff --git a/main.go b/main.go\n+fmt.Println(\"hi\")\n"},
		{"instruction wording", "+// " + Instruction + "\n-" + Instruction},
		{"braces and percent", "+fmt.Printf(\"%s {0} %%v\\n\", x)\n"},
		{"no trailing newline", "-a\n+b"},
		{"unicode", "+msg := \"héllo, 世界\"\n"},
		{"multi megabyte", strings.Repeat("+line of changed code\n", 150_000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPrompt(tt.diff)
			assert.True(t, strings.HasPrefix(got, Instruction))
			assert.Equal(t, tt.diff, strings.TrimPrefix(got, Instruction))
			assert.Len(t, got, len(Instruction)+len(tt.diff))
		})
	}
}
