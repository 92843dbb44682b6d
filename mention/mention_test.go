package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "no mentions",
			content: "delivery is scheduled for friday",
			want:    []string{},
		},
		{
			name:    "single mention",
			content: "hello @admin1",
			want:    []string{"admin1"},
		},
		{
			name:    "repeated mention kept per occurrence",
			content: "hello @admin1 and @admin1 again",
			want:    []string{"admin1", "admin1"},
		},
		{
			name:    "multiple distinct mentions in order",
			content: "@alice please loop in @bob_2 and @carol",
			want:    []string{"alice", "bob_2", "carol"},
		},
		{
			name:    "mention adjacent to punctuation",
			content: "thanks @support! see order #42, cc @ops.",
			want:    []string{"support", "ops"},
		},
		{
			name:    "bare at sign is not a mention",
			content: "meet @ the showroom",
			want:    []string{},
		},
		{
			name:    "underscore and digits are word characters",
			content: "ping @branch_7",
			want:    []string{"branch_7"},
		},
		{
			name:    "empty content",
			content: "",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.content))
		})
	}
}

func TestExtractIsIdempotentOverContent(t *testing.T) {
	content := "hey @a, @b and @a"
	first := Extract(content)
	second := Extract(content)
	assert.Equal(t, first, second)
}
