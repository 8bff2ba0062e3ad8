package variable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeSuggestions(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		previous []string
		want     []string
	}{
		{"prepends", []string{"a", "b"}, []string{"c"}, []string{"a", "b", "c"}},
		{"dedups keeping first", []string{"b", "a"}, []string{"a", "c", "b"}, []string{"b", "a", "c"}},
		{"drops non latin", []string{"用户", "user"}, []string{"名字", "name"}, []string{"user", "name"}},
		{"drops empty", []string{"", "x"}, nil, []string{"x"}},
		{"both empty", nil, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeSuggestions(tt.tokens, tt.previous))
		})
	}
}
