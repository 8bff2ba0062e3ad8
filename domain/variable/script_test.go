package variable

import "testing"

func TestIsNonLatin(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", false},
		{"hello world", false},
		{"café crème", false},
		{"你好", true},
		{"user 用户", true},
		{"  \t ", false},
		{"naïve ÿ", false},
		{"Ā", true},
	}

	for _, tt := range tests {
		if got := IsNonLatin(tt.text); got != tt.want {
			t.Errorf("IsNonLatin(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
