package store

import "testing"

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"cat", "cat"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}
	for _, tt := range tests {
		if got := escapeLike(tt.term); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.term, got, tt.want)
		}
	}
}
