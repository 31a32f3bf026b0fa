package textproc

import (
	"testing"
)

func Test_Clean_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "a  b   c", "a b c"},
		{"newlines", "line one\nline two\r\nline three", "line one line two line three"},
		{"tabs", "col1\t\tcol2", "col1 col2"},
		{"mixed runs", "a \n\t b", "a b"},
		{"leading and trailing", "  padded  ", "padded"},
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func Test_Clean_StripsNonPrintable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nul bytes dropped", "he\x00llo", "hello"},
		{"control chars become space", "a\x01\x02b", "a b"},
		{"non-ascii becomes space", "café au lait", "caf au lait"},
		{"del char", "a\x7fb", "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func Test_Clean_Idempotent(t *testing.T) {
	t.Parallel()

	samples := []string{
		"plain text",
		"  messy \n\n text \x00 with\tjunk  ",
		"unicode: héllo wörld",
		"",
		"a\x01b\x02c",
	}

	for _, s := range samples {
		once := Clean(s)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", s, once, twice)
		}
	}
}
