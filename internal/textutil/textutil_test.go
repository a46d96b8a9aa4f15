package textutil

import (
	"testing"
	"time"
)

func TestStripMarkup(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>World</b></p>", "Hello World"},
		{"No markup here", "No markup here"},
		{"a < b and c > d", "a < b and c > d"},
		{"<span style=\"color:red\">Warning</span>", "Warning"},
	}
	for _, tc := range cases {
		if got := StripMarkup(tc.in); got != tc.want {
			t.Errorf("StripMarkup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestContainsMarkup(t *testing.T) {
	if !ContainsMarkup("<i>x</i>") {
		t.Error("markup not detected")
	}
	if ContainsMarkup("1 < 2") {
		t.Error("bare comparison treated as markup")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 4); got != "abcd..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 4); got != "abc" {
		t.Errorf("Truncate short = %q", got)
	}
}

func TestTimestampFormat(t *testing.T) {
	ts := Timestamp()
	if _, err := time.Parse("Mon_02Jan_2006_15h04m05s", ts); err != nil {
		t.Errorf("timestamp %q does not match layout: %v", ts, err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename(`Plan: A/B (1)`); got != `Plan_ A_B (1)` {
		t.Errorf("SanitizeFilename = %q", got)
	}
	if got := SanitizeFilename("plain-name_1"); got != "plain-name_1" {
		t.Errorf("SanitizeFilename changed safe name: %q", got)
	}
}
