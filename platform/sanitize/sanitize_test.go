package sanitize

import "testing"

func TestLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Ravi", "Ravi"},
		{"  Ravi   Kumar ", "Ravi Kumar"},
		{"Ravi\nKumar", "Ravi Kumar"},
		{"\x1b[2JRavi", "[2JRavi"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := Line(tc.input); got != tc.want {
			t.Errorf("Line(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"• Budget?\n• Demo", "• Budget?\n• Demo"},
		{"line one  \r\nline two", "line one\nline two"},
		{"<p>Hello</p><p>World</p>", "Hello\nWorld"},
		{"a<br>b", "a\nb"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;ok", "alert(1)ok"},
		{"bell\x07 here", "bell here"},
	}

	for _, tc := range tests {
		if got := Text(tc.input); got != tc.want {
			t.Errorf("Text(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
