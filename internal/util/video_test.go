package util

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=abc123", "abc123", true},
		{"https://youtu.be/abc123", "abc123", true},
		{"https://www.youtube.com/watch?v=abc123&t=42s", "abc123", true},
		{"https://youtu.be/abc123?si=share", "abc123", true},
		{"https://www.youtube.com/embed/xyz789", "xyz789", true},
		{"https://www.youtube.com/v/xyz789#frag", "xyz789", true},
		{"https://example.com", "", false},
		{"https://www.youtube.com/", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, ok := ExtractVideoID(tt.url)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("ExtractVideoID(%q) = (%q, %v), want (%q, %v)", tt.url, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestIsShareableVideoURL(t *testing.T) {
	if !IsShareableVideoURL("https://youtu.be/abc123") {
		t.Error("expected short link to be recognized")
	}
	if !IsShareableVideoURL("https://www.youtube.com/watch?v=abc123") {
		t.Error("expected watch URL to be recognized")
	}
	if IsShareableVideoURL("https://www.youtube.com/embed/abc123") {
		t.Error("embed URLs are not a share form")
	}
}
