package util

import "regexp"

// videoIDPatterns are tried in order; the first capture group is the identifier
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
}

// shareURLPattern covers the two forms users paste from the browser and share sheet
var shareURLPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?#]+)`)

// ExtractVideoID returns the video identifier embedded in a YouTube URL.
// The boolean is false when no known URL form matches.
func ExtractVideoID(rawURL string) (string, bool) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); len(m) > 1 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// IsShareableVideoURL reports whether rawURL is a watch or short-link YouTube URL
func IsShareableVideoURL(rawURL string) bool {
	return shareURLPattern.MatchString(rawURL)
}
