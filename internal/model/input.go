package model

// SourceKind identifies which input modality produced a canonical input
type SourceKind string

const (
	SourceText     SourceKind = "text"      // Raw claim text
	SourceURL      SourceKind = "url"       // Web page URL (fetched later by the research stage)
	SourceVideoURL SourceKind = "video_url" // Video URL (transcript fetched later)
	SourceDocument SourceKind = "document"  // Uploaded PDF, DOCX or plain text file
)

// CanonicalInput is the single normalized payload the pipeline reasons over
type CanonicalInput struct {
	Kind         SourceKind `json:"kind"`
	RawReference string     `json:"raw_reference"`      // URL, file name, or the claim itself
	ResolvedText string     `json:"resolved_text"`      // Never empty once normalized
	Warnings     []string   `json:"warnings,omitempty"` // Non-fatal syntax flags (bad scheme, unknown video URL)
}

// Preview returns the first n runes of the resolved text with an ellipsis when cut
func (c CanonicalInput) Preview(n int) string {
	runes := []rune(c.ResolvedText)
	if len(runes) <= n {
		return c.ResolvedText
	}
	return string(runes[:n]) + "..."
}
