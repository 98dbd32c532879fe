package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDocumentProcessing matches every parse failure surfaced as a ProcessingError
	ErrDocumentProcessing = errors.New("document processing failed")

	// ErrEmptyDocument is the cause recorded when a document decodes to blank text
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrTooLarge is the cause recorded when an upload exceeds the configured size cap
	ErrTooLarge = errors.New("document exceeds size limit")
)

// UnsupportedFormatError is returned for file extensions with no decoder
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return "unsupported file format: missing extension (supported: .pdf, .docx, .txt)"
	}
	return fmt.Sprintf("unsupported file format %q (supported: .pdf, .docx, .txt)", e.Extension)
}

// DecodeError is returned when no candidate encoding decodes a text file cleanly
type DecodeError struct {
	Tried []string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode text file (tried %s)", strings.Join(e.Tried, ", "))
}

// ProcessingError wraps the underlying cause of a failed PDF/DOCX/text extraction.
// errors.Is matches both ErrDocumentProcessing and the cause.
type ProcessingError struct {
	Filename string
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("process %s: %v", e.Filename, e.Err)
}

func (e *ProcessingError) Unwrap() []error {
	return []error{ErrDocumentProcessing, e.Err}
}
