// Package document extracts plain text from uploaded files.
//
// Supported formats are PDF (text per page, in page order), Word OOXML
// documents (body paragraphs, newline-joined) and plain text in one of a
// configurable list of candidate encodings.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppiankov/verifact/internal/model"
)

// Decoder turns uploaded file bytes into plain text
type Decoder struct {
	maxBytes  int64
	encodings []string
}

// NewDecoder creates a decoder from the document configuration
func NewDecoder(cfg model.DocumentConfig) *Decoder {
	encodings := cfg.Encodings
	if len(encodings) == 0 {
		encodings = model.DefaultConfig().Document.Encodings
	}
	return &Decoder{
		maxBytes:  cfg.MaxBytes,
		encodings: encodings,
	}
}

// Decode dispatches on the file extension and returns the extracted text.
// The result is never blank: empty documents fail with a ProcessingError.
func (d *Decoder) Decode(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var extract func([]byte) (string, error)
	switch ext {
	case ".pdf":
		extract = extractPDF
	case ".docx":
		extract = extractDOCX
	case ".txt":
		extract = d.decodeText
	default:
		return "", &UnsupportedFormatError{Extension: ext}
	}

	if d.maxBytes > 0 && int64(len(data)) > d.maxBytes {
		return "", &ProcessingError{
			Filename: filename,
			Err:      fmt.Errorf("%w: %d bytes > %d", ErrTooLarge, len(data), d.maxBytes),
		}
	}

	text, err := extract(data)
	if err != nil {
		// Encoding exhaustion is reported as-is; everything else is a processing failure
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return "", err
		}
		return "", &ProcessingError{Filename: filename, Err: err}
	}

	if strings.TrimSpace(text) == "" {
		return "", &ProcessingError{Filename: filename, Err: ErrEmptyDocument}
	}

	return text, nil
}

// Decode decodes with the default configuration
func Decode(filename string, data []byte) (string, error) {
	return NewDecoder(model.DefaultConfig().Document).Decode(filename, data)
}
