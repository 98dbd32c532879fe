// Package input turns one user-selected source into the canonical text the
// analysis pipeline reasons over.
package input

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/verifact/internal/document"
	"github.com/ppiankov/verifact/internal/model"
	"github.com/ppiankov/verifact/internal/util"
)

var (
	// ErrEmptyInput is returned when the selected modality carries no content
	ErrEmptyInput = errors.New("input required: provide content to analyze")

	// ErrInvalidSelection is returned when zero or several modalities are selected
	ErrInvalidSelection = errors.New("exactly one input modality must be selected")
)

// Warning texts attached to URL inputs that fail the syntax check
const (
	WarnMissingScheme   = "URL should begin with http:// or https://"
	WarnInvalidVideoURL = "not a recognized YouTube video URL"
)

// Selection holds the raw values of every modality; exactly one must be set
type Selection struct {
	Text     string
	URL      string
	VideoURL string
	FileName string
	FileData []byte
}

// Kind reports which modality is selected, or an error if the selection is not exactly one
func (s Selection) Kind() (model.SourceKind, error) {
	var kinds []model.SourceKind
	if s.Text != "" {
		kinds = append(kinds, model.SourceText)
	}
	if s.URL != "" {
		kinds = append(kinds, model.SourceURL)
	}
	if s.VideoURL != "" {
		kinds = append(kinds, model.SourceVideoURL)
	}
	if s.FileName != "" || len(s.FileData) > 0 {
		kinds = append(kinds, model.SourceDocument)
	}

	if len(kinds) != 1 {
		return "", fmt.Errorf("%w (got %d)", ErrInvalidSelection, len(kinds))
	}
	return kinds[0], nil
}

// Normalizer resolves selections into canonical inputs
type Normalizer struct {
	decoder *document.Decoder
	logger  *zap.Logger
}

// NewNormalizer creates a normalizer; a nil logger disables logging
func NewNormalizer(decoder *document.Decoder, logger *zap.Logger) *Normalizer {
	if decoder == nil {
		decoder = document.NewDecoder(model.DefaultConfig().Document)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		decoder: decoder,
		logger:  logger.With(zap.String("component", "input")),
	}
}

// Normalize dispatches on the selected modality
func (n *Normalizer) Normalize(sel Selection) (model.CanonicalInput, error) {
	kind, err := sel.Kind()
	if err != nil {
		return model.CanonicalInput{}, err
	}

	switch kind {
	case model.SourceText:
		return n.Text(sel.Text)
	case model.SourceURL:
		return n.URL(sel.URL)
	case model.SourceVideoURL:
		return n.VideoURL(sel.VideoURL)
	default:
		return n.Document(sel.FileName, sel.FileData)
	}
}

// Text uses the claim itself as the payload
func (n *Normalizer) Text(claim string) (model.CanonicalInput, error) {
	if strings.TrimSpace(claim) == "" {
		return model.CanonicalInput{}, ErrEmptyInput
	}
	return model.CanonicalInput{
		Kind:         model.SourceText,
		RawReference: claim,
		ResolvedText: claim,
	}, nil
}

// URL passes the address through unresolved; fetching happens in the research stage.
// A missing http(s) scheme is flagged but not rejected.
func (n *Normalizer) URL(rawURL string) (model.CanonicalInput, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return model.CanonicalInput{}, ErrEmptyInput
	}

	in := model.CanonicalInput{
		Kind:         model.SourceURL,
		RawReference: rawURL,
		ResolvedText: rawURL,
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		in.Warnings = append(in.Warnings, WarnMissingScheme)
		n.logger.Warn("url without scheme", zap.String("url", rawURL))
	}
	return in, nil
}

// VideoURL checks the watch/short-link forms and forwards the URL either way
func (n *Normalizer) VideoURL(rawURL string) (model.CanonicalInput, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return model.CanonicalInput{}, ErrEmptyInput
	}

	in := model.CanonicalInput{
		Kind:         model.SourceVideoURL,
		RawReference: rawURL,
		ResolvedText: rawURL,
	}
	if !util.IsShareableVideoURL(rawURL) {
		in.Warnings = append(in.Warnings, WarnInvalidVideoURL)
		n.logger.Warn("unrecognized video url", zap.String("url", rawURL))
	} else if id, ok := util.ExtractVideoID(rawURL); ok {
		n.logger.Debug("video url detected", zap.String("video_id", id))
	}
	return in, nil
}

// Document decodes an uploaded file. Decode failures are returned unchanged.
func (n *Normalizer) Document(filename string, data []byte) (model.CanonicalInput, error) {
	if len(data) == 0 {
		return model.CanonicalInput{}, ErrEmptyInput
	}

	text, err := n.decoder.Decode(filename, data)
	if err != nil {
		return model.CanonicalInput{}, err
	}

	n.logger.Debug("document decoded",
		zap.String("file", filename),
		zap.Int("bytes", len(data)),
		zap.Int("chars", len([]rune(text))))

	return model.CanonicalInput{
		Kind:         model.SourceDocument,
		RawReference: filename,
		ResolvedText: text,
	}, nil
}
