package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/verifact/internal/document"
	"github.com/ppiankov/verifact/internal/model"
)

func TestNormalize_Text(t *testing.T) {
	n := NewNormalizer(nil, nil)

	in, err := n.Normalize(Selection{Text: "The moon is made of cheese"})
	require.NoError(t, err)
	assert.Equal(t, model.SourceText, in.Kind)
	assert.Equal(t, "The moon is made of cheese", in.ResolvedText)
	assert.Empty(t, in.Warnings)
}

func TestNormalize_BlankIsEmptyInput(t *testing.T) {
	n := NewNormalizer(nil, nil)

	_, err := n.Text("   \n")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = n.URL(" ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = n.VideoURL("\t")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = n.Document("empty.txt", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestNormalize_Selection(t *testing.T) {
	n := NewNormalizer(nil, nil)

	_, err := n.Normalize(Selection{})
	assert.ErrorIs(t, err, ErrInvalidSelection)

	_, err = n.Normalize(Selection{Text: "claim", URL: "https://example.com"})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestNormalize_URL(t *testing.T) {
	n := NewNormalizer(nil, nil)

	in, err := n.Normalize(Selection{URL: "https://example.com/article"})
	require.NoError(t, err)
	assert.Equal(t, model.SourceURL, in.Kind)
	assert.Equal(t, "https://example.com/article", in.ResolvedText)
	assert.Empty(t, in.Warnings)

	in, err = n.Normalize(Selection{URL: "example.com/article"})
	require.NoError(t, err, "missing scheme is a warning, not a failure")
	assert.Equal(t, "example.com/article", in.ResolvedText)
	assert.Equal(t, []string{WarnMissingScheme}, in.Warnings)
}

func TestNormalize_VideoURL(t *testing.T) {
	n := NewNormalizer(nil, nil)

	for _, u := range []string{"https://www.youtube.com/watch?v=abc123", "https://youtu.be/abc123"} {
		in, err := n.Normalize(Selection{VideoURL: u})
		require.NoError(t, err)
		assert.Equal(t, model.SourceVideoURL, in.Kind)
		assert.Equal(t, u, in.ResolvedText)
		assert.Empty(t, in.Warnings, u)
	}

	in, err := n.Normalize(Selection{VideoURL: "https://example.com"})
	require.NoError(t, err, "invalid video URLs are still forwarded")
	assert.Equal(t, "https://example.com", in.ResolvedText)
	assert.Equal(t, []string{WarnInvalidVideoURL}, in.Warnings)
}

func TestNormalize_Document(t *testing.T) {
	n := NewNormalizer(nil, nil)

	in, err := n.Normalize(Selection{FileName: "notes.txt", FileData: []byte("Water boils at 100C")})
	require.NoError(t, err)
	assert.Equal(t, model.SourceDocument, in.Kind)
	assert.Equal(t, "notes.txt", in.RawReference)
	assert.Equal(t, "Water boils at 100C", in.ResolvedText)
}

func TestNormalize_DocumentErrorsAreTyped(t *testing.T) {
	n := NewNormalizer(nil, nil)

	_, err := n.Normalize(Selection{FileName: "slides.pptx", FileData: []byte("x")})
	var unsupported *document.UnsupportedFormatError
	assert.True(t, errors.As(err, &unsupported))

	_, err = n.Normalize(Selection{FileName: "blank.txt", FileData: []byte("   ")})
	assert.ErrorIs(t, err, document.ErrDocumentProcessing)
}

func TestNormalize_NeverEmptyOnSuccess(t *testing.T) {
	n := NewNormalizer(nil, nil)

	selections := []Selection{
		{Text: "x"},
		{URL: "ftp://host"},
		{VideoURL: "not a video"},
		{FileName: "a.txt", FileData: []byte("a")},
	}
	for _, sel := range selections {
		in, err := n.Normalize(sel)
		require.NoError(t, err)
		assert.NotEmpty(t, in.ResolvedText)
	}
}
