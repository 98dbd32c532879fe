package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ppiankov/verifact/internal/model"
	"github.com/ppiankov/verifact/internal/util"
)

var (
	// ErrVideoUnavailable means the video is private, removed or region locked
	ErrVideoUnavailable = errors.New("video unavailable")

	// ErrTranscriptsDisabled means the video has no caption tracks at all
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")

	// ErrEmptyTranscript means a caption track was found but contained no text
	ErrEmptyTranscript = errors.New("transcript is empty")
)

const playerResponseMarker = "ytInitialPlayerResponse = "

// TranscriptFetcher retrieves YouTube caption text for a video URL
type TranscriptFetcher struct {
	httpClient *http.Client
	baseURL    *url.URL
	languages  []string
	userAgent  string
	logger     *zap.Logger
}

// NewTranscriptFetcher creates the video transcript tool
func NewTranscriptFetcher(cfg model.VideoConfig, httpCfg model.HTTPConfig, transport http.RoundTripper, logger *zap.Logger) (*TranscriptFetcher, error) {
	base := cfg.BaseURL
	if base == "" {
		base = "https://www.youtube.com"
	}
	baseURL, err := url.Parse(base)
	if err != nil || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid video base URL %q", base)
	}
	if transport == nil {
		transport = util.NewTransport(httpCfg)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := httpCfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userAgent := httpCfg.UserAgent
	if userAgent == "" {
		userAgent = model.DefaultUserAgent
	}
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	return &TranscriptFetcher{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		baseURL:    baseURL,
		languages:  languages,
		userAgent:  userAgent,
		logger:     logger.With(zap.String("tool", string(model.ToolVideoTranscript))),
	}, nil
}

// Spec describes the tool
func (t *TranscriptFetcher) Spec() Spec {
	return Spec{
		ID:          model.ToolVideoTranscript,
		Name:        "YouTube Transcript Tool",
		Description: "Extract transcript from YouTube videos for fact-checking",
		Argument:    "youtube_url",
		ArgumentDoc: "YouTube video URL",
	}
}

// Invoke extracts the video id and returns the joined caption text.
// An unrecognized URL fails without any network call.
func (t *TranscriptFetcher) Invoke(ctx context.Context, reference string) Result {
	id, ok := util.ExtractVideoID(strings.TrimSpace(reference))
	if !ok {
		return Fail(model.ToolVideoTranscript, "Invalid YouTube URL format")
	}

	text, err := t.transcript(ctx, id)
	if err != nil {
		t.logger.Debug("transcript failed", zap.String("video_id", id), zap.Error(err))
		return Fail(model.ToolVideoTranscript, fmt.Sprintf("Error accessing video %s: %v", id, err))
	}

	return Ok(model.ToolVideoTranscript, fmt.Sprintf("YouTube Video Transcript (ID: %s):\n\n%s", id, text))
}

func (t *TranscriptFetcher) transcript(ctx context.Context, videoID string) (string, error) {
	watchURL := t.baseURL.ResolveReference(&url.URL{Path: "/watch", RawQuery: url.Values{"v": {videoID}}.Encode()})
	page, err := t.get(ctx, watchURL.String())
	if err != nil {
		return "", fmt.Errorf("load watch page: %w", err)
	}

	player, err := playerResponse(page)
	if err != nil {
		return "", err
	}

	if status := gjson.GetBytes(player, "playabilityStatus.status").String(); status != "" && status != "OK" {
		reason := gjson.GetBytes(player, "playabilityStatus.reason").String()
		if reason == "" {
			reason = status
		}
		return "", fmt.Errorf("%w: %s", ErrVideoUnavailable, reason)
	}

	trackURL, lang, err := t.pickTrack(player)
	if err != nil {
		return "", err
	}

	resolved, err := t.baseURL.Parse(trackURL)
	if err != nil {
		return "", fmt.Errorf("caption track url: %w", err)
	}
	timedText, err := t.get(ctx, resolved.String())
	if err != nil {
		return "", fmt.Errorf("download captions: %w", err)
	}

	text, err := joinCaptions(timedText)
	if err != nil {
		return "", err
	}

	t.logger.Debug("transcript fetched",
		zap.String("video_id", videoID),
		zap.String("language", lang),
		zap.Int("chars", len(text)))

	return text, nil
}

// pickTrack prefers a manual track in a configured language, then an
// auto-generated one in that language, then the first track listed.
func (t *TranscriptFetcher) pickTrack(player []byte) (string, string, error) {
	tracks := gjson.GetBytes(player, "captions.playerCaptionsTracklistRenderer.captionTracks").Array()
	if len(tracks) == 0 {
		return "", "", ErrTranscriptsDisabled
	}

	for _, lang := range t.languages {
		for _, wantASR := range []bool{false, true} {
			for _, tr := range tracks {
				isASR := tr.Get("kind").String() == "asr"
				if isASR == wantASR && strings.EqualFold(tr.Get("languageCode").String(), lang) {
					return tr.Get("baseUrl").String(), lang, nil
				}
			}
		}
	}

	first := tracks[0]
	if first.Get("baseUrl").String() == "" {
		return "", "", ErrTranscriptsDisabled
	}
	return first.Get("baseUrl").String(), first.Get("languageCode").String(), nil
}

func (t *TranscriptFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrVideoUnavailable
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

// playerResponse cuts the embedded player JSON object out of the watch page
func playerResponse(page []byte) ([]byte, error) {
	idx := bytes.Index(page, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, fmt.Errorf("%w: no player response in watch page", ErrVideoUnavailable)
	}

	dec := json.NewDecoder(bytes.NewReader(page[idx+len(playerResponseMarker):]))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse player response: %w", err)
	}
	return raw, nil
}

type timedText struct {
	Segments []struct {
		Start string `xml:"start,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// joinCaptions orders caption segments by start time and joins them with single spaces
func joinCaptions(data []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", fmt.Errorf("parse captions: %w", err)
	}

	type segment struct {
		start float64
		text  string
	}
	segments := make([]segment, 0, len(tt.Segments))
	for _, s := range tt.Segments {
		// Caption text is HTML-escaped a second time inside the XML
		text := CollapseWhitespace(html.UnescapeString(s.Text))
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(s.Start, 64)
		segments = append(segments, segment{start: start, text: text})
	}
	if len(segments) == 0 {
		return "", ErrEmptyTranscript
	}

	sort.SliceStable(segments, func(i, j int) bool { return segments[i].start < segments[j].start })

	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.text
	}
	return strings.Join(parts, " "), nil
}
