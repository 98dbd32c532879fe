package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/verifact/internal/model"
	"github.com/ppiankov/verifact/internal/util"
	"github.com/ppiankov/verifact/internal/validate"
)

// SearchFetcher queries the Serper web search API. It only exists when a
// search credential is configured.
type SearchFetcher struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	numResults int
	country    string
	language   string
	authority  *validate.AuthorityClassifier
	logger     *zap.Logger
}

// NewSearchFetcher creates the web search tool. It fails when the API key is
// missing or the endpoint is not an absolute URL.
func NewSearchFetcher(cfg model.SearchConfig, httpCfg model.HTTPConfig, transport http.RoundTripper, authority *validate.AuthorityClassifier, logger *zap.Logger) (*SearchFetcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("search API key is not configured")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://google.serper.dev/search"
	}
	if u, err := url.Parse(endpoint); err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid search endpoint %q", endpoint)
	}
	if transport == nil {
		transport = util.NewTransport(httpCfg)
	}
	if authority == nil {
		authority = validate.NewAuthorityClassifier(nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := httpCfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	num := cfg.NumResults
	if num <= 0 {
		num = 8
	}

	return &SearchFetcher{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
		numResults: num,
		country:    cfg.Country,
		language:   cfg.Language,
		authority:  authority,
		logger:     logger.With(zap.String("tool", string(model.ToolWebSearch))),
	}, nil
}

// Spec describes the tool
func (s *SearchFetcher) Spec() Spec {
	return Spec{
		ID:          model.ToolWebSearch,
		Name:        "Search the internet with Serper",
		Description: "Search the internet for a query and return ranked results with snippets and source authority",
		Argument:    "search_query",
		ArgumentDoc: "Mandatory search query you want to use to search the internet",
	}
}

type serperRequest struct {
	Query    string `json:"q"`
	Num      int    `json:"num,omitempty"`
	Country  string `json:"gl,omitempty"`
	Language string `json:"hl,omitempty"`
}

type serperResponse struct {
	AnswerBox *struct {
		Title   string `json:"title"`
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
	} `json:"answerBox"`
	KnowledgeGraph *struct {
		Title       string `json:"title"`
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"knowledgeGraph"`
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Date     string `json:"date"`
		Position int    `json:"position"`
	} `json:"organic"`
}

// Invoke runs the query and renders ranked results as text
func (s *SearchFetcher) Invoke(ctx context.Context, reference string) Result {
	query := strings.TrimSpace(reference)
	if query == "" {
		return Fail(model.ToolWebSearch, "Error searching the web: empty query")
	}

	resp, err := s.search(ctx, query)
	if err != nil {
		s.logger.Debug("search failed", zap.String("query", query), zap.Error(err))
		return Fail(model.ToolWebSearch, fmt.Sprintf("Error searching the web for %q: %v", query, err))
	}

	hits := make([]model.SearchHit, 0, len(resp.Organic))
	for i, o := range resp.Organic {
		pos := o.Position
		if pos == 0 {
			pos = i + 1
		}
		hits = append(hits, model.SearchHit{
			Position: pos,
			Title:    o.Title,
			Link:     o.Link,
			Snippet:  o.Snippet,
			Date:     o.Date,
		})
	}
	counts := s.authority.Annotate(hits)

	s.logger.Debug("search completed",
		zap.String("query", query),
		zap.Int("results", len(hits)),
		zap.Int("primary", counts[model.TierPrimary]))

	return Ok(model.ToolWebSearch, formatSearch(query, resp, hits))
}

func (s *SearchFetcher) search(ctx context.Context, query string) (*serperResponse, error) {
	payload, err := json.Marshal(serperRequest{
		Query:    query,
		Num:      s.numResults,
		Country:  s.country,
		Language: s.language,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search API returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out serperResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func formatSearch(query string, resp *serperResponse, hits []model.SearchHit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n", query)

	if ab := resp.AnswerBox; ab != nil {
		answer := ab.Answer
		if answer == "" {
			answer = ab.Snippet
		}
		if answer != "" {
			fmt.Fprintf(&b, "\nAnswer: %s\n", answer)
		}
	}
	if kg := resp.KnowledgeGraph; kg != nil && kg.Title != "" {
		fmt.Fprintf(&b, "\nKnowledge graph: %s", kg.Title)
		if kg.Type != "" {
			fmt.Fprintf(&b, " (%s)", kg.Type)
		}
		if kg.Description != "" {
			fmt.Fprintf(&b, ": %s", kg.Description)
		}
		b.WriteByte('\n')
	}

	if len(hits) == 0 {
		b.WriteString("\nNo results found.\n")
		return b.String()
	}

	for _, h := range hits {
		fmt.Fprintf(&b, "\n%d. %s [%s source]\n   %s\n", h.Position, h.Title, h.Authority, h.Link)
		if h.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", h.Snippet)
		}
		if h.Date != "" {
			fmt.Fprintf(&b, "   Published: %s\n", h.Date)
		}
	}
	return b.String()
}
