package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/realibuddy/citecheck/internal/model"
)

const (
	// SemanticScholarBaseURL is the Graph API base URL.
	SemanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1"

	// s2SearchLimit caps candidates per search.
	s2SearchLimit = 5

	// s2PaperFields are the fields requested for every paper.
	s2PaperFields = "title,authors,year,abstract,openAccessPdf,citationCount,url,externalIds"
)

// SemanticScholar is a rate-limited client for the Semantic Scholar Graph API.
type SemanticScholar struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	userAgent  string
}

// S2Option configures a SemanticScholar client.
type S2Option func(*SemanticScholar)

// WithS2BaseURL sets a custom base URL (for testing).
func WithS2BaseURL(u string) S2Option {
	return func(c *SemanticScholar) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithS2HTTPClient sets a custom HTTP client.
func WithS2HTTPClient(hc *http.Client) S2Option {
	return func(c *SemanticScholar) { c.httpClient = hc }
}

// WithS2APIKey sets the API key for raised rate limits.
func WithS2APIKey(key string) S2Option {
	return func(c *SemanticScholar) { c.apiKey = key }
}

// WithS2Rate sets the outbound requests-per-second limit.
func WithS2Rate(rps float64) S2Option {
	return func(c *SemanticScholar) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithS2UserAgent sets the HTTP User-Agent.
func WithS2UserAgent(ua string) S2Option {
	return func(c *SemanticScholar) { c.userAgent = ua }
}

// NewSemanticScholar creates a new Semantic Scholar adapter.
func NewSemanticScholar(opts ...S2Option) *SemanticScholar {
	c := &SemanticScholar{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		baseURL:    SemanticScholarBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Source.
func (c *SemanticScholar) Name() string { return "semanticscholar" }

type s2Paper struct {
	PaperID       string     `json:"paperId"`
	Title         string     `json:"title"`
	Year          int        `json:"year"`
	Abstract      string     `json:"abstract"`
	CitationCount int        `json:"citationCount"`
	URL           string     `json:"url"`
	Authors       []s2Author `json:"authors"`
	OpenAccessPdf *struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
	ExternalIDs struct {
		DOI string `json:"DOI"`
	} `json:"externalIds"`
}

type s2Author struct {
	Name string `json:"name"`
}

type s2SearchResponse struct {
	Data []s2Paper `json:"data"`
}

// Lookup searches the Graph API paper search endpoint.
func (c *SemanticScholar) Lookup(ctx context.Context, q Query) ([]model.SourceRecord, error) {
	if len(q.Title) < 3 {
		return nil, nil
	}

	params := url.Values{
		"query":  {q.Title},
		"limit":  {strconv.Itoa(s2SearchLimit)},
		"fields": {s2PaperFields},
	}

	body, status, err := c.get(ctx, c.baseURL+"/paper/search?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("semantic scholar search: status %d", status)
	}

	var resp s2SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("semantic scholar search: decode: %w", err)
	}

	records := make([]model.SourceRecord, 0, len(resp.Data))
	for _, p := range resp.Data {
		records = append(records, c.toRecord(p))
	}
	return records, nil
}

// LookupDOI resolves an exact DOI through the paper/DOI: endpoint.
func (c *SemanticScholar) LookupDOI(ctx context.Context, doi string) (model.SourceRecord, error) {
	doi = NormalizeDOI(doi)
	if doi == "" {
		return model.NotFoundRecord(c.Name(), "empty doi"), nil
	}

	endpoint := fmt.Sprintf("%s/paper/DOI:%s?fields=%s", c.baseURL, url.PathEscape(doi), url.QueryEscape(s2PaperFields))
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return model.SourceRecord{}, err
	}
	if status == http.StatusNotFound {
		return model.NotFoundRecord(c.Name(), "doi not indexed"), nil
	}
	if status != http.StatusOK {
		return model.SourceRecord{}, fmt.Errorf("semantic scholar doi lookup: status %d", status)
	}

	var paper s2Paper
	if err := json.Unmarshal(body, &paper); err != nil {
		return model.SourceRecord{}, fmt.Errorf("semantic scholar doi lookup: decode: %w", err)
	}
	return c.toRecord(paper), nil
}

func (c *SemanticScholar) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("semantic scholar request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *SemanticScholar) toRecord(p s2Paper) model.SourceRecord {
	authors := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		authors = append(authors, a.Name)
	}

	year := ""
	if p.Year > 0 {
		year = strconv.Itoa(p.Year)
	}

	oaURL := p.URL
	if p.OpenAccessPdf != nil && p.OpenAccessPdf.URL != "" {
		oaURL = p.OpenAccessPdf.URL
	}

	return model.SourceRecord{
		Found:         true,
		Title:         p.Title,
		DOI:           NormalizeDOI(p.ExternalIDs.DOI),
		Year:          year,
		Authors:       authors,
		Abstract:      p.Abstract,
		CitationCount: p.CitationCount,
		OpenAccessURL: oaURL,
		OriginSource:  c.Name(),
	}
}
