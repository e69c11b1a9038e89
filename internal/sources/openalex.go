package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/realibuddy/citecheck/internal/model"
)

const (
	// OpenAlexBaseURL is the OpenAlex works API base URL.
	OpenAlexBaseURL = "https://api.openalex.org"

	// openAlexPerPage is how many candidates one search returns.
	openAlexPerPage = 20
)

// OpenAlex is a rate-limited client for the OpenAlex works API.
type OpenAlex struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
	userAgent  string
}

// OpenAlexOption configures an OpenAlex client.
type OpenAlexOption func(*OpenAlex)

// WithOpenAlexBaseURL sets a custom base URL (for testing).
func WithOpenAlexBaseURL(u string) OpenAlexOption {
	return func(c *OpenAlex) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithOpenAlexHTTPClient sets a custom HTTP client.
func WithOpenAlexHTTPClient(hc *http.Client) OpenAlexOption {
	return func(c *OpenAlex) { c.httpClient = hc }
}

// WithOpenAlexMailto sets the polite-pool contact parameter.
func WithOpenAlexMailto(mailto string) OpenAlexOption {
	return func(c *OpenAlex) { c.mailto = mailto }
}

// WithOpenAlexRate sets the outbound requests-per-second limit.
func WithOpenAlexRate(rps float64) OpenAlexOption {
	return func(c *OpenAlex) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithOpenAlexUserAgent sets the HTTP User-Agent.
func WithOpenAlexUserAgent(ua string) OpenAlexOption {
	return func(c *OpenAlex) { c.userAgent = ua }
}

// NewOpenAlex creates a new OpenAlex adapter.
func NewOpenAlex(opts ...OpenAlexOption) *OpenAlex {
	c := &OpenAlex{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		baseURL:    OpenAlexBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Source.
func (c *OpenAlex) Name() string { return "openalex" }

// openAlexWork mirrors the fields of one OpenAlex work we consume.
type openAlexWork struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	DOI             string           `json:"doi"`
	PublicationYear int              `json:"publication_year"`
	CitedByCount    int              `json:"cited_by_count"`
	Authorships     []openAlexAuthor `json:"authorships"`
	AbstractIndex   map[string][]int `json:"abstract_inverted_index"`
	OpenAccess      struct {
		IsOA  bool   `json:"is_oa"`
		OAURL string `json:"oa_url"`
	} `json:"open_access"`
}

type openAlexAuthor struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexSearchResponse struct {
	Results []openAlexWork `json:"results"`
}

// Lookup searches OpenAlex for candidates. It issues a broad full-text
// search first and falls back to the stricter title.search filter when the
// broad query finds nothing and the title has more than two words.
func (c *OpenAlex) Lookup(ctx context.Context, q Query) ([]model.SourceRecord, error) {
	if len(q.Title) < 3 {
		return nil, nil
	}

	works, err := c.search(ctx, url.Values{"search": {q.Title}})
	if err != nil {
		return nil, err
	}

	if len(works) == 0 && len(strings.Fields(q.Title)) > 2 {
		works, err = c.search(ctx, url.Values{"filter": {"title.search:" + q.Title}})
		if err != nil {
			return nil, err
		}
	}

	records := make([]model.SourceRecord, 0, len(works))
	for _, w := range works {
		records = append(records, c.toRecord(w))
	}
	return records, nil
}

// LookupDOI resolves an exact DOI through the works/doi: endpoint.
func (c *OpenAlex) LookupDOI(ctx context.Context, doi string) (model.SourceRecord, error) {
	doi = NormalizeDOI(doi)
	if doi == "" {
		return model.NotFoundRecord(c.Name(), "empty doi"), nil
	}

	endpoint := fmt.Sprintf("%s/works/doi:%s?mailto=%s", c.baseURL, url.PathEscape(doi), url.QueryEscape(c.mailto))
	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return model.SourceRecord{}, err
	}
	if status == http.StatusNotFound {
		return model.NotFoundRecord(c.Name(), "doi not indexed"), nil
	}
	if status != http.StatusOK {
		return model.SourceRecord{}, fmt.Errorf("openalex doi lookup: status %d", status)
	}

	var work openAlexWork
	if err := json.Unmarshal(body, &work); err != nil {
		return model.SourceRecord{}, fmt.Errorf("openalex doi lookup: decode: %w", err)
	}
	return c.toRecord(work), nil
}

func (c *OpenAlex) search(ctx context.Context, params url.Values) ([]openAlexWork, error) {
	params.Set("per_page", strconv.Itoa(openAlexPerPage))
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	body, status, err := c.get(ctx, c.baseURL+"/works?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("openalex search: status %d", status)
	}

	var resp openAlexSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("openalex search: decode: %w", err)
	}
	return resp.Results, nil
}

func (c *OpenAlex) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("openalex request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *OpenAlex) toRecord(w openAlexWork) model.SourceRecord {
	authors := make([]string, 0, len(w.Authorships))
	for _, a := range w.Authorships {
		authors = append(authors, a.Author.DisplayName)
	}

	year := ""
	if w.PublicationYear > 0 {
		year = strconv.Itoa(w.PublicationYear)
	}

	return model.SourceRecord{
		Found:         true,
		Title:         w.Title,
		DOI:           NormalizeDOI(w.DOI),
		Year:          year,
		Authors:       authors,
		Abstract:      reconstructAbstract(w.AbstractIndex),
		CitationCount: w.CitedByCount,
		OpenAccessURL: w.OpenAccess.OAURL,
		OriginSource:  c.Name(),
	}
}

// reconstructAbstract rebuilds plain text from OpenAlex's inverted index,
// which maps each word to the positions it occupies in the abstract.
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type positioned struct {
		pos  int
		word string
	}
	var words []positioned
	for word, positions := range index {
		for _, pos := range positions {
			words = append(words, positioned{pos: pos, word: word})
		}
	}
	sort.Slice(words, func(i, j int) bool { return words[i].pos < words[j].pos })

	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.word
	}
	return strings.Join(parts, " ")
}
