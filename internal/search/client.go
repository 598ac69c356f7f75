// Package search wraps the Naver web-search API used to ground answers
// about live conditions: weather, festivals, closures, hours.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

var searchTracer = otel.Tracer("chatpi.internal.search.naver")

const naverEndpoint = "https://openapi.naver.com/v1/search/webkr.json"

// maxResults is the Naver display ceiling we allow per query.
const maxResults = 5

// Result is one web search hit with provider markup stripped.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Client calls the Naver openapi web search. A client without
// credentials is valid and yields empty results silently, so callers
// never branch on configuration.
type Client struct {
	clientID     string
	clientSecret string
	endpoint     string
	httpClient   *http.Client
	logger       *logging.Logger
}

// NewClient builds a search client. Timeout bounds each query.
func NewClient(clientID, clientSecret string, timeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		endpoint:     naverEndpoint,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// Search returns up to max results for the query. Every failure mode
// logs and returns nil; search is strictly best-effort.
func (c *Client) Search(ctx context.Context, query string, max int) []Result {
	ctx, span := searchTracer.Start(ctx, "search.naver.webkr")
	defer span.End()
	span.SetAttributes(attribute.Int("chatpi.search.max", max))

	if !c.Enabled() {
		c.logger.Warn("naver search skipped, missing client credentials")
		return nil
	}
	if max < 1 {
		max = 1
	}
	if max > maxResults {
		max = maxResults
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(max))
	params.Set("start", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		c.logger.Error("naver search request build failed", "error", err)
		return nil
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "jeju-chatpi/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Warn("naver search failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("search: naver returned status %d", resp.StatusCode)
		span.RecordError(err)
		c.logger.Warn("naver search non-200", "status", resp.StatusCode)
		return nil
	}

	var parsed struct {
		Items []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Link        string `json:"link"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		span.RecordError(err)
		c.logger.Warn("naver search decode failed", "error", err)
		return nil
	}

	out := make([]Result, 0, max)
	for _, it := range parsed.Items {
		out = append(out, Result{
			Title:   cleanMarkup(it.Title),
			Snippet: cleanMarkup(it.Description),
			Link:    it.Link,
		})
		if len(out) == max {
			break
		}
	}
	if len(out) == 0 {
		c.logger.Info("naver search returned no items", "query", query)
	}
	return out
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// cleanMarkup drops the <b> highlight tags and entities Naver embeds in
// titles and descriptions.
func cleanMarkup(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}

// FormatContext renders results as a numbered context block for the LLM
// prompt. Empty results yield "".
func FormatContext(results []Result) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s\n%s\n%s", i+1, r.Title, r.Snippet, r.Link)
	}
	return b.String()
}

// Links extracts just the result URLs, in order.
func Links(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Link)
	}
	return out
}
