package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tmc/langchaingo/tools"
)

const defaultSearchBaseURL = "https://html.duckduckgo.com/html/"

// WebSearchTool searches the web through the DuckDuckGo HTML endpoint,
// which requires no API key.
type WebSearchTool struct {
	client     *http.Client
	baseURL    string
	maxResults int
	sanitizer  *bluemonday.Policy
}

var _ tools.Tool = (*WebSearchTool)(nil)

// WebSearchOptions configures the search tool.
type WebSearchOptions struct {
	Client     *http.Client
	BaseURL    string // Default DuckDuckGo HTML endpoint
	MaxResults int    // Default 5
}

// NewWebSearchTool creates a web search tool.
func NewWebSearchTool(opts WebSearchOptions) *WebSearchTool {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultSearchBaseURL
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	return &WebSearchTool{
		client:     client,
		baseURL:    baseURL,
		maxResults: maxResults,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the web for current information. Input is the search query."
}

// Call runs the search and returns a plain-text digest of the top
// results.
func (t *WebSearchTool) Call(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", fmt.Errorf("search query is empty")
	}

	searchURL := fmt.Sprintf("%s?q=%s", t.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse search results: %w", err)
	}

	var sb strings.Builder
	count := 0
	doc.Find(".result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find(".result__title").Text())
		snippet := strings.TrimSpace(s.Find(".result__snippet").Text())
		link, _ := s.Find(".result__title a").Attr("href")
		if title == "" {
			return true
		}

		title = t.sanitizer.Sanitize(title)
		snippet = t.sanitizer.Sanitize(snippet)

		count++
		fmt.Fprintf(&sb, "%d. %s\n", count, title)
		if link != "" {
			fmt.Fprintf(&sb, "   %s\n", link)
		}
		if snippet != "" {
			fmt.Fprintf(&sb, "   %s\n", snippet)
		}
		sb.WriteString("\n")

		return count < t.maxResults
	})

	if count == 0 {
		return "No results found for: " + query, nil
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
