// Package research scrapes current-events context for joke topics from RSS
// feeds. Everything here is best effort: a failed feed, a failed fetch or an
// empty result all degrade to "no context", never to an error at the call
// site.
package research

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

const (
	maxPerFeed    = 20
	maxSnippets   = 3
	snippetLength = 160
	cacheTTL      = time.Hour
)

// Feed is one RSS/Atom source.
type Feed struct {
	URL  string
	Name string
}

// Scanner finds topic-relevant snippets across configured feeds. Results are
// cached per topic for an hour so a full show does not hammer the feeds.
type Scanner struct {
	feeds     []Feed
	parser    *gofeed.Parser
	client    *http.Client
	fetchPage bool

	mu    sync.Mutex
	cache map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	context string
	at      time.Time
}

// NewScanner creates a feed scanner. With fetchPage set the scanner also
// pulls the top matching article and extracts its text for extra context.
func NewScanner(feeds []Feed, fetchPage bool) *Scanner {
	return &Scanner{
		feeds:     feeds,
		parser:    gofeed.NewParser(),
		client:    &http.Client{Timeout: 15 * time.Second},
		fetchPage: fetchPage,
		cache:     make(map[string]cacheEntry),
		now:       time.Now,
	}
}

// TopicContext returns a short current-events digest for the topic, or ""
// when nothing relevant is found.
func (s *Scanner) TopicContext(ctx context.Context, topic string) string {
	key := strings.ToLower(strings.TrimSpace(topic))
	if key == "" {
		return ""
	}

	s.mu.Lock()
	if entry, ok := s.cache[key]; ok && s.now().Sub(entry.at) < cacheTTL {
		s.mu.Unlock()
		return entry.context
	}
	s.mu.Unlock()

	digest := s.scan(ctx, key)

	s.mu.Lock()
	s.cache[key] = cacheEntry{context: digest, at: s.now()}
	s.mu.Unlock()
	return digest
}

type match struct {
	title string
	body  string
	link  string
}

func (s *Scanner) scan(ctx context.Context, topic string) string {
	var matches []match
	for _, feed := range s.feeds {
		parsed, err := s.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", feed.URL, err)
			continue
		}
		for i, item := range parsed.Items {
			if i >= maxPerFeed || len(matches) >= maxSnippets {
				break
			}
			if m, ok := matchItem(item, topic); ok {
				matches = append(matches, m)
			}
		}
		if len(matches) >= maxSnippets {
			break
		}
	}
	if len(matches) == 0 {
		return ""
	}

	var snippets []string
	for _, m := range matches {
		snippets = append(snippets, snippet(m))
	}

	if s.fetchPage {
		if text := s.fetchArticle(ctx, matches[0].link); text != "" {
			snippets = append(snippets, truncate(text, snippetLength))
		}
	}

	return strings.Join(snippets, " | ")
}

func matchItem(item *gofeed.Item, topic string) (match, bool) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return match{}, false
	}

	body := item.Description
	if body == "" {
		body = item.Content
	}
	body = stripHTML(body)

	haystack := strings.ToLower(title + " " + body)
	for _, word := range strings.Fields(topic) {
		if !strings.Contains(haystack, word) {
			return match{}, false
		}
	}
	return match{title: title, body: body, link: item.Link}, true
}

func snippet(m match) string {
	if m.body == "" {
		return m.title
	}
	return m.title + ": " + truncate(m.body, snippetLength)
}

// fetchArticle pulls one page and extracts the readable text. Any failure
// returns "".
func (s *Scanner) fetchArticle(ctx context.Context, articleURL string) string {
	if articleURL == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "comedyclub/1.0 (topic research)")

	resp, err := s.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return ""
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return ""
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > 100 {
		return text
	}
	return ""
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndex(cut, " "); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}

func stripHTML(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := result.String()
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
