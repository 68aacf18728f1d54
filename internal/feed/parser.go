package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/regiq/regiq/internal/logger"
)

// Item is one parsed feed entry, format-agnostic (RSS item or Atom entry)
type Item struct {
	Title       string
	Description string
	Link        string
	Published   *time.Time // nil when the agency date was absent or unparseable
	RawDate     string     // agency-supplied date string, kept for diagnostics
	Raw         string     // best-effort serialization of the full entry
}

// Parser turns raw feed documents into items. RSS 2.0 and Atom 1.0 are
// supported; JSON feeds are detected and skipped with a warning.
type Parser struct {
	parser *gofeed.Parser
}

// NewParser creates a feed parser
func NewParser() *Parser {
	return &Parser{parser: gofeed.NewParser()}
}

// Parse extracts items from a raw feed document. Items missing both title
// and link are dropped; a malformed entry never aborts the batch.
func (p *Parser) Parse(body []byte, contentType string) ([]Item, error) {
	if looksJSON(body, contentType) {
		logger.Warn("JSON feeds are not supported, returning no items", "content_type", contentType)
		return nil, nil
	}

	parsed, err := p.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		if entry.Title == "" && entry.Link == "" {
			logger.Warn("Dropping feed item without title or link", "feed", parsed.Title)
			continue
		}

		description := entry.Description
		if description == "" {
			description = entry.Content
		}

		item := Item{
			Title:       strings.TrimSpace(entry.Title),
			Description: strings.TrimSpace(description),
			Link:        strings.TrimSpace(entry.Link),
			RawDate:     firstNonEmpty(entry.Published, entry.Updated),
		}

		if entry.PublishedParsed != nil {
			item.Published = entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.Published = entry.UpdatedParsed
		}

		if raw, err := json.Marshal(entry); err == nil {
			item.Raw = string(raw)
		}

		items = append(items, item)
	}

	return items, nil
}

// looksJSON sniffs the content type and body for a JSON feed
func looksJSON(body []byte, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return true
	}
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
