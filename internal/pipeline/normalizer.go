package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/regiq/regiq/config"
	"github.com/regiq/regiq/internal/classifier"
	"github.com/regiq/regiq/internal/feed"
	"github.com/regiq/regiq/internal/models"
	"github.com/regiq/regiq/internal/region"
	"github.com/regiq/regiq/pkg/utils"
)

// summaryMaxLen caps stored summaries; longer text is cut to exactly this
// length including the ellipsis marker.
const summaryMaxLen = 500

// dedupBucket is the window width used to bucket published dates into the
// store-level uniqueness key. It matches the duplicate-suppression window.
const dedupBucket = 7 * 24 * time.Hour

// Normalizer maps a filtered feed item plus its feed configuration into a
// canonical Alert record, including urgency classification.
type Normalizer struct {
	classifier *classifier.Classifier
	now        func() time.Time
}

// NewNormalizer creates a normalizer
func NewNormalizer(c *classifier.Classifier) *Normalizer {
	return &Normalizer{classifier: c, now: time.Now}
}

// Normalize builds one Alert from a feed item. An absent or unparseable
// publish date falls back to the current time and sets DateSuspect so the
// substitution stays visible downstream.
func (n *Normalizer) Normalize(item feed.Item, fc config.FeedConfig) models.Alert {
	published := n.now().UTC()
	suspect := true
	if item.Published != nil {
		published = item.Published.UTC()
		suspect = false
	}

	summary := item.Description
	if summary == "" {
		summary = item.Title
	}
	summary = utils.Truncate(summary, summaryMaxLen)

	return models.Alert{
		ID:            utils.HashString(item.Link + item.Title + published.Format(time.RFC3339)),
		DedupKey:      DedupKey(item.Title, fc.Source, published),
		Title:         item.Title,
		Source:        fc.Source,
		Urgency:       n.classifier.Urgency(item.Title, item.Description, fc.DefaultUrgency),
		Summary:       summary,
		PublishedDate: published,
		ExternalURL:   item.Link,
		FullContent:   item.Raw,
		Agency:        fc.Agency,
		Region:        region.Detect(item.Title, item.Description),
		Category:      fc.Category,
		DateSuspect:   suspect,
	}
}

// DedupKey derives the store-level uniqueness key: normalized title plus
// source plus the 7-day bucket the published date falls into. Concurrent
// writers racing the pre-insert check collide on this key instead of
// producing duplicates.
func DedupKey(title, source string, published time.Time) string {
	bucket := published.Unix() / int64(dedupBucket.Seconds())
	return utils.HashString(fmt.Sprintf("%s|%s|%d", strings.ToLower(strings.TrimSpace(title)), source, bucket))
}
