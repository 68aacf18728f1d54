package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse_RSS(t *testing.T) {
	rssContent := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>FDA Recalls</title>
	<link>https://example.gov</link>
	<description>Recall feed</description>
	<item>
		<title>Test Recall Alert</title>
		<link>https://example.gov/x</link>
		<description>Salmonella found in packaged &amp; frozen shrimp</description>
		<pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate>
	</item>
	<item>
		<title>Advisory Without Date</title>
		<link>https://example.gov/y</link>
		<description>Undated advisory</description>
	</item>
</channel>
</rss>`

	parser := NewParser()
	items, err := parser.Parse([]byte(rssContent), "application/rss+xml")
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Test Recall Alert", first.Title)
	assert.Equal(t, "https://example.gov/x", first.Link)
	assert.Equal(t, "Salmonella found in packaged & frozen shrimp", first.Description)
	require.NotNil(t, first.Published)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Published.UTC())
	assert.NotEmpty(t, first.Raw)

	second := items[1]
	assert.Nil(t, second.Published, "undated item keeps nil published time")
	assert.Empty(t, second.RawDate)
}

func TestParser_Parse_Atom(t *testing.T) {
	atomContent := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>EPA Enforcement</title>
	<link href="https://example.gov"/>
	<entry>
		<title>Water Contamination Enforcement</title>
		<link href="https://example.gov/entry1"/>
		<summary>Enforcement action over contaminated water supply</summary>
		<updated>2024-02-15T10:30:00Z</updated>
		<id>entry-1</id>
	</entry>
</feed>`

	parser := NewParser()
	items, err := parser.Parse([]byte(atomContent), "application/atom+xml")
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "Water Contamination Enforcement", item.Title)
	assert.Equal(t, "https://example.gov/entry1", item.Link)
	assert.Equal(t, "Enforcement action over contaminated water supply", item.Description)
	require.NotNil(t, item.Published)
	assert.Equal(t, time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC), item.Published.UTC())
}

func TestParser_Parse_JSONDetectedButUnsupported(t *testing.T) {
	parser := NewParser()

	items, err := parser.Parse([]byte(`{"version":"https://jsonfeed.org/version/1","items":[]}`), "application/feed+json")
	require.NoError(t, err)
	assert.Empty(t, items)

	// body sniffing without content type
	items, err = parser.Parse([]byte("  \n{\"items\":[]}"), "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParser_Parse_DropsItemsWithoutTitleAndLink(t *testing.T) {
	rssContent := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Sparse Feed</title>
	<item>
		<description>No title, no link</description>
	</item>
	<item>
		<title>Kept: has title only</title>
	</item>
</channel>
</rss>`

	parser := NewParser()
	items, err := parser.Parse([]byte(rssContent), "text/xml")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Kept: has title only", items[0].Title)
}

func TestParser_Parse_Malformed(t *testing.T) {
	parser := NewParser()
	_, err := parser.Parse([]byte("not a feed at all"), "text/plain")
	assert.Error(t, err)
}
