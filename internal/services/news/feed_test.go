package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>AgriNews</title>
    <item>
      <title>Monsoon outlook improves</title>
      <link>https://example.org/monsoon</link>
      <guid>mon-1</guid>
      <description>IMD revises rainfall estimate upward.</description>
      <pubDate>Sun, 23 Aug 2026 08:30:00 +0530</pubDate>
    </item>
    <item>
      <title>No link item</title>
      <guid>bad-1</guid>
    </item>
  </channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Farm Updates</title>
  <entry>
    <title>New paddy subsidy announced</title>
    <id>urn:entry:paddy-1</id>
    <updated>2026-08-22T10:00:00Z</updated>
    <summary>State widens the procurement subsidy.</summary>
    <link rel="alternate" href="https://example.org/paddy"/>
  </entry>
</feed>`

func TestParseFeedRSS(t *testing.T) {
	articles, err := ParseFeed([]byte(sampleRSS), "AgriNews", "weather")
	require.NoError(t, err)
	require.Len(t, articles, 1, "items without a link are dropped")

	a := articles[0]
	assert.Equal(t, "Monsoon outlook improves", a.Title)
	assert.Equal(t, "https://example.org/monsoon", a.Link)
	assert.Equal(t, "AgriNews", a.Source)
	assert.Equal(t, "weather", a.Category)
	assert.Equal(t, time.Date(2026, 8, 23, 3, 0, 0, 0, time.UTC), a.PublishedAt)
	assert.Len(t, a.ID, 32)
}

func TestParseFeedAtom(t *testing.T) {
	articles, err := ParseFeed([]byte(sampleAtom), "FarmUpdates", "policy")
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "New paddy subsidy announced", articles[0].Title)
	assert.Equal(t, "https://example.org/paddy", articles[0].Link)
}

func TestParseFeedUnrecognized(t *testing.T) {
	_, err := ParseFeed([]byte("not xml at all"), "x", "y")
	assert.Error(t, err)

	_, err = ParseFeed([]byte("   "), "x", "y")
	assert.Error(t, err)
}

func TestArticleIDStable(t *testing.T) {
	a := articleID("guid-1", "https://example.org/a")
	b := articleID("guid-1", "https://example.org/other")
	assert.Equal(t, a, b, "GUID wins over link")
	assert.NotEqual(t, a, articleID("", "https://example.org/a"))
}
