// Package news aggregates agricultural headlines from RSS and Atom
// feeds into a local SQLite store.
package news

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/agri-ai/portal/internal/model"
)

type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	ID      string `xml:"id"`
	Updated string `xml:"updated"`
	Summary string `xml:"summary"`
	Links   []struct {
		Rel  string `xml:"rel,attr"`
		Href string `xml:"href,attr"`
	} `xml:"link"`
}

// articleID is stable across re-fetches: GUID when present, link otherwise.
func articleID(guid, link string) string {
	key := guid
	if key == "" {
		key = link
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// ParseFeed decodes an RSS 2.0 or Atom document into articles tagged
// with the given source name and category. Items without a link are
// skipped. Unparseable dates fall back to now so ordering stays sane.
func ParseFeed(data []byte, source, category string) ([]model.Article, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty feed body")
	}

	var rss rssFeed
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		out := make([]model.Article, 0, len(rss.Channel.Items))
		for _, it := range rss.Channel.Items {
			link := strings.TrimSpace(it.Link)
			if link == "" {
				continue
			}
			pub := parsePubDate(it.PubDate)
			if pub.IsZero() {
				pub = time.Now().UTC()
			}
			out = append(out, model.Article{
				ID:          articleID(it.GUID, link),
				Title:       strings.TrimSpace(it.Title),
				Link:        link,
				Source:      source,
				Category:    category,
				Summary:     strings.TrimSpace(it.Description),
				PublishedAt: pub,
			})
		}
		return out, nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(data, &atom); err == nil && len(atom.Entries) > 0 {
		out := make([]model.Article, 0, len(atom.Entries))
		for _, e := range atom.Entries {
			link := ""
			for _, l := range e.Links {
				if l.Rel == "" || l.Rel == "alternate" {
					link = l.Href
					break
				}
			}
			if link == "" {
				continue
			}
			pub := parsePubDate(e.Updated)
			if pub.IsZero() {
				pub = time.Now().UTC()
			}
			out = append(out, model.Article{
				ID:          articleID(e.ID, link),
				Title:       strings.TrimSpace(e.Title),
				Link:        link,
				Source:      source,
				Category:    category,
				Summary:     strings.TrimSpace(e.Summary),
				PublishedAt: pub,
			})
		}
		return out, nil
	}

	return nil, fmt.Errorf("unrecognized feed format for %s", source)
}
