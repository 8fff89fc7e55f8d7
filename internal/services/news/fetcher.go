package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/agri-ai/portal/pkg/dedup"
)

// FeedSource is one entry of the feeds YAML config.
type FeedSource struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

type feedsFile struct {
	Feeds []FeedSource `yaml:"feeds"`
}

// LoadFeeds reads the feed list from a YAML file.
func LoadFeeds(path string) ([]FeedSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds config: %w", err)
	}
	var f feedsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse feeds config: %w", err)
	}
	if len(f.Feeds) == 0 {
		return nil, fmt.Errorf("no feeds configured in %s", path)
	}
	for i, src := range f.Feeds {
		if src.Name == "" || src.URL == "" {
			return nil, fmt.Errorf("feed %d missing name or url", i)
		}
	}
	return f.Feeds, nil
}

// Fetcher polls the configured feeds and upserts new articles.
type Fetcher struct {
	sources []FeedSource
	store   *Store
	hc      *http.Client
	seen    *dedup.Deduper
	log     *zap.Logger
}

func NewFetcher(sources []FeedSource, store *Store, log *zap.Logger) *Fetcher {
	return &Fetcher{
		sources: sources,
		store:   store,
		hc:      &http.Client{Timeout: 20 * time.Second},
		seen:    dedup.New(24*time.Hour, 10000),
		log:     log,
	}
}

func (f *Fetcher) fetchOne(ctx context.Context, src FeedSource) (int, error) {
	var body []byte
	op := func() error {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
		req.Header.Set("User-Agent", "agri-ai-portal/1.0")
		resp, err := f.hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			err := fmt.Errorf("feed %s status %d", src.Name, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 3), ctx)); err != nil {
		return 0, err
	}

	articles, err := ParseFeed(body, src.Name, src.Category)
	if err != nil {
		return 0, err
	}

	// skip articles already stored this cycle window
	fresh := articles[:0]
	for _, a := range articles {
		if f.seen.ShouldProcess(a.ID) {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	return f.store.UpsertArticles(ctx, fresh)
}

// FetchAll runs one polling pass over every source.
func (f *Fetcher) FetchAll(ctx context.Context) {
	for _, src := range f.sources {
		n, err := f.fetchOne(ctx, src)
		if err != nil {
			f.log.Warn("feed fetch failed", zap.String("feed", src.Name), zap.Error(err))
			continue
		}
		if n > 0 {
			f.log.Info("articles stored", zap.String("feed", src.Name), zap.Int("new", n))
		}
	}
}

// Run polls on the given interval until the context ends, pruning old
// rows once per pass.
func (f *Fetcher) Run(ctx context.Context, every time.Duration, keepDays int) {
	f.FetchAll(ctx)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.FetchAll(ctx)
			if n, err := f.store.Prune(ctx, keepDays); err != nil {
				f.log.Warn("prune failed", zap.Error(err))
			} else if n > 0 {
				f.log.Info("old articles pruned", zap.Int64("removed", n))
			}
		}
	}
}
