package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadFeeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
feeds:
  - name: AgriNews
    url: https://example.org/rss
    category: weather
  - name: FarmUpdates
    url: https://example.org/atom
    category: policy
`), 0o644))

	feeds, err := LoadFeeds(path)
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, "AgriNews", feeds[0].Name)
	assert.Equal(t, "policy", feeds[1].Category)
}

func TestLoadFeedsRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - name: NoURL\n"), 0o644))

	_, err := LoadFeeds(path)
	assert.Error(t, err)
}

func TestFetchAllStoresAndDedupes(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer ts.Close()

	store := newTestStore(t)
	f := NewFetcher([]FeedSource{{Name: "AgriNews", URL: ts.URL, Category: "weather"}}, store, zap.NewNop())

	ctx := context.Background()
	f.FetchAll(ctx)
	f.FetchAll(ctx) // second pass sees only known IDs

	assert.Equal(t, int32(2), hits.Load())
	articles, err := store.Latest(ctx, 10, "")
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestFetchOnePermanentOn4xx(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "gone", http.StatusGone)
	}))
	defer ts.Close()

	store := newTestStore(t)
	f := NewFetcher(nil, store, zap.NewNop())

	_, err := f.fetchOne(context.Background(), FeedSource{Name: "Dead", URL: ts.URL})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
