package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fetchBody = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"

func TestFetchOne(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(fetchBody))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	res, err := f.FetchOne(context.Background(), Source{ID: "work", URL: srv.URL})
	require.NoError(t, err)

	assert.Equal(t, []byte(fetchBody), res.Body)
	assert.False(t, res.FromCache)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchOneConditionalRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(fetchBody))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "work", URL: srv.URL}

	first, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, second.FromCache, "304 must be served from the disk cache")
	assert.Equal(t, first.Body, second.Body)
}

func TestFetchOneStaleFallback(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(fetchBody))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "work", URL: srv.URL}

	_, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)

	fail.Store(true)
	res, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err, "server errors fall back to the cached body")
	assert.True(t, res.FromCache)
	assert.Equal(t, []byte(fetchBody), res.Body)
}

func TestFetchOneFailsWithoutCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	_, err := f.FetchOne(context.Background(), Source{ID: "work", URL: srv.URL})
	assert.Error(t, err)
}

func TestFetchOneRejectsEmptyURL(t *testing.T) {
	f := NewFetcher(t.TempDir())
	_, err := f.FetchOne(context.Background(), Source{ID: "work"})
	assert.Error(t, err)
}

func TestFetchAllCollectsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(fetchBody))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	results, errs := f.FetchAll(context.Background(), []Source{
		{ID: "good", URL: srv.URL},
		{ID: "bad", URL: ""},
	})

	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Source.ID)
	assert.Len(t, errs, 1)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)",
		redactURL("https://example.com/private/abc123/basic.ics"))
	assert.Equal(t, "ics://...(redacted)", redactURL("no scheme at all"))
}

func TestCachePathIsStable(t *testing.T) {
	f := NewFetcher("/tmp/cache")
	a := f.cachePathForURL("https://example.com/a.ics")
	b := f.cachePathForURL("https://example.com/b.ics")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, f.cachePathForURL("https://example.com/a.ics"))
}
