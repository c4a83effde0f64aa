package scraper

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDoesNotFollowRedirects(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/moved" {
			http.Redirect(w, r, "/target", http.StatusFound)
			return
		}
		w.Write([]byte("target"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(3*time.Second, "TestAgent/1.0")
	page, err := client.Fetch(context.Background(), server.URL+"/moved")
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, page.StatusCode)
	assert.False(t, page.OK())
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchSendsUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.UserAgent()))
	}))
	t.Cleanup(server.Close)

	client := NewClient(0, "TestAgent/1.0")
	page, err := client.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, page.OK())
	assert.Equal(t, "TestAgent/1.0", string(page.Body))
}

func TestDownload(t *testing.T) {
	img := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(img)
	}))
	t.Cleanup(server.Close)

	client := NewClient(3*time.Second, "TestAgent/1.0")

	var buf bytes.Buffer
	n, err := client.Download(context.Background(), server.URL+"/ok.jpg", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(img)), n)
	assert.Equal(t, img, buf.Bytes())

	buf.Reset()
	_, err = client.Download(context.Background(), server.URL+"/missing.jpg", &buf)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestPageURL(t *testing.T) {
	const source = "https://imgflip.com/meme/But-Thats-None-Of-My-Business?sort=top-365d"

	got, err := PageURL(source, 1)
	require.NoError(t, err)
	assert.Equal(t, source, got)

	got, err = PageURL(source, 3)
	require.NoError(t, err)
	assert.Equal(t, "https://imgflip.com/meme/But-Thats-None-Of-My-Business?page=3&sort=top-365d", got)

	got, err = PageURL("https://imgflip.com/meme/Drake-Hotline-Bling", 2)
	require.NoError(t, err)
	assert.Equal(t, "https://imgflip.com/meme/Drake-Hotline-Bling?page=2", got)
}

func TestSleepCtx(t *testing.T) {
	assert.NoError(t, sleepCtx(context.Background(), 0))
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, sleepCtx(ctx, time.Minute), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
