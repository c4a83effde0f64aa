package output

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l-stahlhut/meme-crawler/internal/scraper"
)

func imageServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if strings.HasPrefix(r.URL.Path, "/broken/") {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg:" + r.URL.Path))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestSaveImages(t *testing.T) {
	server, hits := imageServer(t)
	host := strings.TrimPrefix(server.URL, "http://")
	memes := []scraper.MemeRecord{
		{Author: "a", Views: "1", URL: strPtr(host + "/8h3k2a.jpg")},
		{Author: "b", Views: "2"},
		{Author: "c", Views: "3", URL: strPtr(host + "/nested/path/7g2j1b.png")},
		{Author: "d", Views: "4", URL: strPtr(host + "/broken/6f1i0c.jpg")},
	}

	saver := &ImageSaver{
		Client: scraper.NewClient(3*time.Second, "TestAgent/1.0"),
		Dir:    t.TempDir(),
		Scheme: "http",
	}
	report, err := saver.SaveImages(context.Background(), "drake", memes)
	require.NoError(t, err)

	assert.Equal(t, ImageDir(saver.Dir, "drake"), report.Dir)
	assert.Equal(t, 2, report.Saved)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, int32(3), hits.Load())

	b, err := os.ReadFile(filepath.Join(report.Dir, "8h3k2a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg:/8h3k2a.jpg", string(b))

	b, err = os.ReadFile(filepath.Join(report.Dir, "7g2j1b.png"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg:/nested/path/7g2j1b.png", string(b))

	_, err = os.Stat(filepath.Join(report.Dir, "6f1i0c.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveImagesExistingDir(t *testing.T) {
	server, hits := imageServer(t)
	host := strings.TrimPrefix(server.URL, "http://")

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(ImageDir(dir, "drake"), 0o755))

	saver := &ImageSaver{
		Client: scraper.NewClient(3*time.Second, "TestAgent/1.0"),
		Dir:    dir,
		Scheme: "http",
	}
	report, err := saver.SaveImages(context.Background(), "drake", []scraper.MemeRecord{
		{Author: "a", Views: "1", URL: strPtr(host + "/8h3k2a.jpg")},
	})
	assert.True(t, errors.Is(err, ErrOutputExists))
	assert.Zero(t, report.Saved)
	assert.Zero(t, hits.Load())
}

type fakeDownloader struct {
	urls []string
}

func (f *fakeDownloader) Download(_ context.Context, fileURL string, w io.Writer) (int64, error) {
	f.urls = append(f.urls, fileURL)
	n, err := w.Write([]byte("x"))
	return int64(n), err
}

func TestSaveImagesDefaultScheme(t *testing.T) {
	fake := &fakeDownloader{}
	saver := &ImageSaver{Client: fake, Dir: t.TempDir()}

	_, err := saver.SaveImages(context.Background(), "drake", []scraper.MemeRecord{
		{Author: "a", Views: "1", URL: strPtr("i.imgflip.com/8h3k2a.jpg")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://i.imgflip.com/8h3k2a.jpg"}, fake.urls)
}
