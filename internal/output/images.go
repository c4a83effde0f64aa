package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/l-stahlhut/meme-crawler/internal/scraper"
)

// Downloader streams a remote file into w.
type Downloader interface {
	Download(ctx context.Context, fileURL string, w io.Writer) (int64, error)
}

// ImageReport counts what SaveImages did.
type ImageReport struct {
	Dir     string
	Saved   int
	Skipped int // restricted memes without a URL
	Failed  int
}

// ImageSaver downloads meme images into images_<slug>.
type ImageSaver struct {
	Client Downloader
	Dir    string // parent directory of images_<slug>
	Scheme string // scheme prefixed to the scheme-less meme URLs, "https" if empty
	Logger *slog.Logger
}

// ImageDir returns the directory the images of slug are saved into.
func ImageDir(dir, slug string) string {
	return filepath.Join(dir, "images_"+slug)
}

// SaveImages creates images_<slug> and downloads every meme with a URL,
// one at a time. If the directory already exists nothing is downloaded and
// ErrOutputExists is returned. A failed download is logged and counted;
// the remaining images are still fetched.
func (s *ImageSaver) SaveImages(ctx context.Context, slug string, memes []scraper.MemeRecord) (ImageReport, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dir := ImageDir(s.Dir, slug)
	report := ImageReport{Dir: dir}

	if _, err := os.Stat(dir); err == nil {
		return report, fmt.Errorf("%w: %s, rename it to save images again", ErrOutputExists, dir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return report, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return report, fmt.Errorf("create %s: %w", dir, err)
	}

	for _, m := range memes {
		if m.URL == nil {
			report.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.saveOne(ctx, dir, *m.URL); err != nil {
			report.Failed++
			logger.WarnContext(ctx, "image download failed", "url", *m.URL, "err", err)
			continue
		}
		report.Saved++
	}
	return report, nil
}

func (s *ImageSaver) saveOne(ctx context.Context, dir, raw string) error {
	scheme := s.Scheme
	if scheme == "" {
		scheme = "https"
	}
	u, err := url.Parse(scheme + "://" + raw)
	if err != nil {
		return err
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return fmt.Errorf("no file name in %q", raw)
	}
	target := filepath.Join(dir, name)

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := s.Client.Download(ctx, u.String(), f); err != nil {
		f.Close()
		os.Remove(target)
		return err
	}
	return f.Close()
}
