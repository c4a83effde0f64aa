package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// StopReason tells why a crawl ended.
type StopReason int

const (
	// StopEndOfRange means every page up to the last index was fetched.
	StopEndOfRange StopReason = iota
	// StopStatus means a page answered with something other than 200,
	// usually a redirect past the last existing page.
	StopStatus
	// StopCanceled means the context ended the crawl.
	StopCanceled
	// StopError means a transport failure ended the crawl.
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopEndOfRange:
		return "end of range"
	case StopStatus:
		return "non-200 status"
	case StopCanceled:
		return "canceled"
	default:
		return "error"
	}
}

// Options bound a crawl.
type Options struct {
	Source    string        // Listing URL of page 1, already sorted as wanted.
	FirstPage int           // First page index, 1-based.
	LastPage  int           // Last page index, inclusive.
	Delay     time.Duration // Flat pause between successful pages.
}

// CrawlResult is everything a crawl accumulated.
type CrawlResult struct {
	Collection   Collection
	Memes        []MemeRecord
	PagesFetched int
	Skipped      int // entries dropped because their markup was malformed
	StopReason   StopReason
	StopPage     int // page index that ended the crawl (non-200 or failure)
	StopStatus   int // status code of StopPage when StopReason is StopStatus
}

// Crawler walks listing pages one at a time.
type Crawler struct {
	Client *Client
	Opts   Options
	Logger *slog.Logger
}

// NewCrawler returns a Crawler; a nil logger uses slog.Default().
func NewCrawler(c *Client, opts Options, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{Client: c, Opts: opts, Logger: logger}
}

// Run fetches pages FirstPage..LastPage. It stops early, without error, on
// the first non-200 page; that page's body is never parsed. On a transport
// failure or cancellation it returns the partial result along with the error.
func (c *Crawler) Run(ctx context.Context) (*CrawlResult, error) {
	coll, err := CollectionFromURL(c.Opts.Source)
	if err != nil {
		return nil, err
	}
	res := &CrawlResult{Collection: coll, Memes: make([]MemeRecord, 0, 40)}

	for p := c.Opts.FirstPage; p <= c.Opts.LastPage; p++ {
		c.Logger.InfoContext(ctx, "processing page", "page", p)

		link, err := PageURL(c.Opts.Source, p)
		if err != nil {
			return res, err
		}

		page, err := c.Client.Fetch(ctx, link)
		if err != nil {
			res.StopPage = p
			if ctx.Err() != nil {
				res.StopReason = StopCanceled
				return res, ctx.Err()
			}
			res.StopReason = StopError
			return res, fmt.Errorf("page %d: %w", p, err)
		}
		if !page.OK() {
			c.Logger.InfoContext(ctx, "stopping at non-200 page", "page", p, "status", page.StatusCode)
			res.StopReason = StopStatus
			res.StopPage = p
			res.StopStatus = page.StatusCode
			return res, nil
		}
		res.PagesFetched++

		memes, skipped, err := c.scrapePage(ctx, p, page.Body)
		if err != nil {
			res.StopReason = StopError
			res.StopPage = p
			return res, fmt.Errorf("page %d: %w", p, err)
		}
		res.Memes = append(res.Memes, memes...)
		res.Skipped += skipped
		c.Logger.DebugContext(ctx, "page done", "page", p, "memes", len(memes), "skipped", skipped)

		if p < c.Opts.LastPage {
			if err := sleepCtx(ctx, c.Opts.Delay); err != nil {
				res.StopReason = StopCanceled
				res.StopPage = p
				return res, err
			}
		}
	}
	res.StopReason = StopEndOfRange
	return res, nil
}

func (c *Crawler) scrapePage(ctx context.Context, page int, body []byte) ([]MemeRecord, int, error) {
	entries, err := ParseListing(body)
	if err != nil {
		return nil, 0, err
	}
	out := make([]MemeRecord, 0, len(entries))
	skipped := 0
	for i, e := range entries {
		rec, err := ExtractMeme(e)
		if err != nil {
			skipped++
			c.Logger.WarnContext(ctx, "skipping entry", "page", page, "entry", i, "err", err)
			continue
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}
