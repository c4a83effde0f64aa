package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/l-stahlhut/meme-crawler/internal/config"
	"github.com/l-stahlhut/meme-crawler/internal/logging"
	"github.com/l-stahlhut/meme-crawler/internal/output"
	"github.com/l-stahlhut/meme-crawler/internal/scraper"
)

// NewRootCmd creates the root command. Running it crawls one listing.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memecrawl",
		Short: "Crawl imgflip meme listings",
		Long: `memecrawl fetches the listing pages of one imgflip meme template, page by
page, and extracts text, author, views, upvotes, comments and image URL of
every meme.

The memes are written as JSON, CSV, Markdown or SQLite (first selected
format wins) or printed as a table. --save-images additionally downloads
every image into images_<collection>.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCrawl,
	}

	flags := cmd.Flags()
	flags.StringP("source", "s", "", "Listing URL of page 1, e.g. https://imgflip.com/meme/Drake-Hotline-Bling?sort=top-365d")
	flags.IntP("first-page", "f", 1, "First page to fetch")
	flags.IntP("last-page", "l", 0, "Last page to fetch (inclusive)")
	flags.IntP("delay", "d", 2, "Seconds to wait between pages")
	flags.BoolP("json", "j", false, "Write <collection>.json")
	flags.BoolP("csv", "c", false, "Write tab separated <collection>.csv")
	flags.Bool("markdown", false, "Write <collection>.md")
	flags.Bool("sqlite", false, "Write <collection>.db")
	flags.BoolP("save-images", "i", false, "Download images into images_<collection>")
	flags.StringP("out-dir", "o", ".", "Directory for all outputs")
	flags.String("image-scheme", "https", "Scheme prefixed to image URLs")
	flags.String("user-agent", "", "User-Agent header (default from config)")
	flags.Duration("timeout", 0, "Per-request timeout, 0 for none")
	flags.String("config", "", "Config file path (default ./memecrawl.yaml or $XDG_CONFIG_HOME/memecrawl/memecrawl.yaml)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", logging.FormatText, "Log format (text, json)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Logging.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx := cmd.Context()
	client := scraper.NewClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent)
	crawler := scraper.NewCrawler(client, scraper.Options{
		Source:    cfg.Crawl.Source,
		FirstPage: cfg.Crawl.FirstPage,
		LastPage:  cfg.Crawl.LastPage,
		Delay:     cfg.DelayDuration(),
	}, logger)

	res, crawlErr := crawler.Run(ctx)
	if res == nil {
		return crawlErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Fetched: %d memes\n", len(res.Memes))
	logger.InfoContext(ctx, "crawl finished",
		"collection", res.Collection.Name,
		"reason", res.StopReason.String(),
		"pages", res.PagesFetched,
		"skipped", res.Skipped,
		"stop_page", res.StopPage,
		"stop_status", res.StopStatus,
	)

	// An interrupted run writes nothing.
	if res.StopReason == scraper.StopCanceled {
		return crawlErr
	}

	sinkErr := writeOutputs(ctx, out, cmd.ErrOrStderr(), cfg, client, res, logger)
	return errors.Join(crawlErr, sinkErr)
}

// writeOutputs runs the selected file format (or the console table) and the
// image sink. Each sink runs regardless of the other's outcome. Missing
// records and existing image directories are reported on errOut; other
// failures are returned.
func writeOutputs(ctx context.Context, out, errOut io.Writer, cfg *config.Config, client *scraper.Client, res *scraper.CrawlResult, logger *slog.Logger) error {
	var errs []error
	report := func(sink string, err error) {
		if err == nil {
			return
		}
		if errors.Is(err, output.ErrNoRecords) || errors.Is(err, output.ErrOutputExists) {
			fmt.Fprintf(errOut, "%s not written: %v\n", sink, err)
			return
		}
		errs = append(errs, fmt.Errorf("%s: %w", sink, err))
	}

	dir := cfg.Output.Dir
	slug := res.Collection.Slug
	name := res.Collection.Name

	switch cfg.OutputFormat() {
	case config.FormatJSON:
		path := output.Filename(dir, slug, ".json")
		err := output.WriteJSON(path, name, res.Memes)
		report("json", err)
		if err == nil {
			fmt.Fprintf(out, "Saved %s\n", path)
		}
	case config.FormatCSV:
		path := output.Filename(dir, slug, ".csv")
		err := output.WriteCSV(path, res.Memes)
		report("csv", err)
		if err == nil {
			fmt.Fprintf(out, "Saved %s\n", path)
		}
	case config.FormatMarkdown:
		path := output.Filename(dir, slug, ".md")
		err := output.WriteMarkdown(path, name, res.Memes)
		report("markdown", err)
		if err == nil {
			fmt.Fprintf(out, "Saved %s\n", path)
		}
	case config.FormatSQLite:
		path := output.Filename(dir, slug, ".db")
		err := output.WriteSQLite(ctx, path, name, res.Memes)
		report("sqlite", err)
		if err == nil {
			fmt.Fprintf(out, "Saved %s\n", path)
		}
	default:
		output.PrintTable(out, res.Memes)
	}

	if cfg.Output.SaveImages {
		saver := &output.ImageSaver{
			Client: client,
			Dir:    dir,
			Scheme: cfg.Output.ImageScheme,
			Logger: logger,
		}
		rep, err := saver.SaveImages(ctx, slug, res.Memes)
		report("images", err)
		if err == nil {
			fmt.Fprintf(out, "Saved %d images to %s (%d restricted, %d failed)\n", rep.Saved, rep.Dir, rep.Skipped, rep.Failed)
		}
	}

	return errors.Join(errs...)
}
