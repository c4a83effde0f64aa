package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/l-stahlhut/meme-crawler/internal/scraper"
)

// Tab, not comma: meme captions are full of commas.
const csvDelimiter = '\t'

// WriteCSV writes a header row and one row per meme, tab separated.
// An empty collection is ErrNoRecords and leaves no file behind.
func WriteCSV(path string, memes []scraper.MemeRecord) error {
	if len(memes) == 0 {
		return ErrNoRecords
	}

	f, err := create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	w := csv.NewWriter(bw)
	w.Comma = csvDelimiter
	if err := w.Write(scraper.Columns); err != nil {
		return err
	}
	for _, m := range memes {
		if err := w.Write(m.Fields()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// ReadCSV loads a file written by WriteCSV.
func ReadCSV(path string) ([]scraper.MemeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = csvDelimiter
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(scraper.Columns) {
		return nil, fmt.Errorf("header has %d columns, want %d", len(header), len(scraper.Columns))
	}

	var memes []scraper.MemeRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := scraper.RecordFromFields(row)
		if err != nil {
			return nil, err
		}
		memes = append(memes, rec)
	}
	return memes, nil
}
