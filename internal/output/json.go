package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/l-stahlhut/meme-crawler/internal/scraper"
)

// WriteJSON writes {"name": ..., "memes": [...]} to path, replacing any
// existing file.
func WriteJSON(path string, name string, memes []scraper.MemeRecord) error {
	if memes == nil {
		memes = []scraper.MemeRecord{}
	}

	f, err := create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	writer := bufio.NewWriter(f)
	if err := json.NewEncoder(writer).Encode(scraper.Dataset{Name: name, Memes: memes}); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// ReadJSON loads a file written by WriteJSON.
func ReadJSON(path string) (scraper.Dataset, error) {
	var ds scraper.Dataset
	b, err := os.ReadFile(path)
	if err != nil {
		return ds, err
	}
	if err := json.Unmarshal(b, &ds); err != nil {
		return ds, fmt.Errorf("decode %s: %w", path, err)
	}
	return ds, nil
}
