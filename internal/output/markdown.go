package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/l-stahlhut/meme-crawler/internal/scraper"
)

// WriteMarkdown writes the collection as a Markdown document with a
// summary and one table row per meme.
func WriteMarkdown(path string, name string, memes []scraper.MemeRecord) error {
	f, err := create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	restricted := 0
	for _, m := range memes {
		if m.Restricted() {
			restricted++
		}
	}

	md := markdown.NewMarkdown(f)
	md.H1(name)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Memes", strconv.Itoa(len(memes))},
			{"Restricted", strconv.Itoa(restricted)},
		},
	})
	md.PlainText("")

	md.H2("Memes")
	md.PlainText("")
	if len(memes) == 0 {
		md.PlainText("No memes fetched.")
	} else {
		rows := make([][]string, len(memes))
		for i, m := range memes {
			fields := m.Fields()
			for j := range fields {
				fields[j] = escapeCell(fields[j])
			}
			rows[i] = fields
		}
		md.Table(markdown.TableSet{Header: scraper.Columns, Rows: rows})
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
