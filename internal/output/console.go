package output

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/l-stahlhut/meme-crawler/internal/scraper"
)

// PrintTable dumps every meme to w as a table.
func PrintTable(w io.Writer, memes []scraper.MemeRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := make(table.Row, len(scraper.Columns))
	for i, c := range scraper.Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, m := range memes {
		fields := m.Fields()
		row := make(table.Row, len(fields))
		for i, f := range fields {
			row[i] = f
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
