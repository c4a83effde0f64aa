package output

import "github.com/l-stahlhut/meme-crawler/internal/scraper"

func strPtr(s string) *string { return &s }

func sampleMemes() []scraper.MemeRecord {
	return []scraper.MemeRecord{
		{
			Text:     strPtr("WHEN YOU SEE IT, BUT | THAT'S NONE OF MY BUSINESS"),
			Author:   "kermit",
			Views:    "20,588",
			Upvotes:  strPtr("504"),
			Comments: strPtr("27"),
			URL:      strPtr("i.imgflip.com/8h3k2a.jpg"),
		},
		{
			Text:    strPtr("I WORK ON MONDAYS"),
			Author:  "frog",
			Views:   "1,204",
			Upvotes: strPtr("1"),
			URL:     strPtr("i.imgflip.com/7g2j1b.jpg"),
		},
		{
			Author:   "animal",
			Views:    "3,001",
			Comments: strPtr("5"),
		},
	}
}
