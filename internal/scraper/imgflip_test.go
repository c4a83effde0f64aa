package scraper

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readHTML(t *testing.T, path string) []byte {
	t.Helper()
	html, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Error at reading html: %v", err)
	}
	return html
}

// fixtureMemes is what listing_page.html yields; its sixth entry carries
// an unknown counter label and is skipped.
func fixtureMemes() []MemeRecord {
	return []MemeRecord{
		{
			Text:     strPtr("WHEN YOU SEE YOUR NEIGHBOR BUT PRETEND YOU DIDN'T  ; BUT THAT'S NONE OF MY BUSINESS"),
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
			Text:     strPtr("TALKS ABOUT TEA"),
			Author:   "piggy",
			Views:    "812",
			Comments: strPtr("3"),
			URL:      strPtr("i.imgflip.com/6f1i0c.jpg"),
		},
		{
			Text:   strPtr("JUST SIPPING"),
			Author: "gonzo",
			Views:  "1",
			URL:    strPtr("i.imgflip.com/5e0h9d.jpg"),
		},
		{
			Author:   "animal",
			Views:    "3,001",
			Upvotes:  strPtr("12"),
			Comments: strPtr("5"),
		},
	}
}

func TestParseListing(t *testing.T) {
	entries, err := ParseListing(readHTML(t, filepath.Join("testdata", "listing_page.html")))
	require.NoError(t, err)
	assert.Len(t, entries, 6)

	entries, err = ParseListing([]byte("<html><body><p>nothing here</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractMemeFixture(t *testing.T) {
	entries, err := ParseListing(readHTML(t, filepath.Join("testdata", "listing_page.html")))
	require.NoError(t, err)
	require.Len(t, entries, 6)

	var got []MemeRecord
	for _, e := range entries[:5] {
		rec, err := ExtractMeme(e)
		require.NoError(t, err)
		got = append(got, rec)
	}
	if diff := cmp.Diff(fixtureMemes(), got); diff != "" {
		t.Errorf("ExtractMeme mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, got[4].Restricted())
	assert.False(t, got[0].Restricted())

	_, err = ExtractMeme(entries[5])
	assert.True(t, errors.Is(err, ErrMalformedCounts))
}

func entryFrom(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	entries, err := ParseListing([]byte(html))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	return entries[0]
}

func TestExtractMemeEdgeCases(t *testing.T) {
	const info = `<div class="base-info"><div class="base-author">by x</div><div class="base-view-count">5 views</div></div>`

	t.Run("alt without separator", func(t *testing.T) {
		e := entryFrom(t, `<div class="base-unit clearfix"><div class="base-img-wrap-wrap"><div class="base-img-wrap">
			<a class="base-img-link"><img class="base-img" src="//i.imgflip.com/a.png" alt="  just a caption  "></a>
			</div></div>`+info+`</div>`)
		rec, err := ExtractMeme(e)
		require.NoError(t, err)
		require.NotNil(t, rec.Text)
		assert.Equal(t, "just a caption", *rec.Text)
		assert.Equal(t, "i.imgflip.com/a.png", *rec.URL)
	})

	t.Run("image without src", func(t *testing.T) {
		e := entryFrom(t, `<div class="base-unit clearfix"><div class="base-img-wrap-wrap"><div class="base-img-wrap">
			<a class="base-img-link"><img class="base-img" alt="M | TEXT | tags"></a>
			</div></div>`+info+`</div>`)
		rec, err := ExtractMeme(e)
		require.NoError(t, err)
		assert.Equal(t, "TEXT", *rec.Text)
		assert.Nil(t, rec.URL)
	})

	t.Run("missing author", func(t *testing.T) {
		e := entryFrom(t, `<div class="base-unit clearfix"><div class="base-info"><div class="base-view-count">5 views</div></div></div>`)
		_, err := ExtractMeme(e)
		assert.True(t, errors.Is(err, ErrMalformedEntry))
	})

	t.Run("missing counters", func(t *testing.T) {
		e := entryFrom(t, `<div class="base-unit clearfix"><div class="base-info"><div class="base-author">by x</div></div></div>`)
		_, err := ExtractMeme(e)
		assert.True(t, errors.Is(err, ErrMalformedEntry))
	})

	t.Run("missing info", func(t *testing.T) {
		e := entryFrom(t, `<div class="base-unit clearfix"><h2>title</h2></div>`)
		_, err := ExtractMeme(e)
		assert.True(t, errors.Is(err, ErrMalformedEntry))
	})
}

func TestMemeText(t *testing.T) {
	assert.Equal(t, "A B C", memeText("Name | A\tB\nC | tags"))
	assert.Equal(t, "", memeText("Name |  | tags"))
	assert.True(t, strings.HasPrefix(memeText("whole alt"), "whole"))
}
