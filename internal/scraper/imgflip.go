package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	entrySel   = "div.base-unit.clearfix"
	infoSel    = "div.base-info"
	authorSel  = "div.base-author"
	countsSel  = "div.base-view-count"
	imgWrapSel = "div.base-img-wrap-wrap div.base-img-wrap"
	imgSel     = "a.base-img-link img.base-img"

	authorPrefix = "by "
	altSep       = "|"
	srcPrefix    = "//"
)

// ErrMalformedEntry is returned for entries missing the author or counter region.
var ErrMalformedEntry = errors.New("malformed listing entry")

var altSpaces = strings.NewReplacer("\t", " ", "\n", " ")

// ParseListing returns the listing entries of a page in document order.
// A page without entries yields an empty slice.
func ParseListing(body []byte) ([]*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	sel := doc.Find(entrySel)
	entries := make([]*goquery.Selection, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		entries = append(entries, s)
	})
	return entries, nil
}

// ExtractMeme maps one listing entry to a record. Entries whose image link
// is censored come back with nil Text and URL.
func ExtractMeme(entry *goquery.Selection) (MemeRecord, error) {
	info := entry.Find(infoSel).First()
	if info.Length() == 0 {
		return MemeRecord{}, fmt.Errorf("%w: no %s", ErrMalformedEntry, infoSel)
	}

	authorNode := info.Find(authorSel).First()
	if authorNode.Length() == 0 {
		return MemeRecord{}, fmt.Errorf("%w: no %s", ErrMalformedEntry, authorSel)
	}
	author := strings.TrimPrefix(strings.TrimSpace(authorNode.Text()), authorPrefix)

	countsNode := info.Find(countsSel).First()
	if countsNode.Length() == 0 {
		return MemeRecord{}, fmt.Errorf("%w: no %s", ErrMalformedEntry, countsSel)
	}
	counts, err := ParseCounts(countsNode.Text())
	if err != nil {
		return MemeRecord{}, err
	}

	rec := MemeRecord{
		Author:   author,
		Views:    counts.Views,
		Upvotes:  counts.Upvotes,
		Comments: counts.Comments,
	}

	// NSFW memes have no image link unless the viewer is logged in.
	img := entry.Find(imgWrapSel).Find(imgSel).First()
	if img.Length() == 0 {
		return rec, nil
	}
	if alt, ok := img.Attr("alt"); ok {
		text := memeText(alt)
		rec.Text = &text
	}
	if src, ok := img.Attr("src"); ok && src != "" {
		u := strings.TrimPrefix(src, srcPrefix)
		rec.URL = &u
	}
	return rec, nil
}

// memeText picks the caption out of an alt attribute shaped like
// "Meme Name | CAPTION | image tagged in ...".
func memeText(alt string) string {
	parts := strings.Split(alt, altSep)
	text := alt
	if len(parts) > 1 {
		text = parts[1]
	}
	return strings.TrimSpace(altSpaces.Replace(text))
}
