package scraper

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Unavailable is written in place of text and url for memes whose content
// is hidden behind the site's NSFW filter.
const Unavailable = "NA"

// MemeRecord is one listing entry. Text and URL are nil for restricted
// entries; Upvotes and Comments are nil when the entry's counter line does
// not mention them.
type MemeRecord struct {
	Text     *string
	Author   string
	Views    string
	Upvotes  *string
	Comments *string
	URL      *string
}

// Restricted reports whether the entry's image region was censored.
func (r MemeRecord) Restricted() bool {
	return r.URL == nil
}

// Fields returns the record in wire form, in Columns order.
func (r MemeRecord) Fields() []string {
	return []string{
		orUnavailable(r.Text),
		r.Author,
		r.Views,
		orZero(r.Upvotes),
		orZero(r.Comments),
		orUnavailable(r.URL),
	}
}

// Columns are the field names used by the tabular outputs.
var Columns = []string{"text", "author", "views", "upvotes", "comments", "url"}

// RecordFromFields is the inverse of Fields.
func RecordFromFields(fields []string) (MemeRecord, error) {
	if len(fields) != len(Columns) {
		return MemeRecord{}, fmt.Errorf("record has %d fields, want %d", len(fields), len(Columns))
	}
	return MemeRecord{
		Text:     fromUnavailable(fields[0]),
		Author:   fields[1],
		Views:    fields[2],
		Upvotes:  fromZero(fields[3]),
		Comments: fromZero(fields[4]),
		URL:      fromUnavailable(fields[5]),
	}, nil
}

// wireRecord mirrors the JSON layout: missing counters are the number 0,
// restricted text/url are "NA".
type wireRecord struct {
	Text     string          `json:"text"`
	Author   string          `json:"author"`
	Views    string          `json:"views"`
	Upvotes  json.RawMessage `json:"upvotes"`
	Comments json.RawMessage `json:"comments"`
	URL      string          `json:"url"`
}

func (r MemeRecord) MarshalJSON() ([]byte, error) {
	up, err := countJSON(r.Upvotes)
	if err != nil {
		return nil, err
	}
	cm, err := countJSON(r.Comments)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireRecord{
		Text:     orUnavailable(r.Text),
		Author:   r.Author,
		Views:    r.Views,
		Upvotes:  up,
		Comments: cm,
		URL:      orUnavailable(r.URL),
	})
}

func (r *MemeRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	up, err := countFromJSON(w.Upvotes)
	if err != nil {
		return fmt.Errorf("upvotes: %w", err)
	}
	cm, err := countFromJSON(w.Comments)
	if err != nil {
		return fmt.Errorf("comments: %w", err)
	}
	*r = MemeRecord{
		Text:     fromUnavailable(w.Text),
		Author:   w.Author,
		Views:    w.Views,
		Upvotes:  up,
		Comments: cm,
		URL:      fromUnavailable(w.URL),
	}
	return nil
}

// Dataset is the document written by the JSON output.
type Dataset struct {
	Name  string       `json:"name"`
	Memes []MemeRecord `json:"memes"`
}

// Collection names one crawl run. Name is the human readable meme name,
// Slug the lowercase identifier used for output file names.
type Collection struct {
	Name string
	Slug string
}

// CollectionFromURL derives the collection from the last path segment of
// the source URL, e.g. ".../meme/But-Thats-None-Of-My-Business?sort=top-365d"
// gives "But Thats None Of My Business" / "but_thats_none_of_my_business".
func CollectionFromURL(source string) (Collection, error) {
	u, err := url.Parse(source)
	if err != nil {
		return Collection{}, fmt.Errorf("parse source url: %w", err)
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "" || seg == "." || seg == "/" {
		return Collection{}, fmt.Errorf("source url %q has no path segment to name the collection", source)
	}
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	name := strings.ReplaceAll(seg, "-", " ")
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	return Collection{Name: name, Slug: slug}, nil
}

func orUnavailable(s *string) string {
	if s == nil {
		return Unavailable
	}
	return *s
}

func fromUnavailable(s string) *string {
	if s == Unavailable {
		return nil
	}
	return &s
}

func orZero(s *string) string {
	if s == nil {
		return "0"
	}
	return *s
}

func fromZero(s string) *string {
	if s == "0" {
		return nil
	}
	return &s
}

func countJSON(s *string) (json.RawMessage, error) {
	if s == nil {
		return json.RawMessage("0"), nil
	}
	return json.Marshal(*s)
}

func countFromJSON(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	s := fmt.Sprint(n)
	return &s, nil
}
