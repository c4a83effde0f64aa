package scraper

import (
	"errors"
	"fmt"
	"strings"
)

// Counter is one of the three counters a listing entry can show.
type Counter int

const (
	CounterUnknown Counter = iota
	CounterViews
	CounterUpvotes
	CounterComments
)

func (c Counter) String() string {
	switch c {
	case CounterViews:
		return "views"
	case CounterUpvotes:
		return "upvotes"
	case CounterComments:
		return "comments"
	default:
		return "unknown"
	}
}

// counterLabels maps every label the site prints, singular or plural.
var counterLabels = map[string]Counter{
	"view":     CounterViews,
	"views":    CounterViews,
	"upvote":   CounterUpvotes,
	"upvotes":  CounterUpvotes,
	"comment":  CounterComments,
	"comments": CounterComments,
}

// ClassifyLabel maps a counter label to its Counter.
func ClassifyLabel(label string) Counter {
	return counterLabels[strings.ToLower(strings.TrimSpace(label))]
}

// Counts is the parsed counter line of an entry. Views is always set.
type Counts struct {
	Views    string
	Upvotes  *string
	Comments *string
}

const counterSep = ", "

// ErrMalformedCounts is wrapped by every *CountError.
var ErrMalformedCounts = errors.New("malformed counter line")

// CountError describes why a counter line could not be classified.
type CountError struct {
	Line   string
	Phrase string
	Reason string
}

func (e *CountError) Error() string {
	if e.Phrase == "" {
		return fmt.Sprintf("counter line %q: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("counter line %q: phrase %q: %s", e.Line, e.Phrase, e.Reason)
}

func (e *CountError) Unwrap() error { return ErrMalformedCounts }

// ParseCounts splits a counter line such as
// "20,588 views, 504 upvotes, 27 comments" into its phrases. The first
// phrase is the view count; the others are assigned by label, since a line
// with two phrases may carry either upvotes or comments in second place.
func ParseCounts(line string) (Counts, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Counts{}, &CountError{Line: line, Reason: "empty"}
	}
	phrases := strings.Split(line, counterSep)
	if len(phrases) > 3 {
		return Counts{}, &CountError{Line: line, Reason: fmt.Sprintf("%d phrases, at most 3 expected", len(phrases))}
	}

	var c Counts
	for i, phrase := range phrases {
		fields := strings.Fields(phrase)
		if len(fields) < 2 {
			return Counts{}, &CountError{Line: line, Phrase: phrase, Reason: "want \"<number> <label>\""}
		}
		number, label := fields[0], fields[1]
		kind := ClassifyLabel(label)

		if i == 0 {
			if kind != CounterViews {
				return Counts{}, &CountError{Line: line, Phrase: phrase, Reason: "first phrase is not a view count"}
			}
			c.Views = number
			continue
		}

		switch kind {
		case CounterUpvotes:
			if c.Upvotes != nil {
				return Counts{}, &CountError{Line: line, Phrase: phrase, Reason: "upvotes repeated"}
			}
			c.Upvotes = &number
		case CounterComments:
			if c.Comments != nil {
				return Counts{}, &CountError{Line: line, Phrase: phrase, Reason: "comments repeated"}
			}
			c.Comments = &number
		case CounterViews:
			return Counts{}, &CountError{Line: line, Phrase: phrase, Reason: "views repeated"}
		default:
			return Counts{}, &CountError{Line: line, Phrase: phrase, Reason: fmt.Sprintf("unknown label %q", label)}
		}
	}
	return c, nil
}
