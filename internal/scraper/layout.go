package scraper

import "fmt"

// Page variants of the mobile site.
const (
	VariantTimeline = 0
	VariantSearch   = 1
)

// FeedSelectors locate the fields of one post article. Field selectors
// are relative to the article element; CommentCount and ShareCount are
// relative to Counts, CommentBody to Comments.
type FeedSelectors struct {
	Article      string
	Text         string
	Reactions    string
	Counts       string
	CommentCount string
	ShareCount   string
	Date         string
	Content      string
	PostURL      string
	Author       string
	Comments     string
	CommentBody  string
}

// Layout is the selector set of one feed page variant.
type Layout interface {
	Name() string
	// WaitSelector is the container that must be visible before the feed
	// can be read.
	WaitSelector() string
	Selectors() FeedSelectors
}

// articleFields are shared by every feed variant of the mobile site.
var articleFields = FeedSelectors{
	Text:         "div._5rgt._5nk5._3ynu._5msi",
	Reactions:    "div._1g06",
	Counts:       "div._1fnt",
	CommentCount: `span[data-sigil="comments-token"]`,
	ShareCount:   `span:not([data-sigil="comments-token"])`,
	Date:         "header._7om2._1o88._77kd._4gxq._5qc1 abbr",
	Content:      "div._3ynr._5rgu._7dc9._27x0",
	PostURL:      "a._5msj",
	Author:       "h3._52jd._52jb._52jh._5qc3._4vc-._3rc4._4vc- a",
	Comments:     "div._333v._45kb",
	CommentBody:  `div[data-sigil="comment-body"]`,
}

// SearchLayout reads hashtag and search result pages.
type SearchLayout struct{}

func (SearchLayout) Name() string         { return "search" }
func (SearchLayout) WaitSelector() string { return "#BrowseResultsContainer" }

func (SearchLayout) Selectors() FeedSelectors {
	s := articleFields
	s.Article = "#BrowseResultsContainer div._a5o._9_7._2rgt._1j-f"
	return s
}

// TimelineLayout reads page and profile timelines.
type TimelineLayout struct{}

func (TimelineLayout) Name() string         { return "timeline" }
func (TimelineLayout) WaitSelector() string { return "#tlFeed" }

func (TimelineLayout) Selectors() FeedSelectors {
	s := articleFields
	s.Article = "#tlFeed article._56be._4hkg._5rgr._5tx9.async_like"
	return s
}

func LayoutFor(variant int) (Layout, error) {
	switch variant {
	case VariantTimeline:
		return TimelineLayout{}, nil
	case VariantSearch:
		return SearchLayout{}, nil
	default:
		return nil, fmt.Errorf("unknown page variant: %d", variant)
	}
}

// DetailLayout holds the selectors of the single post page and of its
// reactions page.
var DetailLayout = struct {
	Root             string
	FullText         string
	FullTextFallback string
	ReactionLink     string
	Comments         string
	ReactionsRoot    string
	ReactionLabels   string
	ImageSource      string
}{
	Root:             "div#rootcontainer",
	FullText:         "div._5rgt._5nk5._3ynu",
	FullTextFallback: "div.msg.mfsl div",
	ReactionLink:     "a._45m8",
	Comments:         `div._333v._45kb div[data-sigil="comment-body"]`,
	ReactionsRoot:    "div.scrollAreaColumn",
	ReactionLabels:   "div.scrollAreaColumn span._10tn span[aria-label]",
	ImageSource:      `img[src^="https://scontent"]`,
}
