package scraper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"facebook-post-scraper/internal/utils"
	"facebook-post-scraper/pkg/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

const storyPrefix = "/story.php?story_fbid="

// PostExtractor turns the articles of a feed snapshot into posts.
type PostExtractor struct {
	layout Layout
	logger *logrus.Logger

	now      func() time.Time
	randomID func() int
}

func NewPostExtractor(layout Layout, logger *logrus.Logger) *PostExtractor {
	return &PostExtractor{
		layout:   layout,
		logger:   logger,
		now:      time.Now,
		randomID: func() int { return utils.RandomInt(0, 999999) },
	}
}

func (pe *PostExtractor) Layout() Layout {
	return pe.layout
}

// ExtractBatch extracts every article of the snapshot. Articles that fail
// are logged and dropped.
func (pe *PostExtractor) ExtractBatch(doc *goquery.Document) []types.Post {
	sel := pe.layout.Selectors()
	posts := []types.Post{}

	doc.Find(sel.Article).Each(func(i int, s *goquery.Selection) {
		post, err := pe.ExtractPost(s)
		if err != nil {
			pe.logger.WithField("article", i).Errorf("Failed to parse article: %v", err)
			return
		}
		posts = append(posts, *post)
	})

	pe.logger.Debugf("Extracted %d posts from %s layout", len(posts), pe.layout.Name())
	return posts
}

// ExtractPost reads the fields of one article element.
func (pe *PostExtractor) ExtractPost(s *goquery.Selection) (post *types.Post, err error) {
	defer func() {
		if r := recover(); r != nil {
			post = nil
			err = fmt.Errorf("panic while parsing article: %v", r)
		}
	}()

	sel := pe.layout.Selectors()
	now := pe.now()

	p := &types.Post{
		ScrapedAt:     now,
		Text:          firstText(s, sel.Text),
		ReactionCount: types.CountOf(firstText(s, sel.Reactions)),
		URL:           firstAttr(s, sel.PostURL, "href"),
	}

	if counts := s.Find(sel.Counts).First(); counts.Length() > 0 {
		p.CommentCount = types.CountOf(firstWord(counts.Find(sel.CommentCount).First().Text()))
		p.ShareCount = types.CountOf(firstWord(counts.Find(sel.ShareCount).First().Text()))
	}

	if abbr := s.Find(sel.Date).First(); abbr.Length() > 0 {
		parsed, ok := utils.ParseDate(abbr.Text(), now)
		p.Datetime = &parsed
		p.DatetimeFallback = !ok
	}

	if content := s.Find(sel.Content).First(); content.Length() > 0 {
		p.ImageRefs = []string{}
		content.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			p.ImageRefs = append(p.ImageRefs, href)
		})
	}

	if comments := s.Find(sel.Comments).First(); comments.Length() > 0 {
		p.TopComments = []string{}
		comments.Find(sel.CommentBody).Each(func(_ int, c *goquery.Selection) {
			p.TopComments = append(p.TopComments, c.Text())
		})
	}

	profile := ""
	if href := firstAttr(s, sel.Author, "href"); href != nil {
		profile = *href
	}
	if username, err := utils.ExtractUsername(profile); err == nil {
		p.Username = &username
	}

	storyID, ok := StoryID(p.URL)
	if !ok {
		storyID = strconv.Itoa(pe.randomID())
		p.IDFallback = true
	}
	p.PostID = BuildPostID(p.Username, now, storyID)

	return p, nil
}

// StoryID derives the story id from a relative story url: everything
// from "&id=" on is dropped, then the story.php prefix is removed.
func StoryID(postURL *string) (string, bool) {
	if postURL == nil {
		return "", false
	}
	id, _, _ := strings.Cut(*postURL, "&id=")
	id = strings.Replace(id, storyPrefix, "", 1)
	if id == "" {
		return "", false
	}
	return id, true
}

// BuildPostID renders fb_<username>_<unixMillis>_<storyID>. An unresolved
// username renders as "null".
func BuildPostID(username *string, capturedAt time.Time, storyID string) string {
	name := "null"
	if username != nil {
		name = *username
	}
	return fmt.Sprintf("fb_%s_%d_%s", name, capturedAt.UnixMilli(), storyID)
}

func firstText(s *goquery.Selection, selector string) *string {
	text := s.Find(selector).First().Text()
	if text == "" {
		return nil
	}
	return &text
}

func firstAttr(s *goquery.Selection, selector, attr string) *string {
	val, ok := s.Find(selector).First().Attr(attr)
	if !ok || val == "" {
		return nil
	}
	return &val
}

func firstWord(text string) *string {
	word, _, _ := strings.Cut(text, " ")
	if word == "" {
		return nil
	}
	return &word
}
