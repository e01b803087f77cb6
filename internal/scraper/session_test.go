package scraper

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// fakeSession serves fixed pages by url. Feed snapshots advance with every
// scroll; the last one repeats.
type fakeSession struct {
	pages     map[string]string
	snapshots []string
	current   string
	scrolls   int
	visited   []string
	cookies   []Cookie
	scrollErr error
	closed    bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{pages: map[string]string{}}
}

func (f *fakeSession) Navigate(ctx context.Context, url string) error {
	f.visited = append(f.visited, url)
	f.current = f.pages[url]
	return nil
}

func (f *fakeSession) SetCookies(ctx context.Context, cookies []Cookie) error {
	f.cookies = append(f.cookies, cookies...)
	return nil
}

func (f *fakeSession) ScrollBy(ctx context.Context, pixels int) error {
	if f.scrollErr != nil {
		return f.scrollErr
	}
	f.scrolls++
	if len(f.snapshots) > 0 {
		idx := f.scrolls - 1
		if idx >= len(f.snapshots) {
			idx = len(f.snapshots) - 1
		}
		f.current = f.snapshots[idx]
	}
	return nil
}

func (f *fakeSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.current))
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("selector %s not found", selector)
	}
	return nil
}

func (f *fakeSession) HTML(ctx context.Context) (string, error) {
	return f.current, nil
}

func (f *fakeSession) Close() {
	f.closed = true
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type articleFixture struct {
	author   string
	date     string
	text     string
	images   []string
	reaction string
	comments string
	shares   string
	url      string
	replies  []string
}

func (a articleFixture) body() string {
	var b strings.Builder
	b.WriteString(`<header class="_7om2 _1o88 _77kd _4gxq _5qc1">`)
	if a.author != "" {
		fmt.Fprintf(&b, `<h3 class="_52jd _52jb _52jh _5qc3 _4vc- _3rc4 _4vc-"><a href="%s">Author</a></h3>`, a.author)
	}
	if a.date != "" {
		fmt.Fprintf(&b, `<abbr>%s</abbr>`, a.date)
	}
	b.WriteString(`</header>`)
	if a.text != "" {
		fmt.Fprintf(&b, `<div class="_5rgt _5nk5 _3ynu _5msi">%s</div>`, a.text)
	}
	if a.images != nil {
		b.WriteString(`<div class="_3ynr _5rgu _7dc9 _27x0">`)
		for _, img := range a.images {
			fmt.Fprintf(&b, `<a href="%s"><i></i></a>`, img)
		}
		b.WriteString(`</div>`)
	}
	if a.reaction != "" {
		fmt.Fprintf(&b, `<div class="_1g06">%s</div>`, a.reaction)
	}
	if a.comments != "" || a.shares != "" {
		b.WriteString(`<div class="_1fnt">`)
		if a.comments != "" {
			fmt.Fprintf(&b, `<span data-sigil="comments-token">%s</span>`, a.comments)
		}
		if a.shares != "" {
			fmt.Fprintf(&b, `<span>%s</span>`, a.shares)
		}
		b.WriteString(`</div>`)
	}
	if a.url != "" {
		fmt.Fprintf(&b, `<a class="_5msj" href="%s">Full Story</a>`, a.url)
	}
	if a.replies != nil {
		b.WriteString(`<div class="_333v _45kb">`)
		for _, r := range a.replies {
			fmt.Fprintf(&b, `<div data-sigil="comment-body">%s</div>`, r)
		}
		b.WriteString(`</div>`)
	}
	return b.String()
}

func timelinePage(articles ...articleFixture) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="tlFeed">`)
	for _, a := range articles {
		fmt.Fprintf(&b, `<article class="_56be _4hkg _5rgr _5tx9 async_like">%s</article>`, a.body())
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func searchPage(articles ...articleFixture) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="BrowseResultsContainer">`)
	for _, a := range articles {
		fmt.Fprintf(&b, `<div class="_a5o _9_7 _2rgt _1j-f">%s</div>`, a.body())
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// storyArticle is a complete post with story id n.
func storyArticle(n int, date string) articleFixture {
	return articleFixture{
		author: fmt.Sprintf("/author%d?refid=17", n),
		date:   date,
		text:   fmt.Sprintf("post %d", n),
		url:    fmt.Sprintf("/story.php?story_fbid=%d&id=99", n),
	}
}

func storyArticles(count int, date string) []articleFixture {
	articles := make([]articleFixture, 0, count)
	for i := 1; i <= count; i++ {
		articles = append(articles, storyArticle(i, date))
	}
	return articles
}
