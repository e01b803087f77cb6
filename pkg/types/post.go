package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Post is one scraped post as it appears in a feed. Counts are kept raw,
// exactly as rendered on the page.
type Post struct {
	PostID           string     `json:"postId" bson:"postId"`
	ScrapedAt        time.Time  `json:"scraperAt" bson:"scraperAt"`
	Datetime         *time.Time `json:"datetime" bson:"datetime"`
	DatetimeFallback bool       `json:"datetimeFallback,omitempty" bson:"datetimeFallback,omitempty"`
	Text             *string    `json:"post_text" bson:"post_text"`
	Username         *string    `json:"username" bson:"username"`
	URL              *string    `json:"post_url" bson:"post_url"`
	ImageRefs        []string   `json:"img_content" bson:"img_content"`
	ReactionCount    *RawCount  `json:"num_reaction" bson:"num_reaction"`
	ShareCount       *RawCount  `json:"num_shares" bson:"num_shares"`
	CommentCount     *RawCount  `json:"num_comments" bson:"num_comments"`
	TopComments      []string   `json:"two_comments" bson:"two_comments"`
	IDFallback       bool       `json:"idFallback,omitempty" bson:"idFallback,omitempty"`
}

// RawCount is a count as rendered on the page ("1.2K", "34"). Post
// documents may carry it as a JSON number too; it is always written back
// as a string.
type RawCount string

// CountOf converts an optional rendered count.
func CountOf(text *string) *RawCount {
	if text == nil {
		return nil
	}
	c := RawCount(*text)
	return &c
}

func (rc *RawCount) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*rc = RawCount(text)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid count: %w", err)
	}
	*rc = RawCount(n.String())
	return nil
}

func (rc RawCount) String() string {
	return string(rc)
}

// Reactions maps the seven reaction categories to their counts. A nil
// count means the category was not present on the reactions page.
type Reactions struct {
	Like  *int64 `json:"like" bson:"like"`
	Love  *int64 `json:"love" bson:"love"`
	Haha  *int64 `json:"haha" bson:"haha"`
	Wow   *int64 `json:"wow" bson:"wow"`
	Care  *int64 `json:"care" bson:"care"`
	Sad   *int64 `json:"sad" bson:"sad"`
	Angry *int64 `json:"angry" bson:"angry"`
}

// ImageContent is one image reference of a single post.
type ImageContent struct {
	URL        string `json:"url" bson:"url"`
	Downloaded bool   `json:"downloaded" bson:"downloaded"`
}

// UnmarshalJSON accepts both the object form and a bare string reference,
// which is how image refs look on a feed Post.
func (ic *ImageContent) UnmarshalJSON(data []byte) error {
	var ref string
	if err := json.Unmarshal(data, &ref); err == nil {
		*ic = ImageContent{URL: ref}
		return nil
	}

	var obj struct {
		URL        string `json:"url"`
		Downloaded bool   `json:"downloaded"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid image content: %w", err)
	}
	*ic = ImageContent{URL: obj.URL, Downloaded: obj.Downloaded}
	return nil
}

// MarkDownloaded flips the downloaded flag. It reports false when the image
// was already marked, so the flag only ever changes once.
func (ic *ImageContent) MarkDownloaded() bool {
	if ic.Downloaded {
		return false
	}
	ic.Downloaded = true
	return true
}

// SinglePost is the deep-fetched detail of one post.
type SinglePost struct {
	PostID            string         `json:"postId" bson:"postId"`
	ScrapedAt         time.Time      `json:"scraperAt" bson:"scraperAt"`
	Datetime          *time.Time     `json:"datetime" bson:"datetime"`
	FullText          *string        `json:"postFullText" bson:"postFullText"`
	ImageContent      []ImageContent `json:"imgContent" bson:"imgContent"`
	ShareCount        *int64         `json:"numShares" bson:"numShares"`
	CommentCount      *int64         `json:"numComments" bson:"numComments"`
	Reactions         Reactions      `json:"reactions" bson:"reactions"`
	Comments          []string       `json:"comments" bson:"comments"`
	AdditionalContent *string        `json:"additionalContent,omitempty" bson:"additionalContent,omitempty"`
}

// ImageRecord links a downloaded image file to its post.
type ImageRecord struct {
	PostID        string    `json:"postId" bson:"postId"`
	ImageFilePath string    `json:"imageFilePath" bson:"imageFilePath"`
	DownloadedAt  time.Time `json:"downloadedAt" bson:"downloadedAt"`
}

type ValidationStats struct {
	TotalPosts     int `json:"total_posts"`
	ValidPosts     int `json:"valid_posts"`
	NullIDFiltered int `json:"null_id_filtered"`
	EmptyFiltered  int `json:"empty_filtered"`
}

func (vs ValidationStats) String() string {
	return fmt.Sprintf("Total: %d, Valid: %d, Null ID: %d, Empty: %d",
		vs.TotalPosts, vs.ValidPosts, vs.NullIDFiltered, vs.EmptyFiltered)
}

// RunResult summarizes one entry-point run.
type RunResult struct {
	Extracted int `json:"extracted"`
	Valid     int `json:"valid"`
	Saved     int `json:"saved"`
	Cycles    int `json:"cycles"`
}
