package app

import (
	"testing"
	"time"

	"facebook-post-scraper/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUntil(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-10T09:00:00Z", time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)},
		{"2024-03-10T09:00:00", time.Date(2024, time.March, 10, 9, 0, 0, 0, time.Local)},
		{"2024-03-10", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUntil(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}

	_, err := ParseUntil("last tuesday")
	assert.Error(t, err)
}

func TestDecodePost(t *testing.T) {
	post, err := DecodePost(`{"postId": "fb_john_1_42", "post_url": "/story.php?story_fbid=42&id=7", "num_shares": "12", "img_content": ["/photo.php?fbid=1"]}`)
	require.NoError(t, err)
	assert.Equal(t, "fb_john_1_42", post.PostID)
	assert.Equal(t, "/story.php?story_fbid=42&id=7", *post.URL)
	assert.Equal(t, types.RawCount("12"), *post.ShareCount)
	assert.Equal(t, []string{"/photo.php?fbid=1"}, post.ImageRefs)

	numeric, err := DecodePost(`{"postId": "fb_john_1_2", "post_url": "/story.php?story_fbid=2&id=1", "num_shares": 12, "num_comments": 3, "num_reaction": null}`)
	require.NoError(t, err)
	assert.Equal(t, types.RawCount("12"), *numeric.ShareCount)
	assert.Equal(t, types.RawCount("3"), *numeric.CommentCount)
	assert.Nil(t, numeric.ReactionCount)

	stored, err := DecodePost(`{"postId": "fb_john_1_2", "datetime": "Fri Mar 15 2024 14:30:00 GMT+0530 (India Standard Time)"}`)
	require.NoError(t, err)
	require.NotNil(t, stored.Datetime)
	assert.True(t, time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC).Equal(*stored.Datetime))

	rfc, err := DecodePost(`{"postId": "fb_john_1_2", "datetime": "2024-03-15T09:00:00Z", "num_shares": null}`)
	require.NoError(t, err)
	assert.True(t, stored.Datetime.Equal(*rfc.Datetime))

	_, err = DecodePost(`{"postId": "fb_john_1_2", "datetime": "sometime in March"}`)
	assert.Error(t, err)

	_, err = DecodePost(`{"postId": "fb_john_1_2", "num_shares": [12]}`)
	assert.Error(t, err)

	_, err = DecodePost(`{not json`)
	assert.Error(t, err)
}

func TestDecodeSinglePost(t *testing.T) {
	post, err := DecodeSinglePost(`{"postId": "fb_john_1_42", "imgContent": ["/photo.php?fbid=1"]}`)
	require.NoError(t, err)
	require.Len(t, post.ImageContent, 1)
	assert.False(t, post.ImageContent[0].Downloaded)

	_, err = DecodeSinglePost(`{"imgContent": []}`)
	assert.Error(t, err)
}

func TestParseArgs(t *testing.T) {
	var opts struct {
		Options
		Args struct {
			URL      string `positional-arg-name:"url" required:"yes"`
			MaxPosts int    `positional-arg-name:"maxPostCount"`
		} `positional-args:"yes"`
	}

	ok, err := ParseArgs(&opts, []string{"--config", "tuning.yaml", "https://m.facebook.com/hashtag/x", "7"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tuning.yaml", opts.Config)
	assert.Equal(t, "https://m.facebook.com/hashtag/x", opts.Args.URL)
	assert.Equal(t, 7, opts.Args.MaxPosts)

	var missing struct {
		Args struct {
			URL string `positional-arg-name:"url" required:"yes"`
		} `positional-args:"yes"`
	}
	_, err = ParseArgs(&missing, []string{})
	assert.Error(t, err)
}
