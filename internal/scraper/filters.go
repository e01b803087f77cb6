package scraper

import (
	"strings"

	"facebook-post-scraper/pkg/types"
)

const nullIDPrefix = "fb_null"

// ValidatePost keeps a post when its author resolved and at least one of
// datetime, url or username is present.
func ValidatePost(post types.Post) bool {
	if strings.HasPrefix(post.PostID, nullIDPrefix) {
		return false
	}
	return hasIdentity(post)
}

func hasIdentity(post types.Post) bool {
	return post.Datetime != nil || post.URL != nil || post.Username != nil
}

// BatchValidate filters posts and counts why the others were rejected.
func BatchValidate(posts []types.Post) ([]types.Post, types.ValidationStats) {
	valid := []types.Post{}
	stats := types.ValidationStats{
		TotalPosts: len(posts),
	}

	for _, post := range posts {
		switch {
		case strings.HasPrefix(post.PostID, nullIDPrefix):
			stats.NullIDFiltered++
		case !hasIdentity(post):
			stats.EmptyFiltered++
		default:
			valid = append(valid, post)
		}
	}

	stats.ValidPosts = len(valid)
	return valid, stats
}
