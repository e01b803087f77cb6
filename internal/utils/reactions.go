package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"facebook-post-scraper/pkg/types"
)

// countPattern matches the first abbreviated number in a label, e.g. "1.2K",
// "3M", "1,204". Only a comma groups thousands; a space ends the number.
var countPattern = regexp.MustCompile(`(?i)(\d[\d.,]*)\s*([kmb])?(?:\b|$)`)

// reactionLabels in display order. The label text is matched as rendered.
var reactionLabels = []struct {
	label string
	field func(*types.Reactions) **int64
}{
	{"Like", func(r *types.Reactions) **int64 { return &r.Like }},
	{"Love", func(r *types.Reactions) **int64 { return &r.Love }},
	{"Haha", func(r *types.Reactions) **int64 { return &r.Haha }},
	{"Wow", func(r *types.Reactions) **int64 { return &r.Wow }},
	{"Care", func(r *types.Reactions) **int64 { return &r.Care }},
	{"Sad", func(r *types.Reactions) **int64 { return &r.Sad }},
	{"Angry", func(r *types.Reactions) **int64 { return &r.Angry }},
}

// ParseReactions turns reaction tooltip labels ("Love 1.2K") into per
// category counts. When several labels name the same category, the last one
// wins.
func ParseReactions(labels []string) types.Reactions {
	var reactions types.Reactions

	for _, label := range labels {
		if label == "" {
			continue
		}
		for _, rl := range reactionLabels {
			if !strings.Contains(label, rl.label) {
				continue
			}
			if count, ok := ParseCount(label); ok {
				*rl.field(&reactions) = &count
			}
		}
	}

	return reactions
}

// ParseCount reads the first abbreviated number in text, applying the
// k/m/b multiplier.
func ParseCount(text string) (int64, bool) {
	m := countPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	num, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimRight(m[1], ".,"), ",", ""), 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(m[2]) {
	case "k":
		num *= 1e3
	case "m":
		num *= 1e6
	case "b":
		num *= 1e9
	}

	return int64(math.Round(num)), true
}
