package utils

import (
	"errors"
	"regexp"
)

var ErrUsernameNotFound = errors.New("unable to find a valid username")

// Checked in order: numeric profile ids must not fall through to the
// generic path rules.
var (
	profileIDPattern = regexp.MustCompile(`profile\.php\?id=([^&]+)`)
	queryPathPattern = regexp.MustCompile(`/([^/?]+)\?`)
	basePathPattern  = regexp.MustCompile(`/([^/?]+)`)
)

// ExtractUsername derives the profile handle from an author link.
func ExtractUsername(link string) (string, error) {
	for _, re := range []*regexp.Regexp{profileIDPattern, queryPathPattern, basePathPattern} {
		if m := re.FindStringSubmatch(link); m != nil {
			return m[1], nil
		}
	}
	return "", ErrUsernameNotFound
}
