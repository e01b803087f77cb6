package scraper

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const browserExport = `[
  {"name": "c_user", "value": "100012345", "domain": ".facebook.com", "path": "/", "expires": 1893456000, "httpOnly": false, "secure": true, "sameSite": "None"},
  {"name": "xs", "value": "abc%3Adef", "domain": ".facebook.com", "path": "/", "expires": -1, "httpOnly": true, "secure": true},
  {"name": "datr", "value": "dtr", "domain": ".facebook.com", "path": "/", "expires": 1893456000.5, "httpOnly": true, "secure": true},
  {"name": "NID", "value": "other", "domain": ".google.com", "path": "/"}
]`

const domainMapExport = `{
  "facebook.com": [
    {"name": "c_user", "value": "100012345", "domain": ".facebook.com", "path": "/", "expires": "2030-01-01T00:00:00Z"},
    {"name": "xs", "value": "abc", "domain": "", "path": ""},
    {"name": "datr", "value": "dtr", "domain": ".facebook.com", "path": "/"}
  ]
}`

func TestParseCookiesBrowserExport(t *testing.T) {
	cookies, err := ParseCookies([]byte(browserExport))
	require.NoError(t, err)
	require.Len(t, cookies, 3)

	assert.Equal(t, "c_user", cookies[0].Name)
	assert.Equal(t, time.Unix(1893456000, 0), cookies[0].Expires.Time)
	assert.Equal(t, "None", cookies[0].SameSite)
	assert.True(t, cookies[1].Expires.IsZero())
	assert.True(t, cookies[1].HTTPOnly)
	assert.NoError(t, CheckRequiredCookies(cookies))
}

func TestParseCookiesDomainMap(t *testing.T) {
	cookies, err := ParseCookies([]byte(domainMapExport))
	require.NoError(t, err)
	require.Len(t, cookies, 3)

	assert.Equal(t, time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC), cookies[0].Expires.Time.UTC())
	assert.Equal(t, ".facebook.com", cookies[1].Domain)
	assert.Equal(t, "/", cookies[1].Path)
}

func TestParseCookiesErrors(t *testing.T) {
	_, err := ParseCookies([]byte(`not json`))
	assert.Error(t, err)

	_, err = ParseCookies([]byte(`[{"name": "NID", "value": "x", "domain": ".google.com"}]`))
	assert.ErrorIs(t, err, ErrNoCookies)

	_, err = ParseCookies([]byte(`[{"name": "c_user", "expires": "tomorrow"}]`))
	assert.Error(t, err)
}

func TestCheckRequiredCookies(t *testing.T) {
	tests := []struct {
		name    string
		cookies []Cookie
		wantErr string
	}{
		{"missing xs", []Cookie{{Name: "c_user", Value: "1"}, {Name: "datr", Value: "d"}}, "missing required cookie: xs"},
		{"empty datr", []Cookie{{Name: "c_user", Value: "1"}, {Name: "xs", Value: "x"}, {Name: "datr"}}, "empty value for required cookie: datr"},
		{"non numeric user", []Cookie{{Name: "c_user", Value: "abc"}, {Name: "xs", Value: "x"}, {Name: "datr", Value: "d"}}, "c_user cookie should be numeric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRequiredCookies(tt.cookies)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAuthManagerLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(browserExport), 0600))

	am, err := NewAuthManager(path, "https://www.facebook.com", "test-agent", quietLogger())
	require.NoError(t, err)
	require.NoError(t, am.LoadCookies())
	assert.Len(t, am.Cookies(), 3)
	assert.NoError(t, am.ValidateFormat())

	base, _ := url.Parse("https://www.facebook.com")
	assert.Len(t, am.Jar().Cookies(base), 3)

	missing, err := NewAuthManager(filepath.Join(t.TempDir(), "nope.json"), "https://www.facebook.com", "test-agent", quietLogger())
	require.NoError(t, err)
	assert.Error(t, missing.LoadCookies())
}
