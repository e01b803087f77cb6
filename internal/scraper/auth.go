package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoCookies      = errors.New("no facebook cookies found")
	ErrSessionInvalid = errors.New("facebook session is not authenticated")
)

// requiredCookies are the session cookies a logged in browser carries.
var requiredCookies = []string{"c_user", "xs", "datr"}

type Cookie struct {
	Name     string       `json:"name"`
	Value    string       `json:"value"`
	Domain   string       `json:"domain"`
	Path     string       `json:"path"`
	Secure   bool         `json:"secure"`
	HTTPOnly bool         `json:"httpOnly"`
	SameSite string       `json:"sameSite,omitempty"`
	Expires  CookieExpiry `json:"expires,omitempty"`
}

// CookieExpiry reads both browser exports (unix seconds, -1 for session
// cookies) and RFC3339 strings.
type CookieExpiry struct {
	time.Time
}

func (ce *CookieExpiry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid cookie expiry %q: %w", s, err)
		}
		ce.Time = t
		return nil
	}

	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("invalid cookie expiry: %w", err)
	}
	if secs > 0 {
		ce.Time = time.Unix(int64(secs), 0)
	}
	return nil
}

func (ce CookieExpiry) MarshalJSON() ([]byte, error) {
	if ce.IsZero() {
		return []byte("-1"), nil
	}
	return json.Marshal(ce.Unix())
}

// AuthManager owns the exported browser cookies of the scraping account.
type AuthManager struct {
	cookiesFile string
	baseURL     string
	userAgent   string
	cookies     []Cookie
	jar         *cookiejar.Jar
	logger      *logrus.Logger
}

func NewAuthManager(cookiesFile, baseURL, userAgent string, logger *logrus.Logger) (*AuthManager, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &AuthManager{
		cookiesFile: cookiesFile,
		baseURL:     baseURL,
		userAgent:   userAgent,
		jar:         jar,
		logger:      logger,
	}, nil
}

// LoadCookies reads the cookie file and fills the jar.
func (am *AuthManager) LoadCookies() error {
	am.logger.Infof("Loading cookies from %s", am.cookiesFile)

	data, err := os.ReadFile(am.cookiesFile)
	if err != nil {
		return fmt.Errorf("failed to read cookies file: %w", err)
	}

	cookies, err := ParseCookies(data)
	if err != nil {
		return err
	}

	base, err := url.Parse(am.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base url: %w", err)
	}

	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		httpCookies = append(httpCookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
			Expires:  c.Expires.Time,
		})
	}
	am.jar.SetCookies(base, httpCookies)
	am.cookies = cookies

	am.logger.Infof("Loaded %d cookies", len(cookies))
	return nil
}

func (am *AuthManager) Cookies() []Cookie {
	return am.cookies
}

func (am *AuthManager) Jar() http.CookieJar {
	return am.jar
}

// ValidateFormat checks that the session cookies are present and sane.
func (am *AuthManager) ValidateFormat() error {
	return CheckRequiredCookies(am.cookies)
}

// ValidateSession requests the notifications page with the loaded cookies
// and fails when facebook answers with its login or checkpoint page.
func (am *AuthManager) ValidateSession(ctx context.Context) error {
	client := resty.New().
		SetCookieJar(am.jar).
		SetHeader("User-Agent", am.userAgent).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetTimeout(30 * time.Second)

	resp, err := client.R().
		SetContext(ctx).
		Get(strings.TrimRight(am.baseURL, "/") + "/notifications")
	if err != nil {
		return fmt.Errorf("failed to validate session: %w", err)
	}

	final := resp.RawResponse.Request.URL.String()
	am.logger.WithFields(logrus.Fields{
		"status": resp.StatusCode(),
		"url":    final,
	}).Info("Validation response")

	if strings.Contains(final, "login") {
		return fmt.Errorf("%w: redirected to login page", ErrSessionInvalid)
	}
	if strings.Contains(final, "checkpoint") {
		return fmt.Errorf("%w: account requires checkpoint verification", ErrSessionInvalid)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: status code %d", ErrSessionInvalid, resp.StatusCode())
	}

	am.logger.Info("Session validated successfully")
	return nil
}

// ParseCookies accepts a plain cookie array as exported by a browser, or
// an object mapping "facebook.com" to that array.
func ParseCookies(data []byte) ([]Cookie, error) {
	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		var byDomain map[string][]Cookie
		if err2 := json.Unmarshal(data, &byDomain); err2 != nil {
			return nil, fmt.Errorf("failed to parse cookies file: %w", err)
		}
		cookies = byDomain["facebook.com"]
	}

	var fb []Cookie
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		if c.Domain == "" {
			c.Domain = ".facebook.com"
		}
		if c.Path == "" {
			c.Path = "/"
		}
		if strings.HasSuffix(c.Domain, "facebook.com") {
			fb = append(fb, c)
		}
	}

	if len(fb) == 0 {
		return nil, ErrNoCookies
	}
	return fb, nil
}

func CheckRequiredCookies(cookies []Cookie) error {
	byName := make(map[string]Cookie, len(cookies))
	for _, c := range cookies {
		byName[c.Name] = c
	}

	for _, name := range requiredCookies {
		c, ok := byName[name]
		if !ok {
			return fmt.Errorf("missing required cookie: %s", name)
		}
		if c.Value == "" {
			return fmt.Errorf("empty value for required cookie: %s", name)
		}
		if name == "c_user" && !isNumeric(c.Value) {
			return fmt.Errorf("c_user cookie should be numeric, got: %s", c.Value)
		}
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
