package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"facebook-post-scraper/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/firefox"
)

// SeleniumSession drives firefox through geckodriver.
type SeleniumSession struct {
	driver  selenium.WebDriver
	service *selenium.Service
	logger  *logrus.Logger
}

func NewSeleniumSession(cfg config.BrowserConfig, logger *logrus.Logger) (*SeleniumSession, error) {
	caps := selenium.Capabilities{
		"browserName": "firefox",
	}

	args := []string{"--no-sandbox", "--disable-dev-shm-usage", "--disable-gpu"}
	if cfg.Headless {
		args = append(args, "--headless")
	}
	prefs := map[string]interface{}{
		"dom.webdriver.enabled":  false,
		"useAutomationExtension": false,
	}
	if cfg.UserAgent != "" {
		prefs["general.useragent.override"] = cfg.UserAgent
	}
	caps.AddFirefox(firefox.Capabilities{
		Binary: cfg.ExecPath,
		Args:   args,
		Prefs:  prefs,
	})

	driverPath := cfg.GeckoDriverPath
	if driverPath == "" {
		driverPath = "geckodriver"
	}

	selenium.SetDebug(false)
	service, err := selenium.NewGeckoDriverService(driverPath, cfg.SeleniumPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start GeckoDriver service: %w", err)
	}

	driver, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d", cfg.SeleniumPort))
	if err != nil {
		service.Stop()
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	logger.Info("Using Firefox (selenium) for browser automation")
	return &SeleniumSession{
		driver:  driver,
		service: service,
		logger:  logger,
	}, nil
}

func (ss *SeleniumSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ss.logger.Debugf("Navigating to %s", url)
	if err := ss.driver.Get(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// SetCookies only applies to the domain of the current page, so the
// session must already be on facebook.
func (ss *SeleniumSession) SetCookies(ctx context.Context, cookies []Cookie) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, c := range cookies {
		domain := c.Domain
		if !strings.HasPrefix(domain, ".") && domain != "facebook.com" {
			domain = "." + domain
		}

		cookie := &selenium.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: domain,
			Path:   c.Path,
			Secure: c.Secure,
		}
		if !c.Expires.IsZero() {
			cookie.Expiry = uint(c.Expires.Unix())
		}

		if err := ss.driver.AddCookie(cookie); err != nil {
			ss.logger.Warnf("Failed to set cookie %s: %v", c.Name, err)
			continue
		}
		ss.logger.Debugf("Set cookie %s for domain %s", c.Name, domain)
	}
	return nil
}

func (ss *SeleniumSession) ScrollBy(ctx context.Context, pixels int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := ss.driver.ExecuteScript("window.scrollBy(0, arguments[0]);", []interface{}{pixels}); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

func (ss *SeleniumSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := ss.driver.WaitWithTimeout(func(wd selenium.WebDriver) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		_, err := wd.FindElement(selenium.ByCSSSelector, selector)
		return err == nil, nil
	}, timeout)
	if err != nil {
		return fmt.Errorf("failed waiting for %s: %w", selector, err)
	}
	return nil
}

func (ss *SeleniumSession) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	source, err := ss.driver.PageSource()
	if err != nil {
		return "", fmt.Errorf("failed to get page source: %w", err)
	}
	return source, nil
}

func (ss *SeleniumSession) Close() {
	if ss.driver != nil {
		ss.driver.Quit()
	}
	if ss.service != nil {
		ss.service.Stop()
	}
}
