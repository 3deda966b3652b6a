package housingconnect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

type RodOptions struct {
	Bin            string
	Headless       bool
	SlowMotion     time.Duration
	ViewportWidth  int
	ViewportHeight int
	DefaultTimeout time.Duration
	UserAgent      string
}

// RodDriver drives a locally launched Chromium through go-rod.
type RodDriver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
}

type elementFinder interface {
	Element(selector string) (*rod.Element, error)
	ElementR(selector, jsRegex string) (*rod.Element, error)
}

func LaunchRod(ctx context.Context, opts RodOptions) (*RodDriver, error) {
	l := launcher.New().Context(ctx).Headless(opts.Headless)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).SlowMotion(opts.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("create page: %w", err)
	}

	width, height := opts.ViewportWidth, opts.ViewportHeight
	if width == 0 || height == 0 {
		width, height = 1280, 800
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("set viewport: %w", err)
	}
	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			_ = browser.Close()
			l.Kill()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	timeout := opts.DefaultTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &RodDriver{
		launcher: l,
		browser:  browser,
		page:     page,
		timeout:  timeout,
	}, nil
}

func (d *RodDriver) withTimeout(ctx context.Context) (*rod.Page, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(ctx, d.timeout)
	return d.page.Context(tctx), cancel
}

func (d *RodDriver) Navigate(ctx context.Context, url string) error {
	p, cancel := d.withTimeout(ctx)
	defer cancel()
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return p.WaitLoad()
}

func (d *RodDriver) Reload(ctx context.Context) error {
	p, cancel := d.withTimeout(ctx)
	defer cancel()
	if err := p.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return p.WaitLoad()
}

func (d *RodDriver) URL(ctx context.Context) (string, error) {
	p, cancel := d.withTimeout(ctx)
	defer cancel()
	info, err := p.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (d *RodDriver) HTML(ctx context.Context) (string, error) {
	p, cancel := d.withTimeout(ctx)
	defer cancel()
	return p.HTML()
}

func (d *RodDriver) element(p *rod.Page, loc Locator) (*rod.Element, error) {
	var parent elementFinder = p
	if loc.Scope != "" {
		scopes, err := p.Elements(loc.Scope)
		if err != nil {
			return nil, err
		}
		if loc.Nth < 0 || loc.Nth >= len(scopes) {
			return nil, fmt.Errorf("%w: %s", ErrElementNotFound, loc)
		}
		if loc.CSS == "" {
			return scopes[loc.Nth], nil
		}
		parent = scopes[loc.Nth]
	}

	var (
		el  *rod.Element
		err error
	)
	if loc.Text != "" {
		el, err = parent.ElementR(loc.CSS, loc.Text)
	} else {
		el, err = parent.Element(loc.CSS)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, loc)
	}
	return el, err
}

func (d *RodDriver) Hover(ctx context.Context, loc Locator) error {
	p, cancel := d.withTimeout(ctx)
	defer cancel()
	el, err := d.element(p, loc)
	if err != nil {
		return err
	}
	return el.Hover()
}

func (d *RodDriver) Click(ctx context.Context, loc Locator) error {
	p, cancel := d.withTimeout(ctx)
	defer cancel()
	el, err := d.element(p, loc)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (d *RodDriver) Fill(ctx context.Context, loc Locator, value string) error {
	p, cancel := d.withTimeout(ctx)
	defer cancel()
	el, err := d.element(p, loc)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

func (d *RodDriver) PressEnter(ctx context.Context, loc Locator) error {
	p, cancel := d.withTimeout(ctx)
	defer cancel()
	el, err := d.element(p, loc)
	if err != nil {
		return err
	}
	return el.Type(input.Enter)
}

func (d *RodDriver) Close() error {
	var err error
	if d.browser != nil {
		err = d.browser.Close()
	}
	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher.Cleanup()
	}
	return err
}
