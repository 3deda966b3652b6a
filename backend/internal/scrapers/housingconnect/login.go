package housingconnect

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const authLoginMarker = "id4/account/login"

// Login signs in through the external identity provider the portal
// redirects to. The session is considered live once the browser is back on
// the portal and off the login form.
func (b *Bot) Login(ctx context.Context) error {
	if b.opts.Username == "" || b.opts.Password == "" {
		return ErrMissingCredentials
	}

	b.log.Info("opening portal", "url", b.opts.BaseURL)
	if err := b.open(ctx, b.opts.BaseURL); err != nil {
		return err
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.PageLoad); err != nil {
		return err
	}

	doc, err := b.snapshot(ctx)
	if err != nil {
		return err
	}
	if !loginLink.Exists(doc) {
		return ErrLoginLinkNotFound
	}
	if err := b.driver.Click(ctx, loginLink); err != nil {
		return fmt.Errorf("click login link: %w", err)
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.PageLoad); err != nil {
		return err
	}
	if u, err := b.currentURL(ctx); err == nil {
		b.log.Debug("redirected to identity provider", "url", truncate(u, 60))
	}

	doc, err = b.waitFor(ctx, b.opts.Waits.LoginForm, emailInput)
	if errors.Is(err, ErrTimeout) {
		return ErrLoginFormNotFound
	}
	if err != nil {
		return err
	}
	if !passwordInput.Exists(doc) {
		return ErrLoginFormNotFound
	}

	b.log.Info("filling login form")
	if err := b.driver.Fill(ctx, emailInput, b.opts.Username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.Keystroke); err != nil {
		return err
	}
	if err := b.driver.Fill(ctx, passwordInput, b.opts.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.Keystroke); err != nil {
		return err
	}

	if submit, ok := firstExisting(doc, loginSubmits...); ok {
		err = b.driver.Click(ctx, submit)
	} else {
		err = b.driver.PressEnter(ctx, passwordInput)
	}
	if err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.LoginRedirect); err != nil {
		return err
	}

	current, err := b.currentURL(ctx)
	if err != nil {
		return err
	}
	if !b.loggedIn(current) {
		return fmt.Errorf("%w: ended on %s", ErrLoginFailed, truncate(current, 60))
	}
	b.log.Info("login successful")
	return nil
}

func (b *Bot) loggedIn(current string) bool {
	return strings.Contains(current, portalMarker(b.opts.BaseURL)) &&
		!strings.Contains(current, authLoginMarker)
}

// portalMarker strips the scheme so http/https redirects both count.
func portalMarker(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Host + strings.TrimRight(u.Path, "/")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
