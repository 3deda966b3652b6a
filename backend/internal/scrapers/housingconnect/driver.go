package housingconnect

import (
	"context"
	"errors"
)

var (
	ErrElementNotFound    = errors.New("element not found")
	ErrTimeout            = errors.New("timed out waiting for page")
	ErrMissingCredentials = errors.New("USERNAME and PASSWORD must be set")
	ErrLoginLinkNotFound  = errors.New("could not find login link")
	ErrLoginFormNotFound  = errors.New("could not find login form fields")
	ErrLoginFailed        = errors.New("login failed")
	ErrPageLinkNotFound   = errors.New("pagination link not found")
)

// Driver is the set of browser actions the bot needs. Reads go through HTML
// snapshots so that one Locator grammar serves both actions and checks.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	URL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Hover(ctx context.Context, loc Locator) error
	Click(ctx context.Context, loc Locator) error
	Fill(ctx context.Context, loc Locator, value string) error
	PressEnter(ctx context.Context, loc Locator) error
	Close() error
}
