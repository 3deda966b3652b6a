// Package housingconnect automates the NYC Housing Connect portal: listing
// lotteries, logging in and applying to the ones the user qualifies for.
package housingconnect

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

const minPollInterval = 50 * time.Millisecond

type Bot struct {
	driver Driver
	opts   Options
	pacer  *Pacer
	log    *logger.Logger
	now    func() time.Time
}

func New(driver Driver, opts Options, log *logger.Logger) *Bot {
	opts = opts.withDefaults()
	return &Bot{
		driver: driver,
		opts:   opts,
		pacer:  NewPacer(opts.RequestsPerMinute, opts.Burst),
		log:    log,
		now:    time.Now,
	}
}

func (b *Bot) Username() string  { return b.opts.Username }
func (b *Bot) AnnualIncome() int { return b.opts.AnnualIncome }

func (b *Bot) Close() error {
	return b.driver.Close()
}

func (b *Bot) open(ctx context.Context, url string) error {
	if err := b.pacer.Wait(ctx); err != nil {
		return err
	}
	return b.driver.Navigate(ctx, url)
}

func (b *Bot) reload(ctx context.Context) error {
	if err := b.pacer.Wait(ctx); err != nil {
		return err
	}
	return b.driver.Reload(ctx)
}

func (b *Bot) snapshot(ctx context.Context) (*goquery.Document, error) {
	html, err := b.driver.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// waitFor polls the page until any locator matches. On timeout it returns
// the last snapshot together with ErrTimeout.
func (b *Bot) waitFor(ctx context.Context, timeout time.Duration, locs ...Locator) (*goquery.Document, error) {
	interval := b.opts.Waits.PollInterval
	if interval < minPollInterval {
		interval = minPollInterval
	}
	deadline := b.now().Add(timeout)
	for {
		doc, err := b.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		for _, loc := range locs {
			if loc.Exists(doc) {
				return doc, nil
			}
		}
		if !b.now().Before(deadline) {
			return doc, ErrTimeout
		}
		if err := sleep(ctx, interval); err != nil {
			return nil, err
		}
	}
}

func (b *Bot) currentURL(ctx context.Context) (string, error) {
	u, err := b.driver.URL(ctx)
	if err != nil {
		return "", fmt.Errorf("read url: %w", err)
	}
	return u, nil
}

func (b *Bot) onListPage(current string) bool {
	list, err := url.Parse(b.opts.LotteriesURL)
	if err != nil || list.Path == "" {
		return strings.Contains(current, "search-lotteries")
	}
	return strings.Contains(current, list.Path)
}

// firstExisting returns the first locator present in the snapshot.
func firstExisting(doc *goquery.Document, locs ...Locator) (Locator, bool) {
	for _, loc := range locs {
		if loc.Exists(doc) {
			return loc, true
		}
	}
	return Locator{}, false
}

// NavigateToLotteries opens the lottery search page and picks the tab for t.
// A missing tab is only logged; the page is still usable.
func (b *Bot) NavigateToLotteries(ctx context.Context, t domain.LotteryType) error {
	b.log.Info("navigating to lotteries", "type", t)
	if err := b.open(ctx, b.opts.LotteriesURL); err != nil {
		return err
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.PageLoad); err != nil {
		return err
	}

	if _, err := b.waitFor(ctx, b.opts.Waits.Cards, cardLocator); err != nil {
		if !errors.Is(err, ErrTimeout) {
			return err
		}
		b.log.Warn("timeout waiting for lottery cards, continuing")
	} else {
		b.log.Debug("lottery cards loaded")
	}

	return b.selectTab(ctx, t, b.opts.Delays.TabSwitch)
}

func (b *Bot) selectTab(ctx context.Context, t domain.LotteryType, settle Range) error {
	doc, err := b.snapshot(ctx)
	if err != nil {
		return err
	}
	tab, ok := firstExisting(doc, tabLocators(t)...)
	if !ok {
		b.log.Warn("lottery tab not found", "tab", t.TabLabel())
		return nil
	}
	if err := b.driver.Click(ctx, tab); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.log.Warn("could not click tab", "tab", t.TabLabel(), "error", err)
		return nil
	}
	b.log.Debug("clicked tab", "tab", t.TabLabel())
	return b.pacer.Pause(ctx, settle)
}

// TotalPages reads the page count from the pagination label.
func (b *Bot) TotalPages(ctx context.Context) (int, error) {
	doc, err := b.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return TotalPages(doc), nil
}

// GoToPage clicks the pagination link for page n and waits for the first
// card to change. A list that never visibly changes is logged, not fatal.
func (b *Bot) GoToPage(ctx context.Context, n int) error {
	doc, err := b.snapshot(ctx)
	if err != nil {
		return err
	}
	oldSrc := FirstCardImage(doc)

	link := pageLinkLocator(n)
	if !link.Exists(doc) {
		return fmt.Errorf("%w: page %d", ErrPageLinkNotFound, n)
	}
	if err := b.driver.Click(ctx, link); err != nil {
		return fmt.Errorf("go to page %d: %w", n, err)
	}

	for i := 0; i < b.opts.Waits.PageChangePolls; i++ {
		if err := sleep(ctx, b.opts.Waits.PollInterval); err != nil {
			return err
		}
		doc, err := b.snapshot(ctx)
		if err != nil {
			return err
		}
		if FirstCardImage(doc) != oldSrc {
			return sleep(ctx, b.opts.Waits.PollInterval)
		}
	}
	b.log.Warn("page content may not have changed", "page", n)
	return nil
}

// Lotteries walks every page of the tab for t and returns the lotteries in
// first-seen order, without duplicates.
func (b *Bot) Lotteries(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error) {
	if err := b.NavigateToLotteries(ctx, t); err != nil {
		return nil, err
	}
	total, err := b.TotalPages(ctx)
	if err != nil {
		return nil, err
	}
	b.log.Info("found lottery pages", "type", t, "pages", total)

	var all []domain.Lottery
	seen := make(map[string]bool)
	for page := 1; page <= total; page++ {
		if page > 1 {
			if err := b.GoToPage(ctx, page); err != nil {
				if ctx.Err() != nil {
					return all, ctx.Err()
				}
				b.log.Warn("could not navigate to page", "page", page, "error", err)
			}
		}

		found, err := b.currentLotteries(ctx, t)
		if err != nil {
			return all, err
		}
		added := 0
		for _, l := range found {
			if seen[l.ID] {
				continue
			}
			seen[l.ID] = true
			all = append(all, l)
			added++
		}
		b.log.Info("parsed lottery page", "page", page, "cards", len(found), "new", added)
	}

	b.log.Info("collected lotteries", "type", t, "count", len(all))
	return all, nil
}

func (b *Bot) currentLotteries(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error) {
	if err := b.pacer.Pause(ctx, b.opts.Delays.PageParse); err != nil {
		return nil, err
	}
	doc, err := b.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := b.now()
	lotteries := ParseLotteries(doc, t, b.opts.DetailURL)
	for i := range lotteries {
		lotteries[i].ScrapedAt = now
		b.log.Debug("lottery card", "id", lotteries[i].ID, "title", lotteries[i].Title)
	}
	return lotteries, nil
}
