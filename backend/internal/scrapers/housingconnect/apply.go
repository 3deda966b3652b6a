package housingconnect

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
)

func dollars(n int) string {
	return "$" + humanize.Comma(int64(n))
}

// ApplyToCard opens the card at index on the current list page and applies
// if the user is eligible. Problems with a single lottery are reported in
// the result; the error is reserved for the browser or context failing.
func (b *Bot) ApplyToCard(ctx context.Context, index int, t domain.LotteryType) (domain.ApplicationResult, error) {
	res := domain.ApplicationResult{
		Title:     "Unknown",
		Type:      t,
		CardIndex: index,
		Eligible:  true,
		Status:    domain.StatusFailed,
	}
	finish := func() (domain.ApplicationResult, error) {
		res.ProcessedAt = b.now()
		return res, nil
	}

	current, err := b.currentURL(ctx)
	if err != nil {
		return res, err
	}
	if !b.onListPage(current) {
		if err := b.NavigateToLotteries(ctx, t); err != nil {
			return res, err
		}
	}

	doc, err := b.snapshot(ctx)
	if err != nil {
		return res, err
	}
	cards := CardSummaries(doc)
	if index < 0 || index >= len(cards) {
		res.Message = fmt.Sprintf("Card index %d out of range", index)
		return finish()
	}
	card := cards[index]
	res.Title = card.Title
	res.LotteryID = card.ID
	log := b.log.With("title", card.Title, "id", card.ID)
	log.Info("processing lottery")

	if card.Applied {
		res.Status = domain.StatusAlreadyApplied
		res.Message = "Already applied"
		log.Info("already applied, skipping")
		return finish()
	}

	if err := b.driver.Hover(ctx, cardScope(index)); err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		log.Warn("could not hover card", "error", err)
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.Keystroke); err != nil {
		return res, err
	}
	view := viewDetailsLocator(index)
	if !view.Exists(doc) {
		res.Message = "Could not find View Details button"
		log.Warn(res.Message)
		return finish()
	}
	if err := b.driver.Click(ctx, view); err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Message = "Could not open lottery details: " + err.Error()
		log.Warn(res.Message)
		return finish()
	}

	doc, err = b.waitForDetail(ctx)
	if err != nil {
		return res, err
	}

	if DetailShowsApplied(doc) {
		res.Status = domain.StatusAlreadyApplied
		res.Message = "Already applied"
		log.Info("already applied (detail page)")
		return finish()
	}

	res.MinIncome, res.MaxIncome = ParseIncomeRange(bodyText(doc))
	if res.MinIncome != nil && res.MaxIncome != nil {
		income := b.opts.AnnualIncome
		if !domain.IncomeInRange(income, res.MinIncome, res.MaxIncome) {
			res.Eligible = false
			res.Status = domain.StatusNotEligible
			res.Message = fmt.Sprintf("Not eligible: %s outside %s - %s",
				dollars(income), dollars(*res.MinIncome), dollars(*res.MaxIncome))
			log.Info(res.Message)
			return finish()
		}
		log.Info("eligible", "income", dollars(income),
			"min", dollars(*res.MinIncome), "max", dollars(*res.MaxIncome))
	}

	apply, ok := firstExisting(doc, applyNowLocators...)
	if !ok {
		res.Message = "Could not find Apply Now button"
		log.Warn(res.Message)
		return finish()
	}
	log.Info("clicking apply now")
	if err := b.driver.Click(ctx, apply); err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Message = "Could not click Apply Now: " + err.Error()
		log.Warn(res.Message)
		return finish()
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.ApplyClick); err != nil {
		return res, err
	}

	if err := b.confirmApplication(ctx); err != nil {
		return res, err
	}

	doc, err = b.snapshot(ctx)
	if err != nil {
		return res, err
	}
	current, err = b.currentURL(ctx)
	if err != nil {
		return res, err
	}
	lower := strings.ToLower(current)
	switch {
	case appliedButton.Exists(doc):
		res.Status = domain.StatusApplied
		res.Message = "Successfully applied!"
		log.Info(res.Message)
	case strings.Contains(lower, "login") || strings.Contains(lower, "id4/account"):
		res.Status = domain.StatusFailed
		res.Message = "Redirected to login - not logged in"
		log.Warn(res.Message)
	default:
		res.Status = domain.StatusUnverified
		res.Message = "Application submitted (unverified)"
		log.Info(res.Message)
	}

	res.ProcessedAt = b.now()
	if err := b.returnToList(ctx, t); err != nil {
		return res, err
	}
	return res, nil
}

// waitForDetail waits for the detail page to render, reloading once when
// the portal is slow, and then lets the page settle.
func (b *Bot) waitForDetail(ctx context.Context) (*goquery.Document, error) {
	b.log.Debug("waiting for detail page")
	if err := b.pacer.Pause(ctx, b.opts.Delays.DetailLoad); err != nil {
		return nil, err
	}

	_, err := b.waitFor(ctx, b.opts.Waits.Detail, applyNowLocators[1], appliedButton, incomeIndicator)
	if errors.Is(err, ErrTimeout) {
		b.log.Warn("timeout waiting for detail page, reloading")
		if err := b.reload(ctx); err != nil {
			return nil, err
		}
		if err := b.pacer.Pause(ctx, b.opts.Delays.DetailRetry); err != nil {
			return nil, err
		}
		_, err = b.waitFor(ctx, b.opts.Waits.Detail, applyNowLocators[1], appliedButton)
		if errors.Is(err, ErrTimeout) {
			b.log.Warn("detail page still loading, giving extra time")
			err = b.pacer.Pause(ctx, b.opts.Delays.DetailGrace)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := b.pacer.Pause(ctx, b.opts.Delays.DetailSettle); err != nil {
		return nil, err
	}
	return b.snapshot(ctx)
}

// confirmApplication ticks the agreement box and submits when the portal
// shows its confirmation dialog. Some lotteries have no dialog.
func (b *Bot) confirmApplication(ctx context.Context) error {
	doc, err := b.waitFor(ctx, b.opts.Waits.Dialog, checkboxLocator)
	if errors.Is(err, ErrTimeout) {
		b.log.Info("no confirmation dialog found")
		return nil
	}
	if err != nil {
		return err
	}

	// The label next to the box contains a link, so click the box itself.
	if err := b.driver.Click(ctx, checkboxLocator); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.log.Warn("could not tick agreement checkbox", "error", err)
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.Keystroke); err != nil {
		return err
	}

	submit, ok := firstExisting(doc, submitLocators...)
	if !ok {
		b.log.Warn("confirmation dialog has no submit button")
		return nil
	}
	b.log.Info("submitting application")
	if err := b.driver.Click(ctx, submit); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.log.Warn("could not click submit", "error", err)
		return nil
	}
	return b.pacer.Pause(ctx, b.opts.Delays.Submit)
}

// returnToList goes back to the search page, reloading once if the cards do
// not render in time, and reselects the tab.
func (b *Bot) returnToList(ctx context.Context, t domain.LotteryType) error {
	b.log.Debug("navigating back to list")
	if err := b.open(ctx, b.opts.LotteriesURL); err != nil {
		return err
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.ListReturn); err != nil {
		return err
	}

	_, err := b.waitFor(ctx, b.opts.Waits.List, cardLocator)
	if errors.Is(err, ErrTimeout) {
		b.log.Warn("timeout on lottery list, reloading")
		if err := b.reload(ctx); err != nil {
			return err
		}
		if err := b.pacer.Pause(ctx, b.opts.Delays.DetailRetry); err != nil {
			return err
		}
		_, err = b.waitFor(ctx, b.opts.Waits.ListRetry, cardLocator)
		if errors.Is(err, ErrTimeout) {
			return fmt.Errorf("lottery list did not load: %w", err)
		}
	}
	if err != nil {
		return err
	}
	return b.selectTab(ctx, t, b.opts.Delays.ListTab)
}

// ApplyAll applies to every eligible lottery of type t. Cards are read
// before any navigation happens on a page, titles already handled in this
// run are skipped, and cards marked Applied are never opened.
func (b *Bot) ApplyAll(ctx context.Context, t domain.LotteryType) ([]domain.ApplicationResult, error) {
	b.log.Info("applying to all lotteries", "type", t, "income", dollars(b.opts.AnnualIncome))
	if err := b.NavigateToLotteries(ctx, t); err != nil {
		return nil, err
	}
	total, err := b.TotalPages(ctx)
	if err != nil {
		return nil, err
	}

	var results []domain.ApplicationResult
	processed := make(map[string]bool)
	for page := 1; page <= total; page++ {
		b.log.Info("processing page", "page", page, "of", total)
		if page > 1 {
			if err := b.GoToPage(ctx, page); err != nil {
				if ctx.Err() != nil {
					return results, ctx.Err()
				}
				b.log.Warn("could not navigate to page", "page", page, "error", err)
			}
			if err := b.pacer.Pause(ctx, b.opts.Delays.PageTurn); err != nil {
				return results, err
			}
		}

		doc, err := b.snapshot(ctx)
		if err != nil {
			return results, err
		}
		cards := CardSummaries(doc)
		b.log.Info("found lotteries on page", "page", page, "count", len(cards))

		for _, card := range cards {
			if processed[card.Title] {
				b.log.Debug("skipping duplicate", "title", card.Title)
				continue
			}
			processed[card.Title] = true

			if card.Applied {
				b.log.Info("already applied, skipping", "title", card.Title)
				results = append(results, domain.ApplicationResult{
					LotteryID:   card.ID,
					Title:       card.Title,
					Type:        t,
					Status:      domain.StatusAlreadyApplied,
					Eligible:    true,
					Message:     "Already applied",
					Page:        page,
					CardIndex:   card.Index,
					ProcessedAt: b.now(),
				})
				continue
			}

			if err := b.reopenPage(ctx, t, page); err != nil {
				return results, err
			}
			res, err := b.ApplyToCard(ctx, card.Index, t)
			if err == nil || !res.ProcessedAt.IsZero() {
				res.Page = page
				if res.LotteryID == "" {
					res.LotteryID = card.ID
				}
				results = append(results, res)
			}
			if err != nil {
				return results, err
			}
			if err := b.pacer.Pause(ctx, b.opts.Delays.BetweenCards); err != nil {
				return results, err
			}
		}
	}

	s := domain.Summarize(results)
	b.log.Info("application run finished",
		"applied", s.Applied,
		"already_applied", s.AlreadyApplied,
		"not_eligible", s.NotEligible,
		"failed", s.Failed,
		"total", s.Total)
	return results, nil
}

func (b *Bot) reopenPage(ctx context.Context, t domain.LotteryType, page int) error {
	if err := b.NavigateToLotteries(ctx, t); err != nil {
		return err
	}
	if err := b.pacer.Pause(ctx, b.opts.Delays.RenavigatePage); err != nil {
		return err
	}
	if page == 1 {
		return nil
	}
	if err := b.GoToPage(ctx, page); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.log.Warn("could not navigate to page", "page", page, "error", err)
	}
	return b.pacer.Pause(ctx, b.opts.Delays.RenavigatePage)
}
