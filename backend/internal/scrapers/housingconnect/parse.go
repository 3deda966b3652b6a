package housingconnect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
)

var (
	photoIDRe    = regexp.MustCompile(`/photos/(\d+)\.`)
	unitsRe      = regexp.MustCompile(`(\d+)\s*Unit`)
	daysRe       = regexp.MustCompile(`(?i)(\d+)\s*days?`)
	paginationRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
	incomeRe     = regexp.MustCompile(`(?i)Eligible Income:?\s*\$?([\d,]+)\s*-\s*\$?([\d,]+)`)
)

// CardSummary is what the list page says about a card before it is opened.
type CardSummary struct {
	Index   int
	ID      string
	Title   string
	Applied bool
}

// ParseLotteries extracts every card with a recognizable lottery ID.
func ParseLotteries(doc *goquery.Document, t domain.LotteryType, detailURL string) []domain.Lottery {
	var lotteries []domain.Lottery
	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		if l, ok := ParseCard(card, t, detailURL); ok {
			lotteries = append(lotteries, l)
		}
	})
	return lotteries
}

// ParseCard reads one app-lottery-grid-card element. Cards whose photo URL
// carries no ID are skipped.
func ParseCard(card *goquery.Selection, t domain.LotteryType, detailURL string) (domain.Lottery, bool) {
	id := cardID(card)
	if id == "" {
		return domain.Lottery{}, false
	}

	l := domain.Lottery{
		ID:        id,
		Title:     cardTitle(card),
		Type:      t,
		IsApplied: cardApplied(card),
		URL:       detailURL + id,
	}
	if loc := card.Find(".location").First(); loc.Length() > 0 {
		l.Location = strings.TrimSpace(loc.Text())
	}
	if units := card.Find(".pb-xs.title-h6").First(); units.Length() > 0 {
		l.UnitsAvailable = firstInt(unitsRe, units.Text())
	}
	if closing := card.Find(".prefix.title-h4").First(); closing.Length() > 0 {
		l.DaysUntilClosing = firstInt(daysRe, closing.Text())
	}
	return l, true
}

// CardSummaries lists every card on the page, including ones without an ID,
// so that indexes line up with what the browser sees.
func CardSummaries(doc *goquery.Document) []CardSummary {
	var cards []CardSummary
	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		title := cardTitle(card)
		if title == "Unknown" {
			title = fmt.Sprintf("Unknown_%d", i)
		}
		cards = append(cards, CardSummary{
			Index:   i,
			ID:      cardID(card),
			Title:   title,
			Applied: cardApplied(card),
		})
	})
	return cards
}

func cardID(card *goquery.Selection) string {
	src, ok := card.Find("img.card-image").First().Attr("src")
	if !ok {
		return ""
	}
	m := photoIDRe.FindStringSubmatch(src)
	if m == nil {
		return ""
	}
	return m[1]
}

func cardTitle(card *goquery.Selection) string {
	title := card.Find(".title.title-h3").First()
	if title.Length() == 0 {
		return "Unknown"
	}
	return strings.TrimSpace(title.Text())
}

func cardApplied(card *goquery.Selection) bool {
	btn := card.Find("button.btn-grey-90").First()
	return btn.Length() > 0 && strings.Contains(btn.Text(), "Applied")
}

// TotalPages reads the "1 / 4" pagination label, defaulting to one page.
func TotalPages(doc *goquery.Document) int {
	label := paginationText.Find(doc.Selection).First()
	if label.Length() == 0 {
		return 1
	}
	m := paginationRe.FindStringSubmatch(label.Text())
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// FirstCardImage is used to notice when the list re-renders.
func FirstCardImage(doc *goquery.Document) string {
	return firstCardImage.Find(doc.Selection).First().AttrOr("src", "")
}

// ParseIncomeRange finds "Eligible Income: $32,195 - $226,800". Both bounds
// are nil when the text has no such range.
func ParseIncomeRange(text string) (min, max *int) {
	m := incomeRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	lo, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil, nil
	}
	hi, err := strconv.Atoi(strings.ReplaceAll(m[2], ",", ""))
	if err != nil {
		return nil, nil
	}
	return &lo, &hi
}

// DetailShowsApplied checks the detail page for any sign of an existing
// application.
func DetailShowsApplied(doc *goquery.Document) bool {
	if appliedButton.Exists(doc) || anyAppliedButton.Exists(doc) {
		return true
	}
	body := bodyText(doc)
	return strings.Contains(body, "You have already applied") ||
		strings.Contains(body, "Application Submitted")
}

func bodyText(doc *goquery.Document) string {
	return doc.Find("body").Text()
}

func firstInt(re *regexp.Regexp, s string) *int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
