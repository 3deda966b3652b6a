package housingconnect

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

const (
	testBase      = "https://portal.test/PublicWeb"
	testLotteries = testBase + "/search-lotteries"
	testDetail    = testBase + "/lottery-details/"
)

// fakeDriver serves canned HTML and lets each test script what a click does.
type fakeDriver struct {
	url     string
	html    string
	pages   map[string]string
	onClick func(f *fakeDriver, loc Locator)
	onEnter func(f *fakeDriver)

	// hoverErr makes every Hover fail.
	hoverErr error

	clicks  []Locator
	hovers  []Locator
	fills   map[string]string
	entered int
	reloads int
	closed  bool
}

func newFakeDriver(pages map[string]string) *fakeDriver {
	return &fakeDriver{pages: pages, fills: make(map[string]string)}
}

func (f *fakeDriver) show(url, html string) {
	f.url = url
	f.html = html
}

func (f *fakeDriver) Navigate(_ context.Context, url string) error {
	html, ok := f.pages[url]
	if !ok {
		html = "<html><body></body></html>"
	}
	f.show(url, html)
	return nil
}

func (f *fakeDriver) Reload(context.Context) error {
	f.reloads++
	return nil
}

func (f *fakeDriver) URL(context.Context) (string, error)  { return f.url, nil }
func (f *fakeDriver) HTML(context.Context) (string, error) { return f.html, nil }

func (f *fakeDriver) resolve(loc Locator) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.html))
	if err != nil {
		return err
	}
	if loc.Find(doc.Selection).Length() == 0 {
		return fmt.Errorf("%w: %s", ErrElementNotFound, loc)
	}
	return nil
}

func (f *fakeDriver) Hover(_ context.Context, loc Locator) error {
	if f.hoverErr != nil {
		return f.hoverErr
	}
	if err := f.resolve(loc); err != nil {
		return err
	}
	f.hovers = append(f.hovers, loc)
	return nil
}

func (f *fakeDriver) Click(_ context.Context, loc Locator) error {
	if err := f.resolve(loc); err != nil {
		return err
	}
	f.clicks = append(f.clicks, loc)
	if f.onClick != nil {
		f.onClick(f, loc)
	}
	return nil
}

func (f *fakeDriver) Fill(_ context.Context, loc Locator, value string) error {
	if err := f.resolve(loc); err != nil {
		return err
	}
	f.fills[loc.CSS] = value
	return nil
}

func (f *fakeDriver) PressEnter(_ context.Context, loc Locator) error {
	if err := f.resolve(loc); err != nil {
		return err
	}
	f.entered++
	if f.onEnter != nil {
		f.onEnter(f)
	}
	return nil
}

func (f *fakeDriver) Close() error {
	f.closed = true
	return nil
}

func (f *fakeDriver) clicked(text string) int {
	n := 0
	for _, c := range f.clicks {
		if c.Text == text {
			n++
		}
	}
	return n
}

func testBot(d Driver, income int) *Bot {
	return New(d, Options{
		BaseURL:      testBase,
		Username:     "me@example.com",
		Password:     "hunter2",
		AnnualIncome: income,
	}, logger.Nop())
}

type testCard struct {
	id       string
	title    string
	location string
	units    string
	closing  string
	applied  bool
}

func cardHTML(c testCard) string {
	var b strings.Builder
	b.WriteString("<app-lottery-grid-card><div class=\"card\">")
	if c.id != "" {
		fmt.Fprintf(&b, `<img class="card-image" src="https://api.portal.test/MailTemplates/photos/%s.png">`, c.id)
	} else {
		b.WriteString(`<img class="card-image" src="https://api.portal.test/assets/placeholder.png">`)
	}
	if c.title != "" {
		fmt.Fprintf(&b, `<div class="title title-h3"> %s </div>`, c.title)
	}
	if c.location != "" {
		fmt.Fprintf(&b, `<div class="location">%s</div>`, c.location)
	}
	if c.units != "" {
		fmt.Fprintf(&b, `<div class="pb-xs title-h6">%s</div>`, c.units)
	}
	if c.closing != "" {
		fmt.Fprintf(&b, `<div class="prefix title-h4">%s</div>`, c.closing)
	}
	if c.applied {
		b.WriteString(`<button class="btn btn-grey-90">Applied</button>`)
	} else {
		b.WriteString(`<button class="btn btn-primary">View Details</button>`)
	}
	b.WriteString("</div></app-lottery-grid-card>")
	return b.String()
}

func listHTML(page, total int, cards ...testCard) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="tabs"><span class="font-lg">Rentals</span><span class="font-lg">Sales</span></div>`)
	for _, c := range cards {
		b.WriteString(cardHTML(c))
	}
	b.WriteString(paginationHTML(page, total))
	b.WriteString("</body></html>")
	return b.String()
}

// paginationHTML renders the default ngx-pagination template. The current
// page is not a link and every link carries a screen-reader prefix.
func paginationHTML(page, total int) string {
	var b strings.Builder
	b.WriteString(`<pagination-controls><ul class="ngx-pagination" role="navigation">`)
	if page > 1 {
		b.WriteString(`<li class="pagination-previous"><a tabindex="0"> Previous <span class="show-for-sr">page</span></a></li>`)
	} else {
		b.WriteString(`<li class="pagination-previous disabled"><span> Previous <span class="show-for-sr">page</span></span></li>`)
	}
	fmt.Fprintf(&b, `<li class="small-screen"> %d / %d </li>`, page, total)
	for i := 1; i <= total; i++ {
		if i == page {
			fmt.Fprintf(&b, `<li class="current"><span class="show-for-sr">You're on page </span><span>%d</span></li>`, i)
			continue
		}
		fmt.Fprintf(&b, `<li><a tabindex="0"><span class="show-for-sr">page </span><span>%d</span></a></li>`, i)
	}
	if page < total {
		b.WriteString(`<li class="pagination-next"><a tabindex="0"> Next <span class="show-for-sr">page</span></a></li>`)
	} else {
		b.WriteString(`<li class="pagination-next disabled"><span> Next <span class="show-for-sr">page</span></span></li>`)
	}
	b.WriteString("</ul></pagination-controls>")
	return b.String()
}

func detailHTML(min, max string) string {
	return fmt.Sprintf(`<html><body>
<div class="row"><div class="col-md-6">Eligible Income: %s - %s</div></div>
<a class="btn btn-primary m-btn m-btn--icon m-btn--pill mt-sm">Apply Now</a>
</body></html>`, min, max)
}

const dialogHTML = `<html><body>
<a class="btn btn-primary">Apply Now</a>
<div class="mat-dialog"><div class="mat-checkbox-inner-container"></div>
<label>I agree to the <a href="/terms">terms</a></label>
<button class="mat-button"><span>Submit</span></button></div>
</body></html>`

const appliedHTML = `<html><body><button class="btn btn-grey-90">Applied</button></body></html>`

// applyFlow wires the usual detail -> dialog -> submitted transitions.
func applyFlow(detail, afterSubmitURL, afterSubmit string) func(f *fakeDriver, loc Locator) {
	return func(f *fakeDriver, loc Locator) {
		switch loc.Text {
		case "View Details":
			f.show(testDetail+"1", detail)
		case "Apply Now":
			f.html = dialogHTML
		case "Submit":
			f.show(afterSubmitURL, afterSubmit)
		}
	}
}

func pagesFor(list string) map[string]string {
	return map[string]string{testLotteries: list}
}
