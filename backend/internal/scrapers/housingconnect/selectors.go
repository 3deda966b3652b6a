package housingconnect

import (
	"fmt"
	"regexp"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
)

const cardSelector = "app-lottery-grid-card"

var (
	cardLocator      = Locator{CSS: cardSelector}
	firstCardImage   = Locator{CSS: cardSelector + " img.card-image"}
	paginationText   = Locator{CSS: ".small-screen"}
	checkboxLocator  = Locator{CSS: ".mat-checkbox-inner-container"}
	appliedButton    = Locator{CSS: "button.btn-grey-90", Text: "Applied"}
	anyAppliedButton = Locator{CSS: "button", Text: "Applied"}
	incomeIndicator  = Locator{CSS: "div", Text: "Eligible Income"}

	applyNowLocators = []Locator{
		{CSS: "a.btn.btn-primary", Text: "Apply Now"},
		{CSS: "a.btn-primary", Text: "Apply Now"},
		{CSS: "a", Text: "Apply Now"},
	}
	submitLocators = []Locator{
		{CSS: "button", Text: "Submit"},
		{CSS: "span", Text: "Submit"},
	}

	loginLink     = Locator{CSS: "a", Text: "Log In|Login|Sign In"}
	emailInput    = Locator{CSS: `input[type="email"], input[type="text"], input[name="email"], input#email`}
	passwordInput = Locator{CSS: `input[type="password"]`}
	loginSubmits  = []Locator{
		{CSS: `button[type="submit"], input[type="submit"]`},
		{CSS: "button", Text: "Log In|Login"},
	}
)

func tabLocators(t domain.LotteryType) []Locator {
	exact := "^" + regexp.QuoteMeta(t.TabLabel()) + "$"
	return []Locator{
		{CSS: "span.font-lg", Text: exact},
		{CSS: "a, button, span", Text: exact},
	}
}

// pageLinkLocator targets the visible label inside a pagination link; the
// link text itself starts with a screen-reader "page " prefix.
func pageLinkLocator(n int) Locator {
	return Locator{CSS: ".ngx-pagination li a span:not(.show-for-sr)", Text: fmt.Sprintf(`^%d$`, n)}
}

func viewDetailsLocator(index int) Locator {
	return Locator{Scope: cardSelector, Nth: index, CSS: "button", Text: "View Details"}
}

func cardScope(index int) Locator {
	return Locator{Scope: cardSelector, Nth: index}
}
