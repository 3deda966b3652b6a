package housingconnect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Locator addresses an element on the page. When Scope is set the search
// happens inside the Nth element matching Scope. Text is a regular
// expression the element's whitespace-normalized text has to match.
type Locator struct {
	Scope string
	Nth   int
	CSS   string
	Text  string
}

func (l Locator) String() string {
	var b strings.Builder
	if l.Scope != "" {
		fmt.Fprintf(&b, "%s[%d] ", l.Scope, l.Nth)
	}
	b.WriteString(l.CSS)
	if l.Text != "" {
		fmt.Fprintf(&b, " /%s/", l.Text)
	}
	return b.String()
}

// Find resolves the locator against a parsed snapshot of the page.
func (l Locator) Find(root *goquery.Selection) *goquery.Selection {
	if l.Scope != "" {
		root = root.Find(l.Scope).Eq(l.Nth)
		if l.CSS == "" {
			return root
		}
	}
	sel := root.Find(l.CSS)
	if l.Text == "" {
		return sel
	}
	re, err := regexp.Compile(l.Text)
	if err != nil {
		return sel.Slice(0, 0)
	}
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return re.MatchString(normalizeSpace(s.Text()))
	})
}

// Exists reports whether the locator matches anything in the snapshot.
func (l Locator) Exists(doc *goquery.Document) bool {
	return l.Find(doc.Selection).Length() > 0
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
