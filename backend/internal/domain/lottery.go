// backend/internal/domain/lottery.go
package domain

import (
	"fmt"
	"strings"
	"time"
)

type LotteryType string

const (
	Rental LotteryType = "rental"
	Sale   LotteryType = "sale"
)

// LotteryTypes lists every type in the order the portal shows its tabs.
var LotteryTypes = []LotteryType{Rental, Sale}

func ParseLotteryType(s string) (LotteryType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rental", "rentals":
		return Rental, nil
	case "sale", "sales":
		return Sale, nil
	}
	return "", fmt.Errorf("unknown lottery type %q", s)
}

// TabLabel is the text of the portal tab listing lotteries of this type.
func (t LotteryType) TabLabel() string {
	if t == Sale {
		return "Sales"
	}
	return "Rentals"
}

type Lottery struct {
	ID               string      `json:"id" bson:"_id"`
	Title            string      `json:"title" bson:"title"`
	Type             LotteryType `json:"lottery_type" bson:"lottery_type"`
	Location         string      `json:"location,omitempty" bson:"location,omitempty"`
	UnitsAvailable   *int        `json:"units_available" bson:"units_available,omitempty"`
	DaysUntilClosing *int        `json:"days_until_closing" bson:"days_until_closing,omitempty"`
	MinIncome        *int        `json:"min_income,omitempty" bson:"min_income,omitempty"`
	MaxIncome        *int        `json:"max_income,omitempty" bson:"max_income,omitempty"`
	IsApplied        bool        `json:"is_applied" bson:"is_applied"`
	URL              string      `json:"url" bson:"url"`
	ScrapedAt        time.Time   `json:"scraped_at" bson:"scraped_at"`
}

// EligibleFor reports whether income falls inside the lottery's income
// range, both ends inclusive. An unknown range never excludes anyone.
func (l Lottery) EligibleFor(income int) bool {
	return IncomeInRange(income, l.MinIncome, l.MaxIncome)
}

func IncomeInRange(income int, min, max *int) bool {
	if min == nil || max == nil {
		return true
	}
	return *min <= income && income <= *max
}
