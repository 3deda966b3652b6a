// backend/internal/domain/application.go
package domain

import "time"

type ApplicationStatus string

const (
	StatusApplied        ApplicationStatus = "applied"
	StatusUnverified     ApplicationStatus = "unverified"
	StatusAlreadyApplied ApplicationStatus = "already_applied"
	StatusNotEligible    ApplicationStatus = "not_eligible"
	StatusFailed         ApplicationStatus = "failed"
)

// ApplicationResult is the outcome of processing a single lottery card.
type ApplicationResult struct {
	RunID       string            `json:"run_id" bson:"run_id"`
	LotteryID   string            `json:"lottery_id,omitempty" bson:"lottery_id,omitempty"`
	Title       string            `json:"title" bson:"title"`
	Type        LotteryType       `json:"lottery_type" bson:"lottery_type"`
	Status      ApplicationStatus `json:"status" bson:"status"`
	Eligible    bool              `json:"eligible" bson:"eligible"`
	Message     string            `json:"message" bson:"message"`
	Page        int               `json:"page" bson:"page"`
	CardIndex   int               `json:"card_index" bson:"card_index"`
	MinIncome   *int              `json:"min_income,omitempty" bson:"min_income,omitempty"`
	MaxIncome   *int              `json:"max_income,omitempty" bson:"max_income,omitempty"`
	ProcessedAt time.Time         `json:"processed_at" bson:"processed_at"`
}

// Success is true for submitted applications, verified or not.
func (r ApplicationResult) Success() bool {
	return r.Status == StatusApplied || r.Status == StatusUnverified
}

func (r ApplicationResult) AlreadyApplied() bool {
	return r.Status == StatusAlreadyApplied
}

// Failed is true when nothing else explains why no application went in.
func (r ApplicationResult) Failed() bool {
	return !r.Success() && !r.AlreadyApplied() && r.Eligible
}

type Summary struct {
	Applied        int `json:"applied"`
	AlreadyApplied int `json:"already_applied"`
	NotEligible    int `json:"not_eligible"`
	Failed         int `json:"failed"`
	Total          int `json:"total"`
}

func Summarize(results []ApplicationResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Success():
			s.Applied++
		case r.AlreadyApplied():
			s.AlreadyApplied++
		}
		if !r.Eligible {
			s.NotEligible++
		}
		if r.Failed() {
			s.Failed++
		}
	}
	return s
}
