// ./backend/internal/api/models/listing.go

package models

import (
	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
)

type Health struct {
	Status string `json:"status"`
}

type LotteryList struct {
	Count     int              `json:"count"`
	Lotteries []domain.Lottery `json:"lotteries"`
}

type ApplicationList struct {
	Count        int                        `json:"count"`
	Summary      domain.Summary             `json:"summary"`
	Applications []domain.ApplicationResult `json:"applications"`
}

type ScrapeSummary struct {
	Type  domain.LotteryType `json:"lottery_type"`
	Count int                `json:"count"`
	IDs   []string           `json:"ids"`
}

type ScrapeResponse struct {
	Results []ScrapeSummary `json:"results"`
}

type Error struct {
	Error string `json:"error"`
}
