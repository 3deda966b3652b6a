// backend/internal/api/handlers/scraping.go

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/api/models"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/services"
	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

type Scraper interface {
	ScrapeAndStore(ctx context.Context, types ...domain.LotteryType) ([]services.ScrapeResult, error)
}

type ScrapingHandler struct {
	scraper Scraper
	log     *logger.Logger
}

func NewScrapingHandler(scraper Scraper, log *logger.Logger) *ScrapingHandler {
	return &ScrapingHandler{scraper: scraper, log: log}
}

func (h *ScrapingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/scrape", h.HandleScrape).Methods(http.MethodPost)
}

// HandleScrape runs a scrape synchronously; the request context bounds it.
func (h *ScrapingHandler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	var types []domain.LotteryType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := domain.ParseLotteryType(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		types = append(types, t)
	}

	results, err := h.scraper.ScrapeAndStore(r.Context(), types...)
	if errors.Is(err, services.ErrBusy) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.log.Error("scrape failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := models.ScrapeResponse{Results: make([]models.ScrapeSummary, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, models.ScrapeSummary{Type: res.Type, Count: res.Count, IDs: res.IDs})
	}
	writeJSON(w, http.StatusOK, resp)
}
