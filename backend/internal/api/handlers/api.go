package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/api/models"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/repositories"
	"github.com/ps-vitor/housingconnect-bot/backend/pkg/logger"
)

// LotteryReader is the read side the API serves from.
type LotteryReader interface {
	FindAll(ctx context.Context) ([]domain.Lottery, error)
	FindByType(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error)
	FindByID(ctx context.Context, id string) (domain.Lottery, error)
	Eligible(ctx context.Context, t domain.LotteryType, income int) ([]domain.Lottery, error)
	Applications(ctx context.Context) ([]domain.ApplicationResult, error)
}

type APIHandler struct {
	lotteries LotteryReader
	log       *logger.Logger
}

func NewAPIHandler(lotteries LotteryReader, log *logger.Logger) *APIHandler {
	return &APIHandler{lotteries: lotteries, log: log}
}

func (h *APIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/lotteries", h.handleLotteries).Methods(http.MethodGet)
	r.HandleFunc("/api/lotteries/{id}", h.handleLottery).Methods(http.MethodGet)
	r.HandleFunc("/api/applications", h.handleApplications).Methods(http.MethodGet)
}

func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Health{Status: "ok"})
}

// handleLotteries lists stored lotteries, optionally of one type and only
// those whose income range admits ?income=.
func (h *APIHandler) handleLotteries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var t domain.LotteryType
	if raw := q.Get("type"); raw != "" {
		parsed, err := domain.ParseLotteryType(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t = parsed
	}

	var (
		lotteries []domain.Lottery
		err       error
	)
	if raw := q.Get("income"); raw != "" {
		income, perr := strconv.Atoi(raw)
		if perr != nil || income < 0 {
			writeError(w, http.StatusBadRequest, "invalid income "+strconv.Quote(raw))
			return
		}
		lotteries, err = h.lotteries.Eligible(r.Context(), t, income)
	} else {
		lotteries, err = h.lotteries.FindByType(r.Context(), t)
	}
	if err != nil {
		h.log.Error("list lotteries", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load lotteries")
		return
	}
	if lotteries == nil {
		lotteries = []domain.Lottery{}
	}
	writeJSON(w, http.StatusOK, models.LotteryList{Count: len(lotteries), Lotteries: lotteries})
}

func (h *APIHandler) handleLottery(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	lottery, err := h.lotteries.FindByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, "lottery "+id+" not found")
		return
	}
	if err != nil {
		h.log.Error("get lottery", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load lottery")
		return
	}
	writeJSON(w, http.StatusOK, lottery)
}

func (h *APIHandler) handleApplications(w http.ResponseWriter, r *http.Request) {
	results, err := h.lotteries.Applications(r.Context())
	if err != nil {
		h.log.Error("list applications", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load applications")
		return
	}
	if results == nil {
		results = []domain.ApplicationResult{}
	}
	writeJSON(w, http.StatusOK, models.ApplicationList{
		Count:        len(results),
		Summary:      domain.Summarize(results),
		Applications: results,
	})
}
