// Package client talks to the bot's HTTP API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/api/models"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/domain"
	"github.com/ps-vitor/housingconnect-bot/backend/internal/repositories"
)

// DefaultTimeout covers a full scrape of both lottery types.
const DefaultTimeout = 30 * time.Minute

type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	return &Client{http: client}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, out interface{}) error {
	var apiErr models.Error
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		SetError(&apiErr).
		Execute(method, path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode())
		}
		e := &APIError{Status: resp.StatusCode(), Message: msg}
		if resp.StatusCode() == http.StatusNotFound {
			return fmt.Errorf("%w: %w", repositories.ErrNotFound, e)
		}
		return e
	}
	return nil
}

func typeQuery(t domain.LotteryType) map[string]string {
	if t == "" {
		return nil
	}
	return map[string]string{"type": string(t)}
}

func (c *Client) Health(ctx context.Context) error {
	var h models.Health
	return c.do(ctx, http.MethodGet, "/health", nil, &h)
}

// Lotteries lists stored lotteries; an empty type lists all of them.
func (c *Client) Lotteries(ctx context.Context, t domain.LotteryType) ([]domain.Lottery, error) {
	var list models.LotteryList
	if err := c.do(ctx, http.MethodGet, "/api/lotteries", typeQuery(t), &list); err != nil {
		return nil, err
	}
	return list.Lotteries, nil
}

// EligibleLotteries lists stored lotteries of type t whose income range
// admits income.
func (c *Client) EligibleLotteries(ctx context.Context, t domain.LotteryType, income int) ([]domain.Lottery, error) {
	query := map[string]string{"income": strconv.Itoa(income)}
	if t != "" {
		query["type"] = string(t)
	}
	var list models.LotteryList
	if err := c.do(ctx, http.MethodGet, "/api/lotteries", query, &list); err != nil {
		return nil, err
	}
	return list.Lotteries, nil
}

func (c *Client) Lottery(ctx context.Context, id string) (domain.Lottery, error) {
	var l domain.Lottery
	err := c.do(ctx, http.MethodGet, "/api/lotteries/"+url.PathEscape(id), nil, &l)
	return l, err
}

func (c *Client) Applications(ctx context.Context) (models.ApplicationList, error) {
	var list models.ApplicationList
	err := c.do(ctx, http.MethodGet, "/api/applications", nil, &list)
	return list, err
}

// Scrape asks the server to scrape t, or every type when t is empty.
func (c *Client) Scrape(ctx context.Context, t domain.LotteryType) ([]models.ScrapeSummary, error) {
	var resp models.ScrapeResponse
	if err := c.do(ctx, http.MethodPost, "/api/scrape", typeQuery(t), &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
