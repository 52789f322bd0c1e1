package backend

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"kolscheduler/internal/model"
	"kolscheduler/internal/resolver"
)

// QueryClient implements resolver.QueryBackend against the screener API.
// A shared limiter keeps retries and filter-apply bursts from hammering
// the screener, which throttles hard above a few requests per second.
type QueryClient struct {
	client
	limiter *rate.Limiter
}

func NewQueryClient(baseURL, apiKey, proxyURL string, timeout time.Duration, perSec float64) *QueryClient {
	if perSec <= 0 {
		perSec = 2
	}
	return &QueryClient{
		client:  newClient(baseURL, apiKey, proxyURL, timeout),
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
	}
}

type screenPayload struct {
	Limit            int                     `json:"limit"`
	ChangeDirection  string                  `json:"change_direction,omitempty"`
	ChangePercentage float64                 `json:"change_percentage,omitempty"`
	Filters          []model.FilterCriterion `json:"filters,omitempty"`
	StockFilter      string                  `json:"stock_filter,omitempty"`
	VolumeFilter     string                  `json:"volume_filter,omitempty"`
	SectorFilter     string                  `json:"sector_filter,omitempty"`
	MacroFilter      string                  `json:"macro_filter,omitempty"`
	NewsFilter       string                  `json:"news_filter,omitempty"`
	Sectors          []string                `json:"sectors,omitempty"`
}

// Screen queries one trigger key's endpoint.
func (c *QueryClient) Screen(ctx context.Context, key string, req resolver.ScreenRequest) (*model.QueryResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	payload := screenPayload{
		Limit:        req.Limit,
		Filters:      req.Filters,
		StockFilter:  req.StockFilter,
		VolumeFilter: req.VolumeFilter,
		SectorFilter: req.SectorFilter,
		MacroFilter:  req.MacroFilter,
		NewsFilter:   req.NewsFilter,
		Sectors:      req.Sectors,
	}
	if req.ChangeThreshold != nil {
		payload.ChangeDirection = string(req.ChangeThreshold.Direction)
		payload.ChangePercentage = req.ChangeThreshold.Percentage
	}

	var result model.QueryResult
	path := fmt.Sprintf("/api/v1/screen/%s", key)
	if err := c.doJSON(ctx, "POST", path, payload, &result, nil); err != nil {
		return nil, err
	}
	return &result, nil
}
