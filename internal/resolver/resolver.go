// Package resolver turns a trigger configuration plus selection criteria
// into a finalized stock selection, querying the screener backend and
// applying the local count limit.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"kolscheduler/internal/model"
	"kolscheduler/internal/trigger"
)

var (
	// ErrUpstreamQuery wraps screener failures. Retryable: the resolver
	// holds no partial state between attempts.
	ErrUpstreamQuery = errors.New("upstream query failed")

	// ErrLimitReached is advisory: adding one more code would exceed the
	// stock count limit, so the selection was returned unchanged.
	ErrLimitReached = errors.New("stock count limit reached")
)

// ScreenRequest is what the resolver asks of the screener for one trigger
// key. After-hours limit-move keys carry the change threshold; intraday
// keys carry only the limit.
type ScreenRequest struct {
	Limit           int
	ChangeThreshold *model.ChangeThreshold
	Filters         []model.FilterCriterion
	StockFilter     string
	VolumeFilter    string
	SectorFilter    string
	MacroFilter     string
	NewsFilter      string
	Sectors         []string
}

// QueryBackend is the screener capability, one query per trigger key.
type QueryBackend interface {
	Screen(ctx context.Context, key string, req ScreenRequest) (*model.QueryResult, error)
}

type Resolver struct {
	backend QueryBackend
	log     zerolog.Logger
}

func New(backend QueryBackend, log zerolog.Logger) *Resolver {
	return &Resolver{backend: backend, log: log}
}

// Query fetches the raw candidate list for the configured trigger. The
// trigger key is checked against the registry before anything leaves the
// process; the custom trigger never reaches the backend.
func (r *Resolver) Query(ctx context.Context, cfg model.TriggerConfig, crit model.SelectionCriteria) (*model.QueryResult, error) {
	ks, ok := trigger.Lookup(cfg.Type, cfg.Key)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", trigger.ErrInvalidTriggerKey, cfg.Type, cfg.Key)
	}
	crit.Normalize()

	if cfg.Type == model.TriggerCustom {
		return customResult(cfg), nil
	}

	req := ScreenRequest{Limit: crit.Threshold}
	switch {
	case ks.AfterHoursMove:
		req.ChangeThreshold = crit.ChangeThreshold
		req.Filters = crit.FilterCriteria
	case ks.IntradayOnly:
		req.Limit = crit.StockCountLimit
	default:
		req.Filters = crit.FilterCriteria
	}
	req.StockFilter = cfg.StockFilter
	req.VolumeFilter = cfg.VolumeFilter
	req.SectorFilter = cfg.SectorFilter
	req.MacroFilter = cfg.MacroFilter
	req.NewsFilter = cfg.NewsFilter
	req.Sectors = cfg.SectorSelection

	res, err := r.backend.Screen(ctx, cfg.Key, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamQuery, cfg.Key, err)
	}
	r.log.Debug().Str("key", cfg.Key).Int("total", res.TotalCount).
		Int("candidates", len(res.Candidates)).Msg("screen query done")
	return res, nil
}

// ApplyFilters re-issues the query and truncates the candidates to the
// stock count limit in stable upstream order. Truncation is the only
// local ranking behavior: the screener already ordered the list and the
// dashboard mirrors it as-is. Fewer candidates than requested is fine.
func (r *Resolver) ApplyFilters(ctx context.Context, cfg model.TriggerConfig, crit model.SelectionCriteria) (model.ResolvedSelection, error) {
	res, err := r.Query(ctx, cfg, crit)
	if err != nil {
		return model.ResolvedSelection{}, err
	}
	crit.Normalize()

	var sel model.ResolvedSelection
	for _, c := range res.Candidates {
		if sel.Len() >= crit.StockCountLimit {
			break
		}
		if c.StockCode == "" || sel.Contains(c.StockCode) {
			continue
		}
		sel.StockCodes = append(sel.StockCodes, c.StockCode)
		sel.StockNames = append(sel.StockNames, c.StockName)
	}
	return sel, nil
}

// ToggleSelection adds or removes a single code. Removing always works;
// adding past the limit returns the selection unchanged together with the
// advisory ErrLimitReached.
func (r *Resolver) ToggleSelection(code string, candidates []model.StockCandidate, current model.ResolvedSelection, limit int) (model.ResolvedSelection, error) {
	if limit <= 0 {
		limit = model.StockCountLimitDefault
	}
	if current.Contains(code) {
		out := model.ResolvedSelection{}
		for i, c := range current.StockCodes {
			if c == code {
				continue
			}
			out.StockCodes = append(out.StockCodes, c)
			out.StockNames = append(out.StockNames, current.StockNames[i])
		}
		return out, nil
	}
	if current.Len() >= limit {
		return current, ErrLimitReached
	}
	name := code
	for _, c := range candidates {
		if c.StockCode == code {
			name = c.StockName
			break
		}
	}
	out := current.Clone()
	out.StockCodes = append(out.StockCodes, code)
	out.StockNames = append(out.StockNames, name)
	return out, nil
}

// customResult builds the candidate list straight from user-entered
// codes. Market fields stay nil: the distinction between "no data" and
// "zero" matters downstream.
func customResult(cfg model.TriggerConfig) *model.QueryResult {
	res := &model.QueryResult{}
	for i, code := range cfg.CustomCodes {
		if code == "" {
			continue
		}
		dup := false
		for _, c := range res.Candidates {
			if c.StockCode == code {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		name := code
		if i < len(cfg.CustomNames) && cfg.CustomNames[i] != "" {
			name = cfg.CustomNames[i]
		}
		res.Candidates = append(res.Candidates, model.StockCandidate{StockCode: code, StockName: name})
	}
	res.TotalCount = len(res.Candidates)
	return res
}
