package model

// StockCandidate is one row from the screener backend. Market fields are
// pointers: nil means the backend had no data (custom stocks), which must
// stay distinguishable from a literal zero.
type StockCandidate struct {
	StockCode     string   `json:"stock_code"`
	StockName     string   `json:"stock_name"`
	Industry      string   `json:"industry,omitempty"`
	CurrentPrice  *float64 `json:"current_price"`
	ChangePercent *float64 `json:"change_percent"`
	Volume        *int64   `json:"volume"`
}

// QueryResult is the raw screener response before local filtering.
type QueryResult struct {
	TotalCount int              `json:"total_count"`
	Candidates []StockCandidate `json:"stocks"`
}

// ResolvedSelection is the finalized stock pick for one configuration
// cycle. Codes and names are parallel arrays with 1:1 index
// correspondence and no duplicate codes.
type ResolvedSelection struct {
	StockCodes []string `json:"stock_codes"`
	StockNames []string `json:"stock_names"`
}

func (s ResolvedSelection) Len() int { return len(s.StockCodes) }

// Contains reports whether code is already selected.
func (s ResolvedSelection) Contains(code string) bool {
	for _, c := range s.StockCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Clone returns an independent copy so callers can patch a selection
// without aliasing the original backing arrays.
func (s ResolvedSelection) Clone() ResolvedSelection {
	out := ResolvedSelection{
		StockCodes: make([]string, len(s.StockCodes)),
		StockNames: make([]string, len(s.StockNames)),
	}
	copy(out.StockCodes, s.StockCodes)
	copy(out.StockNames, s.StockNames)
	return out
}
