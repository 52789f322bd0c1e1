package model

// Bounds for SelectionCriteria. Values outside are clamped, not rejected,
// so a stale stored task never fails to load.
const (
	ThresholdMin     = 5
	ThresholdMax     = 100
	ThresholdDefault = 20

	StockCountLimitMin     = 1
	StockCountLimitMax     = 50
	StockCountLimitDefault = 20
)

// FilterTag names a secondary ranking/filter dimension.
type FilterTag string

const (
	FilterFiveDayGain   FilterTag = "five_day_gain"
	FilterVolumeAmount  FilterTag = "volume_amount"
	FilterVolumeRatio   FilterTag = "volume_ratio"
	FilterTurnoverRate  FilterTag = "turnover_rate"
	FilterChangePercent FilterTag = "change_percent"
	FilterMarketCap     FilterTag = "market_cap"
)

// FilterCriterion is one ordered filter dimension with optional numeric
// parameters. Nil pointers mean "not constrained".
type FilterCriterion struct {
	Tag        FilterTag `json:"tag" yaml:"tag"`
	Min        *float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max        *float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Percentile *float64  `json:"percentile,omitempty" yaml:"percentile,omitempty"`
}

// SelectionCriteria bounds how many candidates are requested and kept.
type SelectionCriteria struct {
	// Threshold is the max number of raw candidates requested upstream.
	Threshold int `json:"threshold" yaml:"threshold"`
	// StockCountLimit is the max number of candidates actually used.
	StockCountLimit int               `json:"stock_count_limit" yaml:"stock_count_limit"`
	FilterCriteria  []FilterCriterion `json:"stock_filter_criteria,omitempty" yaml:"stock_filter_criteria,omitempty"`
	// ChangeThreshold is only meaningful for after-hours limit-move triggers.
	ChangeThreshold *ChangeThreshold `json:"change_threshold,omitempty" yaml:"change_threshold,omitempty"`
}

// DefaultCriteria returns criteria with both limits at their defaults.
func DefaultCriteria() SelectionCriteria {
	return SelectionCriteria{
		Threshold:       ThresholdDefault,
		StockCountLimit: StockCountLimitDefault,
	}
}

// Normalize clamps both limits into their documented bounds. Zero values
// (unset) fall back to the defaults.
func (c *SelectionCriteria) Normalize() {
	if c.Threshold == 0 {
		c.Threshold = ThresholdDefault
	}
	if c.Threshold < ThresholdMin {
		c.Threshold = ThresholdMin
	}
	if c.Threshold > ThresholdMax {
		c.Threshold = ThresholdMax
	}
	if c.StockCountLimit == 0 {
		c.StockCountLimit = StockCountLimitDefault
	}
	if c.StockCountLimit < StockCountLimitMin {
		c.StockCountLimit = StockCountLimitMin
	}
	if c.StockCountLimit > StockCountLimitMax {
		c.StockCountLimit = StockCountLimitMax
	}
}
