package model

// TriggerType groups trigger keys by the kind of market signal they watch.
type TriggerType string

const (
	TriggerIndividual TriggerType = "individual"
	TriggerSector     TriggerType = "sector"
	TriggerMacro      TriggerType = "macro"
	TriggerNews       TriggerType = "news"
	TriggerIntraday   TriggerType = "intraday"
	TriggerVolume     TriggerType = "volume"
	TriggerCustom     TriggerType = "custom"
	TriggerTrending   TriggerType = "trending"
)

// ChangeDirection is the side of an after-hours limit move.
type ChangeDirection string

const (
	ChangeUp   ChangeDirection = "up"
	ChangeDown ChangeDirection = "down"
)

// ChangeThreshold narrows after-hours limit-move triggers to moves of at
// least Percentage percent in the given direction.
type ChangeThreshold struct {
	Direction  ChangeDirection `json:"direction" yaml:"direction"`
	Percentage float64         `json:"percentage" yaml:"percentage"`
}

// TriggerConfig is the declarative description of what a schedule selects.
// Filter descriptors are passed through to the resolver untouched; only the
// fields relevant to the active trigger are populated.
type TriggerConfig struct {
	Type         TriggerType `json:"trigger_type" yaml:"trigger_type"`
	Key          string      `json:"trigger_key" yaml:"trigger_key"`
	StockFilter  string      `json:"stock_filter,omitempty" yaml:"stock_filter,omitempty"`
	VolumeFilter string      `json:"volume_filter,omitempty" yaml:"volume_filter,omitempty"`
	SectorFilter string      `json:"sector_filter,omitempty" yaml:"sector_filter,omitempty"`
	MacroFilter  string      `json:"macro_filter,omitempty" yaml:"macro_filter,omitempty"`
	NewsFilter   string      `json:"news_filter,omitempty" yaml:"news_filter,omitempty"`

	// SectorSelection holds the sector names for sector triggers.
	SectorSelection []string `json:"sector_selection,omitempty" yaml:"sector_selection,omitempty"`

	// CustomCodes and CustomNames hold user-entered stocks for the custom
	// trigger; no upstream query happens for those.
	CustomCodes []string `json:"custom_codes,omitempty" yaml:"custom_codes,omitempty"`
	CustomNames []string `json:"custom_names,omitempty" yaml:"custom_names,omitempty"`
}
