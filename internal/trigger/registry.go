// Package trigger holds the registry of known trigger keys and the
// configuration editor that validates a declarative trigger setup before
// anything is resolved or executed.
package trigger

import (
	"kolscheduler/internal/model"
)

// KeySpec describes one concrete trigger key.
type KeySpec struct {
	Key   string
	Type  model.TriggerType
	Label string

	// SuggestedKeywords pre-populate the dependent search configuration.
	// Informational only.
	SuggestedKeywords []string

	// AfterHoursMove marks after-hours limit-move triggers, the only ones
	// that accept a change threshold.
	AfterHoursMove bool

	// IntradayOnly marks triggers whose query takes only the stock count
	// limit.
	IntradayOnly bool
}

var registry = []KeySpec{
	{Key: "limit_up_after_hours", Type: model.TriggerIndividual, Label: "盤後漲停", AfterHoursMove: true,
		SuggestedKeywords: []string{"漲停", "盤後", "強勢股"}},
	{Key: "limit_down_after_hours", Type: model.TriggerIndividual, Label: "盤後跌停", AfterHoursMove: true,
		SuggestedKeywords: []string{"跌停", "盤後", "弱勢股"}},
	{Key: "year_high_after_hours", Type: model.TriggerIndividual, Label: "創年新高",
		SuggestedKeywords: []string{"新高", "突破"}},
	{Key: "year_low_after_hours", Type: model.TriggerIndividual, Label: "創年新低",
		SuggestedKeywords: []string{"新低", "破底"}},

	{Key: "sector_top_gainers", Type: model.TriggerSector, Label: "強勢族群",
		SuggestedKeywords: []string{"族群", "類股輪動"}},
	{Key: "sector_money_inflow", Type: model.TriggerSector, Label: "資金流入族群",
		SuggestedKeywords: []string{"資金流向", "主力買超"}},

	{Key: "macro_index_move", Type: model.TriggerMacro, Label: "大盤異動",
		SuggestedKeywords: []string{"大盤", "加權指數"}},
	{Key: "macro_fx_move", Type: model.TriggerMacro, Label: "匯率異動",
		SuggestedKeywords: []string{"台幣", "匯率"}},

	{Key: "news_hot_stocks", Type: model.TriggerNews, Label: "新聞熱門股",
		SuggestedKeywords: []string{"新聞", "熱門"}},
	{Key: "news_announcements", Type: model.TriggerNews, Label: "重大訊息",
		SuggestedKeywords: []string{"公告", "重訊"}},

	{Key: "intraday_limit_up", Type: model.TriggerIntraday, Label: "盤中漲停", IntradayOnly: true,
		SuggestedKeywords: []string{"盤中", "漲停"}},
	{Key: "intraday_volume_spike", Type: model.TriggerIntraday, Label: "盤中爆量", IntradayOnly: true,
		SuggestedKeywords: []string{"爆量", "異常交易"}},
	{Key: "intraday_top_gainers", Type: model.TriggerIntraday, Label: "盤中強勢", IntradayOnly: true,
		SuggestedKeywords: []string{"盤中", "強勢"}},

	{Key: "volume_amount_rank", Type: model.TriggerVolume, Label: "成交值排行",
		SuggestedKeywords: []string{"成交值", "排行"}},
	{Key: "volume_ratio_rank", Type: model.TriggerVolume, Label: "量比排行",
		SuggestedKeywords: []string{"量比", "放量"}},

	{Key: "custom_stocks", Type: model.TriggerCustom, Label: "自選股",
		SuggestedKeywords: []string{"自選"}},

	{Key: "trending_topics", Type: model.TriggerTrending, Label: "熱門話題",
		SuggestedKeywords: []string{"話題", "討論度"}},
}

// Lookup returns the spec for key under the given trigger type.
func Lookup(t model.TriggerType, key string) (KeySpec, bool) {
	for _, ks := range registry {
		if ks.Type == t && ks.Key == key {
			return ks, true
		}
	}
	return KeySpec{}, false
}

// Keys lists the known keys for a trigger type, in registry order.
func Keys(t model.TriggerType) []KeySpec {
	var out []KeySpec
	for _, ks := range registry {
		if ks.Type == t {
			out = append(out, ks)
		}
	}
	return out
}

// SuggestedKeywords returns the keyword metadata for key, nil if unknown.
func SuggestedKeywords(t model.TriggerType, key string) []string {
	ks, ok := Lookup(t, key)
	if !ok {
		return nil
	}
	return ks.SuggestedKeywords
}
