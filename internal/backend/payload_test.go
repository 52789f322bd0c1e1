package backend

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"kolscheduler/internal/model"
)

func sampleTask(t *testing.T) *model.ScheduleTask {
	t.Helper()
	last, err := time.Parse(time.RFC3339, "2024-03-11T01:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	next := last.AddDate(0, 0, 1)
	minGain := 3.0
	return &model.ScheduleTask{
		TaskID:             "task-9",
		Name:               "盤後漲停排程",
		Status:             model.StatusActive,
		Type:               model.ScheduleWeekdayDaily,
		DailyExecutionTime: "09:00",
		Timezone:           "Asia/Taipei",
		IntervalSeconds:    45,
		Trigger: model.TriggerConfig{
			Type:        model.TriggerIndividual,
			Key:         "limit_up_after_hours",
			StockFilter: "exclude_etf",
		},
		Criteria: model.SelectionCriteria{
			Threshold:       30,
			StockCountLimit: 10,
			FilterCriteria: []model.FilterCriterion{
				{Tag: model.FilterFiveDayGain, Min: &minGain},
				{Tag: model.FilterVolumeAmount},
			},
			ChangeThreshold: &model.ChangeThreshold{Direction: model.ChangeUp, Percentage: 9.5},
		},
		KolAssignment: model.KolPoolRandom,
		SelectedKols:  []string{"kol-1", "kol-2"},
		AutoPosting:   true,
		LastRun:       &last,
		NextRun:       &next,
		RunCount:      12,
		SuccessCount:  11,
		FailureCount:  1,
	}
}

// Serializing a task and parsing the backend's echo must lose no field.
func TestPayloadRoundTrip(t *testing.T) {
	orig := sampleTask(t)

	wire, err := json.Marshal(ToPayload(orig))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var echoed TaskPayload
	if err := json.Unmarshal(wire, &echoed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, err := FromPayload(&echoed)
	if err != nil {
		t.Fatalf("FromPayload: %v", err)
	}
	if !reflect.DeepEqual(orig, got) {
		t.Fatalf("round trip mismatch:\n  orig: %+v\n  got:  %+v", orig, got)
	}
}

// The backend sometimes echoes naive timestamps; they are UTC by contract.
func TestFromPayloadNaiveTimestamps(t *testing.T) {
	p := ToPayload(sampleTask(t))
	p.LastRun = "2024-03-11 01:00:00"
	p.NextRun = "2024-03-12T01:00:00"

	got, err := FromPayload(p)
	if err != nil {
		t.Fatalf("FromPayload: %v", err)
	}
	want, _ := time.Parse(time.RFC3339, "2024-03-11T01:00:00Z")
	if !got.LastRun.Equal(want) {
		t.Fatalf("LastRun = %s, want %s", got.LastRun, want)
	}
	if !got.NextRun.Equal(want.AddDate(0, 0, 1)) {
		t.Fatalf("NextRun = %s", got.NextRun)
	}
}

func TestFromPayloadBadTimestamp(t *testing.T) {
	p := ToPayload(sampleTask(t))
	p.NextRun = "soon"
	if _, err := FromPayload(p); err == nil {
		t.Fatal("expected error for unparseable next_run")
	}
}
