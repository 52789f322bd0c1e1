package trigger

import (
	"errors"
	"fmt"

	"kolscheduler/internal/model"
)

var (
	// ErrInvalidTriggerKey rejects keys outside the registry for the
	// chosen trigger type.
	ErrInvalidTriggerKey = errors.New("invalid trigger key")

	// ErrPreconditionNotMet is advisory: the requested tweak does not
	// apply to the active trigger and nothing was changed.
	ErrPreconditionNotMet = errors.New("precondition not met")
)

// Editor accumulates a trigger configuration through validated edits. It
// owns the invariant that only after-hours limit-move triggers carry a
// change threshold and only sector triggers carry a sector selection.
type Editor struct {
	cfg  model.TriggerConfig
	crit model.SelectionCriteria
}

// NewEditor starts from an empty config and default criteria.
func NewEditor() *Editor {
	return &Editor{crit: model.DefaultCriteria()}
}

// EditorFor resumes editing an existing task's configuration.
func EditorFor(cfg model.TriggerConfig, crit model.SelectionCriteria) *Editor {
	crit.Normalize()
	return &Editor{cfg: cfg, crit: crit}
}

// SetTrigger switches the active trigger. Attachments that do not apply
// to the new trigger (change threshold, sector selection) are dropped.
func (e *Editor) SetTrigger(t model.TriggerType, key string) (model.TriggerConfig, error) {
	ks, ok := Lookup(t, key)
	if !ok {
		return model.TriggerConfig{}, fmt.Errorf("%w: %s/%s", ErrInvalidTriggerKey, t, key)
	}
	e.cfg.Type = t
	e.cfg.Key = key
	if !ks.AfterHoursMove {
		e.crit.ChangeThreshold = nil
	}
	if t != model.TriggerSector {
		e.cfg.SectorSelection = nil
	}
	if t != model.TriggerCustom {
		e.cfg.CustomCodes = nil
		e.cfg.CustomNames = nil
	}
	return e.cfg, nil
}

// SetChangeThreshold attaches a limit-move threshold. Legal only while an
// after-hours limit-move trigger is active; otherwise nothing changes and
// the caller gets the advisory ErrPreconditionNotMet.
func (e *Editor) SetChangeThreshold(dir model.ChangeDirection, pct float64) error {
	ks, ok := Lookup(e.cfg.Type, e.cfg.Key)
	if !ok || !ks.AfterHoursMove {
		return fmt.Errorf("%w: change threshold requires an after-hours limit-move trigger", ErrPreconditionNotMet)
	}
	if pct <= 0 {
		return fmt.Errorf("change threshold percentage must be positive, got %v", pct)
	}
	e.crit.ChangeThreshold = &model.ChangeThreshold{Direction: dir, Percentage: pct}
	return nil
}

// SetCriteria replaces the selection criteria, clamping limits.
func (e *Editor) SetCriteria(crit model.SelectionCriteria) {
	threshold := e.crit.ChangeThreshold
	crit.Normalize()
	if crit.ChangeThreshold == nil {
		crit.ChangeThreshold = threshold
	}
	e.crit = crit
}

// SetCustomStocks installs user-entered codes for the custom trigger.
func (e *Editor) SetCustomStocks(codes, names []string) error {
	if e.cfg.Type != model.TriggerCustom {
		return fmt.Errorf("%w: custom stocks require the custom trigger", ErrPreconditionNotMet)
	}
	e.cfg.CustomCodes = append([]string(nil), codes...)
	e.cfg.CustomNames = append([]string(nil), names...)
	return nil
}

func (e *Editor) Config() model.TriggerConfig       { return e.cfg }
func (e *Editor) Criteria() model.SelectionCriteria { return e.crit }
